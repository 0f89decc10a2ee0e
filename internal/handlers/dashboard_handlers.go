package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/export"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/render"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler handles dashboard API endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	statsService     *services.StatisticsService
	renderer         *render.Renderer
	logger           *logging.StructuredLogger
	metrics          *metrics.Collector
}

// NewDashboardHandler creates a new dashboard handler. statsService may be
// nil when no rentals database is configured.
func NewDashboardHandler(
	dashboardService *services.DashboardService,
	statsService *services.StatisticsService,
	renderer *render.Renderer,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		statsService:     statsService,
		renderer:         renderer,
		logger:           logger,
		metrics:          metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SeasonsResponse lists the season selector options
type SeasonsResponse struct {
	Seasons []models.Season `json:"seasons"`
}

// GetSeasons handles GET /api/seasons
func (h *DashboardHandler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/seasons")()

	seasons, err := h.dashboardService.SeasonOptions(r.Context())
	if err != nil {
		h.handleLoadError(w, r, "/api/seasons", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/seasons", "GET", "200")
	h.sendJSON(w, SeasonsResponse{Seasons: seasons}, http.StatusOK)
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/dashboard")()

	dash, ok := h.buildDashboard(w, r, "/api/dashboard")
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest("/api/dashboard", "GET", "200")
	h.sendJSON(w, dash, http.StatusOK)
}

// GetChart handles GET /api/charts/{chart}.png
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/charts")()

	chart, err := render.ParseChart(mux.Vars(r)["chart"])
	if err != nil {
		h.metrics.RecordAPIError("bad_request", "/api/charts")
		h.sendError(w, r, "/api/charts", err.Error(), http.StatusNotFound)
		return
	}

	dash, ok := h.buildDashboard(w, r, "/api/charts")
	if !ok {
		return
	}

	// render fully before writing so failures can still be reported as JSON
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, chart, dash); err != nil {
		h.logger.Error(r.Context(), "[API_CHART_ERROR] Failed to render chart", logging.Fields{
			"chart":  chart,
			"season": dash.Season,
		}, err)
		h.metrics.RecordAPIError("render_error", "/api/charts")
		h.sendError(w, r, "/api/charts", "failed to render chart", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/charts", "GET", "200")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// ExportWorkbook handles GET /api/export.xlsx
func (h *DashboardHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/export.xlsx")()

	dash, ok := h.buildDashboard(w, r, "/api/export.xlsx")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, dash); err != nil {
		h.logger.Error(r.Context(), "[API_EXPORT_ERROR] Failed to write workbook", logging.Fields{
			"season": dash.Season,
		}, err)
		h.metrics.RecordAPIError("export_error", "/api/export.xlsx")
		h.sendError(w, r, "/api/export.xlsx", "failed to export workbook", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("bikeshare-%s.xlsx", strings.ToLower(string(dash.Season)))

	h.metrics.RecordAPIRequest("/api/export.xlsx", "GET", "200")
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// GetWeekdayStatistics handles GET /api/statistics/weekday
func (h *DashboardHandler) GetWeekdayStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe("/api/statistics/weekday")()

	season, ok := h.parseSeason(w, r, "/api/statistics/weekday")
	if !ok {
		return
	}

	statistics, err := h.statsService.GetWeekdayStatistics(ctx, season)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			h.sendError(w, r, "/api/statistics/weekday", err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_STATISTICS_ERROR] Failed to get statistics", logging.Fields{
			"season": season,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/statistics/weekday")
		h.sendError(w, r, "/api/statistics/weekday", "failed to retrieve statistics", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/statistics/weekday", "GET", "200")
	h.sendJSON(w, statistics, http.StatusOK)
}

// Reload handles POST /api/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	defer h.observe("/api/reload")()

	h.dashboardService.Reload()

	h.logger.Info(r.Context(), "[API_RELOAD] Dataset cache invalidated", logging.Fields{})
	h.metrics.RecordAPIRequest("/api/reload", "POST", "202")
	h.sendJSON(w, map[string]string{"status": "reloading"}, http.StatusAccepted)
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"dataset_loaded": h.dashboardService.Loaded(),
	}

	code := http.StatusOK
	if h.statsService != nil {
		if err := h.statsService.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK] Database unreachable", logging.Fields{
				"error": err.Error(),
			})
			status["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

// buildDashboard parses the season parameter and computes the dashboard,
// writing the error response itself when either step fails
func (h *DashboardHandler) buildDashboard(w http.ResponseWriter, r *http.Request, endpoint string) (*models.Dashboard, bool) {
	season, ok := h.parseSeason(w, r, endpoint)
	if !ok {
		return nil, false
	}

	dash, err := h.dashboardService.Build(r.Context(), season)
	if err != nil {
		h.handleLoadError(w, r, endpoint, err)
		return nil, false
	}
	return dash, true
}

func (h *DashboardHandler) parseSeason(w http.ResponseWriter, r *http.Request, endpoint string) (models.Season, bool) {
	season, err := models.ParseSeason(r.URL.Query().Get("season"))
	if err != nil {
		h.metrics.RecordAPIError("bad_request", endpoint)
		h.sendError(w, r, endpoint, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return season, true
}

// handleLoadError maps dataset failures to status codes: a missing dataset
// is 503, a malformed one 500
func (h *DashboardHandler) handleLoadError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var (
		notFound  *dataset.NotFoundError
		malformed *dataset.MalformedDataError
	)

	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := "failed to build dashboard"

	switch {
	case errors.As(err, &notFound):
		status = http.StatusServiceUnavailable
		errorType = "dataset_not_found"
		message = err.Error()
	case errors.As(err, &malformed):
		errorType = "dataset_malformed"
		message = err.Error()
	}

	h.logger.Error(r.Context(), "[API_DATASET_ERROR] Failed to load dataset", logging.Fields{
		"endpoint":   endpoint,
		"error_type": errorType,
	}, err)
	h.metrics.RecordAPIError(errorType, endpoint)
	h.sendError(w, r, endpoint, message, status)
}

func (h *DashboardHandler) observe(endpoint string) func() {
	startTime := time.Now()
	return func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}
}

// sendJSON sends a JSON response
func (h *DashboardHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *DashboardHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all dashboard API routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.Use(RequestContext)

	router.HandleFunc("/api/seasons", h.GetSeasons).Methods("GET")
	router.HandleFunc("/api/dashboard", h.GetDashboard).Methods("GET")
	router.HandleFunc("/api/charts/{chart:[a-z]+}.png", h.GetChart).Methods("GET")
	router.HandleFunc("/api/export.xlsx", h.ExportWorkbook).Methods("GET")
	router.HandleFunc("/api/reload", h.Reload).Methods("POST")
	if h.statsService != nil {
		router.HandleFunc("/api/statistics/weekday", h.GetWeekdayStatistics).Methods("GET")
	}
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

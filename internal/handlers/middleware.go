package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"bikeshare-dashboard/pkg/logging"
)

// RequestContext tags the request context with a request ID, reusing the
// caller's X-Request-ID when present, and with the X-Session-ID header so
// log entries from one dashboard session can be grouped
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		if sessionID := r.Header.Get("X-Session-ID"); sessionID != "" {
			ctx = logging.WithSessionID(ctx, sessionID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package handlers

import (
	"encoding/json"
	"net/http"
)

var seasonParameter = map[string]interface{}{
	"name":        "season",
	"in":          "query",
	"description": "Season filter: All, Spring, Summer, Fall, Winter or Unknown (default: All)",
	"required":    false,
	"schema": map[string]interface{}{
		"type":    "string",
		"enum":    []string{"All", "Spring", "Summer", "Fall", "Winter", "Unknown"},
		"default": "All",
	},
}

func jsonContent(schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

// datasetErrors documents the responses shared by every dataset-backed endpoint
func datasetErrors(responses map[string]interface{}) map[string]interface{} {
	responses["400"] = map[string]interface{}{"description": "Unknown season", "content": jsonContent(ref("Error"))}
	responses["500"] = map[string]interface{}{"description": "Dataset is malformed", "content": jsonContent(ref("Error"))}
	responses["503"] = map[string]interface{}{"description": "Dataset file not found", "content": jsonContent(ref("Error"))}
	return responses
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Bike Sharing Dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Bike Sharing Dashboard API",
			"description": "Daily bike rental dashboard: season filter, weekday averages with rank-based colors, rental trend and weather distribution",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/seasons": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List season options",
					"description": "All followed by the seasons present in the dataset in order of first appearance",
					"responses": datasetErrors(map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Season selector options",
							"content": jsonContent(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"seasons": map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
								},
							}),
						},
					}),
				},
			},
			"/api/dashboard": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get dashboard data",
					"description": "Trend, weather distribution and weekday averages for the selected season",
					"parameters":  []interface{}{seasonParameter},
					"responses": datasetErrors(map[string]interface{}{
						"200": map[string]interface{}{"description": "Successful response", "content": jsonContent(ref("Dashboard"))},
					}),
				},
			},
			"/api/charts/{chart}.png": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Render a dashboard chart",
					"parameters": []interface{}{
						map[string]interface{}{
							"name":     "chart",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string", "enum": []string{"trend", "weather", "weekday"}},
						},
						seasonParameter,
					},
					"responses": datasetErrors(map[string]interface{}{
						"200": map[string]interface{}{
							"description": "PNG image",
							"content": map[string]interface{}{
								"image/png": map[string]interface{}{"schema": map[string]string{"type": "string", "format": "binary"}},
							},
						},
						"404": map[string]interface{}{"description": "Unknown chart", "content": jsonContent(ref("Error"))},
					}),
				},
			},
			"/api/export.xlsx": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Export dashboard data",
					"description": "Excel workbook with Weekdays, Weather and Trend sheets",
					"parameters":  []interface{}{seasonParameter},
					"responses": datasetErrors(map[string]interface{}{
						"200": map[string]interface{}{
							"description": "XLSX workbook",
							"content": map[string]interface{}{
								xlsxContentType: map[string]interface{}{"schema": map[string]string{"type": "string", "format": "binary"}},
							},
						},
					}),
				},
			},
			"/api/statistics/weekday": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get stored weekday statistics",
					"description": "Weekday means precomputed by the ingester; available when a database is configured",
					"parameters":  []interface{}{seasonParameter},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content":     jsonContent(map[string]interface{}{"type": "array", "items": ref("WeekdayStatistics")}),
						},
						"404": map[string]interface{}{"description": "No statistics stored for the season", "content": jsonContent(ref("Error"))},
					},
				},
			},
			"/api/reload": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Reload the dataset",
					"description": "Drops the cached dataset; the next request reads the source again",
					"responses": map[string]interface{}{
						"202": map[string]interface{}{"description": "Cache invalidated"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": jsonContent(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"status":         map[string]string{"type": "string"},
									"timestamp":      map[string]string{"type": "string", "format": "date-time"},
									"dataset_loaded": map[string]string{"type": "boolean"},
								},
							}),
						},
						"503": map[string]interface{}{"description": "Database unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{"schema": map[string]string{"type": "string"}},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
				"Dashboard": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"season":  map[string]string{"type": "string"},
						"records": map[string]string{"type": "integer"},
						"trend": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"date":  map[string]string{"type": "string", "format": "date-time"},
									"count": map[string]string{"type": "integer"},
								},
							},
						},
						"weather": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"weather": map[string]string{"type": "string"},
									"code":    map[string]string{"type": "integer"},
									"days":    map[string]string{"type": "integer"},
									"min":     map[string]string{"type": "number"},
									"q1":      map[string]string{"type": "number"},
									"median":  map[string]string{"type": "number"},
									"q3":      map[string]string{"type": "number"},
									"max":     map[string]string{"type": "number"},
									"mean":    map[string]string{"type": "number"},
								},
							},
						},
						"weekdays": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"weekday": map[string]string{"type": "string"},
									"mean":    map[string]interface{}{"type": "number", "nullable": true},
									"days":    map[string]string{"type": "integer"},
									"rank":    map[string]string{"type": "integer"},
									"color":   map[string]string{"type": "string"},
								},
							},
						},
						"generated_at": map[string]string{"type": "string", "format": "date-time"},
					},
				},
				"WeekdayStatistics": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"id":           map[string]string{"type": "integer"},
						"season":       map[string]string{"type": "string"},
						"weekday_code": map[string]string{"type": "integer"},
						"mean_count":   map[string]interface{}{"type": "number", "nullable": true},
						"day_count":    map[string]string{"type": "integer"},
						"created_at":   map[string]string{"type": "string", "format": "date-time"},
						"updated_at":   map[string]string{"type": "string", "format": "date-time"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentryline-systems/sentryline-etl/common/middleware"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/handlers"
)

// NewRouter constructs a ServeMux with the mock API routes registered.
// Health and metrics endpoints bypass API key authentication.
func NewRouter(h *handlers.EventsHandler, apiKey string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/events", h.Events)
	api.HandleFunc("GET /api/v1/events/paginated", h.Paginated)
	api.HandleFunc("GET /api/v1/events/batch", h.Batch)
	api.HandleFunc("GET /api/v1/events/{event_id}", h.EventByID)

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.APIKey(apiKey, api))

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}

// Package handlers implements the mock ingestion API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sentryline-systems/sentryline-etl/common/logging"
	"github.com/sentryline-systems/sentryline-etl/common/schema"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/generator"
	"github.com/sentryline-systems/sentryline-etl/mockapi/internal/metrics"
)

// EventsHandler serves the catalogue and synthetic batch endpoints.
type EventsHandler struct {
	gen              *generator.Generator
	maxBatchSize     int
	defaultFaultRate float64
	logger           *logging.Logger
}

// NewEventsHandler creates the handler.
func NewEventsHandler(gen *generator.Generator, maxBatchSize int, defaultFaultRate float64, logger *logging.Logger) *EventsHandler {
	return &EventsHandler{
		gen:              gen,
		maxBatchSize:     maxBatchSize,
		defaultFaultRate: defaultFaultRate,
		logger:           logger,
	}
}

// Health reports liveness.
func (h *EventsHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports readiness. The generator has no external dependencies, so
// ready tracks liveness.
func (h *EventsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Events returns the fixed demo catalogue.
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("events", "ok").Inc()
	writeJSON(w, http.StatusOK, h.gen.Catalogue())
}

// EventByID looks up a catalogue event.
func (h *EventsHandler) EventByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("event_id")
	for _, event := range h.gen.Catalogue() {
		if event["event_id"] == id {
			metrics.RequestsTotal.WithLabelValues("event_by_id", "ok").Inc()
			writeJSON(w, http.StatusOK, event)
			return
		}
	}
	metrics.RequestsTotal.WithLabelValues("event_by_id", "not_found").Inc()
	writeError(w, http.StatusNotFound, "event_id does not exist")
}

// Paginated returns a page of the catalogue.
func (h *EventsHandler) Paginated(w http.ResponseWriter, r *http.Request) {
	page, err := positiveIntParam(r, "page")
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("events_paginated", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := positiveIntParam(r, "limit")
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("events_paginated", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	catalogue := h.gen.Catalogue()
	start := (page - 1) * limit
	if start > len(catalogue) {
		start = len(catalogue)
	}
	end := start + limit
	if end > len(catalogue) {
		end = len(catalogue)
	}

	metrics.RequestsTotal.WithLabelValues("events_paginated", "ok").Inc()
	writeJSON(w, http.StatusOK, catalogue[start:end])
}

// Batch generates a synthetic batch with fault injection and returns the
// envelope the extract stage consumes.
func (h *EventsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	size, err := positiveIntParam(r, "size")
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("events_batch", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if size > h.maxBatchSize {
		metrics.RequestsTotal.WithLabelValues("events_batch", "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "size exceeds maximum batch size")
		return
	}

	faultRate := h.defaultFaultRate
	if raw := r.URL.Query().Get("fault_rate"); raw != "" {
		faultRate, err = strconv.ParseFloat(raw, 64)
		if err != nil || faultRate < 0.0 || faultRate > 1.0 {
			metrics.RequestsTotal.WithLabelValues("events_batch", "bad_request").Inc()
			writeError(w, http.StatusBadRequest, "fault_rate must be between 0.0 and 1.0")
			return
		}
	}

	events, stats := h.gen.Batch(size, faultRate)

	metrics.RequestsTotal.WithLabelValues("events_batch", "ok").Inc()
	metrics.BatchSize.Observe(float64(size))
	metrics.EventsGeneratedTotal.WithLabelValues("valid").Add(float64(stats.Valid))
	metrics.EventsGeneratedTotal.WithLabelValues("invalid").Add(float64(stats.Invalid))
	for kind, n := range stats.Faults {
		metrics.FaultsInjectedTotal.WithLabelValues(kind).Add(float64(n))
	}

	h.logger.InfoContext(r.Context(), "generated event batch",
		"size", size, "fault_rate", faultRate,
		"valid_events", stats.Valid, "invalid_events", stats.Invalid)

	writeJSON(w, http.StatusOK, schema.BatchResponse{
		Events:        events,
		Size:          size,
		FaultRate:     faultRate,
		ValidEvents:   stats.Valid,
		InvalidEvents: stats.Invalid,
	})
}

func positiveIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &paramError{name: name}
	}
	return n, nil
}

type paramError struct{ name string }

func (e *paramError) Error() string {
	return e.name + " must be a positive integer"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

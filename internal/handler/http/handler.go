// Package http exposes the analytics facade over a local HTTP API: the
// tracking entry points, the dashboard queries, and the export/clear
// control surface.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"portfolio-analytics/internal/domain"
	"portfolio-analytics/pkg/validator"
)

// AnalyticsService defines the facade methods the handlers need.
// Using an interface instead of the concrete type allows mocking in tests.
//
// Note there is no view-tracking method: the page-view event is recorded
// once when the service is constructed and cannot be re-triggered from
// outside.
type AnalyticsService interface {
	TrackResumeDownload(ctx context.Context)
	TrackContactInteraction(ctx context.Context)
	Summary() domain.Summary
	RecentEvents(limit int) []domain.Event
	Export() string
	Clear(ctx context.Context)
}

// Handler holds dependencies for HTTP handlers, injected through the
// constructor rather than globals
type Handler struct {
	analytics    AnalyticsService
	logger       *slog.Logger
	defaultLimit int // recent-events limit when the client passes none
	maxLimit     int // hard cap on the recent-events limit
}

// NewHandler creates a new HTTP handler
func NewHandler(analytics AnalyticsService, logger *slog.Logger, defaultLimit, maxLimit int) *Handler {
	return &Handler{
		analytics:    analytics,
		logger:       logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// RecentEventsResponse wraps the recent-events query result
type RecentEventsResponse struct {
	Events []domain.Event `json:"events"`
	Count  int            `json:"count"`
}

// TrackEvent handles POST /api/v1/track/{kind}.
// Only download and contact can be tracked from outside; view is rejected
// because first-touch views are recorded at startup and re-triggering one
// would double-count.
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")

	if err := validator.ValidateEventKind(kind); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch domain.EventKind(kind) {
	case domain.KindDownload:
		h.analytics.TrackResumeDownload(r.Context())
	case domain.KindContact:
		h.analytics.TrackContactInteraction(r.Context())
	default:
		// Valid kind, but not an externally trackable one
		respondError(w, http.StatusBadRequest, "page views are recorded automatically and cannot be tracked externally")
		return
	}

	respondSuccess(w, http.StatusAccepted, nil, kind+" event recorded")
}

// GetSummary handles GET /api/v1/summary.
// Safe to poll: the summary is recomputed from the event list each call.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.analytics.Summary(), "")
}

// GetRecentEvents handles GET /api/v1/events/recent?limit=N
func (h *Handler) GetRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := validator.ParseLimit(r.URL.Query().Get("limit"), h.defaultLimit, h.maxLimit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events := h.analytics.RecentEvents(limit)
	respondSuccess(w, http.StatusOK, RecentEventsResponse{Events: events, Count: len(events)}, "")
}

// ExportData handles GET /api/v1/export, serving the full store as a
// downloadable JSON document. File handling past this point is the
// client's business.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("portfolio-analytics-%s.json", time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(h.analytics.Export())); err != nil {
		h.logger.Warn("Failed to write export response", "error", err)
	}
}

// ClearData handles DELETE /api/v1/data. Destructive, so it is gated on
// an explicit confirm=true query parameter - the API equivalent of the
// dashboard's confirmation dialog.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "clearing analytics data requires confirm=true")
		return
	}

	h.analytics.Clear(r.Context())
	h.logger.Info("Analytics data cleared")

	respondSuccess(w, http.StatusOK, nil, "analytics data cleared")
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

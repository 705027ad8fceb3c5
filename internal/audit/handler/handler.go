package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"portaria/internal/audit"
	"portaria/internal/platform/metrics"
	"portaria/internal/platform/middleware"
	"portaria/internal/transport/http/shared"
)

// Service is the slice of the audit service the handler needs.
type Service interface {
	List(ctx context.Context, max int) []audit.Entry
}

// Handler serves the audit trail read surface. Writes never come through
// HTTP; entries are appended by the services that own the actions.
type Handler struct {
	logger   *slog.Logger
	trail    Service
	metrics  *metrics.Metrics
	verifier middleware.TokenVerifier
}

func New(trail Service, logger *slog.Logger, m *metrics.Metrics, verifier middleware.TokenVerifier) *Handler {
	return &Handler{
		logger:   logger,
		trail:    trail,
		metrics:  m,
		verifier: verifier,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.verifier, h.logger))
		r.Get("/logs", h.handleListLogs)
	})
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.logger.WarnContext(ctx, "ignoring malformed log limit",
				"request_id", middleware.GetRequestID(ctx),
				"limit", raw,
			)
		} else {
			limit = parsed
		}
	}

	entries := h.trail.List(ctx, limit)
	shared.WriteJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

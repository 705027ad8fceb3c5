package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"portaria/internal/platform/metrics"
	"portaria/internal/platform/middleware"
	"portaria/internal/transport/http/shared"
	"portaria/internal/visitor/models"
	dErrors "portaria/pkg/domain-errors"
	"portaria/pkg/requestcontext"
)

// Service defines the admission operations the handler delegates to.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest, operator models.Operator) (*models.Visitor, error)
	Checkout(ctx context.Context, visitorID string, operator models.Operator) (*models.Visitor, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Visitor, error)
	RoomOccupancy(ctx context.Context) (map[string]int, error)
}

// Handler exposes the visitor routes. It stays thin: decode, delegate,
// translate.
type Handler struct {
	logger   *slog.Logger
	visitors Service
	metrics  *metrics.Metrics
	verifier middleware.TokenVerifier
}

func New(visitors Service, logger *slog.Logger, m *metrics.Metrics, verifier middleware.TokenVerifier) *Handler {
	return &Handler{
		logger:   logger,
		visitors: visitors,
		metrics:  m,
		verifier: verifier,
	}
}

// Register registers the visitor routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.verifier, h.logger))
		r.Post("/visitors", h.handleRegisterVisitor)
		r.Post("/visitors/{id}/checkout", h.handleCheckout)
		r.Get("/visitors", h.handleList)
		r.Get("/rooms/occupancy", h.handleRoomOccupancy)
	})
}

func (h *Handler) handleRegisterVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register visitor request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	visitor, err := h.visitors.Register(ctx, req, operatorFrom(ctx))
	if err != nil {
		h.writeServiceError(w, r, "failed to register visitor", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, visitor)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visitorID := chi.URLParam(r, "id")

	visitor, err := h.visitors.Checkout(ctx, visitorID, operatorFrom(ctx))
	if err != nil {
		h.writeServiceError(w, r, "failed to checkout visitor", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, visitor)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := models.Filter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = models.FilterAll
	}

	visitors, err := h.visitors.List(ctx, filter)
	if err != nil {
		h.writeServiceError(w, r, "failed to list visitors", err)
		return
	}
	if visitors == nil {
		visitors = []*models.Visitor{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"visitors": visitors})
}

func (h *Handler) handleRoomOccupancy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	occupancy, err := h.visitors.RoomOccupancy(ctx)
	if err != nil {
		h.writeServiceError(w, r, "failed to compute room occupancy", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"capacity":  models.RoomCapacity,
		"occupancy": occupancy,
	})
}

// writeServiceError logs internal failures and keeps expected domain errors
// quiet.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}

func operatorFrom(ctx context.Context) models.Operator {
	return models.Operator{
		ID:   requestcontext.OperatorID(ctx),
		Name: requestcontext.OperatorName(ctx),
	}
}

// Package service implements the admission policy: it orchestrates
// registration and checkout against the visitor directory, enforces the
// business invariants and emits audit entries.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"portaria/internal/audit"
	"portaria/internal/platform/metrics"
	"portaria/internal/visitor/models"
	"portaria/internal/visitor/store"
	"portaria/pkg/cpf"
	dErrors "portaria/pkg/domain-errors"
	"portaria/pkg/platform/sentinel"
	"portaria/pkg/requestcontext"
)

// Service is the admission policy. All state-changing operations take the
// acting operator as an explicit principal.
type Service struct {
	visitors store.Store
	audit    *audit.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func New(visitors store.Store, auditLog *audit.Service, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		visitors: visitors,
		audit:    auditLog,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("portaria/visitor"),
	}
}

// Register admits a visitor into a room.
//
// The duplicate-check-in and capacity checks are read-then-decide-then-write
// with no atomicity across concurrent callers; two simultaneous registrations
// can both pass before either writes. Accepted limitation for the
// single-operator usage pattern (see DESIGN.md).
func (s *Service) Register(ctx context.Context, req models.RegisterRequest, operator models.Operator) (*models.Visitor, error) {
	ctx, span := s.tracer.Start(ctx, "visitor.register",
		trace.WithAttributes(attribute.String("room", req.Room)))
	defer span.End()

	if err := validateRegisterRequest(req); err != nil {
		s.metrics.IncrementAdmissionRejected(string(dErrors.CodeOf(err)))
		return nil, err
	}
	normalized := cpf.Normalize(req.CPF)

	existing, err := s.visitors.FindMostRecentByCPF(ctx, normalized)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up visitor by CPF")
	}
	if existing != nil && existing.Status == models.StatusInBuilding {
		s.metrics.IncrementAdmissionRejected(string(dErrors.CodeConflict))
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"Visitante %s já está no prédio (%s). Faça checkout antes de registrar em nova sala.",
			existing.Name, existing.Room)
	}

	occupants, err := s.visitors.ListInRoom(ctx, req.Room, models.StatusInBuilding)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count room occupants")
	}
	if len(occupants) >= models.RoomCapacity {
		s.metrics.IncrementAdmissionRejected(string(dErrors.CodeCapacity))
		return nil, dErrors.Newf(dErrors.CodeCapacity,
			"Sala %s está lotada (máximo 3 visitantes). Escolha outra sala ou aguarde uma vaga.",
			req.Room)
	}

	now := requestcontext.Now(ctx).UTC()
	visitor := &models.Visitor{
		ID:             uuid.New(),
		Name:           req.Name,
		CPF:            normalized,
		Email:          req.Email,
		DateOfBirth:    req.DateOfBirth,
		Room:           req.Room,
		Status:         models.StatusInBuilding,
		CheckInTime:    now,
		RegisteredBy:   operatorName(operator),
		RegisteredByID: operator.ID,
		CheckedInBy:    operatorName(operator),
		CheckedInByID:  operator.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.visitors.Insert(ctx, visitor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register visitor")
	}

	// Best-effort: a failed audit write never rolls back the registration.
	s.audit.Log(ctx, audit.ActionVisitorRegistered,
		"Visitante "+visitor.Name+" registrado na "+visitor.Room,
		actorFor(operator), audit.LevelInfo)

	s.metrics.IncrementVisitorsRegistered()
	s.logger.InfoContext(ctx, "visitor registered",
		"visitor_id", visitor.ID.String(),
		"room", visitor.Room,
		"request_id", requestcontext.RequestID(ctx),
	)
	return visitor, nil
}

// Checkout transitions a visitor to checked_out. The record is re-read after
// the write; a record that cannot be re-located afterwards is a consistency
// fault between write and read and is surfaced, not swallowed.
func (s *Service) Checkout(ctx context.Context, visitorID string, operator models.Operator) (*models.Visitor, error) {
	ctx, span := s.tracer.Start(ctx, "visitor.checkout")
	defer span.End()

	if strings.TrimSpace(visitorID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Visitor ID is required")
	}
	id, err := uuid.Parse(visitorID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Visitor ID is invalid")
	}

	now := requestcontext.Now(ctx).UTC()
	if err := s.visitors.MarkCheckedOut(ctx, id, operator, now); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to checkout visitor")
	}

	visitor, err := s.visitors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Visitor not found after checkout")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-read visitor after checkout")
	}

	s.audit.Log(ctx, audit.ActionVisitorCheckedOut,
		"Visitante "+visitor.Name+" fez checkout da "+visitor.Room,
		actorFor(operator), audit.LevelInfo)

	s.metrics.IncrementVisitorsCheckedOut()
	s.logger.InfoContext(ctx, "visitor checked out",
		"visitor_id", visitor.ID.String(),
		"room", visitor.Room,
		"request_id", requestcontext.RequestID(ctx),
	)
	return visitor, nil
}

// List returns visitor records matching the filter, newest-created first.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Visitor, error) {
	if filter == "" {
		filter = models.FilterAll
	}
	if !models.ValidFilter(filter) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown filter %q", string(filter))
	}
	visitors, err := s.visitors.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visitors")
	}
	return visitors, nil
}

// RoomOccupancy returns the current in_building head count per room, with
// every room present even when empty.
func (s *Service) RoomOccupancy(ctx context.Context) (map[string]int, error) {
	occupancy := make(map[string]int, len(models.Rooms()))
	for _, room := range models.Rooms() {
		occupancy[room] = 0
	}
	visitors, err := s.visitors.List(ctx, models.FilterInBuilding)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visitors")
	}
	for _, v := range visitors {
		occupancy[v.Room]++
	}
	return occupancy, nil
}

func validateRegisterRequest(req models.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.CPF) == "" || strings.TrimSpace(req.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "Name, CPF, and email are required")
	}
	if !cpf.Valid(req.CPF) {
		return dErrors.New(dErrors.CodeValidation, "Invalid CPF format")
	}
	if !validEmail(req.Email) {
		return dErrors.New(dErrors.CodeValidation, "Invalid email format")
	}
	if strings.TrimSpace(req.Room) == "" {
		return dErrors.New(dErrors.CodeValidation, "Sala destino é obrigatória")
	}
	if !models.ValidRoom(req.Room) {
		return dErrors.Newf(dErrors.CodeValidation, "Sala inválida: %s", req.Room)
	}
	return nil
}

// validEmail checks the basic local@domain.tld shape, nothing more.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}
	local, domain := email[:at], email[at+1:]
	if local == "" || domain == "" {
		return false
	}
	if strings.ContainsAny(email, " \t\n") {
		return false
	}
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func operatorName(op models.Operator) string {
	if op.Name == "" {
		return "Unknown"
	}
	return op.Name
}

func actorFor(op models.Operator) *audit.Actor {
	name := op.Name
	if name == "" {
		name = "Sistema"
	}
	return &audit.Actor{ID: op.ID, Name: name}
}

package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"portaria/internal/platform/metrics"
	"portaria/pkg/requestcontext"
)

// DefaultListLimit bounds log retrieval when the caller does not ask for a
// specific count. It is also the hard cap.
const DefaultListLimit = 100

// Service is the audit log facade services emit through.
type Service struct {
	store   Store
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithSink registers a best-effort secondary sink.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// WithMetrics wires the failure counter.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log appends an entry with a server-assigned timestamp. It never returns an
// error: append failures are reported via slog and the failure counter only,
// so the primary operation is not blocked or rolled back.
func (s *Service) Log(ctx context.Context, action Action, details string, actor *Actor, level Level) {
	entry := Entry{
		ID:        uuid.New(),
		Action:    action,
		Details:   details,
		Actor:     actor,
		Level:     level,
		Timestamp: requestcontext.Now(ctx).UTC(),
	}

	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"action", string(action),
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.IncrementAuditFailures()
		}
		return
	}

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "audit sink publish failed",
				"action", string(action),
				"error", err,
			)
			if s.metrics != nil {
				s.metrics.IncrementAuditFailures()
			}
		}
	}
}

// List returns up to max entries, newest first. max values outside
// (0, DefaultListLimit] are clamped to DefaultListLimit. Retrieval failures
// degrade to an empty slice so read paths never break on a broken log.
func (s *Service) List(ctx context.Context, max int) []Entry {
	if max <= 0 || max > DefaultListLimit {
		max = DefaultListLimit
	}
	entries, err := s.store.ListRecent(ctx, max)
	if err != nil {
		s.logger.ErrorContext(ctx, "audit list failed", "error", err)
		return []Entry{}
	}
	return entries
}

package session

import (
	"context"

	"github.com/google/uuid"

	"portaria/internal/auth/models"
)

// Store persists operator sessions with a TTL. Implementations return
// sentinel.ErrNotFound for missing or expired sessions.
type Store interface {
	Save(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

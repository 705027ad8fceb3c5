package user

import (
	"context"

	"github.com/google/uuid"

	"portaria/internal/auth/models"
)

// Store persists operator accounts. Implementations return
// sentinel.ErrNotFound for missing accounts and sentinel.ErrConflict when an
// email is already taken.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Package store holds the visitor directory implementations. Stores persist
// and query visitor records; admission rules live in the service layer.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"portaria/internal/visitor/models"
)

// Store is the authoritative visitor directory. Implementations return
// sentinel.ErrNotFound (optionally wrapped) for missing records.
type Store interface {
	// Insert persists a new record, assigning creation and update timestamps
	// from the record itself (the service stamps them).
	Insert(ctx context.Context, v *models.Visitor) error

	// FindByID is a point read of a single record.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)

	// FindMostRecentByCPF matches on the normalized (digits-only) CPF and
	// returns the record with the latest creation timestamp when several
	// share one.
	FindMostRecentByCPF(ctx context.Context, cpf string) (*models.Visitor, error)

	// ListInRoom returns records in the given room with the given status.
	ListInRoom(ctx context.Context, room string, status models.Status) ([]*models.Visitor, error)

	// List returns records matching the filter, always sorted by creation
	// timestamp descending regardless of underlying store order.
	List(ctx context.Context, filter models.Filter) ([]*models.Visitor, error)

	// MarkCheckedOut transitions a record to checked_out, setting the
	// check-out timestamp, the checked-out-by fields and the update
	// timestamp. Returns sentinel.ErrNotFound for an unknown id.
	MarkCheckedOut(ctx context.Context, id uuid.UUID, operator models.Operator, now time.Time) error
}

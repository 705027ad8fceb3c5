package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portaria/internal/visitor/models"
	"portaria/pkg/platform/sentinel"
)

// Postgres persists visitor records in the visitors table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const visitorColumns = `
	id, name, cpf, email, date_of_birth, room, status,
	check_in_time, check_out_time,
	registered_by, registered_by_id, checked_in_by, checked_in_by_id,
	checked_out_by, checked_out_by_id,
	created_at, updated_at`

func (s *Postgres) Insert(ctx context.Context, v *models.Visitor) error {
	query := `
		INSERT INTO visitors (` + visitorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.pool.Exec(ctx, query,
		v.ID,
		v.Name,
		v.CPF,
		v.Email,
		v.DateOfBirth,
		v.Room,
		string(v.Status),
		v.CheckInTime,
		v.CheckOutTime,
		v.RegisteredBy,
		nullable(v.RegisteredByID),
		v.CheckedInBy,
		nullable(v.CheckedInByID),
		nullable(v.CheckedOutBy),
		nullable(v.CheckedOutByID),
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert visitor: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors WHERE id = $1`
	row := s.pool.QueryRow(ctx, query, id)
	v, err := scanVisitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find visitor by id: %w", err)
	}
	return v, nil
}

func (s *Postgres) FindMostRecentByCPF(ctx context.Context, cpf string) (*models.Visitor, error) {
	query := `
		SELECT ` + visitorColumns + `
		FROM visitors
		WHERE cpf = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := s.pool.QueryRow(ctx, query, cpf)
	v, err := scanVisitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find visitor by cpf: %w", err)
	}
	return v, nil
}

func (s *Postgres) ListInRoom(ctx context.Context, room string, status models.Status) ([]*models.Visitor, error) {
	query := `
		SELECT ` + visitorColumns + `
		FROM visitors
		WHERE room = $1 AND status = $2
	`
	rows, err := s.pool.Query(ctx, query, room, string(status))
	if err != nil {
		return nil, fmt.Errorf("list visitors in room: %w", err)
	}
	defer rows.Close()
	return scanVisitors(rows)
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Visitor, error) {
	query := `SELECT ` + visitorColumns + ` FROM visitors`
	args := []any{}
	if filter != models.FilterAll {
		query += ` WHERE status = $1`
		args = append(args, string(filter))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()
	return scanVisitors(rows)
}

func (s *Postgres) MarkCheckedOut(ctx context.Context, id uuid.UUID, operator models.Operator, now time.Time) error {
	query := `
		UPDATE visitors
		SET status = $2,
		    check_out_time = $3,
		    checked_out_by = $4,
		    checked_out_by_id = $5,
		    updated_at = $3
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		id,
		string(models.StatusCheckedOut),
		now,
		operator.Name,
		nullable(operator.ID),
	)
	if err != nil {
		return fmt.Errorf("mark visitor checked out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// nullable maps an empty string to NULL so optional operator ids are stored
// the way the schema declares them.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var (
		v              models.Visitor
		status         string
		registeredByID *string
		checkedInByID  *string
		checkedOutBy   *string
		checkedOutByID *string
	)
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.CPF,
		&v.Email,
		&v.DateOfBirth,
		&v.Room,
		&status,
		&v.CheckInTime,
		&v.CheckOutTime,
		&v.RegisteredBy,
		&registeredByID,
		&v.CheckedInBy,
		&checkedInByID,
		&checkedOutBy,
		&checkedOutByID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Status = models.Status(status)
	v.RegisteredByID = deref(registeredByID)
	v.CheckedInByID = deref(checkedInByID)
	v.CheckedOutBy = deref(checkedOutBy)
	v.CheckedOutByID = deref(checkedOutByID)
	return &v, nil
}

func scanVisitors(rows pgx.Rows) ([]*models.Visitor, error) {
	var out []*models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visitors: %w", err)
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"portaria/internal/audit"

	"github.com/google/uuid"
)

// Store persists audit entries in the audit_entries table. Entries are
// append-only; there is no update or delete path.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	query := `
		INSERT INTO audit_entries (id, action, details, actor_id, actor_name, level, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var actorID, actorName *string
	if entry.Actor != nil {
		actorName = &entry.Actor.Name
		if entry.Actor.ID != "" {
			actorID = &entry.Actor.ID
		}
	}
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Action),
		entry.Details,
		actorID,
		actorName,
		string(entry.Level),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	query := `
		SELECT id, action, details, actor_id, actor_name, level, timestamp
		FROM audit_entries
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			entry     audit.Entry
			id        uuid.UUID
			action    string
			level     string
			actorID   *string
			actorName *string
		)
		err := rows.Scan(&id, &action, &entry.Details, &actorID, &actorName, &level, &entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = id
		entry.Action = audit.Action(action)
		entry.Level = audit.Level(level)
		if actorName != nil {
			actor := &audit.Actor{Name: *actorName}
			if actorID != nil {
				actor.ID = *actorID
			}
			entry.Actor = actor
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

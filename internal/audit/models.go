// Package audit is the append-only record of notable actions. Writes are
// best-effort: a failed append is reported on the diagnostic channel (slog +
// metrics) and never escalates to the caller, because logging must not block
// the primary operation.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action tags an audit entry with the kind of event it records.
type Action string

const (
	ActionVisitorRegistered Action = "VISITOR_REGISTERED"
	ActionVisitorCheckedOut Action = "VISITOR_CHECKED_OUT"
	ActionUserLogin         Action = "USER_LOGIN"
	ActionUserRegistration  Action = "USER_REGISTRATION"
	ActionUserLogout        Action = "USER_LOGOUT"
)

// Level is the severity of an audit entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Actor is the operator an entry is attributed to. A nil Actor on an entry
// means the action was system-initiated.
type Actor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Entry is a single audit record. Entries are never updated or deleted.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
	Actor     *Actor    `json:"actor,omitempty"`
	Level     Level     `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

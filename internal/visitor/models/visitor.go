package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the visitor lifecycle state. The only transition is
// in_building -> checked_out, exactly once; records are never reopened.
type Status string

const (
	StatusInBuilding Status = "in_building"
	StatusCheckedOut Status = "checked_out"
)

// RoomCapacity is the maximum number of concurrent in_building visitors per
// room.
const RoomCapacity = 3

// rooms is the fixed set of destination rooms. There is no per-tenant room
// configuration; the building floor plan is baked in.
var rooms = []string{
	"Sala Diamante",
	"Sala Esmeralda",
	"Sala Rubi",
	"Sala Safira",
	"Sala Ametista",
}

// Rooms returns the fixed room list in display order.
func Rooms() []string {
	out := make([]string, len(rooms))
	copy(out, rooms)
	return out
}

// ValidRoom reports whether name is one of the fixed rooms.
func ValidRoom(name string) bool {
	for _, r := range rooms {
		if r == name {
			return true
		}
	}
	return false
}

// Operator identifies the authenticated person performing a registration or
// checkout, distinct from the visitor. An empty ID means the action was
// system-initiated.
type Operator struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Visitor is a check-in/check-out record. Records accumulate: a person who
// returns gets a fresh record, prior checked_out rows are history.
type Visitor struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	CPF            string     `json:"cpf"` // normalized, digits only
	Email          string     `json:"email"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Room           string     `json:"room"`
	Status         Status     `json:"status"`
	CheckInTime    time.Time  `json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	RegisteredBy   string     `json:"registered_by"`
	RegisteredByID string     `json:"registered_by_id,omitempty"`
	CheckedInBy    string     `json:"checked_in_by"`
	CheckedInByID  string     `json:"checked_in_by_id,omitempty"`
	CheckedOutBy   string     `json:"checked_out_by,omitempty"`
	CheckedOutByID string     `json:"checked_out_by_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Filter selects which visitor records a listing returns.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterInBuilding Filter = Filter(StatusInBuilding)
	FilterCheckedOut Filter = Filter(StatusCheckedOut)
)

// ValidFilter reports whether f is one of the known listing filters.
func ValidFilter(f Filter) bool {
	switch f {
	case FilterAll, FilterInBuilding, FilterCheckedOut:
		return true
	}
	return false
}

// RegisterRequest carries the admission inputs for a new visitor.
type RegisterRequest struct {
	Name        string     `json:"name"`
	CPF         string     `json:"cpf"`
	Email       string     `json:"email"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Room        string     `json:"room"`
}

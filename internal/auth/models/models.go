package models

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies an operator account. Accounts created through the
// passphrase-gated registration are admins; user accounts exist for
// read-mostly staff.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Operator is the authenticated principal performing registrations and
// checkouts. The admission core treats it as opaque.
type Operator struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
}

// Account is the stored operator record, including the bcrypt password hash.
// It never leaves the auth package; transports see Operator.
type Account struct {
	Operator
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session is a logged-in operator session. The JWT carries its id; logout
// deletes it, which invalidates outstanding tokens at verification time.
type Session struct {
	ID         uuid.UUID `json:"id"`
	OperatorID uuid.UUID `json:"operator_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LoginRequest carries operator credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries a new operator registration. Passphrase is the
// shared secret gating account creation.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

// LoginResult is returned on successful login or registration.
type LoginResult struct {
	Operator Operator `json:"operator"`
	Token    string   `json:"token"`
}

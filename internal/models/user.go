package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
	RoleUser       Role = "user"
)

// ValidRole reports whether r is a member of the role enum.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOperator, RoleUser:
		return true
	}
	return false
}

// User is an account that can authenticate and create occurrences.
// PasswordHash is opaque to everything except the login path.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Registration string    `json:"registration,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate carries the fields a caller may change on an existing user.
// Password, when provided, is the plaintext to re-hash.
type UserUpdate struct {
	Name         *string
	Email        *string
	Password     *string
	Role         *Role
	Registration *string
	Unit         *string
}

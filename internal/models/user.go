package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants for users
const (
	RoleGatekeeper = "gatekeeper"
	RoleResident   = "resident"
	RoleAdmin      = "admin"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGatekeeper, RoleResident, RoleAdmin:
		return true
	}
	return false
}

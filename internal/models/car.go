package models

import (
	"time"

	"github.com/google/uuid"
)

// Car belongs to exactly one Resident. License plates are unique per
// active car; the store enforces uniqueness upstream.
type Car struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ResidentID   uuid.UUID `json:"resident_id" db:"resident_id"`
	LicensePlate string    `json:"license_plate" db:"license_plate"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

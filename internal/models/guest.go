package models

import (
	"time"

	"github.com/google/uuid"
)

// Guest status values. A guest transitions pending -> arrived exactly once,
// only as a side effect of a successful match.
const (
	GuestStatusPending = "pending"
	GuestStatusArrived = "arrived"
)

// Guest is a visitor invited by a Resident (the host). Either the license
// plate, the enrolled face reference, or both may be set.
type Guest struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ResidentID   uuid.UUID  `json:"resident_id" db:"resident_id"`
	Name         string     `json:"name" db:"name"`
	LicensePlate *string    `json:"license_plate" db:"license_plate"`
	FaceRef      *string    `json:"face_ref" db:"face_ref"`
	Status       string     `json:"status" db:"status"`
	ArrivalTime  *time.Time `json:"arrival_time" db:"arrival_time"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Resident is linked 1:1 to a User. A resident with no enrolled face
// reference cannot be matched by face.
type Resident struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FaceRef   *string   `json:"face_ref" db:"face_ref"`
	Unit      *string   `json:"unit" db:"unit"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasEnrolledFace reports whether the resident can be matched by face.
func (r *Resident) HasEnrolledFace() bool {
	return r.FaceRef != nil && *r.FaceRef != ""
}

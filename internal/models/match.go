package models

import "github.com/google/uuid"

// Match types returned by the plate, face, and joint matchers
const (
	MatchTypeResident = "resident"
	MatchTypeGuest    = "guest"
	MatchTypeUnknown  = "unknown"
)

// MatchResult is the outcome of a single plate or face lookup.
type MatchResult struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id,omitempty"`
	ResidentID uuid.UUID `json:"resident_id,omitempty"`
	GuestID    uuid.UUID `json:"guest_id,omitempty"`
}

// VerificationResult is the outcome of the joint entry verification. On a
// failed face recognition only Demographics is populated.
type VerificationResult struct {
	Type           string       `json:"type"`
	Plate          string       `json:"plate,omitempty"`
	UserID         uuid.UUID    `json:"user_id,omitempty"`
	ResidentID     uuid.UUID    `json:"resident_id,omitempty"`
	GuestID        uuid.UUID    `json:"guest_id,omitempty"`
	FaceConfidence float64      `json:"face_confidence,omitempty"`
	Demographics   Demographics `json:"demographics"`
}

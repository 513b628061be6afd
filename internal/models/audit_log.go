package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONB represents a JSONB column value
type JSONB map[string]interface{}

// Audit event categories
const (
	CategoryPlateRecognition  = "plate_recognition"
	CategoryFaceRecognition   = "face_recognition"
	CategoryEntryVerification = "entry_verification"
)

// Payload status values shared across categories
const (
	AuditStatusResidentAccess = "resident_access"
	AuditStatusGuestArrived   = "guest_arrived"
	AuditStatusUnknown        = "unknown"
	AuditStatusFailed         = "failed"
)

// Failure reasons for entry_verification payloads
const (
	ReasonPlateRecognitionFailed = "plate_recognition_failed"
	ReasonFaceNotRecognized      = "face_not_recognized"
	ReasonNoMatch                = "no_match"
)

// AuditLog is an immutable record of a gate decision. Actor is nil for
// anonymous events. CreatedAt is assigned at write time.
type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Actor     *uuid.UUID `json:"actor" db:"actor"`
	Category  string     `json:"category" db:"category"`
	Payload   JSONB      `json:"payload" db:"payload"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// AuditPayload is a tagged payload schema. Each audit category has its own
// payload type; validation happens at the audit-log write boundary.
type AuditPayload interface {
	AuditCategory() string
	Validate() error
}

// Demographics is the demographic metadata the face recognizer reports
// alongside an identity. It is included even on failed recognitions to aid
// manual review.
type Demographics struct {
	Gender   string `json:"gender,omitempty"`
	AgeRange string `json:"age_range,omitempty"`
}

// PlateRecognitionPayload records the outcome of a standalone plate match.
type PlateRecognitionPayload struct {
	Plate      string     `json:"plate"`
	Status     string     `json:"status"`
	ResidentID *uuid.UUID `json:"resident_id,omitempty"`
	GuestID    *uuid.UUID `json:"guest_id,omitempty"`
}

func (p PlateRecognitionPayload) AuditCategory() string { return CategoryPlateRecognition }

func (p PlateRecognitionPayload) Validate() error {
	switch p.Status {
	case AuditStatusResidentAccess, AuditStatusGuestArrived, AuditStatusUnknown:
		return nil
	}
	return fmt.Errorf("invalid plate_recognition status %q", p.Status)
}

// FaceRecognitionPayload records the outcome of a standalone face match.
type FaceRecognitionPayload struct {
	Status       string        `json:"status"`
	UserID       *uuid.UUID    `json:"user_id,omitempty"`
	ResidentID   *uuid.UUID    `json:"resident_id,omitempty"`
	GuestID      *uuid.UUID    `json:"guest_id,omitempty"`
	Confidence   *float64      `json:"confidence,omitempty"`
	Demographics *Demographics `json:"demographics,omitempty"`
}

func (p FaceRecognitionPayload) AuditCategory() string { return CategoryFaceRecognition }

func (p FaceRecognitionPayload) Validate() error {
	switch p.Status {
	case AuditStatusResidentAccess, AuditStatusGuestArrived, AuditStatusUnknown:
		return nil
	}
	return fmt.Errorf("invalid face_recognition status %q", p.Status)
}

// EntryVerificationPayload records the outcome of the joint plate+face
// verification protocol.
type EntryVerificationPayload struct {
	Plate          string     `json:"plate,omitempty"`
	FaceID         string     `json:"face_id,omitempty"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason,omitempty"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	ResidentID     *uuid.UUID `json:"resident_id,omitempty"`
	GuestID        *uuid.UUID `json:"guest_id,omitempty"`
	FaceConfidence *float64   `json:"face_confidence,omitempty"`
}

func (p EntryVerificationPayload) AuditCategory() string { return CategoryEntryVerification }

func (p EntryVerificationPayload) Validate() error {
	switch p.Status {
	case AuditStatusResidentAccess, AuditStatusGuestArrived:
		return nil
	case AuditStatusFailed:
		switch p.Reason {
		case ReasonPlateRecognitionFailed, ReasonFaceNotRecognized, ReasonNoMatch:
			return nil
		}
		return fmt.Errorf("invalid entry_verification failure reason %q", p.Reason)
	}
	return fmt.Errorf("invalid entry_verification status %q", p.Status)
}

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	Category  *string    `json:"category"`
	Actor     *uuid.UUID `json:"actor"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

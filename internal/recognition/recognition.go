// Package recognition holds the HTTP clients for the machine-learning
// collaborators: the license-plate OCR service and the face-recognition
// service. The decision logic treats both as black boxes with a narrow
// contract; recognizer internals are out of scope.
package recognition

import (
	"context"

	"gatewarden/internal/models"
)

// UnknownIdentity is the sentinel the face recognizer reports when the face
// does not match any enrolled identity.
const UnknownIdentity = "Unknown"

// PlateResult is a successful OCR read. DebugImage references the annotated
// crop the OCR service produced, when it produced one.
type PlateResult struct {
	Plate      string `json:"plate"`
	DebugImage string `json:"debug_image,omitempty"`
}

// PlateReader reads a normalized license plate from an image. A plate the
// service could not read surfaces as common.ErrPlateUnreadable; transport
// and server errors surface as collaborator failures.
type PlateReader interface {
	ReadPlate(ctx context.Context, filename string, image []byte) (*PlateResult, error)
}

// FaceResult is the face recognizer's verdict. ID is UnknownIdentity when
// the face is not enrolled; demographics are reported either way.
type FaceResult struct {
	ID           string              `json:"id"`
	Confidence   float64             `json:"confidence"`
	Demographics models.Demographics `json:"demographics"`
}

// FaceRecognizer identifies a face image against the enrolled gallery.
type FaceRecognizer interface {
	Recognize(ctx context.Context, filename string, image []byte) (*FaceResult, error)
}

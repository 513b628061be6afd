package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Domain error variants. Matchers return these instead of raising through
// the stack; the handler layer translates them to response codes. Anything
// not wrapping one of these is treated as a collaborator failure (500).
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrPlateUnreadable   = errors.New("failed to read license plate")
	ErrFaceNotRecognized = errors.New("face not recognized")
	ErrNoMatch           = errors.New("no matching resident or guest")
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendError sends a machine-readable error envelope with the given code.
func SendError(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorResponse{Status: "error", Message: message})
}

// HTTPStatus maps a domain error variant to its response code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrPlateUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, ErrFaceNotRecognized), errors.Is(err, ErrNoMatch):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// SendDomainError translates a domain error variant into a JSON error
// response. Unexpected errors are reported as server errors without leaking
// collaborator details.
func SendDomainError(c echo.Context, err error) error {
	code := HTTPStatus(err)
	if code == http.StatusInternalServerError {
		return SendError(c, code, "operation could not be completed")
	}
	return SendError(c, code, err.Error())
}

// Wrap annotates a domain error variant with context while keeping it
// matchable with errors.Is.
func Wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

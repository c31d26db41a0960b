package gerrit

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthFailed indicates the server rejected the configured credentials.
var ErrAuthFailed = errors.New("gerrit authentication failed")

// ErrNotFound indicates the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// GatewayError is the single error shape for REST failures: HTTP errors,
// network failures, and unparseable response bodies. Status is the HTTP
// status code, or 0 when the failure happened before a response arrived.
type GatewayError struct {
	Status  int
	Op      string
	Message string
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gerrit: %s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("gerrit: %s: %s", e.Op, e.Message)
}

// Unwrap maps well-known HTTP statuses to sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *GatewayError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthFailed
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

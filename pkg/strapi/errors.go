package strapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired          = errors.New("config is required")
	ErrUnknownContentType      = errors.New("content type not registered")
	ErrDuplicateContentType    = errors.New("duplicate content type")
	ErrContentTypeNameRequired = errors.New("content type name is required")
	ErrNoMoreItems             = errors.New("no more items")
)

// APIError is the structured error the server reports inside a non-2xx
// response body, or a synthesized equivalent when the body is not in the
// expected shape.
type APIError struct {
	Status  int            `json:"status"`
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}

	return fmt.Sprintf("%s (status %d): %s", e.Name, e.Status, e.Message)
}

// ErrorResponse is the wire shape of an error body: {data: null, error: {...}}.
type ErrorResponse struct {
	Data any       `json:"data"`
	Err  *APIError `json:"error"`
}

// ParseErrorResponse parses a structured error body, reporting whether the
// bytes carried one.
func ParseErrorResponse(data []byte) (*APIError, bool) {
	var resp ErrorResponse

	err := json.Unmarshal(data, &resp)
	if err != nil || resp.Err == nil {
		return nil, false
	}

	if resp.Err.Status == 0 && resp.Err.Name == "" && resp.Err.Message == "" {
		return nil, false
	}

	return resp.Err, true
}

// TransportError reports that no response was received at all: network
// failure, DNS, connection refused. It carries no status code.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NormalisationError reports a response item that could not be normalised,
// naming where in the response tree it sat.
type NormalisationError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *NormalisationError) Error() string {
	if e.Path == "" {
		return "normalise: " + e.Reason
	}

	return fmt.Sprintf("normalise: %s at %s", e.Reason, e.Path)
}

// TimeoutError reports that a pagination traversal exceeded its wall-clock
// budget. It is raised only between page requests, never mid-request.
type TimeoutError struct {
	Budget    time.Duration
	Elapsed   time.Duration
	Collected int
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch all: timed out after %s (budget %s, %d entities collected)",
		e.Elapsed, e.Budget, e.Collected)
}

// IsNotFound checks if the error is a not-found API error.
func IsNotFound(err error) bool {
	return hasStatus(err, 404)
}

// IsUnauthorized checks if the error is an unauthorized API error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, 401)
}

// IsForbidden checks if the error is a forbidden API error.
func IsForbidden(err error) bool {
	return hasStatus(err, 403)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}

	return false
}

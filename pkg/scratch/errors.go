package scratch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-success response from the Scratch API.
type APIError struct {
	StatusCode int    `json:"-"       yaml:"-"`
	Code       string `json:"code"    yaml:"code"`
	Message    string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	case e.Code != "":
		return fmt.Sprintf("%s (status: %d)", e.Code, e.StatusCode)
	default:
		return fmt.Sprintf("unexpected response status %d", e.StatusCode)
	}
}

// Error codes returned by the API.
const (
	ErrorCodeNotFound     = "NotFound"
	ErrorCodeUnauthorized = "Unauthorized"
	ErrorCodeForbidden    = "Forbidden"
)

// Error taxonomy of the core.
var (
	// ErrFetchFailed wraps every transport failure surfaced by a document
	// hydration or a stream page fetch.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrUnresolvedEndpoint is returned by documents built without an
	// endpoint resolver.
	ErrUnresolvedEndpoint = errors.New("document has no endpoint resolver")

	// ErrStreamTransform wraps a per-record transform failure.
	ErrStreamTransform = errors.New("stream record transform failed")

	// ErrNoMoreItems is returned by Stream.Next once the stream is exhausted.
	ErrNoMoreItems = errors.New("no more items")
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrTransportRequired   = errors.New("transport is required")
	ErrInvalidProjectID    = errors.New("invalid project ID")
	ErrInvalidUsername     = errors.New("invalid username")
	ErrInvalidSeedPolicy   = errors.New("invalid seed policy")
	ErrLoginFailed         = errors.New("login failed")
	ErrNoSession           = errors.New("no login session")
	ErrUnexpectedFieldType = errors.New("unexpected field type")
)

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound, ErrorCodeNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized, ErrorCodeUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden, ErrorCodeForbidden)
}

func hasStatus(err error, status int, code string) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status || apiErr.Code == code
	}

	return false
}

// ParseAPIError builds an APIError from a response status and body. Bodies
// that are not a JSON error object still produce an APIError carrying the
// status code.
func ParseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	if len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}

	return apiErr
}

package logship

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error types for logship API responses.
var (
	// ErrUnauthorised indicates the bearer token is invalid or expired.
	ErrUnauthorised = errors.New("logship: unauthorised")

	// ErrForbidden indicates the user lacks permission for the resource.
	ErrForbidden = errors.New("logship: forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("logship: not found")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("logship: bad request")

	// ErrServerError indicates a server-side failure.
	ErrServerError = errors.New("logship: server error")

	// ErrUnexpectedStatus covers any other non-2xx status.
	ErrUnexpectedStatus = errors.New("logship: unexpected status")
)

// WrapError converts an HTTP status code to an appropriate error.
// Returns nil for 2xx.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		if statusCode < 200 || statusCode > 299 {
			return ErrUnexpectedStatus
		}
		return nil
	}
}

// APIError is a non-2xx response. Message comes from the server's error
// body when it sends one.
type APIError struct {
	StatusCode int
	Message    string
	Kind       error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Kind }

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    gjson.GetBytes(body, "message").String(),
		Kind:       WrapError(resp.StatusCode),
	}
}

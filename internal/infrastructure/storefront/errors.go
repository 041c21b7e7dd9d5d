package storefront

import (
	"errors"
	"fmt"
	"net/http"
)

// Client errors
var (
	ErrBackendUnavailable = errors.New("storefront: backend unavailable")
	ErrUnauthorized       = errors.New("storefront: unauthorized")
	ErrRequestFailed      = errors.New("storefront: request failed")
	ErrInvalidResponse    = errors.New("storefront: invalid response")
)

// RequestError is returned for HTTP responses with status >= 400.
// It matches ErrUnauthorized for 401 and ErrRequestFailed otherwise.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s: %s %s: HTTP %d", e.kind(), e.Method, e.Path, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap lets errors.Is match the sentinel for the status class
func (e *RequestError) Unwrap() error {
	return e.kind()
}

func (e *RequestError) kind() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return ErrRequestFailed
}

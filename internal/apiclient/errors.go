// internal/apiclient/errors.go
// Normalized client error taxonomy shared by every endpoint

package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies an APIError.
type Kind string

const (
	KindInvalidURL             Kind = "invalid_url"
	KindAuthenticationRequired Kind = "authentication_required"
	KindUnauthorized           Kind = "unauthorized"
	KindNetwork                Kind = "network"
	KindMalformedResponse      Kind = "malformed_response"
	KindServer                 Kind = "server_error"
	KindConflict               Kind = "conflict"
	KindValidation             Kind = "validation"
)

// APIError is returned by every client and service call.
type APIError struct {
	Kind    Kind
	Status  int    // HTTP status, 0 when no response was received
	Message string // human readable, safe to show inline in forms
	Code    string // backend "code" field when present
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches any APIError of the same kind, so errors.Is(err, ErrUnauthorized) works
// regardless of status or message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidURL             = &APIError{Kind: KindInvalidURL, Message: "invalid URL"}
	ErrAuthenticationRequired = &APIError{Kind: KindAuthenticationRequired, Message: "authentication required"}
	ErrUnauthorized           = &APIError{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNetwork                = &APIError{Kind: KindNetwork, Message: "network error"}
	ErrMalformedResponse      = &APIError{Kind: KindMalformedResponse, Message: "malformed response"}
	ErrServer                 = &APIError{Kind: KindServer, Message: "server error"}
	ErrConflict               = &APIError{Kind: KindConflict, Message: "conflict"}
	ErrValidation             = &APIError{Kind: KindValidation, Message: "validation failed"}
)

// KindOf returns the kind of err, or "" when err is not an APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, 0 when there is none.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Validation builds a precondition error raised before any request is issued.
func Validation(format string, args ...interface{}) *APIError {
	return &APIError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// WrapValidation converts a struct validation error into a validation APIError.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Kind: KindValidation, Message: err.Error()}
}

// Package apperr defines the failure taxonomy shared by services and handlers.
//
// Services return one of the sentinel errors (usually wrapped with context via
// fmt.Errorf and %w); handlers translate them to HTTP status codes with
// HTTPStatus. Anything outside the taxonomy maps to 500.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique field (email, username) is already taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials means a login or password check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden means the caller is authenticated but lacks privilege.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated means the caller identity is missing or invalid.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Message returns the client-facing text for a taxonomy error, or fallback
// for anything else so internal details never leak into responses.
func Message(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrConflict):
		return ErrConflict.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrUnauthenticated):
		return ErrUnauthenticated.Error()
	case errors.Is(err, ErrForbidden):
		return ErrForbidden.Error()
	default:
		return fallback
	}
}

// HTTPStatus maps a service error to the HTTP status code to respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

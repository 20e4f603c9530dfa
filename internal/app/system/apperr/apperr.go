// internal/app/system/apperr/apperr.go
//
// Package apperr defines the error kinds shared by stores, adapters and
// handlers. Each kind is a sentinel; use errors.Is to classify and
// Message to get the text shown to the user.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds
var (
	// ErrAuth is a failed sign-in or sign-up (bad credentials, duplicate account).
	ErrAuth = errors.New("authentication failed")
	// ErrNotFound is a missing document or slug.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is a non-owner touching a private document.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrGeneration is an AI call that failed or returned unusable content.
	ErrGeneration = errors.New("content generation failed")
	// ErrConflict is a duplicate slug within one owner's pages.
	ErrConflict = errors.New("conflict")
)

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind with a user-facing message.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Auth returns an ErrAuth with the given message.
func Auth(message string) *Error { return New(ErrAuth, message) }

// NotFound returns an ErrNotFound describing what was missing.
func NotFound(what string) *Error { return New(ErrNotFound, what+" not found") }

// PermissionDenied returns an ErrPermissionDenied.
func PermissionDenied(message string) *Error { return New(ErrPermissionDenied, message) }

// Generation wraps an upstream failure as ErrGeneration.
func Generation(message string, cause error) *Error { return Wrap(ErrGeneration, message, cause) }

// Conflict returns an ErrConflict with the given message.
func Conflict(message string) *Error { return New(ErrConflict, message) }

// Message returns the user-facing text of err. Errors that are not *Error
// get fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

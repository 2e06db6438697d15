// Package apperr classifies failures so the HTTP layer can map them to
// status codes without inspecting error strings.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind categorizes an application error.
type Kind string

const (
	KindValidation Kind = "VALIDATION" // malformed or contradictory input
	KindNotFound   Kind = "NOT_FOUND"  // well-formed query matched nothing
	KindUpstream   Kind = "UPSTREAM"   // external service failed or timed out
)

// AppError carries a kind, a user-facing message, and an optional cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error with the given user-facing message.
func NewValidation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFound creates a not-found error with the given user-facing message.
func NewNotFound(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewUpstream creates an upstream error wrapping the transport-level cause.
func NewUpstream(message string, err error) error {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// Wrap adds context to err. An existing AppError keeps its kind; anything
// else becomes an upstream error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Kind:    appErr.Kind,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     err,
		}
	}
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

func is(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return is(err, KindValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsUpstream reports whether err is an upstream error.
func IsUpstream(err error) bool { return is(err, KindUpstream) }

// IsTimeout reports whether err's cause is a deadline or network timeout.
// Used upstream to answer 504 instead of 502.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Message returns the user-facing message of an AppError, or err.Error()
// for any other error.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

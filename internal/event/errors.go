package event

import (
	"errors"
	"fmt"
)

// ErrHandlerPanic matches any PanicError via errors.Is.
var ErrHandlerPanic = errors.New("handler panicked")

// HandlerError wraps an error returned by a handler.
type HandlerError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Label is the channel label, if any.
	Label string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("handler %s on %s: %v", e.SubscriptionID, e.Label, e.Err)
	}
	return fmt.Sprintf("handler %s: %v", e.SubscriptionID, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a handler.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID string

	// Label is the channel label, if any.
	Label string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("handler %s on %s panicked: %v", e.SubscriptionID, e.Label, e.Value)
	}
	return fmt.Sprintf("handler %s panicked: %v", e.SubscriptionID, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

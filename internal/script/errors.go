package script

import "errors"

// Errors for script operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrUnknownName is returned for a property or event that was never
	// registered.
	ErrUnknownName = errors.New("script: unknown name")

	// ErrReadOnly is returned when a script assigns a read-only property.
	ErrReadOnly = errors.New("script: property is read-only")

	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("script: name already registered")
)

package async

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyScheduled is returned by Schedule on a task that has left
	// the Created state.
	ErrAlreadyScheduled = errors.New("async: task already scheduled")

	// ErrWorkPanicked wraps a panic raised by a task's work function.
	ErrWorkPanicked = errors.New("async: work panicked")
)

// StateError reports an operation attempted in the wrong task state.
type StateError struct {
	Op    string
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("async: %s in state %s: %v", e.Op, e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

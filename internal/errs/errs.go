// Package errs carries structured framework errors and the reporting hook for
// failures that have no caller to return to, such as handler errors raised
// from inside a native toolkit callback.
package errs

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dshills/widgetry/internal/logging"
)

// Kind categorizes a framework error.
type Kind int

const (
	// KindUnknown is an uncategorized error.
	KindUnknown Kind = iota
	// KindBridge is a failure while dispatching a native callback.
	KindBridge
	// KindLifetime is a native callback whose bridge context is gone.
	KindLifetime
	// KindAsync is a failure while delivering a task completion.
	KindAsync
	// KindConfig is a configuration load or reload failure.
	KindConfig
	// KindScript is a failure inside a script handler.
	KindScript
	// KindPanic is a recovered panic.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindBridge:
		return "bridge"
	case KindLifetime:
		return "lifetime"
	case KindAsync:
		return "async"
	case KindConfig:
		return "config"
	case KindScript:
		return "script"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error is a structured framework error.
type Error struct {
	// Op is the operation that failed, e.g. "bridge.smart".
	Op string
	// Kind categorizes the failure.
	Kind Kind
	// Label is the event label involved, if any.
	Label string
	// Err is the underlying error.
	Err error
	// Stack is set for KindPanic.
	Stack string
	// Timestamp is filled in by Report when zero.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s [%s] event=%s: %v", e.Op, e.Kind, e.Label, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Handler receives reported errors.
type Handler interface {
	HandleError(err *Error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(err *Error)

// HandleError implements Handler.
func (f HandlerFunc) HandleError(err *Error) { f(err) }

// LogHandler writes reported errors to a logger.
type LogHandler struct {
	Logger *logging.Logger
}

// HandleError implements Handler.
func (h *LogHandler) HandleError(err *Error) {
	l := h.Logger
	if l == nil {
		l = logging.Get()
	}
	l.WithComponent("errs").Error("%v", err)
	if err.Stack != "" {
		l.WithComponent("errs").Debug("stack:\n%s", err.Stack)
	}
}

var (
	handlerMu sync.RWMutex
	handler   Handler = &LogHandler{}
)

// SetHandler replaces the process-wide handler. Nil restores the LogHandler.
func SetHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = &LogHandler{}
	}
	handler = h
}

func currentHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report hands err to the current handler.
func Report(err *Error) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	currentHandler().HandleError(err)
}

// Recover reports a panic in progress. Use as `defer errs.Recover("op")`.
func Recover(op string) {
	if r := recover(); r != nil {
		Report(&Error{
			Op:    op,
			Kind:  KindPanic,
			Err:   fmt.Errorf("panic: %v", r),
			Stack: string(debug.Stack()),
		})
	}
}

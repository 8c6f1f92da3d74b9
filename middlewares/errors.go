package middlewares

import (
	"errors"
	"fmt"
	"time"
)

// PanicError is a panic recovered while a handler served a route.
type PanicError struct {
	Value any
	// Stack is nil when stack capture is disabled.
	Stack []byte
	// Handler is the resolved handler reference, e.g.
	// "web/frontend/Page::Handle". Empty when the route did not resolve.
	Handler string
}

func (e *PanicError) Error() string {
	if e.Handler == "" {
		return fmt.Sprintf("panic: %v", e.Value)
	}
	return fmt.Sprintf("panic in %s: %v", e.Handler, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// TimeoutError is a request that outlived the budget of its route.
type TimeoutError struct {
	Duration time.Duration
	// Route is the route name, empty for unnamed routes.
	Route string
}

func (e *TimeoutError) Error() string {
	if e.Route == "" {
		return fmt.Sprintf("request timeout after %s", e.Duration)
	}
	return fmt.Sprintf("route %s timed out after %s", e.Route, e.Duration)
}

func find[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

// IsPanicError reports whether err wraps a *PanicError.
func IsPanicError(err error) bool {
	_, ok := find[*PanicError](err)
	return ok
}

// AsPanicError returns the *PanicError wrapped by err.
func AsPanicError(err error) (*PanicError, bool) {
	return find[*PanicError](err)
}

// IsTimeoutError reports whether err wraps a *TimeoutError.
func IsTimeoutError(err error) bool {
	_, ok := find[*TimeoutError](err)
	return ok
}

// AsTimeoutError returns the *TimeoutError wrapped by err.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	return find[*TimeoutError](err)
}

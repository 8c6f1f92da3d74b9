package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidValue marks build-time route declaration errors. Every
	// *InvalidValueError matches it with errors.Is.
	ErrInvalidValue = errors.New("cmsroute: invalid value")

	// ErrRouteNotFound is returned by LookupURL for an unknown route name.
	ErrRouteNotFound = errors.New("cmsroute: route not found")

	// ErrDuplicateClass is returned when a class is registered twice.
	ErrDuplicateClass = errors.New("cmsroute: handler class already registered")

	// ErrUnknownHandler is returned when a resolved class has no registered handler.
	ErrUnknownHandler = errors.New("cmsroute: no handler registered for class")

	// ErrTableCorrupted is returned when a cached route table cannot be decoded.
	ErrTableCorrupted = errors.New("cmsroute: cached route table is corrupted")
)

// InvalidValueError reports a route declaration that cannot be built: a
// reserved or malformed placeholder, an unknown HTTP verb, or a duplicate
// route name in strict mode. It aborts the table build, and nothing is cached.
type InvalidValueError struct {
	Err    error
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("cmsroute: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// Is makes every InvalidValueError match ErrInvalidValue.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func invalidValue(field, value, reason string, err error) *InvalidValueError {
	return &InvalidValueError{Field: field, Value: value, Reason: reason, Err: err}
}

// HTTPError is an error carrying the HTTP response the serving layer
// should render for it.
type HTTPError struct {
	// Err is the underlying error, logged but not shown to clients.
	Err error

	Message   string
	RequestID string

	// Allowed lists the verbs for a 405 response.
	Allowed []string

	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError. An empty message defaults to the status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func WithAllowed(verbs ...string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Allowed = verbs
	}
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(allowed []string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, "", append(opts, WithAllowed(allowed...))...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from err, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

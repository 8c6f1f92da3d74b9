package internal_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/internal"
	"github.com/dmitrymomot/cmsroute/pkg/pattern"
)

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		err := internal.NewHTTPError(http.StatusNotFound, "not found")
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusBadRequest, "bad request")
		err := fmt.Errorf("handler failed: %w", httpErr)
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("double-wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusConflict, "conflict")
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", httpErr))
		require.True(t, internal.IsHTTPError(err))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		err := errors.New("something went wrong")
		require.False(t, internal.IsHTTPError(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		require.False(t, internal.IsHTTPError(nil))
	})
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("direct HTTPError", func(t *testing.T) {
		t.Parallel()
		httpErr := internal.NewHTTPError(http.StatusNotFound, "not found")
		got := internal.AsHTTPError(httpErr)
		require.NotNil(t, got)
		require.Equal(t, http.StatusNotFound, got.Code)
		require.Equal(t, "not found", got.Message)
	})

	t.Run("wrapped HTTPError preserves fields", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("db down")
		httpErr := internal.NewHTTPError(http.StatusForbidden, "forbidden",
			internal.WithRequestID("req-1"), internal.WithError(cause))
		err := fmt.Errorf("middleware: %w", httpErr)

		got := internal.AsHTTPError(err)
		require.NotNil(t, got)
		require.Equal(t, http.StatusForbidden, got.Code)
		require.Equal(t, "forbidden", got.Message)
		require.Equal(t, "req-1", got.RequestID)
		require.ErrorIs(t, err, cause)
	})

	t.Run("unrelated error returns nil", func(t *testing.T) {
		t.Parallel()
		err := errors.New("plain error")
		require.Nil(t, internal.AsHTTPError(err))
	})

	t.Run("nil returns nil", func(t *testing.T) {
		t.Parallel()
		require.Nil(t, internal.AsHTTPError(nil))
	})
}

func TestNewHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("empty message defaults to status text", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrNotFound("")
		require.Equal(t, http.StatusNotFound, err.StatusCode())
		require.Equal(t, "Not Found", err.Error())
		require.Equal(t, "Not Found", err.StatusText())
	})

	t.Run("method not allowed carries verbs", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrMethodNotAllowed([]string{"GET", "POST"})
		require.Equal(t, http.StatusMethodNotAllowed, err.Code)
		require.Equal(t, []string{"GET", "POST"}, err.Allowed)
	})

	t.Run("service unavailable", func(t *testing.T) {
		t.Parallel()
		err := internal.ErrServiceUnavailable("maintenance")
		require.Equal(t, http.StatusServiceUnavailable, err.Code)
		require.Equal(t, "maintenance", err.Message)
	})
}

func TestInvalidValueError(t *testing.T) {
	t.Parallel()

	err := &internal.InvalidValueError{
		Field:  "path",
		Value:  "/{container}",
		Reason: "reserved placeholder name",
		Err:    pattern.ErrReservedName,
	}
	wrapped := fmt.Errorf("web/frontend/Page: %w", err)

	require.ErrorIs(t, wrapped, internal.ErrInvalidValue)
	require.ErrorIs(t, wrapped, pattern.ErrReservedName)
	require.NotErrorIs(t, wrapped, internal.ErrRouteNotFound)
	require.Contains(t, err.Error(), `invalid path "/{container}"`)

	var target *internal.InvalidValueError
	require.ErrorAs(t, wrapped, &target)
	require.Equal(t, "path", target.Field)
}

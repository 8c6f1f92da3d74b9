package middlewares_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cmsroute/middlewares"
)

func TestPanicError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *middlewares.PanicError
		want string
	}{
		{name: "unresolved", err: &middlewares.PanicError{Value: "boom"}, want: "panic: boom"},
		{name: "non-string value", err: &middlewares.PanicError{Value: 42}, want: "panic: 42"},
		{
			name: "with handler",
			err:  &middlewares.PanicError{Value: "boom", Handler: "web/frontend/Page::Handle"},
			want: "panic in web/frontend/Page::Handle: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTimeoutError_Error(t *testing.T) {
	t.Parallel()

	require.Equal(t, "request timeout after 5s", (&middlewares.TimeoutError{Duration: 5 * time.Second}).Error())
	require.Equal(t, "route admin.import timed out after 250ms",
		(&middlewares.TimeoutError{Duration: 250 * time.Millisecond, Route: "admin.import"}).Error())
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	pe := &middlewares.PanicError{Value: "boom"}
	te := &middlewares.TimeoutError{Duration: time.Second}

	t.Run("wrapped errors are detected", func(t *testing.T) {
		t.Parallel()

		require.True(t, middlewares.IsPanicError(fmt.Errorf("serve: %w", pe)))
		require.True(t, middlewares.IsTimeoutError(fmt.Errorf("serve: %w", te)))

		got, ok := middlewares.AsPanicError(fmt.Errorf("serve: %w", pe))
		require.True(t, ok)
		require.Same(t, pe, got)

		gotTE, ok := middlewares.AsTimeoutError(fmt.Errorf("serve: %w", te))
		require.True(t, ok)
		require.Same(t, te, gotTE)
	})

	t.Run("other errors are rejected", func(t *testing.T) {
		t.Parallel()

		for _, err := range []error{nil, errors.New("plain"), te} {
			require.False(t, middlewares.IsPanicError(err))
			_, ok := middlewares.AsPanicError(err)
			require.False(t, ok)
		}
		for _, err := range []error{nil, errors.New("plain"), pe} {
			require.False(t, middlewares.IsTimeoutError(err))
			_, ok := middlewares.AsTimeoutError(err)
			require.False(t, ok)
		}
	})
}

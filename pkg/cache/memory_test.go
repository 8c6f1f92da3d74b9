package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_Janitor(t *testing.T) {
	t.Parallel()

	c := NewMemory[int](WithCleanupInterval(5 * time.Millisecond))
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", 1, time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", 2, time.Hour))

	stored := func() int {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.items)
	}
	require.Eventually(t, func() bool { return stored() == 1 }, time.Second, 5*time.Millisecond)
}

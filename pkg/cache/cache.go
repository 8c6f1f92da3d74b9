package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Category names the kind of router data stored under a key.
type Category string

const (
	// CategoryControllers holds a router's compiled route table snapshot.
	CategoryControllers Category = "controllers"

	// CategoryRoutes holds a router's per-domain URL rewrite snapshot.
	CategoryRoutes Category = "routes"
)

// Key builds the cache key for a router's data category:
// lower(router) + "." + category, e.g. "web.controllers".
func Key(router string, category Category) string {
	return strings.ToLower(router) + "." + string(category)
}

// Cache is a key-value store with TTL support shared by router instances.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL
//   - Negative: item never expires
type Cache[V any] interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Has reports whether a key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// Marshaler converts values to and from bytes for backends that store bytes.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Marshaler.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

// Raw passes byte slices through unchanged. Routers encode their snapshots
// themselves, so a Redis[[]byte] with Raw stores them as-is.
type Raw struct{}

func (Raw) Marshal(v []byte) ([]byte, error) { return v, nil }

func (Raw) Unmarshal(data []byte) ([]byte, error) { return data, nil }

var (
	_ Marshaler[any]    = JSON[any]{}
	_ Marshaler[[]byte] = Raw{}
)

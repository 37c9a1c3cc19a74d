// Package cache is a keyed response cache with explicit invalidation. Readers
// may subscribe to a key prefix and are told which keys were invalidated.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Generation returns a token for key that changes whenever key is invalidated.
	Generation(ctx context.Context, key string) (string, error)
	// SetIfGeneration stores value only while key's generation still equals gen.
	SetIfGeneration(ctx context.Context, key, gen string, value []byte, ttl time.Duration) (bool, error)
	// Invalidate drops every key starting with prefix and notifies subscribers.
	Invalidate(ctx context.Context, prefix string) error
	// Subscribe delivers invalidated keys under prefix until cancel is called.
	Subscribe(ctx context.Context, prefix string) (<-chan string, func())
}

// Loader computes the value for a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// Fetch returns the cached JSON value for key, or calls load and caches its
// result. Cache read and write errors fall through to load. A result is not
// cached when key was invalidated while load ran, so a fill never hides a
// newer write.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load Loader[T]) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err == nil && ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}

	gen, genErr := c.Generation(ctx, key)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if genErr != nil {
		return v, nil
	}
	if raw, err := json.Marshal(v); err == nil {
		_, _ = c.SetIfGeneration(ctx, key, gen, raw, ttl)
	}
	return v, nil
}

// Package localstore holds small per-visitor blobs (guest carts) outside the
// relational database.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage loads and saves opaque values by key. Load returns nil, nil for an
// absent key.
//
// Update replaces the value under key with fn(current) atomically with respect
// to every other Update on the same key, including ones made by other
// processes sharing the backend. fn may run more than once and must not have
// side effects; if it returns an error nothing is written.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// ErrContention is returned when an Update kept losing to concurrent writers.
var ErrContention = errors.New("localstore: too much contention")

// Memory is a process-local Storage.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.mu.Lock()
	m.data[key] = cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cur []byte
	if v, ok := m.data[key]; ok {
		cur = make([]byte, len(v))
		copy(cur, v)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	cp := make([]byte, len(next))
	copy(cp, next)
	m.data[key] = cp
	return nil
}

// Redis keeps values in Redis and refreshes their TTL on every save.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return v, err
}

func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}

// maxUpdateAttempts bounds optimistic retries. Every round lets at least one
// writer through, so this only trips under sustained contention on one key.
const maxUpdateAttempts = 100

// Update runs fn inside WATCH/MULTI and retries when another client touched the
// key between the read and the write.
func (r *Redis) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	k := r.prefix + key
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			cur, err = nil, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k, next, r.ttl)
			return nil
		})
		return err
	}
	for i := 0; i < maxUpdateAttempts; i++ {
		err := r.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s", ErrContention, key)
}

package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

type subscriber struct {
	prefix string
	ch     chan string
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	subs    map[int]subscriber
	nextSub int
	now     func() time.Time

	// gens holds the generation of keys with a fill in flight or cached.
	gens   map[string]uint64
	genSeq uint64
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		subs:    make(map[int]subscriber),
		now:     time.Now,
		gens:    make(map[string]uint64),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && !cur.expiresAt.IsZero() && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
			delete(m.gens, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Generation(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gens[key]
	if !ok {
		m.genSeq++
		g = m.genSeq
		m.gens[key] = g
	}
	return strconv.FormatUint(g, 10), nil
}

func (m *Memory) SetIfGeneration(_ context.Context, key, gen string, value []byte, ttl time.Duration) (bool, error) {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gens[key]
	if !ok || strconv.FormatUint(g, 10) != gen {
		return false, nil
	}
	m.entries[key] = e
	return true, nil
}

// Invalidate drops matching entries and their generations. A dropped
// generation is never handed out again, so in-flight fills are discarded.
func (m *Memory) Invalidate(_ context.Context, prefix string) error {
	m.mu.Lock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	for k := range m.gens {
		if strings.HasPrefix(k, prefix) {
			delete(m.gens, k)
		}
	}
	for _, s := range m.subs {
		notify(s, prefix)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, prefix string) (<-chan string, func()) {
	ch := make(chan string, 16)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = subscriber{prefix: prefix, ch: ch}
	m.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			close(ch)
			m.mu.Unlock()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel
}

// notify delivers key when it overlaps the subscriber's prefix. A full
// channel drops the notification.
func notify(s subscriber, key string) {
	if !strings.HasPrefix(key, s.prefix) && !strings.HasPrefix(s.prefix, key) {
		return
	}
	select {
	case s.ch <- key:
	default:
	}
}

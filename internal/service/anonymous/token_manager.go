package anonymous

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// memoryStore keeps tokens in process. Used when no database is wired.
type memoryStore struct {
	mu     sync.RWMutex
	tokens map[string]tokenrepo.Token
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tokens: make(map[string]tokenrepo.Token)}
}

func (m *memoryStore) Create(_ context.Context, t tokenrepo.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	m.tokens[t.Token] = t
	return nil
}

func (m *memoryStore) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	m.mu.RLock()
	t, ok := m.tokens[token]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

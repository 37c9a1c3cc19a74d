package anonymous

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

// Token is a guest session credential. The anonymous id keys the guest cart.
type Token struct {
	AccessToken string `json:"access_token"`
	AnonymousID string `json:"anonymous_id"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type Service struct {
	store     tokenrepo.Repository
	accessTTL time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New keeps tokens in memory.
func New(accessTTL time.Duration) *Service {
	return NewWithStore(newMemoryStore(), accessTTL, nil)
}

// NewWithStore persists tokens in store so guest sessions survive restarts.
func NewWithStore(store tokenrepo.Repository, accessTTL time.Duration, logger *zap.Logger) *Service {
	if accessTTL <= 0 {
		accessTTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		accessTTL: accessTTL,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Issue(ctx context.Context) (Token, error) {
	anonID := uuid.NewString()
	access, err := randomToken()
	if err != nil {
		return Token{}, err
	}
	err = s.store.Create(ctx, tokenrepo.Token{
		Token:       access,
		AnonymousID: anonID,
		ExpiresAt:   s.now().Add(s.accessTTL),
	})
	if err != nil {
		return Token{}, fmt.Errorf("store anonymous token: %w", err)
	}
	return Token{
		AccessToken: access,
		AnonymousID: anonID,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		TokenType:   "Bearer",
	}, nil
}

func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	t, err := s.store.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("anonymous token lookup failed", zap.Error(err))
		}
		return "", ErrInvalidToken
	}
	if !s.now().Before(t.ExpiresAt) {
		return "", ErrInvalidToken
	}
	return t.AnonymousID, nil
}

// Sweep deletes expired tokens every interval until ctx is done.
func (s *Service) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpired(ctx, s.now())
			if err != nil {
				s.logger.Warn("sweep anonymous tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("swept anonymous tokens", zap.Int64("count", n))
			}
		}
	}
}

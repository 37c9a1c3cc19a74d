package token

import (
	"context"
	"time"
)

// Token binds an opaque bearer token to a guest session.
type Token struct {
	Token       string
	AnonymousID string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

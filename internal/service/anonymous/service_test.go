package anonymous

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	tokenrepo "storefront/internal/repository/token"
)

func TestIssueAndLookup(t *testing.T) {
	svc := New(time.Hour)
	tok, err := svc.Issue(context.Background())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := uuid.Parse(tok.AnonymousID); err != nil {
		t.Fatalf("anonymous id is not a uuid: %q", tok.AnonymousID)
	}
	if tok.ExpiresIn != 3600 || tok.TokenType != "Bearer" {
		t.Fatalf("unexpected token %+v", tok)
	}

	id, err := svc.LookupByToken(context.Background(), tok.AccessToken)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if id != tok.AnonymousID {
		t.Fatalf("expected %s, got %s", tok.AnonymousID, id)
	}

	if _, err := svc.LookupByToken(context.Background(), "bogus"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := New(time.Minute)
	svc.now = func() time.Time { return now }

	tok, err := svc.Issue(context.Background())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := svc.LookupByToken(context.Background(), tok.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	n, err := svc.store.DeleteExpired(context.Background(), now)
	if err != nil || n != 1 {
		t.Fatalf("expected one expired token swept, got %d (%v)", n, err)
	}
}

type failingStore struct{ tokenrepo.Repository }

func (failingStore) Create(context.Context, tokenrepo.Token) error { return errors.New("db down") }

func (failingStore) Get(context.Context, string) (*tokenrepo.Token, error) {
	return nil, errors.New("db down")
}

func TestStoreFailures(t *testing.T) {
	svc := NewWithStore(failingStore{}, time.Hour, nil)
	if _, err := svc.Issue(context.Background()); err == nil {
		t.Fatalf("expected issue to fail")
	}
	if _, err := svc.LookupByToken(context.Background(), "tok"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

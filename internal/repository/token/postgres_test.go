package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"

	"storefront/internal/domain"
)

func TestCreateMapsUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO anonymous_tokens").
		WithArgs("tok", "anon-1", expires).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewPostgres(mock, nil)
	err = repo.Create(context.Background(), Token{Token: "tok", AnonymousID: "anon-1", ExpiresAt: expires})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	created := expires.Add(-time.Hour)
	mock.ExpectQuery("SELECT token, anonymous_id").
		WithArgs("tok").
		WillReturnRows(pgxmock.NewRows([]string{"token", "anonymous_id", "expires_at", "created_at"}).
			AddRow("tok", "anon-1", expires, created))
	mock.ExpectQuery("SELECT token, anonymous_id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"token", "anonymous_id", "expires_at", "created_at"}))

	repo := NewPostgres(mock, nil)
	got, err := repo.Get(context.Background(), "tok")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AnonymousID != "anon-1" || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected token %+v", got)
	}
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM anonymous_tokens").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewPostgres(mock, nil).DeleteExpired(context.Background(), now)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted, got %d (%v)", n, err)
	}
}

package category

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// List returns categories ordered by name. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

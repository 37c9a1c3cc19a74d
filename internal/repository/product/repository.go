package product

import (
	"context"

	"storefront/internal/domain"
)

// ListFilter narrows a product listing. Zero values disable a filter.
type ListFilter struct {
	CategorySlug string
	MinPrice     *int64
	MaxPrice     *int64
	FeaturedOnly bool
	Limit        int
}

type Repository interface {
	// List returns products newest first.
	List(ctx context.Context, f ListFilter) ([]domain.Product, error)
	// Related returns other products in categoryID, newest first.
	Related(ctx context.Context, categoryID, excludeID string, limit int) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)

	// Variations returns the product's variations ordered by sort order.
	Variations(ctx context.Context, productID string) ([]domain.ProductVariation, error)
	UpsertVariation(ctx context.Context, v domain.ProductVariation) (*domain.ProductVariation, error)
}

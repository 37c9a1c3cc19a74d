package banner

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// ListActive returns active banners ordered by sort order.
	ListActive(ctx context.Context) ([]domain.Banner, error)
	Create(ctx context.Context, b domain.Banner) (*domain.Banner, error)
}

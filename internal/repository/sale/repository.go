package sale

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type Repository interface {
	// ListActive returns campaigns flagged active whose end date is after now.
	ListActive(ctx context.Context, now time.Time) ([]domain.SaleCampaign, error)
	Create(ctx context.Context, c domain.SaleCampaign) (*domain.SaleCampaign, error)
}

package sale

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   db.Pool
	logger *zap.Logger
}

func NewPostgres(pool db.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListActive(ctx context.Context, now time.Time) ([]domain.SaleCampaign, error) {
	const q = `
SELECT id::text, name, product_id::text, is_global, is_active, start_date, end_date,
       discount_type, discount_value, created_at
FROM sales
WHERE is_active AND end_date > $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, now)
	if err != nil {
		r.logger.Error("sale repo: list active", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.SaleCampaign{}
	for rows.Next() {
		var (
			c            domain.SaleCampaign
			discountType string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.ProductID, &c.IsGlobal, &c.IsActive, &c.StartDate, &c.EndDate,
			&discountType, &c.DiscountValue, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.DiscountType = domain.DiscountType(discountType)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("sale repo: list active", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Create(ctx context.Context, c domain.SaleCampaign) (*domain.SaleCampaign, error) {
	const q = `
INSERT INTO sales (name, product_id, is_global, is_active, start_date, end_date, discount_type, discount_value)
VALUES ($1, $2::uuid, $3, $4, $5, $6, $7, $8)
RETURNING id::text, created_at
`
	out := c
	err := r.pool.QueryRow(ctx, q, c.Name, c.ProductID, c.IsGlobal, c.IsActive, c.StartDate, c.EndDate,
		string(c.DiscountType), c.DiscountValue).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Error("sale repo: create", zap.String("name", c.Name), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

package banner

import (
	"context"

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

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.Banner, error) {
	const q = `
SELECT id::text, title, COALESCE(subtitle, ''), image_url, COALESCE(link_url, ''), is_active, sort_order
FROM banners
WHERE is_active
ORDER BY sort_order ASC, created_at ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("banner repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Banner{}
	for rows.Next() {
		var b domain.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.LinkURL, &b.IsActive, &b.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Create(ctx context.Context, b domain.Banner) (*domain.Banner, error) {
	const q = `
INSERT INTO banners (title, subtitle, image_url, link_url, is_active, sort_order)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6)
RETURNING id::text
`
	out := b
	if err := r.pool.QueryRow(ctx, q, b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.IsActive, b.SortOrder).Scan(&out.ID); err != nil {
		r.logger.Error("banner repo: create", zap.String("title", b.Title), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

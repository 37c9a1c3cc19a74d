package category

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

const categoryColumns = `id::text, slug, name, COALESCE(description, ''), COALESCE(image_url, ''), created_at`

func (r *postgresRepo) List(ctx context.Context, limit int) ([]domain.Category, error) {
	q := `SELECT ` + categoryColumns + `
FROM categories
ORDER BY name ASC
`
	args := []any{}
	if limit > 0 {
		q += `LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("category repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	q := `SELECT ` + categoryColumns + `
FROM categories
WHERE slug = $1
`
	var c domain.Category
	err := r.pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("category repo: get", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (slug, name, description, image_url)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = COALESCE(EXCLUDED.description, categories.description),
    image_url = COALESCE(EXCLUDED.image_url, categories.image_url)
RETURNING id::text, created_at, COALESCE(description, ''), COALESCE(image_url, '')
`
	out := domain.Category{Slug: c.Slug, Name: c.Name}
	err := r.pool.QueryRow(ctx, q, c.Slug, c.Name, c.Description, c.ImageURL).
		Scan(&out.ID, &out.CreatedAt, &out.Description, &out.ImageURL)
	if err != nil {
		r.logger.Error("category repo: upsert", zap.String("slug", c.Slug), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

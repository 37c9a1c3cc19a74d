package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"storefront/internal/db"
	"storefront/internal/domain"
)

const maxListLimit = 1000

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

const productColumns = `p.id::text, p.slug, COALESCE(p.sku, ''), p.name, COALESCE(p.description, ''), p.price_cents,
       p.stock_quantity, p.category_id::text, p.images, COALESCE(p.video_url, ''), p.is_featured,
       COALESCE(p.meta_title, ''), COALESCE(p.meta_description, ''), p.focus_keywords, p.created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.StockQuantity,
		&p.CategoryID,
		&p.Images,
		&p.VideoURL,
		&p.IsFeatured,
		&p.MetaTitle,
		&p.MetaDescription,
		&p.FocusKeywords,
		&p.CreatedAt,
	)
	return p, err
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	q := `SELECT ` + productColumns + `
FROM products p
`
	if f.CategorySlug != "" {
		q += `JOIN categories c ON c.id = p.category_id
`
		where = append(where, "c.slug = "+arg(f.CategorySlug))
	}
	if f.MinPrice != nil {
		where = append(where, "p.price_cents >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price_cents <= "+arg(*f.MaxPrice))
	}
	if f.FeaturedOnly {
		where = append(where, "p.is_featured")
	}
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	limit := f.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	q += "ORDER BY p.created_at DESC\nLIMIT " + arg(limit)

	products, err := r.queryProducts(ctx, q, args...)
	if err != nil {
		r.logger.Error("product repo: list", zap.String("category", f.CategorySlug), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.String("category", f.CategorySlug), zap.Int("count", len(products)))
	return products, nil
}

func (r *postgresRepo) Related(ctx context.Context, categoryID, excludeID string, limit int) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products p
WHERE p.category_id = $1 AND p.id <> $2
ORDER BY p.created_at DESC
LIMIT $3
`
	products, err := r.queryProducts(ctx, q, categoryID, excludeID, limit)
	if err != nil {
		r.logger.Error("product repo: related", zap.String("category_id", categoryID), zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *postgresRepo) queryProducts(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, "p.id::text = $1", id)
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *postgresRepo) getOne(ctx context.Context, cond string, arg string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products p
WHERE ` + cond
	p, err := scanProduct(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: not found", zap.String("key", arg))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("key", arg), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (slug, sku, name, description, price_cents, stock_quantity, category_id,
                      images, video_url, is_featured, meta_title, meta_description, focus_keywords)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7::uuid,
        COALESCE($8::text[], '{}'), NULLIF($9, ''), $10, NULLIF($11, ''), NULLIF($12, ''), COALESCE($13::text[], '{}'))
ON CONFLICT (slug) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    stock_quantity = EXCLUDED.stock_quantity,
    category_id = EXCLUDED.category_id,
    images = EXCLUDED.images,
    video_url = EXCLUDED.video_url,
    is_featured = EXCLUDED.is_featured,
    meta_title = EXCLUDED.meta_title,
    meta_description = EXCLUDED.meta_description,
    focus_keywords = EXCLUDED.focus_keywords
RETURNING id::text, created_at
`
	res := p
	err := r.pool.QueryRow(ctx, q,
		p.Slug,
		p.SKU,
		p.Name,
		p.Description,
		p.PriceCents,
		p.StockQuantity,
		p.CategoryID,
		p.Images,
		p.VideoURL,
		p.IsFeatured,
		p.MetaTitle,
		p.MetaDescription,
		p.FocusKeywords,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("slug", p.Slug), zap.Error(err))
		return nil, err
	}
	r.logger.Info("product repo: upserted", zap.String("slug", res.Slug), zap.String("id", res.ID))
	return &res, nil
}

const variationColumns = `id::text, product_id::text, name, price_cents, apply_sale, sort_order, stock_quantity, created_at`

func scanVariation(row pgx.Row) (domain.ProductVariation, error) {
	var v domain.ProductVariation
	err := row.Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceCents, &v.ApplySale, &v.SortOrder, &v.StockQuantity, &v.CreatedAt)
	return v, err
}

func (r *postgresRepo) Variations(ctx context.Context, productID string) ([]domain.ProductVariation, error) {
	q := `SELECT ` + variationColumns + `
FROM product_variations
WHERE product_id::text = $1
ORDER BY sort_order ASC, created_at ASC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		r.logger.Error("product repo: variations", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.ProductVariation{}
	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpsertVariation(ctx context.Context, v domain.ProductVariation) (*domain.ProductVariation, error) {
	const q = `
INSERT INTO product_variations (product_id, name, price_cents, apply_sale, sort_order, stock_quantity)
VALUES ($1::uuid, $2, $3, $4, $5, $6)
ON CONFLICT (product_id, name) DO UPDATE SET
    price_cents = EXCLUDED.price_cents,
    apply_sale = EXCLUDED.apply_sale,
    sort_order = EXCLUDED.sort_order,
    stock_quantity = EXCLUDED.stock_quantity
RETURNING id::text, created_at
`
	res := v
	if err := r.pool.QueryRow(ctx, q, v.ProductID, v.Name, v.PriceCents, v.ApplySale, v.SortOrder, v.StockQuantity).
		Scan(&res.ID, &res.CreatedAt); err != nil {
		r.logger.Error("product repo: upsert variation", zap.String("product_id", v.ProductID), zap.String("name", v.Name), zap.Error(err))
		return nil, err
	}
	return &res, nil
}

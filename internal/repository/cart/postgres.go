package cart

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

const listLinesQuery = `
SELECT ci.id::text, ci.product_id::text, ci.variation_id::text, pv.name, pv.price_cents,
       COALESCE(pv.apply_sale, true), ci.quantity, p.name, p.price_cents, COALESCE(p.images[1], ''), ci.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
LEFT JOIN product_variations pv ON pv.id = ci.variation_id
WHERE ci.user_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
`

func (r *postgresRepo) ListLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := r.pool.Query(ctx, listLinesQuery, userID)
	if err != nil {
		r.logger.Error("cart repo: list", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var (
			line        domain.CartLine
			variationID *string
		)
		if err := rows.Scan(
			&line.ID,
			&line.ProductID,
			&variationID,
			&line.VariationName,
			&line.VariationPriceCents,
			&line.ApplySale,
			&line.Quantity,
			&line.ProductName,
			&line.UnitPriceCents,
			&line.Image,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		line.VariationID = domain.VariationFromPtr(variationID)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("cart repo: list rows", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return lines, nil
}

const upsertLineQuery = `
INSERT INTO cart_items (user_id, product_id, variation_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT ON CONSTRAINT cart_items_line_key DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING id::text, quantity, created_at
`

func (r *postgresRepo) UpsertLine(ctx context.Context, in AddLineInput) (*domain.CartLine, error) {
	line := domain.CartLine{ProductID: in.ProductID, VariationID: in.VariationID}
	err := r.pool.QueryRow(ctx, upsertLineQuery,
		in.UserID,
		in.ProductID,
		in.VariationID.Ptr(),
		in.Quantity,
	).Scan(&line.ID, &line.Quantity, &line.CreatedAt)
	if err != nil {
		r.logger.Error("cart repo: upsert",
			zap.String("user_id", in.UserID),
			zap.String("product_id", in.ProductID),
			zap.Stringer("variation_id", in.VariationID),
			zap.Error(err),
		)
		return nil, err
	}
	r.logger.Debug("cart repo: upserted",
		zap.String("user_id", in.UserID),
		zap.String("line_id", line.ID),
		zap.Int("quantity", line.Quantity),
	)
	return &line, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND user_id = $3
`, quantity, lineID, userID)
	if err != nil {
		r.logger.Error("cart repo: set quantity", zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteLine(ctx context.Context, userID, lineID string) error {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_items
WHERE id = $1 AND user_id = $2
`, lineID, userID)
	if err != nil {
		r.logger.Error("cart repo: delete", zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

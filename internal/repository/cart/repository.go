package cart

import (
	"context"

	"storefront/internal/domain"
)

// AddLineInput is one requested addition to a customer's cart.
type AddLineInput struct {
	UserID      string
	ProductID   string
	VariationID domain.VariationID
	Quantity    int
}

// Repository persists customer carts. Each user has one cart whose lines are
// unique per (product, variation).
type Repository interface {
	ListLines(ctx context.Context, userID string) ([]domain.CartLine, error)
	// UpsertLine inserts the line or adds Quantity to the existing one in a
	// single statement and returns the stored line.
	UpsertLine(ctx context.Context, in AddLineInput) (*domain.CartLine, error)
	SetQuantity(ctx context.Context, userID, lineID string, quantity int) error
	DeleteLine(ctx context.Context, userID, lineID string) error
}

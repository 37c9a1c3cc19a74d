// Package cartstore holds cart lines for the two kinds of owners: customers,
// whose carts live in Postgres, and guests, whose carts are a serialised list
// in local storage.
package cartstore

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// AddRequest is a line to merge into a cart. The snapshot fields describe the
// product at the time of adding.
type AddRequest struct {
	ProductID           string
	VariationID         domain.VariationID
	VariationName       *string
	VariationPriceCents *int64
	ApplySale           bool
	Quantity            int
	ProductName         string
	UnitPriceCents      int64
	Image               string
}

// Store is one backing store for carts keyed by owner id.
type Store interface {
	Lines(ctx context.Context, ownerID string) ([]domain.CartLine, error)
	// Add merges req into the owner's cart: an existing line with the same
	// product and variation gains req.Quantity, otherwise a line is appended.
	Add(ctx context.Context, ownerID string, req AddRequest) (domain.CartLine, error)
	SetQuantity(ctx context.Context, ownerID, lineID string, quantity int) error
	Remove(ctx context.Context, ownerID, lineID string) error
}

// Merge returns lines with req applied and the resulting line. lines is not
// modified. newID is only called when a line is appended.
func Merge(lines []domain.CartLine, req AddRequest, newID func() string, now time.Time) ([]domain.CartLine, domain.CartLine) {
	out := make([]domain.CartLine, len(lines), len(lines)+1)
	copy(out, lines)

	for i := range out {
		if out[i].Matches(req.ProductID, req.VariationID) {
			out[i].Quantity += req.Quantity
			return out, out[i]
		}
	}

	line := domain.CartLine{
		ID:                  newID(),
		ProductID:           req.ProductID,
		VariationID:         req.VariationID,
		VariationName:       req.VariationName,
		VariationPriceCents: req.VariationPriceCents,
		ApplySale:           req.ApplySale,
		Quantity:            req.Quantity,
		ProductName:         req.ProductName,
		UnitPriceCents:      req.UnitPriceCents,
		Image:               req.Image,
		CreatedAt:           now,
	}
	return append(out, line), line
}

package cartstore

import (
	"context"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// Remote is the Store for authenticated customers, backed by the cart
// repository. Merging happens in the database upsert.
type Remote struct {
	repo cartrepo.Repository
}

func NewRemote(repo cartrepo.Repository) *Remote {
	return &Remote{repo: repo}
}

func (r *Remote) Lines(ctx context.Context, ownerID string) ([]domain.CartLine, error) {
	return r.repo.ListLines(ctx, ownerID)
}

func (r *Remote) Add(ctx context.Context, ownerID string, req AddRequest) (domain.CartLine, error) {
	line, err := r.repo.UpsertLine(ctx, cartrepo.AddLineInput{
		UserID:      ownerID,
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return domain.CartLine{}, err
	}
	out := *line
	out.VariationName = req.VariationName
	out.VariationPriceCents = req.VariationPriceCents
	out.ApplySale = req.ApplySale
	out.ProductName = req.ProductName
	out.UnitPriceCents = req.UnitPriceCents
	out.Image = req.Image
	return out, nil
}

func (r *Remote) SetQuantity(ctx context.Context, ownerID, lineID string, quantity int) error {
	return r.repo.SetQuantity(ctx, ownerID, lineID, quantity)
}

func (r *Remote) Remove(ctx context.Context, ownerID, lineID string) error {
	return r.repo.DeleteLine(ctx, ownerID, lineID)
}

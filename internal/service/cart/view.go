package cart

import (
	"context"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type LineView struct {
	domain.CartLine
	BasePriceCents  int64 `json:"basePriceCents"`
	FinalPriceCents int64 `json:"finalPriceCents"`
	DiscountPercent *int  `json:"discountPercent,omitempty"`
	LineTotalCents  int64 `json:"lineTotalCents"`
}

// View is a cart with every line priced against the active sales.
type View struct {
	Owner         domain.CartOwner `json:"owner"`
	Lines         []LineView       `json:"lineItems"`
	ItemCount     int              `json:"itemCount"`
	SubtotalCents int64            `json:"subtotalCents"`
	DiscountCents int64            `json:"discountCents"`
	TotalCents    int64            `json:"totalCents"`
	Currency      string           `json:"currency"`
}

// cartSalesKey sits under the catalog's "sales" prefix so a catalog
// invalidation also refreshes cart pricing.
const cartSalesKey = "sales:cart"

// GetCart returns the owner's cart priced against the sales eligible now. The
// lines are cached until the next mutation; pricing runs on every read.
func (s *Service) GetCart(ctx context.Context, owner domain.CartOwner) (*View, error) {
	store, err := s.storeFor(owner)
	if err != nil {
		return nil, err
	}
	lines, err := cache.Fetch(ctx, s.cache, owner.Key(), s.viewTTL, func(ctx context.Context) ([]domain.CartLine, error) {
		lines, err := store.Lines(ctx, owner.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	sales, err := s.activeSales(ctx)
	if err != nil {
		return nil, err
	}
	return s.price(owner, lines, sales), nil
}

func (s *Service) activeSales(ctx context.Context) ([]domain.SaleCampaign, error) {
	if s.sales == nil {
		return nil, nil
	}
	return cache.Fetch(ctx, s.cache, cartSalesKey, s.viewTTL, func(ctx context.Context) ([]domain.SaleCampaign, error) {
		return s.sales.ListActive(ctx, s.now())
	})
}

func (s *Service) price(owner domain.CartOwner, lines []domain.CartLine, sales []domain.SaleCampaign) *View {
	now := s.now()
	view := &View{Owner: owner, Lines: make([]LineView, 0, len(lines)), Currency: s.currency}
	for _, l := range lines {
		base := l.UnitPriceCents
		applySale := true
		if l.VariationPriceCents != nil {
			base = *l.VariationPriceCents
			applySale = l.ApplySale
		}
		res := pricing.ResolveFor(sales, l.ProductID, base, applySale, now)
		lv := LineView{
			CartLine:        l,
			BasePriceCents:  base,
			FinalPriceCents: res.FinalPriceCents,
			DiscountPercent: res.DiscountPercent,
			LineTotalCents:  res.FinalPriceCents * int64(l.Quantity),
		}
		view.Lines = append(view.Lines, lv)
		view.ItemCount += l.Quantity
		view.SubtotalCents += base * int64(l.Quantity)
		view.TotalCents += lv.LineTotalCents
	}
	view.DiscountCents = view.SubtotalCents - view.TotalCents
	return view
}

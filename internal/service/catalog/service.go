// Package catalog serves products, categories and sales to the storefront,
// with every product priced against the currently active sales.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/pricing"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/variation"
)

const (
	DefaultListLimit = 1000
	FeaturedLimit    = 4
	RelatedLimit     = 4

	keyProducts   = "products:"
	keyCategories = "categories:"
	keySales      = "sales"
)

type productRepo interface {
	List(ctx context.Context, f productrepo.ListFilter) ([]domain.Product, error)
	Related(ctx context.Context, categoryID, excludeID string, limit int) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Variations(ctx context.Context, productID string) ([]domain.ProductVariation, error)
}

type categoryRepo interface {
	List(ctx context.Context, limit int) ([]domain.Category, error)
}

type saleRepo interface {
	ListActive(ctx context.Context, now time.Time) ([]domain.SaleCampaign, error)
}

type Service struct {
	products   productRepo
	categories categoryRepo
	sales      saleRepo
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func New(products productRepo, categories categoryRepo, sales saleRepo, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if c == nil {
		c = cache.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		products:   products,
		categories: categories,
		sales:      sales,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// PricedProduct is a product with its sale price resolved.
type PricedProduct struct {
	domain.Product
	FinalPriceCents int64 `json:"finalPriceCents"`
	DiscountPercent *int  `json:"discountPercent,omitempty"`
}

type ProductFilter struct {
	CategorySlug string
	MinPrice     *int64
	MaxPrice     *int64
	Limit        int
}

func (f ProductFilter) cacheKey() string {
	price := func(p *int64) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprintf("%slist:%s:%s:%s:%d", keyProducts, f.CategorySlug, price(f.MinPrice), price(f.MaxPrice), f.Limit)
}

// ListProducts returns products newest first, at most 1000.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]PricedProduct, error) {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		f.Limit = DefaultListLimit
	}
	products, err := cache.Fetch(ctx, s.cache, f.cacheKey(), s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.List(ctx, productrepo.ListFilter{
			CategorySlug: f.CategorySlug,
			MinPrice:     f.MinPrice,
			MaxPrice:     f.MaxPrice,
			Limit:        f.Limit,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.priceAll(ctx, products)
}

func (s *Service) FeaturedProducts(ctx context.Context) ([]PricedProduct, error) {
	products, err := cache.Fetch(ctx, s.cache, keyProducts+"featured", s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.List(ctx, productrepo.ListFilter{FeaturedOnly: true, Limit: FeaturedLimit})
	})
	if err != nil {
		return nil, err
	}
	return s.priceAll(ctx, products)
}

// RelatedProducts returns other products from the same category as slug.
func (s *Service) RelatedProducts(ctx context.Context, slug string) ([]PricedProduct, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []PricedProduct{}, nil
	}
	related, err := cache.Fetch(ctx, s.cache, keyProducts+"related:"+product.ID, s.ttl, func(ctx context.Context) ([]domain.Product, error) {
		return s.products.Related(ctx, *product.CategoryID, product.ID, RelatedLimit)
	})
	if err != nil {
		return nil, err
	}
	return s.priceAll(ctx, related)
}

func (s *Service) ListCategories(ctx context.Context, limit int) ([]domain.Category, error) {
	if limit < 0 {
		limit = 0
	}
	return cache.Fetch(ctx, s.cache, fmt.Sprintf("%s%d", keyCategories, limit), s.ttl, func(ctx context.Context) ([]domain.Category, error) {
		return s.categories.List(ctx, limit)
	})
}

// ActiveSales returns campaigns that are active and not yet ended.
func (s *Service) ActiveSales(ctx context.Context) ([]domain.SaleCampaign, error) {
	sales, err := cache.Fetch(ctx, s.cache, keySales, s.ttl, func(ctx context.Context) ([]domain.SaleCampaign, error) {
		return s.sales.ListActive(ctx, s.now())
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]domain.SaleCampaign, 0, len(sales))
	for _, c := range sales {
		if pricing.Eligible(c, now) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Invalidate drops every cached catalog response.
func (s *Service) Invalidate(ctx context.Context) error {
	for _, prefix := range []string{keyProducts, keyCategories, keySales} {
		if err := s.cache.Invalidate(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) priceAll(ctx context.Context, products []domain.Product) ([]PricedProduct, error) {
	sales, err := s.ActiveSales(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PricedProduct, 0, len(products))
	for _, p := range products {
		res := pricing.ResolveFor(sales, p.ID, p.PriceCents, true, now)
		out = append(out, PricedProduct{Product: p, FinalPriceCents: res.FinalPriceCents, DiscountPercent: res.DiscountPercent})
	}
	return out, nil
}

// Detail is a product page: the product, its variations and the price of the
// current selection.
type Detail struct {
	Product             domain.Product            `json:"product"`
	Variations          []domain.ProductVariation `json:"variations"`
	SelectionState      string                    `json:"selectionState"`
	SelectedVariationID domain.VariationID        `json:"selectedVariationId"`
	UnitPriceCents      int64                     `json:"unitPriceCents"`
	FinalPriceCents     int64                     `json:"finalPriceCents"`
	DiscountPercent     *int                      `json:"discountPercent,omitempty"`
	Quantity            int                       `json:"quantity"`
	MaxQuantity         int                       `json:"maxQuantity"`
	LineTotalCents      int64                     `json:"lineTotalCents"`
}

// ProductDetail selects variationID (or the default variation when absent)
// and clamps quantity. An unknown slug or variation is domain.ErrNotFound.
func (s *Service) ProductDetail(ctx context.Context, slug string, variationID domain.VariationID, quantity int) (*Detail, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	variations, err := s.products.Variations(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	sel := variation.NewSelector(*product)
	sel.Load(variations)
	if id, ok := variationID.Get(); ok {
		if err := sel.Select(id); err != nil {
			return nil, domain.ErrNotFound
		}
	}
	if quantity > 0 {
		sel.SetQuantity(quantity)
	}

	sales, err := s.ActiveSales(ctx)
	if err != nil {
		return nil, err
	}
	res := pricing.ResolveFor(sales, product.ID, sel.UnitPrice(), sel.ApplySale(), s.now())
	vs := sel.Variations()
	if vs == nil {
		vs = []domain.ProductVariation{}
	}

	return &Detail{
		Product:             *product,
		Variations:          vs,
		SelectionState:      sel.State().String(),
		SelectedVariationID: sel.SelectedID(),
		UnitPriceCents:      sel.UnitPrice(),
		FinalPriceCents:     res.FinalPriceCents,
		DiscountPercent:     res.DiscountPercent,
		Quantity:            sel.Quantity(),
		MaxQuantity:         sel.QuantityCeiling(),
		LineTotalCents:      res.FinalPriceCents * int64(sel.Quantity()),
	}, nil
}

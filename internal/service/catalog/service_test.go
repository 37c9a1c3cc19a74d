package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type stubProducts struct {
	list        []domain.Product
	listCalls   int
	lastFilter  productrepo.ListFilter
	bySlug      map[string]domain.Product
	variations  map[string][]domain.ProductVariation
	related     []domain.Product
	lastRelated [3]any
}

func (s *stubProducts) List(_ context.Context, f productrepo.ListFilter) ([]domain.Product, error) {
	s.listCalls++
	s.lastFilter = f
	return s.list, nil
}

func (s *stubProducts) Related(_ context.Context, categoryID, excludeID string, limit int) ([]domain.Product, error) {
	s.lastRelated = [3]any{categoryID, excludeID, limit}
	return s.related, nil
}

func (s *stubProducts) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	p, ok := s.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProducts) Variations(_ context.Context, productID string) ([]domain.ProductVariation, error) {
	return s.variations[productID], nil
}

type stubCategories struct{ list []domain.Category }

func (s stubCategories) List(context.Context, int) ([]domain.Category, error) { return s.list, nil }

type stubSales struct{ sales []domain.SaleCampaign }

func (s stubSales) ListActive(context.Context, time.Time) ([]domain.SaleCampaign, error) {
	return s.sales, nil
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func newService(products *stubProducts, sales []domain.SaleCampaign) *Service {
	svc := New(products, stubCategories{list: []domain.Category{{Slug: "kurtas", Name: "Kurtas"}}}, stubSales{sales: sales}, cache.NewMemory(), time.Minute, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestListProductsPricesAndCaches(t *testing.T) {
	products := &stubProducts{list: []domain.Product{
		{ID: "p1", Slug: "a", PriceCents: 1000},
		{ID: "p2", Slug: "b", PriceCents: 500},
	}}
	sales := []domain.SaleCampaign{
		{ID: "g", IsGlobal: true, IsActive: true, EndDate: now.Add(time.Hour), DiscountType: domain.DiscountPercentage, DiscountValue: 10},
		{ID: "s", ProductID: strPtr("p2"), IsActive: true, EndDate: now.Add(time.Hour), DiscountType: domain.DiscountFixed, DiscountValue: 100},
		{ID: "old", IsGlobal: true, IsActive: true, EndDate: now.Add(-time.Hour), DiscountType: domain.DiscountPercentage, DiscountValue: 90},
	}
	svc := newService(products, sales)
	ctx := context.Background()

	list, err := svc.ListProducts(ctx, ProductFilter{CategorySlug: "kurtas", Limit: 5000})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(900), list[0].FinalPriceCents)
	assert.Equal(t, 10, *list[0].DiscountPercent)
	assert.Equal(t, int64(400), list[1].FinalPriceCents, "product campaign wins over global")
	assert.Equal(t, 20, *list[1].DiscountPercent)
	assert.Equal(t, DefaultListLimit, products.lastFilter.Limit)
	assert.Equal(t, "kurtas", products.lastFilter.CategorySlug)

	_, err = svc.ListProducts(ctx, ProductFilter{CategorySlug: "kurtas"})
	require.NoError(t, err)
	assert.Equal(t, 1, products.listCalls)

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.ListProducts(ctx, ProductFilter{CategorySlug: "kurtas"})
	require.NoError(t, err)
	assert.Equal(t, 2, products.listCalls)
}

func TestActiveSalesFiltersEnded(t *testing.T) {
	svc := newService(&stubProducts{}, []domain.SaleCampaign{
		{ID: "live", IsActive: true, EndDate: now.Add(time.Minute)},
		{ID: "ended", IsActive: true, EndDate: now.Add(-time.Minute)},
	})
	sales, err := svc.ActiveSales(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "live", sales[0].ID)
}

func TestFeaturedProducts(t *testing.T) {
	products := &stubProducts{list: []domain.Product{{ID: "p1", PriceCents: 100}}}
	svc := newService(products, nil)
	list, err := svc.FeaturedProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, products.lastFilter.FeaturedOnly)
	assert.Equal(t, FeaturedLimit, products.lastFilter.Limit)
	assert.Nil(t, list[0].DiscountPercent)
}

func TestRelatedProducts(t *testing.T) {
	products := &stubProducts{
		bySlug: map[string]domain.Product{
			"kurta": {ID: "p1", Slug: "kurta", CategoryID: strPtr("c1")},
			"loose": {ID: "p2", Slug: "loose"},
		},
		related: []domain.Product{{ID: "p3", PriceCents: 100}},
	}
	svc := newService(products, nil)
	ctx := context.Background()

	list, err := svc.RelatedProducts(ctx, "kurta")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, [3]any{"c1", "p1", RelatedLimit}, products.lastRelated)

	list, err = svc.RelatedProducts(ctx, "loose")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.RelatedProducts(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductDetailSelectsDefaultVariation(t *testing.T) {
	products := &stubProducts{
		bySlug: map[string]domain.Product{"kurta": {ID: "p1", Slug: "kurta", PriceCents: 1000, StockQuantity: intPtr(10)}},
		variations: map[string][]domain.ProductVariation{"p1": {
			{ID: "v2", Name: "Large", PriceCents: 1200, ApplySale: false, SortOrder: 2, StockQuantity: intPtr(2)},
			{ID: "v1", Name: "Small", PriceCents: 800, ApplySale: true, SortOrder: 1},
		}},
	}
	sales := []domain.SaleCampaign{{ID: "g", IsGlobal: true, IsActive: true, EndDate: now.Add(time.Hour), DiscountType: domain.DiscountPercentage, DiscountValue: 25}}
	svc := newService(products, sales)
	ctx := context.Background()

	d, err := svc.ProductDetail(ctx, "kurta", domain.NoVariation, 3)
	require.NoError(t, err)
	assert.Equal(t, "selected", d.SelectionState)
	assert.True(t, d.SelectedVariationID.Equal(domain.SomeVariation("v1")))
	assert.Equal(t, int64(800), d.UnitPriceCents)
	assert.Equal(t, int64(600), d.FinalPriceCents)
	assert.Equal(t, 25, *d.DiscountPercent)
	assert.Equal(t, 3, d.Quantity)
	assert.Equal(t, 10, d.MaxQuantity, "variation without stock falls back to product stock")
	assert.Equal(t, int64(1800), d.LineTotalCents)
	assert.Equal(t, "v1", d.Variations[0].ID)

	d, err = svc.ProductDetail(ctx, "kurta", domain.SomeVariation("v2"), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), d.FinalPriceCents, "variation opted out of sales")
	assert.Nil(t, d.DiscountPercent)
	assert.Equal(t, 2, d.Quantity)

	_, err = svc.ProductDetail(ctx, "kurta", domain.SomeVariation("v9"), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ProductDetail(ctx, "missing", domain.NoVariation, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductDetailWithoutVariations(t *testing.T) {
	products := &stubProducts{bySlug: map[string]domain.Product{"shawl": {ID: "p1", Slug: "shawl", PriceCents: 1000}}}
	svc := newService(products, nil)

	d, err := svc.ProductDetail(context.Background(), "shawl", domain.NoVariation, 0)
	require.NoError(t, err)
	assert.Equal(t, "no_variations", d.SelectionState)
	assert.False(t, d.SelectedVariationID.IsSet())
	assert.Equal(t, 1, d.Quantity)
	assert.Equal(t, 99, d.MaxQuantity)
	assert.NotNil(t, d.Variations)
}

func TestListCategories(t *testing.T) {
	svc := newService(&stubProducts{}, nil)
	list, err := svc.ListCategories(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kurtas", list[0].Slug)
}

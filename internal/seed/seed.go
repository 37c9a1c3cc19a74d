package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpsertVariation(ctx context.Context, v domain.ProductVariation) (*domain.ProductVariation, error)
}

type SaleStore interface {
	ListActive(ctx context.Context, now time.Time) ([]domain.SaleCampaign, error)
	Create(ctx context.Context, c domain.SaleCampaign) (*domain.SaleCampaign, error)
}

type BannerStore interface {
	ListActive(ctx context.Context) ([]domain.Banner, error)
	Create(ctx context.Context, b domain.Banner) (*domain.Banner, error)
}

type Repos struct {
	Categories CategoryWriter
	Products   ProductWriter
	Sales      SaleStore
	Banners    BannerStore
}

type variationSeed struct {
	Name       string
	PriceCents int64
	ApplySale  bool
	Stock      *int
}

type productSeed struct {
	Slug        string
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Stock       *int
	Category    string
	Featured    bool
	Images      []string
	Variations  []variationSeed
}

func intPtr(v int) *int { return &v }

var categories = []domain.Category{
	{Slug: "lawn", Name: "Lawn", Description: "Printed lawn suits for summer"},
	{Slug: "formals", Name: "Formals", Description: "Embroidered occasion wear"},
	{Slug: "accessories", Name: "Accessories", Description: "Dupattas, shawls and more"},
}

var products = []productSeed{
	{
		Slug: "summer-lawn-3pc", SKU: "LWN-001", Name: "Summer Lawn 3 Piece",
		Description: "Digitally printed lawn shirt, dyed trouser and chiffon dupatta.",
		PriceCents:  450000, Category: "lawn", Featured: true,
		Images: []string{"https://cdn.example.com/lawn-3pc-front.jpg", "https://cdn.example.com/lawn-3pc-back.jpg"},
		Variations: []variationSeed{
			{Name: "Unstitched", PriceCents: 450000, ApplySale: true},
			{Name: "Stitched S", PriceCents: 580000, ApplySale: true, Stock: intPtr(4)},
			{Name: "Stitched M", PriceCents: 580000, ApplySale: true, Stock: intPtr(6)},
		},
	},
	{
		Slug: "embroidered-chiffon", SKU: "FRM-001", Name: "Embroidered Chiffon Suit",
		Description: "Hand embellished chiffon with raw silk trouser.",
		PriceCents:  1250000, Stock: intPtr(8), Category: "formals", Featured: true,
		Images: []string{"https://cdn.example.com/chiffon.jpg"},
		Variations: []variationSeed{
			{Name: "Standard", PriceCents: 1250000, ApplySale: false},
			{Name: "With Jacket", PriceCents: 1490000, ApplySale: true, Stock: intPtr(2)},
		},
	},
	{
		Slug: "silk-dupatta", SKU: "ACC-001", Name: "Silk Dupatta",
		PriceCents: 199900, Category: "accessories", Featured: true,
		Images: []string{"https://cdn.example.com/dupatta.jpg"},
	},
	{
		Slug: "khaddar-shawl", SKU: "ACC-002", Name: "Khaddar Shawl",
		PriceCents: 320000, Stock: intPtr(15), Category: "accessories",
		Images: []string{"https://cdn.example.com/shawl.jpg"},
	},
}

var banners = []domain.Banner{
	{Title: "Summer Lawn Collection", Subtitle: "New prints every week", ImageURL: "https://cdn.example.com/banner-lawn.jpg", LinkURL: "/products?category=lawn", IsActive: true, SortOrder: 0},
	{Title: "Festive Formals", Subtitle: "Shop the edit", ImageURL: "https://cdn.example.com/banner-formals.jpg", LinkURL: "/products?category=formals", IsActive: true, SortOrder: 1},
}

const globalSaleName = "Season Sale"

// Apply inserts demo catalog data for manual testing. Running it twice
// leaves the same data: rows are upserted by slug and sales and banners are
// only created when no active one with the same name exists.
func Apply(ctx context.Context, repos Repos, now time.Time, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		saved, err := repos.Categories.Upsert(ctx, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
		categoryIDs[c.Slug] = saved.ID
	}

	for _, p := range products {
		if err := upsertProduct(ctx, repos.Products, p, categoryIDs); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}
	logger.Info("seeded catalog", zap.Int("categories", len(categories)), zap.Int("products", len(products)))

	if err := ensureSale(ctx, repos.Sales, now); err != nil {
		return fmt.Errorf("ensure sale: %w", err)
	}
	if err := ensureBanners(ctx, repos.Banners); err != nil {
		return fmt.Errorf("ensure banners: %w", err)
	}
	return nil
}

func upsertProduct(ctx context.Context, repo ProductWriter, p productSeed, categoryIDs map[string]string) error {
	product := domain.Product{
		Slug:          p.Slug,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		StockQuantity: p.Stock,
		IsFeatured:    p.Featured,
		Images:        p.Images,
	}
	if id, ok := categoryIDs[p.Category]; ok {
		product.CategoryID = &id
	}
	saved, err := repo.Upsert(ctx, product)
	if err != nil {
		return err
	}
	for i, v := range p.Variations {
		_, err := repo.UpsertVariation(ctx, domain.ProductVariation{
			ProductID:     saved.ID,
			Name:          v.Name,
			PriceCents:    v.PriceCents,
			ApplySale:     v.ApplySale,
			SortOrder:     i,
			StockQuantity: v.Stock,
		})
		if err != nil {
			return fmt.Errorf("variation %s: %w", v.Name, err)
		}
	}
	return nil
}

func ensureSale(ctx context.Context, repo SaleStore, now time.Time) error {
	active, err := repo.ListActive(ctx, now)
	if err != nil {
		return err
	}
	for _, s := range active {
		if s.Name == globalSaleName {
			return nil
		}
	}
	start := now
	_, err = repo.Create(ctx, domain.SaleCampaign{
		Name:          globalSaleName,
		IsGlobal:      true,
		IsActive:      true,
		StartDate:     &start,
		EndDate:       now.AddDate(0, 0, 30),
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 20,
	})
	return err
}

func ensureBanners(ctx context.Context, repo BannerStore) error {
	existing, err := repo.ListActive(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.Title] = true
	}
	for _, b := range banners {
		if seen[b.Title] {
			continue
		}
		if _, err := repo.Create(ctx, b); err != nil {
			return fmt.Errorf("banner %s: %w", b.Title, err)
		}
	}
	return nil
}

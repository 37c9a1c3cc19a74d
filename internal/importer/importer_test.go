package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items      []domain.Product
	variations []domain.ProductVariation
}

type stubCategoryRepo struct {
	existing map[string]domain.Category
	items    []domain.Category
	lookups  int
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = fmt.Sprintf("prod-%d", len(s.items)+1)
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubProductRepo) UpsertVariation(_ context.Context, v domain.ProductVariation) (*domain.ProductVariation, error) {
	s.variations = append(s.variations, v)
	return &v, nil
}

func (s *stubCategoryRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	s.lookups++
	if c, ok := s.existing[slug]; ok {
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	c.ID = "cat-" + c.Slug
	s.items = append(s.items, c)
	return &c, nil
}

func TestCSVImporter_RunProducts(t *testing.T) {
	csvData := `slug,name,sku,description,price,stock,category,featured,image,variation.name,variation.price,variation.applySale,variation.stock
lawn-suit,Lawn Suit,SKU-1,Three piece,4500.50,12,lawn,true,https://example.com/img1.jpg,Small,4500,true,5
,,,,,,,,https://example.com/img2.jpg,Large,5200,false,
,,,,,,,,https://example.com/img3.jpg,,,,
silk-dupatta,Silk Dupatta,SKU-2,,1999,,lawn,,,,,,
khaddar-shawl,Khaddar Shawl,,,3000,,winter,,,,,,`

	repo := &stubProductRepo{}
	cats := &stubCategoryRepo{existing: map[string]domain.Category{"lawn": {ID: "c-lawn", Slug: "lawn"}}}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, cats, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 || len(repo.items) != 3 {
		t.Fatalf("expected 3 products imported, got %d (%d saved)", count, len(repo.items))
	}

	first := repo.items[0]
	if first.Slug != "lawn-suit" || first.SKU != "SKU-1" || first.PriceCents != 450050 || !first.IsFeatured {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if first.StockQuantity == nil || *first.StockQuantity != 12 {
		t.Fatalf("expected stock 12, got %v", first.StockQuantity)
	}
	if len(first.Images) != 3 {
		t.Fatalf("expected 3 images on first product, got %v", first.Images)
	}
	if first.CategoryID == nil || *first.CategoryID != "c-lawn" {
		t.Fatalf("expected existing category id, got %v", first.CategoryID)
	}

	if len(repo.variations) != 2 {
		t.Fatalf("expected 2 variations, got %d", len(repo.variations))
	}
	small, large := repo.variations[0], repo.variations[1]
	if small.ProductID != "prod-1" || small.Name != "Small" || small.PriceCents != 450000 || !small.ApplySale || small.SortOrder != 0 {
		t.Fatalf("unexpected first variation %+v", small)
	}
	if small.StockQuantity == nil || *small.StockQuantity != 5 {
		t.Fatalf("expected variation stock 5, got %v", small.StockQuantity)
	}
	if large.ApplySale || large.SortOrder != 1 || large.StockQuantity != nil {
		t.Fatalf("unexpected second variation %+v", large)
	}

	if repo.items[1].StockQuantity != nil || repo.items[1].IsFeatured {
		t.Fatalf("expected unknown stock and not featured, got %+v", repo.items[1])
	}
	if cats.lookups != 2 {
		t.Fatalf("expected category lookups to be cached, got %d lookups", cats.lookups)
	}
	if len(cats.items) != 1 || cats.items[0].Slug != "winter" || cats.items[0].Name != "Winter" {
		t.Fatalf("expected missing category to be created, got %+v", cats.items)
	}
	if id := repo.items[2].CategoryID; id == nil || *id != "cat-winter" {
		t.Fatalf("expected created category id, got %v", id)
	}
}

func TestCSVImporter_RejectsInvalidRows(t *testing.T) {
	cases := map[string]string{
		"bad price":      "slug,name,price\nsuit,Suit,abc\n",
		"negative price": "slug,name,price\nsuit,Suit,-10\n",
		"missing name":   "slug,name,price\nsuit,,100\n",
		"bad stock":      "slug,name,price,stock\nsuit,Suit,100,many\n",
	}
	for name, data := range cases {
		imp := NewCSVImporter(strings.NewReader(data), &stubProductRepo{}, &stubCategoryRepo{}, nil)
		if _, err := imp.Run(context.Background()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestCSVImporter_RunCategoriesFile(t *testing.T) {
	csvData := `slug,name,description,image
lawn,Lawn,Summer lawn,https://example.com/lawn.jpg
winter-wear,,,
,Orphan,,
`
	cats := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, cats, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 categories imported, got %d", count)
	}
	if cats.items[0].Slug != "lawn" || cats.items[0].Description != "Summer lawn" || cats.items[0].ImageURL != "https://example.com/lawn.jpg" {
		t.Fatalf("unexpected first category %+v", cats.items[0])
	}
	if cats.items[1].Name != "Winter Wear" {
		t.Fatalf("expected title-cased name from slug, got %q", cats.items[1].Name)
	}
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind(strings.NewReader("slug,name,price\nsuit,Suit,100\n"))
	if err != nil || kind != KindProducts {
		t.Fatalf("expected product kind, got %s (%v)", kind, err)
	}

	kind, err = DetectKind(strings.NewReader("slug,name,description\nlawn,Lawn,\n"))
	if err != nil || kind != KindCategories {
		t.Fatalf("expected category kind, got %s (%v)", kind, err)
	}

	if _, err := DetectKind(strings.NewReader("foo,bar\n1,2\n")); err == nil {
		t.Fatalf("expected unrecognised header error")
	}
}

func TestParseMoney(t *testing.T) {
	cases := map[string]int64{"": 0, "0": 0, "12": 1200, "12.5": 1250, "12.345": 1235, "4500.99": 450099}
	for in, want := range cases {
		got, err := parseMoney(in)
		if err != nil || got != want {
			t.Fatalf("parseMoney(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
}

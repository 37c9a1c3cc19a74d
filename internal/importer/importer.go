package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpsertVariation(ctx context.Context, v domain.ProductVariation) (*domain.ProductVariation, error)
}

type CategoryWriter interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter reads catalog CSV files and upserts products or categories.
// A product row starts with a slug; following rows without a slug add
// images or variations to that product.
type CSVImporter struct {
	reader       *csv.Reader
	productRepo  ProductWriter
	categoryRepo CategoryWriter
	logger       *zap.Logger

	categoryIDs map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:       csvr,
		productRepo:  products,
		categoryRepo: categories,
		logger:       logger,
		categoryIDs:  map[string]string{},
	}
}

// DetectKind reads the header line and reports which file it is.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["price"]; ok {
		return KindProducts, nil
	}
	_, hasSlug := index["slug"]
	_, hasName := index["name"]
	if hasSlug && hasName {
		return KindCategories, nil
	}
	return "", errors.New("unrecognised csv header")
}

type variationRow struct {
	Name      string
	Cents     int64
	ApplySale bool
	Stock     *int
}

type productRow struct {
	Slug       string
	Name       string
	SKU        string
	Desc       string
	Cents      int64
	Stock      *int
	Category   string
	Featured   bool
	Images     []string
	Variations []variationRow
	line       int
}

// Run imports every row and returns how many products or categories were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["price"]; !ok {
		return i.runCategories(ctx, index)
	}
	return i.runProducts(ctx, index)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.productRepo == nil {
		return 0, errors.New("product writer not configured")
	}
	var (
		current  *productRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		slug := pick(record, index, "slug")
		if slug != "" {
			if current != nil {
				if err := i.saveProduct(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current, err = parseProduct(record, index, line)
			if err != nil {
				return imported, err
			}
			continue
		}

		if current == nil {
			continue
		}
		if img := pick(record, index, "image"); img != "" {
			current.Images = append(current.Images, img)
		}
		v, ok, err := parseVariation(record, index, line)
		if err != nil {
			return imported, err
		}
		if ok {
			current.Variations = append(current.Variations, v)
		}
	}

	if current != nil {
		if err := i.saveProduct(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("products imported", zap.Int("count", imported))
	return imported, nil
}

func parseProduct(record []string, index map[string]int, line int) (*productRow, error) {
	row := &productRow{
		Slug:     pick(record, index, "slug"),
		Name:     pick(record, index, "name"),
		SKU:      pick(record, index, "sku"),
		Desc:     pick(record, index, "description"),
		Category: pick(record, index, "category"),
		line:     line,
	}
	cents, err := parseMoney(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("line %d: price: %w", line, err)
	}
	row.Cents = cents
	if row.Stock, err = parseStock(pick(record, index, "stock")); err != nil {
		return nil, fmt.Errorf("line %d: stock: %w", line, err)
	}
	row.Featured = parseBool(pick(record, index, "featured"), false)
	if img := pick(record, index, "image"); img != "" {
		row.Images = []string{img}
	}
	v, ok, err := parseVariation(record, index, line)
	if err != nil {
		return nil, err
	}
	if ok {
		row.Variations = append(row.Variations, v)
	}
	return row, nil
}

func parseVariation(record []string, index map[string]int, line int) (variationRow, bool, error) {
	name := pick(record, index, "variation.name")
	if name == "" {
		return variationRow{}, false, nil
	}
	cents, err := parseMoney(pick(record, index, "variation.price"))
	if err != nil {
		return variationRow{}, false, fmt.Errorf("line %d: variation price: %w", line, err)
	}
	stock, err := parseStock(pick(record, index, "variation.stock"))
	if err != nil {
		return variationRow{}, false, fmt.Errorf("line %d: variation stock: %w", line, err)
	}
	return variationRow{
		Name:      name,
		Cents:     cents,
		ApplySale: parseBool(pick(record, index, "variation.applySale"), true),
		Stock:     stock,
	}, true, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *productRow) error {
	if row.Name == "" || row.Cents <= 0 {
		return fmt.Errorf("line %d: invalid product row (missing name or price) for slug %q", row.line, row.Slug)
	}

	p := domain.Product{
		Slug:          row.Slug,
		SKU:           row.SKU,
		Name:          row.Name,
		Description:   row.Desc,
		PriceCents:    row.Cents,
		StockQuantity: row.Stock,
		IsFeatured:    row.Featured,
		Images:        row.Images,
	}
	if row.Category != "" {
		id, err := i.resolveCategory(ctx, row.Category)
		if err != nil {
			return fmt.Errorf("category %q for %q: %w", row.Category, row.Slug, err)
		}
		p.CategoryID = &id
	}

	saved, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Slug, err)
	}
	for n, v := range row.Variations {
		_, err := i.productRepo.UpsertVariation(ctx, domain.ProductVariation{
			ProductID:     saved.ID,
			Name:          v.Name,
			PriceCents:    v.Cents,
			ApplySale:     v.ApplySale,
			SortOrder:     n,
			StockQuantity: v.Stock,
		})
		if err != nil {
			return fmt.Errorf("upsert variation %q of %q: %w", v.Name, row.Slug, err)
		}
	}
	return nil
}

// resolveCategory finds a category by slug, creating it from the slug when absent.
func (i *CSVImporter) resolveCategory(ctx context.Context, slug string) (string, error) {
	if id, ok := i.categoryIDs[slug]; ok {
		return id, nil
	}
	if i.categoryRepo == nil {
		return "", errors.New("category writer not configured")
	}
	c, err := i.categoryRepo.GetBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		c, err = i.categoryRepo.Upsert(ctx, domain.Category{Slug: slug, Name: titleFromSlug(slug)})
	}
	if err != nil {
		return "", err
	}
	i.categoryIDs[slug] = c.ID
	return c.ID, nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	if i.categoryRepo == nil {
		return 0, errors.New("category writer not configured")
	}
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		slug := pick(record, index, "slug")
		if slug == "" {
			continue
		}
		name := pick(record, index, "name")
		if name == "" {
			name = titleFromSlug(slug)
		}
		c, err := i.categoryRepo.Upsert(ctx, domain.Category{
			Slug:        slug,
			Name:        name,
			Description: pick(record, index, "description"),
			ImageURL:    pick(record, index, "image"),
		})
		if err != nil {
			return imported, fmt.Errorf("upsert category %q: %w", slug, err)
		}
		i.categoryIDs[slug] = c.ID
		imported++
	}
	i.logger.Info("categories imported", zap.Int("count", imported))
	return imported, nil
}

// parseMoney converts a major-unit amount such as "4500.50" to minor units.
func parseMoney(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", s)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func parseStock(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative stock %d", n)
	}
	return &n, nil
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for n, w := range words {
		words[n] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

package domain

import "time"

type Product struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	SKU             string    `json:"sku,omitempty"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	PriceCents      int64     `json:"priceCents"`
	StockQuantity   *int      `json:"stockQuantity,omitempty"`
	CategoryID      *string   `json:"categoryId,omitempty"`
	Images          []string  `json:"images,omitempty"`
	VideoURL        string    `json:"videoUrl,omitempty"`
	IsFeatured      bool      `json:"isFeatured"`
	MetaTitle       string    `json:"metaTitle,omitempty"`
	MetaDescription string    `json:"metaDescription,omitempty"`
	FocusKeywords   []string  `json:"focusKeywords,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FirstImage returns the primary image URL or an empty string.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductVariation is a purchasable option of a product such as a size.
type ProductVariation struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	PriceCents    int64     `json:"priceCents"`
	ApplySale     bool      `json:"applySale"`
	SortOrder     int       `json:"sortOrder"`
	StockQuantity *int      `json:"stockQuantity,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Package pricing resolves the price a customer pays for a product once sale
// campaigns are taken into account.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of resolving a price. DiscountPercent is nil when no
// sale badge should be shown.
type Result struct {
	FinalPriceCents int64 `json:"finalPriceCents"`
	DiscountPercent *int  `json:"discountPercent,omitempty"`
}

// Resolve computes the payable price of basePrice. A product-scoped campaign
// wins over a global one. Campaigns that are nil, inactive or malformed are
// ignored; Resolve never fails and reads no clock, so identical inputs always
// give identical output. Time eligibility is the caller's job (see Eligible).
func Resolve(basePrice int64, productCampaign, globalCampaign *domain.SaleCampaign, applySale bool) Result {
	if basePrice < 0 {
		basePrice = 0
	}
	noDiscount := Result{FinalPriceCents: basePrice}
	if !applySale {
		return noDiscount
	}

	campaign := productCampaign
	if !usable(campaign) {
		campaign = globalCampaign
	}
	if !usable(campaign) {
		return noDiscount
	}

	final := applyDiscount(basePrice, campaign)
	if final == basePrice || basePrice == 0 {
		return Result{FinalPriceCents: final}
	}

	pct := discountPercent(basePrice, final)
	return Result{FinalPriceCents: final, DiscountPercent: &pct}
}

// Eligible reports whether c is active and has not ended at now.
func Eligible(c domain.SaleCampaign, now time.Time) bool {
	if !c.IsActive || !c.EndDate.After(now) {
		return false
	}
	if c.StartDate != nil && c.StartDate.After(now) {
		return false
	}
	return true
}

// PickCampaigns returns the first eligible campaign scoped to productID and the
// first eligible global campaign from sales. Either may be nil.
func PickCampaigns(sales []domain.SaleCampaign, productID string, now time.Time) (product, global *domain.SaleCampaign) {
	for i := range sales {
		s := &sales[i]
		if !Eligible(*s, now) {
			continue
		}
		if product == nil && s.ProductID != nil && *s.ProductID == productID {
			product = s
		}
		if global == nil && s.IsGlobal {
			global = s
		}
	}
	return product, global
}

// ResolveFor picks campaigns for productID out of sales and resolves basePrice.
func ResolveFor(sales []domain.SaleCampaign, productID string, basePrice int64, applySale bool, now time.Time) Result {
	product, global := PickCampaigns(sales, productID, now)
	return Resolve(basePrice, product, global, applySale)
}

func usable(c *domain.SaleCampaign) bool {
	if c == nil || !c.IsActive {
		return false
	}
	switch c.DiscountType {
	case domain.DiscountPercentage:
		return c.DiscountValue >= 0 && c.DiscountValue <= 100
	case domain.DiscountFixed:
		return c.DiscountValue >= 0
	default:
		return false
	}
}

func applyDiscount(basePrice int64, c *domain.SaleCampaign) int64 {
	base := decimal.NewFromInt(basePrice)
	var off decimal.Decimal
	switch c.DiscountType {
	case domain.DiscountPercentage:
		off = base.Mul(decimal.NewFromInt(c.DiscountValue)).Div(hundred).Round(0)
	case domain.DiscountFixed:
		off = decimal.NewFromInt(c.DiscountValue)
	}
	final := base.Sub(off)
	if final.IsNegative() {
		return 0
	}
	if final.GreaterThan(base) {
		return basePrice
	}
	return final.IntPart()
}

// discountPercent rounds half away from zero, which for non-negative prices is
// round-half-up.
func discountPercent(basePrice, final int64) int {
	base := decimal.NewFromInt(basePrice)
	saved := base.Sub(decimal.NewFromInt(final))
	return int(saved.Mul(hundred).Div(base).Round(0).IntPart())
}

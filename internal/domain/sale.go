package domain

import "time"

// DiscountType selects how a campaign's DiscountValue is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// SaleCampaign is a time-bounded discount, either scoped to one product or store-wide.
// DiscountValue is a whole percentage for percentage campaigns and minor units for fixed ones.
type SaleCampaign struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ProductID     *string      `json:"productId,omitempty"`
	IsGlobal      bool         `json:"isGlobal"`
	IsActive      bool         `json:"isActive"`
	StartDate     *time.Time   `json:"startDate,omitempty"`
	EndDate       time.Time    `json:"endDate"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue int64        `json:"discountValue"`
	CreatedAt     time.Time    `json:"createdAt"`
}

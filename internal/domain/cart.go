package domain

import (
	"fmt"
	"time"
)

// OwnerKind tells which store holds a cart.
type OwnerKind string

const (
	OwnerCustomer OwnerKind = "customer"
	OwnerGuest    OwnerKind = "guest"
)

// CartOwner identifies a cart: an authenticated customer or an anonymous guest session.
type CartOwner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

func CustomerOwner(userID string) CartOwner { return CartOwner{Kind: OwnerCustomer, ID: userID} }

func GuestOwner(anonymousID string) CartOwner { return CartOwner{Kind: OwnerGuest, ID: anonymousID} }

// Key is the cache key for the owner's cart view.
func (o CartOwner) Key() string {
	return fmt.Sprintf("cart:%s:%s", o.Kind, o.ID)
}

// CartLine is one (product, variation) entry of a cart. ProductName, UnitPriceCents
// and Image are snapshots kept for guest carts, which have no relational join.
type CartLine struct {
	ID                  string      `json:"id"`
	ProductID           string      `json:"productId"`
	VariationID         VariationID `json:"variationId"`
	VariationName       *string     `json:"variationName,omitempty"`
	VariationPriceCents *int64      `json:"variationPriceCents,omitempty"`
	ApplySale           bool        `json:"applySale"`
	Quantity            int         `json:"quantity"`
	ProductName         string      `json:"productName,omitempty"`
	UnitPriceCents      int64       `json:"unitPriceCents,omitempty"`
	Image               string      `json:"image,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// Matches reports whether the line holds the given product and variation.
func (l CartLine) Matches(productID string, variationID VariationID) bool {
	return l.ProductID == productID && l.VariationID.Equal(variationID)
}

type Cart struct {
	Owner CartOwner  `json:"owner"`
	Lines []CartLine `json:"lineItems"`
}

// Package variation tracks which variation of a product is selected and the
// quantity chosen against it.
package variation

import (
	"errors"
	"sort"

	"storefront/internal/domain"
)

// DefaultQuantityCeiling bounds the quantity stepper when no stock is known.
const DefaultQuantityCeiling = 99

// ErrUnknownVariation is returned by Select for an id outside the loaded set.
var ErrUnknownVariation = errors.New("unknown variation")

type State int

const (
	AwaitingDefault State = iota
	NoVariations
	Selected
)

func (s State) String() string {
	switch s {
	case NoVariations:
		return "no_variations"
	case Selected:
		return "selected"
	default:
		return "awaiting_default"
	}
}

// Selector is the selection state for one product. It is not safe for
// concurrent use.
type Selector struct {
	product    domain.Product
	variations []domain.ProductVariation
	state      State
	selected   int
	quantity   int
}

// NewSelector starts in AwaitingDefault for product.
func NewSelector(product domain.Product) *Selector {
	return &Selector{product: product, state: AwaitingDefault, quantity: 1}
}

// Load stores the product's variations. With none the selector moves to
// NoVariations; otherwise the lowest sortOrder entry becomes the default
// selection unless one is already selected.
func (s *Selector) Load(variations []domain.ProductVariation) {
	previous := s.SelectedID()
	sorted := make([]domain.ProductVariation, len(variations))
	copy(sorted, variations)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })
	s.variations = sorted

	if len(sorted) == 0 {
		s.state = NoVariations
		return
	}
	if s.state == Selected {
		if id, ok := previous.Get(); ok {
			if idx := s.indexOf(id); idx >= 0 {
				s.selected = idx
				return
			}
		}
	}
	s.state = Selected
	s.selected = 0
}

// Select switches to the variation with id and resets quantity to 1.
func (s *Selector) Select(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrUnknownVariation
	}
	s.state = Selected
	s.selected = idx
	s.quantity = 1
	return nil
}

// Reset returns to AwaitingDefault for a different product.
func (s *Selector) Reset(product domain.Product) {
	s.product = product
	s.variations = nil
	s.state = AwaitingDefault
	s.selected = 0
	s.quantity = 1
}

func (s *Selector) State() State { return s.state }

func (s *Selector) Quantity() int { return s.quantity }

// SetQuantity clamps n into [1, QuantityCeiling()] and returns the stored value.
func (s *Selector) SetQuantity(n int) int {
	ceiling := s.QuantityCeiling()
	switch {
	case n < 1:
		n = 1
	case n > ceiling:
		n = ceiling
	}
	s.quantity = n
	return n
}

// QuantityCeiling is the selected variation's stock, else the product's stock,
// else DefaultQuantityCeiling. A known stock of zero still yields 1.
func (s *Selector) QuantityCeiling() int {
	stock := s.product.StockQuantity
	if v, ok := s.Current(); ok && v.StockQuantity != nil {
		stock = v.StockQuantity
	}
	if stock == nil {
		return DefaultQuantityCeiling
	}
	if *stock < 1 {
		return 1
	}
	return *stock
}

// Current returns the selected variation.
func (s *Selector) Current() (domain.ProductVariation, bool) {
	if s.state != Selected || s.selected >= len(s.variations) {
		return domain.ProductVariation{}, false
	}
	return s.variations[s.selected], true
}

func (s *Selector) SelectedID() domain.VariationID {
	v, ok := s.Current()
	if !ok {
		return domain.NoVariation
	}
	return domain.SomeVariation(v.ID)
}

// UnitPrice is the selected variation's price or the product base price.
func (s *Selector) UnitPrice() int64 {
	if v, ok := s.Current(); ok {
		return v.PriceCents
	}
	return s.product.PriceCents
}

// ApplySale reports whether campaign discounts apply to UnitPrice.
func (s *Selector) ApplySale() bool {
	if v, ok := s.Current(); ok {
		return v.ApplySale
	}
	return true
}

// Variations returns the loaded variations ordered by sortOrder.
func (s *Selector) Variations() []domain.ProductVariation { return s.variations }

func (s *Selector) indexOf(id string) int {
	for i, v := range s.variations {
		if v.ID == id {
			return i
		}
	}
	return -1
}

package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/cartstore"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/variation"
)

// ErrUnknownOwner is returned for an identity that maps to no cart store.
var ErrUnknownOwner = errors.New("unknown cart owner")

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Variations(ctx context.Context, productID string) ([]domain.ProductVariation, error)
}

type saleRepo interface {
	ListActive(ctx context.Context, now time.Time) ([]domain.SaleCampaign, error)
}

// Service reconciles add-to-cart requests against the owner's existing lines
// and serves the priced cart view.
type Service struct {
	customers cartstore.Store
	guests    cartstore.Store
	products  productRepo
	sales     saleRepo
	cache     cache.Cache
	events    events.Publisher
	logger    *zap.Logger
	viewTTL   time.Duration
	currency  string
	now       func() time.Time
}

type Options struct {
	Customers cartstore.Store
	Guests    cartstore.Store
	Products  productRepo
	Sales     saleRepo
	Cache     cache.Cache
	Events    events.Publisher
	Logger    *zap.Logger
	ViewTTL   time.Duration
	Currency  string
}

func New(opts Options) *Service {
	s := &Service{
		customers: opts.Customers,
		guests:    opts.Guests,
		products:  opts.Products,
		sales:     opts.Sales,
		cache:     opts.Cache,
		events:    opts.Events,
		logger:    opts.Logger,
		viewTTL:   opts.ViewTTL,
		currency:  opts.Currency,
		now:       time.Now,
	}
	if s.cache == nil {
		s.cache = cache.NewMemory()
	}
	if s.events == nil {
		s.events = events.Noop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Snapshot describes the product and variation being added, as shown to the
// shopper at the time of adding.
type Snapshot struct {
	ProductName         string
	UnitPriceCents      int64
	Image               string
	VariationName       *string
	VariationPriceCents *int64
	ApplySale           bool
}

func (s *Service) storeFor(owner domain.CartOwner) (cartstore.Store, error) {
	if owner.ID == "" {
		return nil, ErrUnknownOwner
	}
	switch owner.Kind {
	case domain.OwnerCustomer:
		return s.customers, nil
	case domain.OwnerGuest:
		return s.guests, nil
	default:
		return nil, ErrUnknownOwner
	}
}

// AddToCart merges quantity units of (productID, variationID) into the owner's
// cart. An existing line with the same product and variation is incremented;
// otherwise a new line is created from snap. Storage failures are reported as
// domain.ErrPersistence and leave the cart unchanged.
func (s *Service) AddToCart(ctx context.Context, owner domain.CartOwner, productID string, variationID domain.VariationID, quantity int, snap Snapshot) (domain.CartLine, error) {
	if quantity <= 0 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}
	store, err := s.storeFor(owner)
	if err != nil {
		return domain.CartLine{}, err
	}

	line, err := store.Add(ctx, owner.ID, cartstore.AddRequest{
		ProductID:           productID,
		VariationID:         variationID,
		VariationName:       snap.VariationName,
		VariationPriceCents: snap.VariationPriceCents,
		ApplySale:           snap.ApplySale,
		Quantity:            quantity,
		ProductName:         snap.ProductName,
		UnitPriceCents:      snap.UnitPriceCents,
		Image:               snap.Image,
	})
	if err != nil {
		s.logger.Error("add to cart failed",
			zap.String("owner", owner.Key()),
			zap.String("product_id", productID),
			zap.Stringer("variation_id", variationID),
			zap.Error(err),
		)
		return domain.CartLine{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.changed(ctx, owner)
	if err := s.events.PublishCartLineAdded(ctx, events.CartLineAdded{
		OwnerKind:   string(owner.Kind),
		OwnerID:     owner.ID,
		LineID:      line.ID,
		ProductID:   productID,
		VariationID: variationID.Ptr(),
		Added:       quantity,
		Quantity:    line.Quantity,
	}); err != nil {
		s.logger.Warn("publish cart event", zap.String("owner", owner.Key()), zap.Error(err))
	}
	return line, nil
}

type AddItemInput struct {
	ProductID   string             `json:"productId"`
	VariationID domain.VariationID `json:"variationId"`
	Quantity    int                `json:"quantity"`
}

// AddItem looks up the product and variation, clamps the quantity to known
// stock and adds the line. A missing product or variation is ErrNotFound.
func (s *Service) AddItem(ctx context.Context, owner domain.CartOwner, in AddItemInput) (domain.CartLine, error) {
	if in.Quantity <= 0 {
		return domain.CartLine{}, domain.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return domain.CartLine{}, err
	}

	sel := variation.NewSelector(*product)
	if id, ok := in.VariationID.Get(); ok {
		vs, err := s.products.Variations(ctx, product.ID)
		if err != nil {
			return domain.CartLine{}, err
		}
		sel.Load(vs)
		if err := sel.Select(id); err != nil {
			return domain.CartLine{}, domain.ErrNotFound
		}
	}

	quantity := in.Quantity
	if stockKnown(*product, sel) {
		quantity = sel.SetQuantity(quantity)
	}

	snap := Snapshot{
		ProductName:    product.Name,
		UnitPriceCents: product.PriceCents,
		Image:          product.FirstImage(),
		ApplySale:      sel.ApplySale(),
	}
	if v, ok := sel.Current(); ok {
		name, price := v.Name, v.PriceCents
		snap.VariationName = &name
		snap.VariationPriceCents = &price
	}
	return s.AddToCart(ctx, owner, product.ID, sel.SelectedID(), quantity, snap)
}

func stockKnown(p domain.Product, sel *variation.Selector) bool {
	if v, ok := sel.Current(); ok && v.StockQuantity != nil {
		return true
	}
	return p.StockQuantity != nil
}

// ChangeQuantity sets a line's quantity. Use RemoveLine to drop a line.
func (s *Service) ChangeQuantity(ctx context.Context, owner domain.CartOwner, lineID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}
	if err := store.SetQuantity(ctx, owner.ID, lineID, quantity); err != nil {
		return s.storeError(owner, err)
	}
	s.changed(ctx, owner)
	return nil
}

func (s *Service) RemoveLine(ctx context.Context, owner domain.CartOwner, lineID string) error {
	store, err := s.storeFor(owner)
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, owner.ID, lineID); err != nil {
		return s.storeError(owner, err)
	}
	s.changed(ctx, owner)
	return nil
}

// Subscribe reports changes to the owner's cart until cancel is called.
func (s *Service) Subscribe(ctx context.Context, owner domain.CartOwner) (<-chan string, func()) {
	return s.cache.Subscribe(ctx, owner.Key())
}

func (s *Service) storeError(owner domain.CartOwner, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.logger.Error("cart store failed", zap.String("owner", owner.Key()), zap.Error(err))
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

// changed drops the cached view for owner. The write already succeeded, so a
// failed invalidation is logged rather than returned.
func (s *Service) changed(ctx context.Context, owner domain.CartOwner) {
	if err := s.cache.Invalidate(ctx, owner.Key()); err != nil {
		s.logger.Warn("invalidate cart view", zap.String("owner", owner.Key()), zap.Error(err))
	}
}

package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/catalog"
)

type catalogService interface {
	ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.PricedProduct, error)
	FeaturedProducts(ctx context.Context) ([]catalog.PricedProduct, error)
	RelatedProducts(ctx context.Context, slug string) ([]catalog.PricedProduct, error)
	ProductDetail(ctx context.Context, slug string, variationID domain.VariationID, quantity int) (*catalog.Detail, error)
	ListCategories(ctx context.Context, limit int) ([]domain.Category, error)
	ActiveSales(ctx context.Context) ([]domain.SaleCampaign, error)
}

type cartService interface {
	GetCart(ctx context.Context, owner domain.CartOwner) (*cartsvc.View, error)
	AddItem(ctx context.Context, owner domain.CartOwner, in cartsvc.AddItemInput) (domain.CartLine, error)
	ChangeQuantity(ctx context.Context, owner domain.CartOwner, lineID string, quantity int) error
	RemoveLine(ctx context.Context, owner domain.CartOwner, lineID string) error
	Subscribe(ctx context.Context, owner domain.CartOwner) (<-chan string, func())
}

type anonymousService interface {
	Issue(ctx context.Context) (anonymous.Token, error)
	LookupByToken(ctx context.Context, token string) (string, error)
}

type bannerSource interface {
	Snapshot() ([]domain.Banner, int)
}

// Deps are the services the router dispatches to.
type Deps struct {
	CatalogSvc   catalogService
	CartSvc      cartService
	AnonymousSvc anonymousService
	Banners      bannerSource

	JWTSecret    string
	CORSOrigins  []string
	CartRate     float64
	CartBurst    int
	SSEKeepAlive time.Duration
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(accessLog(logger), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = deps.CORSOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/categories", h.listCategories)
	router.GET("/products", h.listProducts)
	router.GET("/products/featured", h.featuredProducts)
	router.GET("/products/:slug", h.productDetail)
	router.GET("/products/:slug/related", h.relatedProducts)
	router.GET("/sales", h.activeSales)
	router.GET("/banners", h.banners)

	router.POST("/anonymous/token", h.issueAnonymousToken)

	limiter := newRateLimiter(deps.CartRate, deps.CartBurst)
	cart := router.Group("/cart", ownerMiddleware(deps.JWTSecret, deps.AnonymousSvc))
	cart.GET("", h.getCart)
	cart.GET("/events", h.cartEvents)
	mutations := cart.Group("", limiter.middleware())
	mutations.POST("/items", h.addCartItem)
	mutations.PATCH("/items/:lineId", h.changeCartItem)
	mutations.DELETE("/items/:lineId", h.removeCartItem)

	return router
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

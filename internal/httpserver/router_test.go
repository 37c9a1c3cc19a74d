package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/service/catalog"
)

type stubCatalog struct {
	products   []catalog.PricedProduct
	categories []domain.Category
	sales      []domain.SaleCampaign
	detail     *catalog.Detail
	err        error

	lastFilter    catalog.ProductFilter
	lastLimit     int
	lastVariation domain.VariationID
	lastQuantity  int
}

func (s *stubCatalog) ListProducts(_ context.Context, f catalog.ProductFilter) ([]catalog.PricedProduct, error) {
	s.lastFilter = f
	return s.products, s.err
}

func (s *stubCatalog) FeaturedProducts(context.Context) ([]catalog.PricedProduct, error) {
	return s.products, s.err
}

func (s *stubCatalog) RelatedProducts(context.Context, string) ([]catalog.PricedProduct, error) {
	return s.products, s.err
}

func (s *stubCatalog) ProductDetail(_ context.Context, slug string, variationID domain.VariationID, quantity int) (*catalog.Detail, error) {
	s.lastVariation = variationID
	s.lastQuantity = quantity
	if s.err != nil {
		return nil, s.err
	}
	if s.detail == nil || s.detail.Product.Slug != slug {
		return nil, domain.ErrNotFound
	}
	return s.detail, nil
}

func (s *stubCatalog) ListCategories(_ context.Context, limit int) ([]domain.Category, error) {
	s.lastLimit = limit
	return s.categories, s.err
}

func (s *stubCatalog) ActiveSales(context.Context) ([]domain.SaleCampaign, error) {
	return s.sales, s.err
}

type stubBanners struct {
	banners []domain.Banner
	current int
}

func (s stubBanners) Snapshot() ([]domain.Banner, int) { return s.banners, s.current }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func logDiscard() *zap.Logger { return zap.NewNop() }

func doRequest(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := buildRouter(logDiscard(), stubPinger{}, Deps{})
	if w := doRequest(r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", w.Code)
	}

	down := buildRouter(logDiscard(), stubPinger{err: errors.New("down")}, Deps{})
	if w := doRequest(down, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with db down: expected 503, got %d", w.Code)
	}

	none := buildRouter(logDiscard(), nil, Deps{})
	if w := doRequest(none, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: expected 503, got %d", w.Code)
	}
}

func TestListProductsParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cat := &stubCatalog{products: []catalog.PricedProduct{
		{Product: domain.Product{ID: "p1", Name: "Lawn Suit", PriceCents: 450000}, FinalPriceCents: 360000},
	}}
	r := buildRouter(logDiscard(), nil, Deps{CatalogSvc: cat})

	w := doRequest(r, http.MethodGet, "/products?category=lawn&minPrice=1000&maxPrice=900000&limit=20", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	f := cat.lastFilter
	if f.CategorySlug != "lawn" || f.MinPrice == nil || *f.MinPrice != 1000 || f.MaxPrice == nil || *f.MaxPrice != 900000 || f.Limit != 20 {
		t.Fatalf("unexpected filter %+v", f)
	}

	var body struct {
		Results []catalog.PricedProduct `json:"results"`
		Count   int                     `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || body.Results[0].FinalPriceCents != 360000 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestListProductsRejectsBadPrice(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := buildRouter(logDiscard(), nil, Deps{CatalogSvc: &stubCatalog{}})
	for _, path := range []string{"/products?minPrice=abc", "/products?maxPrice=-5", "/products?limit=0"} {
		w := doRequest(r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.StatusCode != http.StatusBadRequest || body.Message == "" {
			t.Fatalf("%s: unexpected error body %+v", path, body)
		}
	}
}

func TestListCategoriesLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cat := &stubCatalog{categories: []domain.Category{{ID: "c1", Name: "Lawn", Slug: "lawn"}}}
	r := buildRouter(logDiscard(), nil, Deps{CatalogSvc: cat})

	if w := doRequest(r, http.MethodGet, "/categories?limit=6", "", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cat.lastLimit != 6 {
		t.Fatalf("expected limit 6, got %d", cat.lastLimit)
	}
	if w := doRequest(r, http.MethodGet, "/categories?limit=101", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProductDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cat := &stubCatalog{detail: &catalog.Detail{
		Product:         domain.Product{ID: "p1", Slug: "lawn-suit", PriceCents: 450000},
		SelectionState:  "selected",
		UnitPriceCents:  500000,
		FinalPriceCents: 400000,
		Quantity:        2,
	}}
	r := buildRouter(logDiscard(), nil, Deps{CatalogSvc: cat})

	w := doRequest(r, http.MethodGet, "/products/lawn-suit?variation=v2&quantity=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if id, ok := cat.lastVariation.Get(); !ok || id != "v2" {
		t.Fatalf("expected variation v2, got %v", cat.lastVariation)
	}
	if cat.lastQuantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cat.lastQuantity)
	}

	w = doRequest(r, http.MethodGet, "/products/lawn-suit", "", nil)
	if w.Code != http.StatusOK || cat.lastVariation.IsSet() || cat.lastQuantity != 1 {
		t.Fatalf("defaults not applied: code %d variation %v quantity %d", w.Code, cat.lastVariation, cat.lastQuantity)
	}

	w = doRequest(r, http.MethodGet, "/products/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCatalogServiceErrorMapsTo502(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cat := &stubCatalog{err: errors.Join(domain.ErrPersistence, errors.New("connection reset"))}
	r := buildRouter(logDiscard(), nil, Deps{CatalogSvc: cat})

	w := doRequest(r, http.MethodGet, "/sales", "", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestUnexpectedErrorMapsTo500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := buildRouter(logDiscard(), nil, Deps{CatalogSvc: &stubCatalog{err: errors.New("boom")}})
	w := doRequest(r, http.MethodGet, "/products/featured", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
}

func TestBanners(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := buildRouter(logDiscard(), nil, Deps{Banners: stubBanners{
		banners: []domain.Banner{{ID: "b1", Title: "Eid Sale"}, {ID: "b2", Title: "New Arrivals"}},
		current: 1,
	}})
	w := doRequest(r, http.MethodGet, "/banners", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Results []domain.Banner `json:"results"`
		Current int             `json:"current"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 2 || body.Current != 1 {
		t.Fatalf("unexpected body %+v", body)
	}

	empty := buildRouter(logDiscard(), nil, Deps{})
	if w := doRequest(empty, http.MethodGet, "/banners", "", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"results":[]`) {
		t.Fatalf("expected empty banner list, got %d %s", w.Code, w.Body.String())
	}
}

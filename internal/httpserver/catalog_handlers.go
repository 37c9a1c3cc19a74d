package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/catalog"
)

const maxCategoryLimit = 100

func (h *handlers) listCategories(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCategoryLimit {
			writeError(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	categories, err := h.deps.CatalogSvc.ListCategories(c.Request.Context(), limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": categories, "count": len(categories)})
}

// listProducts filters by category slug and by base price in minor units.
func (h *handlers) listProducts(c *gin.Context) {
	f := catalog.ProductFilter{CategorySlug: c.Query("category")}
	var ok bool
	if f.MinPrice, ok = optionalCents(c, "minPrice"); !ok {
		return
	}
	if f.MaxPrice, ok = optionalCents(c, "maxPrice"); !ok {
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	products, err := h.deps.CatalogSvc.ListProducts(c.Request.Context(), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func optionalCents(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		writeError(c, http.StatusBadRequest, name+" must be a non-negative integer")
		return nil, false
	}
	return &v, true
}

func (h *handlers) featuredProducts(c *gin.Context) {
	products, err := h.deps.CatalogSvc.FeaturedProducts(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func (h *handlers) productDetail(c *gin.Context) {
	quantity := 1
	if raw := c.Query("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "quantity must be an integer")
			return
		}
		quantity = n
	}
	detail, err := h.deps.CatalogSvc.ProductDetail(c.Request.Context(), c.Param("slug"),
		domain.SomeVariation(c.Query("variation")), quantity)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *handlers) relatedProducts(c *gin.Context) {
	products, err := h.deps.CatalogSvc.RelatedProducts(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}

func (h *handlers) activeSales(c *gin.Context) {
	sales, err := h.deps.CatalogSvc.ActiveSales(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": sales, "count": len(sales)})
}

func (h *handlers) banners(c *gin.Context) {
	if h.deps.Banners == nil {
		c.JSON(http.StatusOK, gin.H{"results": []domain.Banner{}, "current": 0})
		return
	}
	banners, current := h.deps.Banners.Snapshot()
	if banners == nil {
		banners = []domain.Banner{}
	}
	c.JSON(http.StatusOK, gin.H{"results": banners, "current": current})
}

package httpserver

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type addItemRequest struct {
	ProductID   string             `json:"productId" binding:"required"`
	VariationID domain.VariationID `json:"variationId"`
	Quantity    int                `json:"quantity"`
}

type changeQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) issueAnonymousToken(c *gin.Context) {
	token, err := h.deps.AnonymousSvc.Issue(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *handlers) getCart(c *gin.Context) {
	owner, _ := ownerFrom(c)
	view, err := h.deps.CartSvc.GetCart(c.Request.Context(), owner)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	owner, _ := ownerFrom(c)
	line, err := h.deps.CartSvc.AddItem(c.Request.Context(), owner, cartsvc.AddItemInput{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (h *handlers) changeCartItem(c *gin.Context) {
	var req changeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	owner, _ := ownerFrom(c)
	if err := h.deps.CartSvc.ChangeQuantity(c.Request.Context(), owner, c.Param("lineId"), req.Quantity); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) removeCartItem(c *gin.Context) {
	owner, _ := ownerFrom(c)
	if err := h.deps.CartSvc.RemoveLine(c.Request.Context(), owner, c.Param("lineId")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// cartEvents streams a "cart.changed" event each time the owner's cart is
// invalidated. A "ready" event is sent once the subscription is live.
func (h *handlers) cartEvents(c *gin.Context) {
	owner, _ := ownerFrom(c)
	ctx := c.Request.Context()
	changes, cancel := h.deps.CartSvc.Subscribe(ctx, owner)
	defer cancel()

	keepAlive := h.deps.SSEKeepAlive
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"owner": owner})
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case key, ok := <-changes:
			if !ok {
				return false
			}
			c.SSEvent("cart.changed", gin.H{"key": key})
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
	h.logger.Debug("cart event stream closed", zap.String("owner", owner.Key()))
}

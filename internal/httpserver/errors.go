package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{StatusCode: status, Message: message})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *handlers) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPersistence):
		writeError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, cartsvc.ErrUnknownOwner):
		writeError(c, http.StatusUnauthorized, "unauthorized")
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

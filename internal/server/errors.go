package server

import (
	"errors"
	"net/http"

	"partshop/storefront/internal/cart"
	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/promo"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalog.ErrInvalidFilter),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, promo.ErrEmptyCode),
		errors.Is(err, promo.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place errors become HTTP responses. Internal
// failures are logged and reported without detail.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func writeData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"partshop/storefront/internal/promo"
	"partshop/storefront/internal/recent"

	"github.com/gin-gonic/gin"
)

type recordSearchRequest struct {
	Term string `json:"term"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"` // Defaults to 1
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type promoRequest struct {
	Code string `json:"code"`
}

func (s *Server) recentStore(c *gin.Context) (*recent.Store, error) {
	store := recent.New(s.deps.State, recent.KeyFor(userID(c)), s.cfg.Search.RecentSearchLimit)
	if err := store.Load(c.Request.Context()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Server) getRecentSearches(c *gin.Context) {
	store, err := s.recentStore(c)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, store.Items())
}

func (s *Server) recordRecentSearch(c *gin.Context) {
	var req recordSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid body: %w", errBadRequest))
		return
	}
	if strings.TrimSpace(req.Term) == "" {
		writeError(c, fmt.Errorf("term is required: %w", errBadRequest))
		return
	}

	store, err := s.recentStore(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := store.Record(c.Request.Context(), req.Term); err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, store.Items())
}

func (s *Server) clearRecentSearches(c *gin.Context) {
	store := recent.New(s.deps.State, recent.KeyFor(userID(c)), s.cfg.Search.RecentSearchLimit)
	if err := store.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, store.Items())
}

func (s *Server) getCart(c *gin.Context) {
	fastTrack := false
	if raw := c.Query("fast_track"); raw != "" {
		var err error
		if fastTrack, err = strconv.ParseBool(raw); err != nil {
			writeError(c, fmt.Errorf("fast_track must be a boolean: %w", errBadRequest))
			return
		}
	}

	cart, err := s.deps.Cart.Get(c.Request.Context(), userID(c), fastTrack)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, cart)
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid body: %w", errBadRequest))
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeError(c, fmt.Errorf("product_id is required: %w", errBadRequest))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	line, err := s.deps.Cart.AddItem(c.Request.Context(), userID(c), req.ProductID, qty)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusCreated, line)
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid body: %w", errBadRequest))
		return
	}

	line, err := s.deps.Cart.UpdateQuantity(c.Request.Context(), userID(c), c.Param("product_id"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, line)
}

func (s *Server) removeCartItem(c *gin.Context) {
	if err := s.deps.Cart.RemoveItem(c.Request.Context(), userID(c), c.Param("product_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) clearCart(c *gin.Context) {
	if err := s.deps.Cart.Clear(c.Request.Context(), userID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// applyPromo answers in the flat promo shape rather than the data envelope.
func (s *Server) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}

	result, err := s.deps.Cart.ApplyPromo(c.Request.Context(), userID(c), req.Code)
	switch {
	case errors.Is(err, promo.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": promo.ReasonInvalidCode})
		return
	case errors.Is(err, promo.ErrEmptyCode):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"code":          result.Code,
		"discount":      result.Discount,
		"discount_type": result.DiscountType,
		"message":       result.Message,
	})
}

func (s *Server) removePromo(c *gin.Context) {
	if err := s.deps.Cart.RemovePromo(c.Request.Context(), userID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

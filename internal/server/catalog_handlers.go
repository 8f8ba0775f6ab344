package server

import (
	"fmt"
	"net/http"
	"strconv"

	"partshop/storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (s *Server) listProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := s.deps.Catalog.Search(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, page)
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.deps.Catalog.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, product)
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.deps.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, categories)
}

func (s *Server) suggestions(c *gin.Context) {
	items, err := s.deps.Composer.Compose(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeData(c, http.StatusOK, items)
}

// parseProductFilter reads the query string. Missing values are left zero
// for the catalog service to default; malformed values are a 400.
func parseProductFilter(c *gin.Context) (domain.ProductFilter, error) {
	filter := domain.ProductFilter{
		Text:       c.Query("text"),
		CategoryID: c.Query("category"),
		Sort:       domain.SortKey(c.Query("sort")),
	}
	if filter.Text == "" {
		filter.Text = c.Query("q")
	}

	var err error
	if filter.PriceMin, err = optionalInt64(c, "price_min"); err != nil {
		return filter, err
	}
	if filter.PriceMax, err = optionalInt64(c, "price_max"); err != nil {
		return filter, err
	}
	if filter.Page, err = positiveInt(c, "page"); err != nil {
		return filter, err
	}
	if filter.Limit, err = positiveInt(c, "limit"); err != nil {
		return filter, err
	}
	if raw := c.Query("in_stock"); raw != "" {
		if filter.InStockOnly, err = strconv.ParseBool(raw); err != nil {
			return filter, fmt.Errorf("in_stock must be a boolean: %w", errBadRequest)
		}
	}
	return filter, nil
}

func optionalInt64(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer: %w", name, errBadRequest)
	}
	return &v, nil
}

// positiveInt returns 0 when the parameter is absent. A value that is given
// must be an integer of at least 1.
func positiveInt(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, errBadRequest)
	}
	if v < 1 {
		return 0, fmt.Errorf("%s must be >= 1: %w", name, errBadRequest)
	}
	return v, nil
}

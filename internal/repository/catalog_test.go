package repository

import (
	"testing"

	"partshop/storefront/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildProductWhere(t *testing.T) {
	lo, hi := int64(100), int64(500)

	tests := []struct {
		name      string
		filter    domain.ProductFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			filter:    domain.ProductFilter{},
			wantWhere: "TRUE",
			wantArgs:  []any{},
		},
		{
			name:      "text searches three columns with one argument",
			filter:    domain.ProductFilter{Text: "pin"},
			wantWhere: "TRUE AND (p.name ILIKE $1 OR p.part_number ILIKE $1 OR p.description ILIKE $1)",
			wantArgs:  []any{"%pin%"},
		},
		{
			name:      "all filters",
			filter:    domain.ProductFilter{Text: "50%_off", CategoryID: "c1", PriceMin: &lo, PriceMax: &hi, InStockOnly: true},
			wantWhere: "TRUE AND (p.name ILIKE $1 OR p.part_number ILIKE $1 OR p.description ILIKE $1) AND p.category_id = $2 AND p.price >= $3 AND p.price <= $4 AND p.stock_quantity > 0",
			wantArgs:  []any{`%50\%\_off%`, "c1", int64(100), int64(500)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildProductWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildOrderClause(t *testing.T) {
	tests := map[domain.SortKey]string{
		domain.SortPriceAsc:    "p.price ASC, p.id ASC",
		domain.SortPriceDesc:   "p.price DESC, p.id ASC",
		domain.SortNewest:      "p.created_at DESC, p.id ASC",
		domain.SortBestSelling: "p.review_count DESC, p.id ASC",
		domain.SortRelevance:   "p.rating DESC, p.id ASC",
		"":                     "p.rating DESC, p.id ASC",
	}

	for sort, want := range tests {
		assert.Equal(t, want, buildOrderClause(sort), "sort %q", sort)
	}
}

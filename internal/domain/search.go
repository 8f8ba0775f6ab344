package domain

import "strings"

type SortKey string

func (s SortKey) String() string {
	return string(s)
}

const (
	SortRelevance   SortKey = "relevance"    // Average rating, descending
	SortPriceAsc    SortKey = "price_asc"    // Selling price, ascending
	SortPriceDesc   SortKey = "price_desc"   // Selling price, descending
	SortNewest      SortKey = "newest"       // Creation time, descending
	SortBestSelling SortKey = "best_selling" // Review count, descending
)

var SortKeys = []SortKey{
	SortRelevance,
	SortPriceAsc,
	SortPriceDesc,
	SortNewest,
	SortBestSelling,
}

func (s SortKey) IsValid() bool {
	for _, k := range SortKeys {
		if k == s {
			return true
		}
	}
	return false
}

// ProductFilter is the full parameter set of a catalog index query.
type ProductFilter struct {
	Text        string  `json:"text,omitempty"`
	CategoryID  string  `json:"category,omitempty"`
	PriceMin    *int64  `json:"price_min,omitempty"`
	PriceMax    *int64  `json:"price_max,omitempty"`
	InStockOnly bool    `json:"in_stock_only,omitempty"`
	Sort        SortKey `json:"sort"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
}

// Offset returns the index of the first item of the requested page.
func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Matches applies every non-sort predicate of the filter to a product.
func (f ProductFilter) Matches(p Product) bool {
	if f.Text != "" {
		text := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(p.Name), text) &&
			!strings.Contains(strings.ToLower(p.PartNumber), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) {
			return false
		}
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.PriceMin != nil && p.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	return true
}

// ProductPage is what a catalog store returns for a filter.
type ProductPage struct {
	TotalCount int       `json:"total_count"`
	Items      []Product `json:"items"`
}

type SearchResult struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	PartNumber      string   `json:"part_number"`
	Price           int64    `json:"price"`
	OriginalPrice   int64    `json:"original_price"`
	DiscountPercent int      `json:"discount_percent"`
	InStock         bool     `json:"in_stock"`
	Image           string   `json:"image,omitempty"`
	Badges          []string `json:"badges"`
}

const (
	BadgePopular   = "popular"
	BadgeFastTrack = "fast_track"
)

// NewSearchResult projects a product for display.
func NewSearchResult(p Product) SearchResult {
	original := p.Price
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
		original = *p.OriginalPrice
	}

	discount := 0
	if original > p.Price && original > 0 {
		// Rounded half up
		discount = int(((original-p.Price)*200 + original) / (2 * original))
	}

	badges := make([]string, 0, 2)
	if p.IsPopular {
		badges = append(badges, BadgePopular)
	}
	if p.IsFastTrack {
		badges = append(badges, BadgeFastTrack)
	}

	return SearchResult{
		ID:              p.ID,
		Name:            p.Name,
		PartNumber:      p.PartNumber,
		Price:           p.Price,
		OriginalPrice:   original,
		DiscountPercent: discount,
		InStock:         p.InStock(),
		Image:           p.ImageURL,
		Badges:          badges,
	}
}

type SearchPage struct {
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Items      []SearchResult `json:"items"`
}

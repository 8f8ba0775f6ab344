package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestions_TaggedEncoding(t *testing.T) {
	list := Suggestions{
		CategorySuggestion{CategoryID: "c1", Name: "Engine Parts"},
		ProductSuggestion{ProductID: "p1", Name: "Pin", CategoryName: "Engine Parts", InStock: false, Price: 735},
		RecentQuerySuggestion{Text: "gear"},
	}

	data, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"category","category_id":"c1","name":"Engine Parts"},
		{"type":"product","product_id":"p1","name":"Pin","category_name":"Engine Parts","in_stock":false,"price":735},
		{"type":"recent_query","text":"gear"}
	]`, string(data))

	var decoded Suggestions
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, list, decoded)
}

func TestSuggestions_UnknownType(t *testing.T) {
	var decoded Suggestions
	err := json.Unmarshal([]byte(`[{"type":"banner"}]`), &decoded)
	assert.ErrorContains(t, err, "banner")
}

func TestNewSearchResult(t *testing.T) {
	list := int64(1000)
	cheaper := int64(500)

	tests := []struct {
		name         string
		product      Product
		wantOriginal int64
		wantDiscount int
		wantBadges   []string
	}{
		{
			name:         "no list price defaults to price",
			product:      Product{Price: 735},
			wantOriginal: 735,
			wantBadges:   []string{},
		},
		{
			name:         "discount rounds to nearest percent",
			product:      Product{Price: 666, OriginalPrice: &list, IsPopular: true, IsFastTrack: true},
			wantOriginal: 1000,
			wantDiscount: 33,
			wantBadges:   []string{BadgePopular, BadgeFastTrack},
		},
		{
			name:         "list price below price is ignored",
			product:      Product{Price: 735, OriginalPrice: &cheaper, IsFastTrack: true},
			wantOriginal: 735,
			wantBadges:   []string{BadgeFastTrack},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSearchResult(tt.product)
			assert.Equal(t, tt.wantOriginal, got.OriginalPrice)
			assert.Equal(t, tt.wantDiscount, got.DiscountPercent)
			assert.Equal(t, tt.wantBadges, got.Badges)
		})
	}
}

func TestProductFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, ProductFilter{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, ProductFilter{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 40, ProductFilter{Page: 3, Limit: 20}.Offset())
}

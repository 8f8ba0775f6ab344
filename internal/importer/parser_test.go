package importer

import (
	"strings"
	"testing"
	"time"

	"partshop/storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	catalog, err := NewParser("https://parts.example.com/").ParseFile("testdata/catalog.html")
	require.NoError(t, err)

	assert.Equal(t, []domain.Category{
		{ID: "c-engine", Name: "Engine Parts", Icon: "⚙️"},
		{ID: "c-elec", Name: "Electrical", Icon: "⚡"},
	}, catalog.Categories)

	require.Len(t, catalog.Products, 3)

	pin := catalog.Products[0]
	original := int64(900)
	assert.Equal(t, domain.Product{
		ID:            "p1",
		Name:          "Pin",
		PartNumber:    "101026200400",
		Description:   "Hardened steel pin for the crank assembly",
		CategoryID:    "c-engine",
		Price:         735,
		OriginalPrice: &original,
		StockQuantity: 12,
		DeliveryTime:  "2-3 days",
		IsPopular:     true,
		ImageURL:      "https://parts.example.com/img/p1.jpg",
		Rating:        4.5,
		ReviewCount:   120,
		CreatedAt:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}, pin)

	gear := catalog.Products[1]
	assert.Equal(t, int64(1241), gear.Price)
	assert.Nil(t, gear.OriginalPrice)
	assert.False(t, gear.InStock())
	assert.Equal(t, 8, gear.ReviewCount)

	alternator := catalog.Products[2]
	assert.Equal(t, "c-elec", alternator.CategoryID)
	assert.True(t, alternator.IsFastTrack)
	assert.True(t, alternator.IsPopular)
	assert.Nil(t, alternator.OriginalPrice, "list price below selling price is dropped")
	assert.Equal(t, "https://cdn.example.com/p5.jpg", alternator.ImageURL)
}

func TestParse_NoCategories(t *testing.T) {
	_, err := NewParser("").Parse(strings.NewReader("<html><body><p>empty</p></body></html>"))
	assert.Error(t, err)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "₹735", want: 735},
		{raw: "₹20,521", want: 20521},
		{raw: "99.49", want: 99},
		{raw: "$ 1,000.50", want: 1001},
		{raw: "free", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseMoney(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbsoluteURL(t *testing.T) {
	p := NewParser("https://parts.example.com")
	assert.Equal(t, "https://parts.example.com/a.jpg", p.absoluteURL("/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.absoluteURL("//cdn.example.com/a.jpg"))
	assert.Equal(t, "http://x/a.jpg", p.absoluteURL("http://x/a.jpg"))
	assert.Equal(t, "a.jpg", p.absoluteURL("a.jpg"))
}

package catalog

import (
	"context"
	"errors"
	"math"
	"testing"

	"partshop/storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(products []domain.Product) *Service {
	return NewService(NewMemoryStore(testCategories(), products), nil, 20, 100)
}

func resultIDs(page *domain.SearchPage) []string {
	ids := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestSearch_TextMatchesNamePartNumberAndDescription(t *testing.T) {
	svc := newTestService(testProducts())

	page, err := svc.Search(context.Background(), domain.ProductFilter{Text: "pin", Sort: domain.SortPriceAsc})
	require.NoError(t, err)

	// p1 by name, p3 by description, p4 by part number. Gear (p2) has no "pin" anywhere.
	assert.Equal(t, 3, page.TotalCount)
	assert.ElementsMatch(t, []string{"p1", "p3", "p4"}, resultIDs(page))
	assert.NotContains(t, resultIDs(page), "p2")
}

func TestSearch_TextIsCaseInsensitive(t *testing.T) {
	svc := newTestService(testProducts())

	lower, err := svc.Search(context.Background(), domain.ProductFilter{Text: "hydraulic"})
	require.NoError(t, err)
	upper, err := svc.Search(context.Background(), domain.ProductFilter{Text: "HYDRAULIC"})
	require.NoError(t, err)

	assert.Equal(t, resultIDs(lower), resultIDs(upper))
	assert.Equal(t, []string{"p3"}, resultIDs(lower))
}

func TestSearch_Filters(t *testing.T) {
	svc := newTestService(testProducts())

	tests := []struct {
		name   string
		filter domain.ProductFilter
		want   []string
	}{
		{
			name:   "category exact match",
			filter: domain.ProductFilter{CategoryID: "c-hyd", Sort: domain.SortPriceAsc},
			want:   []string{"p4", "p3"},
		},
		{
			name:   "category is not a substring match",
			filter: domain.ProductFilter{CategoryID: "c-hy"},
			want:   []string{},
		},
		{
			name:   "inclusive price bounds",
			filter: domain.ProductFilter{PriceMin: int64Ptr(735), PriceMax: int64Ptr(4200), Sort: domain.SortPriceAsc},
			want:   []string{"p1", "p4", "p2"},
		},
		{
			name:   "in stock only",
			filter: domain.ProductFilter{InStockOnly: true, CategoryID: "c-engine"},
			want:   []string{"p1"},
		},
		{
			name:   "combined",
			filter: domain.ProductFilter{Text: "pin", InStockOnly: true, PriceMax: int64Ptr(1000), Sort: domain.SortPriceAsc},
			want:   []string{"p1", "p4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Search(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resultIDs(page))
			assert.Equal(t, len(tt.want), page.TotalCount)
		})
	}
}

func TestSearch_SortKeys(t *testing.T) {
	svc := newTestService(testProducts())

	tests := []struct {
		sort domain.SortKey
		want []string
	}{
		// p1 and p4 tie on price 735 and on rating 4.5, ID breaks the tie.
		{sort: domain.SortPriceAsc, want: []string{"p1", "p4", "p2", "p3", "p5"}},
		{sort: domain.SortPriceDesc, want: []string{"p5", "p3", "p2", "p1", "p4"}},
		{sort: domain.SortNewest, want: []string{"p5", "p4", "p3", "p2", "p1"}},
		{sort: domain.SortBestSelling, want: []string{"p3", "p1", "p4", "p2", "p5"}},
		{sort: domain.SortRelevance, want: []string{"p2", "p1", "p4", "p3", "p5"}},
		{sort: "", want: []string{"p2", "p1", "p4", "p3", "p5"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			page, err := svc.Search(context.Background(), domain.ProductFilter{Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resultIDs(page))
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	svc := newTestService(bulkProducts(25))

	tests := []struct {
		page      int
		wantCount int
		wantFirst string
	}{
		{page: 1, wantCount: 20, wantFirst: "b000"},
		{page: 2, wantCount: 5, wantFirst: "b020"},
		{page: 3, wantCount: 0},
	}

	for _, tt := range tests {
		page, err := svc.Search(context.Background(), domain.ProductFilter{
			Text:  "bolt",
			Sort:  domain.SortPriceAsc,
			Page:  tt.page,
			Limit: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, 25, page.TotalCount)
		assert.Equal(t, tt.page, page.Page)
		assert.Equal(t, 20, page.Limit)
		assert.Len(t, page.Items, tt.wantCount)
		assert.NotNil(t, page.Items)
		if tt.wantFirst != "" {
			assert.Equal(t, tt.wantFirst, page.Items[0].ID)
		}
	}
}

func TestSearch_PagesDoNotOverlapOnTies(t *testing.T) {
	products := bulkProducts(10)
	for i := range products {
		products[i].Price = 500
	}
	svc := newTestService(products)

	seen := map[string]bool{}
	for pageNum := 1; pageNum <= 4; pageNum++ {
		page, err := svc.Search(context.Background(), domain.ProductFilter{Sort: domain.SortPriceAsc, Page: pageNum, Limit: 3})
		require.NoError(t, err)
		for _, item := range page.Items {
			assert.False(t, seen[item.ID], "duplicate %s across pages", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestSearch_ProjectsSearchResult(t *testing.T) {
	svc := newTestService(testProducts())

	page, err := svc.Search(context.Background(), domain.ProductFilter{Text: "101026200400"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, int64(735), item.Price)
	assert.Equal(t, int64(900), item.OriginalPrice)
	assert.Equal(t, 18, item.DiscountPercent)
	assert.True(t, item.InStock)
	assert.Equal(t, []string{domain.BadgePopular}, item.Badges)
}

func TestNormalize(t *testing.T) {
	svc := newTestService(nil)

	tests := []struct {
		name      string
		filter    domain.ProductFilter
		wantErr   bool
		wantLimit int
		wantPage  int
	}{
		{name: "defaults", filter: domain.ProductFilter{}, wantLimit: 20, wantPage: 1},
		{name: "limit capped", filter: domain.ProductFilter{Limit: 500}, wantLimit: 100, wantPage: 1},
		{name: "negative page", filter: domain.ProductFilter{Page: -1}, wantErr: true},
		{name: "negative limit", filter: domain.ProductFilter{Limit: -5}, wantErr: true},
		{name: "page beyond offset range", filter: domain.ProductFilter{Page: math.MaxInt, Limit: 100}, wantErr: true},
		{name: "last addressable page", filter: domain.ProductFilter{Page: math.MaxInt/100 + 1, Limit: 100}, wantLimit: 100, wantPage: math.MaxInt/100 + 1},
		{name: "unknown sort", filter: domain.ProductFilter{Sort: "cheapest"}, wantErr: true},
		{name: "negative price", filter: domain.ProductFilter{PriceMin: int64Ptr(-1)}, wantErr: true},
		{name: "inverted bounds", filter: domain.ProductFilter{PriceMin: int64Ptr(10), PriceMax: int64Ptr(5)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Normalize(tt.filter)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, domain.SortRelevance, got.Sort)
		})
	}
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) QueryProducts(context.Context, domain.ProductFilter) (*domain.ProductPage, error) {
	return nil, f.err
}

func (f failingStore) GetProduct(context.Context, string) (*domain.Product, error) {
	return nil, f.err
}

func TestSearch_StoreFailureIsSurfaced(t *testing.T) {
	svc := NewService(failingStore{err: errors.New("connection refused")}, nil, 20, 100)

	_, err := svc.Search(context.Background(), domain.ProductFilter{Text: "pin"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestProduct_NotFound(t *testing.T) {
	svc := newTestService(testProducts())

	_, err := svc.Product(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)

	p, err := svc.Product(context.Background(), "p5")
	require.NoError(t, err)
	assert.Equal(t, "Alternator", p.Name)
}

type recordingCache struct {
	pages map[string]*domain.SearchPage
	sets  int
}

func (c *recordingCache) key(f domain.ProductFilter) string {
	return f.Text + "|" + string(f.Sort)
}

func (c *recordingCache) GetSearchPage(_ context.Context, f domain.ProductFilter) (*domain.SearchPage, bool) {
	p, ok := c.pages[c.key(f)]
	return p, ok
}

func (c *recordingCache) SetSearchPage(_ context.Context, f domain.ProductFilter, p *domain.SearchPage) {
	c.sets++
	c.pages[c.key(f)] = p
}

func TestSearch_UsesCache(t *testing.T) {
	cache := &recordingCache{pages: map[string]*domain.SearchPage{}}
	store := NewMemoryStore(testCategories(), testProducts())
	svc := NewService(store, cache, 20, 100)

	first, err := svc.Search(context.Background(), domain.ProductFilter{Text: "pin"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Emptying the store proves the second answer comes from the cache.
	store.Replace(nil, nil)

	second, err := svc.Search(context.Background(), domain.ProductFilter{Text: "pin"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
}

func TestCategories_ProductCounts(t *testing.T) {
	svc := newTestService(testProducts())

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)

	counts := map[string]int{}
	for _, c := range cats {
		counts[c.ID] = c.ProductCount
	}
	assert.Equal(t, map[string]int{"c-engine": 2, "c-hyd": 2, "c-elec": 1}, counts)
}

func TestSearch_HugePageIsRejected(t *testing.T) {
	svc := newTestService(testProducts())

	assert.NotPanics(t, func() {
		_, err := svc.Search(context.Background(), domain.ProductFilter{Page: math.MaxInt, Limit: 100})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})
}

func TestMemoryStore_WrappedOffsetReturnsEmptyPage(t *testing.T) {
	store := NewMemoryStore(testCategories(), testProducts())

	var page *domain.ProductPage
	assert.NotPanics(t, func() {
		var err error
		page, err = store.QueryProducts(context.Background(), domain.ProductFilter{Page: math.MaxInt, Limit: 100, Sort: domain.SortRelevance})
		require.NoError(t, err)
	})
	require.NotNil(t, page)
	assert.Equal(t, 5, page.TotalCount)
	assert.Empty(t, page.Items)
}

package suggest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/domain"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMinQueryLength = 2
	DefaultMaxCategories  = 3
	DefaultMaxProducts    = 8
)

type Options struct {
	MinQueryLength int
	MaxCategories  int
	MaxProducts    int
}

func (o Options) withDefaults() Options {
	if o.MinQueryLength < 1 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.MaxCategories < 1 {
		o.MaxCategories = DefaultMaxCategories
	}
	if o.MaxProducts < 1 {
		o.MaxProducts = DefaultMaxProducts
	}
	return o
}

// Composer turns a partial query into category suggestions followed by
// product suggestions.
type Composer struct {
	store catalog.Store
	opts  Options
}

func NewComposer(store catalog.Store, opts Options) *Composer {
	return &Composer{
		store: store,
		opts:  opts.withDefaults(),
	}
}

// Compose never touches the store for queries shorter than the minimum length.
func (c *Composer) Compose(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < c.opts.MinQueryLength {
		return []domain.SearchSuggestion{}, nil
	}

	var (
		categories []domain.Category
		products   []domain.Product
		allCats    []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = c.store.MatchCategories(gctx, query, c.opts.MaxCategories)
		if err != nil {
			return fmt.Errorf("failed to match categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = c.store.MatchProducts(gctx, query, c.opts.MaxProducts)
		if err != nil {
			return fmt.Errorf("failed to match products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		allCats, err = c.store.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categoryNames := make(map[string]string, len(allCats))
	for _, cat := range allCats {
		categoryNames[cat.ID] = cat.Name
	}

	if len(categories) > c.opts.MaxCategories {
		categories = categories[:c.opts.MaxCategories]
	}
	if len(products) > c.opts.MaxProducts {
		products = products[:c.opts.MaxProducts]
	}

	out := make([]domain.SearchSuggestion, 0, len(categories)+len(products))
	for _, cat := range categories {
		out = append(out, domain.CategorySuggestion{CategoryID: cat.ID, Name: cat.Name})
	}
	for _, p := range products {
		out = append(out, domain.ProductSuggestion{
			ProductID:    p.ID,
			Name:         p.Name,
			CategoryName: categoryNames[p.CategoryID],
			InStock:      p.InStock(),
			Price:        p.Price,
		})
	}

	return out, nil
}

// RecentSuggestions renders the recent-query log as suggestions, shown while
// the query box is empty.
func RecentSuggestions(terms []string) []domain.SearchSuggestion {
	out := make([]domain.SearchSuggestion, 0, len(terms))
	for _, term := range terms {
		out = append(out, domain.RecentQuerySuggestion{Text: term})
	}
	return out
}

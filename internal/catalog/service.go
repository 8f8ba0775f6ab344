package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"partshop/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
)

// PageCache stores rendered search pages. Misses and failures are both
// reported as ok == false.
type PageCache interface {
	GetSearchPage(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, bool)
	SetSearchPage(ctx context.Context, filter domain.ProductFilter, page *domain.SearchPage)
}

type Service struct {
	store        Store
	cache        PageCache
	defaultLimit int
	maxLimit     int
}

// NewService builds the catalog index query. cache may be nil.
func NewService(store Store, cache PageCache, defaultLimit, maxLimit int) *Service {
	return &Service{
		store:        store,
		cache:        cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Normalize fills defaults and rejects filters that cannot be applied.
// A zero page or limit means "not given".
func (s *Service) Normalize(filter domain.ProductFilter) (domain.ProductFilter, error) {
	filter.Text = strings.TrimSpace(filter.Text)
	filter.CategoryID = strings.TrimSpace(filter.CategoryID)

	if filter.Sort == "" {
		filter.Sort = domain.SortRelevance
	}
	if !filter.Sort.IsValid() {
		return filter, fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, filter.Sort)
	}

	switch {
	case filter.Page < 0:
		return filter, fmt.Errorf("%w: page must be >= 1", ErrInvalidFilter)
	case filter.Page == 0:
		filter.Page = 1
	}

	switch {
	case filter.Limit < 0:
		return filter, fmt.Errorf("%w: limit must be >= 1", ErrInvalidFilter)
	case filter.Limit == 0:
		filter.Limit = s.defaultLimit
	case filter.Limit > s.maxLimit:
		filter.Limit = s.maxLimit
	}

	if filter.Page-1 > math.MaxInt/filter.Limit {
		return filter, fmt.Errorf("%w: page %d is out of range", ErrInvalidFilter, filter.Page)
	}

	if filter.PriceMin != nil && *filter.PriceMin < 0 {
		return filter, fmt.Errorf("%w: price_min cannot be negative", ErrInvalidFilter)
	}
	if filter.PriceMax != nil && *filter.PriceMax < 0 {
		return filter, fmt.Errorf("%w: price_max cannot be negative", ErrInvalidFilter)
	}
	if filter.PriceMin != nil && filter.PriceMax != nil && *filter.PriceMax < *filter.PriceMin {
		return filter, fmt.Errorf("%w: price_max cannot be less than price_min", ErrInvalidFilter)
	}

	return filter, nil
}

// Search runs a filtered, sorted, paged product query.
func (s *Service) Search(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, error) {
	filter, err := s.Normalize(filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetSearchPage(ctx, filter); ok {
			log.Debugf("Search cache HIT for %+v", filter)
			return cached, nil
		}
	}

	page, err := s.store.QueryProducts(ctx, filter)
	if err != nil {
		return nil, storeError("query products", err)
	}

	items := make([]domain.SearchResult, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, domain.NewSearchResult(p))
	}

	result := &domain.SearchPage{
		TotalCount: page.TotalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Items:      items,
	}

	if s.cache != nil {
		s.cache.SetSearchPage(ctx, filter, result)
	}

	return result, nil
}

func (s *Service) Product(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidFilter)
	}

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storeError("get product", err)
	}
	return product, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, storeError("list categories", err)
	}
	return categories, nil
}

// storeError keeps not-found errors intact and marks everything else as a
// data-access failure.
func storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}

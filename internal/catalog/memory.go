package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"partshop/storefront/internal/domain"
)

type MemoryStore struct {
	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
}

// NewMemoryStore keeps the catalog in process.
func NewMemoryStore(categories []domain.Category, products []domain.Product) *MemoryStore {
	s := &MemoryStore{}
	s.Replace(categories, products)
	return s
}

// Replace swaps the whole catalog and recomputes category product counts.
func (s *MemoryStore) Replace(categories []domain.Category, products []domain.Product) {
	counts := make(map[string]int, len(categories))
	for _, p := range products {
		counts[p.CategoryID]++
	}

	cats := make([]domain.Category, len(categories))
	for i, c := range categories {
		c.ProductCount = counts[c.ID]
		cats[i] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]domain.Product(nil), products...)
	s.categories = cats
}

func (s *MemoryStore) QueryProducts(_ context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	s.mu.RLock()
	matched := make([]domain.Product, 0)
	for _, p := range s.products {
		if filter.Matches(p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	SortProducts(matched, filter.Sort)

	total := len(matched)
	start := filter.Offset()
	if start < 0 || start >= total {
		return &domain.ProductPage{TotalCount: total, Items: []domain.Product{}}, nil
	}

	end := start + filter.Limit
	if end > total {
		end = total
	}

	return &domain.ProductPage{TotalCount: total, Items: matched[start:end]}, nil
}

func (s *MemoryStore) MatchCategories(_ context.Context, term string, limit int) ([]domain.Category, error) {
	term = strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, limit)
	for _, c := range s.categories {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) MatchProducts(_ context.Context, term string, limit int) ([]domain.Product, error) {
	term = strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, limit)
	for _, p := range s.products {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.PartNumber), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) GetProducts(_ context.Context, ids []string) (map[string]domain.Product, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Product, len(ids))
	for _, p := range s.products {
		if _, ok := wanted[p.ID]; ok {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...), nil
}

// SortProducts orders products in place by the sort key, breaking ties on ID.
func SortProducts(products []domain.Product, key domain.SortKey) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch key {
		case domain.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case domain.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case domain.SortNewest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case domain.SortBestSelling:
			if a.ReviewCount != b.ReviewCount {
				return a.ReviewCount > b.ReviewCount
			}
		default:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		return a.ID < b.ID
	})
}

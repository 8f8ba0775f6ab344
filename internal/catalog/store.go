package catalog

import (
	"context"
	"errors"

	"partshop/storefront/internal/domain"
)

var (
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("catalog store unavailable")
)

// Store is the read-only catalog backing the search and cart services.
// Implementations must apply every filter predicate before counting, order
// ties by product ID ascending, and return an empty page past the end.
type Store interface {
	QueryProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error)
	MatchCategories(ctx context.Context, term string, limit int) ([]domain.Category, error)
	MatchProducts(ctx context.Context, term string, limit int) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

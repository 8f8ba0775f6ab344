package session

import (
	"context"

	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/domain"
	"partshop/storefront/internal/suggest"
)

// Backend is what a session needs from the storefront. It is satisfied
// in-process by NewLocalBackend and over HTTP by client.StorefrontClient.
type Backend interface {
	Suggestions(ctx context.Context, query string) ([]domain.SearchSuggestion, error)
	Search(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, error)
}

type localBackend struct {
	catalog  *catalog.Service
	composer *suggest.Composer
}

func NewLocalBackend(catalogService *catalog.Service, composer *suggest.Composer) Backend {
	return &localBackend{
		catalog:  catalogService,
		composer: composer,
	}
}

func (b *localBackend) Suggestions(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	return b.composer.Compose(ctx, query)
}

func (b *localBackend) Search(ctx context.Context, filter domain.ProductFilter) (*domain.SearchPage, error) {
	return b.catalog.Search(ctx, filter)
}

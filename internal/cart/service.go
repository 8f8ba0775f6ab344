package cart

import (
	"context"
	"errors"
	"fmt"

	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/domain"
	"partshop/storefront/internal/promo"

	log "github.com/sirupsen/logrus"
)

// DefaultMaxLineQuantity is used when NewService is given no positive limit.
const DefaultMaxLineQuantity = 999

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("product is not in the cart")
)

// Service manages per-user carts and prices them on every read.
type Service struct {
	store   Store
	catalog catalog.Store
	promos  *promo.Evaluator
	pricing Pricing
	maxQty  int
}

// NewService builds the cart service. maxLineQuantity bounds the quantity a
// single line may hold.
func NewService(store Store, catalogStore catalog.Store, promos *promo.Evaluator, pricing Pricing, maxLineQuantity int) *Service {
	if maxLineQuantity < 1 {
		maxLineQuantity = DefaultMaxLineQuantity
	}
	return &Service{
		store:   store,
		catalog: catalogStore,
		promos:  promos,
		pricing: pricing,
		maxQty:  maxLineQuantity,
	}
}

// Get returns the user's lines together with a freshly computed summary.
// A stored promo code that no longer validates is ignored.
func (s *Service) Get(ctx context.Context, userID string, fastTrack bool) (*domain.Cart, error) {
	lines, err := s.store.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}

	products := map[string]domain.Product{}
	if len(ids) > 0 {
		products, err = s.catalog.GetProducts(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cart products: %w: %w", catalog.ErrStoreUnavailable, err)
		}
	}

	var applied *domain.PromoResult
	code, err := s.store.PromoCode(ctx, userID)
	if err != nil {
		return nil, err
	}
	if code != "" {
		applied, err = s.promos.Evaluate(code)
		if err != nil {
			log.Warnf("⚠️ Ignoring stored promo code %q for user %s: %v", code, userID, err)
			applied = nil
		}
	}

	summary := Summarize(Aggregate(lines, products), applied, s.pricing, fastTrack)
	return &domain.Cart{Lines: lines, Summary: summary}, nil
}

// AddItem increases the quantity of a product, adding the line if needed.
// The resulting line may not exceed the per-line limit.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*domain.CartLine, error) {
	if err := s.checkQuantity(qty); err != nil {
		return nil, err
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	current, _, err := s.store.Quantity(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if current > s.maxQty-qty {
		return nil, s.limitError(productID)
	}

	total, err := s.store.Add(ctx, userID, productID, qty)
	if err != nil {
		return nil, err
	}
	if total > s.maxQty {
		// A concurrent add got in between; undo ours.
		if _, err := s.store.Add(ctx, userID, productID, -qty); err != nil {
			log.Errorf("❌ Failed to roll back cart line %s for user %s: %v", productID, userID, err)
		}
		return nil, s.limitError(productID)
	}
	return &domain.CartLine{ProductID: productID, Quantity: total}, nil
}

// UpdateQuantity replaces the quantity of an existing line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*domain.CartLine, error) {
	if err := s.checkQuantity(qty); err != nil {
		return nil, err
	}

	_, ok, err := s.store.Quantity(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", productID, ErrLineNotFound)
	}

	if err := s.store.Set(ctx, userID, productID, qty); err != nil {
		return nil, err
	}
	return &domain.CartLine{ProductID: productID, Quantity: qty}, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	removed, err := s.store.Remove(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s: %w", productID, ErrLineNotFound)
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

// ApplyPromo validates code and remembers it for the user's cart.
func (s *Service) ApplyPromo(ctx context.Context, userID, code string) (*domain.PromoResult, error) {
	result, err := s.promos.Evaluate(code)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetPromoCode(ctx, userID, result.Code); err != nil {
		return nil, err
	}
	log.Infof("🏷️ Applied promo %s for user %s", result.Code, userID)
	return result, nil
}

func (s *Service) RemovePromo(ctx context.Context, userID string) error {
	return s.store.SetPromoCode(ctx, userID, "")
}

func (s *Service) checkQuantity(qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: must be at least 1", ErrInvalidQuantity)
	}
	if qty > s.maxQty {
		return fmt.Errorf("%w: at most %d per line", ErrInvalidQuantity, s.maxQty)
	}
	return nil
}

func (s *Service) limitError(productID string) error {
	return fmt.Errorf("%w: %s would exceed %d per line", ErrInvalidQuantity, productID, s.maxQty)
}

func (s *Service) ensureProduct(ctx context.Context, productID string) error {
	_, err := s.catalog.GetProduct(ctx, productID)
	if err == nil {
		return nil
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%s: %w", productID, ErrProductNotFound)
	}
	return fmt.Errorf("failed to get product %s: %w: %w", productID, catalog.ErrStoreUnavailable, err)
}

package promo

import (
	"errors"
	"fmt"
	"strings"

	"partshop/storefront/internal/domain"
)

// ReasonInvalidCode is the rejection reason reported for unknown codes.
const ReasonInvalidCode = "invalid_code"

var (
	ErrInvalidCode = errors.New(ReasonInvalidCode)
	ErrEmptyCode   = errors.New("promo code is required")
)

type Terms struct {
	Discount     int64
	DiscountType domain.DiscountType
}

// DefaultRegistry is the fixed set of codes honoured by the storefront.
var DefaultRegistry = map[string]Terms{
	"BULK20":  {Discount: 20, DiscountType: domain.DiscountPercentage},
	"FLAT500": {Discount: 500, DiscountType: domain.DiscountFixed},
	"PARTS10": {Discount: 10, DiscountType: domain.DiscountPercentage},
}

// Evaluator validates codes against a fixed registry. It only reports the
// discount terms; applying them to a cart is the caller's job.
type Evaluator struct {
	registry       map[string]Terms
	currencySymbol string
}

func NewEvaluator(registry map[string]Terms, currencySymbol string) *Evaluator {
	normalized := make(map[string]Terms, len(registry))
	for code, terms := range registry {
		normalized[strings.ToUpper(code)] = terms
	}
	return &Evaluator{
		registry:       normalized,
		currencySymbol: currencySymbol,
	}
}

func (e *Evaluator) Evaluate(code string) (*domain.PromoResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	key := strings.ToUpper(code)
	terms, ok := e.registry[key]
	if !ok {
		return nil, fmt.Errorf("promo code %q: %w", code, ErrInvalidCode)
	}

	return &domain.PromoResult{
		Code:         key,
		Discount:     terms.Discount,
		DiscountType: terms.DiscountType,
		Message:      e.message(terms),
	}, nil
}

func (e *Evaluator) message(terms Terms) string {
	if terms.DiscountType == domain.DiscountPercentage {
		return fmt.Sprintf("%d%% discount applied", terms.Discount)
	}
	return fmt.Sprintf("%s%d discount applied", e.currencySymbol, terms.Discount)
}

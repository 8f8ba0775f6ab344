package cart

import (
	"fmt"
	"math"

	"partshop/storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type Pricing struct {
	TaxRate               decimal.Decimal
	DeliveryFee           int64
	FreeDeliveryThreshold int64 // 0 disables free delivery
	FastTrackFee          int64
}

func NewPricing(taxRate string, deliveryFee, freeDeliveryThreshold, fastTrackFee int64) (Pricing, error) {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return Pricing{}, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	if rate.IsNegative() {
		return Pricing{}, fmt.Errorf("tax rate cannot be negative: %s", taxRate)
	}
	return Pricing{
		TaxRate:               rate,
		DeliveryFee:           deliveryFee,
		FreeDeliveryThreshold: freeDeliveryThreshold,
		FastTrackFee:          fastTrackFee,
	}, nil
}

// Summarize prices a cart. The order is fixed: the promo discount comes off
// the subtotal, tax is charged on what remains, delivery is added last and is
// never discounted.
func Summarize(totals domain.CartTotals, promo *domain.PromoResult, pricing Pricing, fastTrack bool) domain.CartSummary {
	summary := domain.CartSummary{CartTotals: totals, Promo: promo}

	summary.Discount = Discount(totals.Subtotal, promo)
	taxable := totals.Subtotal - summary.Discount

	tax := decimal.NewFromInt(taxable).Mul(pricing.TaxRate).Round(0)
	if tax.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		summary.EstimatedTax = math.MaxInt64
	} else {
		summary.EstimatedTax = tax.IntPart()
	}

	if totals.TotalItems > 0 {
		free := pricing.FreeDeliveryThreshold > 0 && taxable >= pricing.FreeDeliveryThreshold
		if !free {
			summary.DeliveryFee = pricing.DeliveryFee
		}
		if fastTrack && totals.FastTrackAvailable {
			summary.DeliveryFee += pricing.FastTrackFee
		}
	}

	summary.EstimatedTotal = saturatingAdd(saturatingAdd(taxable, summary.EstimatedTax), summary.DeliveryFee)
	return summary
}

// Discount is the amount a promo takes off the subtotal, never more than the
// subtotal itself.
func Discount(subtotal int64, promo *domain.PromoResult) int64 {
	if promo == nil || subtotal <= 0 {
		return 0
	}

	var amount int64
	switch promo.DiscountType {
	case domain.DiscountPercentage:
		amount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(promo.Discount)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case domain.DiscountFixed:
		amount = promo.Discount
	}

	if amount < 0 {
		return 0
	}
	if amount > subtotal {
		return subtotal
	}
	return amount
}

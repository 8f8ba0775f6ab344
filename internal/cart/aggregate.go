package cart

import (
	"math"

	"partshop/storefront/internal/domain"
)

// Aggregate folds cart lines into item count, subtotal and fast-track
// availability. Lines whose product is unknown still count toward the item
// total but add nothing to the subtotal. Lines with a non-positive quantity
// are skipped, and sums saturate at the largest representable value instead
// of wrapping.
func Aggregate(lines []domain.CartLine, products map[string]domain.Product) domain.CartTotals {
	var totals domain.CartTotals
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		if totals.TotalItems > math.MaxInt-line.Quantity {
			totals.TotalItems = math.MaxInt
		} else {
			totals.TotalItems += line.Quantity
		}

		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		totals.Subtotal = saturatingAdd(totals.Subtotal, saturatingMul(product.Price, int64(line.Quantity)))
		if product.IsFastTrack {
			totals.FastTrackAvailable = true
		}
	}
	return totals
}

// saturatingMul and saturatingAdd work on non-negative operands.
func saturatingMul(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

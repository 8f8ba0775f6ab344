package domain

type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"` // Always >= 1
}

// CartTotals is the aggregator output before tax, delivery and promotions.
type CartTotals struct {
	TotalItems         int   `json:"total_items"`
	Subtotal           int64 `json:"subtotal"`
	FastTrackAvailable bool  `json:"fast_track_available"`
}

type CartSummary struct {
	CartTotals
	Discount       int64        `json:"discount"`
	EstimatedTax   int64        `json:"estimated_tax"`
	DeliveryFee    int64        `json:"delivery_fee"`
	EstimatedTotal int64        `json:"estimated_total"`
	Promo          *PromoResult `json:"promo,omitempty"`
}

// Cart is a user's lines together with their computed summary.
type Cart struct {
	Lines   []CartLine  `json:"lines"`
	Summary CartSummary `json:"summary"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromoResult struct {
	Code         string       `json:"code"`
	Discount     int64        `json:"discount"`
	DiscountType DiscountType `json:"discount_type"`
	Message      string       `json:"message"`
}

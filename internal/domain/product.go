package domain

import "time"

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PartNumber    string    `json:"part_number"`           // Free-text searchable secondary key, e.g. "101026200400"
	Description   string    `json:"description,omitempty"`
	CategoryID    string    `json:"category_id"`
	Price         int64     `json:"price"`                    // Selling price in the smallest currency unit
	OriginalPrice *int64    `json:"original_price,omitempty"` // List price before discount
	StockQuantity int       `json:"stock_quantity"`
	DeliveryTime  string    `json:"delivery_time,omitempty"` // e.g. "2-3 days"
	IsPopular     bool      `json:"is_popular"`
	IsFastTrack   bool      `json:"is_fast_track"`
	ImageURL      string    `json:"image_url,omitempty"`
	Rating        float64   `json:"rating"`       // Average review rating
	ReviewCount   int       `json:"review_count"` // Used as the best-selling proxy
	CreatedAt     time.Time `json:"created_at"`
}

// InStock is derived from the stock quantity, never stored.
func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	ProductCount int    `json:"product_count"`
}

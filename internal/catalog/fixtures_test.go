package catalog

import (
	"fmt"
	"time"

	"partshop/storefront/internal/domain"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func testCategories() []domain.Category {
	return []domain.Category{
		{ID: "c-engine", Name: "Engine Parts", Icon: "⚙"},
		{ID: "c-hyd", Name: "Hydraulics", Icon: "💧"},
		{ID: "c-elec", Name: "Electrical", Icon: "⚡"},
	}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Pin", PartNumber: "101026200400", CategoryID: "c-engine", Price: 735, OriginalPrice: int64Ptr(900), StockQuantity: 12, Rating: 4.5, ReviewCount: 40, IsPopular: true, CreatedAt: baseTime},
		{ID: "p2", Name: "Gear", PartNumber: "GR-2210", CategoryID: "c-engine", Price: 4200, StockQuantity: 0, Rating: 4.8, ReviewCount: 12, CreatedAt: baseTime.Add(time.Hour)},
		{ID: "p3", Name: "Hydraulic Pump", PartNumber: "HP-77", Description: "Gear pump with steel pin", CategoryID: "c-hyd", Price: 18000, StockQuantity: 3, Rating: 4.1, ReviewCount: 88, IsFastTrack: true, CreatedAt: baseTime.Add(2 * time.Hour)},
		{ID: "p4", Name: "Seal Kit", PartNumber: "SK-PIN-1", CategoryID: "c-hyd", Price: 735, StockQuantity: 30, Rating: 4.5, ReviewCount: 40, CreatedAt: baseTime.Add(3 * time.Hour)},
		{ID: "p5", Name: "Alternator", PartNumber: "ALT-5", CategoryID: "c-elec", Price: 20521, StockQuantity: 1, Rating: 3.9, ReviewCount: 5, IsFastTrack: true, CreatedAt: baseTime.Add(4 * time.Hour)},
	}
}

// bulkProducts returns n products that all match "bolt".
func bulkProducts(n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Product{
			ID:            fmt.Sprintf("b%03d", i),
			Name:          fmt.Sprintf("Bolt M%d", i),
			PartNumber:    fmt.Sprintf("BLT-%03d", i),
			CategoryID:    "c-engine",
			Price:         int64(100 + i),
			StockQuantity: i % 3,
			CreatedAt:     baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

package domain

import "github.com/shopspring/decimal"

type AnalyticsSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	TotalCustomers    int             `json:"total_customers"`
	TotalProducts     int             `json:"total_products"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ConversionRate    float64         `json:"conversion_rate"`
	Period            string          `json:"period"`
}

type TopProduct struct {
	Product        Product         `json:"product"`
	Revenue        decimal.Decimal `json:"revenue"`
	Orders         int             `json:"orders"`
	ConversionRate float64         `json:"conversion_rate"`
}

type TopCategory struct {
	Category Category        `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
	Products int             `json:"products"`
}

type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// TrackingEvent is a best-effort telemetry record.
type TrackingEvent struct {
	Type string         `json:"event_type"`
	Data map[string]any `json:"data,omitempty"`
}

const (
	EventPageView = "page_view"
	EventSearch   = "search"
)

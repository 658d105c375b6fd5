package domain

import "time"

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

type StockLevel struct {
	VariantID    int64       `json:"variant_id"`
	SKU          string      `json:"sku"`
	ProductName  string      `json:"product_name"`
	CurrentStock int         `json:"current_stock"`
	Threshold    int         `json:"threshold"`
	Status       StockStatus `json:"status"`
	LastMovement *time.Time  `json:"last_movement"`
}

type LowStockAlert struct {
	ID      int64 `json:"id"`
	Variant struct {
		SKU     string `json:"sku"`
		Product struct {
			Name string `json:"name"`
		} `json:"product"`
	} `json:"variant"`
	Threshold    int       `json:"threshold"`
	CurrentStock int       `json:"current_stock"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

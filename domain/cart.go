package domain

import "github.com/shopspring/decimal"

type ProductImage struct {
	Image   string `json:"image"`
	AltText string `json:"alt_text"`
}

type VariantProduct struct {
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	PrimaryImage *ProductImage `json:"primary_image,omitempty"`
}

// Variant is a purchasable SKU of a product.
type Variant struct {
	ID      int64           `json:"id"`
	SKU     string          `json:"sku"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Product VariantProduct  `json:"product"`
}

type CartItem struct {
	ID        int64           `json:"id"`
	Variant   Variant         `json:"variant"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Totals are computed by the commerce API and must never be recomputed locally.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type Cart struct {
	ID     int64      `json:"id"`
	Items  []CartItem `json:"items"`
	Totals Totals     `json:"totals"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line with the given id, or nil.
func (c *Cart) Item(itemID int64) *CartItem {
	if c == nil {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

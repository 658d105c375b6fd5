package domain

import "github.com/shopspring/decimal"

// AddressSnapshot is the flattened billing_* / shipping_* representation used
// by both drafts and orders.
type AddressSnapshot struct {
	BillingFirstName  *string `json:"billing_first_name"`
	BillingLastName   *string `json:"billing_last_name"`
	BillingCompany    *string `json:"billing_company"`
	BillingAddress1   *string `json:"billing_address_1"`
	BillingAddress2   *string `json:"billing_address_2"`
	BillingCity       *string `json:"billing_city"`
	BillingState      *string `json:"billing_state"`
	BillingPostalCode *string `json:"billing_postal_code"`
	BillingCountry    *string `json:"billing_country"`
	BillingPhone      *string `json:"billing_phone"`

	ShippingFirstName  *string `json:"shipping_first_name"`
	ShippingLastName   *string `json:"shipping_last_name"`
	ShippingCompany    *string `json:"shipping_company"`
	ShippingAddress1   *string `json:"shipping_address_1"`
	ShippingAddress2   *string `json:"shipping_address_2"`
	ShippingCity       *string `json:"shipping_city"`
	ShippingState      *string `json:"shipping_state"`
	ShippingPostalCode *string `json:"shipping_postal_code"`
	ShippingCountry    *string `json:"shipping_country"`
	ShippingPhone      *string `json:"shipping_phone"`
}

func (s AddressSnapshot) Billing() Address {
	return Address{
		FirstName:  s.BillingFirstName,
		LastName:   s.BillingLastName,
		Company:    s.BillingCompany,
		Address1:   s.BillingAddress1,
		Address2:   s.BillingAddress2,
		City:       s.BillingCity,
		State:      s.BillingState,
		PostalCode: s.BillingPostalCode,
		Country:    s.BillingCountry,
		Phone:      s.BillingPhone,
	}.Clone()
}

func (s AddressSnapshot) Shipping() Address {
	return Address{
		FirstName:  s.ShippingFirstName,
		LastName:   s.ShippingLastName,
		Company:    s.ShippingCompany,
		Address1:   s.ShippingAddress1,
		Address2:   s.ShippingAddress2,
		City:       s.ShippingCity,
		State:      s.ShippingState,
		PostalCode: s.ShippingPostalCode,
		Country:    s.ShippingCountry,
		Phone:      s.ShippingPhone,
	}.Clone()
}

// OrderDraft is the server-held pre-order record.
type OrderDraft struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	AddressSnapshot

	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingAmount decimal.Decimal `json:"shipping_amount"`
	Total          decimal.Decimal `json:"total"`
}

// FinalizeResult is returned when a draft is converted into an order.
type FinalizeResult struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

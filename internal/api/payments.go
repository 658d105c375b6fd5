package api

import (
	"context"

	"github.com/fjod/go_cart/storefront/domain"
)

type createIntentRequest struct {
	OrderID int64 `json:"order_id"`
}

type confirmIntentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// POST /payments/intent/create/
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID int64) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	if err := c.post(ctx, "/payments/intent/create/", createIntentRequest{OrderID: orderID}, &intent); err != nil {
		return nil, err
	}
	intent.OrderID = orderID
	return &intent, nil
}

// POST /payments/intent/confirm/
// A non-succeeded status is a normal result, not an error.
func (c *Client) ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.ConfirmResult, error) {
	var res domain.ConfirmResult
	if err := c.post(ctx, "/payments/intent/confirm/", confirmIntentRequest{PaymentIntentID: paymentIntentID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

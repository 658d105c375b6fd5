package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/domain"
)

type addCartItemRequest struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GET /cart/
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.get(ctx, "/cart/", &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// POST /cart/items/
func (c *Client) AddCartItem(ctx context.Context, variantID int64, quantity int) error {
	return c.post(ctx, "/cart/items/", addCartItemRequest{VariantID: variantID, Quantity: quantity}, nil)
}

// PATCH /cart/items/{id}/
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	return c.patch(ctx, fmt.Sprintf("/cart/items/%d/", itemID), updateCartItemRequest{Quantity: quantity}, nil)
}

// DELETE /cart/items/{id}/delete/
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	return c.delete(ctx, fmt.Sprintf("/cart/items/%d/delete/", itemID))
}

// POST /cart/clear/
func (c *Client) ClearCart(ctx context.Context) error {
	return c.post(ctx, "/cart/clear/", nil, nil)
}

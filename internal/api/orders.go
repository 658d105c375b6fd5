package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/domain"
)

type finalizeRequest struct {
	DraftID int64 `json:"draft_id"`
}

// GetDraft returns nil without error when the API has no draft (404).
func (c *Client) GetDraft(ctx context.Context) (*domain.OrderDraft, error) {
	var draft domain.OrderDraft
	err := c.get(ctx, "/orders/draft/", &draft)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// POST /orders/draft/create/
func (c *Client) CreateDraft(ctx context.Context) (*domain.OrderDraft, error) {
	var draft domain.OrderDraft
	if err := c.post(ctx, "/orders/draft/create/", nil, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// PatchDraft sends a partial update. Fields absent from the map are untouched server-side.
func (c *Client) PatchDraft(ctx context.Context, draftID int64, fields map[string]string) (*domain.OrderDraft, error) {
	var draft domain.OrderDraft
	if err := c.patch(ctx, fmt.Sprintf("/orders/draft/%d/", draftID), fields, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// POST /orders/finalize/
func (c *Client) FinalizeDraft(ctx context.Context, draftID int64) (*domain.FinalizeResult, error) {
	var res domain.FinalizeResult
	if err := c.post(ctx, "/orders/finalize/", finalizeRequest{DraftID: draftID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GET /orders/
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	raw, err := c.getList(ctx, "/orders/")
	if err != nil {
		return nil, err
	}
	orders, err := decodeList[domain.Order](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s /orders/ response: %w", http.MethodGet, err)
	}
	return orders, nil
}

// GET /orders/{id}/
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order domain.Order
	if err := c.get(ctx, fmt.Sprintf("/orders/%d/", orderID), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/domain"
)

// GET /inventory/levels/
func (c *Client) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	raw, err := c.getList(ctx, "/inventory/levels/")
	if err != nil {
		return nil, err
	}
	levels, err := decodeList[domain.StockLevel](raw)
	if err != nil {
		return nil, fmt.Errorf("decode stock levels: %w", err)
	}
	return levels, nil
}

// GET /inventory/alerts/
func (c *Client) LowStockAlerts(ctx context.Context) ([]domain.LowStockAlert, error) {
	raw, err := c.getList(ctx, "/inventory/alerts/")
	if err != nil {
		return nil, err
	}
	alerts, err := decodeList[domain.LowStockAlert](raw)
	if err != nil {
		return nil, fmt.Errorf("decode low stock alerts: %w", err)
	}
	return alerts, nil
}

// POST /inventory/alerts/{id}/acknowledge/
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID int64) error {
	return c.post(ctx, fmt.Sprintf("/inventory/alerts/%d/acknowledge/", alertID), nil, nil)
}

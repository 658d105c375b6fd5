package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/domain"
)

// GET /analytics/summary/?days=
func (c *Client) AnalyticsSummary(ctx context.Context, days int) (*domain.AnalyticsSummary, error) {
	var s domain.AnalyticsSummary
	if err := c.get(ctx, fmt.Sprintf("/analytics/summary/?days=%d", days), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GET /analytics/top-products/?days=&limit=
func (c *Client) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	raw, err := c.getList(ctx, fmt.Sprintf("/analytics/top-products/?days=%d&limit=%d", days, limit))
	if err != nil {
		return nil, err
	}
	return decodeList[domain.TopProduct](raw)
}

// GET /analytics/top-categories/?days=&limit=
func (c *Client) TopCategories(ctx context.Context, days, limit int) ([]domain.TopCategory, error) {
	raw, err := c.getList(ctx, fmt.Sprintf("/analytics/top-categories/?days=%d&limit=%d", days, limit))
	if err != nil {
		return nil, err
	}
	return decodeList[domain.TopCategory](raw)
}

// GET /analytics/revenue-trend/?days=
func (c *Client) RevenueTrend(ctx context.Context, days int) ([]domain.RevenuePoint, error) {
	raw, err := c.getList(ctx, fmt.Sprintf("/analytics/revenue-trend/?days=%d", days))
	if err != nil {
		return nil, err
	}
	return decodeList[domain.RevenuePoint](raw)
}

func (c *Client) TrackPageView(ctx context.Context, pageURL string) error {
	return c.track(ctx, "/analytics/track/page-view/", map[string]any{"url": pageURL})
}

func (c *Client) TrackSearch(ctx context.Context, query string, resultsCount int) error {
	return c.track(ctx, "/analytics/track/search/", map[string]any{
		"query":         query,
		"results_count": resultsCount,
	})
}

// TrackConversion flattens data next to event_type, as the API expects.
func (c *Client) TrackConversion(ctx context.Context, eventType string, data map[string]any) error {
	body := make(map[string]any, len(data)+1)
	for k, v := range data {
		body[k] = v
	}
	body["event_type"] = eventType
	return c.track(ctx, "/analytics/track/conversion/", body)
}

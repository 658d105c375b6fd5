package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/domain"
)

func productQuery(f domain.ProductFilter) string {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinPrice != "" {
		q.Set("min_price", f.MinPrice)
	}
	if f.MaxPrice != "" {
		q.Set("max_price", f.MaxPrice)
	}
	if f.IsFeatured {
		q.Set("is_featured", "true")
	}
	if f.InStock {
		q.Set("in_stock", "true")
	}
	if f.Ordering != "" {
		q.Set("ordering", f.Ordering)
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q.Encode()
}

// GET /products/?...
func (c *Client) ListProducts(ctx context.Context, f domain.ProductFilter) (*domain.ProductPage, error) {
	path := "/products/"
	if qs := productQuery(f); qs != "" {
		path += "?" + qs
	}
	var page domain.ProductPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []domain.Product{}
	}
	return &page, nil
}

// GET /products/{slug}/
func (c *Client) GetProduct(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%s/", url.PathEscape(slug)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GET /categories/
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	raw, err := c.getList(ctx, "/categories/")
	if err != nil {
		return nil, err
	}
	cats, err := decodeList[domain.Category](raw)
	if err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return cats, nil
}

package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/domain"
)

func (c *Client) ListTickets(ctx context.Context) ([]domain.SupportTicket, error) {
	raw, err := c.getList(ctx, "/support/tickets/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.SupportTicket](raw)
}

func (c *Client) CreateTicket(ctx context.Context, in domain.TicketInput) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := c.post(ctx, "/support/tickets/", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTicket(ctx context.Context, ticketID int64, in domain.TicketInput) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := c.patch(ctx, fmt.Sprintf("/support/tickets/%d/", ticketID), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) AddTicketMessage(ctx context.Context, ticketID int64, message string) (*domain.TicketMessage, error) {
	var m domain.TicketMessage
	body := map[string]string{"message": message}
	if err := c.post(ctx, fmt.Sprintf("/support/tickets/%d/messages/", ticketID), body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) ListFAQs(ctx context.Context) ([]domain.FAQ, error) {
	raw, err := c.getList(ctx, "/support/faq/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.FAQ](raw)
}

// ListReviews lists all reviews, or a product's reviews when productID > 0.
func (c *Client) ListReviews(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	path := "/support/reviews/"
	if productID > 0 {
		path = fmt.Sprintf("/support/reviews/product/%d/", productID)
	}
	raw, err := c.getList(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.ProductReview](raw)
}

func (c *Client) CreateReview(ctx context.Context, in domain.ReviewInput) (*domain.ProductReview, error) {
	var r domain.ProductReview
	if err := c.post(ctx, "/support/reviews/", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) VoteReview(ctx context.Context, reviewID int64, helpful bool) error {
	body := map[string]bool{"is_helpful": helpful}
	return c.post(ctx, fmt.Sprintf("/support/reviews/%d/vote/", reviewID), body, nil)
}

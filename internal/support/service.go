package support

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/storefront/domain"
)

type API interface {
	ListTickets(ctx context.Context) ([]domain.SupportTicket, error)
	CreateTicket(ctx context.Context, in domain.TicketInput) (*domain.SupportTicket, error)
	UpdateTicket(ctx context.Context, ticketID int64, in domain.TicketInput) (*domain.SupportTicket, error)
	AddTicketMessage(ctx context.Context, ticketID int64, message string) (*domain.TicketMessage, error)
	ListFAQs(ctx context.Context) ([]domain.FAQ, error)
	ListReviews(ctx context.Context, productID int64) ([]domain.ProductReview, error)
	CreateReview(ctx context.Context, in domain.ReviewInput) (*domain.ProductReview, error)
	VoteReview(ctx context.Context, reviewID int64, helpful bool) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (s *Service) Tickets(ctx context.Context) ([]domain.SupportTicket, error) {
	return s.api.ListTickets(ctx)
}

// OpenTicket requires a subject and a description.
func (s *Service) OpenTicket(ctx context.Context, in domain.TicketInput) (*domain.SupportTicket, error) {
	var missing []string
	if blank(in.Subject) {
		missing = append(missing, "subject")
	}
	if blank(in.Description) {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}
	return s.api.CreateTicket(ctx, in)
}

func (s *Service) UpdateTicket(ctx context.Context, ticketID int64, in domain.TicketInput) (*domain.SupportTicket, error) {
	return s.api.UpdateTicket(ctx, ticketID, in)
}

func (s *Service) Reply(ctx context.Context, ticketID int64, message string) (*domain.TicketMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &domain.ValidationError{Fields: []string{"message"}}
	}
	return s.api.AddTicketMessage(ctx, ticketID, message)
}

func (s *Service) FAQs(ctx context.Context) ([]domain.FAQ, error) {
	return s.api.ListFAQs(ctx)
}

// Reviews lists a product's reviews; productID 0 lists all of them.
func (s *Service) Reviews(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	return s.api.ListReviews(ctx, productID)
}

func (s *Service) WriteReview(ctx context.Context, in domain.ReviewInput) (*domain.ProductReview, error) {
	var missing []string
	if in.Product <= 0 {
		missing = append(missing, "product")
	}
	if in.Rating < 1 || in.Rating > 5 {
		missing = append(missing, "rating")
	}
	if strings.TrimSpace(in.Review) == "" {
		missing = append(missing, "review")
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}
	return s.api.CreateReview(ctx, in)
}

func (s *Service) Vote(ctx context.Context, reviewID int64, helpful bool) error {
	return s.api.VoteReview(ctx, reviewID, helpful)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

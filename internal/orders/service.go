package orders

import (
	"context"

	"github.com/fjod/go_cart/storefront/domain"
)

type API interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
}

// Service is the read-only order history of the signed-in customer.
type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.api.ListOrders(ctx)
}

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.api.GetOrder(ctx, orderID)
}

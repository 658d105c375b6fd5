package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidFilter = errors.New("invalid product filter")

type API interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) (*domain.ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Orderings accepted by the product listing.
var Orderings = []string{"name", "-name", "price", "-price", "created_at", "-created_at"}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// Products lists a page of products. Price bounds must be decimals and
// min must not exceed max.
func (s *Service) Products(ctx context.Context, f domain.ProductFilter) (*domain.ProductPage, error) {
	if err := validate(f); err != nil {
		return nil, err
	}
	return s.api.ListProducts(ctx, f)
}

func (s *Service) Product(ctx context.Context, slug string) (*domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrInvalidFilter
	}
	return s.api.GetProduct(ctx, slug)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.api.ListCategories(ctx)
}

func validate(f domain.ProductFilter) error {
	var lo, hi *decimal.Decimal
	for _, b := range []struct {
		raw string
		dst **decimal.Decimal
	}{{f.MinPrice, &lo}, {f.MaxPrice, &hi}} {
		if b.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(b.raw)
		if err != nil || d.IsNegative() {
			return ErrInvalidFilter
		}
		*b.dst = &d
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return ErrInvalidFilter
	}
	if f.Ordering != "" && !slices.Contains(Orderings, f.Ordering) {
		return ErrInvalidFilter
	}
	if f.Page < 0 {
		return ErrInvalidFilter
	}
	return nil
}

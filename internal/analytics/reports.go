package analytics

import (
	"context"

	"github.com/fjod/go_cart/storefront/domain"
)

const (
	DefaultDays  = 30
	DefaultLimit = 10
)

type ReportAPI interface {
	AnalyticsSummary(ctx context.Context, days int) (*domain.AnalyticsSummary, error)
	TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error)
	TopCategories(ctx context.Context, days, limit int) ([]domain.TopCategory, error)
	RevenueTrend(ctx context.Context, days int) ([]domain.RevenuePoint, error)
}

// Reports serves the admin analytics views. Non-positive days and limits
// fall back to the defaults.
type Reports struct {
	api ReportAPI
}

func NewReports(api ReportAPI) *Reports {
	return &Reports{api: api}
}

func (r *Reports) Summary(ctx context.Context, days int) (*domain.AnalyticsSummary, error) {
	return r.api.AnalyticsSummary(ctx, orDefault(days, DefaultDays))
}

func (r *Reports) TopProducts(ctx context.Context, days, limit int) ([]domain.TopProduct, error) {
	return r.api.TopProducts(ctx, orDefault(days, DefaultDays), orDefault(limit, DefaultLimit))
}

func (r *Reports) TopCategories(ctx context.Context, days, limit int) ([]domain.TopCategory, error) {
	return r.api.TopCategories(ctx, orDefault(days, DefaultDays), orDefault(limit, DefaultLimit))
}

func (r *Reports) RevenueTrend(ctx context.Context, days int) ([]domain.RevenuePoint, error) {
	return r.api.RevenueTrend(ctx, orDefault(days, DefaultDays))
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

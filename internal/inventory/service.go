package inventory

import (
	"context"

	"github.com/fjod/go_cart/storefront/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type API interface {
	StockLevels(ctx context.Context) ([]domain.StockLevel, error)
	LowStockAlerts(ctx context.Context) ([]domain.LowStockAlert, error)
	AcknowledgeAlert(ctx context.Context, alertID int64) error
}

// Summary counts stock levels per status.
type Summary struct {
	Total      int `json:"total"`
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// Dashboard is the admin inventory view.
type Dashboard struct {
	Summary Summary                `json:"summary"`
	Levels  []domain.StockLevel    `json:"levels"`
	Alerts  []domain.LowStockAlert `json:"alerts"`
}

type Service struct {
	api API
	log *zap.Logger
}

func NewService(api API, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{api: api, log: log}
}

func (s *Service) Levels(ctx context.Context) ([]domain.StockLevel, error) {
	return s.api.StockLevels(ctx)
}

func (s *Service) Alerts(ctx context.Context) ([]domain.LowStockAlert, error) {
	return s.api.LowStockAlerts(ctx)
}

func (s *Service) Acknowledge(ctx context.Context, alertID int64) error {
	if err := s.api.AcknowledgeAlert(ctx, alertID); err != nil {
		return err
	}
	s.log.Info("low stock alert acknowledged", zap.Int64("alert_id", alertID))
	return nil
}

// Dashboard loads levels and alerts in parallel. The first failure
// cancels the other request.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		levels []domain.StockLevel
		alerts []domain.LowStockAlert
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		levels, err = s.api.StockLevels(gctx)
		return err
	})
	g.Go(func() (err error) {
		alerts, err = s.api.LowStockAlerts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Dashboard{Summary: Summarize(levels), Levels: levels, Alerts: alerts}, nil
}

func Summarize(levels []domain.StockLevel) Summary {
	sum := Summary{Total: len(levels)}
	for _, l := range levels {
		switch l.Status {
		case domain.StockInStock:
			sum.InStock++
		case domain.StockLowStock:
			sum.LowStock++
		case domain.StockOutOfStock:
			sum.OutOfStock++
		}
	}
	return sum
}

package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/domain"
	"go.uber.org/zap"
)

var ErrNoIntent = errors.New("no payment intent for this checkout")

type API interface {
	CreatePaymentIntent(ctx context.Context, orderID int64) (*domain.PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.ConfirmResult, error)
}

// Coordinator holds the payment intent of one checkout. The client secret
// lives in memory only and is dropped on Discard.
type Coordinator struct {
	api API
	log *zap.Logger

	mu      sync.Mutex
	current *domain.PaymentIntent
}

func NewCoordinator(api API, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{api: api, log: log}
}

// CreateIntent always asks the processor for a fresh intent. Any intent held
// before is dropped, even if creation fails.
func (c *Coordinator) CreateIntent(ctx context.Context, orderID int64) (*domain.PaymentIntent, error) {
	c.Discard()

	intent, err := c.api.CreatePaymentIntent(ctx, orderID)
	if err != nil {
		c.log.Error("create payment intent failed", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.current = intent
	c.mu.Unlock()

	c.log.Info("payment intent created",
		zap.Int64("order_id", orderID),
		zap.String("payment_intent_id", intent.PaymentIntentID))
	cp := *intent
	return &cp, nil
}

// ConfirmIntent returns the processor's status as a value. Only an API or
// transport failure is an error.
func (c *Coordinator) ConfirmIntent(ctx context.Context, paymentIntentID string) (*domain.ConfirmResult, error) {
	if paymentIntentID == "" {
		return nil, ErrNoIntent
	}

	res, err := c.api.ConfirmPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		c.log.Error("confirm payment intent failed", zap.String("payment_intent_id", paymentIntentID), zap.Error(err))
		return nil, err
	}

	if res.Succeeded() {
		c.mu.Lock()
		if c.current != nil && c.current.PaymentIntentID == paymentIntentID {
			c.current = nil
		}
		c.mu.Unlock()
	} else {
		c.log.Warn("payment not completed",
			zap.String("payment_intent_id", paymentIntentID),
			zap.String("status", res.Status.String()))
	}
	return res, nil
}

// ConfirmCurrent confirms the held intent.
func (c *Coordinator) ConfirmCurrent(ctx context.Context) (*domain.ConfirmResult, error) {
	intent := c.Current()
	if intent == nil {
		return nil, ErrNoIntent
	}
	return c.ConfirmIntent(ctx, intent.PaymentIntentID)
}

// Current returns a copy of the held intent, or nil.
func (c *Coordinator) Current() *domain.PaymentIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

func (c *Coordinator) Discard() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

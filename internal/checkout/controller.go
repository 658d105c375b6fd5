package checkout

import (
	"sync"

	"github.com/fjod/go_cart/storefront/domain"
)

type StepObserver func(from, to domain.CheckoutStep)

// Controller is the checkout step machine. Forward moves happen only after
// the operation that guards them succeeded; back moves are unconditional.
type Controller struct {
	mu        sync.Mutex
	step      domain.CheckoutStep
	observers []StepObserver
}

func NewController() *Controller {
	return &Controller{step: domain.StepBilling}
}

func (c *Controller) Step() domain.CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// OnStepChange registers fn for every transition.
func (c *Controller) OnStepChange(fn StepObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Advance moves from the given step to the next one. It fails with
// ErrWrongStep when the controller is elsewhere.
func (c *Controller) Advance(from domain.CheckoutStep) error {
	if from.IsTerminal() {
		return ErrWrongStep
	}
	return c.move(func(cur domain.CheckoutStep) (domain.CheckoutStep, error) {
		if cur != from {
			return cur, ErrWrongStep
		}
		return cur.Next(), nil
	})
}

// Back goes one step back. At Billing it does nothing.
func (c *Controller) Back() domain.CheckoutStep {
	_ = c.move(func(cur domain.CheckoutStep) (domain.CheckoutStep, error) {
		return cur.Prev(), nil
	})
	return c.Step()
}

// Reset returns to Billing.
func (c *Controller) Reset() {
	_ = c.move(func(domain.CheckoutStep) (domain.CheckoutStep, error) {
		return domain.StepBilling, nil
	})
}

func (c *Controller) move(next func(domain.CheckoutStep) (domain.CheckoutStep, error)) error {
	c.mu.Lock()
	from := c.step
	to, err := next(from)
	if err != nil || to == from {
		c.mu.Unlock()
		return err
	}
	c.step = to
	observers := append([]StepObserver(nil), c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(from, to)
	}
	return nil
}

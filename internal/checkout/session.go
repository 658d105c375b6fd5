package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FlatShipping is added to the cart total on the review step for display.
// The server computes the amount actually charged.
var FlatShipping = decimal.NewFromInt(10)

type CartReader interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	Invalidate(ctx context.Context) error
}

// UserSource reports the signed-in user, or nil.
type UserSource interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type PaymentOutcome struct {
	OrderID     int64                `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	Status      domain.PaymentStatus `json:"status"`
}

// State is a point-in-time copy of the checkout.
type State struct {
	Step        domain.CheckoutStep `json:"step"`
	StepName    string              `json:"step_name"`
	Billing     domain.Address      `json:"billing"`
	Shipping    domain.Address      `json:"shipping"`
	SameAddress bool                `json:"same_address"`
	OrderID     int64               `json:"order_id,omitempty"`
	OrderNumber string              `json:"order_number,omitempty"`
	// ClientSecret of the current payment intent, for the payment widget.
	ClientSecret string `json:"client_secret,omitempty"`
}

type Review struct {
	Items     []domain.CartItem `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	TaxAmount decimal.Decimal   `json:"tax_amount"`
	Shipping  decimal.Decimal   `json:"shipping"`
	Total     decimal.Decimal   `json:"total"`
}

// Session is the checkout of one browser session, from Begin to End.
// Operations run one at a time; Snapshot never waits for the network.
type Session struct {
	drafts   *DraftStore
	cart     CartReader
	payments *payment.Coordinator
	users    UserSource
	ctrl     *Controller
	log      *zap.Logger

	op sync.Mutex

	mu          sync.RWMutex
	active      bool
	billing     domain.Address
	shipping    domain.Address
	sameAddress bool
	// draftID is the draft this checkout edits. It outlives the cached copy.
	draftID int64
	order   *domain.FinalizeResult
}

func NewSession(drafts *DraftStore, cart CartReader, payments *payment.Coordinator, users UserSource, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		drafts:      drafts,
		cart:        cart,
		payments:    payments,
		users:       users,
		ctrl:        NewController(),
		log:         log,
		sameAddress: true,
	}
	s.ctrl.OnStepChange(func(from, to domain.CheckoutStep) {
		s.log.Debug("checkout step changed", zap.Stringer("from", from), zap.Stringer("to", to))
		if from == domain.StepPayment {
			s.payments.Discard()
		}
	})
	return s
}

func (s *Session) Controller() *Controller {
	return s.ctrl
}

// Begin starts checkout: the cart must have items and a draft is created if
// the server has none. Forms are filled from the draft.
func (s *Session) Begin(ctx context.Context) (State, error) {
	s.op.Lock()
	defer s.op.Unlock()

	cart, err := s.cart.GetCart(ctx)
	if err != nil {
		return State{}, err
	}
	if cart.IsEmpty() {
		return State{}, ErrEmptyCart
	}

	draft, err := s.drafts.EnsureDraft(ctx)
	if err != nil {
		return State{}, fmt.Errorf("ensure draft: %w", err)
	}

	s.mu.Lock()
	if !s.active {
		s.billing = draft.Billing()
		s.shipping = draft.Shipping()
		s.active = true
	}
	s.draftID = draft.ID
	s.mu.Unlock()
	return s.Snapshot(), nil
}

func (s *Session) SubmitBilling(ctx context.Context, addr domain.Address) (State, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.require(domain.StepBilling); err != nil {
		return State{}, err
	}
	if err := addr.Validate(); err != nil {
		return State{}, err
	}
	d, err := s.drafts.UpdateBilling(ctx, addr)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	s.draftID = d.ID
	s.billing = addr.Clone()
	s.mu.Unlock()
	if err := s.ctrl.Advance(domain.StepBilling); err != nil {
		return State{}, err
	}
	return s.Snapshot(), nil
}

func (s *Session) SubmitShipping(ctx context.Context, addr domain.Address) (State, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.require(domain.StepShipping); err != nil {
		return State{}, err
	}
	if err := addr.Validate(); err != nil {
		return State{}, err
	}
	d, err := s.drafts.UpdateShipping(ctx, addr)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	s.draftID = d.ID
	s.shipping = addr.Clone()
	s.mu.Unlock()
	if err := s.ctrl.Advance(domain.StepShipping); err != nil {
		return State{}, err
	}
	return s.Snapshot(), nil
}

// SetSameAddress toggles "ship to billing address". Turning it on copies the
// billing form into the shipping form; nothing is sent until shipping is
// submitted.
func (s *Session) SetSameAddress(same bool) State {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	s.sameAddress = same
	if same {
		s.shipping = s.billing.Clone()
	}
	s.mu.Unlock()
	return s.Snapshot()
}

func (s *Session) Back() State {
	s.op.Lock()
	defer s.op.Unlock()

	s.ctrl.Back()
	return s.Snapshot()
}

// Review is the step 3 summary: server totals plus the flat shipping fee.
func (s *Session) Review(ctx context.Context) (*Review, error) {
	cart, err := s.cart.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	return &Review{
		Items:     cart.Items,
		Subtotal:  cart.Totals.Subtotal,
		TaxAmount: cart.Totals.TaxAmount,
		Shipping:  FlatShipping,
		Total:     cart.Totals.Total.Add(FlatShipping),
	}, nil
}

// PlaceOrder finalizes the draft and moves to the payment step. When the
// order was already placed in this checkout it only moves forward again.
func (s *Session) PlaceOrder(ctx context.Context) (State, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.require(domain.StepReview); err != nil {
		return State{}, err
	}
	user, err := s.users.CurrentUser(ctx)
	if err != nil {
		return State{}, err
	}
	if user == nil {
		return State{}, ErrNotAuthenticated
	}

	s.mu.RLock()
	placed := s.order != nil
	draftID := s.draftID
	s.mu.RUnlock()
	if !placed {
		if draftID == 0 {
			return State{}, ErrNoDraft
		}
		res, err := s.drafts.FinalizeDraft(ctx, draftID)
		if err != nil {
			return State{}, err
		}
		if err := s.cart.Invalidate(ctx); err != nil {
			s.log.Warn("cart invalidate error", zap.Error(err))
		}
		s.mu.Lock()
		s.order = res
		s.draftID = 0
		s.mu.Unlock()
	}

	if err := s.ctrl.Advance(domain.StepReview); err != nil {
		return State{}, err
	}
	return s.Snapshot(), nil
}

// EnterPayment creates a fresh payment intent for the placed order. Each
// entry into the payment step gets its own intent.
func (s *Session) EnterPayment(ctx context.Context) (*domain.PaymentIntent, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.require(domain.StepPayment); err != nil {
		return nil, err
	}
	s.mu.RLock()
	order := s.order
	s.mu.RUnlock()
	if order == nil {
		return nil, ErrWrongStep
	}
	return s.payments.CreateIntent(ctx, order.OrderID)
}

// ConfirmPayment confirms the current intent. A status other than
// succeeded is returned as *PaymentFailedError; the step stays at payment
// either way.
func (s *Session) ConfirmPayment(ctx context.Context) (*PaymentOutcome, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.require(domain.StepPayment); err != nil {
		return nil, err
	}
	res, err := s.payments.ConfirmCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, &PaymentFailedError{Status: res.Status}
	}

	s.log.Info("payment succeeded",
		zap.Int64("order_id", res.OrderID),
		zap.String("order_number", res.OrderNumber))
	return &PaymentOutcome{
		OrderID:     res.OrderID,
		OrderNumber: res.OrderNumber,
		Status:      res.Status,
	}, nil
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	st := State{
		Billing:     s.billing.Clone(),
		Shipping:    s.shipping.Clone(),
		SameAddress: s.sameAddress,
	}
	if s.order != nil {
		st.OrderID = s.order.OrderID
		st.OrderNumber = s.order.OrderNumber
	}
	s.mu.RUnlock()

	st.Step = s.ctrl.Step()
	st.StepName = st.Step.String()
	if intent := s.payments.Current(); intent != nil {
		st.ClientSecret = intent.ClientSecret
	}
	return st
}

// End unbinds the checkout. The next Begin starts over at Billing.
func (s *Session) End() {
	s.op.Lock()
	defer s.op.Unlock()

	s.ctrl.Reset()
	s.payments.Discard()

	s.mu.Lock()
	s.active = false
	s.billing = domain.Address{}
	s.shipping = domain.Address{}
	s.sameAddress = true
	s.draftID = 0
	s.order = nil
	s.mu.Unlock()
}

func (s *Session) require(step domain.CheckoutStep) error {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if !active {
		return ErrNotStarted
	}
	if s.ctrl.Step() != step {
		return ErrWrongStep
	}
	return nil
}

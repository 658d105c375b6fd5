package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
)

type CheckoutHandler struct {
	timeout time.Duration
}

func NewCheckoutHandler(timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout}
}

type SameAddressRequestDTO struct {
	SameAddress bool `json:"same_address"`
}

type PaymentIntentResponseDTO struct {
	OrderID         int64  `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	st, err := servicesFrom(ctx).Checkout.Begin(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, servicesFrom(r.Context()).Checkout.Snapshot())
}

func (h *CheckoutHandler) SubmitBilling(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var addr domain.Address
	if !decodeJSON(w, r, &addr) {
		return
	}
	st, err := servicesFrom(ctx).Checkout.SubmitBilling(ctx, addr)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var addr domain.Address
	if !decodeJSON(w, r, &addr) {
		return
	}
	st, err := servicesFrom(ctx).Checkout.SubmitShipping(ctx, addr)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *CheckoutHandler) SameAddress(w http.ResponseWriter, r *http.Request) {
	var req SameAddressRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, servicesFrom(r.Context()).Checkout.SetSameAddress(req.SameAddress))
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, servicesFrom(r.Context()).Checkout.Back())
}

func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	rev, err := servicesFrom(ctx).Checkout.Review(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rev)
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	svc := servicesFrom(ctx)
	st, err := svc.Checkout.PlaceOrder(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	trackAsync(ctx, svc, domain.TrackingEvent{
		Type: "order_placed",
		Data: map[string]any{"order_id": st.OrderID, "order_number": st.OrderNumber},
	}, h.timeout)
	respondJSON(w, http.StatusOK, st)
}

func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	pi, err := servicesFrom(ctx).Checkout.EnterPayment(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, PaymentIntentResponseDTO{
		OrderID:         pi.OrderID,
		PaymentIntentID: pi.PaymentIntentID,
		ClientSecret:    pi.ClientSecret,
	})
}

func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	svc := servicesFrom(ctx)
	out, err := svc.Checkout.ConfirmPayment(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	trackAsync(ctx, svc, domain.TrackingEvent{
		Type: "purchase",
		Data: map[string]any{"order_id": out.OrderID, "order_number": out.OrderNumber},
	}, h.timeout)
	respondJSON(w, http.StatusOK, out)
}

func (h *CheckoutHandler) End(w http.ResponseWriter, r *http.Request) {
	servicesFrom(r.Context()).Checkout.End()
	w.WriteHeader(http.StatusNoContent)
}

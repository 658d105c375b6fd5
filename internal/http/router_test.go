package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/api/apitest"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTracker struct {
	gate   chan struct{}
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (r *recordingTracker) Track(_ context.Context, _ string, ev domain.TrackingEvent) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingTracker) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recordingTracker) tracked(typ string) func() bool {
	return func() bool {
		for _, t := range r.types() {
			if t == typ {
				return true
			}
		}
		return false
	}
}

type fixture struct {
	api      *apitest.Server
	registry *Registry
	tracker  *recordingTracker
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := apitest.New(t)
	tracker := &recordingTracker{}
	registry := NewRegistry(NewServiceFactory(ServicesConfig{
		API:     api.Config{BaseURL: fake.URL},
		Tracker: tracker,
	}), time.Hour, nil)

	srv := httptest.NewServer(NewRouter(RouterConfig{
		Registry:       registry,
		Sessions:       NewCookieStore("0123456789abcdef0123456789abcdef", time.Hour, false),
		RequestTimeout: 5 * time.Second,
	}))
	t.Cleanup(srv.Close)

	return &fixture{api: fake, registry: registry, tracker: tracker, server: srv}
}

// browser returns a client with its own cookie jar, i.e. its own session.
func (f *fixture) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func (f *fixture) do(t *testing.T, c *http.Client, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func address(city string) map[string]string {
	return map[string]string{
		"first_name":  "Ada",
		"last_name":   "Lovelace",
		"address_1":   "1 Main St",
		"city":        city,
		"state":       "CA",
		"postal_code": "94000",
		"country":     "US",
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequestID_IsEchoed(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
}

func TestSession_CookieKeepsServices(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.browser(t), f.browser(t)

	require.Equal(t, http.StatusOK, f.do(t, alice, http.MethodGet, "/api/v1/cart", nil, nil))
	require.Equal(t, http.StatusOK, f.do(t, alice, http.MethodGet, "/api/v1/cart", nil, nil))
	assert.Equal(t, 1, f.registry.Len())

	require.Equal(t, http.StatusOK, f.do(t, bob, http.MethodGet, "/api/v1/cart", nil, nil))
	assert.Equal(t, 2, f.registry.Len())
}

func TestCart_AddUpdateRemove(t *testing.T) {
	f := newFixture(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	c := f.browser(t)

	var cart domain.Cart
	status := f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 1, Quantity: 2}, &cart)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "50", cart.Totals.Total.String())

	itemID := cart.Items[0].ID
	status = f.do(t, c, http.MethodPatch, "/api/v1/cart/items/"+itoa(itemID), UpdateQuantityRequestDTO{Quantity: 3}, &cart)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	// zero removes the row
	status = f.do(t, c, http.MethodPatch, "/api/v1/cart/items/"+itoa(itemID), UpdateQuantityRequestDTO{Quantity: 0}, &cart)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart.Items)
}

func TestCart_BadRequests(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	var errResp ErrorResponse
	status := f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 0, Quantity: 1}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_variant_id", errResp.Code)

	status = f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 1, Quantity: -1}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)

	status = f.do(t, c, http.MethodDelete, "/api/v1/cart/items/abc", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_item_id", errResp.Code)
}

func TestCart_UnknownItemKeepsUpstreamStatus(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	var errResp ErrorResponse
	status := f.do(t, c, http.MethodPatch, "/api/v1/cart/items/999", UpdateQuantityRequestDTO{Quantity: 2}, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckout_EmptyCartConflicts(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	var errResp ErrorResponse
	status := f.do(t, c, http.MethodPost, "/api/v1/checkout/begin", nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, checkout.ErrEmptyCart.Error(), errResp.Error)
}

func TestCheckout_FullFlow(t *testing.T) {
	f := newFixture(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	c := f.browser(t)

	require.Equal(t, http.StatusCreated,
		f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 1, Quantity: 2}, nil))
	require.Equal(t, http.StatusOK,
		f.do(t, c, http.MethodPost, "/api/v1/auth/login", domain.Credentials{Email: "ada@example.com", Password: apitest.Password}, nil))

	var st checkout.State
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/begin", nil, &st))
	assert.Equal(t, domain.StepBilling, st.Step)

	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/billing", address("Oslo"), &st))
	assert.Equal(t, domain.StepShipping, st.Step)

	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/shipping", address("Bergen"), &st))
	assert.Equal(t, domain.StepReview, st.Step)

	var review checkout.Review
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodGet, "/api/v1/checkout/review", nil, &review))
	assert.Equal(t, "60", review.Total.String())

	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/place-order", nil, &st))
	assert.Equal(t, domain.StepPayment, st.Step)
	assert.NotZero(t, st.OrderID)

	var intent PaymentIntentResponseDTO
	require.Equal(t, http.StatusCreated, f.do(t, c, http.MethodPost, "/api/v1/checkout/payment/intent", nil, &intent))
	assert.Equal(t, st.OrderID, intent.OrderID)
	assert.NotEmpty(t, intent.ClientSecret)

	var outcome checkout.PaymentOutcome
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/payment/confirm", nil, &outcome))
	assert.Equal(t, domain.PaymentStatusSucceeded, outcome.Status)
	assert.Equal(t, st.OrderNumber, outcome.OrderNumber)

	assert.Eventually(t, f.tracker.tracked("order_placed"), time.Second, 10*time.Millisecond)
	assert.Eventually(t, f.tracker.tracked("purchase"), time.Second, 10*time.Millisecond)
}

func TestCheckout_PlaceOrderRequiresSignIn(t *testing.T) {
	f := newFixture(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	c := f.browser(t)

	require.Equal(t, http.StatusCreated,
		f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 1, Quantity: 1}, nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/begin", nil, nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/billing", address("Oslo"), nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/shipping", address("Oslo"), nil))

	status := f.do(t, c, http.MethodPost, "/api/v1/checkout/place-order", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Zero(t, f.api.Calls(apitest.Key(http.MethodPost, "/orders/finalize/")))
}

func TestCheckout_InvalidBillingIs400(t *testing.T) {
	f := newFixture(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	c := f.browser(t)

	require.Equal(t, http.StatusCreated,
		f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 1, Quantity: 1}, nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/begin", nil, nil))

	var errResp ErrorResponse
	status := f.do(t, c, http.MethodPost, "/api/v1/checkout/billing", map[string]string{"first_name": "Ada"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", errResp.Code)
	assert.Contains(t, errResp.Details, "city")

	var st checkout.State
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodGet, "/api/v1/checkout", nil, &st))
	assert.Equal(t, domain.StepBilling, st.Step)
}

func TestCheckout_PaymentDeclinedIs402(t *testing.T) {
	f := newFixture(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	f.api.SetConfirmStatus(domain.PaymentStatus("requires_payment_method"))
	c := f.browser(t)

	require.Equal(t, http.StatusCreated,
		f.do(t, c, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{VariantID: 1, Quantity: 1}, nil))
	require.Equal(t, http.StatusOK,
		f.do(t, c, http.MethodPost, "/api/v1/auth/login", domain.Credentials{Email: "ada@example.com", Password: apitest.Password}, nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/begin", nil, nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/billing", address("Oslo"), nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/shipping", address("Oslo"), nil))
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodPost, "/api/v1/checkout/place-order", nil, nil))
	require.Equal(t, http.StatusCreated, f.do(t, c, http.MethodPost, "/api/v1/checkout/payment/intent", nil, nil))

	var errResp struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	status := f.do(t, c, http.MethodPost, "/api/v1/checkout/payment/confirm", nil, &errResp)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "payment_failed", errResp.Code)
	assert.Equal(t, "requires_payment_method", errResp.Details["status"])
}

func TestCheckout_ConfirmWithoutIntentConflicts(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	status := f.do(t, c, http.MethodPost, "/api/v1/checkout/payment/confirm", nil, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAuth_MeAnonymousAndLogin(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	var me UserResponseDTO
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodGet, "/api/v1/auth/me", nil, &me))
	assert.Nil(t, me.User)

	var errResp ErrorResponse
	status := f.do(t, c, http.MethodPost, "/api/v1/auth/login", domain.Credentials{Email: "ada@example.com", Password: "wrong"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp.Error, "Invalid credentials")

	require.Equal(t, http.StatusOK,
		f.do(t, c, http.MethodPost, "/api/v1/auth/login", domain.Credentials{Email: "ada@example.com", Password: apitest.Password}, &me))
	require.NotNil(t, me.User)
	assert.Equal(t, "ada@example.com", me.User.Email)

	assert.Equal(t, http.StatusNoContent, f.do(t, c, http.MethodPost, "/api/v1/auth/logout", nil, nil))
}

func TestProducts_SearchIsTracked(t *testing.T) {
	f := newFixture(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	c := f.browser(t)

	var page domain.ProductPage
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodGet, "/api/v1/products?search=Shoe", nil, &page))
	assert.Eventually(t, f.tracker.tracked(domain.EventSearch), time.Second, 10*time.Millisecond)

	var errResp ErrorResponse
	status := f.do(t, c, http.MethodGet, "/api/v1/products?min_price=abc", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProducts_SlowTrackerDoesNotDelayResponse(t *testing.T) {
	f := newFixture(t)
	f.tracker.gate = make(chan struct{})
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")
	c := f.browser(t)

	start := time.Now()
	var page domain.ProductPage
	require.Equal(t, http.StatusOK, f.do(t, c, http.MethodGet, "/api/v1/products?search=Shoe", nil, &page))
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, f.tracker.types())

	close(f.tracker.gate)
	assert.Eventually(t, f.tracker.tracked(domain.EventSearch), time.Second, 10*time.Millisecond)
}

func TestSupport_OpenTicketValidation(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	status := f.do(t, c, http.MethodPost, "/api/v1/support/tickets", map[string]string{"subject": "Late"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var ticket domain.SupportTicket
	status = f.do(t, c, http.MethodPost, "/api/v1/support/tickets",
		map[string]string{"subject": "Late", "description": "Where is my order?"}, &ticket)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, ticket.TicketNumber)
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, c, http.MethodGet, "/api/v1/admin/inventory", nil, nil))

	f.api.SignIn(&domain.User{ID: 1, Email: "user@example.com", Roles: []string{"customer"}})
	other := f.browser(t)
	assert.Equal(t, http.StatusForbidden, f.do(t, other, http.MethodGet, "/api/v1/admin/inventory", nil, nil))

	f.api.SignIn(&domain.User{ID: 2, Email: "admin@example.com", Roles: []string{domain.RoleAdmin}})
	admin := f.browser(t)
	f.api.AddVariant(1, "SKU-1", "Shoe", "25.00")

	var dash struct {
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
	}
	require.Equal(t, http.StatusOK, f.do(t, admin, http.MethodGet, "/api/v1/admin/inventory", nil, &dash))
	assert.Equal(t, 1, dash.Summary.Total)

	var sum domain.AnalyticsSummary
	require.Equal(t, http.StatusOK, f.do(t, admin, http.MethodGet, "/api/v1/admin/analytics/summary?days=7", nil, &sum))
	assert.Equal(t, "1234.5", sum.TotalRevenue.String())

	assert.Equal(t, http.StatusBadRequest,
		f.do(t, admin, http.MethodGet, "/api/v1/admin/analytics/top-products?limit=x", nil, nil))
}

func TestTrack_Accepted(t *testing.T) {
	f := newFixture(t)
	c := f.browser(t)

	status := f.do(t, c, http.MethodPost, "/api/v1/track",
		domain.TrackingEvent{Type: domain.EventPageView, Data: map[string]any{"url": "/"}}, nil)
	assert.Equal(t, http.StatusAccepted, status)
	require.Eventually(t, f.tracker.tracked(domain.EventPageView), time.Second, 10*time.Millisecond)

	assert.Equal(t, http.StatusBadRequest, f.do(t, c, http.MethodPost, "/api/v1/track", map[string]any{}, nil))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Package apitest provides an in-memory commerce API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
	Password      = "secret"
)

// Server mimics the commerce API closely enough to drive the client stores.
// Totals are computed here, server-side, the same way the real API owns them.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	variants      map[int64]domain.Variant
	cart          domain.Cart
	nextItemID    int64
	draft         *domain.OrderDraft
	nextDraftID   int64
	orders        map[int64]*domain.Order
	nextOrderID   int64
	intents       map[string]int64
	nextIntentID  int64
	confirmStatus domain.PaymentStatus
	taxRate       decimal.Decimal
	user          *domain.User
	calls         map[string]int
	bodies        map[string][]map[string]any
	failures      map[string]int
	stock         []domain.StockLevel
	tickets       []domain.SupportTicket
}

func New(t testing.TB) *Server {
	s := &Server{
		variants:      make(map[int64]domain.Variant),
		cart:          domain.Cart{ID: 1, Items: []domain.CartItem{}},
		orders:        make(map[int64]*domain.Order),
		intents:       make(map[string]int64),
		confirmStatus: domain.PaymentStatusSucceeded,
		taxRate:       decimal.Zero,
		calls:         make(map[string]int),
		bodies:        make(map[string][]map[string]any),
		failures:      make(map[string]int),
		nextOrderID:   100,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	s.handle(r, http.MethodGet, "/cart/", s.getCart)
	s.handle(r, http.MethodPost, "/cart/items/", s.addItem)
	s.handle(r, http.MethodPatch, "/cart/items/{id}/", s.updateItem)
	s.handle(r, http.MethodDelete, "/cart/items/{id}/delete/", s.removeItem)
	s.handle(r, http.MethodPost, "/cart/clear/", s.clearCart)

	s.handle(r, http.MethodGet, "/orders/draft/", s.getDraft)
	s.handle(r, http.MethodPost, "/orders/draft/create/", s.createDraft)
	s.handle(r, http.MethodPatch, "/orders/draft/{id}/", s.patchDraft)
	s.handle(r, http.MethodPost, "/orders/finalize/", s.finalize)
	s.handle(r, http.MethodGet, "/orders/", s.listOrders)
	s.handle(r, http.MethodGet, "/orders/{id}/", s.getOrder)

	s.handle(r, http.MethodPost, "/payments/intent/create/", s.createIntent)
	s.handle(r, http.MethodPost, "/payments/intent/confirm/", s.confirmIntent)

	s.handle(r, http.MethodGet, "/auth/me/", s.me)
	s.handle(r, http.MethodPost, "/auth/login/", s.login)
	s.handle(r, http.MethodPost, "/auth/register/", s.register)
	s.handle(r, http.MethodPost, "/auth/logout/", s.logout)

	s.handle(r, http.MethodGet, "/products/", s.listProducts)
	s.handle(r, http.MethodGet, "/categories/", s.listCategories)
	s.handle(r, http.MethodGet, "/inventory/levels/", s.stockLevels)
	s.handle(r, http.MethodGet, "/inventory/alerts/", s.lowStockAlerts)
	s.handle(r, http.MethodPost, "/inventory/alerts/{id}/acknowledge/", s.ok)
	s.handle(r, http.MethodGet, "/analytics/summary/", s.analyticsSummary)
	s.handle(r, http.MethodGet, "/analytics/top-products/", s.emptyList)
	s.handle(r, http.MethodGet, "/analytics/top-categories/", s.emptyList)
	s.handle(r, http.MethodGet, "/analytics/revenue-trend/", s.revenueTrend)
	s.handle(r, http.MethodPost, "/analytics/track/page-view/", s.ok)
	s.handle(r, http.MethodPost, "/analytics/track/search/", s.ok)
	s.handle(r, http.MethodPost, "/analytics/track/conversion/", s.ok)
	s.handle(r, http.MethodGet, "/support/tickets/", s.listTickets)
	s.handle(r, http.MethodPost, "/support/tickets/", s.createTicket)
	s.handle(r, http.MethodGet, "/support/faq/", s.emptyList)
	s.handle(r, http.MethodGet, "/support/reviews/", s.emptyList)
	s.handle(r, http.MethodGet, "/support/reviews/product/{id}/", s.emptyList)
	s.handle(r, http.MethodPost, "/support/reviews/{id}/vote/", s.ok)

	return r
}

// Key builds the call-counter key for a route, e.g. Key("PATCH", "/cart/items/{id}/").
func Key(method, pattern string) string {
	return method + " " + pattern
}

func (s *Server) handle(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := Key(method, pattern)
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body := map[string]any{}
		if data, _ := io.ReadAll(req.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}

		s.mu.Lock()
		s.calls[key]++
		s.bodies[key] = append(s.bodies[key], body)
		status, fail := s.failures[key]
		if fail {
			delete(s.failures, key)
		}
		csrf := s.csrfMismatch(req)
		s.mu.Unlock()

		if fail {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		if csrf {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed"})
			return
		}
		h(w, withBody(req, body))
	}))
}

type bodyKey struct{}

func withBody(r *http.Request, body map[string]any) *http.Request {
	return r.WithContext(contextWithBody(r.Context(), body))
}

// csrfMismatch enforces the CSRF header once a csrftoken cookie exists.
func (s *Server) csrfMismatch(r *http.Request) bool {
	if r.Method == http.MethodGet {
		return false
	}
	ck, err := r.Cookie(CSRFCookie)
	if err != nil {
		return false
	}
	return r.Header.Get("X-CSRFToken") != ck.Value
}

// Calls returns how many times a route was hit.
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// TotalCalls returns the number of requests across all routes.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// Bodies returns the decoded JSON bodies sent to a route.
func (s *Server) Bodies(key string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.bodies[key]...)
}

// FailNext makes the next call to the route answer with status.
func (s *Server) FailNext(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = status
}

func (s *Server) SetConfirmStatus(st domain.PaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmStatus = st
}

func (s *Server) SetTaxRate(rate string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxRate = decimal.RequireFromString(rate)
	s.recalculate()
}

// SignIn makes every request authenticated as u.
func (s *Server) SignIn(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *Server) AddVariant(id int64, sku, productName, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[id] = domain.Variant{
		ID:    id,
		SKU:   sku,
		Name:  sku,
		Price: decimal.RequireFromString(price),
		Product: domain.VariantProduct{
			Name: productName,
			Slug: fmt.Sprintf("product-%d", id),
		},
	}
	s.stock = append(s.stock, domain.StockLevel{
		VariantID:    id,
		SKU:          sku,
		ProductName:  productName,
		CurrentStock: 10,
		Threshold:    5,
		Status:       domain.StockInStock,
	})
}

// SeedCartItem puts a line in the cart directly and returns its id.
func (s *Server) SeedCartItem(variantID int64, quantity int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLine(variantID, quantity)
}

// SeedDraft creates a draft directly, bypassing the create endpoint.
func (s *Server) SeedDraft(email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDraftID++
	s.draft = &domain.OrderDraft{ID: s.nextDraftID, Email: email}
	return s.draft.ID
}

// Draft returns a copy of the server draft, or nil.
func (s *Server) Draft() *domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	cp := *s.draft
	return &cp
}

func (s *Server) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := s.cart
	cp.Items = append([]domain.CartItem(nil), s.cart.Items...)
	return cp
}

func (s *Server) Order(id int64) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

func (s *Server) addLine(variantID int64, quantity int) int64 {
	v := s.variants[variantID]
	for i := range s.cart.Items {
		if s.cart.Items[i].Variant.ID == variantID {
			s.cart.Items[i].Quantity += quantity
			s.recalculate()
			return s.cart.Items[i].ID
		}
	}
	s.nextItemID++
	s.cart.Items = append(s.cart.Items, domain.CartItem{
		ID:       s.nextItemID,
		Variant:  v,
		Quantity: quantity,
	})
	s.recalculate()
	return s.nextItemID
}

func (s *Server) recalculate() {
	subtotal := decimal.Zero
	count := 0
	for i := range s.cart.Items {
		it := &s.cart.Items[i]
		it.LineTotal = it.Variant.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(it.LineTotal)
		count += it.Quantity
	}
	tax := subtotal.Mul(s.taxRate).Round(2)
	s.cart.Totals = domain.Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
		ItemCount: count,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func (s *Server) ok(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) emptyList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []any{})
}

func now() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/shopspring/decimal"
)

func contextWithBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(r *http.Request) map[string]any {
	b, _ := r.Context().Value(bodyKey{}).(map[string]any)
	if b == nil {
		return map[string]any{}
	}
	return b
}

func intField(body map[string]any, name string) (int64, bool) {
	v, ok := body[name].(float64)
	return int64(v), ok
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.cart)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	variantID, _ := intField(body, "variant_id")
	qty, ok := intField(body, "quantity")
	if !ok {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.variants[variantID]; !known {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Variant not found"})
		return
	}
	s.addLine(variantID, int(qty))
	writeJSON(w, http.StatusCreated, s.cart)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	qty, _ := intField(bodyFrom(r), "quantity")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart.Items {
		if s.cart.Items[i].ID != id {
			continue
		}
		if qty <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"quantity": {"Ensure this value is greater than or equal to 1."}})
			return
		}
		s.cart.Items[i].Quantity = int(qty)
		s.recalculate()
		writeJSON(w, http.StatusOK, s.cart)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart.Items {
		if s.cart.Items[i].ID == id {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			s.recalculate()
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (s *Server) clearCart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Items = []domain.CartItem{}
	s.recalculate()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared successfully"})
}

func (s *Server) getDraft(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No draft order found"})
		return
	}
	writeJSON(w, http.StatusOK, s.draftWithTotals())
}

func (s *Server) createDraft(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDraftID++
	email := ""
	if s.user != nil {
		email = s.user.Email
	}
	s.draft = &domain.OrderDraft{ID: s.nextDraftID, Email: email}
	writeJSON(w, http.StatusCreated, s.draftWithTotals())
}

func (s *Server) patchDraft(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	body := bodyFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil || s.draft.ID != id {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	// Overlay only the provided fields on the current draft.
	current, _ := json.Marshal(s.draft)
	merged := map[string]any{}
	_ = json.Unmarshal(current, &merged)
	for k, v := range body {
		merged[k] = v
	}
	data, _ := json.Marshal(merged)
	var next domain.OrderDraft
	if err := json.Unmarshal(data, &next); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	next.ID = s.draft.ID
	s.draft = &next
	writeJSON(w, http.StatusOK, s.draftWithTotals())
}

var flatShipping = decimal.NewFromInt(10)

func (s *Server) draftWithTotals() domain.OrderDraft {
	d := *s.draft
	d.Subtotal = s.cart.Totals.Subtotal
	d.TaxAmount = s.cart.Totals.TaxAmount
	d.ShippingAmount = flatShipping
	d.Total = s.cart.Totals.Total.Add(flatShipping)
	return d
}

func (s *Server) finalize(w http.ResponseWriter, r *http.Request) {
	draftID, _ := intField(bodyFrom(r), "draft_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil || s.draft.ID != draftID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Draft not found"})
		return
	}
	if len(s.cart.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Cart is empty"})
		return
	}

	d := s.draftWithTotals()
	s.nextOrderID++
	items := make([]domain.OrderItem, 0, len(s.cart.Items))
	for _, it := range s.cart.Items {
		items = append(items, domain.OrderItem(it))
	}
	order := &domain.Order{
		ID:              s.nextOrderID,
		OrderNumber:     fmt.Sprintf("ORD-%06d", s.nextOrderID),
		Status:          domain.OrderStatusAwaitingPayment,
		PaymentStatus:   "pending",
		Email:           d.Email,
		AddressSnapshot: d.AddressSnapshot,
		Items:           items,
		Subtotal:        d.Subtotal,
		TaxAmount:       d.TaxAmount,
		ShippingAmount:  d.ShippingAmount,
		Total:           d.Total,
		CreatedAt:       now(),
	}
	s.orders[order.ID] = order
	s.draft = nil
	s.cart.Items = []domain.CartItem{}
	s.recalculate()

	writeJSON(w, http.StatusCreated, domain.FinalizeResult{OrderID: order.ID, OrderNumber: order.OrderNumber})
}

func (s *Server) listOrders(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, id := range slices.Sorted(maps.Keys(s.orders)) {
		out = append(out, *s.orders[id])
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "results": out})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[pathID(r)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) createIntent(w http.ResponseWriter, r *http.Request) {
	orderID, _ := intField(bodyFrom(r), "order_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
		return
	}
	if o.Status != domain.OrderStatusAwaitingPayment {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Order is not awaiting payment"})
		return
	}
	s.nextIntentID++
	id := fmt.Sprintf("pi_%d", s.nextIntentID)
	s.intents[id] = orderID
	writeJSON(w, http.StatusOK, map[string]string{
		"client_secret":     id + "_secret",
		"payment_intent_id": id,
	})
}

func (s *Server) confirmIntent(w http.ResponseWriter, r *http.Request) {
	id, _ := bodyFrom(r)["payment_intent_id"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	orderID, ok := s.intents[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment intent not found"})
		return
	}
	o := s.orders[orderID]
	if s.confirmStatus.Succeeded() {
		o.Status = domain.OrderStatusPaid
		o.PaymentStatus = string(domain.PaymentStatusSucceeded)
		paid := now()
		o.PaidAt = &paid
	}
	writeJSON(w, http.StatusOK, domain.ConfirmResult{
		Status:      s.confirmStatus,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
	})
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": s.user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if password != Password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid credentials"}})
		return
	}

	s.mu.Lock()
	s.user = &domain.User{ID: 7, Email: email, Roles: []string{"customer"}, DateJoined: now()}
	u := s.user
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "session-7", Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: "csrf-7", Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "message": "Login successful"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	email, _ := body["email"].(string)
	if body["password"] != body["password_confirm"] {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password_confirm": {"Passwords don't match."}})
		return
	}

	s.mu.Lock()
	s.user = &domain.User{ID: 8, Email: email, Roles: []string{"customer"}, DateJoined: now()}
	u := s.user
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "session-8", Path: "/"})
	writeJSON(w, http.StatusCreated, map[string]any{"user": u, "message": "Registration successful"})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := r.URL.Query().Get("search")
	out := []domain.Product{}
	for _, id := range slices.Sorted(maps.Keys(s.variants)) {
		v := s.variants[id]
		if search != "" && search != v.Product.Name {
			continue
		}
		out = append(out, domain.Product{
			ID:           v.ID,
			Name:         v.Product.Name,
			Slug:         v.Product.Slug,
			PriceRange:   v.Price.StringFixed(2),
			IsActive:     true,
			VariantCount: 1,
		})
	}
	writeJSON(w, http.StatusOK, domain.ProductPage{Results: out, Count: len(out)})
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []domain.Category{{ID: 1, Name: "Shoes", Slug: "shoes", IsActive: true}})
}

func (s *Server) stockLevels(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stock)
}

func (s *Server) lowStockAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"results": []map[string]any{{
		"id":            1,
		"variant":       map[string]any{"sku": "SKU-LOW", "product": map[string]any{"name": "Low Product"}},
		"threshold":     5,
		"current_stock": 2,
		"status":        "active",
		"created_at":    now(),
	}}})
}

// SetStock replaces the inventory levels.
func (s *Server) SetStock(levels []domain.StockLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock = levels
}

func (s *Server) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"total_revenue":       "1234.50",
		"total_orders":        12,
		"total_customers":     5,
		"total_products":      40,
		"average_order_value": "102.88",
		"conversion_rate":     2.5,
		"period":              r.URL.Query().Get("days") + " days",
	})
}

func (s *Server) revenueTrend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{
		{"date": "2026-01-01", "revenue": "100.00", "orders": 1},
		{"date": "2026-01-02", "revenue": "250.00", "orders": 2},
	})
}

func (s *Server) listTickets(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"results": s.tickets})
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r)
	subject, _ := body["subject"].(string)
	description, _ := body["description"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.SupportTicket{
		ID:           int64(len(s.tickets) + 1),
		TicketNumber: fmt.Sprintf("TKT-%04d", len(s.tickets)+1),
		Subject:      subject,
		Description:  description,
		Status:       "open",
		Priority:     "medium",
		CreatedAt:    now(),
		UpdatedAt:    now(),
		Messages:     []domain.TicketMessage{},
	}
	s.tickets = append(s.tickets, t)
	writeJSON(w, http.StatusCreated, t)
}

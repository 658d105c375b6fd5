package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const SessionCookieName = "storefront_session"

type RouterConfig struct {
	Registry           *Registry
	Sessions           sessions.Store
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Log                *zap.Logger
}

// NewRouter builds the storefront HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	log := logger.OrNop(cfg.Log)
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}

	cartHandler := NewCartHandler(cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(cfg.RequestTimeout)
	authHandler := NewAuthHandler(cfg.RequestTimeout)
	productHandler := NewProductHandler(cfg.RequestTimeout)
	supportHandler := NewSupportHandler(cfg.RequestTimeout)
	adminHandler := NewAdminHandler(cfg.RequestTimeout)
	trackHandler := NewTrackHandler(cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": cfg.Registry.Len(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions, SessionCookieName, cfg.Registry, log))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Patch("/items/{item_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{item_id}", cartHandler.RemoveItem)
			r.Post("/clear", cartHandler.Clear)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/begin", checkoutHandler.Begin)
			r.Get("/", checkoutHandler.State)
			r.Delete("/", checkoutHandler.End)
			r.Post("/billing", checkoutHandler.SubmitBilling)
			r.Post("/shipping", checkoutHandler.SubmitShipping)
			r.Post("/same-address", checkoutHandler.SameAddress)
			r.Post("/back", checkoutHandler.Back)
			r.Get("/review", checkoutHandler.Review)
			r.Post("/place-order", checkoutHandler.PlaceOrder)
			r.Post("/payment/intent", checkoutHandler.CreateIntent)
			r.Post("/payment/confirm", checkoutHandler.ConfirmPayment)
		})

		r.Get("/orders", ordersHandler.List)
		r.Get("/orders/{order_id}", ordersHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", authHandler.Me)
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
		})

		r.Get("/products", productHandler.List)
		r.Get("/products/{slug}", productHandler.Get)
		r.Get("/categories", productHandler.Categories)

		r.Route("/support", func(r chi.Router) {
			r.Get("/tickets", supportHandler.Tickets)
			r.Post("/tickets", supportHandler.OpenTicket)
			r.Patch("/tickets/{ticket_id}", supportHandler.UpdateTicket)
			r.Post("/tickets/{ticket_id}/messages", supportHandler.Reply)
			r.Get("/faqs", supportHandler.FAQs)
			r.Get("/reviews", supportHandler.Reviews)
			r.Post("/reviews", supportHandler.WriteReview)
			r.Post("/reviews/{review_id}/vote", supportHandler.Vote)
		})

		r.Post("/track", trackHandler.Track)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/inventory", adminHandler.Inventory)
			r.Post("/inventory/alerts/{alert_id}/acknowledge", adminHandler.AcknowledgeAlert)
			r.Get("/analytics/summary", adminHandler.Summary)
			r.Get("/analytics/top-products", adminHandler.TopProducts)
			r.Get("/analytics/top-categories", adminHandler.TopCategories)
			r.Get("/analytics/revenue-trend", adminHandler.RevenueTrend)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/inventory"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/fjod/go_cart/storefront/internal/support"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

// Services is everything one browser session talks to. The API client owns
// the session's cookie jar, so nothing here is shared between sessions.
type Services struct {
	Client    *api.Client
	Cache     cache.QueryCache
	Cart      *cart.Store
	Editor    *cart.QuantityEditor
	Drafts    *checkout.DraftStore
	Checkout  *checkout.Session
	Payments  *payment.Coordinator
	Auth      *auth.State
	Orders    *orders.Service
	Catalog   *catalog.Service
	Support   *support.Service
	Inventory *inventory.Service
	Reports   *analytics.Reports
	Tracker   analytics.Tracker
}

type ServiceFactory func(sessionID string) (*Services, error)

type ServicesConfig struct {
	API     api.Config
	Breaker *api.Breaker
	// Cache builds the query cache of a session.
	Cache      func(sessionID string) cache.QueryCache
	HTTPClient func() *http.Client
	// Tracker receives every session's events next to the commerce API.
	Tracker analytics.Tracker
	Log     *zap.Logger
}

func NewServiceFactory(cfg ServicesConfig) ServiceFactory {
	log := logger.OrNop(cfg.Log)
	newCache := cfg.Cache
	if newCache == nil {
		newCache = func(string) cache.QueryCache { return cache.NewMemoryCache() }
	}

	return func(sessionID string) (*Services, error) {
		slog := log.With(zap.String("session_id", sessionID))
		opts := []api.Option{api.WithLogger(slog)}
		if cfg.Breaker != nil {
			opts = append(opts, api.WithBreaker(cfg.Breaker))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, api.WithHTTPClient(cfg.HTTPClient()))
		}
		client, err := api.New(cfg.API, opts...)
		if err != nil {
			return nil, fmt.Errorf("commerce client: %w", err)
		}

		qc := newCache(sessionID)
		carts := cart.NewStore(client, qc, sessionID, slog)
		drafts := checkout.NewDraftStore(client, qc, sessionID, slog)
		payments := payment.NewCoordinator(client, slog)
		users := auth.NewState(client, qc, sessionID, slog)

		var tracker analytics.Tracker = analytics.NewAPITracker(client, slog)
		if cfg.Tracker != nil {
			tracker = analytics.MultiTracker{tracker, cfg.Tracker}
		}

		return &Services{
			Client:    client,
			Cache:     qc,
			Cart:      carts,
			Editor:    cart.NewQuantityEditor(carts),
			Drafts:    drafts,
			Checkout:  checkout.NewSession(drafts, carts, payments, users, slog),
			Payments:  payments,
			Auth:      users,
			Orders:    orders.NewService(client),
			Catalog:   catalog.NewService(client),
			Support:   support.NewService(client),
			Inventory: inventory.NewService(client, slog),
			Reports:   analytics.NewReports(client),
			Tracker:   tracker,
		}, nil
	}
}

type registryEntry struct {
	services *Services
	lastSeen time.Time
}

// Registry keeps the services of live sessions and evicts idle ones.
type Registry struct {
	factory ServiceFactory
	idle    time.Duration
	log     *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

func NewRegistry(factory ServiceFactory, idle time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		factory:  factory,
		idle:     idle,
		log:      logger.OrNop(log),
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

// Get returns the session's services, creating them on first use.
func (r *Registry) Get(sessionID string) (*Services, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[sessionID]; ok {
		e.lastSeen = r.now()
		return e.services, nil
	}

	svc, err := r.factory(sessionID)
	if err != nil {
		return nil, err
	}
	r.sessions[sessionID] = &registryEntry{services: svc, lastSeen: r.now()}
	r.log.Debug("session services created", zap.String("session_id", sessionID))
	return svc, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep ends and drops sessions idle for longer than the idle timeout.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var expired []*Services
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.services)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, svc := range expired {
		svc.Checkout.End()
		if err := svc.Cache.Clear(ctx); err != nil {
			r.log.Warn("failed to clear session cache", zap.Error(err))
		}
	}
	if len(expired) > 0 {
		r.log.Info("idle sessions evicted", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

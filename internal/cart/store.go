package cart

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// API is the part of the commerce API the cart store needs.
type API interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, variantID int64, quantity int) error
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
}

// Store is the session's view of the server cart. Reads go through the
// query cache; every successful mutation invalidates it. Totals are whatever
// the server returned.
type Store struct {
	api   API
	cache cache.QueryCache
	key   string
	log   *zap.Logger
	sfg   singleflight.Group // collapses concurrent misses
	// gen counts invalidations. A fetch that started in an older generation
	// neither fills the cache nor serves callers of a newer one.
	gen   atomic.Uint64
	genMu sync.Mutex // orders fills against invalidations
}

func NewStore(api API, qc cache.QueryCache, sessionID string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		api:   api,
		cache: qc,
		key:   cache.CartKey(sessionID),
		log:   log.With(zap.String("session_id", sessionID)),
	}
}

func (s *Store) GetCart(ctx context.Context) (*domain.Cart, error) {
	gen := s.gen.Load()
	v, err, _ := s.sfg.Do(s.key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		var cached domain.Cart
		err := s.cache.Get(ctx, s.key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get error", zap.Error(err))
		}

		fresh, err := s.api.GetCart(ctx)
		if err != nil {
			return nil, err
		}
		if fresh.Items == nil {
			fresh.Items = []domain.CartItem{}
		}
		s.fill(ctx, gen, fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem adds quantity units of a variant. A zero quantity means one.
func (s *Store) AddItem(ctx context.Context, variantID int64, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := s.api.AddCartItem(ctx, variantID, quantity); err != nil {
		s.log.Error("add item failed", zap.Int64("variant_id", variantID), zap.Error(err))
		return err
	}

	s.invalidate()
	return nil
}

// UpdateItem sets a line's quantity. Callers translate quantities below one
// into RemoveItem; see QuantityEditor.
func (s *Store) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := s.api.UpdateCartItem(ctx, itemID, quantity); err != nil {
		s.log.Error("update item failed", zap.Int64("item_id", itemID), zap.Int("quantity", quantity), zap.Error(err))
		return err
	}

	s.invalidate()
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, itemID int64) error {
	if err := s.api.RemoveCartItem(ctx, itemID); err != nil {
		s.log.Error("remove item failed", zap.Int64("item_id", itemID), zap.Error(err))
		return err
	}

	s.invalidate()
	return nil
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		s.log.Error("clear cart failed", zap.Error(err))
		return err
	}

	s.invalidate()
	return nil
}

// Invalidate drops the cached cart. Other stores call it when a server-side
// operation changes the cart, e.g. finalizing a draft.
func (s *Store) Invalidate(ctx context.Context) error {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gen.Add(1)
	return s.cache.Invalidate(ctx, s.key)
}

func (s *Store) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Invalidate(ctx); err != nil {
		s.log.Error("cache invalidate error", zap.Error(err))
	}
}

// fill caches a fetched cart unless the cart was invalidated since the fetch
// began.
func (s *Store) fill(ctx context.Context, gen uint64, c *domain.Cart) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gen.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, s.key, c); err != nil {
		s.log.Warn("cache set error", zap.Error(err))
	}
}

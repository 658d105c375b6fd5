package checkout

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

type DraftAPI interface {
	GetDraft(ctx context.Context) (*domain.OrderDraft, error)
	CreateDraft(ctx context.Context) (*domain.OrderDraft, error)
	PatchDraft(ctx context.Context, draftID int64, fields map[string]string) (*domain.OrderDraft, error)
	FinalizeDraft(ctx context.Context, draftID int64) (*domain.FinalizeResult, error)
}

// cachedDraft lets "the server has no draft" be cached too.
type cachedDraft struct {
	Draft *domain.OrderDraft `json:"draft"`
}

// DraftStore mirrors the server-held order draft of one session.
type DraftStore struct {
	api      DraftAPI
	cache    cache.QueryCache
	key      string
	cartKey  string
	log      *zap.Logger
	sfg      singleflight.Group
	ensureMu chan struct{}

	// gen counts writes to the draft key; a read that started in an older
	// generation does not fill the cache.
	gen   atomic.Uint64
	genMu sync.Mutex
}

func NewDraftStore(api DraftAPI, qc cache.QueryCache, sessionID string, log *zap.Logger) *DraftStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &DraftStore{
		api:      api,
		cache:    qc,
		key:      cache.DraftKey(sessionID),
		cartKey:  cache.CartKey(sessionID),
		log:      log.With(zap.String("session_id", sessionID)),
		ensureMu: make(chan struct{}, 1),
	}
}

// GetDraft returns the session's draft, or nil when the server has none.
func (s *DraftStore) GetDraft(ctx context.Context) (*domain.OrderDraft, error) {
	if d, ok := s.cached(ctx); ok {
		return d, nil
	}

	gen := s.gen.Load()
	v, err, _ := s.sfg.Do(s.key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		d, err := s.api.GetDraft(ctx)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, gen, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.OrderDraft), nil
}

func (s *DraftStore) CreateDraft(ctx context.Context) (*domain.OrderDraft, error) {
	d, err := s.api.CreateDraft(ctx)
	if err != nil {
		s.log.Error("create draft failed", zap.Error(err))
		return nil, err
	}
	s.store(ctx, d)
	s.log.Info("draft created", zap.Int64("draft_id", d.ID))
	return d, nil
}

// EnsureDraft returns the draft, creating it when the server has none.
// Concurrent callers wait for one another, so at most one create is sent.
func (s *DraftStore) EnsureDraft(ctx context.Context) (*domain.OrderDraft, error) {
	select {
	case s.ensureMu <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.ensureMu }()

	d, err := s.GetDraft(ctx)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return d, nil
	}
	return s.CreateDraft(ctx)
}

// UpdateBilling sends the provided billing fields and the contact email.
func (s *DraftStore) UpdateBilling(ctx context.Context, addr domain.Address) (*domain.OrderDraft, error) {
	d, err := s.requireDraft(ctx)
	if err != nil {
		return nil, err
	}
	fields := addr.Fields("billing_")
	if d.Email != "" {
		fields["email"] = d.Email
	}
	return s.patch(ctx, d.ID, fields)
}

func (s *DraftStore) UpdateShipping(ctx context.Context, addr domain.Address) (*domain.OrderDraft, error) {
	d, err := s.requireDraft(ctx)
	if err != nil {
		return nil, err
	}
	return s.patch(ctx, d.ID, addr.Fields("shipping_"))
}

// Finalize converts the cached draft into an order. Without a cached draft
// it fails before sending anything.
func (s *DraftStore) Finalize(ctx context.Context) (*domain.FinalizeResult, error) {
	d, ok := s.cached(ctx)
	if !ok || d == nil {
		return nil, ErrNoDraft
	}
	return s.FinalizeDraft(ctx, d.ID)
}

// FinalizeDraft converts a known draft into an order.
func (s *DraftStore) FinalizeDraft(ctx context.Context, draftID int64) (*domain.FinalizeResult, error) {
	if draftID <= 0 {
		return nil, ErrNoDraft
	}
	res, err := s.api.FinalizeDraft(ctx, draftID)
	if err != nil {
		s.log.Error("finalize draft failed", zap.Int64("draft_id", draftID), zap.Error(err))
		return nil, err
	}

	s.invalidate(s.key, s.cartKey)
	s.log.Info("draft finalized",
		zap.Int64("draft_id", draftID),
		zap.Int64("order_id", res.OrderID),
		zap.String("order_number", res.OrderNumber))
	return res, nil
}

func (s *DraftStore) Invalidate(ctx context.Context) error {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gen.Add(1)
	return s.cache.Invalidate(ctx, s.key)
}

func (s *DraftStore) requireDraft(ctx context.Context) (*domain.OrderDraft, error) {
	d, err := s.GetDraft(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNoDraft
	}
	return d, nil
}

func (s *DraftStore) patch(ctx context.Context, draftID int64, fields map[string]string) (*domain.OrderDraft, error) {
	d, err := s.api.PatchDraft(ctx, draftID, fields)
	if err != nil {
		s.log.Error("update draft failed", zap.Int64("draft_id", draftID), zap.Error(err))
		return nil, err
	}
	s.store(ctx, d)
	return d, nil
}

func (s *DraftStore) cached(ctx context.Context) (*domain.OrderDraft, bool) {
	var entry cachedDraft
	err := s.cache.Get(ctx, s.key, &entry)
	if err == nil {
		return entry.Draft, true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache get error", zap.Error(err))
	}
	return nil, false
}

// store caches a draft the server just returned from a write.
func (s *DraftStore) store(ctx context.Context, d *domain.OrderDraft) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gen.Add(1)
	s.set(ctx, d)
}

// fill caches a fetched draft unless the key was written since the fetch
// began.
func (s *DraftStore) fill(ctx context.Context, gen uint64, d *domain.OrderDraft) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gen.Load() == gen {
		s.set(ctx, d)
	}
}

func (s *DraftStore) set(ctx context.Context, d *domain.OrderDraft) {
	if err := s.cache.Set(ctx, s.key, cachedDraft{Draft: d}); err != nil {
		s.log.Warn("cache set error", zap.Error(err))
	}
}

func (s *DraftStore) invalidate(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gen.Add(1)
	for _, k := range keys {
		if err := s.cache.Invalidate(ctx, k); err != nil {
			s.log.Error("cache invalidate error", zap.String("key", k), zap.Error(err))
		}
	}
}

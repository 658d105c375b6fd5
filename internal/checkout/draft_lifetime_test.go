package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/api/apitest"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/payment"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_AfterDraftCacheExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	fake := apitest.New(t)
	fake.AddVariant(1, "SKU-1", "Shoe", "10.00")
	fake.SeedCartItem(1, 1)
	client, err := api.New(api.Config{BaseURL: fake.URL})
	require.NoError(t, err)

	qc := cache.NewRedisCache(rc, sessionID)
	drafts := NewDraftStore(client, qc, sessionID, nil)
	session := NewSession(drafts, cart.NewStore(client, qc, sessionID, nil),
		payment.NewCoordinator(client, nil), &staticUser{user: &domain.User{ID: 7}}, nil)
	ctx := context.Background()

	_, err = session.Begin(ctx)
	require.NoError(t, err)
	_, err = session.SubmitBilling(ctx, validAddress("Oslo"))
	require.NoError(t, err)
	_, err = session.SubmitShipping(ctx, validAddress("Oslo"))
	require.NoError(t, err)

	mr.FastForward(21 * time.Minute)
	_, held := drafts.cached(ctx)
	require.False(t, held)

	st, err := session.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, st.Step)
	assert.NotZero(t, st.OrderID)
	assert.Equal(t, 1, fake.Calls(finalizeKey))
}

func TestPlaceOrder_AfterSessionCacheCleared(t *testing.T) {
	f := newFixture(t)
	f.fake.SeedCartItem(1, 1)
	ctx := context.Background()
	toReview(t, f)

	require.NoError(t, f.cache.Clear(ctx))

	st, err := f.session.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.NotZero(t, st.OrderID)

	c, err := f.carts.GetCart(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

// gatedDraftAPI holds PatchDraft while gate is set.
type gatedDraftAPI struct {
	mu      sync.Mutex
	gate    chan struct{}
	entered chan struct{}
	draft   domain.OrderDraft
}

func (g *gatedDraftAPI) GetDraft(context.Context) (*domain.OrderDraft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := g.draft
	return &d, nil
}

func (g *gatedDraftAPI) CreateDraft(ctx context.Context) (*domain.OrderDraft, error) {
	return g.GetDraft(ctx)
}

func (g *gatedDraftAPI) PatchDraft(ctx context.Context, _ int64, _ map[string]string) (*domain.OrderDraft, error) {
	g.mu.Lock()
	gate, entered := g.gate, g.entered
	g.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}
	return g.GetDraft(ctx)
}

func (g *gatedDraftAPI) FinalizeDraft(context.Context, int64) (*domain.FinalizeResult, error) {
	return &domain.FinalizeResult{OrderID: 1, OrderNumber: "ORD-000001"}, nil
}

type fixedCart struct{}

func (fixedCart) GetCart(context.Context) (*domain.Cart, error) {
	return &domain.Cart{ID: 1, Items: []domain.CartItem{{ID: 1, Quantity: 1}}}, nil
}

func (fixedCart) Invalidate(context.Context) error { return nil }

func TestBack_WaitsForInFlightSubmit(t *testing.T) {
	drafts := &gatedDraftAPI{draft: domain.OrderDraft{ID: 3}}
	session := NewSession(NewDraftStore(drafts, cache.NewMemoryCache(), sessionID, nil), fixedCart{},
		payment.NewCoordinator(nil, nil), &staticUser{}, nil)
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)
	_, err = session.SubmitBilling(ctx, validAddress("Oslo"))
	require.NoError(t, err)

	gate, entered := make(chan struct{}), make(chan struct{})
	drafts.mu.Lock()
	drafts.gate, drafts.entered = gate, entered
	drafts.mu.Unlock()

	submitted := make(chan error, 1)
	go func() {
		_, err := session.SubmitShipping(ctx, validAddress("Bergen"))
		submitted <- err
	}()
	<-entered

	backDone := make(chan State, 1)
	go func() { backDone <- session.Back() }()

	select {
	case <-backDone:
		t.Fatal("Back ran while shipping was being saved")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	require.NoError(t, <-submitted)
	assert.Equal(t, domain.StepShipping, (<-backDone).Step)
}

// slowDraftAPI blocks the first GetDraft on release, returning the draft it
// saw when the call began.
type slowDraftAPI struct {
	gatedDraftAPI
	first   sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *slowDraftAPI) GetDraft(ctx context.Context) (*domain.OrderDraft, error) {
	d, _ := s.gatedDraftAPI.GetDraft(ctx)
	s.first.Do(func() {
		close(s.started)
		<-s.release
	})
	return d, nil
}

func (s *slowDraftAPI) CreateDraft(context.Context) (*domain.OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = domain.OrderDraft{ID: 5}
	d := s.draft
	return &d, nil
}

func TestGetDraft_StaleReadDoesNotOverwriteCreatedDraft(t *testing.T) {
	stub := &slowDraftAPI{started: make(chan struct{}), release: make(chan struct{})}
	stub.draft = domain.OrderDraft{ID: 3}
	drafts := NewDraftStore(stub, cache.NewMemoryCache(), sessionID, nil)
	ctx := context.Background()

	early := make(chan *domain.OrderDraft, 1)
	go func() {
		d, _ := drafts.GetDraft(ctx)
		early <- d
	}()
	<-stub.started

	created, err := drafts.CreateDraft(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(5), created.ID)

	close(stub.release)
	assert.Equal(t, int64(3), (<-early).ID)

	d, ok := drafts.cached(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(5), d.ID)
}

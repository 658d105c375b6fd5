package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/api/apitest"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReports struct {
	days, limit int
}

func (r *recordingReports) AnalyticsSummary(_ context.Context, days int) (*domain.AnalyticsSummary, error) {
	r.days = days
	return &domain.AnalyticsSummary{}, nil
}

func (r *recordingReports) TopProducts(_ context.Context, days, limit int) ([]domain.TopProduct, error) {
	r.days, r.limit = days, limit
	return nil, nil
}

func (r *recordingReports) TopCategories(_ context.Context, days, limit int) ([]domain.TopCategory, error) {
	r.days, r.limit = days, limit
	return nil, nil
}

func (r *recordingReports) RevenueTrend(_ context.Context, days int) ([]domain.RevenuePoint, error) {
	r.days = days
	return nil, nil
}

func TestReports_Defaults(t *testing.T) {
	rec := &recordingReports{}
	r := NewReports(rec)
	ctx := context.Background()

	_, _ = r.TopProducts(ctx, 0, -1)
	assert.Equal(t, 30, rec.days)
	assert.Equal(t, 10, rec.limit)

	_, _ = r.TopCategories(ctx, 7, 3)
	assert.Equal(t, 7, rec.days)
	assert.Equal(t, 3, rec.limit)

	_, _ = r.Summary(ctx, 0)
	assert.Equal(t, 30, rec.days)
}

func TestReports_AgainstAPI(t *testing.T) {
	fake := apitest.New(t)
	client, err := api.New(api.Config{BaseURL: fake.URL})
	require.NoError(t, err)
	r := NewReports(client)

	sum, err := r.Summary(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "30 days", sum.Period)
	assert.Equal(t, "1234.5", sum.TotalRevenue.String())

	trend, err := r.RevenueTrend(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, "250", trend[1].Revenue.String())
}

func TestAPITracker_RoutesByType(t *testing.T) {
	fake := apitest.New(t)
	client, err := api.New(api.Config{BaseURL: fake.URL})
	require.NoError(t, err)
	tr := NewAPITracker(client, nil)
	ctx := context.Background()

	tr.Track(ctx, "s1", domain.TrackingEvent{Type: domain.EventPageView, Data: map[string]any{"url": "/products/shoe"}})
	tr.Track(ctx, "s1", domain.TrackingEvent{Type: domain.EventSearch, Data: map[string]any{"query": "shoe", "results_count": 4}})
	tr.Track(ctx, "s1", domain.TrackingEvent{Type: "add_to_cart", Data: map[string]any{"variant_id": 1}})

	pv := fake.Bodies(apitest.Key(http.MethodPost, "/analytics/track/page-view/"))
	require.Len(t, pv, 1)
	assert.Equal(t, "/products/shoe", pv[0]["url"])

	search := fake.Bodies(apitest.Key(http.MethodPost, "/analytics/track/search/"))
	require.Len(t, search, 1)
	assert.Equal(t, float64(4), search[0]["results_count"])

	conv := fake.Bodies(apitest.Key(http.MethodPost, "/analytics/track/conversion/"))
	require.Len(t, conv, 1)
	assert.Equal(t, "add_to_cart", conv[0]["event_type"])
	assert.Equal(t, float64(1), conv[0]["variant_id"])
}

func TestAPITracker_SwallowsErrors(t *testing.T) {
	fake := apitest.New(t)
	client, err := api.New(api.Config{BaseURL: fake.URL})
	require.NoError(t, err)
	key := apitest.Key(http.MethodPost, "/analytics/track/page-view/")
	fake.FailNext(key, http.StatusInternalServerError)

	assert.NotPanics(t, func() {
		NewAPITracker(client, nil).Track(context.Background(), "s1", domain.TrackingEvent{Type: domain.EventPageView})
	})
	assert.Equal(t, 1, fake.Calls(key))
}

type mockWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockWriter) messages() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.msgs...)
}

func TestKafkaTracker_PublishesKeyedMessages(t *testing.T) {
	w := &mockWriter{}
	k := NewKafkaTracker(w, nil)
	k.tick = 10 * time.Millisecond
	k.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	k.Track(ctx, "sess-9", domain.TrackingEvent{Type: domain.EventPageView, Data: map[string]any{"url": "/cart"}})
	require.Eventually(t, func() bool { return len(w.messages()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	msg := w.messages()[0]
	assert.Equal(t, "sess-9", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, domain.EventPageView, string(msg.Headers[0].Value))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "sess-9", payload["session_id"])
	assert.Equal(t, "/cart", payload["data"].(map[string]any)["url"])
	assert.Equal(t, "2026-01-01T00:00:00Z", payload["occurred_at"])
	assert.True(t, w.closed)
}

func TestKafkaTracker_FlushesOnShutdown(t *testing.T) {
	w := &mockWriter{}
	k := NewKafkaTracker(w, nil)
	k.tick = time.Hour

	for range 3 {
		k.Track(context.Background(), "s1", domain.TrackingEvent{Type: "checkout_started"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	k.Run(ctx)

	assert.Len(t, w.messages(), 3)
	assert.True(t, w.closed)
}

func TestKafkaTracker_DropsWhenFull(t *testing.T) {
	k := NewKafkaTracker(&mockWriter{}, nil)
	for range queueSize + 10 {
		k.Track(context.Background(), "s1", domain.TrackingEvent{Type: "x"})
	}
	assert.Len(t, k.queue, queueSize)
}

func TestKafkaTracker_WriteErrorIsSwallowed(t *testing.T) {
	w := &mockWriter{err: errors.New("broker down")}
	k := NewKafkaTracker(w, nil)
	k.Track(context.Background(), "s1", domain.TrackingEvent{Type: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NotPanics(t, func() { k.Run(ctx) })
	assert.Empty(t, w.messages())
}

type countingTracker struct{ n int }

func (c *countingTracker) Track(context.Context, string, domain.TrackingEvent) { c.n++ }

func TestMultiTracker(t *testing.T) {
	a, b := &countingTracker{}, &countingTracker{}
	MultiTracker{a, NopTracker{}, b}.Track(context.Background(), "s1", domain.TrackingEvent{Type: "x"})
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

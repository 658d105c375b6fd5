package analytics

import (
	"context"

	"github.com/fjod/go_cart/storefront/domain"
	"go.uber.org/zap"
)

// Tracker records telemetry. Tracking never fails the caller: errors are
// logged and dropped.
type Tracker interface {
	Track(ctx context.Context, sessionID string, ev domain.TrackingEvent)
}

type TrackAPI interface {
	TrackPageView(ctx context.Context, pageURL string) error
	TrackSearch(ctx context.Context, query string, resultsCount int) error
	TrackConversion(ctx context.Context, eventType string, data map[string]any) error
}

// APITracker forwards events to the commerce API's tracking endpoints.
type APITracker struct {
	api TrackAPI
	log *zap.Logger
}

func NewAPITracker(api TrackAPI, log *zap.Logger) *APITracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &APITracker{api: api, log: log}
}

func (t *APITracker) Track(ctx context.Context, sessionID string, ev domain.TrackingEvent) {
	var err error
	switch ev.Type {
	case domain.EventPageView:
		url, _ := ev.Data["url"].(string)
		err = t.api.TrackPageView(ctx, url)
	case domain.EventSearch:
		query, _ := ev.Data["query"].(string)
		err = t.api.TrackSearch(ctx, query, intValue(ev.Data["results_count"]))
	default:
		err = t.api.TrackConversion(ctx, ev.Type, ev.Data)
	}
	if err != nil {
		t.log.Debug("tracking failed",
			zap.String("session_id", sessionID),
			zap.String("event_type", ev.Type),
			zap.Error(err))
	}
}

// MultiTracker fans an event out to every tracker.
type MultiTracker []Tracker

func (m MultiTracker) Track(ctx context.Context, sessionID string, ev domain.TrackingEvent) {
	for _, t := range m {
		t.Track(ctx, sessionID, ev)
	}
}

type NopTracker struct{}

func (NopTracker) Track(context.Context, string, domain.TrackingEvent) {}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

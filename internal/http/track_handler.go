package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
)

const defaultTrackTimeout = 5 * time.Second

// trackAsync delivers ev off the request path. The delivery outlives the
// request but is bounded by timeout.
func trackAsync(parent context.Context, svc *Services, ev domain.TrackingEvent, timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultTrackTimeout
	}
	sessionID := getSessionID(parent)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeout)
	go func() {
		defer cancel()
		svc.Tracker.Track(ctx, sessionID, ev)
	}()
}

type TrackHandler struct {
	timeout time.Duration
}

func NewTrackHandler(timeout time.Duration) *TrackHandler {
	if timeout <= 0 {
		timeout = defaultTrackTimeout
	}
	return &TrackHandler{timeout: timeout}
}

// Track accepts a browser event and answers 202 before it is delivered.
// Delivery failures never reach the client.
func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	var ev domain.TrackingEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if ev.Type == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "event_type is required")
		return
	}

	trackAsync(r.Context(), servicesFrom(r.Context()), ev, h.timeout)
	w.WriteHeader(http.StatusAccepted)
}

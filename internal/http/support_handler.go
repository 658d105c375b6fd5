package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
)

type SupportHandler struct {
	timeout time.Duration
}

func NewSupportHandler(timeout time.Duration) *SupportHandler {
	return &SupportHandler{timeout: timeout}
}

type ReplyRequestDTO struct {
	Message string `json:"message"`
}

type VoteRequestDTO struct {
	Helpful bool `json:"helpful"`
}

func (h *SupportHandler) Tickets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	list, err := servicesFrom(ctx).Support.Tickets(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *SupportHandler) OpenTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var in domain.TicketInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ticket, err := servicesFrom(ctx).Support.OpenTicket(ctx, in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ticket)
}

func (h *SupportHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	ticketID, ok := idParam(w, r, "ticket_id")
	if !ok {
		return
	}
	var in domain.TicketInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ticket, err := servicesFrom(ctx).Support.UpdateTicket(ctx, ticketID, in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

func (h *SupportHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	ticketID, ok := idParam(w, r, "ticket_id")
	if !ok {
		return
	}
	var req ReplyRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	msg, err := servicesFrom(ctx).Support.Reply(ctx, ticketID, req.Message)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (h *SupportHandler) FAQs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	list, err := servicesFrom(ctx).Support.FAQs(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Reviews lists reviews, optionally of one product (?product=).
func (h *SupportHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	productID, err := intQuery(r, "product")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	list, err := servicesFrom(ctx).Support.Reviews(ctx, int64(productID))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *SupportHandler) WriteReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var in domain.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	review, err := servicesFrom(ctx).Support.WriteReview(ctx, in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

func (h *SupportHandler) Vote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	reviewID, ok := idParam(w, r, "review_id")
	if !ok {
		return
	}
	var req VoteRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := servicesFrom(ctx).Support.Vote(ctx, reviewID, req.Helpful); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"context"
	"net/http"
	"time"
)

type CartHandler struct {
	timeout time.Duration
}

func NewCartHandler(timeout time.Duration) *CartHandler {
	return &CartHandler{timeout: timeout}
}

type AddItemRequestDTO struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	c, err := servicesFrom(ctx).Cart.GetCart(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.VariantID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id must be positive")
		return
	}

	svc := servicesFrom(ctx)
	if err := svc.Cart.AddItem(ctx, req.VariantID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	h.respondCart(ctx, w, svc, http.StatusCreated)
}

// UpdateQuantity goes through the editor: a quantity below 1 removes the
// row and a row already being changed answers 409.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	itemID, ok := idParam(w, r, "item_id")
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	svc := servicesFrom(ctx)
	if err := svc.Editor.ChangeQuantity(ctx, itemID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	h.respondCart(ctx, w, svc, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	itemID, ok := idParam(w, r, "item_id")
	if !ok {
		return
	}
	svc := servicesFrom(ctx)
	if err := svc.Editor.Remove(ctx, itemID); err != nil {
		handleError(w, err)
		return
	}
	h.respondCart(ctx, w, svc, http.StatusOK)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	svc := servicesFrom(ctx)
	if err := svc.Cart.Clear(ctx); err != nil {
		handleError(w, err)
		return
	}
	h.respondCart(ctx, w, svc, http.StatusOK)
}

// respondCart answers with the refetched cart, since mutations drop the
// cached copy.
func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, svc *Services, status int) {
	c, err := svc.Cart.GetCart(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, status, c)
}

package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	timeout time.Duration
}

func NewProductHandler(timeout time.Duration) *ProductHandler {
	return &ProductHandler{timeout: timeout}
}

// List passes the catalog filters through. A non-empty search is tracked
// with its result count.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	f, err := productFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	svc := servicesFrom(ctx)
	page, err := svc.Catalog.Products(ctx, f)
	if err != nil {
		handleError(w, err)
		return
	}
	if f.Search != "" {
		trackAsync(ctx, svc, domain.TrackingEvent{
			Type: domain.EventSearch,
			Data: map[string]any{"query": f.Search, "results_count": page.Count},
		}, h.timeout)
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	svc := servicesFrom(ctx)
	product, err := svc.Catalog.Product(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	trackAsync(ctx, svc, domain.TrackingEvent{
		Type: domain.EventPageView,
		Data: map[string]any{"url": "/products/" + product.Slug},
	}, h.timeout)
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	list, err := servicesFrom(ctx).Catalog.Categories(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func productFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	page, err := intQuery(r, "page")
	if err != nil {
		return domain.ProductFilter{}, err
	}
	return domain.ProductFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		Category:   q.Get("category"),
		MinPrice:   q.Get("min_price"),
		MaxPrice:   q.Get("max_price"),
		IsFeatured: flag(q.Get("is_featured")),
		InStock:    flag(q.Get("in_stock")),
		Ordering:   q.Get("ordering"),
		Page:       page,
	}, nil
}

func flag(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

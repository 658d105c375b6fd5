package http

import (
	"net/http"
	"time"
)

// AdminHandler serves the inventory and analytics dashboards. Routes are
// mounted behind RequireAdmin.
type AdminHandler struct {
	timeout time.Duration
}

func NewAdminHandler(timeout time.Duration) *AdminHandler {
	return &AdminHandler{timeout: timeout}
}

func (h *AdminHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	dash, err := servicesFrom(ctx).Inventory.Dashboard(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dash)
}

func (h *AdminHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	alertID, ok := idParam(w, r, "alert_id")
	if !ok {
		return
	}
	if err := servicesFrom(ctx).Inventory.Acknowledge(ctx, alertID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	days, err := intQuery(r, "days")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	sum, err := servicesFrom(ctx).Reports.Summary(ctx, days)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (h *AdminHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	days, limit, ok := daysAndLimit(w, r)
	if !ok {
		return
	}
	list, err := servicesFrom(ctx).Reports.TopProducts(ctx, days, limit)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) TopCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	days, limit, ok := daysAndLimit(w, r)
	if !ok {
		return
	}
	list, err := servicesFrom(ctx).Reports.TopCategories(ctx, days, limit)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) RevenueTrend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	days, err := intQuery(r, "days")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	points, err := servicesFrom(ctx).Reports.RevenueTrend(ctx, days)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

func daysAndLimit(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	days, err := intQuery(r, "days")
	if err == nil {
		var limit int
		if limit, err = intQuery(r, "limit"); err == nil {
			return days, limit, true
		}
	}
	respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	return 0, 0, false
}

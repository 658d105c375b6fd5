package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/domain"
)

type AuthHandler struct {
	timeout time.Duration
}

func NewAuthHandler(timeout time.Duration) *AuthHandler {
	return &AuthHandler{timeout: timeout}
}

type UserResponseDTO struct {
	User *domain.User `json:"user"`
}

// Me answers 200 with a null user for anonymous sessions.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	user, err := servicesFrom(ctx).Auth.CurrentUser(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, UserResponseDTO{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var creds domain.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	if creds.Email == "" || creds.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}
	user, err := servicesFrom(ctx).Auth.Login(ctx, creds)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, UserResponseDTO{User: user})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	var reg domain.Registration
	if !decodeJSON(w, r, &reg) {
		return
	}
	user, err := servicesFrom(ctx).Auth.Register(ctx, reg)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, UserResponseDTO{User: user})
}

// Logout also ends any checkout in progress.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.timeout)
	defer cancel()

	svc := servicesFrom(ctx)
	if err := svc.Auth.Logout(ctx); err != nil {
		handleError(w, err)
		return
	}
	svc.Checkout.End()
	w.WriteHeader(http.StatusNoContent)
}

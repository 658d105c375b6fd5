package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionIDKey
	servicesKey
)

const sessionValueID = "sid"

// RequestIDMiddleware adds a request id to each request and forwards it to
// the commerce API.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = api.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", getRequestID(r.Context())))
		})
	}
}

// SessionMiddleware gives every browser a session id kept in a signed
// cookie, then attaches the session's services.
func SessionMiddleware(store sessions.Store, name string, registry *Registry, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, name)
			if err != nil {
				// tampered or rotated-key cookie: start a new session
				log.Debug("session cookie rejected", zap.Error(err))
			}
			if sess == nil {
				sess = sessions.NewSession(store, name)
			}

			id, _ := sess.Values[sessionValueID].(string)
			if id == "" {
				id = uuid.NewString()
				sess.Values[sessionValueID] = id
				if err := sess.Save(r, w); err != nil {
					log.Error("failed to save session", zap.Error(err))
					respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
					return
				}
			}

			svc, err := registry.Get(id)
			if err != nil {
				log.Error("failed to build session services", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "internal_error", "session unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, id)
			ctx = context.WithValue(ctx, servicesKey, svc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects sessions whose user lacks the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		svc := servicesFrom(r.Context())
		user, err := svc.Auth.CurrentUser(r.Context())
		if err != nil {
			handleError(w, err)
			return
		}
		if user == nil {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
			return
		}
		if !user.IsAdmin() {
			respondError(w, http.StatusForbidden, "permission_denied", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func getSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

func servicesFrom(ctx context.Context) *Services {
	svc, _ := ctx.Value(servicesKey).(*Services)
	return svc
}

// NewCookieStore builds the session cookie store.
func NewCookieStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

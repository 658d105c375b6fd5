package auth

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/domain"
	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type API interface {
	Me(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context) error
}

type cachedUser struct {
	User *domain.User `json:"user"`
}

// State is the signed-in user of one session.
type State struct {
	api   API
	cache cache.QueryCache
	key   string
	log   *zap.Logger
	sfg   singleflight.Group
}

func NewState(api API, qc cache.QueryCache, sessionID string, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{
		api:   api,
		cache: qc,
		key:   cache.UserKey(sessionID),
		log:   log.With(zap.String("session_id", sessionID)),
	}
}

// CurrentUser returns the signed-in user. An anonymous session is a nil
// user, not an error.
func (s *State) CurrentUser(ctx context.Context) (*domain.User, error) {
	var entry cachedUser
	err := s.cache.Get(ctx, s.key, &entry)
	if err == nil {
		return entry.User, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache get error", zap.Error(err))
	}

	v, err, _ := s.sfg.Do(s.key, func() (any, error) {
		u, err := s.api.Me(ctx)
		if api.IsUnauthorized(err) {
			u, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		s.remember(ctx, u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

func (s *State) IsAdmin(ctx context.Context) (bool, error) {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

func (s *State) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	u, err := s.api.Login(ctx, creds)
	if err != nil {
		s.log.Info("login failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}
	s.remember(ctx, u)
	return u, nil
}

func (s *State) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	u, err := s.api.Register(ctx, reg)
	if err != nil {
		s.log.Info("registration failed", zap.String("email", reg.Email), zap.Error(err))
		return nil, err
	}
	s.remember(ctx, u)
	return u, nil
}

// Logout signs out and drops every cached query of the session.
func (s *State) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		return err
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Error("cache clear error", zap.Error(err))
	}
	return nil
}

func (s *State) remember(ctx context.Context, u *domain.User) {
	if err := s.cache.Set(ctx, s.key, cachedUser{User: u}); err != nil {
		s.log.Warn("cache set error", zap.Error(err))
	}
}

package cache

import (
	"context"
	"errors"
	"fmt"
)

// QueryCache holds the query results of one browser session. Values are
// stored encoded, so a caller never shares memory with the cache.
type QueryCache interface {
	// Get decodes the value under key into dst, or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	// Invalidate drops key so the next Get misses and the owner refetches.
	Invalidate(ctx context.Context, key string) error
	// Clear drops every query of the session.
	Clear(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "storefront:session:"

// SessionPrefix is the key namespace of one session.
func SessionPrefix(sessionID string) string {
	return fmt.Sprintf("%s%s:", keyPrefix, sessionID)
}

func CartKey(sessionID string) string {
	return SessionPrefix(sessionID) + "cart"
}

func DraftKey(sessionID string) string {
	return SessionPrefix(sessionID) + "draft"
}

func UserKey(sessionID string) string {
	return SessionPrefix(sessionID) + "user"
}

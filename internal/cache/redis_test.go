package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts miniredis and returns a cache scoped to sessionID.
func setupTestRedis(t *testing.T, sessionID string) (*RedisCache, *miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, sessionID), mr, client
}

func testCart() *domain.Cart {
	return &domain.Cart{
		ID: 1,
		Items: []domain.CartItem{
			{ID: 10, Quantity: 2, LineTotal: decimal.RequireFromString("20.00")},
			{ID: 11, Quantity: 1, LineTotal: decimal.RequireFromString("5.50")},
		},
		Totals: domain.Totals{Subtotal: decimal.RequireFromString("25.50"), ItemCount: 3},
	}
}

func TestRedisGet_Success(t *testing.T) {
	c, mr, _ := setupTestRedis(t, "s1")

	require.NoError(t, mr.Set(CartKey("s1"), `{"id":1,"items":[{"id":10,"quantity":2}],"totals":{"subtotal":"20","item_count":2}}`))

	var cart domain.Cart
	require.NoError(t, c.Get(context.Background(), CartKey("s1"), &cart))
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, int64(10), cart.Items[0].ID)
	assert.True(t, cart.Totals.Subtotal.Equal(decimal.NewFromInt(20)))
}

func TestRedisGet_CacheMiss(t *testing.T) {
	c, _, _ := setupTestRedis(t, "s1")

	var cart domain.Cart
	assert.ErrorIs(t, c.Get(context.Background(), CartKey("s1"), &cart), ErrCacheMiss)
}

func TestRedisGet_InvalidJSON(t *testing.T) {
	c, mr, _ := setupTestRedis(t, "s1")
	require.NoError(t, mr.Set(CartKey("s1"), `{"id":1,"ite`))

	var cart domain.Cart
	assert.ErrorContains(t, c.Get(context.Background(), CartKey("s1"), &cart), "unmarshal")
}

func TestRedisSet_RoundTripAndTTL(t *testing.T) {
	c, mr, _ := setupTestRedis(t, "s1")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, CartKey("s1"), testCart()))

	ttl := mr.TTL(CartKey("s1"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)

	var got domain.Cart
	require.NoError(t, c.Get(ctx, CartKey("s1"), &got))
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "25.5", got.Totals.Subtotal.String())
}

func TestRedisInvalidate(t *testing.T) {
	c, mr, _ := setupTestRedis(t, "s1")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, CartKey("s1"), testCart()))
	require.NoError(t, c.Invalidate(ctx, CartKey("s1")))
	assert.False(t, mr.Exists(CartKey("s1")))

	// invalidating an absent key is not an error
	assert.NoError(t, c.Invalidate(ctx, CartKey("s1")))
}

func TestRedisClear_OnlyOwnSession(t *testing.T) {
	c, mr, client := setupTestRedis(t, "s1")
	other := NewRedisCache(client, "s2")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, CartKey("s1"), testCart()))
	require.NoError(t, c.Set(ctx, DraftKey("s1"), domain.OrderDraft{ID: 3}))
	require.NoError(t, c.Set(ctx, UserKey("s1"), domain.User{ID: 7}))
	require.NoError(t, other.Set(ctx, CartKey("s2"), testCart()))

	require.NoError(t, c.Clear(ctx))

	assert.False(t, mr.Exists(CartKey("s1")))
	assert.False(t, mr.Exists(DraftKey("s1")))
	assert.False(t, mr.Exists(UserKey("s1")))
	assert.True(t, mr.Exists(CartKey("s2")))
}

func TestRedis_ServerDown(t *testing.T) {
	c, mr, _ := setupTestRedis(t, "s1")
	mr.Close()

	var cart domain.Cart
	err := c.Get(context.Background(), CartKey("s1"), &cart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

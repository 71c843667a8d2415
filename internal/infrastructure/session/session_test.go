package session

import (
	"context"
	"testing"
	"time"

	"solemate-backend/internal/domain"
	memcache "solemate-backend/internal/infrastructure/cache"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data map[string]any
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]any{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = value
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v.([]byte)), nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func pending() domain.PendingCoupon {
	return domain.PendingCoupon{
		CouponID:  "c-1",
		Code:      "TEN",
		Discount:  decimal.NewFromInt(150),
		AppliedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func exerciseStore(t *testing.T, store domain.CheckoutSessionStore) {
	t.Helper()
	ctx := context.Background()

	got, err := store.GetPendingCoupon(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.SetPendingCoupon(ctx, "u1", pending()))
	got, err = store.GetPendingCoupon(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "TEN", got.Code)
	assert.True(t, got.Discount.Equal(decimal.NewFromInt(150)))
	assert.True(t, got.AppliedAt.Equal(pending().AppliedAt))

	other, err := store.GetPendingCoupon(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, store.ClearPendingCoupon(ctx, "u1"))
	require.NoError(t, store.ClearPendingCoupon(ctx, "u1"))
	got, err = store.GetPendingCoupon(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(memcache.NewMemoryCache(time.Minute, time.Minute), time.Minute))
}

func TestRedisStore(t *testing.T) {
	mock := newMockCmdable()
	store := &RedisStore{store: mock, ttl: 2 * time.Hour}
	exerciseStore(t, store)

	require.NoError(t, store.SetPendingCoupon(context.Background(), "u9", pending()))
	assert.Equal(t, 2*time.Hour, mock.ttls["solemate:checkout:coupon:u9"])
	assert.NoError(t, store.Ping(context.Background()))
}

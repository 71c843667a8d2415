package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solemate-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "solemate"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStore shares checkout sessions across API replicas.
type RedisStore struct {
	store cmdable
	ttl   time.Duration
}

// NewRedisClient parses url, connects and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{store: client, ttl: ttl}
}

func pendingCouponKey(userID string) string {
	return fmt.Sprintf("%s:%s%s", keyNamespace, pendingCouponPrefix, userID)
}

func (s *RedisStore) GetPendingCoupon(ctx context.Context, userID string) (*domain.PendingCoupon, error) {
	raw, err := s.store.Get(ctx, pendingCouponKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending coupon: %w", err)
	}
	var pending domain.PendingCoupon
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("decode pending coupon: %w", err)
	}
	return &pending, nil
}

func (s *RedisStore) SetPendingCoupon(ctx context.Context, userID string, coupon domain.PendingCoupon) error {
	raw, err := json.Marshal(coupon)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, pendingCouponKey(userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set pending coupon: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearPendingCoupon(ctx context.Context, userID string) error {
	if err := s.store.Del(ctx, pendingCouponKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear pending coupon: %w", err)
	}
	return nil
}

// Ping exposes the health-check surface.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

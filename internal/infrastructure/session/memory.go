package session

import (
	"context"
	"time"

	"solemate-backend/internal/domain"
	"solemate-backend/pkg/cache"
)

const pendingCouponPrefix = "checkout:coupon:"

// MemoryStore keeps checkout sessions in the process cache. Sessions do not survive a restart
// and are not shared between replicas; use RedisStore for multi-instance deployments.
type MemoryStore struct {
	cache cache.CacheService
	ttl   time.Duration
}

func NewMemoryStore(c cache.CacheService, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: c, ttl: ttl}
}

func (s *MemoryStore) GetPendingCoupon(_ context.Context, userID string) (*domain.PendingCoupon, error) {
	v, ok := s.cache.Get(pendingCouponPrefix + userID)
	if !ok {
		return nil, nil
	}
	pending, ok := v.(domain.PendingCoupon)
	if !ok {
		return nil, nil
	}
	return &pending, nil
}

func (s *MemoryStore) SetPendingCoupon(_ context.Context, userID string, coupon domain.PendingCoupon) error {
	s.cache.Set(pendingCouponPrefix+userID, coupon, s.ttl)
	return nil
}

func (s *MemoryStore) ClearPendingCoupon(_ context.Context, userID string) error {
	s.cache.Delete(pendingCouponPrefix + userID)
	return nil
}

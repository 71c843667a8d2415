package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/utils"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key (client IP or user) and evicts idle keys.
type RateLimiter struct {
	buckets       map[string]*bucket
	mu            sync.Mutex
	limit         rate.Limit
	burst         int
	cleanupPeriod time.Duration
	idleTTL       time.Duration
	now           func() time.Time
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRateLimiter starts a limiter allowing limit requests/second with the given burst.
// Keys idle for longer than idleTTL are dropped every cleanupPeriod until Shutdown.
func NewRateLimiter(ctx context.Context, limit rate.Limit, burst int, cleanupPeriod, idleTTL time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:       make(map[string]*bucket),
		limit:         limit,
		burst:         burst,
		cleanupPeriod: cleanupPeriod,
		idleTTL:       idleTTL,
		now:           time.Now,
	}
	rl.ctx, rl.cancel = context.WithCancel(ctx)
	go rl.cleanupLoop()
	return rl
}

// Middleware limits every request by client IP.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return rl.guard(next, func(r *http.Request) string {
			return "ip:" + getClientIP(r)
		})
	}
}

// Limit limits a single route per authenticated user, falling back to the client IP.
// Mount it inside AuthMiddleware for checkout and payment endpoints.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return rl.guard(next, func(r *http.Request) string {
		if user := UserFromContext(r.Context()); user != nil {
			return "user:" + user.ID
		}
		return "ip:" + getClientIP(r)
	})
}

func (rl *RateLimiter) guard(next http.Handler, keyOf func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(keyOf(r)) {
			w.Header().Set("Retry-After", rl.retryAfter())
			utils.WriteError(r.Context(), w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// retryAfter is the time, in whole seconds, for one token to refill.
func (rl *RateLimiter) retryAfter() string {
	if rl.limit <= 0 || rl.limit == rate.Inf {
		return "1"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(rl.limit))))
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idleTTL)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Shutdown stops the eviction goroutine.
func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}

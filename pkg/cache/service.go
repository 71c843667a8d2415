package cache

import "time"

// CacheService is the in-process cache used for computed read models and session data.
type CacheService interface {
	// Get returns the value and true when key is present and unexpired.
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(prefix string)
}

package termcache

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-quickattributes/cache"
)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the lifetime of cached entries. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithNamespace sets the key prefix shared by every entry.
func WithNamespace(namespace string) Option {
	return func(c *Cache) {
		if namespace != "" {
			c.namespace = namespace
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithKeySerializer replaces the default reflection based serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(c *Cache) {
		if serializer != nil {
			c.serializer = serializer
		}
	}
}

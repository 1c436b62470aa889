package cache

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-quickattributes/internal/cacheinfra"
)

// Supported KVStore backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultNamespace prefixes every key written by the term cache.
const DefaultNamespace = "qa_terms:"

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend            string        `mapstructure:"backend"`
	Namespace          string        `mapstructure:"namespace"`
	TTL                time.Duration `mapstructure:"ttl"`
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
	RedisURL           string        `mapstructure:"redis_url"`
}

// DefaultConfig returns a Config using the in-process backend and a one hour TTL.
func DefaultConfig() Config {
	cfg := convertFromInternal(cacheinfra.DefaultConfig())
	cfg.Backend = BackendMemory
	cfg.Namespace = DefaultNamespace
	return cfg
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMemory, BackendRedis)),
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RedisURL, validation.When(c.Backend == BackendRedis, validation.Required)),
	)
	if err != nil {
		return err
	}

	if c.Backend == BackendMemory {
		return c.toInternal().Validate()
	}
	return nil
}

// NewKVStore constructs the store selected by cfg.Backend. For the redis
// backend an existing client may be shared; when client is nil one is dialed
// from cfg.RedisURL.
func NewKVStore(ctx context.Context, cfg Config, client redis.UniversalClient) (KVStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendRedis:
		if client == nil {
			dialed, err := cacheinfra.DialRedis(ctx, cfg.RedisURL)
			if err != nil {
				return nil, err
			}
			client = dialed
		}
		return cacheinfra.NewRedisStore(client), nil
	default:
		return cacheinfra.NewSturdycStore(cfg.toInternal())
	}
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}

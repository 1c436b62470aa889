package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-quickattributes/cache"
	"github.com/goliatone/go-quickattributes/finder"
	"github.com/goliatone/go-quickattributes/internal/cacheinfra"
	"github.com/goliatone/go-quickattributes/internal/config"
	"github.com/goliatone/go-quickattributes/label"
	"github.com/goliatone/go-quickattributes/settings"
	"github.com/goliatone/go-quickattributes/termcache"
	"github.com/goliatone/go-quickattributes/termstore"
)

// Container wires the quick-finder pipeline from a Config. It owns the
// connections it opens and releases them on Close.
type Container struct {
	config        config.Config
	logger        *slog.Logger
	redis         redis.UniversalClient
	db            *bun.DB
	kv            cache.KVStore
	keySerializer cache.KeySerializer
	termStore     *termstore.Store
	settings      *settings.RecordStore
	termCache     *termcache.Cache
	translator    label.TranslationProvider
	finder        *finder.Finder

	closers []func() error
}

// Option customizes container construction.
type Option func(*Container)

// WithRedisClient shares an existing client instead of dialing redis_url.
func WithRedisClient(client redis.UniversalClient) Option {
	return func(c *Container) {
		c.redis = client
	}
}

// WithDB uses an open database instead of opening database.dsn.
func WithDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// NewContainer builds every component described by cfg. The settings save
// hook that flushes the term cache is registered here.
func NewContainer(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		config:        cfg,
		logger:        logger,
		keySerializer: cache.NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.init(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDefaults builds a container from config.Default.
func NewContainerWithDefaults(ctx context.Context) (*Container, error) {
	return NewContainer(ctx, config.Default(), nil)
}

func (c *Container) init(ctx context.Context) error {
	cfg := c.config

	if c.redis == nil && cfg.RedisURL != "" && c.needsRedis() {
		client, err := cacheinfra.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("dial redis: %w", err)
		}
		c.redis = client
		c.closers = append(c.closers, client.Close)
	}

	if c.db == nil {
		db, err := termstore.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return err
		}
		c.db = db
		c.closers = append(c.closers, db.Close)
	}
	if cfg.Database.AutoMigrate {
		if err := termstore.CreateSchema(ctx, c.db); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	c.termStore = termstore.New(c.db, c.logger)

	kv, err := c.newKVStore(ctx)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	c.kv = kv

	c.termCache = termcache.New(c.termStore, c.termStore, c.kv,
		termcache.WithTTL(cfg.Cache.TTL),
		termcache.WithNamespace(cfg.Cache.Namespace),
		termcache.WithKeySerializer(c.keySerializer),
		termcache.WithLogger(c.logger),
	)

	storeOpts := []settings.Option{
		settings.WithTaxonomies(c.termStore),
		settings.WithLogger(c.logger),
	}
	switch cfg.Settings.Backend {
	case config.SettingsRedis:
		if c.redis == nil {
			return errors.New("settings backend redis requires redis_url")
		}
		c.settings = settings.NewRedisStore(c.redis, cfg.Settings.Prefix, storeOpts...)
	case config.SettingsSQL:
		backend := termstore.NewOptionBackend(c.db, cfg.Settings.Prefix+settings.RecordKey)
		c.settings = settings.NewRecordStore(backend, storeOpts...)
	default:
		c.settings = settings.NewMemoryStore(storeOpts...)
	}
	c.settings.OnSave(c.termCache.SettingsSaved)

	switch cfg.Translation {
	case config.TranslationSQL:
		c.translator = c.termStore.Translator()
	default:
		c.translator = label.NoopTranslator{}
	}

	c.finder = finder.New(c.settings, c.termStore, c.termCache, cfg.Sites,
		finder.WithTranslator(c.translator),
		finder.WithDefaultLanguage(cfg.DefaultLanguage),
		finder.WithLogger(c.logger),
	)
	return nil
}

func (c *Container) needsRedis() bool {
	return c.config.Settings.Backend == config.SettingsRedis ||
		(c.config.Cache.Backend == cache.BackendRedis && c.config.Cache.RedisURL == c.config.RedisURL)
}

// newKVStore shares the container client when the cache points at the same
// Redis, otherwise the cache dials its own.
func (c *Container) newKVStore(ctx context.Context) (cache.KVStore, error) {
	cfg := c.config.Cache
	if cfg.Backend != cache.BackendRedis {
		return cache.NewKVStore(ctx, cfg, nil)
	}

	if c.redis != nil && cfg.RedisURL == c.config.RedisURL {
		return cache.NewKVStore(ctx, cfg, c.redis)
	}

	client, err := cacheinfra.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client.Close)
	return cache.NewKVStore(ctx, cfg, client)
}

// Close releases connections opened by the container, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

// Logger returns the container logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// KVStore returns the term cache backend.
func (c *Container) KVStore() cache.KVStore {
	return c.kv
}

// KeySerializer returns the serializer used for term cache keys.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// DB returns the term database.
func (c *Container) DB() *bun.DB {
	return c.db
}

// TermStore returns the SQL term store.
func (c *Container) TermStore() *termstore.Store {
	return c.termStore
}

// Settings returns the settings store.
func (c *Container) Settings() *settings.RecordStore {
	return c.settings
}

// TermCache returns the term cache.
func (c *Container) TermCache() *termcache.Cache {
	return c.termCache
}

// Translator returns the configured translation provider.
func (c *Container) Translator() label.TranslationProvider {
	return c.translator
}

// Finder returns the column assembler.
func (c *Container) Finder() *finder.Finder {
	return c.finder
}

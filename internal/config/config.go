// Package config holds the quickattrs runtime configuration.
package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/goliatone/go-quickattributes/cache"
	"github.com/goliatone/go-quickattributes/filterurl"
	"github.com/goliatone/go-quickattributes/internal/logging"
	"github.com/goliatone/go-quickattributes/termstore"
)

// EnvPrefix prefixes environment overrides, e.g. QUICKATTRS_CACHE_BACKEND.
const EnvPrefix = "QUICKATTRS"

// Settings store backends.
const (
	SettingsSQL    = "sql"
	SettingsMemory = "memory"
	SettingsRedis  = "redis"
)

// Translation providers.
const (
	TranslationNone = "none"
	TranslationSQL  = "sql"
)

// Config is the full runtime configuration.
type Config struct {
	DefaultLanguage string             `mapstructure:"default_language"`
	Translation     string             `mapstructure:"translation"`
	RedisURL        string             `mapstructure:"redis_url"`
	Cache           cache.Config       `mapstructure:"cache"`
	Database        DatabaseConfig     `mapstructure:"database"`
	Settings        SettingsConfig     `mapstructure:"settings"`
	Logging         LoggingConfig      `mapstructure:"logging"`
	Sites           filterurl.SiteURLs `mapstructure:"sites"`
}

// DatabaseConfig selects the SQL term store. AutoMigrate creates missing
// tables on startup.
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// SettingsConfig selects where the settings record lives.
type SettingsConfig struct {
	Backend string `mapstructure:"backend"`
	Prefix  string `mapstructure:"prefix"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DefaultLanguage: "en",
		Translation:     TranslationNone,
		Cache:           cache.DefaultConfig(),
		Database: DatabaseConfig{
			Driver:      termstore.DriverSQLite,
			DSN:         "file:quickattrs.db?cache=shared",
			AutoMigrate: true,
		},
		Settings: SettingsConfig{
			Backend: SettingsSQL,
			Prefix:  "quickattrs:",
		},
		Logging: LoggingConfig{
			Level:  logging.LevelInfo,
			Format: logging.FormatJSON,
		},
		Sites: filterurl.SiteURLs{
			Default: filterurl.Site{ShopURL: "/shop/"},
		},
	}
}

// SetDefaults registers Default with v and wires environment overrides.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("default_language", d.DefaultLanguage)
	v.SetDefault("translation", d.Translation)
	v.SetDefault("redis_url", d.RedisURL)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.namespace", d.Cache.Namespace)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("cache.num_shards", d.Cache.NumShards)
	v.SetDefault("cache.eviction_percentage", d.Cache.EvictionPercentage)
	v.SetDefault("cache.eviction_interval", d.Cache.EvictionInterval)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("settings.backend", d.Settings.Backend)
	v.SetDefault("settings.prefix", d.Settings.Prefix)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("sites.default.shop_url", d.Sites.Default.ShopURL)
	v.SetDefault("sites.default.category_pattern", d.Sites.Default.CategoryPattern)

	v.SetEnvPrefix(EnvPrefix)
	// QUICKATTRS_CACHE_BACKEND for cache.backend
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it. A top level redis_url is
// used by the cache when it has none of its own.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Cache.RedisURL == "" {
		cfg.Cache.RedisURL = cfg.RedisURL
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Translation, validation.Required, validation.In(TranslationNone, TranslationSQL)),
		validation.Field(&c.Cache),
		validation.Field(&c.Database),
		validation.Field(&c.Settings),
		validation.Field(&c.Logging),
		validation.Field(&c.RedisURL, validation.When(c.Settings.Backend == SettingsRedis, validation.Required)),
	)
}

// Validate checks the database selection.
func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Driver, validation.Required, validation.In(termstore.DriverSQLite, termstore.DriverPostgres)),
		validation.Field(&d.DSN, validation.Required),
	)
}

// Validate checks the settings store selection.
func (s SettingsConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Backend, validation.Required, validation.In(SettingsSQL, SettingsMemory, SettingsRedis)),
	)
}

// Validate checks the logger options.
func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.Required, validation.By(func(value any) error {
			if _, ok := logging.ParseLevel(value.(string)); !ok {
				return validation.NewError("validation_log_level", "must be one of debug, info, warn, error")
			}
			return nil
		})),
		validation.Field(&l.Format, validation.In(logging.FormatJSON, logging.FormatText)),
	)
}

package termcache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-quickattributes/cache"
	"github.com/goliatone/go-quickattributes/settings"
	"github.com/goliatone/go-quickattributes/terms"
)

// DefaultTTL bounds how long a term list is served without a store query.
const DefaultTTL = time.Hour

// keyMethod names the cached operation in serialized keys.
const keyMethod = "terms"

// Entry is the cached value for one key.
type Entry struct {
	Key       string         `msgpack:"key"`
	Terms     []terms.Record `msgpack:"terms"`
	ExpiresAt time.Time      `msgpack:"expires_at"`
}

// Cache serves ordered term lists for a taxonomy under a settings snapshot
// and language, backed by a KVStore.
type Cache struct {
	store      terms.Store
	registry   terms.Registry
	kv         cache.KVStore
	serializer cache.KeySerializer
	namespace  string
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
	keyIndex   *sync.Map // keys written by this process
}

// New creates a Cache in front of store.
func New(store terms.Store, registry terms.Registry, kv cache.KVStore, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		registry:   registry,
		kv:         kv,
		serializer: cache.NewDefaultKeySerializer(),
		namespace:  cache.DefaultNamespace,
		ttl:        DefaultTTL,
		now:        time.Now,
		logger:     slog.Default(),
		keyIndex:   &sync.Map{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Key returns the cache key for a request.
func (c *Cache) Key(taxonomy string, snap settings.Snapshot, language string) string {
	serialized := c.serializer.SerializeKey(keyMethod, taxonomy, language, snap)
	return c.namespace + cache.Digest(serialized)
}

// GetTerms returns the terms of taxonomy ordered per snap. It never fails:
// an unknown taxonomy or a store failure yields an empty list, and failures
// are not cached.
func (c *Cache) GetTerms(ctx context.Context, taxonomy string, snap settings.Snapshot, language string) []terms.Record {
	if taxonomy == "" || !c.registry.TaxonomyExists(ctx, taxonomy) {
		c.logger.DebugContext(ctx, "term cache skip", slog.String("taxonomy", taxonomy), slog.String("reason", "unregistered"))
		return []terms.Record{}
	}

	key := c.Key(taxonomy, snap, language)

	if records, ok := c.lookup(ctx, key); ok {
		c.logger.DebugContext(ctx, "term cache hit", slog.String("taxonomy", taxonomy), slog.String("key", key))
		return records
	}
	c.logger.DebugContext(ctx, "term cache miss", slog.String("taxonomy", taxonomy), slog.String("key", key))

	records, err := c.store.QueryTerms(ctx, QueryFor(taxonomy, snap))
	if err != nil {
		c.logger.WarnContext(ctx, "term store query failed",
			slog.String("taxonomy", taxonomy),
			slog.Any("error", terms.StoreError(err, taxonomy)))
		return []terms.Record{}
	}
	if records == nil {
		records = []terms.Record{}
	}

	c.write(ctx, key, records)
	return records
}

// QueryFor maps a snapshot ordering onto a store query: name and priority
// ascend, count descends.
func QueryFor(taxonomy string, snap settings.Snapshot) terms.Query {
	q := terms.Query{
		Taxonomy:  taxonomy,
		OrderBy:   terms.OrderByName,
		Direction: terms.Ascending,
		HideEmpty: snap.HideEmpty,
	}
	switch snap.OrderBy {
	case settings.OrderByPriority:
		q.OrderBy = terms.OrderByPriority
	case settings.OrderByCount:
		q.OrderBy = terms.OrderByCount
		q.Direction = terms.Descending
	}
	return q
}

func (c *Cache) lookup(ctx context.Context, key string) ([]terms.Record, bool) {
	data, found, err := c.kv.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "term cache read failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		c.logger.DebugContext(ctx, "term cache entry undecodable", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if entry.Key != key || !c.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	if entry.Terms == nil {
		entry.Terms = []terms.Record{}
	}
	return entry.Terms, true
}

func (c *Cache) write(ctx context.Context, key string, records []terms.Record) {
	entry := Entry{
		Key:       key,
		Terms:     records,
		ExpiresAt: c.now().Add(c.ttl),
	}
	data, err := msgpack.Marshal(&entry)
	if err != nil {
		c.logger.WarnContext(ctx, "term cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.kv.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "term cache write failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	c.trackKey(key)
}

// trackKey registers a cache key in the key index for later invalidation
func (c *Cache) trackKey(key string) {
	c.keyIndex.Store(key, struct{}{})
}

// InvalidateAll removes every entry under the namespace.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	err := c.kv.DeleteByPrefix(ctx, c.namespace)
	if err != nil {
		c.logger.WarnContext(ctx, "term cache prefix delete failed", slog.String("namespace", c.namespace), slog.Any("error", err))
	}

	var tracked []string
	c.keyIndex.Range(func(k, _ any) bool {
		if key, ok := k.(string); ok && strings.HasPrefix(key, c.namespace) {
			tracked = append(tracked, key)
		}
		return true
	})

	for _, key := range tracked {
		if delErr := c.kv.Delete(ctx, key); delErr != nil {
			c.logger.WarnContext(ctx, "term cache delete failed", slog.String("key", key), slog.Any("error", delErr))
			if err == nil {
				err = delErr
			}
			continue
		}
		c.keyIndex.Delete(key)
	}

	c.logger.DebugContext(ctx, "term cache invalidated", slog.Int("tracked", len(tracked)))
	return err
}

// SettingsSaved is a settings save hook that drops every entry.
func (c *Cache) SettingsSaved(ctx context.Context, _ settings.Snapshot) error {
	return c.InvalidateAll(ctx)
}

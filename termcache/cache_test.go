package termcache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-quickattributes/cache"
	"github.com/goliatone/go-quickattributes/settings"
	"github.com/goliatone/go-quickattributes/terms"
)

type fakeStore struct {
	mu      sync.Mutex
	terms   map[string][]terms.Record
	err     error
	queries []terms.Query
}

func (f *fakeStore) QueryTerms(_ context.Context, q terms.Query) ([]terms.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return append([]terms.Record(nil), f.terms[q.Taxonomy]...), nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeRegistry map[string]string

func (r fakeRegistry) TaxonomyExists(_ context.Context, taxonomy string) bool {
	_, ok := r[taxonomy]
	return ok
}

func (r fakeRegistry) AttributeTaxonomies(context.Context) ([]terms.Taxonomy, error) {
	out := make([]terms.Taxonomy, 0, len(r))
	for name, label := range r {
		out = append(out, terms.Taxonomy{Name: name, Label: label})
	}
	return out, nil
}

// mapKV is a KVStore whose prefix delete does nothing, like a backend that
// cannot enumerate keys.
type mapKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	deletes int
}

func newMapKV() *mapKV {
	return &mapKV{data: map[string][]byte{}}
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *mapKV) DeleteByPrefix(context.Context, string) error {
	return nil
}

func colorTerms() []terms.Record {
	return []terms.Record{
		{ID: 12, Name: "Red", Slug: "red", Taxonomy: "attr_color", Count: 9},
		{ID: 13, Name: "Blue", Slug: "blue", Taxonomy: "attr_color", Count: 4},
		{ID: 14, Name: "Green", Slug: "green", Taxonomy: "attr_color", Count: 0},
	}
}

func newFixture(t *testing.T, kv cache.KVStore, opts ...Option) (*Cache, *fakeStore) {
	t.Helper()
	store := &fakeStore{terms: map[string][]terms.Record{"attr_color": colorTerms()}}
	registry := fakeRegistry{"attr_color": "Color", "attr_size": "Size"}
	return New(store, registry, kv, opts...), store
}

func TestGetTermsUnregisteredTaxonomySkipsStore(t *testing.T) {
	c, store := newFixture(t, newMapKV())
	ctx := context.Background()

	for _, taxonomy := range []string{"", "attr_missing"} {
		got := c.GetTerms(ctx, taxonomy, settings.Defaults(), "en")
		if got == nil || len(got) != 0 {
			t.Fatalf("GetTerms(%q) = %#v, want empty non-nil slice", taxonomy, got)
		}
	}
	if store.calls() != 0 {
		t.Fatalf("store queried %d times, want 0", store.calls())
	}
}

func TestGetTermsHitServesIdenticalList(t *testing.T) {
	c, store := newFixture(t, newMapKV())
	ctx := context.Background()
	snap := settings.Defaults()

	first := c.GetTerms(ctx, "attr_color", snap, "en")
	second := c.GetTerms(ctx, "attr_color", snap, "en")

	if store.calls() != 1 {
		t.Fatalf("store queried %d times, want 1", store.calls())
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("hit differs from miss:\n%v\n%v", first, second)
	}
	if !reflect.DeepEqual(first, colorTerms()) {
		t.Fatalf("unexpected terms %v", first)
	}
}

func TestKeyDependsOnInputs(t *testing.T) {
	c, _ := newFixture(t, newMapKV())
	base := settings.Defaults()

	byCount := base
	byCount.OrderBy = settings.OrderByCount

	showEmpty := base
	showEmpty.HideEmpty = false

	withOverride := base
	withOverride.TermOverrides = map[string]map[int64]string{"it": {12: "Rosso"}}

	keys := map[string]string{
		"base":      c.Key("attr_color", base, "en"),
		"order":     c.Key("attr_color", byCount, "en"),
		"hideEmpty": c.Key("attr_color", showEmpty, "en"),
		"override":  c.Key("attr_color", withOverride, "en"),
		"language":  c.Key("attr_color", base, "it"),
		"taxonomy":  c.Key("attr_size", base, "en"),
		"splitTax":  c.Key("attr_a::b", base, "c"),
		"splitLang": c.Key("attr_a", base, "b::c"),
	}

	seen := map[string]string{}
	for name, key := range keys {
		if !strings.HasPrefix(key, cache.DefaultNamespace) {
			t.Errorf("%s key %q missing namespace", name, key)
		}
		if other, dup := seen[key]; dup {
			t.Errorf("%s and %s share key %q", name, other, key)
		}
		seen[key] = name
	}

	if c.Key("attr_color", base, "en") != keys["base"] {
		t.Error("key must be stable for identical inputs")
	}

	// A distinct cache over the same inputs agrees.
	other, _ := newFixture(t, newMapKV())
	if other.Key("attr_color", base, "en") != keys["base"] {
		t.Error("key must not depend on the cache instance")
	}
}

func TestGetTermsDistinctSettingsQueryAgain(t *testing.T) {
	c, store := newFixture(t, newMapKV())
	ctx := context.Background()

	hidden := settings.Defaults()
	shown := hidden
	shown.HideEmpty = false

	c.GetTerms(ctx, "attr_color", hidden, "en")
	c.GetTerms(ctx, "attr_color", shown, "en")

	if store.calls() != 2 {
		t.Fatalf("store queried %d times, want 2", store.calls())
	}
	if !store.queries[0].HideEmpty || store.queries[1].HideEmpty {
		t.Fatalf("hideEmpty not passed through: %+v", store.queries)
	}
}

func TestQueryForOrderMapping(t *testing.T) {
	tests := []struct {
		order settings.OrderBy
		field terms.OrderField
		dir   terms.Direction
	}{
		{settings.OrderByName, terms.OrderByName, terms.Ascending},
		{settings.OrderByPriority, terms.OrderByPriority, terms.Ascending},
		{settings.OrderByCount, terms.OrderByCount, terms.Descending},
		{settings.OrderBy("bogus"), terms.OrderByName, terms.Ascending},
	}
	for _, tt := range tests {
		snap := settings.Defaults()
		snap.OrderBy = tt.order
		q := QueryFor("attr_color", snap)
		if q.OrderBy != tt.field || q.Direction != tt.dir || q.Taxonomy != "attr_color" {
			t.Errorf("QueryFor(%q) = %+v, want %s %s", tt.order, q, tt.field, tt.dir)
		}
	}
}

func TestGetTermsCountOrderIsNotResorted(t *testing.T) {
	c, _ := newFixture(t, newMapKV())
	snap := settings.Defaults()
	snap.OrderBy = settings.OrderByCount

	got := c.GetTerms(context.Background(), "attr_color", snap, "en")
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("counts not non-increasing: %v", got)
		}
	}
	if got[0].ID != 12 || got[len(got)-1].ID != 14 {
		t.Fatalf("store order changed: %v", got)
	}
}

func TestInvalidateAllForcesRequery(t *testing.T) {
	kv := newMapKV()
	c, store := newFixture(t, kv)
	ctx := context.Background()
	snap := settings.Defaults()

	c.GetTerms(ctx, "attr_color", snap, "en")
	c.GetTerms(ctx, "attr_color", snap, "it")
	if store.calls() != 2 {
		t.Fatalf("store queried %d times, want 2", store.calls())
	}

	if err := c.InvalidateAll(ctx); err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}
	if kv.deletes != 2 {
		t.Fatalf("tracked deletes = %d, want 2", kv.deletes)
	}
	if len(kv.data) != 0 {
		t.Fatalf("entries left after invalidation: %d", len(kv.data))
	}

	c.GetTerms(ctx, "attr_color", snap, "en")
	if store.calls() != 3 {
		t.Fatalf("store queried %d times after invalidation, want 3", store.calls())
	}
}

func TestGetTermsStoreErrorNotCached(t *testing.T) {
	kv := newMapKV()
	c, store := newFixture(t, kv)
	ctx := context.Background()
	store.err = errors.New("connection refused")

	got := c.GetTerms(ctx, "attr_color", settings.Defaults(), "en")
	if got == nil || len(got) != 0 {
		t.Fatalf("GetTerms on error = %#v, want empty", got)
	}
	if len(kv.data) != 0 {
		t.Fatal("failed query must not be cached")
	}

	store.err = nil
	got = c.GetTerms(ctx, "attr_color", settings.Defaults(), "en")
	if len(got) != 3 || store.calls() != 2 {
		t.Fatalf("recovery: got %d terms after %d calls", len(got), store.calls())
	}
}

func TestGetTermsEmptyResultIsCached(t *testing.T) {
	kv := newMapKV()
	c, store := newFixture(t, kv)
	ctx := context.Background()

	c.GetTerms(ctx, "attr_size", settings.Defaults(), "en")
	got := c.GetTerms(ctx, "attr_size", settings.Defaults(), "en")
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
	if store.calls() != 1 {
		t.Fatalf("empty list should be cached, store queried %d times", store.calls())
	}
}

func TestGetTermsCorruptEntryIsMiss(t *testing.T) {
	kv := newMapKV()
	c, store := newFixture(t, kv)
	ctx := context.Background()
	snap := settings.Defaults()

	key := c.Key("attr_color", snap, "en")
	kv.data[key] = []byte("not msgpack")

	got := c.GetTerms(ctx, "attr_color", snap, "en")
	if len(got) != 3 || store.calls() != 1 {
		t.Fatalf("corrupt entry not replaced: %d terms, %d calls", len(got), store.calls())
	}

	var entry Entry
	if err := msgpack.Unmarshal(kv.data[key], &entry); err != nil {
		t.Fatalf("entry not overwritten: %v", err)
	}
	if entry.Key != key || len(entry.Terms) != 3 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestGetTermsReadErrorFallsThrough(t *testing.T) {
	kv := newMapKV()
	kv.getErr = errors.New("timeout")
	c, store := newFixture(t, kv)

	got := c.GetTerms(context.Background(), "attr_color", settings.Defaults(), "en")
	if len(got) != 3 || store.calls() != 1 {
		t.Fatalf("read error should query the store: %d terms, %d calls", len(got), store.calls())
	}
}

func TestGetTermsExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c, store := newFixture(t, newMapKV(), WithClock(clock), WithTTL(time.Minute))
	ctx := context.Background()
	snap := settings.Defaults()

	c.GetTerms(ctx, "attr_color", snap, "en")
	now = now.Add(59 * time.Second)
	c.GetTerms(ctx, "attr_color", snap, "en")
	if store.calls() != 1 {
		t.Fatalf("entry expired early, %d calls", store.calls())
	}

	now = now.Add(time.Second)
	c.GetTerms(ctx, "attr_color", snap, "en")
	if store.calls() != 2 {
		t.Fatalf("entry should expire at ttl, %d calls", store.calls())
	}
}

func TestHandleTermEvent(t *testing.T) {
	c, store := newFixture(t, newMapKV())
	ctx := context.Background()
	snap := settings.Defaults()

	c.GetTerms(ctx, "attr_color", snap, "en")

	invalidated, err := c.HandleTermEvent(ctx, TermEvent{Kind: TermEdited, TermID: 5, Taxonomy: "product_cat"})
	if err != nil || invalidated {
		t.Fatalf("non attribute event: invalidated=%v err=%v", invalidated, err)
	}
	c.GetTerms(ctx, "attr_color", snap, "en")
	if store.calls() != 1 {
		t.Fatal("non attribute event must not invalidate")
	}

	invalidated, err = c.HandleTermEvent(ctx, TermEvent{Kind: TermDeleted, TermID: 12, Taxonomy: "attr_color"})
	if err != nil || !invalidated {
		t.Fatalf("attribute event: invalidated=%v err=%v", invalidated, err)
	}
	c.GetTerms(ctx, "attr_color", snap, "en")
	if store.calls() != 2 {
		t.Fatal("attribute event must invalidate")
	}
}

func TestParseEventKind(t *testing.T) {
	for _, name := range []string{"created", "edited", "deleted"} {
		if kind, err := ParseEventKind(name); err != nil || string(kind) != name {
			t.Errorf("ParseEventKind(%q) = %q, %v", name, kind, err)
		}
	}
	if _, err := ParseEventKind("renamed"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestWithNamespace(t *testing.T) {
	c, _ := newFixture(t, newMapKV(), WithNamespace("shop1:"))
	if key := c.Key("attr_color", settings.Defaults(), "en"); !strings.HasPrefix(key, "shop1:") {
		t.Fatalf("key %q ignores namespace", key)
	}
}

type recordingSerializer struct{ calls int }

func (r *recordingSerializer) SerializeKey(method string, args ...any) string {
	r.calls++
	return method
}

func TestWithKeySerializer(t *testing.T) {
	ser := &recordingSerializer{}
	c, _ := newFixture(t, newMapKV(), WithKeySerializer(ser))
	c.Key("attr_color", settings.Defaults(), "en")
	if ser.calls != 1 {
		t.Fatalf("custom serializer calls = %d", ser.calls)
	}
}

func TestCacheWithBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	redisCfg := cache.DefaultConfig()
	redisCfg.Backend = cache.BackendRedis
	redisCfg.RedisURL = "redis://" + mr.Addr()

	backends := map[string]cache.Config{
		"memory": cache.DefaultConfig(),
		"redis":  redisCfg,
	}

	for name, cfg := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv, err := cache.NewKVStore(ctx, cfg, nil)
			if err != nil {
				t.Fatalf("NewKVStore: %v", err)
			}

			c, store := newFixture(t, kv)
			snap := settings.Defaults()

			c.GetTerms(ctx, "attr_color", snap, "en")
			c.GetTerms(ctx, "attr_color", snap, "en")
			if store.calls() != 1 {
				t.Fatalf("store queried %d times, want 1", store.calls())
			}

			if err := c.SettingsSaved(ctx, snap); err != nil {
				t.Fatalf("SettingsSaved: %v", err)
			}
			c.GetTerms(ctx, "attr_color", snap, "en")
			if store.calls() != 2 {
				t.Fatalf("store queried %d times after save, want 2", store.calls())
			}
		})
	}
}

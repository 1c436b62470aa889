package cacheinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisStore(rdb)
}

func TestRedisStore_GetSet(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "qa_terms:x"); err != nil || found {
		t.Fatalf("expected clean miss, found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "qa_terms:x", []byte{0x81, 0xa1, 0x61}, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := store.Get(ctx, "qa_terms:x")
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if string(got) != string([]byte{0x81, 0xa1, 0x61}) {
		t.Errorf("binary payload not preserved: %v", got)
	}

	if ttl := mr.TTL("qa_terms:x"); ttl != time.Hour {
		t.Errorf("expected 1h TTL on key, got %v", ttl)
	}

	mr.FastForward(time.Hour)
	if _, found, _ := store.Get(ctx, "qa_terms:x"); found {
		t.Error("expected key to expire after its TTL")
	}
}

func TestRedisStore_DeleteByPrefix(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()
	store.scanCount = 3

	for i := 0; i < 12; i++ {
		_ = store.Set(ctx, fmt.Sprintf("qa_terms:%d", i), []byte("v"), time.Hour)
	}
	_ = store.Set(ctx, "qa_settings", []byte("v"), 0)

	if err := store.DeleteByPrefix(ctx, "qa_terms:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != "qa_settings" {
		t.Errorf("expected only qa_settings to remain, got %v", keys)
	}
}

func TestRedisStore_DeleteByPrefixEscapesGlob(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()

	_ = store.Set(ctx, "a*b:1", []byte("v"), 0)
	_ = store.Set(ctx, "axb:1", []byte("v"), 0)

	if err := store.DeleteByPrefix(ctx, "a*b:"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}

	if !mr.Exists("axb:1") {
		t.Error("glob characters in the prefix must match literally")
	}
	if mr.Exists("a*b:1") {
		t.Error("expected literal prefix match to be deleted")
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := map[string]string{
		"qa_terms:": "qa_terms:",
		"a*b":       `a\*b`,
		"[x]?":      `\[x\]\?`,
		`back\`:     `back\\`,
	}
	for in, want := range tests {
		if got := escapeGlob(in); got != want {
			t.Errorf("escapeGlob(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("DialRedis failed: %v", err)
	}
	_ = client.Close()

	if _, err := DialRedis(context.Background(), "not a url"); err == nil {
		t.Error("expected error for malformed url")
	}
}

// Package cache provides the key-value plumbing and key serialization used by the term cache.
//
// # Overview
//
// This package exports two interfaces and their default implementations:
//
//   - KVStore: a byte-oriented store with per-entry TTL and prefix deletion
//   - KeySerializer: builds stable cache keys from a method name and arguments
//
// Two KVStore backends are available through NewKVStore:
//
//   - memory: an in-process sturdyc client, suitable for a single web process
//   - redis: a shared Redis keyspace, visible to every process serving the storefront
//
// # Basic Usage
//
//	cfg := cache.DefaultConfig()
//	store, err := cache.NewKVStore(ctx, cfg, nil)
//	serializer := cache.NewDefaultKeySerializer()
//	key := cfg.Namespace + cache.Digest(serializer.SerializeKey("terms", taxonomy, lang, snapshot))
//
// # Key Serialization Strategy
//
// The default key serializer uses reflection and only looks at values:
//
//   - Basic types: direct string representation
//   - Slices/arrays: recursive serialization of elements, order preserved
//   - Maps: entries sorted by serialized key
//   - Structs: exported fields sorted by field name
//   - Functions and channels: type name only, never an address
//
// Keys must be identical across processes sharing a Redis backend, which is why
// memory addresses never leak into serialized output.
//
// # Invalidation
//
// KVStore.DeleteByPrefix is the only bulk invalidation primitive. The Redis
// backend implements it with SCAN MATCH and batched DEL, the memory backend by
// scanning its own keys.
package cache

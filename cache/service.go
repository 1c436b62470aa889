package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls and across processes.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// KVStore is the byte-oriented key-value store backing the term cache.
// Implementations must treat a missing or expired key as a miss (found == false, err == nil).
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Digest returns the hex encoded SHA-256 of a serialized key.
// Serialized keys embed whole settings snapshots, so they are hashed before
// they reach a backend with key length limits.
func Digest(serialized string) string {
	sum := sha256.Sum256([]byte(serialized))
	return hex.EncodeToString(sum[:])
}

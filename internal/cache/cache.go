// Package cache provides the response cache consulted by the dispatch
// layer, keyed by a deterministic fingerprint of a request's semantic
// content. Two storage backends exist: an in-process map and a SQLite
// file that survives restarts. Expiry is lazy — entries are checked
// against their TTL on read, never evicted by size.
package cache

import (
	"context"
	"time"
)

// Cache stores backend responses under request fingerprints.
//
// Implementations must be safe for concurrent use. Get returns
// (nil, false) on miss or expiry; it never errors. A TTL of zero or
// less on Set means the value is not cached.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Nop is the cache used when caching is disabled: every Get misses and
// Set discards the value.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Close() error { return nil }

var _ Cache = Nop{}

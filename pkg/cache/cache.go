// Package cache stores fetched term data between runs.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: stores nothing (--no-cache)
//   - [FileCache]: one JSON file per key, for the CLI
//   - [RedisCache]: shared storage for the API server
//
// [MemoryCache] is an in-process map, used by tests and by a server started
// without Redis.
//
// Keys are built by a [Keyer] so callers never format them by hand. Only
// term data is cached; graphs and diagrams are cheap to rebuild and always
// computed fresh.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	TTLLookup   = 24 * time.Hour
	TTLSnapshot = 6 * time.Hour
)

// Cache is a byte store with per-entry expiry. A zero ttl means no expiry.
// Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer builds cache keys.
type Keyer interface {
	// LookupKey is the key of one term-lookup response.
	LookupKey(service, query string) string
	// SnapshotKey is the key of a full dependency/derived snapshot fetched
	// from a source for the given set of labels.
	SnapshotKey(source string, labels []string) string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LookupKey returns "lookup:<service>:<query>".
func (DefaultKeyer) LookupKey(service, query string) string {
	return "lookup:" + service + ":" + query
}

// SnapshotKey hashes the labels so the key length does not grow with the sheet.
func (DefaultKeyer) SnapshotKey(source string, labels []string) string {
	return hashKey("snapshot:"+source, labels)
}

// Package cache stores scan snapshots and rendered artifacts between runs.
//
// # Backends
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several servers or machines
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// Keys are produced by a [Keyer]. Scan keys depend on the scanned directory
// and the exclusion patterns; artifact keys depend on the tree's
// [Fingerprint] and the render options, so any change to the tree or the
// options misses the cache. [ScopedKeyer] prefixes every key to give several
// users or projects separate namespaces in one backend.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	// TTLScan is how long a scan snapshot is reused. Directories change, so
	// this is short; pass --refresh to rescan sooner.
	TTLScan = time.Hour

	// TTLArtifact is how long rendered output is kept. Artifacts are keyed by
	// tree content, so they never go stale, only unused.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (false, nil error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

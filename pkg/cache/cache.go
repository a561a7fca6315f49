// Package cache stores encoded layout results keyed by what produced them.
//
// [NullCache] disables caching, [MemoryCache] keeps entries in process,
// [FileCache] keeps them on disk for the CLI and [RedisCache] shares them
// between server instances. Keys come from a [Keyer], so the same inputs map
// to the same entry in every backend.
//
// # Usage
//
//	c, err := cache.NewFileCache(cache.DefaultDir())
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash(doc), cache.LayoutKeyOpts{})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Default entry lifetimes.
const (
	TTLLayout = 7 * 24 * time.Hour
	TTLExport = 7 * 24 * time.Hour
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// DefaultDir is the per-user cache directory, falling back to the temp dir.
func DefaultDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "engraver")
}

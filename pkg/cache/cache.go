package cache

import (
	"context"
	"time"

	"searoute/pkg/db"
)

// Cacher defines the caching interface used by the request client.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// SQLiteCache implements Cacher on top of pkg/db with a fixed TTL.
type SQLiteCache struct {
	db  *db.DB
	ttl time.Duration
}

// NewSQLiteCache creates a new cache. Entries older than ttl are misses.
func NewSQLiteCache(d *db.DB, ttl time.Duration) *SQLiteCache {
	return &SQLiteCache{db: d, ttl: ttl}
}

func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, bool) {
	return c.db.GetCacheEntry(key, c.ttl)
}

func (c *SQLiteCache) SetCache(ctx context.Context, key string, val []byte) error {
	return c.db.SetCacheEntry(key, val)
}

// Null is a Cacher that never stores anything. Useful in tests.
type Null struct{}

func (Null) GetCache(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (Null) SetCache(ctx context.Context, key string, val []byte) error {
	return nil
}

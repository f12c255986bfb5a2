package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/query"
)

// ResultCache keeps recent query results in Redis so repeated registry
// queries skip the database. A disabled cache is a valid zero-cost object:
// every Get misses and every Put is a no-op.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// New builds a result cache from configuration. cfg.Enabled=false returns a
// cache that never hits; callers do not need to nil-check.
func New(cfg config.CacheConfig) *ResultCache {
	c := &ResultCache{
		ttl:    cfg.TTL,
		logger: log.New(log.Writer(), "[CACHE] ", log.LstdFlags),
	}
	if cfg.Enabled {
		c.client = redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})
	}
	return c
}

// Get returns the cached result for sqlText, or nil on miss, decode failure
// or a disabled cache.
func (c *ResultCache) Get(ctx context.Context, sqlText string) *query.ResultSet {
	if c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(sqlText)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("cache get failed: %v", err)
		}
		return nil
	}
	var rs query.ResultSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		c.logger.Printf("cache entry corrupt, ignoring: %v", err)
		return nil
	}
	return &rs
}

// Put stores a successful result under the query's key. Failed results are
// never cached.
func (c *ResultCache) Put(ctx context.Context, sqlText string, rs *query.ResultSet) {
	if c.client == nil || rs == nil || !rs.Success {
		return
	}
	raw, err := json.Marshal(rs)
	if err != nil {
		c.logger.Printf("cache encode failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(sqlText), raw, c.ttl).Err(); err != nil {
		c.logger.Printf("cache set failed: %v", err)
	}
}

// Close releases the Redis connection if one was opened.
func (c *ResultCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func cacheKey(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return "tasq:result:" + hex.EncodeToString(sum[:])
}

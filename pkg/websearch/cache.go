package websearch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"shate-rag-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]Result, bool)
	Set(ctx context.Context, key string, results []Result)
}

// RedisCache keeps search results for a short TTL so repeated questions do not spend rate limit.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisCache {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisCache{rdb: rdb, ttl: ttl, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Result, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("WEBSEARCH", "Cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, key string, results []Result) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("WEBSEARCH", "Cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

type CachedSearcher struct {
	next  Searcher
	cache Cache
}

func NewCachedSearcher(next Searcher, cache Cache) Searcher {
	if cache == nil {
		return next
	}
	return &CachedSearcher{next: next, cache: cache}
}

func (s *CachedSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	key := cacheKey(query)
	if results, ok := s.cache.Get(ctx, key); ok {
		return results, nil
	}
	results, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, results)
	return results, nil
}

func cacheKey(query string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "websearch:" + hex.EncodeToString(sum[:])
}

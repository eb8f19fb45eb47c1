package mongostore

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type SchemaSource interface {
	Schema(ctx context.Context, names []string) (string, error)
}

// CachedSchema memoizes schema text per collection set. Sampling is a round trip per collection
// and the storefront schema rarely changes.
type CachedSchema struct {
	next  SchemaSource
	cache *cache.Cache
}

func NewCachedSchema(next SchemaSource, ttl time.Duration) *CachedSchema {
	return &CachedSchema{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedSchema) Schema(ctx context.Context, names []string) (string, error) {
	key := strings.Join(names, ",")
	if x, found := c.cache.Get(key); found {
		return x.(string), nil
	}

	text, err := c.next.Schema(ctx, names)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, text, cache.DefaultExpiration)
	return text, nil
}

func (c *CachedSchema) Invalidate() {
	c.cache.Flush()
}

// CachedStore answers Schema from the cache and everything else from the store.
type CachedStore struct {
	*Store
	schema *CachedSchema
}

func NewCachedStore(store *Store, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: store, schema: NewCachedSchema(store, ttl)}
}

func (c *CachedStore) Schema(ctx context.Context, names []string) (string, error) {
	return c.schema.Schema(ctx, names)
}

package product

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"storefront/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	DefaultCacheTTL    = 5 * time.Minute
	DefaultCachePrefix = "storefront:product:"
)

// CachedRepository is a Redis read-through cache in front of another Repository.
// Redis failures degrade to a miss and never fail the read.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger

	hits   int64
	misses int64
}

type CacheOption func(*CachedRepository)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedRepository) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCachePrefix(prefix string) CacheOption {
	return func(c *CachedRepository) {
		c.prefix = prefix
	}
}

func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *CachedRepository) {
		if logger != nil {
			c.logger = logger.Named("product_cache")
		}
	}
}

func NewCached(inner Repository, client *redis.Client, opts ...CacheOption) *CachedRepository {
	c := &CachedRepository{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
		prefix: DefaultCachePrefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DialCached connects to Redis at addr and puts the cache in front of inner. An
// unreachable Redis is only logged; reads then degrade to misses. The caller owns the client.
func DialCached(ctx context.Context, inner Repository, addr string, ttl time.Duration, logger *zap.Logger) (*CachedRepository, *redis.Client) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not reachable, product cache degrades to misses", zap.String("addr", addr), zap.Error(err))
	}
	return NewCached(inner, client, WithCacheTTL(ttl), WithCacheLogger(logger)), client
}

func (c *CachedRepository) List(ctx context.Context) ([]domain.Product, error) {
	var cached []domain.Product
	if c.get(ctx, c.listKey(), &cached) {
		return cached, nil
	}
	products, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.listKey(), products)
	return products, nil
}

func (c *CachedRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	var cached domain.Product
	if c.get(ctx, c.productKey(id), &cached) {
		return &cached, nil
	}
	p, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.productKey(id), p)
	return p, nil
}

func (c *CachedRepository) ListAttributePrices(ctx context.Context, productID int) ([]domain.AttributePrice, error) {
	var cached []domain.AttributePrice
	if c.get(ctx, c.attributesKey(productID), &cached) {
		for i := range cached {
			cached[i].ProductID = productID
		}
		return cached, nil
	}
	attrs, err := c.inner.ListAttributePrices(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.attributesKey(productID), attrs)
	return attrs, nil
}

// Upsert writes through and then drops every key the write could have made stale.
func (c *CachedRepository) Upsert(ctx context.Context, product domain.Product, attributes []domain.AttributePrice) (*domain.Product, error) {
	saved, err := c.inner.Upsert(ctx, product, attributes)
	if err != nil {
		return nil, err
	}
	keys := []string{c.listKey(), c.productKey(saved.ID), c.attributesKey(saved.ID)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("invalidate", zap.Int("id", saved.ID), zap.Error(err))
	}
	return saved, nil
}

// Stats returns hit/miss counters.
func (c *CachedRepository) Stats() map[string]int64 {
	return map[string]int64{
		"hits":   atomic.LoadInt64(&c.hits),
		"misses": atomic.LoadInt64(&c.misses),
	}
}

func (c *CachedRepository) get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("get", zap.String("key", key), zap.Error(err))
		}
		atomic.AddInt64(&c.misses, 1)
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("corrupt entry", zap.String("key", key), zap.Error(err))
		atomic.AddInt64(&c.misses, 1)
		return false
	}
	atomic.AddInt64(&c.hits, 1)
	return true
}

func (c *CachedRepository) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("marshal", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("set", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedRepository) listKey() string {
	return c.prefix + "list"
}

func (c *CachedRepository) productKey(id int) string {
	return fmt.Sprintf("%s%d", c.prefix, id)
}

func (c *CachedRepository) attributesKey(id int) string {
	return fmt.Sprintf("%s%d:attributes", c.prefix, id)
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is used when Cached is given a non-positive TTL.
const DefaultCacheTTL = 10 * time.Minute

// Cached is a read-through Redis cache in front of another Catalog. Redis
// failures are logged and the wrapped catalog answers instead.
type Cached struct {
	next   Catalog
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// NewCached wraps next with a Redis cache.
func NewCached(next Catalog, rdb redis.UniversalClient, ttl time.Duration, log *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, prefix: "catalog:", log: log}
}

func (c *Cached) Makes(ctx context.Context, year int) (domain.OptionList, error) {
	key := fmt.Sprintf("%smakes:%d", c.prefix, year)
	return c.through(ctx, key, func() (domain.OptionList, error) {
		return c.next.Makes(ctx, year)
	})
}

func (c *Cached) Models(ctx context.Context, makeID string, year int) (domain.OptionList, error) {
	key := fmt.Sprintf("%smodels:%s:%d", c.prefix, makeID, year)
	return c.through(ctx, key, func() (domain.OptionList, error) {
		return c.next.Models(ctx, makeID, year)
	})
}

// Invalidate drops every cached list.
func (c *Cached) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cached) through(ctx context.Context, key string, load func() (domain.OptionList, error)) (domain.OptionList, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var list domain.OptionList
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		c.log.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("catalog cache read failed", "key", key, "err", err)
	}

	list, err := load()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(list); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("catalog cache write failed", "key", key, "err", err)
		}
	}
	return list, nil
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	cachePrefix     = "catalog:"
	cacheTTL        = 5 * time.Minute
	notFoundTTL     = 1 * time.Minute
	notFoundPayload = "notfound"
)

// CachedRepository is a read-through redis cache in front of a Repository.
// Redis failures are logged and fall back to the wrapped repository.
type CachedRepository struct {
	real  Repository
	redis *redis.Client
	log   logrus.FieldLogger
	ttl   time.Duration
}

func NewCachedRepository(real Repository, rdb *redis.Client, log logrus.FieldLogger) *CachedRepository {
	return &CachedRepository{real: real, redis: rdb, log: log, ttl: cacheTTL}
}

func (c *CachedRepository) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.readThrough(ctx, cachePrefix+"categories", &out, func() (any, error) {
		return c.real.ListCategories(ctx)
	})
	return out, err
}

func (c *CachedRepository) ListProducts(ctx context.Context, in ListParams) (ListResult, error) {
	in = in.normalized()
	key := fmt.Sprintf("%sproducts:c=%s:q=%s:f=%t:p=%d:s=%d",
		cachePrefix, in.CategorySlug, in.Q, in.FeaturedOnly, in.Page, in.PageSize)

	var out ListResult
	err := c.readThrough(ctx, key, &out, func() (any, error) {
		return c.real.ListProducts(ctx, in)
	})
	return out, err
}

func (c *CachedRepository) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	var out Product
	err := c.readThrough(ctx, cachePrefix+"product:"+slug, &out, func() (any, error) {
		return c.real.ProductBySlug(ctx, slug)
	})
	return out, err
}

func (c *CachedRepository) ListGiftBoxes(ctx context.Context) ([]GiftBox, error) {
	var out []GiftBox
	err := c.readThrough(ctx, cachePrefix+"giftboxes", &out, func() (any, error) {
		return c.real.ListGiftBoxes(ctx)
	})
	return out, err
}

func (c *CachedRepository) GiftBoxBySlug(ctx context.Context, slug string) (GiftBox, error) {
	var out GiftBox
	err := c.readThrough(ctx, cachePrefix+"giftbox:"+slug, &out, func() (any, error) {
		return c.real.GiftBoxBySlug(ctx, slug)
	})
	return out, err
}

// Invalidate drops every cached catalog key.
func (c *CachedRepository) Invalidate(ctx context.Context) {
	iter := c.redis.Scan(ctx, 0, cachePrefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.WithError(err).Warn("catalog cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.WithError(err).Warn("catalog cache invalidate failed")
	}
}

func (c *CachedRepository) readThrough(ctx context.Context, key string, dst any, load func() (any, error)) error {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundPayload {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, dst); err == nil {
			return nil
		}
		c.log.WithField("key", key).Warn("catalog cache entry unreadable, reloading")
	case errors.Is(err, redis.Nil):
	default:
		c.log.WithError(err).Warn("catalog cache read failed")
	}

	v, err := load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundPayload, notFoundTTL).Err(); setErr != nil {
				c.log.WithError(setErr).Warn("catalog cache write failed")
			}
		}
		return err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("catalog cache write failed")
	}
	return json.Unmarshal(raw, dst)
}

// Invalidator is notified after catalog writes.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) {}

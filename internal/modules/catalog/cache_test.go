package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
)

type countingRepo struct {
	Repository
	slugCalls int
	listCalls int
}

func (c *countingRepo) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	c.slugCalls++
	return c.Repository.ProductBySlug(ctx, slug)
}

func (c *countingRepo) ListProducts(ctx context.Context, in ListParams) (ListResult, error) {
	c.listCalls++
	return c.Repository.ListProducts(ctx, in)
}

func newCached(t *testing.T) (*miniredis.Miniredis, *countingRepo, *CachedRepository, *Repo) {
	t.Helper()
	gdb, r := newRepo(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingRepo{Repository: NewGormRepository(gdb)}
	return mr, inner, NewCachedRepository(inner, rdb, logging.Discard()), r
}

func TestCachedRepositoryReadThrough(t *testing.T) {
	_, inner, cached, r := newCached(t)
	ctx := context.Background()
	seedCatalog(t, r)

	p1, err := cached.ProductBySlug(ctx, "rocket-5-star")
	require.NoError(t, err)
	p2, err := cached.ProductBySlug(ctx, "rocket-5-star")
	require.NoError(t, err)

	assert.Equal(t, p1.ID, p2.ID)
	assert.Equal(t, 1, inner.slugCalls)

	l1, err := cached.ListProducts(ctx, ListParams{Q: "rocket"})
	require.NoError(t, err)
	_, err = cached.ListProducts(ctx, ListParams{Q: "rocket"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, l1.Total)
	assert.Equal(t, 1, inner.listCalls)
}

func TestCachedRepositoryNegativeCaching(t *testing.T) {
	mr, inner, cached, _ := newCached(t)
	ctx := context.Background()

	_, err := cached.ProductBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = cached.ProductBySlug(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, inner.slugCalls)

	ttl := mr.TTL(cachePrefix + "product:ghost")
	assert.Equal(t, notFoundTTL, ttl)
}

func TestCachedRepositoryInvalidate(t *testing.T) {
	mr, inner, cached, r := newCached(t)
	ctx := context.Background()
	_, ps := seedCatalog(t, r)

	_, err := cached.ProductBySlug(ctx, "rocket-5-star")
	require.NoError(t, err)
	require.NoError(t, mr.Set("unrelated", "1"))

	_, err = r.UpdateProduct(ctx, ps[0].ID, ProductInput{Name: "Rocket 5 Star", PriceCents: 11000, Active: true})
	require.NoError(t, err)
	cached.Invalidate(ctx)

	p, err := cached.ProductBySlug(ctx, "rocket-5-star")
	require.NoError(t, err)
	assert.Equal(t, 11000, p.PriceCents)
	assert.Equal(t, 2, inner.slugCalls)
	assert.True(t, mr.Exists("unrelated"))
}

func TestCachedRepositoryFallsBackWhenRedisDown(t *testing.T) {
	mr, inner, cached, r := newCached(t)
	seedCatalog(t, r)
	mr.Close()

	p, err := cached.ProductBySlug(context.Background(), "rocket-5-star")
	require.NoError(t, err)
	assert.Equal(t, "Rocket 5 Star", p.Name)
	assert.Equal(t, 1, inner.slugCalls)
}

package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
)

func TestSettingsDefaultsAndPut(t *testing.T) {
	r := NewSettingsRepo(dbtest.Open(t, Models()...))
	ctx := context.Background()

	site, err := r.Site(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello Crackers", site.StoreName)
	assert.Equal(t, 300000, site.MinOrderCents)

	keys, err := r.Put(ctx, map[string]string{
		KeyMinOrderCents:  "250000",
		KeyDeliveryCents:  "15000",
		KeyStoreLat:       "9.4533",
		KeyStoreLng:       "77.8024",
		KeyBannerImageKey: "sneaky",
		"db_password":     "nope",
	})
	require.NoError(t, err)
	assert.Len(t, keys, 4)

	// second write updates in place
	_, err = r.Put(ctx, map[string]string{KeyDeliveryCents: " 20000 "})
	require.NoError(t, err)

	site, err = r.Site(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250000, site.MinOrderCents)
	assert.Equal(t, 20000, site.DeliveryCents)
	assert.InDelta(t, 9.4533, site.StoreLat, 1e-9)
	assert.Empty(t, site.BannerImageKey)

	loc := site.Location()
	assert.Equal(t, "Hello Crackers", loc.Title)

	pub := site.Public()
	_, leaked := pub["map_token"]
	assert.False(t, leaked)
}

func TestSetBannerReturnsPreviousKey(t *testing.T) {
	r := NewSettingsRepo(dbtest.Open(t, Models()...))
	ctx := context.Background()

	old, err := r.SetBanner(ctx, "banners/a.png", "/uploads/banners/a.png")
	require.NoError(t, err)
	assert.Empty(t, old)

	old, err = r.SetBanner(ctx, "banners/b.png", "/uploads/banners/b.png")
	require.NoError(t, err)
	assert.Equal(t, "banners/a.png", old)

	site, err := r.Site(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/banners/b.png", site.BannerImageURL)
}

func TestVisibleNotices(t *testing.T) {
	r := NewNoticeRepo(dbtest.Open(t, Models()...))
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	a, err := r.Create(ctx, NoticeInput{Message: "Diwali offer 80% off", Kind: "offer", Active: true})
	require.NoError(t, err)
	b, err := r.Create(ctx, NoticeInput{Message: "Orders close on 28th", Active: true, Position: 1, StartsAt: &past, EndsAt: &future})
	require.NoError(t, err)
	_, err = r.Create(ctx, NoticeInput{Message: "Expired", Active: true, EndsAt: &past})
	require.NoError(t, err)
	_, err = r.Create(ctx, NoticeInput{Message: "Later", Active: true, StartsAt: &future})
	require.NoError(t, err)
	_, err = r.Create(ctx, NoticeInput{Message: "Off", Active: false})
	require.NoError(t, err)

	vis, err := r.Visible(ctx, now, nil)
	require.NoError(t, err)
	require.Len(t, vis, 2)
	assert.Equal(t, a.ID, vis[0].ID)
	assert.Equal(t, "offer", vis[0].Kind)

	vis, err = r.Visible(ctx, now, []string{a.ID})
	require.NoError(t, err)
	require.Len(t, vis, 1)
	assert.Equal(t, b.ID, vis[0].ID)

	_, err = r.Update(ctx, b.ID, NoticeInput{Message: "Orders close on 29th", Kind: "weird", Active: false})
	require.NoError(t, err)
	vis, err = r.Visible(ctx, now, []string{a.ID})
	require.NoError(t, err)
	assert.Empty(t, vis)

	require.NoError(t, r.Delete(ctx, a.ID))
	assert.ErrorIs(t, r.Delete(ctx, a.ID), ErrNoticeNotFound)
}

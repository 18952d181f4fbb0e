package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
)

type memStore struct{ lines Lines }

func (m *memStore) Load(context.Context) (Lines, error) { return append(Lines{}, m.lines...), nil }
func (m *memStore) Save(_ context.Context, ls Lines) error {
	m.lines = append(Lines{}, ls...)
	return nil
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	rocket  catalog.ItemRef
	pot     catalog.ItemRef
	box     catalog.ItemRef
	retired catalog.ItemRef
}

func setup(t *testing.T) fixture {
	t.Helper()
	models := append(catalog.Models(), Models()...)
	gdb := dbtest.Open(t, models...)
	cr := catalog.NewRepo(gdb)
	ctx := context.Background()

	rocket, err := cr.CreateProduct(ctx, catalog.ProductInput{Name: "Rocket", PriceCents: 12000, MRPCents: 40000, Stock: 20, Active: true})
	require.NoError(t, err)
	pot, err := cr.CreateProduct(ctx, catalog.ProductInput{Name: "Flower Pot", PriceCents: 5000, Stock: 20, Active: true})
	require.NoError(t, err)
	retired, err := cr.CreateProduct(ctx, catalog.ProductInput{Name: "Old Bomb", PriceCents: 100, Stock: 5, Active: false})
	require.NoError(t, err)
	box, err := cr.CreateGiftBox(ctx, catalog.GiftBoxInput{Name: "Family Box", PriceCents: 100000, MRPCents: 300000, Stock: 3, Active: true})
	require.NoError(t, err)

	return fixture{
		db:      gdb,
		svc:     NewService(gdb, NewRepo(gdb)),
		rocket:  catalog.ItemRef{Kind: catalog.KindProduct, ID: rocket.ID},
		pot:     catalog.ItemRef{Kind: catalog.KindProduct, ID: pot.ID},
		box:     catalog.ItemRef{Kind: catalog.KindGiftBox, ID: box.ID},
		retired: catalog.ItemRef{Kind: catalog.KindProduct, ID: retired.ID},
	}
}

func TestViewTotalsEqualSumOfLines(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	st := &memStore{}

	_, err := f.svc.Add(ctx, st, f.rocket, 2)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, st, f.box, 1)
	require.NoError(t, err)
	v, err := f.svc.Add(ctx, st, f.pot, 3)
	require.NoError(t, err)

	require.Len(t, v.Lines, 3)
	assert.Equal(t, 6, v.Count)

	sum := 0
	for _, l := range v.Lines {
		assert.Equal(t, l.UnitPriceCents*l.Qty, l.LineTotalCents)
		sum += l.LineTotalCents
	}
	assert.Equal(t, sum, v.SubtotalCents)
	assert.Equal(t, 2*12000+100000+3*5000, v.SubtotalCents)
	assert.Equal(t, 2*40000+300000+3*5000, v.MRPTotalCents)
	assert.Equal(t, v.MRPTotalCents-v.SubtotalCents, v.SavingsCents)
	assert.Equal(t, 70, v.Lines[0].DiscountPercent)
}

func TestAddRejectsUnavailableItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	st := &memStore{}

	_, err := f.svc.Add(ctx, st, f.retired, 1)
	assert.ErrorIs(t, err, ErrItemUnavailable)
	_, err = f.svc.Add(ctx, st, catalog.ItemRef{Kind: catalog.KindGiftBox, ID: "nope"}, 1)
	assert.ErrorIs(t, err, ErrItemUnavailable)
	assert.Empty(t, st.lines)
}

func TestViewDropsDeactivatedItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	st := &memStore{}

	_, err := f.svc.Add(ctx, st, f.rocket, 1)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, st, f.pot, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&catalog.Product{}).Where("id = ?", f.pot.ID).Update("active", false).Error)

	v, err := f.svc.Get(ctx, st)
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 12000, v.SubtotalCents)
}

func TestDecrementAndRemove(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	st := &memStore{}

	_, err := f.svc.Add(ctx, st, f.rocket, 1)
	require.NoError(t, err)
	v, err := f.svc.Decrement(ctx, st, f.rocket)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	assert.Equal(t, 0, v.SubtotalCents)

	_, err = f.svc.Add(ctx, st, f.pot, 4)
	require.NoError(t, err)
	v, err = f.svc.SetQty(ctx, st, f.pot, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Count)

	_, err = f.svc.SetQty(ctx, st, f.rocket, 2)
	assert.ErrorIs(t, err, ErrItemUnavailable)

	v, err = f.svc.Remove(ctx, st, f.pot)
	require.NoError(t, err)
	assert.Zero(t, v.Count)
}

func TestUserStorePersistsAndMerges(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	st := f.svc.UserStore("user-1")

	_, err := f.svc.Add(ctx, st, f.rocket, 1)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, st, f.box, 1)
	require.NoError(t, err)

	guest := Lines{{Ref: f.rocket, Qty: 2}, {Ref: f.pot, Qty: 1}}
	require.NoError(t, f.svc.MergeGuest(ctx, "user-1", guest))

	ls, err := f.svc.Repo().LoadUserLines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, ls, 3)
	assert.Equal(t, f.rocket, ls[0].Ref)
	assert.Equal(t, 3, ls.Qty(f.rocket))
	assert.Equal(t, 1, ls.Qty(f.pot))

	other, err := f.svc.Repo().LoadUserLines(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestClearUserCartInTx(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	st := f.svc.UserStore("user-1")
	_, err := f.svc.Add(ctx, st, f.rocket, 3)
	require.NoError(t, err)

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.Repo().ClearUserCartInTx(tx, "user-1")
	}))

	v, err := f.svc.Get(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)

	// clearing a user without a cart is fine
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.Repo().ClearUserCartInTx(tx, "ghost")
	}))
}

package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
)

func upsert(t *testing.T, gdb *gorm.DB, in Contact, at time.Time) Customer {
	t.Helper()
	var c Customer
	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		var err error
		c, err = UpsertInTx(context.Background(), tx, in, at)
		return err
	}))
	return c
}

func TestUpsertByPhone(t *testing.T) {
	gdb := dbtest.Open(t, Models()...)
	t0 := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)

	first := upsert(t, gdb, Contact{Name: "Ravi", Phone: "9876543210", Email: "ravi@example.com", City: "Sivakasi"}, t0)
	assert.Equal(t, 1, first.OrdersCount)

	uid := "user-1"
	second := upsert(t, gdb, Contact{UserID: &uid, Name: "Ravi Kumar", Phone: "9876543210", City: "Madurai"}, t0.Add(time.Hour))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.OrdersCount)
	assert.Equal(t, "Ravi Kumar", second.Name)
	assert.Equal(t, "Madurai", second.City)
	assert.Equal(t, "ravi@example.com", second.Email, "blank email keeps the old one")
	require.NotNil(t, second.UserID)
	assert.Equal(t, uid, *second.UserID)

	other := upsert(t, gdb, Contact{Name: "Priya", Phone: "9123456780"}, t0)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestListSearchAndUpdate(t *testing.T) {
	gdb := dbtest.Open(t, Models()...)
	now := time.Now()
	a := upsert(t, gdb, Contact{Name: "Ravi", Phone: "9876543210"}, now)
	upsert(t, gdb, Contact{Name: "Priya", Phone: "9123456780", Email: "PRIYA@example.com"}, now.Add(time.Minute))

	r := NewRepo(gdb)
	ctx := context.Background()

	all, err := r.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	assert.Equal(t, "Priya", all.Items[0].Name, "most recent first")

	hit, err := r.List(ctx, ListParams{Q: "priya@"})
	require.NoError(t, err)
	require.Len(t, hit.Items, 1)

	hit, err = r.List(ctx, ListParams{Q: "98765"})
	require.NoError(t, err)
	require.Len(t, hit.Items, 1)

	up, err := r.Update(ctx, a.ID, UpdateInput{Name: "Ravi K", Notes: "prefers evening delivery"})
	require.NoError(t, err)
	assert.Equal(t, "prefers evening delivery", up.Notes)

	_, err = r.Update(ctx, "missing", UpdateInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
)

func TestSaveUserLinesAdoptsConcurrentlyCreatedCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// another request creates the user's cart between our lookup and insert
	raced := false
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:rival_cart", func(d *gorm.DB) {
		if raced || d.Statement.Table != (Cart{}).TableName() {
			return
		}
		raced = true
		now := time.Now()
		d.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO carts (id, user_id, created_at, updated_at) VALUES (?, ?, ?, ?)", "rival-cart", "u1", now, now)
	}))
	failed := dbtest.FailedStatements(t, f.db)

	repo := NewRepo(f.db)
	require.NoError(t, repo.SaveUserLines(ctx, "u1", Lines{{Ref: f.rocket, Qty: 2}}))
	assert.True(t, raced)
	assert.Zero(t, failed())

	var carts []Cart
	require.NoError(t, f.db.Find(&carts, "user_id = ?", "u1").Error)
	require.Len(t, carts, 1)
	assert.Equal(t, "rival-cart", carts[0].ID)

	got, err := repo.LoadUserLines(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Lines{{Ref: f.rocket, Qty: 2}}, got)
}

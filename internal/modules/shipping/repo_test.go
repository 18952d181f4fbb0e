package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
)

func TestCreateAndListByOrder(t *testing.T) {
	gdb := dbtest.Open(t, Models()...)
	ctx := context.Background()
	t0 := time.Now()

	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		if _, err := CreateInTx(ctx, tx, CreateInput{OrderID: "order-1", Courier: " ST Courier ", TrackingNo: "ST123"}, t0); err != nil {
			return err
		}
		_, err := CreateInTx(ctx, tx, CreateInput{OrderID: "order-1", Courier: "Professional", TrackingNo: "PR9"}, t0.Add(time.Minute))
		return err
	}))

	got, err := NewRepo(gdb).ListByOrder(ctx, " ORDER-1 ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ST Courier", got[0].Courier)
	assert.Equal(t, "PR9", got[1].TrackingNo)
}

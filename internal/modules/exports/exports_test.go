package exports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

func TestProductsSheet(t *testing.T) {
	var models []any
	models = append(models, catalog.Models()...)
	models = append(models, orders.Models()...)
	gdb := dbtest.Open(t, models...)
	ctx := context.Background()

	cr := catalog.NewRepo(gdb)
	cat, err := cr.CreateCategory(ctx, catalog.CategoryInput{Name: "Sparklers", Active: true})
	require.NoError(t, err)
	_, err = cr.CreateProduct(ctx, catalog.ProductInput{CategoryID: cat.ID, Name: "Electric Sparkler", PriceCents: 4000, MRPCents: 12000, Stock: 40, Active: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(cr, orders.NewRepo(gdb)).Products(ctx, &buf))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	rows := f.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0].Cells[1].Value)
	assert.Equal(t, "Electric Sparkler", rows[1].Cells[1].Value)
	assert.Equal(t, "Sparklers", rows[1].Cells[3].Value)
}

func TestOrdersSheetRespectsRange(t *testing.T) {
	gdb := dbtest.Open(t, orders.Models()...)
	ctx := context.Background()
	base := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)

	for i, at := range []time.Time{base, base.AddDate(0, 0, 5)} {
		o := orders.Order{
			ID: uuid.NewString(), Number: "HC-25102" + string(rune('0'+i)) + "-AAAAAA", CustomerName: "Meena",
			Phone: "9876543210", AddressLine: "x", City: "Madurai", State: "TN", Pincode: "625001",
			Status: orders.StatusPaid, PaymentMethod: orders.MethodOnline, Currency: "INR",
			SubtotalCents: 300000, TotalCents: 300000, IdemScope: "phone:1", IdemKey: uuid.NewString(),
			CreatedAt: at, UpdatedAt: at,
		}
		require.NoError(t, gdb.Create(&o).Error)
	}

	var buf bytes.Buffer
	ex := New(catalog.NewRepo(gdb), orders.NewRepo(gdb))
	require.NoError(t, ex.Orders(ctx, &buf, base.Add(-time.Hour), base.Add(time.Hour)))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	rows := f.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "HC-251020-AAAAAA", rows[1].Cells[0].Value)
}

func TestRange(t *testing.T) {
	now := time.Date(2025, 10, 21, 15, 0, 0, 0, time.UTC)

	from, to, err := Range("", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 22, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, to.AddDate(0, 0, -30), from)

	from, to, err = Range("2025-10-01", "2025-10-10", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 10, 11, 0, 0, 0, 0, time.UTC), to)

	_, _, err = Range("yesterday", "", now)
	assert.Error(t, err)
}

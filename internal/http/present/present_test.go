package present

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/checkout"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
)

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("load: %w", orders.ErrNotFound), http.StatusNotFound},
		{catalog.ErrDuplicateSlug, http.StatusConflict},
		{cart.ErrItemUnavailable, http.StatusBadRequest},
		{&orders.ValidationError{Fields: map[string]string{"phone": "bad"}}, http.StatusBadRequest},
		{&orders.MinimumOrderError{MinCents: 100000, SubtotalCents: 40000}, http.StatusBadRequest},
		{&checkout.OutOfStockError{}, http.StatusConflict},
		{payments.ErrGatewayDisabled, http.StatusBadGateway},
		{&payments.GatewayError{Status: 400, Code: "BAD_REQUEST_ERROR"}, http.StatusBadGateway},
		{storage.ErrTooLarge, http.StatusBadRequest},
		{orders.ErrInvalidTransition, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, apperr.HTTPStatus(Error(tc.err)), tc.err.Error())
	}
	assert.NoError(t, Error(nil))
}

func TestErrorKeepsFieldsAndCause(t *testing.T) {
	err := Error(&orders.ValidationError{Fields: map[string]string{"pincode": "Enter a valid 6-digit pincode."}})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Enter a valid 6-digit pincode.", ae.Fields["pincode"])

	var ve *orders.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestMinimumOrderMessage(t *testing.T) {
	err := Error(&orders.MinimumOrderError{MinCents: 300000, SubtotalCents: 120000})
	assert.Equal(t, "Minimum order value is ₹3,000.00. Add ₹1,800.00 more to place the order.", apperr.PublicMessage(err))
}

func TestRefundAmountIsAFieldError(t *testing.T) {
	err := Error(&payments.RefundAmountError{RequestedCents: 500000, RemainingCents: 200000})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(err))
	assert.Equal(t, "Must be at most ₹2,000.00.", ae.Fields["amount_cents"])
}

func TestOutOfStockFields(t *testing.T) {
	ref := catalog.ItemRef{Kind: catalog.KindProduct, ID: "p1"}
	err := Error(&checkout.OutOfStockError{Items: []checkout.OutOfStockItem{{Ref: ref, Requested: 5, Available: 2}}})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Only 2 left in stock.", ae.Fields["product:p1"])
}

func TestCartAddsDeliveryAndMinimum(t *testing.T) {
	v := cart.View{
		Lines: []cart.ViewLine{{
			Ref:            catalog.ItemRef{Kind: catalog.KindProduct, ID: "p1"},
			Name:           "Flower Pots",
			Qty:            3,
			UnitPriceCents: 15000,
			MRPCents:       30000,
			LineTotalCents: 45000,
			Stock:          2,
		}},
		Count:         3,
		SubtotalCents: 45000,
		MRPTotalCents: 90000,
		SavingsCents:  45000,
	}
	out := Cart(v, content.Site{MinOrderCents: 100000, DeliveryCents: 5000})

	assert.Equal(t, 50000, out.Total.Cents)
	assert.True(t, out.BelowMinimum)
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].ExceedsStock)

	empty := Cart(cart.View{}, content.Site{MinOrderCents: 100000, DeliveryCents: 5000})
	assert.Equal(t, 0, empty.Total.Cents)
	assert.False(t, empty.BelowMinimum)
	assert.NotNil(t, empty.Lines)
}

func TestAdminOrderDetailRefundable(t *testing.T) {
	ref := "rfnd_1"
	d := orders.AdminDetail{Tracking: orders.Tracking{Order: orders.Order{
		ID: "o1", Number: "HC-251021-ABC123", Status: orders.StatusPaid,
		TotalCents: 100000, RefundedCents: 20000,
	}}}
	pays := []payments.Payment{{ID: "pay1", Status: payments.StatusSucceeded, AmountCents: 100000}}
	refunds := []payments.Refund{
		{ID: "r1", Status: payments.StatusSucceeded, AmountCents: 20000},
		{ID: "r2", Status: payments.StatusInitiated, AmountCents: 30000, ProviderRef: &ref},
	}

	out := AdminOrderDetail(d, pays, refunds)
	assert.Equal(t, 50000, out.Refundable.Cents)
	assert.Equal(t, "rfnd_1", out.Refunds[1].ProviderRef)
	assert.Contains(t, out.Actions, orders.ActionCancel)

	unpaid := AdminOrderDetail(d, nil, nil)
	assert.Equal(t, 0, unpaid.Refundable.Cents)
}

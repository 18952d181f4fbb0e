package orders

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/checkout"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/shipping"
)

type recorder struct {
	mu      sync.Mutex
	created []Order
	paid    []Order
}

func (r *recorder) OrderCreated(_ context.Context, o Order, _ []OrderItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, o)
}

func (r *recorder) OrderPaid(_ context.Context, o Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paid = append(r.paid, o)
}

type env struct {
	db     *gorm.DB
	svc    *Service
	admin  *AdminService
	repo   *Repo
	carts  *cart.Service
	rec    *recorder
	rocket catalog.ItemRef
	box    catalog.ItemRef
}

func allModels() []any {
	var m []any
	m = append(m, catalog.Models()...)
	m = append(m, cart.Models()...)
	m = append(m, content.Models()...)
	m = append(m, customers.Models()...)
	m = append(m, settings.Models()...)
	m = append(m, shipping.Models()...)
	m = append(m, Models()...)
	return m
}

func newEnv(t *testing.T) env {
	t.Helper()
	gdb := dbtest.Open(t, allModels()...)
	ctx := context.Background()

	cr := catalog.NewRepo(gdb)
	rocket, err := cr.CreateProduct(ctx, catalog.ProductInput{Name: "Rocket", PriceCents: 50000, MRPCents: 150000, Stock: 10, Active: true})
	require.NoError(t, err)
	box, err := cr.CreateGiftBox(ctx, catalog.GiftBoxInput{Name: "Family Box", PriceCents: 200000, Stock: 2, Active: true})
	require.NoError(t, err)

	site := content.NewSettingsRepo(gdb)
	_, err = site.Put(ctx, map[string]string{content.KeyMinOrderCents: "100000", content.KeyDeliveryCents: "15000"})
	require.NoError(t, err)

	pay := settings.NewRepo(gdb)
	_, err = pay.Update(ctx, settings.UpdateInput{
		RazorpayEnabled: true, RazorpayKeyID: "rzp_test", RazorpayKeySecret: "secret-secret",
		ManualEnabled: true, UPIID: "shop@upi", CODEnabled: true,
	})
	require.NoError(t, err)

	log := logging.Discard()
	cartRepo := cart.NewRepo(gdb)
	svc := NewService(gdb, cartRepo, site, pay, log)
	rec := &recorder{}
	svc.AddListener(rec)

	return env{
		db:     gdb,
		svc:    svc,
		admin:  NewAdminService(gdb, svc, log),
		repo:   NewRepo(gdb),
		carts:  cart.NewService(gdb, cartRepo),
		rec:    rec,
		rocket: catalog.ItemRef{Kind: catalog.KindProduct, ID: rocket.ID},
		box:    catalog.ItemRef{Kind: catalog.KindGiftBox, ID: box.ID},
	}
}

func validCheckout() CheckoutInput {
	return CheckoutInput{
		Name:          "Karthik",
		Phone:         "+91 98765 43210",
		Email:         "Karthik@Example.com",
		AddressLine:   "12 Gandhi Road",
		City:          "Sivakasi",
		State:         "Tamil Nadu",
		Pincode:       "626123",
		PaymentMethod: MethodOnline,
	}
}

func stockOf(t *testing.T, gdb *gorm.DB, ref catalog.ItemRef) int {
	t.Helper()
	var n int
	require.NoError(t, gdb.Table(ref.Kind.Table()).Select("stock").Where("id = ?", ref.ID).Scan(&n).Error)
	return n
}

func timeFixed() time.Time { return time.Date(2025, 10, 21, 9, 30, 0, 0, time.UTC) }

func TestNewNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^HC-\d{6}-[2-9A-HJ-NP-Z]{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, NewNumber(timeFixed()))
	}
}

func TestCheckoutInputNormalize(t *testing.T) {
	in, err := validCheckout().Normalize()
	require.NoError(t, err)
	assert.Equal(t, "9876543210", in.Phone)
	assert.Equal(t, "karthik@example.com", in.Email)

	bad := CheckoutInput{Phone: "12345", Pincode: "0123", PaymentMethod: MethodManual, ManualMode: "cheque", Email: "nope"}
	_, err = bad.Normalize()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	for _, f := range []string{"name", "phone", "email", "address", "city", "state", "pincode", "manual_mode"} {
		assert.Contains(t, ve.Fields, f)
	}
	assert.Equal(t, "Enter a valid 10-digit mobile number.", ve.Fields["phone"])

	noMode := validCheckout()
	noMode.PaymentMethod, noMode.ManualMode = MethodManual, ""
	_, err = noMode.Normalize()
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{"manual_mode": "Choose UPI, bank transfer or cash on delivery."}, ve.Fields)

	online := validCheckout()
	online.ManualMode = "cheque"
	in, err = online.Normalize()
	require.NoError(t, err)
	assert.Empty(t, in.ManualMode)
}

func TestCreateFromCartGuest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{
		Checkout: validCheckout(),
		Lines:    cart.Lines{{Ref: e.rocket, Qty: 2}, {Ref: e.box, Qty: 1}},
	})
	require.NoError(t, err)
	o := res.Order

	assert.Equal(t, StatusCreated, o.Status)
	assert.Equal(t, 2*50000+200000, o.SubtotalCents)
	assert.Equal(t, 15000, o.DeliveryCents)
	assert.Equal(t, o.SubtotalCents+o.DeliveryCents, o.TotalCents)
	assert.Equal(t, CurrencyINR, o.Currency)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 100000, res.Items[0].LineTotalCents)
	assert.Equal(t, 150000, res.Items[0].MRPCents)

	assert.Equal(t, 8, stockOf(t, e.db, e.rocket))
	assert.Equal(t, 1, stockOf(t, e.db, e.box))

	var cust customers.Customer
	require.NoError(t, e.db.First(&cust, "phone = ?", "9876543210").Error)
	assert.Equal(t, cust.ID, o.CustomerID)
	assert.Len(t, e.rec.created, 1)

	tr, err := e.repo.Track(ctx, o.Number, "09876543210")
	require.NoError(t, err)
	require.Len(t, tr.Events, 1)

	_, err = e.repo.Track(ctx, o.Number, "9000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateFromCartIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	in := validCheckout()
	in.IdempotencyKey = "key-1"
	lines := cart.Lines{{Ref: e.rocket, Qty: 3}}

	first, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: in, Lines: lines})
	require.NoError(t, err)
	second, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: in, Lines: lines})
	require.NoError(t, err)

	assert.True(t, second.Idempotent)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, 7, stockOf(t, e.db, e.rocket))
	assert.Len(t, e.rec.created, 1)
}

func TestCreateFromCartLosingIdempotencyRaceReturnsWinner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	in := validCheckout()
	in.IdempotencyKey = "key-race"
	lines := cart.Lines{{Ref: e.rocket, Qty: 3}}

	winner, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: in, Lines: lines})
	require.NoError(t, err)

	// the second submit looks up the key before the winner is visible
	hidden := false
	require.NoError(t, e.db.Callback().Query().After("gorm:query").Register("test:hide_winner", func(d *gorm.DB) {
		if !hidden && d.Statement.Table == (Order{}).TableName() {
			hidden = true
			d.RowsAffected = 0
		}
	}))

	loser, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: in, Lines: lines})
	require.NoError(t, err)
	assert.True(t, hidden)
	assert.True(t, loser.Idempotent)
	assert.Equal(t, winner.Order.ID, loser.Order.ID)
	assert.Len(t, loser.Items, 1)

	var n int64
	require.NoError(t, e.db.Model(&Order{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 7, stockOf(t, e.db, e.rocket))
	assert.Len(t, e.rec.created, 1)
}

func TestCreateFromCartUserClearsStoredCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	uid := "user-42"

	st := e.carts.UserStore(uid)
	_, err := e.carts.Add(ctx, st, e.box, 1)
	require.NoError(t, err)

	res, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{
		Checkout: validCheckout(),
		UserID:   &uid,
		Lines:    cart.Lines{{Ref: e.rocket, Qty: 9}}, // ignored for users
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, string(catalog.KindGiftBox), res.Items[0].Kind)

	left, err := e.carts.Get(ctx, st)
	require.NoError(t, err)
	assert.Empty(t, left.Lines)

	list, err := e.repo.ListByUser(ctx, ListByUserParams{UserID: uid})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Items[0].ItemCount)
}

func TestCreateFromCartFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: validCheckout()})
	assert.ErrorIs(t, err, ErrCartEmpty)

	_, err = e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: validCheckout(), Lines: cart.Lines{{Ref: e.box, Qty: 3}}})
	var oos *checkout.OutOfStockError
	assert.True(t, errors.As(err, &oos))

	_, err = e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: validCheckout(), Lines: cart.Lines{{Ref: e.rocket, Qty: 1}}})
	var minErr *MinimumOrderError
	require.True(t, errors.As(err, &minErr))
	assert.Equal(t, 100000, minErr.MinCents)
	assert.Equal(t, 10, stockOf(t, e.db, e.rocket), "failed checkout keeps stock")

	bank := validCheckout()
	bank.PaymentMethod = MethodManual
	bank.ManualMode = ModeBank
	_, err = e.svc.CreateFromCart(ctx, CreateFromCartInput{Checkout: bank, Lines: cart.Lines{{Ref: e.rocket, Qty: 2}}})
	assert.ErrorIs(t, err, ErrPaymentUnavailable)

	var n int64
	require.NoError(t, e.db.Model(&Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func placeOrder(t *testing.T, e env, in CheckoutInput) Order {
	t.Helper()
	res, err := e.svc.CreateFromCart(context.Background(), CreateFromCartInput{
		Checkout: in,
		Lines:    cart.Lines{{Ref: e.rocket, Qty: 4}},
	})
	require.NoError(t, err)
	return res.Order
}

func TestAdminTransitionsHappyPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := placeOrder(t, e, validCheckout())

	assert.Equal(t, []string{ActionMarkPaid, ActionCancel}, AllowedActions(o))

	steps := []struct {
		in   TransitionInput
		want string
	}{
		{TransitionInput{Action: ActionMarkPaid}, StatusPaid},
		{TransitionInput{Action: ActionConfirm}, StatusConfirmed},
		{TransitionInput{Action: ActionPack}, StatusPacked},
		{TransitionInput{Action: ActionShip, Courier: "ST Courier", TrackingNo: "ST77"}, StatusShipped},
		{TransitionInput{Action: ActionDeliver}, StatusDelivered},
	}
	for _, st := range steps {
		st.in.OrderID = o.ID
		st.in.ActorUserID = "admin-1"
		got, err := e.admin.Transition(ctx, st.in)
		require.NoError(t, err, st.in.Action)
		assert.Equal(t, st.want, got.Status)
	}

	d, err := e.repo.AdminGetDetail(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, d.Events, 6)
	require.Len(t, d.Shipments, 1)
	assert.Equal(t, "ST77", d.Shipments[0].TrackingNo)
	require.Len(t, d.Financial, 1)
	assert.Equal(t, o.TotalCents, d.Financial[0].AmountCents)
	assert.NotNil(t, d.Order.DeliveredAt)
	assert.Len(t, e.rec.paid, 1)
}

func TestAdminTransitionRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := placeOrder(t, e, validCheckout())

	_, err := e.admin.Transition(ctx, TransitionInput{OrderID: o.ID, ActorUserID: "a", Action: ActionConfirm})
	assert.ErrorIs(t, err, ErrInvalidTransition, "online orders must be paid before confirming")

	_, err = e.admin.Transition(ctx, TransitionInput{OrderID: o.ID, ActorUserID: "a", Action: ActionShip})
	assert.ErrorIs(t, err, ErrShipmentDetails)

	_, err = e.admin.Transition(ctx, TransitionInput{OrderID: "missing", ActorUserID: "a", Action: ActionCancel})
	assert.ErrorIs(t, err, ErrNotFound)

	cod := validCheckout()
	cod.PaymentMethod = MethodManual
	cod.ManualMode = ModeCOD
	cod.Phone = "9123456789"
	c := placeOrder(t, e, cod)
	got, err := e.admin.Transition(ctx, TransitionInput{OrderID: c.ID, ActorUserID: "a", Action: ActionConfirm})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
}

func TestCancelRestocks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := placeOrder(t, e, validCheckout())
	require.Equal(t, 6, stockOf(t, e.db, e.rocket))

	got, err := e.admin.Transition(ctx, TransitionInput{OrderID: o.ID, ActorUserID: "a", Action: ActionCancel, Note: "customer called"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 10, stockOf(t, e.db, e.rocket))

	_, err = e.admin.Transition(ctx, TransitionInput{OrderID: o.ID, ActorUserID: "a", Action: ActionCancel})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 10, stockOf(t, e.db, e.rocket))
}

func TestAdminListSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := placeOrder(t, e, validCheckout())
	other := validCheckout()
	other.Name = "Meena"
	other.Phone = "9000011111"
	placeOrder(t, e, other)

	all, err := e.repo.AdminList(ctx, AdminListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	hit, err := e.repo.AdminList(ctx, AdminListParams{Q: "meena"})
	require.NoError(t, err)
	require.Len(t, hit.Items, 1)
	assert.Equal(t, 4, hit.Items[0].ItemCount)

	hit, err = e.repo.AdminList(ctx, AdminListParams{Q: a.Number[3:9]})
	require.NoError(t, err)
	assert.EqualValues(t, 2, hit.Total, "both placed the same day")

	_, err = e.admin.Transition(ctx, TransitionInput{OrderID: a.ID, ActorUserID: "x", Action: ActionMarkPaid})
	require.NoError(t, err)
	paid, err := e.repo.AdminList(ctx, AdminListParams{Status: StatusPaid})
	require.NoError(t, err)
	assert.EqualValues(t, 1, paid.Total)
}

package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
)

const (
	keyID         = "rzp_test_key"
	keySecret     = "rzp_test_secret"
	webhookSecret = "whsec_test"
)

// fakeRazorpay mimics the two REST endpoints the shop calls.
type fakeRazorpay struct {
	orders       atomic.Int32
	refunds      atomic.Int32
	refundStatus string
	failOrders   bool
}

func (f *fakeRazorpay) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, keyID, user)
		assert.Equal(t, keySecret, pass)
		if f.failOrders {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount invalid"}}`))
			return
		}
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "INR", body["currency"])
		n := f.orders.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "order_" + string(rune('A'+n-1)), "status": "created"})
	})
	mux.HandleFunc("/v1/payments/", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/refund"))
		assert.NotEmpty(t, r.Header.Get("X-Idempotency-Key"))
		f.refunds.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "rfnd_" + uuid.NewString()[:8], "status": f.refundStatus})
	})
	return mux
}

type paidRecorder struct {
	mu   sync.Mutex
	paid []string
}

func (r *paidRecorder) OrderCreated(context.Context, orders.Order, []orders.OrderItem) {}

func (r *paidRecorder) OrderPaid(_ context.Context, o orders.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paid = append(r.paid, o.ID)
}

type env struct {
	db      *gorm.DB
	svc     *Service
	webhook *WebhookService
	refunds *RefundService
	fake    *fakeRazorpay
	rec     *paidRecorder
}

func newEnv(t *testing.T) env {
	t.Helper()
	var models []any
	models = append(models, orders.Models()...)
	models = append(models, settings.Models()...)
	models = append(models, content.Models()...)
	models = append(models, Models()...)
	gdb := dbtest.Open(t, models...)
	ctx := context.Background()

	ps := settings.NewRepo(gdb)
	_, err := ps.Update(ctx, settings.UpdateInput{
		RazorpayEnabled: true, RazorpayKeyID: keyID, RazorpayKeySecret: keySecret, RazorpayWebhookSecret: webhookSecret,
	})
	require.NoError(t, err)

	fake := &fakeRazorpay{refundStatus: "processed"}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	log := logging.Discard()
	site := content.NewSettingsRepo(gdb)
	ord := orders.NewService(gdb, nil, site, ps, log)
	rec := &paidRecorder{}
	ord.AddListener(rec)

	svc := NewService(gdb, NewRazorpay(srv.URL), ps, site, ord, log)
	return env{
		db:      gdb,
		svc:     svc,
		webhook: NewWebhookService(svc, log),
		refunds: NewRefundService(svc, log),
		fake:    fake,
		rec:     rec,
	}
}

func (e env) order(t *testing.T, method string) orders.Order {
	t.Helper()
	now := time.Now()
	o := orders.Order{
		ID: uuid.NewString(), Number: orders.NewNumber(now), CustomerID: uuid.NewString(),
		CustomerName: "Meena", Phone: "9876543210", Email: "meena@example.com",
		AddressLine: "4 Car Street", City: "Madurai", State: "Tamil Nadu", Pincode: "625001",
		Status: orders.StatusCreated, PaymentMethod: method, Currency: orders.CurrencyINR,
		SubtotalCents: 300000, TotalCents: 300000,
		IdemScope: "phone:9876543210", IdemKey: uuid.NewString(),
		CreatedAt: now, UpdatedAt: now,
	}
	if method == orders.MethodManual {
		o.ManualMode = orders.ModeUPI
	}
	require.NoError(t, e.db.Create(&o).Error)
	return o
}

func (e env) reload(t *testing.T, id string) orders.Order {
	t.Helper()
	var o orders.Order
	require.NoError(t, e.db.First(&o, "id = ?", id).Error)
	return o
}

func (e env) payAndConfirm(t *testing.T, o orders.Order) Widget {
	t.Helper()
	w, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)
	_, err = e.svc.ConfirmOnline(context.Background(), ConfirmInput{
		OrderRef: w.OrderRef, PaymentRef: "pay_1", Signature: SignCheckout(keySecret, w.OrderRef, "pay_1"),
	})
	require.NoError(t, err)
	return w
}

func TestStartOnlineReusesInitiatedPayment(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodOnline)

	w1, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, keyID, w1.KeyID)
	assert.Equal(t, 300000, w1.AmountCents)
	assert.Equal(t, "INR", w1.Currency)
	assert.Equal(t, "9876543210", w1.Prefill.Contact)
	assert.Contains(t, w1.Description, o.Number)
	assert.NotEmpty(t, w1.OrderRef)

	w2, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, w1.OrderRef, w2.OrderRef)
	assert.Equal(t, int32(1), e.fake.orders.Load())
}

func TestStartOnlineRejectsManualOrder(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodManual)
	_, err := e.svc.StartOnline(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrOrderNotPayable)
}

func TestStartOnlineGatewayErrorMarksPaymentFailed(t *testing.T) {
	e := newEnv(t)
	e.fake.failOrders = true
	o := e.order(t, orders.MethodOnline)

	_, err := e.svc.StartOnline(context.Background(), o.ID)
	var ge *GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "BAD_REQUEST_ERROR", ge.Code)

	pays, err := e.svc.Payments(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, StatusFailed, pays[0].Status)
	assert.Equal(t, orders.StatusCreated, e.reload(t, o.ID).Status)
}

func TestConfirmOnlineMarksOrderPaidOnce(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodOnline)
	w := e.payAndConfirm(t, o)

	got := e.reload(t, o.ID)
	assert.Equal(t, orders.StatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)

	// replaying the relay changes nothing
	res, err := e.svc.ConfirmOnline(context.Background(), ConfirmInput{
		OrderRef: w.OrderRef, PaymentRef: "pay_1", Signature: SignCheckout(keySecret, w.OrderRef, "pay_1"),
	})
	require.NoError(t, err)
	assert.True(t, res.Idempotent)

	var entries int64
	require.NoError(t, e.db.Model(&orders.FinancialEntry{}).Where("order_id = ?", o.ID).Count(&entries).Error)
	assert.Equal(t, int64(1), entries)
	assert.Equal(t, []string{o.ID}, e.rec.paid)
}

func TestConfirmOnlineRejectsBadSignature(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodOnline)
	w, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)

	_, err = e.svc.ConfirmOnline(context.Background(), ConfirmInput{OrderRef: w.OrderRef, PaymentRef: "pay_1", Signature: "deadbeef"})
	assert.ErrorIs(t, err, ErrBadSignature)
	assert.Equal(t, orders.StatusCreated, e.reload(t, o.ID).Status)
}

func TestFailOnlineLeavesOrderPayable(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodOnline)
	w, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)

	require.NoError(t, e.svc.FailOnline(context.Background(), FailInput{OrderRef: w.OrderRef, PaymentRef: "pay_x", Reason: "card declined"}))

	pays, err := e.svc.Payments(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, StatusFailed, pays[0].Status)
	require.NotNil(t, pays[0].ErrorMessage)
	assert.Equal(t, "card declined", *pays[0].ErrorMessage)
	assert.Equal(t, orders.StatusCreated, e.reload(t, o.ID).Status)

	// a retry opens a fresh gateway order
	w2, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)
	assert.NotEqual(t, w.OrderRef, w2.OrderRef)
}

func webhookRequest(eventID string, body map[string]any) (http.Header, []byte) {
	raw, _ := json.Marshal(body)
	h := http.Header{}
	h.Set("X-Razorpay-Signature", SignWebhook(webhookSecret, raw))
	h.Set("X-Razorpay-Event-Id", eventID)
	return h, raw
}

func capturedEvent(orderRef string, amount int) map[string]any {
	return map[string]any{
		"event": EventPaymentCaptured,
		"payload": map[string]any{
			"payment": map[string]any{"entity": map[string]any{
				"id": "pay_wh", "order_id": orderRef, "amount": amount, "currency": "INR",
			}},
		},
	}
}

func TestWebhookCapturedIsDeduplicated(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodOnline)
	w, err := e.svc.StartOnline(context.Background(), o.ID)
	require.NoError(t, err)

	h, body := webhookRequest("evt_1", capturedEvent(w.OrderRef, 300000))
	require.NoError(t, e.webhook.Handle(context.Background(), h, body))

	failed := dbtest.FailedStatements(t, e.db)
	require.NoError(t, e.webhook.Handle(context.Background(), h, body))
	assert.Zero(t, failed(), "a repeated delivery must not run a failing insert")

	assert.Equal(t, orders.StatusPaid, e.reload(t, o.ID).Status)
	var events int64
	require.NoError(t, e.db.Model(&ProviderEvent{}).Count(&events).Error)
	assert.Equal(t, int64(1), events)
	assert.Len(t, e.rec.paid, 1)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	e := newEnv(t)
	h, body := webhookRequest("evt_1", capturedEvent("order_A", 300000))
	h.Set("X-Razorpay-Signature", "00")
	assert.ErrorIs(t, e.webhook.Handle(context.Background(), h, body), ErrBadSignature)
}

func TestWebhookApplyErrorIsNotRecorded(t *testing.T) {
	e := newEnv(t)
	h, body := webhookRequest("evt_unknown", capturedEvent("order_missing", 100))
	require.Error(t, e.webhook.Handle(context.Background(), h, body))

	var events int64
	require.NoError(t, e.db.Model(&ProviderEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestRefundPartialThenFull(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodOnline)
	e.payAndConfirm(t, o)
	ctx := context.Background()

	_, err := e.refunds.RefundOrder(ctx, RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r0", AmountCents: 300001})
	var amountErr *RefundAmountError
	require.ErrorAs(t, err, &amountErr)
	assert.Equal(t, 300000, amountErr.RemainingCents)
	assert.Zero(t, e.fake.refunds.Load())

	res, err := e.refunds.RefundOrder(ctx, RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r1", AmountCents: 100000, Reason: "one box damaged"})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, res.Status)
	got := e.reload(t, o.ID)
	assert.Equal(t, orders.StatusPartiallyRefunded, got.Status)
	assert.Equal(t, 100000, got.RefundedCents)

	// same key is idempotent
	again, err := e.refunds.RefundOrder(ctx, RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r1", AmountCents: 100000})
	require.NoError(t, err)
	assert.True(t, again.Idempotent)
	assert.Equal(t, int32(1), e.fake.refunds.Load())

	// zero amount refunds the rest
	rest, err := e.refunds.RefundOrder(ctx, RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r2"})
	require.NoError(t, err)
	assert.Equal(t, 200000, rest.AmountCents)
	got = e.reload(t, o.ID)
	assert.Equal(t, orders.StatusRefunded, got.Status)
	assert.Equal(t, 300000, got.RefundedCents)

	_, err = e.refunds.RefundOrder(ctx, RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r3"})
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestRefundPendingSettledByWebhook(t *testing.T) {
	e := newEnv(t)
	e.fake.refundStatus = "pending"
	o := e.order(t, orders.MethodOnline)
	e.payAndConfirm(t, o)
	ctx := context.Background()

	res, err := e.refunds.RefundOrder(ctx, RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r1"})
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, res.Status)
	assert.Equal(t, orders.StatusPaid, e.reload(t, o.ID).Status)

	refs, err := e.refunds.Refunds(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.NotNil(t, refs[0].ProviderRef)

	h, body := webhookRequest("evt_rf", map[string]any{
		"event": EventRefundProcessed,
		"payload": map[string]any{
			"refund": map[string]any{"entity": map[string]any{
				"id": *refs[0].ProviderRef, "payment_id": "pay_1", "amount": 300000, "currency": "INR",
			}},
		},
	})
	require.NoError(t, e.webhook.Handle(ctx, h, body))
	got := e.reload(t, o.ID)
	assert.Equal(t, orders.StatusRefunded, got.Status)
	assert.Equal(t, 300000, got.RefundedCents)
}

func TestRefundWithoutCapturedPayment(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, orders.MethodManual)
	_, err := e.refunds.RefundOrder(context.Background(), RefundOrderInput{OrderID: o.ID, ActorUserID: "admin-1", IdempotencyKey: "r1"})
	assert.ErrorIs(t, err, ErrNoSucceededPayment)
}

func TestVerifyCheckoutSignature(t *testing.T) {
	rp := NewRazorpay("")
	creds := Credentials{KeySecret: keySecret}
	sig := SignCheckout(keySecret, "order_A", "pay_1")
	assert.True(t, rp.VerifyCheckout(creds, "order_A", "pay_1", sig))
	assert.True(t, rp.VerifyCheckout(creds, "order_A", "pay_1", strings.ToUpper(sig)))
	assert.False(t, rp.VerifyCheckout(creds, "order_A", "pay_2", sig))
	assert.False(t, rp.VerifyCheckout(Credentials{}, "order_A", "pay_1", sig))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 255))
	assert.Equal(t, "ab", truncate("abcdef", 2))

	// "₹" is three bytes; cutting inside it backs off to the rune start
	got := truncate("x₹₹", 5)
	assert.Equal(t, "x₹", got)
	assert.True(t, utf8.ValidString(got))

	long := strings.Repeat("é", 200)
	got = truncate(long, 255)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 255)
	assert.Equal(t, 254, len(got))

	assert.Equal(t, "ok", truncate("o\xffk", 255))
}

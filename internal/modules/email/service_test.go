package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/mailer"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

func setup(t *testing.T, mock *mailer.Mock) (*Notifier, orders.Order, []orders.OrderItem) {
	t.Helper()
	var models []any
	models = append(models, content.Models()...)
	models = append(models, orders.Models()...)
	gdb := dbtest.Open(t, models...)

	site := content.NewSettingsRepo(gdb)
	_, err := site.Put(context.Background(), map[string]string{content.KeyStoreName: "Sivakasi Sparkles", content.KeyContactPhone: "9000000000"})
	require.NoError(t, err)

	now := time.Now()
	o := orders.Order{
		ID: uuid.NewString(), Number: "HC-251021-ABCDEF", CustomerName: "Meena", Email: "meena@example.com",
		Phone: "9876543210", AddressLine: "4 Car Street", City: "Madurai", State: "Tamil Nadu", Pincode: "625001",
		Status: orders.StatusCreated, PaymentMethod: orders.MethodManual, ManualMode: orders.ModeCOD,
		Currency: "INR", SubtotalCents: 150000, DeliveryCents: 10000, TotalCents: 160000,
		CreatedAt: now, UpdatedAt: now,
	}
	items := []orders.OrderItem{{
		ID: uuid.NewString(), OrderID: o.ID, Name: "Flower Pots <Deluxe>", Quantity: 3,
		UnitPriceCents: 50000, LineTotalCents: 150000,
	}}
	require.NoError(t, gdb.Create(&items).Error)

	n := NewNotifier(mock, "orders@hellocrackers.in", "Hello Crackers", "https://shop.test", site, orders.NewRepo(gdb), logging.Discard())
	return n, o, items
}

func TestConfirmationContent(t *testing.T) {
	n, o, items := setup(t, &mailer.Mock{})
	msg, err := n.Confirmation(context.Background(), o, items)
	require.NoError(t, err)

	assert.Equal(t, []string{"meena@example.com"}, msg.To)
	assert.Equal(t, "Sivakasi Sparkles order HC-251021-ABCDEF received", msg.Subject)
	assert.Contains(t, msg.TextBody, "Flower Pots <Deluxe> x 3 @ ₹500.00 = ₹1,500.00")
	assert.Contains(t, msg.TextBody, "Total:    ₹1,600.00")
	assert.Contains(t, msg.TextBody, "Cash on delivery")
	assert.Contains(t, msg.TextBody, "https://shop.test/track?number=HC-251021-ABCDEF")
	assert.Contains(t, msg.HTMLBody, "Flower Pots &lt;Deluxe&gt;")
}

func TestListenerSendsInBackground(t *testing.T) {
	mock := &mailer.Mock{}
	n, o, items := setup(t, mock)

	n.OrderCreated(context.Background(), o, items)
	n.OrderPaid(context.Background(), o)
	n.Wait()

	sent := mock.Sent()
	require.Len(t, sent, 2)
	subjects := []string{sent[0].Subject, sent[1].Subject}
	assert.Contains(t, subjects, "Payment received for order HC-251021-ABCDEF")
}

func TestListenerSkipsWithoutEmailAndSurvivesErrors(t *testing.T) {
	mock := &mailer.Mock{Err: errors.New("relay down")}
	n, o, items := setup(t, mock)

	n.OrderCreated(context.Background(), o, items)
	o.Email = ""
	n.OrderCreated(context.Background(), o, items)
	n.Wait()
	assert.Empty(t, mock.Sent())
}

// Package email renders and sends the customer order emails.
package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"sync"
	texttemplate "text/template"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/mailer"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

const sendTimeout = 20 * time.Second

// Notifier emails customers when their order is placed or paid. Sending
// happens off the request path and failures are only logged.
type Notifier struct {
	mail     mailer.Service
	from     string
	fromName string
	site     *content.SettingsRepo
	orders   *orders.Repo
	baseURL  string
	log      logrus.FieldLogger

	wg sync.WaitGroup
}

func NewNotifier(mail mailer.Service, from, fromName, baseURL string, site *content.SettingsRepo, ord *orders.Repo, log logrus.FieldLogger) *Notifier {
	return &Notifier{mail: mail, from: from, fromName: fromName, baseURL: baseURL, site: site, orders: ord, log: log}
}

// Wait blocks until in-flight sends finish.
func (n *Notifier) Wait() { n.wg.Wait() }

func (n *Notifier) OrderCreated(_ context.Context, o orders.Order, items []orders.OrderItem) {
	n.async(o, func(ctx context.Context) (mailer.Email, error) {
		return n.Confirmation(ctx, o, items)
	})
}

func (n *Notifier) OrderPaid(_ context.Context, o orders.Order) {
	n.async(o, func(ctx context.Context) (mailer.Email, error) {
		items, err := n.orders.Items(ctx, o.ID)
		if err != nil {
			return mailer.Email{}, err
		}
		return n.PaymentReceived(ctx, o, items)
	})
}

func (n *Notifier) async(o orders.Order, build func(ctx context.Context) (mailer.Email, error)) {
	if o.Email == "" {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		log := n.log.WithFields(logrus.Fields{"order_id": o.ID, "number": o.Number})
		msg, err := build(ctx)
		if err == nil {
			err = n.mail.Send(ctx, msg)
		}
		if err != nil {
			log.WithError(err).Warn("order email not sent")
			return
		}
		log.WithField("subject", msg.Subject).Info("order email sent")
	}()
}

type lineData struct {
	Name      string
	Qty       int
	UnitPrice string
	LineTotal string
}

type mailData struct {
	Store       string
	Phone       string
	Customer    string
	Number      string
	Headline    string
	Lines       []lineData
	Subtotal    string
	Delivery    string
	Total       string
	Payment     string
	Address     string
	TrackURL    string
	Instruction string
}

func (n *Notifier) data(ctx context.Context, o orders.Order, items []orders.OrderItem) mailData {
	site, err := n.site.Site(ctx)
	if err != nil {
		n.log.WithError(err).Debug("site settings unavailable for email")
	}
	store := site.StoreName
	if store == "" {
		store = "Hello Crackers"
	}

	d := mailData{
		Store:    store,
		Phone:    site.ContactPhone,
		Customer: o.CustomerName,
		Number:   o.Number,
		Subtotal: view.Rupees(o.SubtotalCents),
		Delivery: view.Rupees(o.DeliveryCents),
		Total:    view.Rupees(o.TotalCents),
		Payment:  view.PaymentLabel(o.PaymentMethod, o.ManualMode),
		Address:  fmt.Sprintf("%s, %s, %s - %s", o.AddressLine, o.City, o.State, o.Pincode),
		TrackURL: fmt.Sprintf("%s/track?number=%s", n.baseURL, o.Number),
	}
	for _, it := range items {
		d.Lines = append(d.Lines, lineData{
			Name:      it.Name,
			Qty:       it.Quantity,
			UnitPrice: view.Rupees(it.UnitPriceCents),
			LineTotal: view.Rupees(it.LineTotalCents),
		})
	}
	return d
}

// Confirmation builds the "order received" email.
func (n *Notifier) Confirmation(ctx context.Context, o orders.Order, items []orders.OrderItem) (mailer.Email, error) {
	d := n.data(ctx, o, items)
	d.Headline = "We have received your order."
	switch {
	case o.IsCOD():
		d.Instruction = "Please keep the amount ready at delivery."
	case o.PaymentMethod == orders.MethodManual:
		d.Instruction = "Please complete the payment using the details shown at checkout and quote your order number."
	case o.Status == orders.StatusCreated:
		d.Instruction = "Your order will be confirmed once the payment succeeds."
	}
	return n.render(o, fmt.Sprintf("%s order %s received", d.Store, o.Number), d)
}

// PaymentReceived builds the "payment received" email.
func (n *Notifier) PaymentReceived(ctx context.Context, o orders.Order, items []orders.OrderItem) (mailer.Email, error) {
	d := n.data(ctx, o, items)
	d.Headline = "Your payment has been received. We will pack your order shortly."
	return n.render(o, fmt.Sprintf("Payment received for order %s", o.Number), d)
}

func (n *Notifier) render(o orders.Order, subject string, d mailData) (mailer.Email, error) {
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, d); err != nil {
		return mailer.Email{}, err
	}
	if err := htmlTmpl.Execute(&html, d); err != nil {
		return mailer.Email{}, err
	}
	return mailer.Email{
		From:     n.from,
		FromName: n.fromName,
		To:       []string{o.Email},
		Subject:  subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
		Category: "Order",
	}, nil
}

var textTmpl = texttemplate.Must(texttemplate.New("order.txt").Parse(`Hello {{.Customer}},

{{.Headline}}

Order number: {{.Number}}
{{range .Lines}}
  {{.Name}} x {{.Qty}} @ {{.UnitPrice}} = {{.LineTotal}}{{end}}

Subtotal: {{.Subtotal}}
Delivery: {{.Delivery}}
Total:    {{.Total}}
Payment:  {{.Payment}}
{{if .Instruction}}
{{.Instruction}}
{{end}}
Deliver to: {{.Address}}

Track your order: {{.TrackURL}}

{{.Store}}{{if .Phone}} | {{.Phone}}{{end}}
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("order.html").Parse(`<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>{{.Store}}</h2>
    <p>Hello {{.Customer}},</p>
    <p>{{.Headline}}</p>
    <p><strong>Order number:</strong> {{.Number}}</p>
    <table cellpadding="6" style="border-collapse: collapse;">
      <tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
      {{range .Lines}}<tr><td>{{.Name}}</td><td align="center">{{.Qty}}</td><td align="right">{{.UnitPrice}}</td><td align="right">{{.LineTotal}}</td></tr>
      {{end}}
      <tr><td colspan="3" align="right">Subtotal</td><td align="right">{{.Subtotal}}</td></tr>
      <tr><td colspan="3" align="right">Delivery</td><td align="right">{{.Delivery}}</td></tr>
      <tr><td colspan="3" align="right"><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
    </table>
    <p><strong>Payment:</strong> {{.Payment}}</p>
    {{if .Instruction}}<p>{{.Instruction}}</p>{{end}}
    <p><strong>Deliver to:</strong> {{.Address}}</p>
    <p><a href="{{.TrackURL}}">Track your order</a></p>
    <p>{{.Store}}{{if .Phone}} &middot; {{.Phone}}{{end}}</p>
  </body>
</html>
`))

package payments

import (
	"context"
	"net/http"
)

// Credentials come from the admin payment settings at call time.
type Credentials struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

type CreateOrderRequest struct {
	AmountCents int
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type CreateOrderResponse struct {
	ProviderRef string
	Status      string
}

type RefundRequest struct {
	PaymentRef     string // gateway payment id
	AmountCents    int
	IdempotencyKey string
	Reason         string
}

type RefundResponse struct {
	ProviderRef string
	Status      string // initiated|succeeded|failed
}

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
	EventRefundFailed    = "refund.failed"
)

type WebhookEvent struct {
	EventID string
	Type    string

	OrderRef   string // gateway order id
	PaymentRef string // gateway payment id
	RefundRef  string

	AmountCents int
	Currency    string
	Reason      string
}

type Provider interface {
	Name() string
	CreateOrder(ctx context.Context, creds Credentials, req CreateOrderRequest) (CreateOrderResponse, error)
	Refund(ctx context.Context, creds Credentials, req RefundRequest) (RefundResponse, error)

	// VerifyCheckout checks the signature the checkout widget hands back.
	VerifyCheckout(creds Credentials, orderRef, paymentRef, signature string) bool
	// VerifyAndParseWebhook checks the body signature and decodes the event.
	VerifyAndParseWebhook(creds Credentials, headers http.Header, body []byte) (WebhookEvent, error)
}

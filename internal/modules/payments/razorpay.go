package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const ProviderRazorpay = "razorpay"

// Razorpay talks to the Orders and Refunds REST API with basic auth.
type Razorpay struct {
	BaseURL string
	Client  *http.Client
}

func NewRazorpay(baseURL string) *Razorpay {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &Razorpay{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Razorpay) Name() string { return ProviderRazorpay }

type rzpError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (r *Razorpay) do(ctx context.Context, creds Credentials, path string, payload any, idemKey string, out any) error {
	if creds.KeyID == "" || creds.KeySecret == "" {
		return ErrGatewayDisabled
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(creds.KeyID, creds.KeySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idemKey != "" {
		req.Header.Set("X-Idempotency-Key", idemKey)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("reach razorpay: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var re rzpError
		_ = json.Unmarshal(raw, &re)
		msg := re.Error.Description
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &GatewayError{Status: resp.StatusCode, Code: re.Error.Code, Message: msg}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode razorpay response: %w", err)
	}
	return nil
}

func (r *Razorpay) CreateOrder(ctx context.Context, creds Credentials, req CreateOrderRequest) (CreateOrderResponse, error) {
	payload := map[string]any{
		"amount":   req.AmountCents,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		payload["notes"] = req.Notes
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := r.do(ctx, creds, "/v1/orders", payload, "", &out); err != nil {
		return CreateOrderResponse{}, err
	}
	if out.ID == "" {
		return CreateOrderResponse{}, &GatewayError{Message: "empty order id"}
	}
	return CreateOrderResponse{ProviderRef: out.ID, Status: StatusInitiated}, nil
}

func (r *Razorpay) Refund(ctx context.Context, creds Credentials, req RefundRequest) (RefundResponse, error) {
	if req.PaymentRef == "" {
		return RefundResponse{}, errors.New("missing payment reference")
	}
	payload := map[string]any{"amount": req.AmountCents, "speed": "normal"}
	if req.Reason != "" {
		payload["notes"] = map[string]string{"reason": req.Reason}
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := r.do(ctx, creds, "/v1/payments/"+req.PaymentRef+"/refund", payload, req.IdempotencyKey, &out); err != nil {
		return RefundResponse{}, err
	}
	return RefundResponse{ProviderRef: out.ID, Status: refundStatus(out.Status)}, nil
}

func refundStatus(s string) string {
	switch s {
	case "processed":
		return StatusSucceeded
	case "failed":
		return StatusFailed
	default:
		return StatusInitiated
	}
}

func hmacHex(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignCheckout is the signature the widget returns for orderRef|paymentRef.
func SignCheckout(keySecret, orderRef, paymentRef string) string {
	return hmacHex([]byte(keySecret), []byte(orderRef+"|"+paymentRef))
}

// SignWebhook signs a webhook body the way the gateway does.
func SignWebhook(webhookSecret string, body []byte) string {
	return hmacHex([]byte(webhookSecret), body)
}

func (r *Razorpay) VerifyCheckout(creds Credentials, orderRef, paymentRef, signature string) bool {
	if creds.KeySecret == "" || orderRef == "" || paymentRef == "" || signature == "" {
		return false
	}
	want := SignCheckout(creds.KeySecret, orderRef, paymentRef)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(signature)))
}

type rzpWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Amount           int    `json:"amount"`
				Currency         string `json:"currency"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
				Amount    int    `json:"amount"`
				Currency  string `json:"currency"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

func (r *Razorpay) VerifyAndParseWebhook(creds Credentials, headers http.Header, body []byte) (WebhookEvent, error) {
	if creds.WebhookSecret == "" {
		return WebhookEvent{}, ErrGatewayDisabled
	}
	sig := headers.Get("X-Razorpay-Signature")
	if sig == "" || !hmac.Equal([]byte(SignWebhook(creds.WebhookSecret, body)), []byte(strings.ToLower(sig))) {
		return WebhookEvent{}, ErrBadSignature
	}

	var wh rzpWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode webhook: %w", err)
	}

	ev := WebhookEvent{EventID: headers.Get("X-Razorpay-Event-Id"), Type: wh.Event}
	if p := wh.Payload.Payment; p != nil {
		ev.OrderRef = p.Entity.OrderID
		ev.PaymentRef = p.Entity.ID
		ev.AmountCents = p.Entity.Amount
		ev.Currency = p.Entity.Currency
		ev.Reason = p.Entity.ErrorDescription
	}
	if rf := wh.Payload.Refund; rf != nil {
		ev.RefundRef = rf.Entity.ID
		ev.PaymentRef = rf.Entity.PaymentID
		ev.AmountCents = rf.Entity.Amount
		ev.Currency = rf.Entity.Currency
	}
	if ev.EventID == "" {
		// older deliveries lack the header; the signature is unique per body
		ev.EventID = "sig_" + strings.ToLower(sig)
	}
	return ev, nil
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
)

var webhookOpts struct {
	url        string
	secret     string
	eventID    string
	orderRef   string
	paymentRef string
	refundRef  string
	amount     int
	reason     string
	dryRun     bool
}

// webhookCmd replays a signed gateway webhook against a running server, for
// local testing without the gateway dashboard.
var webhookCmd = &cobra.Command{
	Use:       "webhook payment.captured|payment.failed|refund.processed|refund.failed",
	Short:     "Send a signed Razorpay-style webhook",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{payments.EventPaymentCaptured, payments.EventPaymentFailed, payments.EventRefundProcessed, payments.EventRefundFailed},
	RunE: func(cmd *cobra.Command, args []string) error {
		o := webhookOpts
		if o.secret == "" {
			return errors.New("--secret not provided and RAZORPAY_WEBHOOK_SECRET not set")
		}
		body, err := json.Marshal(webhookBody(args[0]))
		if err != nil {
			return err
		}
		sig := payments.SignWebhook(o.secret, body)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "X-Razorpay-Event-Id: %s\nX-Razorpay-Signature: %s\nBody: %s\n", o.eventID, sig, body)
		if o.dryRun {
			return nil
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, o.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Razorpay-Signature", sig)
		req.Header.Set("X-Razorpay-Event-Id", o.eventID)

		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		fmt.Fprintf(out, "Status: %d\nResponse: %s\n", resp.StatusCode, respBody)
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("webhook rejected with status %d", resp.StatusCode)
		}
		return nil
	},
}

type entity map[string]any

func webhookBody(event string) map[string]any {
	o := webhookOpts
	payload := map[string]any{}
	switch event {
	case payments.EventPaymentCaptured, payments.EventPaymentFailed:
		e := entity{"id": o.paymentRef, "order_id": o.orderRef, "amount": o.amount, "currency": "INR"}
		if event == payments.EventPaymentFailed {
			e["error_description"] = o.reason
		}
		payload["payment"] = map[string]any{"entity": e}
	default:
		payload["refund"] = map[string]any{"entity": entity{
			"id": o.refundRef, "payment_id": o.paymentRef, "amount": o.amount, "currency": "INR",
		}}
	}
	return map[string]any{"entity": "event", "event": event, "payload": payload}
}

func init() {
	f := webhookCmd.Flags()
	f.StringVar(&webhookOpts.url, "url", "http://localhost:8080/api/webhooks/razorpay", "webhook endpoint")
	f.StringVar(&webhookOpts.secret, "secret", os.Getenv("RAZORPAY_WEBHOOK_SECRET"), "webhook secret from payment settings")
	f.StringVar(&webhookOpts.eventID, "event-id", "evt_"+uuid.NewString()[:13], "event id header")
	f.StringVar(&webhookOpts.orderRef, "order-ref", "", "gateway order id (order_...)")
	f.StringVar(&webhookOpts.paymentRef, "payment-ref", "pay_"+uuid.NewString()[:13], "gateway payment id")
	f.StringVar(&webhookOpts.refundRef, "refund-ref", "rfnd_"+uuid.NewString()[:13], "gateway refund id")
	f.IntVar(&webhookOpts.amount, "amount", 300000, "amount in paise")
	f.StringVar(&webhookOpts.reason, "reason", "Payment declined by bank", "failure reason for payment.failed")
	f.BoolVar(&webhookOpts.dryRun, "dry-run", false, "print the signed request without sending")

	rootCmd.AddCommand(webhookCmd)
}

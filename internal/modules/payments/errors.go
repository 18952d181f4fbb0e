package payments

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotPayable    = errors.New("order not payable")
	ErrGatewayDisabled    = errors.New("online payments are not enabled")
	ErrBadSignature       = errors.New("payment signature mismatch")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrNoSucceededPayment = errors.New("no succeeded payment found")
	ErrNotRefundable      = errors.New("order not refundable")
)

// GatewayError is a failure reported by the payment provider.
type GatewayError struct {
	Status  int
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return "gateway: " + e.Code + ": " + e.Message
	}
	return "gateway: " + e.Message
}

// RefundAmountError rejects a refund larger than the refundable balance.
type RefundAmountError struct {
	RequestedCents int
	RemainingCents int
}

func (e *RefundAmountError) Error() string {
	return fmt.Sprintf("refund of %d exceeds refundable %d", e.RequestedCents, e.RemainingCents)
}

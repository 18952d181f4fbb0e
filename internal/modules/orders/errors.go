package orders

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrNotActionable      = errors.New("order not actionable")
	ErrShipmentDetails    = errors.New("courier is required to ship")
	ErrPaymentUnavailable = errors.New("selected payment option is not available")
)

// ValidationError carries per-field messages for the checkout form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout: %d field(s)", len(e.Fields))
}

type MinimumOrderError struct {
	MinCents      int
	SubtotalCents int
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("order subtotal %d below minimum %d", e.SubtotalCents, e.MinCents)
}

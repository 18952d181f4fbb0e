// Package present maps domain values to the JSON view models in pkg/view
// and domain errors to apperr kinds.
package present

import (
	"errors"
	"fmt"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/checkout"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/feedback"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

func caused(e *apperr.AppError, err error) *apperr.AppError {
	e.Err = err
	return e
}

// Error translates a domain error into an *apperr.AppError. Unknown errors
// become internal failures.
func Error(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}

	var (
		ve    *orders.ValidationError
		me    *orders.MinimumOrderError
		oos   *checkout.OutOfStockError
		authV *auth.ValidationError
		gw    *payments.GatewayError
		ra    *payments.RefundAmountError
	)
	switch {
	case errors.As(err, &ve):
		return caused(apperr.InvalidErr("Please check the highlighted fields.", ve.Fields), err)
	case errors.As(err, &authV):
		return caused(apperr.InvalidErr("Please check the highlighted fields.", authV.Fields), err)
	case errors.As(err, &me):
		msg := fmt.Sprintf("Minimum order value is %s. Add %s more to place the order.",
			view.Rupees(me.MinCents), view.Rupees(me.MinCents-me.SubtotalCents))
		return caused(apperr.InvalidErr(msg, nil), err)
	case errors.As(err, &oos):
		fields := map[string]string{}
		for _, it := range oos.Items {
			fields[it.Ref.Key()] = fmt.Sprintf("Only %d left in stock.", it.Available)
		}
		return caused(apperr.ConflictErr("Some items in your cart are out of stock.").WithFields(fields), err)
	case errors.As(err, &gw):
		return apperr.UnavailableErr("The payment gateway rejected the request. Please try again.", err)

	case errors.Is(err, catalog.ErrNotFound):
		return caused(apperr.NotFoundErr("Item not found."), err)
	case errors.Is(err, catalog.ErrDuplicateSlug):
		return caused(apperr.ConflictErr("That slug is already in use.").WithFields(map[string]string{"slug": "Already in use."}), err)

	case errors.Is(err, cart.ErrInvalidItem):
		return caused(apperr.InvalidErr("Invalid cart item.", nil), err)
	case errors.Is(err, cart.ErrTooManyLines):
		return caused(apperr.InvalidErr("Your cart is full.", nil), err)
	case errors.Is(err, cart.ErrItemUnavailable):
		return caused(apperr.InvalidErr("This item is no longer available.", nil), err)

	case errors.Is(err, orders.ErrNotFound):
		return caused(apperr.NotFoundErr("Order not found."), err)
	case errors.Is(err, orders.ErrCartEmpty):
		return caused(apperr.InvalidErr("Your cart is empty.", nil), err)
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrNotActionable):
		return caused(apperr.ConflictErr("This action is not allowed for the order's current status."), err)
	case errors.Is(err, orders.ErrShipmentDetails):
		return caused(apperr.InvalidErr("Courier is required to ship.", map[string]string{"courier": "This field is required."}), err)
	case errors.Is(err, orders.ErrPaymentUnavailable):
		return caused(apperr.InvalidErr("The selected payment option is not available.", map[string]string{"payment_method": "Not available."}), err)

	case errors.Is(err, payments.ErrOrderNotPayable):
		return caused(apperr.ConflictErr("This order can no longer be paid online."), err)
	case errors.Is(err, payments.ErrGatewayDisabled):
		return apperr.UnavailableErr("Online payments are currently unavailable.", err)
	case errors.Is(err, payments.ErrBadSignature):
		return caused(apperr.InvalidErr("Payment verification failed.", nil), err)
	case errors.Is(err, payments.ErrPaymentNotFound):
		return caused(apperr.NotFoundErr("Payment not found."), err)
	case errors.As(err, &ra):
		msg := "Must be at most " + view.Rupees(ra.RemainingCents) + "."
		return caused(apperr.InvalidErr("The refund is larger than the refundable balance.", map[string]string{"amount_cents": msg}), err)
	case errors.Is(err, payments.ErrNoSucceededPayment), errors.Is(err, payments.ErrNotRefundable):
		return caused(apperr.ConflictErr("This order cannot be refunded."), err)

	case errors.Is(err, auth.ErrEmailTaken):
		return caused(apperr.ConflictErr("An account with this email already exists.").WithFields(map[string]string{"email": "Already registered."}), err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return caused(apperr.UnauthorizedErr("Invalid email or password."), err)
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrInvalidToken):
		return caused(apperr.UnauthorizedErr("Please sign in again."), err)
	case errors.Is(err, auth.ErrUserNotFound):
		return caused(apperr.NotFoundErr("User not found."), err)
	case errors.Is(err, auth.ErrFirebaseDisabled):
		return apperr.UnavailableErr("Social sign-in is not available.", err)

	case errors.Is(err, customers.ErrNotFound):
		return caused(apperr.NotFoundErr("Customer not found."), err)
	case errors.Is(err, content.ErrNoticeNotFound):
		return caused(apperr.NotFoundErr("Notice not found."), err)
	case errors.Is(err, feedback.ErrNotFound):
		return caused(apperr.NotFoundErr("Feedback not found."), err)
	case errors.Is(err, settings.ErrIncomplete):
		return caused(apperr.InvalidErr("Razorpay key id and secret are required to enable online payments.", nil), err)

	case errors.Is(err, storage.ErrUnsupportedType):
		return caused(apperr.InvalidErr("Upload a png, jpg, webp or gif image.", map[string]string{"image": "Unsupported file type."}), err)
	case errors.Is(err, storage.ErrTooLarge):
		return caused(apperr.InvalidErr("Images must be 5 MB or smaller.", map[string]string{"image": "File too large."}), err)
	}
	return apperr.Wrap(err)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/cartcookie"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type CheckoutHandler struct {
	Orders      *orders.Service
	Payments    *payments.Service
	PaySettings *settings.Repo
	CartCK      *cartcookie.Codec
	Flash       *flash.Codec
	Log         logrus.FieldLogger
}

func NewCheckoutHandler(osvc *orders.Service, psvc *payments.Service, ps *settings.Repo, ck *cartcookie.Codec, fl *flash.Codec, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{Orders: osvc, Payments: psvc, PaySettings: ps, CartCK: ck, Flash: fl, Log: log}
}

// POST /api/checkout places the order and, for online payment, opens the
// gateway order the browser widget needs. Replaying the same
// idempotency_key returns the same order.
func (h *CheckoutHandler) Post(c *gin.Context) {
	var in orders.CheckoutInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()

	userID := middleware.CurrentUserID(c)
	req := orders.CreateFromCartInput{Checkout: in, UserID: userID}
	if userID == nil {
		req.Lines = h.CartCK.Read(c)
	}

	res, err := h.Orders.CreateFromCart(ctx, req)
	if err != nil {
		fail(c, err)
		return
	}
	if userID == nil {
		h.CartCK.Clear(c)
	}

	o := res.Order
	out := view.CheckoutResult{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		Status:      o.Status,
		Total:       view.INR(o.TotalCents),
		Payment:     view.PaymentLabel(o.PaymentMethod, o.ManualMode),
		Idempotent:  res.Idempotent,
	}

	log := h.Log.WithFields(logrus.Fields{"order_id": o.ID, "order_number": o.Number})
	msg := "Order " + o.Number + " placed."

	switch {
	case o.PaymentMethod == orders.MethodOnline && o.Status == orders.StatusCreated:
		w, err := h.Payments.StartOnline(ctx, o.ID)
		if err != nil {
			// the order stands; the shopper can retry payment from tracking
			log.WithError(err).Warn("checkout_payment_start_failed")
			out.PaymentError = apperr.PublicMessage(present.Error(err))
			msg = "Order " + o.Number + " placed, but the payment could not be started."
			render.WithFlash(c, h.Flash, view.FlashWarning, msg, http.StatusCreated, out)
			return
		}
		out.Widget = w
	case o.PaymentMethod == orders.MethodManual:
		ps, err := h.PaySettings.Get(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		out.Instructions = ps.Instructions()
	}

	log.WithField("idempotent", res.Idempotent).Info("checkout_completed")
	render.WithFlash(c, h.Flash, view.FlashSuccess, msg, http.StatusCreated, out)
}

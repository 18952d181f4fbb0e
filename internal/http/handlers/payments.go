package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

// maxWebhookBody bounds what the gateway may post to us.
const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	Payments    *payments.Service
	Webhooks    *payments.WebhookService
	PaySettings *settings.Repo
	Orders      *orders.Repo
	Flash       *flash.Codec
	Log         logrus.FieldLogger
}

func NewPaymentHandler(svc *payments.Service, wh *payments.WebhookService, ps *settings.Repo, ord *orders.Repo, fl *flash.Codec, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{Payments: svc, Webhooks: wh, PaySettings: ps, Orders: ord, Flash: fl, Log: log}
}

type startInput struct {
	Number string `json:"number" binding:"required,max=20"`
	Phone  string `json:"phone" binding:"required,max=20"`
}

// POST /api/payments/razorpay/start reopens the widget for an unpaid order.
func (h *PaymentHandler) Start(c *gin.Context) {
	var in startInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	t, err := h.Orders.Track(c.Request.Context(), in.Number, in.Phone)
	if err != nil {
		fail(c, err)
		return
	}
	w, err := h.Payments.StartOnline(c.Request.Context(), t.Order.ID)
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"razorpay": w})
}

// POST /api/payments/razorpay/verify is the widget's success relay.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var in payments.ConfirmInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	res, err := h.Payments.ConfirmOnline(c.Request.Context(), in)
	if err != nil {
		h.Log.WithError(err).WithField("order_ref", in.OrderRef).Warn("payment_verify_failed")
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Payment received for order "+res.OrderNumber+".", http.StatusOK, res)
}

// POST /api/payments/razorpay/failure is the widget's failure relay. The
// order is left payable.
func (h *PaymentHandler) Failure(c *gin.Context) {
	var in payments.FailInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	if err := h.Payments.FailOnline(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashError, "Payment failed. You can try again from your order page.", http.StatusOK, gin.H{"ok": true})
}

// GET /api/payments/manual
func (h *PaymentHandler) Manual(c *gin.Context) {
	ps, err := h.PaySettings.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{
		"online_enabled": ps.OnlineReady(),
		"manual_enabled": ps.ManualEnabled,
		"instructions":   ps.Instructions(),
	})
}

// POST /api/webhooks/razorpay. A 500 makes the gateway retry.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.Webhooks.Handle(c.Request.Context(), c.Request.Header, body); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, payments.ErrBadSignature) || errors.Is(err, payments.ErrGatewayDisabled) {
			status = http.StatusBadRequest
		}
		h.Log.WithError(err).WithField("status", status).Error("webhook_failed")
		c.JSON(status, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

// PaymentSettingsHandler never returns secrets in clear.
type PaymentSettingsHandler struct {
	Repo  *settings.Repo
	Flash *flash.Codec
	Log   logrus.FieldLogger
}

func NewPaymentSettingsHandler(repo *settings.Repo, fl *flash.Codec, log logrus.FieldLogger) *PaymentSettingsHandler {
	return &PaymentSettingsHandler{Repo: repo, Flash: fl, Log: log}
}

// GET /api/admin/payment-settings
func (h *PaymentSettingsHandler) Get(c *gin.Context) {
	ps, err := h.Repo.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, ps.Masked())
}

// PUT /api/admin/payment-settings. Blank or masked secrets are kept.
func (h *PaymentSettingsHandler) Put(c *gin.Context) {
	var in settings.UpdateInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	ps, err := h.Repo.Update(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.Log.WithFields(logrus.Fields{
		"admin_id":         adminID(c),
		"razorpay_enabled": ps.RazorpayEnabled,
		"manual_enabled":   ps.ManualEnabled,
	}).Info("payment_settings_updated")
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Payment settings saved.", http.StatusOK, ps.Masked())
}

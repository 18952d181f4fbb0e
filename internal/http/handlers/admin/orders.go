package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/handlers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/exports"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type OrdersHandler struct {
	Repo      *orders.Repo
	Admin     *orders.AdminService
	Payments  *payments.Service
	RefundSvc *payments.RefundService
	Site      *content.SettingsRepo
	Flash     *flash.Codec
	Log       logrus.FieldLogger
}

func NewOrdersHandler(repo *orders.Repo, adm *orders.AdminService, pay *payments.Service, refunds *payments.RefundService, site *content.SettingsRepo, fl *flash.Codec, log logrus.FieldLogger) *OrdersHandler {
	return &OrdersHandler{Repo: repo, Admin: adm, Payments: pay, RefundSvc: refunds, Site: site, Flash: fl, Log: log}
}

// GET /api/admin/orders?q=&status=&customer_id=&from=&to=&page=
func (h *OrdersHandler) List(c *gin.Context) {
	page, size := pageParams(c, 30)
	in := orders.AdminListParams{
		Q:          strings.TrimSpace(c.Query("q")),
		Status:     strings.TrimSpace(c.Query("status")),
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		Page:       page,
		PageSize:   size,
	}
	if from, to := c.Query("from"), c.Query("to"); from != "" || to != "" {
		f, t, err := exports.Range(from, to, time.Now())
		if err != nil {
			fail(c, apperr.InvalidErr("Dates must look like 2025-10-21.", map[string]string{"from": "Invalid date.", "to": "Invalid date."}))
			return
		}
		in.From, in.To = &f, &t
	}

	res, err := h.Repo.AdminList(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, view.NewPage(present.AdminOrderList(res.Items), res.Total, page, size))
}

func (h *OrdersHandler) detail(c *gin.Context, id string) (view.AdminOrderDetail, error) {
	ctx := c.Request.Context()
	d, err := h.Repo.AdminGetDetail(ctx, id)
	if err != nil {
		return view.AdminOrderDetail{}, err
	}
	pays, err := h.Payments.Payments(ctx, id)
	if err != nil {
		return view.AdminOrderDetail{}, err
	}
	refunds, err := h.RefundSvc.Refunds(ctx, id)
	if err != nil {
		return view.AdminOrderDetail{}, err
	}
	return present.AdminOrderDetail(d, pays, refunds), nil
}

// GET /api/admin/orders/:id
func (h *OrdersHandler) Detail(c *gin.Context) {
	vm, err := h.detail(c, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, vm)
}

type actionInput struct {
	Note       string `json:"note" binding:"max=255"`
	Courier    string `json:"courier" binding:"max=80"`
	TrackingNo string `json:"tracking_no" binding:"max=80"`
}

// POST /api/admin/orders/:id/actions/:action (mark_paid|confirm|pack|ship|deliver|cancel)
func (h *OrdersHandler) Action(c *gin.Context) {
	var in actionInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	id, action := c.Param("id"), c.Param("action")

	o, err := h.Admin.Transition(c.Request.Context(), orders.TransitionInput{
		OrderID:     id,
		ActorUserID: adminID(c),
		Action:      action,
		Note:        strings.TrimSpace(in.Note),
		Courier:     strings.TrimSpace(in.Courier),
		TrackingNo:  strings.TrimSpace(in.TrackingNo),
	})
	if err != nil {
		fail(c, err)
		return
	}
	vm, err := h.detail(c, o.ID)
	if err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Order "+o.Number+" is now "+strings.ToLower(view.StatusLabel(o.Status))+".", http.StatusOK, vm)
}

type refundInput struct {
	AmountCents    int    `json:"amount_cents" binding:"gte=0"`
	Reason         string `json:"reason" binding:"max=255"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=64"`
}

// POST /api/admin/orders/:id/refund. amount_cents 0 refunds the remainder.
func (h *OrdersHandler) Refund(c *gin.Context) {
	var in refundInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	idem := strings.TrimSpace(in.IdempotencyKey)
	if idem == "" {
		idem = uuid.NewString()
	}

	res, err := h.RefundSvc.RefundOrder(c.Request.Context(), payments.RefundOrderInput{
		OrderID:        c.Param("id"),
		ActorUserID:    adminID(c),
		IdempotencyKey: idem,
		AmountCents:    in.AmountCents,
		Reason:         strings.TrimSpace(in.Reason),
	})
	if err != nil {
		fail(c, err)
		return
	}

	msg := "Refund of " + view.Rupees(res.AmountCents) + " " + res.Status + "."
	if res.Idempotent {
		msg = "Refund already recorded."
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, msg, http.StatusOK, res)
}

// GET /api/admin/orders/:id/challan.pdf
func (h *OrdersHandler) Challan(c *gin.Context) {
	d, err := h.Repo.AdminGetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := handlers.SendChallan(c, h.Site, d.Tracking); err != nil {
		fail(c, err)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

// AccountHandler serves signed-in customers. Routes sit behind RequireAuth.
type AccountHandler struct {
	Auth      *auth.Service
	OrderRepo *orders.Repo
	Flash     *flash.Codec
}

func NewAccountHandler(svc *auth.Service, ord *orders.Repo, fl *flash.Codec) *AccountHandler {
	return &AccountHandler{Auth: svc, OrderRepo: ord, Flash: fl}
}

// GET /api/account/orders
func (h *AccountHandler) Orders(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	page, size := pageParams(c, 20)
	res, err := h.OrderRepo.ListByUser(c.Request.Context(), orders.ListByUserParams{UserID: u.ID, Page: page, PageSize: size})
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, view.NewPage(present.OrderSummaries(res.Items), res.Total, page, size))
}

// GET /api/account/orders/:number
func (h *AccountHandler) Order(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	o, err := h.OrderRepo.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		fail(c, err)
		return
	}
	if o.UserID == nil || *o.UserID != u.ID {
		fail(c, orders.ErrNotFound)
		return
	}
	t, err := h.OrderRepo.Track(c.Request.Context(), o.Number, o.Phone)
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, present.Tracking(t))
}

type passwordInput struct {
	CurrentPassword string `json:"current_password" binding:"required,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
}

// POST /api/account/password signs out every other session.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	u, _ := middleware.CurrentUser(c)
	var in passwordInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), u.ID, in.CurrentPassword, in.NewPassword, middleware.SessionToken(c)); err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Your password has been changed.", http.StatusOK, gin.H{"ok": true})
}

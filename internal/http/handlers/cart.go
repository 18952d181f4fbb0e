package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/cartcookie"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
)

type CartHandler struct {
	Cart   *cart.Service
	CartCK *cartcookie.Codec
	Site   *content.SettingsRepo
}

func NewCartHandler(svc *cart.Service, ck *cartcookie.Codec, site *content.SettingsRepo) *CartHandler {
	return &CartHandler{Cart: svc, CartCK: ck, Site: site}
}

type cartItemInput struct {
	Kind string `json:"kind" binding:"required,oneof=product gift_box"`
	ID   string `json:"id" binding:"required,max=36"`
	Qty  int    `json:"qty" binding:"gte=-99,lte=99"`
}

func (in cartItemInput) ref() catalog.ItemRef {
	return catalog.ItemRef{Kind: catalog.Kind(in.Kind), ID: in.ID}
}

// store picks the DB cart for signed-in users and the cookie cart for guests.
func (h *CartHandler) store(c *gin.Context) cart.Store {
	if u, ok := middleware.CurrentUser(c); ok {
		return h.Cart.UserStore(u.ID)
	}
	return h.CartCK.Store(c)
}

func (h *CartHandler) respond(c *gin.Context, v cart.View, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	site, err := h.Site.Site(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, present.Cart(v, site))
}

// GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	v, err := h.Cart.Get(c.Request.Context(), h.store(c))
	h.respond(c, v, err)
}

// POST /api/cart/items adds qty (default 1) to the line for the item.
func (h *CartHandler) Add(c *gin.Context) {
	var in cartItemInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	if in.Qty <= 0 {
		in.Qty = 1
	}
	v, err := h.Cart.Add(c.Request.Context(), h.store(c), in.ref(), in.Qty)
	h.respond(c, v, err)
}

// PATCH /api/cart/items sets the quantity; 0 removes the line.
func (h *CartHandler) SetQty(c *gin.Context) {
	var in cartItemInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	v, err := h.Cart.SetQty(c.Request.Context(), h.store(c), in.ref(), in.Qty)
	h.respond(c, v, err)
}

// POST /api/cart/items/decrement
func (h *CartHandler) Decrement(c *gin.Context) {
	var in cartItemInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	v, err := h.Cart.Decrement(c.Request.Context(), h.store(c), in.ref())
	h.respond(c, v, err)
}

// DELETE /api/cart/items
func (h *CartHandler) Remove(c *gin.Context) {
	var in cartItemInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	v, err := h.Cart.Remove(c.Request.Context(), h.store(c), in.ref())
	h.respond(c, v, err)
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	v, err := h.Cart.Clear(c.Request.Context(), h.store(c))
	h.respond(c, v, err)
}

package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type CustomersHandler struct {
	Repo   *customers.Repo
	Orders *orders.Repo
	Flash  *flash.Codec
}

func NewCustomersHandler(repo *customers.Repo, ord *orders.Repo, fl *flash.Codec) *CustomersHandler {
	return &CustomersHandler{Repo: repo, Orders: ord, Flash: fl}
}

// GET /api/admin/customers?q=&page=
func (h *CustomersHandler) List(c *gin.Context) {
	page, size := pageParams(c, 30)
	res, err := h.Repo.List(c.Request.Context(), customers.ListParams{
		Q: strings.TrimSpace(c.Query("q")), Page: page, PageSize: size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, view.NewPage(present.Customers(res.Items), res.Total, page, size))
}

// GET /api/admin/customers/:id returns the customer and their latest orders.
func (h *CustomersHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	cust, err := h.Repo.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Orders.AdminList(ctx, orders.AdminListParams{CustomerID: cust.ID, PageSize: 50})
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{
		"customer": present.Customer(cust),
		"orders":   present.OrderSummaries(res.Items),
	})
}

// PUT /api/admin/customers/:id
func (h *CustomersHandler) Update(c *gin.Context) {
	var in customers.UpdateInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	cust, err := h.Repo.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Customer saved.", http.StatusOK, present.Customer(cust))
}

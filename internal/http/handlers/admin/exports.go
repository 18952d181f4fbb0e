package admin

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/exports"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
)

type ExportsHandler struct {
	Exporter *exports.Exporter
	Now      func() time.Time
}

func NewExportsHandler(ex *exports.Exporter) *ExportsHandler {
	return &ExportsHandler{Exporter: ex, Now: time.Now}
}

// GET /api/admin/exports/products.xlsx
func (h *ExportsHandler) Products(c *gin.Context) {
	ctx := c.Request.Context()
	name := "products-" + h.Now().Format("20060102") + ".xlsx"
	if err := render.Attachment(c, name, exports.ContentType, func(w io.Writer) error {
		return h.Exporter.Products(ctx, w)
	}); err != nil {
		fail(c, err)
	}
}

// GET /api/admin/exports/orders.xlsx?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ExportsHandler) Orders(c *gin.Context) {
	from, to, err := exports.Range(c.Query("from"), c.Query("to"), h.Now())
	if err != nil {
		fail(c, apperr.InvalidErr("Dates must look like 2025-10-21.", nil))
		return
	}
	ctx := c.Request.Context()
	name := "orders-" + from.Format("20060102") + "-" + to.AddDate(0, 0, -1).Format("20060102") + ".xlsx"
	if err := render.Attachment(c, name, exports.ContentType, func(w io.Writer) error {
		return h.Exporter.Orders(ctx, w, from, to)
	}); err != nil {
		fail(c, err)
	}
}

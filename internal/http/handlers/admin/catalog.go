package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type CatalogHandler struct {
	Svc   *catalog.AdminService
	Flash *flash.Codec
	Log   logrus.FieldLogger
}

func NewCatalogHandler(svc *catalog.AdminService, fl *flash.Codec, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Flash: fl, Log: log}
}

func (h *CatalogHandler) saved(c *gin.Context, status int, what string, v any) {
	render.WithFlash(c, h.Flash, view.FlashSuccess, what+" saved.", status, v)
}

func (h *CatalogHandler) deleted(c *gin.Context, what string) {
	render.WithFlash(c, h.Flash, view.FlashSuccess, what+" deleted.", http.StatusOK, gin.H{"ok": true})
}

// --- categories ---

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cs, err := h.Svc.Repo().ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"categories": present.Categories(cs)})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var in catalog.CategoryInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	cat, err := h.Svc.CreateCategory(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusCreated, "Category", present.Category(cat))
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var in catalog.CategoryInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	cat, err := h.Svc.UpdateCategory(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusOK, "Category", present.Category(cat))
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.Svc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	h.deleted(c, "Category")
}

// --- products ---

// GET /api/admin/products?q=&category_id=&page=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, size := pageParams(c, 50)
	res, err := h.Svc.Repo().ListProducts(c.Request.Context(), catalog.AdminListParams{
		Q:          strings.TrimSpace(c.Query("q")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, view.NewPage(present.AdminProducts(res.Items), res.Total, page, size))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.Svc.Repo().GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, present.AdminProduct(p))
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.Svc.CreateProduct(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.Log.WithField("product_id", p.ID).Info("product_created")
	h.saved(c, http.StatusCreated, "Product", present.AdminProduct(p))
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusOK, "Product", present.AdminProduct(p))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	h.deleted(c, "Product")
}

// POST /api/admin/products/:id/image (multipart field "image")
func (h *CatalogHandler) ProductImage(c *gin.Context) {
	up, done, err := imageUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer done()

	p, err := h.Svc.SetProductImage(c.Request.Context(), c.Param("id"), up)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusOK, "Image", present.AdminProduct(p))
}

// --- gift boxes ---

func (h *CatalogHandler) ListGiftBoxes(c *gin.Context) {
	gs, err := h.Svc.Repo().ListGiftBoxes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"gift_boxes": present.AdminGiftBoxes(gs)})
}

func (h *CatalogHandler) GetGiftBox(c *gin.Context) {
	g, err := h.Svc.Repo().GetGiftBox(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, present.AdminGiftBox(g))
}

func (h *CatalogHandler) CreateGiftBox(c *gin.Context) {
	var in catalog.GiftBoxInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	g, err := h.Svc.CreateGiftBox(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusCreated, "Gift box", present.AdminGiftBox(g))
}

func (h *CatalogHandler) UpdateGiftBox(c *gin.Context) {
	var in catalog.GiftBoxInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	g, err := h.Svc.UpdateGiftBox(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusOK, "Gift box", present.AdminGiftBox(g))
}

func (h *CatalogHandler) DeleteGiftBox(c *gin.Context) {
	if err := h.Svc.DeleteGiftBox(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	h.deleted(c, "Gift box")
}

func (h *CatalogHandler) GiftBoxImage(c *gin.Context) {
	up, done, err := imageUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer done()

	g, err := h.Svc.SetGiftBoxImage(c.Request.Context(), c.Param("id"), up)
	if err != nil {
		fail(c, err)
		return
	}
	h.saved(c, http.StatusOK, "Image", present.AdminGiftBox(g))
}

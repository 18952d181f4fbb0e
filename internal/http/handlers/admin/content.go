package admin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/feedback"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

// ContentHandler manages site settings, notices and testimonials.
type ContentHandler struct {
	Site     *content.SettingsRepo
	Notices  *content.NoticeRepo
	Feedback *feedback.Repo
	Store    storage.Storage
	Flash    *flash.Codec
	Log      logrus.FieldLogger
}

func NewContentHandler(site *content.SettingsRepo, notices *content.NoticeRepo, fb *feedback.Repo, store storage.Storage, fl *flash.Codec, log logrus.FieldLogger) *ContentHandler {
	return &ContentHandler{Site: site, Notices: notices, Feedback: fb, Store: store, Flash: fl, Log: log}
}

// GET /api/admin/site returns every stored setting, including the map token.
func (h *ContentHandler) GetSite(c *gin.Context) {
	m, err := h.Site.All(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"settings": m})
}

// PUT /api/admin/site takes a flat object; unknown keys are ignored.
func (h *ContentHandler) PutSite(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, apperr.InvalidErr("Request body is invalid.", nil))
		return
	}
	values := make(map[string]string, len(raw))
	fields := map[string]string{}
	for k, v := range raw {
		s, ok := settingString(v)
		if !ok {
			fields[k] = "Must be a string, number or boolean."
			continue
		}
		values[k] = s
	}
	for _, k := range []string{content.KeyMinOrderCents, content.KeyDeliveryCents} {
		if s, ok := values[k]; ok && s != "" {
			if n, err := strconv.Atoi(s); err != nil || n < 0 {
				fields[k] = "Must be a whole number of paise."
			}
		}
	}
	for _, k := range []string{content.KeyStoreLat, content.KeyStoreLng} {
		if s, ok := values[k]; ok && s != "" {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				fields[k] = "Must be a number."
			}
		}
	}
	if len(fields) > 0 {
		fail(c, apperr.InvalidErr("Please check the highlighted fields.", fields))
		return
	}

	keys, err := h.Site.Put(c.Request.Context(), values)
	if err != nil {
		fail(c, err)
		return
	}
	h.Log.WithField("keys", keys).Info("site_settings_updated")
	m, err := h.Site.All(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Site settings saved.", http.StatusOK, gin.H{"settings": m, "updated": keys})
}

func settingString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	case nil:
		return "", true
	default:
		return fmt.Sprint(x), false
	}
}

// POST /api/admin/site/banner (multipart field "image")
func (h *ContentHandler) UploadBanner(c *gin.Context) {
	up, done, err := imageUpload(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer done()

	ctx := c.Request.Context()
	res, err := h.Store.Put(ctx, up.Body, storage.PutInput{
		Folder: "banners", Filename: up.Filename, ContentType: up.ContentType, Size: up.Size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	old, err := h.Site.SetBanner(ctx, res.Key, res.URL)
	if err != nil {
		_ = h.Store.Delete(ctx, res.Key)
		fail(c, err)
		return
	}
	if old != "" && old != res.Key {
		if err := h.Store.Delete(ctx, old); err != nil {
			h.Log.WithError(err).WithField("key", old).Warn("banner_delete_failed")
		}
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Banner updated.", http.StatusOK, gin.H{"banner_image_url": res.URL})
}

// --- notices ---

func (h *ContentHandler) ListNotices(c *gin.Context) {
	ns, err := h.Notices.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"notices": present.Notices(ns)})
}

func (h *ContentHandler) CreateNotice(c *gin.Context) {
	var in content.NoticeInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	n, err := h.Notices.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Notice saved.", http.StatusCreated, present.Notice(n))
}

func (h *ContentHandler) UpdateNotice(c *gin.Context) {
	var in content.NoticeInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	n, err := h.Notices.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Notice saved.", http.StatusOK, present.Notice(n))
}

func (h *ContentHandler) DeleteNotice(c *gin.Context) {
	if err := h.Notices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Notice deleted.", http.StatusOK, gin.H{"ok": true})
}

// --- feedback moderation ---

// GET /api/admin/feedback?status=pending|approved|hidden
func (h *ContentHandler) ListFeedback(c *gin.Context) {
	fs, err := h.Feedback.List(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"feedback": present.Testimonials(fs, true)})
}

func (h *ContentHandler) ApproveFeedback(c *gin.Context) {
	h.moderate(c, h.Feedback.Approve, "Feedback approved.")
}

func (h *ContentHandler) HideFeedback(c *gin.Context) {
	h.moderate(c, h.Feedback.Hide, "Feedback hidden.")
}

func (h *ContentHandler) DeleteFeedback(c *gin.Context) {
	h.moderate(c, h.Feedback.Delete, "Feedback deleted.")
}

func (h *ContentHandler) moderate(c *gin.Context, fn func(ctx context.Context, id string) error, msg string) {
	if err := fn(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	render.WithFlash(c, h.Flash, view.FlashSuccess, msg, http.StatusOK, gin.H{"ok": true})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/dismiss"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/validation"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/feedback"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

// ContentHandler serves the storefront's header, hero, notices, map and
// testimonial data.
type ContentHandler struct {
	Site     *content.SettingsRepo
	Notices  *content.NoticeRepo
	Feedback *feedback.Repo
	Dismiss  *dismiss.Codec
	Flash    *flash.Codec
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func NewContentHandler(site *content.SettingsRepo, notices *content.NoticeRepo, fb *feedback.Repo, dis *dismiss.Codec, fl *flash.Codec, log logrus.FieldLogger) *ContentHandler {
	return &ContentHandler{Site: site, Notices: notices, Feedback: fb, Dismiss: dis, Flash: fl, Log: log, Now: time.Now}
}

// GET /api/site
func (h *ContentHandler) GetSite(c *gin.Context) {
	site, err := h.Site.Site(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, site.Public())
}

// GET /api/store-location
func (h *ContentHandler) StoreLocation(c *gin.Context) {
	site, err := h.Site.Site(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, site.Location())
}

// GET /api/notices
func (h *ContentHandler) ListNotices(c *gin.Context) {
	ns, err := h.Notices.Visible(c.Request.Context(), h.Now(), h.Dismiss.Read(c))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"notices": present.Notices(ns)})
}

// POST /api/notices/:id/dismiss
func (h *ContentHandler) DismissNotice(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.Notices.Exists(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		fail(c, content.ErrNoticeNotFound)
		return
	}
	ids, err := h.Dismiss.Add(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"dismissed": ids})
}

// GET /api/flash pops the pending notification, if any.
func (h *ContentHandler) PopFlash(c *gin.Context) {
	render.OK(c, gin.H{"flash": h.Flash.Pop(c)})
}

// GET /api/feedback
func (h *ContentHandler) ListFeedback(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 12)
	fs, err := h.Feedback.Approved(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"feedback": present.Testimonials(fs, false)})
}

// POST /api/feedback queues a testimonial for moderation.
func (h *ContentHandler) SubmitFeedback(c *gin.Context) {
	var in feedback.SubmitInput
	if err := validation.BindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}
	f, err := h.Feedback.Submit(c.Request.Context(), in)
	if err != nil {
		fail(c, apperr.Wrap(err))
		return
	}
	h.Log.WithField("feedback_id", f.ID).Info("feedback_submitted")
	render.WithFlash(c, h.Flash, view.FlashSuccess, "Thank you! Your feedback will appear once reviewed.",
		http.StatusCreated, gin.H{"id": f.ID, "status": f.Status})
}

package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/challan"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
)

// TrackHandler is the public order lookup by number + phone.
type TrackHandler struct {
	Orders *orders.Repo
	Site   *content.SettingsRepo
}

func NewTrackHandler(ord *orders.Repo, site *content.SettingsRepo) *TrackHandler {
	return &TrackHandler{Orders: ord, Site: site}
}

func (h *TrackHandler) lookup(c *gin.Context) (orders.Tracking, bool) {
	number := strings.ToUpper(strings.TrimSpace(c.Query("number")))
	phone := strings.TrimSpace(c.Query("phone"))
	if number == "" || phone == "" {
		fields := map[string]string{}
		if number == "" {
			fields["number"] = "This field is required."
		}
		if phone == "" {
			fields["phone"] = "This field is required."
		}
		fail(c, apperr.InvalidErr("Enter your order number and phone.", fields))
		return orders.Tracking{}, false
	}
	t, err := h.Orders.Track(c.Request.Context(), number, phone)
	if err != nil {
		fail(c, err)
		return orders.Tracking{}, false
	}
	return t, true
}

// GET /api/orders/track?number=&phone=
func (h *TrackHandler) Track(c *gin.Context) {
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	render.OK(c, present.Tracking(t))
}

// GET /api/orders/track/challan.pdf?number=&phone=
func (h *TrackHandler) Challan(c *gin.Context) {
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := SendChallan(c, h.Site, t); err != nil {
		fail(c, err)
	}
}

// SendChallan renders the challan PDF as a download.
func SendChallan(c *gin.Context, site *content.SettingsRepo, t orders.Tracking) error {
	s, err := site.Site(c.Request.Context())
	if err != nil {
		return err
	}
	return render.Attachment(c, challan.Filename(t.Order.Number), "application/pdf", func(w io.Writer) error {
		return challan.Render(w, challan.Data{Site: s, Tracking: t})
	})
}

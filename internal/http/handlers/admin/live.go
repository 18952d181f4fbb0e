package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/live"
)

type LiveHandler struct {
	Hub *live.Hub
	Log logrus.FieldLogger
}

func NewLiveHandler(hub *live.Hub, log logrus.FieldLogger) *LiveHandler {
	return &LiveHandler{Hub: hub, Log: log}
}

// GET /api/admin/live upgrades to a websocket of order events.
func (h *LiveHandler) Stream(c *gin.Context) {
	log := h.Log.WithField("admin_id", adminID(c))
	log.Info("live_subscribed")
	if err := h.Hub.Serve(c.Writer, c.Request); err != nil {
		// the upgrader has already written the HTTP error
		log.WithError(err).Warn("live_upgrade_failed")
		c.Abort()
		return
	}
	log.Info("live_closed")
}

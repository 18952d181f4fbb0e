package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/dashboard"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type DashboardHandler struct {
	Svc *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

// GET /api/admin/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	st, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{
		"stats":           st,
		"revenue":         view.INR(int(st.RevenueCents)),
		"low_stock_limit": dashboard.LowStockThreshold,
	})
}

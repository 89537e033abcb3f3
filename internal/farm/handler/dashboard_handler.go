package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// DashboardHandler 看板接口
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler 创建看板接口
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func dashboardDate(c *gin.Context) (time.Time, bool) {
	forDate := calendar.DateOnly(time.Now().UTC())
	if d := c.Query("date"); d != "" {
		parsed, err := calendar.ParseISO(d)
		if err != nil {
			BadRequest(c, "date 格式错误，应为 yyyy-MM-dd")
			return forDate, false
		}
		forDate = parsed
	}
	return forDate, true
}

// TaskSummary 任务看板
func (h *DashboardHandler) TaskSummary(c *gin.Context) {
	forDate, ok := dashboardDate(c)
	if !ok {
		return
	}
	summary, err := h.svc.GetTaskSummary(c.Request.Context(), GetTenantID(c), forDate)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, summary)
}

// ProductionSummary 生产看板
func (h *DashboardHandler) ProductionSummary(c *gin.Context) {
	forDate, ok := dashboardDate(c)
	if !ok {
		return
	}
	summary, err := h.svc.GetProductionSummary(c.Request.Context(), GetTenantID(c), forDate)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, summary)
}

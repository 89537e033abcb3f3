package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// SowingHandler 播种计划接口
type SowingHandler struct {
	svc *service.SowingService
}

// NewSowingHandler 创建播种计划接口
func NewSowingHandler(svc *service.SowingService) *SowingHandler {
	return &SowingHandler{svc: svc}
}

// Plan 生成播种计划。start_date/end_date 必填；
// waste_buffer 缺省 0.1，include_buffer=false 可关闭缓冲。
func (h *SowingHandler) Plan(c *gin.Context) {
	startDate, err := calendar.ParseISO(c.Query("start_date"))
	if err != nil {
		BadRequest(c, "start_date 格式错误，应为 yyyy-MM-dd")
		return
	}
	endDate, err := calendar.ParseISO(c.Query("end_date"))
	if err != nil {
		BadRequest(c, "end_date 格式错误，应为 yyyy-MM-dd")
		return
	}
	wasteBuffer := service.DefaultWasteBuffer
	if wb := c.Query("waste_buffer"); wb != "" {
		v, err := strconv.ParseFloat(wb, 64)
		if err != nil || v < 0 {
			BadRequest(c, "waste_buffer 格式错误")
			return
		}
		wasteBuffer = v
	}
	includeBuffer := true
	if ib := c.Query("include_buffer"); ib != "" {
		v, err := strconv.ParseBool(ib)
		if err != nil {
			BadRequest(c, "include_buffer 格式错误")
			return
		}
		includeBuffer = v
	}
	items, err := h.svc.Plan(c.Request.Context(), GetTenantID(c), startDate, endDate, wasteBuffer, includeBuffer)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

type materializeRequest struct {
	Items      []service.MaterializePlanItem `json:"items" binding:"required,min=1"`
	LocationID string                        `json:"location_id"`
}

// Materialize 把计划项物化为生产批次
func (h *SowingHandler) Materialize(c *gin.Context) {
	var req materializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	batches, err := h.svc.Materialize(c.Request.Context(), GetTenantID(c), GetUserID(c), req.Items, req.LocationID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, gin.H{"created": len(batches), "batches": batches})
}

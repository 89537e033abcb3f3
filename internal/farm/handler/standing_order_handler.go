package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// StandingOrderHandler 定期订单接口
type StandingOrderHandler struct {
	svc *service.StandingOrderService
}

// NewStandingOrderHandler 创建定期订单接口
func NewStandingOrderHandler(svc *service.StandingOrderService) *StandingOrderHandler {
	return &StandingOrderHandler{svc: svc}
}

// Create 创建模板
func (h *StandingOrderHandler) Create(c *gin.Context) {
	var req service.CreateStandingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	so, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, so)
}

// Get 模板详情
func (h *StandingOrderHandler) Get(c *gin.Context) {
	so, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, so)
}

// Update 更新模板
func (h *StandingOrderHandler) Update(c *gin.Context) {
	var req service.UpdateStandingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	so, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, so)
}

// Delete 删除模板
func (h *StandingOrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

type pauseRequest struct {
	Until string `json:"until"` // yyyy-MM-dd，可空
}

// Pause 暂停生成
func (h *StandingOrderHandler) Pause(c *gin.Context) {
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	var until *time.Time
	if req.Until != "" {
		d, err := calendar.ParseISO(req.Until)
		if err != nil {
			BadRequest(c, "until 格式错误，应为 yyyy-MM-dd")
			return
		}
		until = &d
	}
	if err := h.svc.Pause(c.Request.Context(), GetTenantID(c), c.Param("id"), until); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Resume 恢复生成
func (h *StandingOrderHandler) Resume(c *gin.Context) {
	if err := h.svc.Resume(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Generate 手动触发生成。for_date 缺省为今天，同一天重复触发幂等。
func (h *StandingOrderHandler) Generate(c *gin.Context) {
	forDate := calendar.DateOnly(time.Now().UTC())
	if d := c.Query("for_date"); d != "" {
		parsed, err := calendar.ParseISO(d)
		if err != nil {
			BadRequest(c, "for_date 格式错误，应为 yyyy-MM-dd")
			return
		}
		forDate = parsed
	}
	orders, err := h.svc.Generate(c.Request.Context(), GetTenantID(c), forDate, time.Now().UTC())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"generated": len(orders), "orders": orders})
}

// List 模板列表
func (h *StandingOrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.StandingOrderListParams{
		CustomerID: c.Query("customer_id"),
		Page:       page,
		Size:       pageSize,
	}
	if active := c.Query("is_active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			BadRequest(c, "is_active 格式错误")
			return
		}
		params.IsActive = &v
	}
	sos, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listData(sos, page, pageSize, total))
}

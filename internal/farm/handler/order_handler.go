package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// OrderHandler 订单接口
type OrderHandler struct {
	svc *service.OrderService
}

// NewOrderHandler 创建订单接口
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create 创建订单（连同生产批次与任务一并生成）
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, order)
}

// Get 订单详情
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, order)
}

// Update 更新订单（改明细或日期会重算生产计划）
func (h *OrderHandler) Update(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	order, err := h.svc.Update(c.Request.Context(), GetTenantID(c), GetUserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, order)
}

// Delete 删除订单（级联清除生成的任务与批次）
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Confirm 确认订单
func (h *OrderHandler) Confirm(c *gin.Context) {
	if err := h.svc.Confirm(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Complete 完成订单
func (h *OrderHandler) Complete(c *gin.Context) {
	if err := h.svc.Complete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Cancel 取消订单
func (h *OrderHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// List 订单列表
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.OrderListParams{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		Source:     c.Query("source"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		Size:       pageSize,
	}
	if from := c.Query("date_from"); from != "" {
		d, err := calendar.ParseISO(from)
		if err != nil {
			BadRequest(c, "date_from 格式错误，应为 yyyy-MM-dd")
			return
		}
		params.DateFrom = &d
	}
	if to := c.Query("date_to"); to != "" {
		d, err := calendar.ParseISO(to)
		if err != nil {
			BadRequest(c, "date_to 格式错误，应为 yyyy-MM-dd")
			return
		}
		params.DateTo = &d
	}
	orders, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listData(orders, page, pageSize, total))
}

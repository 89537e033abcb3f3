package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// CustomerHandler 客户接口
type CustomerHandler struct {
	svc *service.CustomerService
}

// NewCustomerHandler 创建客户接口
func NewCustomerHandler(svc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// Create 创建客户
func (h *CustomerHandler) Create(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	customer, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, customer)
}

// Get 客户详情
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Update 更新客户
func (h *CustomerHandler) Update(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	customer, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Delete 删除客户
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// List 客户列表
func (h *CustomerHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.CustomerListParams{
		Status:  c.Query("status"),
		Type:    c.Query("type"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    pageSize,
	}
	customers, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listData(customers, page, pageSize, total))
}

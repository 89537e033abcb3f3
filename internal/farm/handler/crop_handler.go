package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// CropHandler 作物接口
type CropHandler struct {
	svc *service.CropService
}

// NewCropHandler 创建作物接口
func NewCropHandler(svc *service.CropService) *CropHandler {
	return &CropHandler{svc: svc}
}

// Create 创建作物
func (h *CropHandler) Create(c *gin.Context) {
	var req service.CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	crop, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, crop)
}

// Get 作物详情
func (h *CropHandler) Get(c *gin.Context) {
	crop, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, crop)
}

// Update 更新作物
func (h *CropHandler) Update(c *gin.Context) {
	var req service.UpdateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	crop, err := h.svc.Update(c.Request.Context(), GetTenantID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, crop)
}

// Delete 删除作物
func (h *CropHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetTenantID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// List 作物列表
func (h *CropHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.CropListParams{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     pageSize,
	}
	crops, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listData(crops, page, pageSize, total))
}

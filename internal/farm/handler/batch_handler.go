package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// BatchHandler 生产批次接口
type BatchHandler struct {
	svc *service.BatchService
}

// NewBatchHandler 创建生产批次接口
func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// Create 创建批次
func (h *BatchHandler) Create(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	batch, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, batch)
}

// Get 批次详情
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, batch)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 批次状态流转
func (h *BatchHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	batch, err := h.svc.UpdateStatus(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, batch)
}

// RecordHarvest 记录采收
func (h *BatchHandler) RecordHarvest(c *gin.Context) {
	var req service.RecordHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	batch, err := h.svc.RecordHarvest(c.Request.Context(), GetTenantID(c), GetUserID(c), c.Param("id"), req, time.Now().UTC())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, batch)
}

// List 批次列表
func (h *BatchHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.BatchListParams{
		Status:         c.Query("status"),
		CropID:         c.Query("crop_id"),
		OrderID:        c.Query("order_id"),
		ProductionType: c.Query("production_type"),
		Page:           page,
		Size:           pageSize,
	}
	if from := c.Query("sow_from"); from != "" {
		d, err := calendar.ParseISO(from)
		if err != nil {
			BadRequest(c, "sow_from 格式错误，应为 yyyy-MM-dd")
			return
		}
		params.SowFrom = &d
	}
	if to := c.Query("sow_to"); to != "" {
		d, err := calendar.ParseISO(to)
		if err != nil {
			BadRequest(c, "sow_to 格式错误，应为 yyyy-MM-dd")
			return
		}
		params.SowTo = &d
	}
	batches, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listData(batches, page, pageSize, total))
}

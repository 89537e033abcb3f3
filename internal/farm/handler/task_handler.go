package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/service"
)

// TaskHandler 任务接口
type TaskHandler struct {
	svc *service.TaskService
}

// NewTaskHandler 创建任务接口
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create 手工创建任务
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	task, err := h.svc.Create(c.Request.Context(), GetTenantID(c), GetUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, task)
}

// Get 任务详情
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// List 任务列表。view=day|week 时按 date 给出日视图/周视图，
// 否则按过滤条件分页。
func (h *TaskHandler) List(c *gin.Context) {
	tenantID := GetTenantID(c)
	view := c.Query("view")
	if view == "day" || view == "week" {
		forDate := calendar.DateOnly(time.Now().UTC())
		if d := c.Query("date"); d != "" {
			parsed, err := calendar.ParseISO(d)
			if err != nil {
				BadRequest(c, "date 格式错误，应为 yyyy-MM-dd")
				return
			}
			forDate = parsed
		}
		if view == "day" {
			items, total, err := h.svc.ListForDate(c.Request.Context(), tenantID, forDate)
			if err != nil {
				HandleError(c, err)
				return
			}
			Success(c, gin.H{"items": items, "total": total, "date": calendar.FormatISO(forDate)})
			return
		}
		items, total, err := h.svc.ListForWeek(c.Request.Context(), tenantID, forDate)
		if err != nil {
			HandleError(c, err)
			return
		}
		start, end := calendar.WeekBounds(forDate)
		Success(c, gin.H{
			"items":      items,
			"total":      total,
			"week_start": calendar.FormatISO(start),
			"week_end":   calendar.FormatISO(end),
		})
		return
	}

	page, pageSize := GetPagination(c)
	params := repository.TaskListParams{
		Status:  c.Query("status"),
		Type:    c.Query("type"),
		OrderID: c.Query("order_id"),
		BatchID: c.Query("batch_id"),
		Page:    page,
		Size:    pageSize,
	}
	if from := c.Query("due_from"); from != "" {
		d, err := calendar.ParseISO(from)
		if err != nil {
			BadRequest(c, "due_from 格式错误，应为 yyyy-MM-dd")
			return
		}
		params.DueFrom = &d
	}
	if to := c.Query("due_to"); to != "" {
		d, err := calendar.ParseISO(to)
		if err != nil {
			BadRequest(c, "due_to 格式错误，应为 yyyy-MM-dd")
			return
		}
		params.DueTo = &d
	}
	tasks, total, err := h.svc.List(c.Request.Context(), tenantID, params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, listData(tasks, page, pageSize, total))
}

// Complete 完成任务
func (h *TaskHandler) Complete(c *gin.Context) {
	task, err := h.svc.Complete(c.Request.Context(), GetTenantID(c), GetUserID(c), c.Param("id"), time.Now().UTC())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// Uncomplete 撤销完成
func (h *TaskHandler) Uncomplete(c *gin.Context) {
	task, err := h.svc.Uncomplete(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// UpdateStatus 任务状态变更
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	task, err := h.svc.UpdateStatus(c.Request.Context(), GetTenantID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

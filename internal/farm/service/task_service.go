package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
)

// TaskService 任务服务。完成/撤销完成成对维护 CompletedAt 与 CompletedBy，
// 两个字段永远同置同清。
type TaskService struct {
	repo *repository.TaskRepository
}

// NewTaskService 创建任务服务
func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// CreateTaskRequest 手工创建任务请求（自动生成之外的补充任务）
type CreateTaskRequest struct {
	Type    string `json:"type" binding:"required"`
	Title   string `json:"title" binding:"required"`
	DueDate string `json:"due_date" binding:"required"` // yyyy-MM-dd
	BatchID string `json:"batch_id"`
	OrderID string `json:"order_id"`
	Notes   string `json:"notes"`
}

// Create 手工创建任务
func (s *TaskService) Create(ctx context.Context, tenantID, userID string, req CreateTaskRequest) (*entity.Task, error) {
	dueDate, err := calendar.ParseISO(req.DueDate)
	if err != nil {
		return nil, validationf("invalid due date: %s", req.DueDate)
	}
	task := &entity.Task{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Type:     req.Type,
		Title:    req.Title,
		DueDate:  dueDate,
		Status:   entity.TaskStatusPending,
		Details: entity.TaskDetails{
			Notes: req.Notes,
		},
		CreatedBy: userID,
	}
	if req.BatchID != "" {
		task.BatchID = &req.BatchID
	}
	if req.OrderID != "" {
		task.OrderID = &req.OrderID
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}
	return task, nil
}

// GetByID 任务详情
func (s *TaskService) GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

// List 任务列表
func (s *TaskService) List(ctx context.Context, tenantID string, params repository.TaskListParams) ([]entity.Task, int64, error) {
	return s.repo.List(ctx, tenantID, params)
}

// ListForDate 指定日期的任务（日视图）
func (s *TaskService) ListForDate(ctx context.Context, tenantID string, forDate time.Time) ([]entity.Task, int64, error) {
	day := calendar.DateOnly(forDate)
	return s.repo.List(ctx, tenantID, repository.TaskListParams{
		DueFrom: &day,
		DueTo:   &day,
		Size:    500,
	})
}

// ListForWeek 指定日期所在周（周一起始）的任务
func (s *TaskService) ListForWeek(ctx context.Context, tenantID string, forDate time.Time) ([]entity.Task, int64, error) {
	start, end := calendar.WeekBounds(forDate)
	return s.repo.List(ctx, tenantID, repository.TaskListParams{
		DueFrom: &start,
		DueTo:   &end,
		Size:    500,
	})
}

// Complete 完成任务，记录完成时间与完成人
func (s *TaskService) Complete(ctx context.Context, tenantID, userID, id string, now time.Time) (*entity.Task, error) {
	task, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	if task.Status == entity.TaskStatusCompleted {
		return task, nil // 重复完成视为幂等
	}
	task.Status = entity.TaskStatusCompleted
	task.CompletedAt = &now
	task.CompletedBy = userID
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Uncomplete 撤销完成，完成时间与完成人一并清除
func (s *TaskService) Uncomplete(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	task, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	if task.Status != entity.TaskStatusCompleted {
		return nil, validationf("task %s is not completed", task.Title)
	}
	task.Status = entity.TaskStatusPending
	task.CompletedAt = nil
	task.CompletedBy = ""
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus 任务状态变更（pending/in_progress/skipped；完成走 Complete）
func (s *TaskService) UpdateStatus(ctx context.Context, tenantID, id, status string) (*entity.Task, error) {
	switch status {
	case entity.TaskStatusPending, entity.TaskStatusInProgress, entity.TaskStatusSkipped:
	default:
		return nil, validationf("invalid task status: %s", status)
	}
	task, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("任务不存在: %w", err)
	}
	task.Status = status
	task.CompletedAt = nil
	task.CompletedBy = ""
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

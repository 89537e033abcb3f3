package repository

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// TaskRepository 任务仓库
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓库
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByID 按租户查找任务
func (r *TaskRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	var task entity.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&task).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &task, nil
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update 更新任务
func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// TaskListParams 任务列表过滤
type TaskListParams struct {
	Status  string
	Type    string
	OrderID string
	BatchID string
	DueFrom *time.Time
	DueTo   *time.Time
	Page    int
	Size    int
}

// List 任务列表
func (r *TaskRepository) List(ctx context.Context, tenantID string, params TaskListParams) ([]entity.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.OrderID != "" {
		query = query.Where("order_id = ?", params.OrderID)
	}
	if params.BatchID != "" {
		query = query.Where("batch_id = ?", params.BatchID)
	}
	if params.DueFrom != nil {
		query = query.Where("due_date >= ?", *params.DueFrom)
	}
	if params.DueTo != nil {
		query = query.Where("due_date <= ?", *params.DueTo)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 50
	}
	var tasks []entity.Task
	err := query.Order("due_date ASC, type ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&tasks).Error
	return tasks, total, err
}

// CountByOrder 指定订单的任务数
func (r *TaskRepository) CountByOrder(ctx context.Context, tenantID, orderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Task{}).
		Where("tenant_id = ? AND order_id = ? AND deleted_at IS NULL", tenantID, orderID).
		Count(&count).Error
	return count, err
}

package repository

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// BatchRepository 生产批次仓库
type BatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建生产批次仓库
func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByID 按租户查找批次
func (r *BatchRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error) {
	var batch entity.ProductionBatch
	err := r.db.WithContext(ctx).
		Preload("Crop").Preload("HarvestRecords").
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&batch).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &batch, nil
}

// Update 更新批次
func (r *BatchRepository) Update(ctx context.Context, batch *entity.ProductionBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// CountScheduled 指定作物在指定播种日的非终态批次数。
// 排产净需求按批次条数扣减：物化时每个计划行生成一个批次，口径对应。
func (r *BatchRepository) CountScheduled(ctx context.Context, tenantID, cropID string, sowDate time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ProductionBatch{}).
		Where("tenant_id = ? AND crop_id = ? AND planned_sow_date = ? AND deleted_at IS NULL", tenantID, cropID, sowDate).
		Where("status NOT IN ?", entity.BatchTerminalStatuses).
		Count(&count).Error
	return int(count), err
}

// BatchListParams 批次列表过滤
type BatchListParams struct {
	Status         string
	CropID         string
	OrderID        string
	ProductionType string
	SowFrom        *time.Time
	SowTo          *time.Time
	Page           int
	Size           int
}

// List 批次列表
func (r *BatchRepository) List(ctx context.Context, tenantID string, params BatchListParams) ([]entity.ProductionBatch, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ProductionBatch{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.CropID != "" {
		query = query.Where("crop_id = ?", params.CropID)
	}
	if params.OrderID != "" {
		query = query.Where("order_id = ?", params.OrderID)
	}
	if params.ProductionType != "" {
		query = query.Where("production_type = ?", params.ProductionType)
	}
	if params.SowFrom != nil {
		query = query.Where("planned_sow_date >= ?", *params.SowFrom)
	}
	if params.SowTo != nil {
		query = query.Where("planned_sow_date <= ?", *params.SowTo)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var batches []entity.ProductionBatch
	err := query.Preload("Crop").Order("planned_sow_date ASC, batch_code ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&batches).Error
	return batches, total, err
}

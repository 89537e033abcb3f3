package repository

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// CropRepository 作物仓库
type CropRepository struct {
	db *gorm.DB
}

// NewCropRepository 创建作物仓库
func NewCropRepository(db *gorm.DB) *CropRepository {
	return &CropRepository{db: db}
}

// FindByID 按租户查找作物
func (r *CropRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Crop, error) {
	var crop entity.Crop
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&crop).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &crop, nil
}

// Create 创建作物
func (r *CropRepository) Create(ctx context.Context, crop *entity.Crop) error {
	return r.db.WithContext(ctx).Create(crop).Error
}

// Update 更新作物
func (r *CropRepository) Update(ctx context.Context, crop *entity.Crop) error {
	return r.db.WithContext(ctx).Save(crop).Error
}

// Delete 软删除作物
func (r *CropRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Model(&entity.Crop{}).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		Update("deleted_at", time.Now()).Error
}

// CropListParams 作物列表过滤
type CropListParams struct {
	Category string
	Status   string
	Keyword  string
	Page     int
	Size     int
}

// List 作物列表
func (r *CropRepository) List(ctx context.Context, tenantID string, params CropListParams) ([]entity.Crop, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Crop{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR variety LIKE ?", kw, kw)
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
	var crops []entity.Crop
	err := query.Order("name ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&crops).Error
	return crops, total, err
}

package repository

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// StandingOrderRepository 定期订单模板仓库
type StandingOrderRepository struct {
	db *gorm.DB
}

// NewStandingOrderRepository 创建定期订单模板仓库
func NewStandingOrderRepository(db *gorm.DB) *StandingOrderRepository {
	return &StandingOrderRepository{db: db}
}

// FindByID 按租户查找模板（含明细与客户）
func (r *StandingOrderRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.StandingOrder, error) {
	var so entity.StandingOrder
	err := r.db.WithContext(ctx).
		Preload("Customer").Preload("Items").
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&so).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &so, nil
}

// ListActive 生成扫描用：启用且自动生成的模板全集（到期判定在服务层做，
// 星期匹配无法下推到可移植的 SQL）
func (r *StandingOrderRepository) ListActive(ctx context.Context, tenantID string) ([]entity.StandingOrder, error) {
	var sos []entity.StandingOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND deleted_at IS NULL AND is_active = ? AND auto_generate = ?", tenantID, true, true).
		Find(&sos).Error
	return sos, err
}

// Create 创建模板
func (r *StandingOrderRepository) Create(ctx context.Context, so *entity.StandingOrder) error {
	return r.db.WithContext(ctx).Create(so).Error
}

// Update 更新模板
func (r *StandingOrderRepository) Update(ctx context.Context, so *entity.StandingOrder) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: false}).Save(so).Error
}

// Delete 软删除模板
func (r *StandingOrderRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Model(&entity.StandingOrder{}).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		Update("deleted_at", time.Now()).Error
}

// StandingOrderListParams 模板列表过滤
type StandingOrderListParams struct {
	CustomerID string
	IsActive   *bool
	Page       int
	Size       int
}

// List 模板列表
func (r *StandingOrderRepository) List(ctx context.Context, tenantID string, params StandingOrderListParams) ([]entity.StandingOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.StandingOrder{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
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
	var sos []entity.StandingOrder
	err := query.Preload("Customer").Preload("Items").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&sos).Error
	return sos, total, err
}

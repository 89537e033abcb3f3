package repository

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// OrderRepository 订单仓库
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByID 按租户查找订单（含明细与客户）
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").Preload("Items").
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&order).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &order, nil
}

// ExistsForStandingOrder 指定模板在指定配送日是否已生成过订单（幂等检查的读路径，
// 写路径由 (standing_order_id, delivery_date) 唯一索引兜底）
func (r *OrderRepository) ExistsForStandingOrder(ctx context.Context, tenantID, standingOrderID string, deliveryDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("tenant_id = ? AND standing_order_id = ? AND delivery_date = ? AND deleted_at IS NULL",
			tenantID, standingOrderID, deliveryDate).
		Count(&count).Error
	return count > 0, err
}

// OrderListParams 订单列表过滤
type OrderListParams struct {
	Status     string
	CustomerID string
	Source     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Keyword    string
	Page       int
	Size       int
}

// List 订单列表
func (r *OrderRepository) List(ctx context.Context, tenantID string, params OrderListParams) ([]entity.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.CustomerID != "" {
		query = query.Where("customer_id = ?", params.CustomerID)
	}
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}
	if params.DateFrom != nil {
		query = query.Where("delivery_date >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		query = query.Where("delivery_date <= ?", *params.DateTo)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_number LIKE ?", kw)
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
	var orders []entity.Order
	err := query.Preload("Customer").Preload("Items").
		Order("delivery_date ASC, order_number ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&orders).Error
	return orders, total, err
}

// ListOpenByDeliveryRange 配送日在区间内、未取消未完成的订单（排产需求口径），含明细
func (r *OrderRepository) ListOpenByDeliveryRange(ctx context.Context, tenantID string, from, to time.Time) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("delivery_date >= ? AND delivery_date <= ?", from, to).
		Where("status NOT IN ?", []string{entity.OrderStatusCancelled, entity.OrderStatusCompleted}).
		Order("delivery_date ASC").
		Find(&orders).Error
	return orders, err
}

// Update 更新订单
func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

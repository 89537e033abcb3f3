package repository

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// ProductRepository 产品仓库
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建产品仓库
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID 按租户查找产品
func (r *ProductRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Preload("Crop").
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&product).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &product, nil
}

// BasePrice 当前目录价（定期订单生成取价用，价格随目录浮动）
func (r *ProductRepository) BasePrice(ctx context.Context, tenantID, id string) (float64, error) {
	product, err := r.FindByID(ctx, tenantID, id)
	if err != nil {
		return 0, err
	}
	return product.BasePrice, nil
}

// Create 创建产品
func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update 更新产品
func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete 软删除产品
func (r *ProductRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		Update("deleted_at", time.Now()).Error
}

// ProductListParams 产品列表过滤
type ProductListParams struct {
	CropID  string
	Status  string
	Keyword string
	Page    int
	Size    int
}

// List 产品列表
func (r *ProductRepository) List(ctx context.Context, tenantID string, params ProductListParams) ([]entity.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	if params.CropID != "" {
		query = query.Where("crop_id = ?", params.CropID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR product_code LIKE ?", kw, kw)
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
	var products []entity.Product
	err := query.Preload("Crop").Order("name ASC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&products).Error
	return products, total, err
}

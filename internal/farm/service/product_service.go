package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
)

// ProductService 产品服务
type ProductService struct {
	repo     *repository.ProductRepository
	cropRepo *repository.CropRepository
}

// NewProductService 创建产品服务
func NewProductService(repo *repository.ProductRepository, cropRepo *repository.CropRepository) *ProductService {
	return &ProductService{repo: repo, cropRepo: cropRepo}
}

// CreateProductRequest 创建产品请求
type CreateProductRequest struct {
	ProductCode string  `json:"product_code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	CropID      string  `json:"crop_id" binding:"required"`
	BasePrice   float64 `json:"base_price" binding:"gte=0"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// Create 创建产品（作物必须存在）
func (s *ProductService) Create(ctx context.Context, tenantID, userID string, req CreateProductRequest) (*entity.Product, error) {
	crop, err := s.cropRepo.FindByID(ctx, tenantID, req.CropID)
	if err != nil {
		return nil, fmt.Errorf("作物不存在: %w", err)
	}
	unit := req.Unit
	if unit == "" {
		unit = crop.Unit
	}
	product := &entity.Product{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ProductCode: req.ProductCode,
		Name:        req.Name,
		CropID:      crop.ID,
		BasePrice:   req.BasePrice,
		Unit:        unit,
		Status:      entity.ProductStatusActive,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("创建产品失败: %w", err)
	}
	return product, nil
}

// GetByID 产品详情
func (s *ProductService) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

// UpdateProductRequest 更新产品请求
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	BasePrice   *float64 `json:"base_price"`
	Unit        *string  `json:"unit"`
	Status      *string  `json:"status"`
	Description *string  `json:"description"`
}

// Update 更新产品。改价只影响此后生成的订单，已生成订单保持成交价。
func (s *ProductService) Update(ctx context.Context, tenantID, id string, req UpdateProductRequest) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.BasePrice != nil {
		if *req.BasePrice < 0 {
			return nil, validationf("base price must not be negative")
		}
		product.BasePrice = *req.BasePrice
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Status != nil {
		if *req.Status != entity.ProductStatusActive && *req.Status != entity.ProductStatusDiscontinued {
			return nil, validationf("invalid product status: %s", *req.Status)
		}
		product.Status = *req.Status
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 软删除产品
func (s *ProductService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.repo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("产品不存在: %w", err)
	}
	return s.repo.Delete(ctx, tenantID, id)
}

// List 产品列表
func (s *ProductService) List(ctx context.Context, tenantID string, params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.repo.List(ctx, tenantID, params)
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
)

// CustomerService 客户服务
type CustomerService struct {
	repo *repository.CustomerRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(repo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// CreateCustomerRequest 创建客户请求
type CreateCustomerRequest struct {
	CustomerCode string `json:"customer_code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type" binding:"omitempty,oneof=restaurant grocery market retail"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
}

// Create 创建客户
func (s *CustomerService) Create(ctx context.Context, tenantID, userID string, req CreateCustomerRequest) (*entity.Customer, error) {
	customerType := req.Type
	if customerType == "" {
		customerType = entity.CustomerTypeRetail
	}
	customer := &entity.Customer{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		CustomerCode: req.CustomerCode,
		Name:         req.Name,
		Type:         customerType,
		ContactName:  req.ContactName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		Status:       entity.CustomerStatusActive,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("创建客户失败: %w", err)
	}
	return customer, nil
}

// GetByID 客户详情
func (s *CustomerService) GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

// UpdateCustomerRequest 更新客户请求
type UpdateCustomerRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

// Update 更新客户
func (s *CustomerService) Update(ctx context.Context, tenantID, id string, req UpdateCustomerRequest) (*entity.Customer, error) {
	customer, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("客户不存在: %w", err)
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Type != nil {
		customer.Type = *req.Type
	}
	if req.ContactName != nil {
		customer.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Status != nil {
		if *req.Status != entity.CustomerStatusActive && *req.Status != entity.CustomerStatusInactive {
			return nil, validationf("invalid customer status: %s", *req.Status)
		}
		customer.Status = *req.Status
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete 软删除客户
func (s *CustomerService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.repo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("客户不存在: %w", err)
	}
	return s.repo.Delete(ctx, tenantID, id)
}

// List 客户列表
func (s *CustomerService) List(ctx context.Context, tenantID string, params repository.CustomerListParams) ([]entity.Customer, int64, error) {
	return s.repo.List(ctx, tenantID, params)
}

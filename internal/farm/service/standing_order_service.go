package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"gorm.io/gorm"
)

// StandingOrderService 定期订单：模板维护与按日生成。
// 生成对 (模板, 配送日) 幂等，重复执行不产生重复订单。
type StandingOrderService struct {
	soRepo      *repository.StandingOrderRepository
	orderRepo   *repository.OrderRepository
	productRepo *repository.ProductRepository
	orderSvc    *OrderService
}

// NewStandingOrderService 创建定期订单服务
func NewStandingOrderService(
	soRepo *repository.StandingOrderRepository,
	orderRepo *repository.OrderRepository,
	productRepo *repository.ProductRepository,
	orderSvc *OrderService,
) *StandingOrderService {
	return &StandingOrderService{
		soRepo:      soRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		orderSvc:    orderSvc,
	}
}

// CreateStandingOrderItem 模板明细请求
type CreateStandingOrderItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	CropID    string  `json:"crop_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
}

// CreateStandingOrderRequest 创建模板请求
type CreateStandingOrderRequest struct {
	CustomerID        string                    `json:"customer_id" binding:"required"`
	Name              string                    `json:"name"`
	DeliveryDays      []int                     `json:"delivery_days" binding:"required,min=1"`
	DeliveryTime      string                    `json:"delivery_time"`
	GenerateDaysAhead int                       `json:"generate_days_ahead"`
	DeliveryOffset    int                       `json:"delivery_offset"`
	AutoGenerate      *bool                     `json:"auto_generate"`
	StartDate         string                    `json:"start_date" binding:"required"`
	EndDate           string                    `json:"end_date"`
	Items             []CreateStandingOrderItem `json:"items" binding:"required,min=1"`
	Notes             string                    `json:"notes"`
}

// Create 创建模板
func (s *StandingOrderService) Create(ctx context.Context, tenantID, userID string, req CreateStandingOrderRequest) (*entity.StandingOrder, error) {
	for _, d := range req.DeliveryDays {
		if d < 0 || d > 6 {
			return nil, validationf("delivery day out of range: %d", d)
		}
	}
	startDate, err := calendar.ParseISO(req.StartDate)
	if err != nil {
		return nil, validationf("invalid start date: %s", req.StartDate)
	}
	var endDate *time.Time
	if req.EndDate != "" {
		end, err := calendar.ParseISO(req.EndDate)
		if err != nil {
			return nil, validationf("invalid end date: %s", req.EndDate)
		}
		if end.Before(startDate) {
			return nil, validationf("end date before start date")
		}
		endDate = &end
	}
	autoGenerate := true
	if req.AutoGenerate != nil {
		autoGenerate = *req.AutoGenerate
	}
	generateDaysAhead := req.GenerateDaysAhead
	if generateDaysAhead <= 0 {
		generateDaysAhead = 2
	}

	so := &entity.StandingOrder{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		CustomerID:        req.CustomerID,
		Name:              req.Name,
		DeliveryDays:      entity.WeekdaySet(req.DeliveryDays),
		DeliveryTime:      req.DeliveryTime,
		GenerateDaysAhead: generateDaysAhead,
		DeliveryOffset:    req.DeliveryOffset,
		AutoGenerate:      autoGenerate,
		IsActive:          true,
		StartDate:         startDate,
		EndDate:           endDate,
		Notes:             req.Notes,
		CreatedBy:         userID,
	}
	for _, item := range req.Items {
		so.Items = append(so.Items, entity.StandingOrderItem{
			ID:              uuid.New().String(),
			StandingOrderID: so.ID,
			TenantID:        tenantID,
			ProductID:       item.ProductID,
			CropID:          item.CropID,
			Quantity:        item.Quantity,
		})
	}
	if err := s.soRepo.Create(ctx, so); err != nil {
		return nil, fmt.Errorf("创建定期订单模板失败: %w", err)
	}
	return so, nil
}

// Pause 暂停模板生成，until 可空（长期暂停）
func (s *StandingOrderService) Pause(ctx context.Context, tenantID, id string, until *time.Time) error {
	so, err := s.soRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("模板不存在: %w", err)
	}
	so.IsPaused = true
	so.PausedUntil = until
	return s.soRepo.Update(ctx, so)
}

// Resume 恢复生成，同时清除 IsPaused 与 PausedUntil
func (s *StandingOrderService) Resume(ctx context.Context, tenantID, id string) error {
	so, err := s.soRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("模板不存在: %w", err)
	}
	so.IsPaused = false
	so.PausedUntil = nil
	return s.soRepo.Update(ctx, so)
}

// isDue 模板在目标日是否到期。IsPaused 只看标志本身：
// 调用方可能清掉 PausedUntil 而保留标志，日期只是展示性元数据。
func isDue(so *entity.StandingOrder, forDate time.Time) bool {
	if !so.IsActive || !so.AutoGenerate || so.IsPaused {
		return false
	}
	if so.StartDate.After(forDate) {
		return false
	}
	if so.EndDate != nil && so.EndDate.Before(forDate) {
		return false
	}
	return so.DeliveryDays.Contains(forDate.Weekday())
}

// Generate 扫描到期模板，为 forDate 物化具体订单。幂等：同一 (模板, 配送日)
// 已存在订单时静默跳过；并发双跑由订单表唯一索引兜底，撞索引同样按跳过处理。
// now 由调用方显式传入，核心逻辑不读墙钟。
func (s *StandingOrderService) Generate(ctx context.Context, tenantID string, forDate, now time.Time) ([]entity.Order, error) {
	forDate = calendar.DateOnly(forDate)

	templates, err := s.soRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("查询定期订单模板失败: %w", err)
	}

	var created []entity.Order
	for i := range templates {
		so := &templates[i]
		if !isDue(so, forDate) {
			continue
		}
		deliveryDate := calendar.AddDays(forDate, so.GenerateDaysAhead)

		exists, err := s.orderRepo.ExistsForStandingOrder(ctx, tenantID, so.ID, deliveryDate)
		if err != nil {
			return created, err
		}
		if exists {
			continue // 幂等跳过，不算失败
		}

		items := make([]CreateOrderItem, 0, len(so.Items))
		for _, item := range so.Items {
			// 价格不冻结：取产品当前目录价
			price, err := s.productRepo.BasePrice(ctx, tenantID, item.ProductID)
			if err != nil {
				return created, fmt.Errorf("查询产品价格失败 (%s): %w", item.ProductID, err)
			}
			items = append(items, CreateOrderItem{
				CropID:    item.CropID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: price,
			})
		}

		targetDate := calendar.AddDays(deliveryDate, so.DeliveryOffset)
		order, err := s.orderSvc.create(ctx, tenantID, so.CreatedBy, CreateOrderRequest{
			CustomerID:      so.CustomerID,
			DateType:        entity.DateTypeHarvest,
			TargetDate:      calendar.FormatISO(targetDate),
			DeliveryOffset:  so.DeliveryOffset,
			Items:           items,
			Source:          entity.OrderSourceStandingOrder,
			StandingOrderID: &so.ID,
		}, func(tx *gorm.DB) error {
			// 生成戳与订单同事务落库，中途崩溃不会出现有单无戳
			return tx.Model(&entity.StandingOrder{}).
				Where("id = ? AND tenant_id = ?", so.ID, tenantID).
				Update("last_generated_at", now).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // 并发生成撞唯一索引：另一次执行已建单
			}
			return created, err
		}
		created = append(created, *order)
	}
	return created, nil
}

// GetByID 模板详情
func (s *StandingOrderService) GetByID(ctx context.Context, tenantID, id string) (*entity.StandingOrder, error) {
	return s.soRepo.FindByID(ctx, tenantID, id)
}

// List 模板列表
func (s *StandingOrderService) List(ctx context.Context, tenantID string, params repository.StandingOrderListParams) ([]entity.StandingOrder, int64, error) {
	return s.soRepo.List(ctx, tenantID, params)
}

// UpdateStandingOrderRequest 更新模板请求
type UpdateStandingOrderRequest struct {
	Name              *string `json:"name"`
	DeliveryDays      []int   `json:"delivery_days"`
	DeliveryTime      *string `json:"delivery_time"`
	GenerateDaysAhead *int    `json:"generate_days_ahead"`
	DeliveryOffset    *int    `json:"delivery_offset"`
	AutoGenerate      *bool   `json:"auto_generate"`
	IsActive          *bool   `json:"is_active"`
	EndDate           *string `json:"end_date"`
	Notes             *string `json:"notes"`
}

// Update 更新模板（明细替换走删除重建模板的方式，此处仅调度字段）
func (s *StandingOrderService) Update(ctx context.Context, tenantID, id string, req UpdateStandingOrderRequest) (*entity.StandingOrder, error) {
	so, err := s.soRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("模板不存在: %w", err)
	}
	if req.Name != nil {
		so.Name = *req.Name
	}
	if req.DeliveryDays != nil {
		for _, d := range req.DeliveryDays {
			if d < 0 || d > 6 {
				return nil, validationf("delivery day out of range: %d", d)
			}
		}
		so.DeliveryDays = entity.WeekdaySet(req.DeliveryDays)
	}
	if req.DeliveryTime != nil {
		so.DeliveryTime = *req.DeliveryTime
	}
	if req.GenerateDaysAhead != nil {
		so.GenerateDaysAhead = *req.GenerateDaysAhead
	}
	if req.DeliveryOffset != nil {
		so.DeliveryOffset = *req.DeliveryOffset
	}
	if req.AutoGenerate != nil {
		so.AutoGenerate = *req.AutoGenerate
	}
	if req.IsActive != nil {
		so.IsActive = *req.IsActive
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			so.EndDate = nil
		} else {
			end, err := calendar.ParseISO(*req.EndDate)
			if err != nil {
				return nil, validationf("invalid end date: %s", *req.EndDate)
			}
			so.EndDate = &end
		}
	}
	if req.Notes != nil {
		so.Notes = *req.Notes
	}
	if err := s.soRepo.Update(ctx, so); err != nil {
		return nil, err
	}
	return so, nil
}

// Delete 删除模板（已生成的订单保留）
func (s *StandingOrderService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.soRepo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("模板不存在: %w", err)
	}
	return s.soRepo.Delete(ctx, tenantID, id)
}

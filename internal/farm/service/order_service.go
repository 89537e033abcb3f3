package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"gorm.io/gorm"
)

// OrderService 订单排产：根据日期锚定方式计算配送/采收/播种日期，
// 创建订单并按明细生成生产批次与任务。多步写入在单事务内完成。
type OrderService struct {
	orderRepo    *repository.OrderRepository
	customerRepo *repository.CustomerRepository
	cropRepo     *repository.CropRepository
	taskRepo     *repository.TaskRepository
	seqRepo      *repository.SequenceRepository
	taskPlan     *TaskPlanService
	db           *gorm.DB
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo *repository.OrderRepository,
	customerRepo *repository.CustomerRepository,
	cropRepo *repository.CropRepository,
	taskRepo *repository.TaskRepository,
	seqRepo *repository.SequenceRepository,
	taskPlan *TaskPlanService,
	db *gorm.DB,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		cropRepo:     cropRepo,
		taskRepo:     taskRepo,
		seqRepo:      seqRepo,
		taskPlan:     taskPlan,
		db:           db,
	}
}

// CreateOrderItem 订单明细请求
type CreateOrderItem struct {
	CropID    string  `json:"crop_id" binding:"required"`
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price"`
}

// CreateOrderRequest 创建订单请求。TargetDate 按 DateType 锚定采收日或播种日。
type CreateOrderRequest struct {
	CustomerID       string            `json:"customer_id" binding:"required"`
	DateType         string            `json:"date_type" binding:"required"`
	TargetDate       string            `json:"target_date" binding:"required"` // yyyy-MM-dd
	DeliveryOffset   int               `json:"delivery_offset"`
	Items            []CreateOrderItem `json:"items" binding:"required,min=1"`
	IsRecurring      bool              `json:"is_recurring"`
	Frequency        string            `json:"frequency"`
	RecurringEndDate string            `json:"recurring_end_date"`
	Notes            string            `json:"notes"`

	// 内部来源标记，不从请求体绑定
	Source          string  `json:"-"`
	StandingOrderID *string `json:"-"`
}

func (s *OrderService) validateCreate(req *CreateOrderRequest) (time.Time, *time.Time, error) {
	if len(req.Items) == 0 {
		return time.Time{}, nil, validationf("order must have at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return time.Time{}, nil, validationf("item %d: quantity must be positive", i)
		}
	}
	if req.DeliveryOffset < 0 {
		return time.Time{}, nil, validationf("delivery offset must not be negative")
	}
	if req.DateType != entity.DateTypeHarvest && req.DateType != entity.DateTypeStart {
		return time.Time{}, nil, validationf("unsupported date type: %s", req.DateType)
	}
	targetDate, err := calendar.ParseISO(req.TargetDate)
	if err != nil {
		return time.Time{}, nil, validationf("invalid target date: %s", req.TargetDate)
	}
	var recurEnd *time.Time
	if req.IsRecurring {
		if entity.FrequencyStepDays(req.Frequency) == 0 {
			return time.Time{}, nil, validationf("unsupported frequency: %s", req.Frequency)
		}
		if req.RecurringEndDate == "" {
			return time.Time{}, nil, validationf("recurring order requires an end date")
		}
		end, err := calendar.ParseISO(req.RecurringEndDate)
		if err != nil {
			return time.Time{}, nil, validationf("invalid recurring end date: %s", req.RecurringEndDate)
		}
		recurEnd = &end
	}
	return targetDate, recurEnd, nil
}

// loadCrops 预取全部明细作物快照；任何一项解析失败即整体失败，不产生半套任务
func (s *OrderService) loadCrops(ctx context.Context, tenantID string, items []CreateOrderItem) (map[string]*entity.Crop, error) {
	crops := make(map[string]*entity.Crop, len(items))
	for i, item := range items {
		if _, ok := crops[item.CropID]; ok {
			continue
		}
		crop, err := s.cropRepo.FindByID(ctx, tenantID, item.CropID)
		if err != nil {
			return nil, &ExpansionError{CropID: item.CropID, ItemID: fmt.Sprintf("item[%d]", i), Reason: err}
		}
		crops[item.CropID] = crop
	}
	return crops, nil
}

// scheduleDates 计算采收日与配送日。
// harvest 锚定：deliveryDate = targetDate − deliveryOffset。
// start 锚定：配送是单一事件，由生长最慢的明细决定采收日：
// harvestDate = targetDate + max(growthDays)，deliveryDate = harvestDate − deliveryOffset。
func scheduleDates(dateType string, targetDate time.Time, deliveryOffset int, items []CreateOrderItem, crops map[string]*entity.Crop) (harvest, delivery time.Time) {
	targetDate = calendar.DateOnly(targetDate)
	if dateType == entity.DateTypeStart {
		maxGrowth := 0
		for _, item := range items {
			if crop := crops[item.CropID]; crop != nil && crop.GrowthDays > maxGrowth {
				maxGrowth = crop.GrowthDays
			}
		}
		harvest = calendar.AddDays(targetDate, maxGrowth)
	} else {
		harvest = targetDate
	}
	delivery = calendar.AddDays(harvest, -deliveryOffset)
	return harvest, delivery
}

// Create 创建订单（重复订单展开为每次发生各一张完整订单）。全有或全无。
func (s *OrderService) Create(ctx context.Context, tenantID, userID string, req CreateOrderRequest) (*entity.Order, error) {
	return s.create(ctx, tenantID, userID, req, nil)
}

// create 同 Create。after 非空时在同一事务尾部执行，
// 定期订单生成用它把 LastGeneratedAt 戳与订单一并落库。
func (s *OrderService) create(ctx context.Context, tenantID, userID string, req CreateOrderRequest, after func(tx *gorm.DB) error) (*entity.Order, error) {
	targetDate, recurEnd, err := s.validateCreate(&req)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByID(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("查找客户失败: %w", err)
	}

	crops, err := s.loadCrops(ctx, tenantID, req.Items)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = entity.OrderSourceManual
	}

	var first *entity.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occurrence := calendar.DateOnly(targetDate)
		step := 0
		if req.IsRecurring {
			step = entity.FrequencyStepDays(req.Frequency)
		}
		var parentID *string
		for {
			order, err := s.createOne(ctx, tx, tenantID, userID, &req, customer, crops, occurrence, recurEnd, source, parentID)
			if err != nil {
				return err
			}
			if first == nil {
				first = order
				parentID = &order.ID
			}
			if !req.IsRecurring {
				break
			}
			occurrence = calendar.AddDays(occurrence, step)
			_, nextDelivery := scheduleDates(req.DateType, occurrence, req.DeliveryOffset, req.Items, crops)
			if nextDelivery.After(*recurEnd) {
				break
			}
		}
		if after != nil {
			return after(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return first, nil
}

// createOne 在事务内创建单张订单：订单 + 明细 + 每明细一个批次及其任务 + 一个配送任务
func (s *OrderService) createOne(
	ctx context.Context,
	tx *gorm.DB,
	tenantID, userID string,
	req *CreateOrderRequest,
	customer *entity.Customer,
	crops map[string]*entity.Crop,
	targetDate time.Time,
	recurEnd *time.Time,
	source string,
	parentID *string,
) (*entity.Order, error) {
	harvestDate, deliveryDate := scheduleDates(req.DateType, targetDate, req.DeliveryOffset, req.Items, crops)

	orderNumber, err := s.seqRepo.NextOrderNumber(tx, tenantID, deliveryDate)
	if err != nil {
		return nil, fmt.Errorf("生成订单号失败: %w", err)
	}

	order := &entity.Order{
		ID:                 uuid.New().String(),
		TenantID:           tenantID,
		OrderNumber:        orderNumber,
		CustomerID:         customer.ID,
		DateType:           req.DateType,
		TargetDate:         targetDate,
		DeliveryOffset:     req.DeliveryOffset,
		HarvestDate:        harvestDate,
		DeliveryDate:       deliveryDate,
		Status:             entity.OrderStatusPending,
		Source:             source,
		StandingOrderID:    req.StandingOrderID,
		IsRecurring:        req.IsRecurring,
		Frequency:          req.Frequency,
		RecurringEndDate:   recurEnd,
		RecurrenceParentID: parentID,
		Notes:              req.Notes,
		CreatedBy:          userID,
	}

	var total float64
	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		amount := item.Quantity * item.UnitPrice
		total += amount
		items = append(items, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			TenantID:  tenantID,
			CropID:    item.CropID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    amount,
		})
	}
	order.TotalAmount = total
	order.Items = items

	if err := tx.Create(order).Error; err != nil {
		return nil, err
	}

	if err := s.generateProduction(ctx, tx, order, customer, crops, userID); err != nil {
		return nil, err
	}
	return order, nil
}

// generateProduction 为订单生成批次与任务（更新订单时也走这条路径重建）
func (s *OrderService) generateProduction(
	ctx context.Context,
	tx *gorm.DB,
	order *entity.Order,
	customer *entity.Customer,
	crops map[string]*entity.Crop,
	userID string,
) error {
	for i := range order.Items {
		item := &order.Items[i]
		crop := crops[item.CropID]
		if crop == nil {
			return &ExpansionError{CropID: item.CropID, ItemID: item.ID, Reason: repository.ErrNotFound}
		}

		units := UnitsFor(item.Quantity, crop.YieldPerUnit)
		productionType := entity.ProductionTypeMicrogreensTray
		maxFlushes := 1
		if crop.IsMushrooms() {
			productionType = entity.ProductionTypeMushroomInHouse
			maxFlushes = crop.FlushCount
			if maxFlushes < 1 {
				maxFlushes = 1
			}
		}

		batchCode, err := s.seqRepo.NextBatchCode(tx, order.TenantID, productionType, order.HarvestDate)
		if err != nil {
			return fmt.Errorf("生成批次号失败: %w", err)
		}
		batch := &entity.ProductionBatch{
			ID:                 uuid.New().String(),
			TenantID:           order.TenantID,
			BatchCode:          batchCode,
			CropID:             crop.ID,
			OrderID:            &order.ID,
			OrderItemID:        &item.ID,
			ProductionType:     productionType,
			PlannedSowDate:     calendar.AddDays(order.HarvestDate, -crop.GrowthDays),
			PlannedHarvestDate: order.HarvestDate,
			Quantity:           units,
			ExpectedYield:      float64(units) * crop.YieldPerUnit,
			MaxFlushes:         maxFlushes,
			Status:             entity.BatchStatusPlanned,
			CreatedBy:          userID,
		}
		if err := tx.Create(batch).Error; err != nil {
			return err
		}

		specs, err := s.taskPlan.ExpandOrderItem(crop, item.Quantity, order.HarvestDate, customer.Name)
		if err != nil {
			return &ExpansionError{CropID: item.CropID, ItemID: item.ID, Reason: err}
		}
		for _, spec := range specs {
			task := &entity.Task{
				ID:        uuid.New().String(),
				TenantID:  order.TenantID,
				Type:      spec.Type,
				Title:     spec.Title,
				DueDate:   spec.DueDate,
				BatchID:   &batch.ID,
				OrderID:   &order.ID,
				CropID:    &crop.ID,
				Status:    entity.TaskStatusPending,
				Details:   spec.Details,
				CreatedBy: userID,
			}
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
	}

	// 配送任务：每张订单一个
	spec := s.taskPlan.DeliveryTask(order, customer)
	task := &entity.Task{
		ID:        uuid.New().String(),
		TenantID:  order.TenantID,
		Type:      spec.Type,
		Title:     spec.Title,
		DueDate:   spec.DueDate,
		OrderID:   &order.ID,
		Status:    entity.TaskStatusPending,
		Details:   spec.Details,
		CreatedBy: userID,
	}
	return tx.Create(task).Error
}

// UpdateOrderRequest 更新订单请求。明细或日期字段变化时，
// 旧批次与任务整体删除重建（不做原地修补），已完成的人工勾选会丢失——
// 以保证生成集与订单当前状态始终一致。
type UpdateOrderRequest struct {
	DateType         string            `json:"date_type"`
	TargetDate       string            `json:"target_date"`
	DeliveryOffset   *int              `json:"delivery_offset"`
	Items            []CreateOrderItem `json:"items"`
	Notes            *string           `json:"notes"`
}

// Update 更新订单
func (s *OrderService) Update(ctx context.Context, tenantID, userID, id string, req UpdateOrderRequest) (*entity.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	if order.IsTerminal() {
		return nil, validationf("order %s is %s and cannot be modified", order.OrderNumber, order.Status)
	}

	regenerate := req.Items != nil || req.TargetDate != "" || req.DateType != "" || req.DeliveryOffset != nil

	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if !regenerate {
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
		return order, nil
	}

	if req.DateType != "" {
		if req.DateType != entity.DateTypeHarvest && req.DateType != entity.DateTypeStart {
			return nil, validationf("unsupported date type: %s", req.DateType)
		}
		order.DateType = req.DateType
	}
	if req.TargetDate != "" {
		targetDate, err := calendar.ParseISO(req.TargetDate)
		if err != nil {
			return nil, validationf("invalid target date: %s", req.TargetDate)
		}
		order.TargetDate = targetDate
	}
	if req.DeliveryOffset != nil {
		if *req.DeliveryOffset < 0 {
			return nil, validationf("delivery offset must not be negative")
		}
		order.DeliveryOffset = *req.DeliveryOffset
	}

	newItems := req.Items
	if newItems == nil {
		newItems = make([]CreateOrderItem, 0, len(order.Items))
		for _, it := range order.Items {
			newItems = append(newItems, CreateOrderItem{
				CropID:    it.CropID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}
	}
	for i, item := range newItems {
		if item.Quantity <= 0 {
			return nil, validationf("item %d: quantity must be positive", i)
		}
	}
	if len(newItems) == 0 {
		return nil, validationf("order must have at least one item")
	}

	customer, err := s.customerRepo.FindByID(ctx, tenantID, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("查找客户失败: %w", err)
	}
	crops, err := s.loadCrops(ctx, tenantID, newItems)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 显式级联清理：任务 → 批次 → 明细
		if err := tx.Where("order_id = ? AND tenant_id = ?", order.ID, tenantID).Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ? AND tenant_id = ?", order.ID, tenantID).Delete(&entity.ProductionBatch{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}

		harvestDate, deliveryDate := scheduleDates(order.DateType, order.TargetDate, order.DeliveryOffset, newItems, crops)
		order.HarvestDate = harvestDate
		order.DeliveryDate = deliveryDate

		var total float64
		items := make([]entity.OrderItem, 0, len(newItems))
		for _, item := range newItems {
			amount := item.Quantity * item.UnitPrice
			total += amount
			items = append(items, entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				TenantID:  tenantID,
				CropID:    item.CropID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Amount:    amount,
			})
		}
		order.TotalAmount = total
		order.Items = items

		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		return s.generateProduction(ctx, tx, order, customer, crops, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete 删除订单：单事务内显式级联，任务 → 批次 → 明细 → 订单
func (s *OrderService) Delete(ctx context.Context, tenantID, id string) error {
	order, err := s.orderRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("订单不存在: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ? AND tenant_id = ?", order.ID, tenantID).Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ? AND tenant_id = ?", order.ID, tenantID).Delete(&entity.ProductionBatch{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", order.ID).Delete(&entity.Order{}).Error
	})
}

// GetByID 订单详情
func (s *OrderService) GetByID(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	return s.orderRepo.FindByID(ctx, tenantID, id)
}

// List 订单列表
func (s *OrderService) List(ctx context.Context, tenantID string, params repository.OrderListParams) ([]entity.Order, int64, error) {
	return s.orderRepo.List(ctx, tenantID, params)
}

// Confirm 确认订单
func (s *OrderService) Confirm(ctx context.Context, tenantID, id string) error {
	order, err := s.orderRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("订单不存在: %w", err)
	}
	if order.Status != entity.OrderStatusPending {
		return validationf("order status does not allow confirm: %s", order.Status)
	}
	order.Status = entity.OrderStatusConfirmed
	return s.orderRepo.Update(ctx, order)
}

// Complete 完成订单
func (s *OrderService) Complete(ctx context.Context, tenantID, id string) error {
	order, err := s.orderRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("订单不存在: %w", err)
	}
	if order.Status != entity.OrderStatusConfirmed {
		return validationf("order status does not allow complete: %s", order.Status)
	}
	order.Status = entity.OrderStatusCompleted
	return s.orderRepo.Update(ctx, order)
}

// Cancel 取消订单
func (s *OrderService) Cancel(ctx context.Context, tenantID, id string) error {
	order, err := s.orderRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("订单不存在: %w", err)
	}
	if order.IsTerminal() {
		return validationf("order status does not allow cancel: %s", order.Status)
	}
	order.Status = entity.OrderStatusCancelled
	return s.orderRepo.Update(ctx, order)
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
)

// DefaultWasteBuffer 默认损耗缓冲比例
const DefaultWasteBuffer = 0.1

// SowingPlanItem 播种计划项（派生数据，不落库）
type SowingPlanItem struct {
	CropID                string    `json:"crop_id"`
	CropName              string    `json:"crop_name"`
	Category              string    `json:"category"`
	SowDate               time.Time `json:"sow_date"`
	HarvestDate           time.Time `json:"harvest_date"`
	DemandQuantity        float64   `json:"demand_quantity"`
	RequiredQuantity      float64   `json:"required_quantity"`
	Unit                  string    `json:"unit"`
	UnitsNeeded           int       `json:"units_needed"`
	ExistingBatches       int       `json:"existing_batches"`
	AdditionalUnitsNeeded int       `json:"additional_units_needed"`
	OrderNumbers          []string  `json:"order_numbers"`
}

// SowingService 播种计划：聚合前瞻需求，扣减已排产批次，得出还需种植的数量。
// 计划只读，物化为批次是操作员单独的显式动作。
type SowingService struct {
	orderRepo *repository.OrderRepository
	cropRepo  *repository.CropRepository
	batchRepo *repository.BatchRepository
	batchSvc  *BatchService
}

// NewSowingService 创建播种计划服务
func NewSowingService(
	orderRepo *repository.OrderRepository,
	cropRepo *repository.CropRepository,
	batchRepo *repository.BatchRepository,
	batchSvc *BatchService,
) *SowingService {
	return &SowingService{
		orderRepo: orderRepo,
		cropRepo:  cropRepo,
		batchRepo: batchRepo,
		batchSvc:  batchSvc,
	}
}

type demandGroup struct {
	cropID       string
	deliveryDate time.Time
	quantity     float64
	orderNumbers []string
}

// Plan 生成 [startDate, endDate] 配送区间的播种计划。
// sowDate = deliveryDate − (生长天数 + 微绿遮光天数)；
// requiredQuantity = 需求 × (1 + wasteBuffer)（includeBuffer 关闭时取原始需求）；
// unitsNeeded = ceil(required / yieldPerUnit)；再扣减该作物同播种日的非终态在排批次。
// 输出按 sowDate 升序，同日按作物名升序（保证确定性）。
func (s *SowingService) Plan(ctx context.Context, tenantID string, startDate, endDate time.Time, wasteBuffer float64, includeBuffer bool) ([]SowingPlanItem, error) {
	startDate = calendar.DateOnly(startDate)
	endDate = calendar.DateOnly(endDate)
	if endDate.Before(startDate) {
		return nil, validationf("end date before start date")
	}
	if wasteBuffer < 0 {
		return nil, validationf("waste buffer must not be negative")
	}

	orders, err := s.orderRepo.ListOpenByDeliveryRange(ctx, tenantID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询订单需求失败: %w", err)
	}

	// 按 (作物, 配送日) 聚合需求，保留订单号便于追溯
	groups := make(map[string]*demandGroup)
	var keys []string
	for i := range orders {
		order := &orders[i]
		deliveryDate := calendar.DateOnly(order.DeliveryDate)
		for _, item := range order.Items {
			key := item.CropID + "|" + calendar.FormatISO(deliveryDate)
			g, ok := groups[key]
			if !ok {
				g = &demandGroup{cropID: item.CropID, deliveryDate: deliveryDate}
				groups[key] = g
				keys = append(keys, key)
			}
			g.quantity += item.Quantity
			g.orderNumbers = append(g.orderNumbers, order.OrderNumber)
		}
	}

	crops := make(map[string]*entity.Crop)
	items := make([]SowingPlanItem, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		crop, ok := crops[g.cropID]
		if !ok {
			crop, err = s.cropRepo.FindByID(ctx, tenantID, g.cropID)
			if err != nil {
				return nil, fmt.Errorf("作物不存在 (%s): %w", g.cropID, err)
			}
			crops[g.cropID] = crop
		}

		sowDate := calendar.AddDays(g.deliveryDate, -crop.GrowCycleDays())
		required := g.quantity
		if includeBuffer {
			required = g.quantity * (1 + wasteBuffer)
		}
		unitsNeeded := UnitsFor(required, crop.YieldPerUnit)

		existing, err := s.batchRepo.CountScheduled(ctx, tenantID, crop.ID, sowDate)
		if err != nil {
			return nil, fmt.Errorf("查询在排批次失败: %w", err)
		}
		additional := unitsNeeded - existing
		if additional < 0 {
			additional = 0
		}

		items = append(items, SowingPlanItem{
			CropID:                crop.ID,
			CropName:              crop.Name,
			Category:              crop.Category,
			SowDate:               sowDate,
			HarvestDate:           g.deliveryDate,
			DemandQuantity:        g.quantity,
			RequiredQuantity:      required,
			Unit:                  crop.Unit,
			UnitsNeeded:           unitsNeeded,
			ExistingBatches:       existing,
			AdditionalUnitsNeeded: additional,
			OrderNumbers:          g.orderNumbers,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].SowDate.Equal(items[j].SowDate) {
			return items[i].SowDate.Before(items[j].SowDate)
		}
		return items[i].CropName < items[j].CropName
	})
	return items, nil
}

// MaterializePlanItem 物化请求项
type MaterializePlanItem struct {
	CropID  string `json:"crop_id" binding:"required"`
	SowDate string `json:"sow_date" binding:"required"` // yyyy-MM-dd
	Units   int    `json:"units"`
}

// Materialize 把计划项转为生产批次（操作员显式动作；units<=0 的项跳过）
func (s *SowingService) Materialize(ctx context.Context, tenantID, userID string, items []MaterializePlanItem, locationID string) ([]entity.ProductionBatch, error) {
	var batches []entity.ProductionBatch
	for _, item := range items {
		if item.Units <= 0 {
			continue
		}
		sowDate, err := calendar.ParseISO(item.SowDate)
		if err != nil {
			return batches, validationf("invalid sow date: %s", item.SowDate)
		}
		batch, err := s.batchSvc.Create(ctx, tenantID, userID, CreateBatchRequest{
			CropID:     item.CropID,
			SowDate:    calendar.FormatISO(sowDate),
			Quantity:   item.Units,
			LocationID: locationID,
		})
		if err != nil {
			return batches, err
		}
		batches = append(batches, *batch)
	}
	return batches, nil
}

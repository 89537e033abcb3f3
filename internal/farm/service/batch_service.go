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

// 微绿与菌菇各走各的状态机，批次只能沿自己生产类型的路径流转。
// disposed/cancelled 单独处理：任意非终态可进入。
var microgreensTransitions = map[string][]string{
	entity.BatchStatusPlanned:        {entity.BatchStatusSoaking, entity.BatchStatusPlanted},
	entity.BatchStatusSoaking:        {entity.BatchStatusPlanted},
	entity.BatchStatusPlanted:        {entity.BatchStatusBlackout, entity.BatchStatusGrowing},
	entity.BatchStatusBlackout:       {entity.BatchStatusGrowing},
	entity.BatchStatusGrowing:        {entity.BatchStatusReadyToHarvest},
	entity.BatchStatusReadyToHarvest: {entity.BatchStatusHarvesting},
	entity.BatchStatusHarvesting:     {entity.BatchStatusHarvested},
}

var mushroomTransitions = map[string][]string{
	entity.BatchStatusPlanned:    {entity.BatchStatusInoculated},
	entity.BatchStatusInoculated: {entity.BatchStatusIncubating},
	entity.BatchStatusIncubating: {entity.BatchStatusFruiting},
	entity.BatchStatusFruiting:   {entity.BatchStatusHarvested},
}

func transitionAllowed(productionType, from, to string) bool {
	if to == entity.BatchStatusDisposed || to == entity.BatchStatusCancelled {
		b := entity.ProductionBatch{Status: from}
		return !b.IsTerminal()
	}
	transitions := microgreensTransitions
	if productionType == entity.ProductionTypeMushroomInHouse || productionType == entity.ProductionTypeMushroomReadyFruit {
		transitions = mushroomTransitions
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BatchService 生产批次：创建（含模板任务）、状态流转、采收记录。
type BatchService struct {
	batchRepo *repository.BatchRepository
	cropRepo  *repository.CropRepository
	seqRepo   *repository.SequenceRepository
	taskPlan  *TaskPlanService
	db        *gorm.DB
}

// NewBatchService 创建批次服务
func NewBatchService(
	batchRepo *repository.BatchRepository,
	cropRepo *repository.CropRepository,
	seqRepo *repository.SequenceRepository,
	taskPlan *TaskPlanService,
	db *gorm.DB,
) *BatchService {
	return &BatchService{
		batchRepo: batchRepo,
		cropRepo:  cropRepo,
		seqRepo:   seqRepo,
		taskPlan:  taskPlan,
		db:        db,
	}
}

// CreateBatchRequest 创建批次请求
type CreateBatchRequest struct {
	CropID         string `json:"crop_id" binding:"required"`
	SowDate        string `json:"sow_date" binding:"required"` // yyyy-MM-dd
	Quantity       int    `json:"quantity" binding:"required,gt=0"`
	ProductionType string `json:"production_type"`
	LocationID     string `json:"location_id"`
	Notes          string `json:"notes"`
}

// Create 创建批次并按批次任务模板生成任务，单事务
func (s *BatchService) Create(ctx context.Context, tenantID, userID string, req CreateBatchRequest) (*entity.ProductionBatch, error) {
	if req.Quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	sowDate, err := calendar.ParseISO(req.SowDate)
	if err != nil {
		return nil, validationf("invalid sow date: %s", req.SowDate)
	}

	crop, err := s.cropRepo.FindByID(ctx, tenantID, req.CropID)
	if err != nil {
		return nil, fmt.Errorf("作物不存在: %w", err)
	}

	productionType := req.ProductionType
	if productionType == "" {
		if crop.IsMushrooms() {
			productionType = entity.ProductionTypeMushroomInHouse
		} else {
			productionType = entity.ProductionTypeMicrogreensTray
		}
	}
	if _, ok := batchTemplates[productionType]; !ok {
		return nil, validationf("unsupported production type: %s", productionType)
	}

	maxFlushes := 1
	if crop.IsMushrooms() {
		maxFlushes = crop.FlushCount
		if maxFlushes < 1 {
			maxFlushes = 1
		}
	}

	var batch *entity.ProductionBatch
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batchCode, err := s.seqRepo.NextBatchCode(tx, tenantID, productionType, sowDate)
		if err != nil {
			return fmt.Errorf("生成批次号失败: %w", err)
		}
		batch = &entity.ProductionBatch{
			ID:                 uuid.New().String(),
			TenantID:           tenantID,
			BatchCode:          batchCode,
			CropID:             crop.ID,
			LocationID:         req.LocationID,
			ProductionType:     productionType,
			PlannedSowDate:     sowDate,
			PlannedHarvestDate: calendar.AddDays(sowDate, crop.GrowthDays),
			Quantity:           req.Quantity,
			ExpectedYield:      float64(req.Quantity) * crop.YieldPerUnit,
			MaxFlushes:         maxFlushes,
			Status:             entity.BatchStatusPlanned,
			Notes:              req.Notes,
			CreatedBy:          userID,
		}
		if err := tx.Create(batch).Error; err != nil {
			return err
		}

		specs, err := s.taskPlan.ExpandBatch(batch, crop)
		if err != nil {
			return &ExpansionError{CropID: crop.ID, ItemID: batch.ID, Reason: err}
		}
		for _, spec := range specs {
			task := &entity.Task{
				ID:        uuid.New().String(),
				TenantID:  tenantID,
				Type:      spec.Type,
				Title:     spec.Title,
				DueDate:   spec.DueDate,
				BatchID:   &batch.ID,
				CropID:    &crop.ID,
				Status:    entity.TaskStatusPending,
				Details:   spec.Details,
				CreatedBy: userID,
			}
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateStatus 状态流转（校验状态机）
func (s *BatchService) UpdateStatus(ctx context.Context, tenantID, id, status string) (*entity.ProductionBatch, error) {
	batch, err := s.batchRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("批次不存在: %w", err)
	}
	if !transitionAllowed(batch.ProductionType, batch.Status, status) {
		return nil, validationf("batch %s cannot move from %s to %s", batch.BatchCode, batch.Status, status)
	}
	batch.Status = status
	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// RecordHarvestRequest 采收记录请求
type RecordHarvestRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Notes    string  `json:"notes"`
}

// RecordHarvest 记录采收并累计实际产量。
// 菌菇按 flush 计数：未达 MaxFlushes 时回到 fruiting 等待下一潮，否则收尾为 harvested。
func (s *BatchService) RecordHarvest(ctx context.Context, tenantID, userID, id string, req RecordHarvestRequest, now time.Time) (*entity.ProductionBatch, error) {
	if req.Quantity <= 0 {
		return nil, validationf("harvest quantity must be positive")
	}
	batch, err := s.batchRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("批次不存在: %w", err)
	}
	switch batch.Status {
	case entity.BatchStatusReadyToHarvest, entity.BatchStatusHarvesting, entity.BatchStatusFruiting:
	default:
		return nil, validationf("batch %s status does not allow harvest: %s", batch.BatchCode, batch.Status)
	}

	crop, err := s.cropRepo.FindByID(ctx, tenantID, batch.CropID)
	if err != nil {
		return nil, fmt.Errorf("作物不存在: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := &entity.HarvestRecord{
			ID:          uuid.New().String(),
			BatchID:     batch.ID,
			TenantID:    tenantID,
			Quantity:    req.Quantity,
			Unit:        crop.Unit,
			Flush:       batch.CurrentFlush + 1,
			HarvestedAt: now,
			HarvestedBy: userID,
			Notes:       req.Notes,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		batch.ActualYield += req.Quantity
		if crop.IsMushrooms() {
			batch.CurrentFlush++
			if batch.CurrentFlush < batch.MaxFlushes {
				batch.Status = entity.BatchStatusFruiting
			} else {
				batch.Status = entity.BatchStatusHarvested
			}
		} else {
			batch.Status = entity.BatchStatusHarvested
		}
		return tx.Save(batch).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// GetByID 批次详情
func (s *BatchService) GetByID(ctx context.Context, tenantID, id string) (*entity.ProductionBatch, error) {
	return s.batchRepo.FindByID(ctx, tenantID, id)
}

// List 批次列表
func (s *BatchService) List(ctx context.Context, tenantID string, params repository.BatchListParams) ([]entity.ProductionBatch, int64, error) {
	return s.batchRepo.List(ctx, tenantID, params)
}

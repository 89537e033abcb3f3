package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
)

const cropCacheTTL = 10 * time.Minute

// CropService 作物档案服务。详情读取走 Redis 旁路缓存，
// 任何写操作整体失效该作物的缓存键。rdb 可为 nil（测试环境直连数据库）。
type CropService struct {
	repo *repository.CropRepository
	rdb  *redis.Client
}

// NewCropService 创建作物服务
func NewCropService(repo *repository.CropRepository, rdb *redis.Client) *CropService {
	return &CropService{repo: repo, rdb: rdb}
}

func cropCacheKey(tenantID, id string) string {
	return fmt.Sprintf("farm:crop:%s:%s", tenantID, id)
}

// CreateCropRequest 创建作物请求
type CreateCropRequest struct {
	Name         string  `json:"name" binding:"required"`
	Variety      string  `json:"variety"`
	Category     string  `json:"category" binding:"required,oneof=microgreens mushrooms"`
	GrowthDays   int     `json:"growth_days" binding:"required,gt=0"`
	BlackoutDays int     `json:"blackout_days"`
	SoakHours    int     `json:"soak_hours"`
	YieldPerUnit float64 `json:"yield_per_unit" binding:"required,gt=0"`
	SeedRate     float64 `json:"seed_rate"`
	FlushCount   int     `json:"flush_count"`
	Unit         string  `json:"unit"`
	Notes        string  `json:"notes"`
}

// Create 创建作物
func (s *CropService) Create(ctx context.Context, tenantID, userID string, req CreateCropRequest) (*entity.Crop, error) {
	if req.BlackoutDays < 0 || req.SoakHours < 0 {
		return nil, validationf("blackout days and soak hours must not be negative")
	}
	if req.Category == entity.CategoryMicrogreens && req.BlackoutDays > req.GrowthDays {
		return nil, validationf("blackout days cannot exceed growth days")
	}
	unit := req.Unit
	if unit == "" {
		unit = "oz"
	}
	flushCount := req.FlushCount
	if flushCount <= 0 {
		flushCount = 1
	}
	crop := &entity.Crop{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Name:         req.Name,
		Variety:      req.Variety,
		Category:     req.Category,
		Status:       entity.CropStatusActive,
		GrowthDays:   req.GrowthDays,
		BlackoutDays: req.BlackoutDays,
		SoakHours:    req.SoakHours,
		YieldPerUnit: req.YieldPerUnit,
		SeedRate:     req.SeedRate,
		FlushCount:   flushCount,
		Unit:         unit,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if err := s.repo.Create(ctx, crop); err != nil {
		return nil, fmt.Errorf("创建作物失败: %w", err)
	}
	return crop, nil
}

// GetByID 作物详情（缓存优先）
func (s *CropService) GetByID(ctx context.Context, tenantID, id string) (*entity.Crop, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cropCacheKey(tenantID, id)).Result(); err == nil {
			var crop entity.Crop
			if json.Unmarshal([]byte(raw), &crop) == nil {
				return &crop, nil
			}
		}
	}
	crop, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if b, err := json.Marshal(crop); err == nil {
			s.rdb.Set(ctx, cropCacheKey(tenantID, id), b, cropCacheTTL)
		}
	}
	return crop, nil
}

// UpdateCropRequest 更新作物请求
type UpdateCropRequest struct {
	Name         *string  `json:"name"`
	Variety      *string  `json:"variety"`
	Status       *string  `json:"status"`
	GrowthDays   *int     `json:"growth_days"`
	BlackoutDays *int     `json:"blackout_days"`
	SoakHours    *int     `json:"soak_hours"`
	YieldPerUnit *float64 `json:"yield_per_unit"`
	SeedRate     *float64 `json:"seed_rate"`
	FlushCount   *int     `json:"flush_count"`
	Unit         *string  `json:"unit"`
	Notes        *string  `json:"notes"`
}

// Update 更新作物参数。已生成的任务与批次持有参数快照，不受影响。
func (s *CropService) Update(ctx context.Context, tenantID, id string, req UpdateCropRequest) (*entity.Crop, error) {
	crop, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("作物不存在: %w", err)
	}
	if req.Name != nil {
		crop.Name = *req.Name
	}
	if req.Variety != nil {
		crop.Variety = *req.Variety
	}
	if req.Status != nil {
		if *req.Status != entity.CropStatusActive && *req.Status != entity.CropStatusArchived {
			return nil, validationf("invalid crop status: %s", *req.Status)
		}
		crop.Status = *req.Status
	}
	if req.GrowthDays != nil {
		if *req.GrowthDays <= 0 {
			return nil, validationf("growth days must be positive")
		}
		crop.GrowthDays = *req.GrowthDays
	}
	if req.BlackoutDays != nil {
		if *req.BlackoutDays < 0 {
			return nil, validationf("blackout days must not be negative")
		}
		crop.BlackoutDays = *req.BlackoutDays
	}
	if req.SoakHours != nil {
		crop.SoakHours = *req.SoakHours
	}
	if req.YieldPerUnit != nil {
		if *req.YieldPerUnit <= 0 {
			return nil, validationf("yield per unit must be positive")
		}
		crop.YieldPerUnit = *req.YieldPerUnit
	}
	if req.SeedRate != nil {
		crop.SeedRate = *req.SeedRate
	}
	if req.FlushCount != nil && *req.FlushCount > 0 {
		crop.FlushCount = *req.FlushCount
	}
	if req.Unit != nil {
		crop.Unit = *req.Unit
	}
	if req.Notes != nil {
		crop.Notes = *req.Notes
	}
	if crop.IsMicrogreens() && crop.BlackoutDays > crop.GrowthDays {
		return nil, validationf("blackout days cannot exceed growth days")
	}
	if err := s.repo.Update(ctx, crop); err != nil {
		return nil, err
	}
	s.clearCache(ctx, tenantID, id)
	return crop, nil
}

// Delete 软删除作物
func (s *CropService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.repo.FindByID(ctx, tenantID, id); err != nil {
		return fmt.Errorf("作物不存在: %w", err)
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.clearCache(ctx, tenantID, id)
	return nil
}

// List 作物列表
func (s *CropService) List(ctx context.Context, tenantID string, params repository.CropListParams) ([]entity.Crop, int64, error) {
	return s.repo.List(ctx, tenantID, params)
}

// clearCache 清除作物缓存
func (s *CropService) clearCache(ctx context.Context, tenantID, id string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, cropCacheKey(tenantID, id))
	}
}

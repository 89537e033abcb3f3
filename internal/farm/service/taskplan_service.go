package service

import (
	"fmt"
	"math"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
)

// 菌菇出菇环境默认值（接种任务详情展示用）
const (
	defaultFruitingTempC    = 18.0
	defaultFruitingHumidity = 85.0
)

// TaskSpec 展开后的单个任务规格（绝对到期日）
type TaskSpec struct {
	Type    string
	Title   string
	DueDate time.Time
	Details entity.TaskDetails
}

// OffsetRef 批次任务模板的偏移引用：字面天数或作物参数的命名引用，
// 由 Resolve 一个纯函数解析，不做字符串替换。
type OffsetRef int

const (
	OffsetLiteral OffsetRef = iota
	OffsetBlackoutDays
	OffsetGrowthDays
	OffsetPinning // 生长期的固定比例（出菇/现蕾检查）
)

// TaskOffset 批次模板偏移表达式
type TaskOffset struct {
	Ref  OffsetRef
	Days int // OffsetLiteral 时的字面值
}

// Resolve 按作物参数解析为具体天数
func (o TaskOffset) Resolve(crop *entity.Crop) int {
	switch o.Ref {
	case OffsetBlackoutDays:
		return crop.BlackoutDays
	case OffsetGrowthDays:
		return crop.GrowthDays
	case OffsetPinning:
		return int(math.Ceil(float64(crop.GrowthDays) * 0.75))
	default:
		return o.Days
	}
}

// BatchTaskTemplate 批次任务模板项，dueDate = plannedSowDate + Offset.Resolve(crop)
type BatchTaskTemplate struct {
	Offset TaskOffset
	Type   string
	Title  string
}

// batchTemplates 按生产类型内置的批次任务模板（有序）
var batchTemplates = map[string][]BatchTaskTemplate{
	entity.ProductionTypeMicrogreensTray: {
		{Offset: TaskOffset{Ref: OffsetLiteral, Days: 0}, Type: entity.TaskTypePlant, Title: "Sow trays"},
		{Offset: TaskOffset{Ref: OffsetBlackoutDays}, Type: entity.TaskTypeUncover, Title: "Uncover trays"},
		{Offset: TaskOffset{Ref: OffsetGrowthDays}, Type: entity.TaskTypeHarvest, Title: "Harvest trays"},
	},
	entity.ProductionTypeMushroomInHouse: {
		{Offset: TaskOffset{Ref: OffsetLiteral, Days: 0}, Type: entity.TaskTypeIntroduce, Title: "Inoculate blocks"},
		{Offset: TaskOffset{Ref: OffsetPinning}, Type: entity.TaskTypeMove, Title: "Move blocks to fruiting room"},
		{Offset: TaskOffset{Ref: OffsetGrowthDays}, Type: entity.TaskTypeHarvest, Title: "Harvest blocks"},
	},
	entity.ProductionTypeMushroomReadyFruit: {
		{Offset: TaskOffset{Ref: OffsetLiteral, Days: 0}, Type: entity.TaskTypeIntroduce, Title: "Introduce blocks to fruiting"},
		{Offset: TaskOffset{Ref: OffsetGrowthDays}, Type: entity.TaskTypeHarvest, Title: "Harvest blocks"},
	},
}

// TaskPlanService 任务模板引擎：把作物参数 + 锚定日期展开为带日期的任务序列。
// 纯计算，不做持久化；作物参数按调用时的快照取值。
type TaskPlanService struct{}

// NewTaskPlanService 创建任务模板引擎
func NewTaskPlanService() *TaskPlanService {
	return &TaskPlanService{}
}

// UnitsFor 需求量折算生产单位数（托盘/菌包）：ceil(quantity / yieldPerUnit)
func UnitsFor(quantity, yieldPerUnit float64) int {
	if yieldPerUnit <= 0 {
		return 0
	}
	return int(math.Ceil(quantity / yieldPerUnit))
}

// ExpandOrderItem 按采收日反推订单项的生产任务。
// 微绿：遮光开始 = 采收 − 生长天数；见光 = 采收 − (生长 − 遮光)；
// 浸种仅在 SoakHours > 0 时生成，日期为遮光开始前一天。
// 菌菇：接种 = 采收 − 生长天数。
func (s *TaskPlanService) ExpandOrderItem(crop *entity.Crop, quantity float64, harvestDate time.Time, customerName string) ([]TaskSpec, error) {
	if crop == nil {
		return nil, fmt.Errorf("crop parameters missing")
	}
	harvestDate = calendar.DateOnly(harvestDate)

	if crop.IsMushrooms() {
		blocks := UnitsFor(quantity, crop.YieldPerUnit)
		introduceDate := calendar.AddDays(harvestDate, -crop.GrowthDays)
		return []TaskSpec{
			{
				Type:    entity.TaskTypeIntroduce,
				Title:   fmt.Sprintf("Introduce %s blocks", crop.Name),
				DueDate: introduceDate,
				Details: entity.TaskDetails{
					CropName:         crop.Name,
					Variety:          crop.Variety,
					Blocks:           blocks,
					Quantity:         quantity,
					Unit:             crop.Unit,
					FruitingTempC:    defaultFruitingTempC,
					FruitingHumidity: defaultFruitingHumidity,
				},
			},
			{
				Type:    entity.TaskTypeHarvest,
				Title:   fmt.Sprintf("Harvest %s", crop.Name),
				DueDate: harvestDate,
				Details: entity.TaskDetails{
					CropName:      crop.Name,
					Variety:       crop.Variety,
					Blocks:        blocks,
					Quantity:      quantity,
					Unit:          crop.Unit,
					ExpectedYield: float64(blocks) * crop.YieldPerUnit,
					CustomerName:  customerName,
				},
			},
		}, nil
	}

	// 微绿
	trayCount := UnitsFor(quantity, crop.YieldPerUnit)
	seedWeight := float64(trayCount) * crop.SeedRate
	blackoutStart := calendar.AddDays(harvestDate, -crop.GrowthDays)
	growStart := calendar.AddDays(harvestDate, -(crop.GrowthDays - crop.BlackoutDays))

	details := entity.TaskDetails{
		CropName:   crop.Name,
		Variety:    crop.Variety,
		TrayCount:  trayCount,
		SeedWeight: seedWeight,
		Quantity:   quantity,
		Unit:       crop.Unit,
	}

	var specs []TaskSpec
	if crop.SoakHours > 0 {
		specs = append(specs, TaskSpec{
			Type:    entity.TaskTypeSoak,
			Title:   fmt.Sprintf("Soak %s seed", crop.Name),
			DueDate: calendar.AddDays(blackoutStart, -1),
			Details: details,
		})
	}
	specs = append(specs,
		TaskSpec{
			Type:    entity.TaskTypePlant,
			Title:   fmt.Sprintf("Sow %s", crop.Name),
			DueDate: blackoutStart,
			Details: details,
		},
		TaskSpec{
			Type:    entity.TaskTypeUncover,
			Title:   fmt.Sprintf("Uncover %s", crop.Name),
			DueDate: growStart,
			Details: details,
		},
		TaskSpec{
			Type:    entity.TaskTypeHarvest,
			Title:   fmt.Sprintf("Harvest %s", crop.Name),
			DueDate: harvestDate,
			Details: details,
		},
	)
	return specs, nil
}

// DeliveryTask 每张订单一个配送任务（不按明细拆分）
func (s *TaskPlanService) DeliveryTask(order *entity.Order, customer *entity.Customer) TaskSpec {
	return TaskSpec{
		Type:    entity.TaskTypeDelivery,
		Title:   fmt.Sprintf("Deliver order %s", order.OrderNumber),
		DueDate: calendar.DateOnly(order.DeliveryDate),
		Details: entity.TaskDetails{
			CustomerName: customer.Name,
			Address:      customer.Address,
			ItemCount:    len(order.Items),
			OrderTotal:   order.TotalAmount,
		},
	}
}

// ExpandBatch 批次任务模板展开：dueDate = plannedSowDate + 偏移解析值
func (s *TaskPlanService) ExpandBatch(batch *entity.ProductionBatch, crop *entity.Crop) ([]TaskSpec, error) {
	if crop == nil {
		return nil, fmt.Errorf("crop parameters missing")
	}
	template, ok := batchTemplates[batch.ProductionType]
	if !ok {
		return nil, fmt.Errorf("unknown production type: %s", batch.ProductionType)
	}
	sowDate := calendar.DateOnly(batch.PlannedSowDate)

	details := entity.TaskDetails{
		CropName: crop.Name,
		Variety:  crop.Variety,
		Unit:     crop.Unit,
	}
	if crop.IsMushrooms() {
		details.Blocks = batch.Quantity
	} else {
		details.TrayCount = batch.Quantity
		details.SeedWeight = float64(batch.Quantity) * crop.SeedRate
	}

	specs := make([]TaskSpec, 0, len(template)+1)
	if crop.IsMicrogreens() && crop.SoakHours > 0 {
		specs = append(specs, TaskSpec{
			Type:    entity.TaskTypeSoak,
			Title:   fmt.Sprintf("Soak %s seed", crop.Name),
			DueDate: calendar.AddDays(sowDate, -1),
			Details: details,
		})
	}
	for _, item := range template {
		d := details
		if item.Type == entity.TaskTypeHarvest {
			d.ExpectedYield = batch.ExpectedYield
		}
		specs = append(specs, TaskSpec{
			Type:    item.Type,
			Title:   fmt.Sprintf("%s (%s)", item.Title, crop.Name),
			DueDate: calendar.AddDays(sowDate, item.Offset.Resolve(crop)),
			Details: d,
		})
	}
	return specs, nil
}

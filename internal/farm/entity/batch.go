package entity

import "time"

// ProductionType 生产类型
const (
	ProductionTypeMicrogreensTray    = "microgreens_tray"
	ProductionTypeMushroomInHouse    = "mushroom_in_house"
	ProductionTypeMushroomReadyFruit = "mushroom_ready_to_fruit"
)

// BatchStatus 生产批次状态机。
// 微绿: planned → soaking → planted → blackout → growing → ready_to_harvest → harvesting → harvested
// 菌菇: planned → inoculated → incubating → fruiting →(flush 循环)→ harvested
// disposed / cancelled 可从任意非终态进入。
const (
	BatchStatusPlanned        = "planned"
	BatchStatusSoaking        = "soaking"
	BatchStatusPlanted        = "planted"
	BatchStatusBlackout       = "blackout"
	BatchStatusGrowing        = "growing"
	BatchStatusReadyToHarvest = "ready_to_harvest"
	BatchStatusHarvesting     = "harvesting"
	BatchStatusHarvested      = "harvested"
	BatchStatusInoculated     = "inoculated"
	BatchStatusIncubating     = "incubating"
	BatchStatusFruiting       = "fruiting"
	BatchStatusDisposed       = "disposed"
	BatchStatusCancelled      = "cancelled"
)

// BatchTerminalStatuses 终态集合（排产净需求计算排除这些批次之外的全部在产批次）
var BatchTerminalStatuses = []string{BatchStatusHarvested, BatchStatusDisposed, BatchStatusCancelled}

// ProductionBatch 生产批次。订单项生成的批次持有订单引用（弱关联，删除订单级联删除批次）。
type ProductionBatch struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID           string     `json:"tenant_id" gorm:"size:64;not null;index"`
	BatchCode          string     `json:"batch_code" gorm:"size:50;not null;uniqueIndex"`
	CropID             string     `json:"crop_id" gorm:"type:uuid;not null;index"`
	OrderID            *string    `json:"order_id" gorm:"type:uuid;index"`
	OrderItemID        *string    `json:"order_item_id" gorm:"type:uuid"`
	LocationID         string     `json:"location_id" gorm:"size:64"`
	ProductionType     string     `json:"production_type" gorm:"size:32;not null"`
	PlannedSowDate     time.Time  `json:"planned_sow_date" gorm:"type:date;not null;index"`
	PlannedHarvestDate time.Time  `json:"planned_harvest_date" gorm:"type:date;not null"`
	Quantity           int        `json:"quantity" gorm:"not null;default:1"`
	ExpectedYield      float64    `json:"expected_yield" gorm:"type:decimal(12,4);default:0"`
	ActualYield        float64    `json:"actual_yield" gorm:"type:decimal(12,4);default:0"`
	CurrentFlush       int        `json:"current_flush" gorm:"not null;default:0"`
	MaxFlushes         int        `json:"max_flushes" gorm:"not null;default:1"`
	Status             string     `json:"status" gorm:"size:20;not null;default:planned;index"`
	Notes              string     `json:"notes" gorm:"type:text"`
	CreatedBy          string     `json:"created_by" gorm:"size:64"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at" gorm:"index"`

	Crop           *Crop           `json:"crop,omitempty" gorm:"foreignKey:CropID"`
	HarvestRecords []HarvestRecord `json:"harvest_records,omitempty" gorm:"foreignKey:BatchID"`
}

func (ProductionBatch) TableName() string {
	return "farm_production_batches"
}

// IsTerminal 是否终态
func (b *ProductionBatch) IsTerminal() bool {
	for _, s := range BatchTerminalStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// HarvestRecord 采收记录，归属批次，累计批次实际产量
type HarvestRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	BatchID     string    `json:"batch_id" gorm:"type:uuid;not null;index"`
	TenantID    string    `json:"tenant_id" gorm:"size:64;not null;index"`
	Quantity    float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit        string    `json:"unit" gorm:"size:16;not null;default:oz"`
	Flush       int       `json:"flush" gorm:"not null;default:1"`
	HarvestedAt time.Time `json:"harvested_at" gorm:"not null"`
	HarvestedBy string    `json:"harvested_by" gorm:"size:64"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (HarvestRecord) TableName() string {
	return "farm_harvest_records"
}

package entity

import "time"

// CropCategory 作物类别
const (
	CategoryMicrogreens = "microgreens"
	CategoryMushrooms   = "mushrooms"
)

// CropStatus 作物状态
const (
	CropStatusActive   = "active"
	CropStatusArchived = "archived"
)

// Crop 作物/品种档案，携带生产参数。
// 生产参数在生成任务时拷贝快照，后续修改作物不回写已生成的任务。
type Crop struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID     string     `json:"tenant_id" gorm:"size:64;not null;index"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Variety      string     `json:"variety" gorm:"size:128"`
	Category     string     `json:"category" gorm:"size:20;not null;default:microgreens"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	GrowthDays   int        `json:"growth_days" gorm:"not null;default:0"`
	BlackoutDays int        `json:"blackout_days" gorm:"not null;default:0"`
	SoakHours    int        `json:"soak_hours" gorm:"not null;default:0"`
	YieldPerUnit float64    `json:"yield_per_unit" gorm:"type:decimal(12,4);not null;default:0"`
	SeedRate     float64    `json:"seed_rate" gorm:"type:decimal(12,4);default:0"`
	FlushCount   int        `json:"flush_count" gorm:"not null;default:1"`
	Unit         string     `json:"unit" gorm:"size:16;not null;default:oz"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Crop) TableName() string {
	return "farm_crops"
}

// IsMicrogreens 是否微绿作物
func (c *Crop) IsMicrogreens() bool {
	return c.Category == CategoryMicrogreens
}

// IsMushrooms 是否菌菇作物
func (c *Crop) IsMushrooms() bool {
	return c.Category == CategoryMushrooms
}

// GrowCycleDays 从播种到采收的总天数（微绿为遮光期+生长期）
func (c *Crop) GrowCycleDays() int {
	if c.IsMicrogreens() {
		return c.GrowthDays + c.BlackoutDays
	}
	return c.GrowthDays
}

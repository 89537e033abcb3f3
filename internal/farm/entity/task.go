package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// TaskType 任务类型
const (
	TaskTypeSoak      = "soak"
	TaskTypePlant     = "plant"
	TaskTypeUncover   = "uncover"
	TaskTypeWater     = "water"
	TaskTypeMove      = "move"
	TaskTypeIntroduce = "introduce"
	TaskTypeHarvest   = "harvest"
	TaskTypeDelivery  = "delivery"
	TaskTypeCustom    = "custom"
)

// TaskStatus 任务状态
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusSkipped    = "skipped"
)

// TaskDetails 任务详情，按任务类型取用字段（带类型的联合体，整列 JSON 存储）。
// 播种/浸种类任务携带托盘数与种子重量，菌菇接种任务携带块数与出菇环境，
// 配送任务携带客户与订单汇总。
type TaskDetails struct {
	CropName         string  `json:"crop_name,omitempty"`
	Variety          string  `json:"variety,omitempty"`
	TrayCount        int     `json:"tray_count,omitempty"`
	SeedWeight       float64 `json:"seed_weight,omitempty"`
	Blocks           int     `json:"blocks,omitempty"`
	Quantity         float64 `json:"quantity,omitempty"`
	Unit             string  `json:"unit,omitempty"`
	ExpectedYield    float64 `json:"expected_yield,omitempty"`
	FruitingTempC    float64 `json:"fruiting_temp_c,omitempty"`
	FruitingHumidity float64 `json:"fruiting_humidity,omitempty"`
	CustomerName     string  `json:"customer_name,omitempty"`
	Address          string  `json:"address,omitempty"`
	ItemCount        int     `json:"item_count,omitempty"`
	OrderTotal       float64 `json:"order_total,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

func (d TaskDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *TaskDetails) Scan(value interface{}) error {
	if value == nil {
		*d = TaskDetails{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return nil
}

// Task 运营任务。批次/订单引用为弱关联：删除任务不影响批次，
// 删除订单则级联清除其生成的任务。CompletedAt 与 CompletedBy 同置同清。
type Task struct {
	ID          string      `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID    string      `json:"tenant_id" gorm:"size:64;not null;index"`
	Type        string      `json:"type" gorm:"size:20;not null"`
	Title       string      `json:"title" gorm:"size:256;not null"`
	DueDate     time.Time   `json:"due_date" gorm:"type:date;not null;index"`
	BatchID     *string     `json:"batch_id" gorm:"type:uuid;index"`
	OrderID     *string     `json:"order_id" gorm:"type:uuid;index"`
	CropID      *string     `json:"crop_id" gorm:"type:uuid"`
	Status      string      `json:"status" gorm:"size:16;not null;default:pending;index"`
	Details     TaskDetails `json:"details" gorm:"type:text"`
	CompletedAt *time.Time  `json:"completed_at"`
	CompletedBy string      `json:"completed_by" gorm:"size:64"`
	CreatedBy   string      `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	DeletedAt   *time.Time  `json:"deleted_at" gorm:"index"`
}

func (Task) TableName() string {
	return "farm_tasks"
}

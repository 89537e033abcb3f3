package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// WeekdaySet 配送的星期集合（0=周日..6=周六），序列化为 JSON 存储
type WeekdaySet []int

func (w WeekdaySet) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (w *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	}
	return nil
}

// Contains 星期是否在集合内
func (w WeekdaySet) Contains(weekday time.Weekday) bool {
	for _, d := range w {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// StandingOrder 定期订单模板，按配送星期自动生成具体订单
type StandingOrder struct {
	ID                string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID          string     `json:"tenant_id" gorm:"size:64;not null;index"`
	CustomerID        string     `json:"customer_id" gorm:"type:uuid;not null;index"`
	Name              string     `json:"name" gorm:"size:128"`
	DeliveryDays      WeekdaySet `json:"delivery_days" gorm:"type:text"`
	DeliveryTime      string     `json:"delivery_time" gorm:"size:8"`
	GenerateDaysAhead int        `json:"generate_days_ahead" gorm:"not null;default:2"`
	DeliveryOffset    int        `json:"delivery_offset" gorm:"not null;default:0"`
	AutoGenerate      bool       `json:"auto_generate" gorm:"not null;default:true"`
	IsActive          bool       `json:"is_active" gorm:"not null;default:true"`
	IsPaused          bool       `json:"is_paused" gorm:"not null;default:false"`
	PausedUntil       *time.Time `json:"paused_until" gorm:"type:date"`
	StartDate         time.Time  `json:"start_date" gorm:"type:date;not null"`
	EndDate           *time.Time `json:"end_date" gorm:"type:date"`
	LastGeneratedAt   *time.Time `json:"last_generated_at"`
	Notes             string     `json:"notes" gorm:"type:text"`
	CreatedBy         string     `json:"created_by" gorm:"size:64"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at" gorm:"index"`

	Customer *Customer           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []StandingOrderItem `json:"items,omitempty" gorm:"foreignKey:StandingOrderID"`
}

func (StandingOrder) TableName() string {
	return "farm_standing_orders"
}

// StandingOrderItem 定期订单模板明细。数量固定，价格生成时取产品现价。
type StandingOrderItem struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	StandingOrderID string    `json:"standing_order_id" gorm:"type:uuid;not null;index"`
	TenantID        string    `json:"tenant_id" gorm:"size:64;not null;index"`
	ProductID       string    `json:"product_id" gorm:"type:uuid;not null"`
	CropID          string    `json:"crop_id" gorm:"type:uuid;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (StandingOrderItem) TableName() string {
	return "farm_standing_order_items"
}

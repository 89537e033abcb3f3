package entity

import "time"

// OrderStatus 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// OrderDateType 日期锚定方式：targetDate 锚定采收日或起始（播种）日
const (
	DateTypeHarvest = "harvest"
	DateTypeStart   = "start"
)

// OrderSource 订单来源
const (
	OrderSourceManual        = "manual"
	OrderSourceStandingOrder = "standing_order"
	OrderSourceRecurring     = "recurring"
)

// OrderFrequency 重复频率。monthly 为固定 30 天步长（非日历月），保留原始行为。
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// Order 订单。StandingOrderID + DeliveryDate 上的唯一索引保证
// 定期订单生成的幂等性（并发重复生成由约束兜底，而非先查后写）。
type Order struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID         string     `json:"tenant_id" gorm:"size:64;not null;index"`
	OrderNumber      string     `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	CustomerID       string     `json:"customer_id" gorm:"type:uuid;not null;index"`
	DateType         string     `json:"date_type" gorm:"size:16;not null;default:harvest"`
	TargetDate       time.Time  `json:"target_date" gorm:"type:date;not null"`
	DeliveryOffset   int        `json:"delivery_offset" gorm:"not null;default:0"`
	HarvestDate      time.Time  `json:"harvest_date" gorm:"type:date;not null"`
	DeliveryDate     time.Time  `json:"delivery_date" gorm:"type:date;not null;index;uniqueIndex:uidx_standing_delivery"`
	Status           string     `json:"status" gorm:"size:16;not null;default:pending"`
	TotalAmount      float64    `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Source           string     `json:"source" gorm:"size:20;not null;default:manual"`
	StandingOrderID  *string    `json:"standing_order_id" gorm:"type:uuid;uniqueIndex:uidx_standing_delivery"`
	IsRecurring      bool       `json:"is_recurring" gorm:"not null;default:false"`
	Frequency        string     `json:"frequency" gorm:"size:16"`
	RecurringEndDate *time.Time `json:"recurring_end_date" gorm:"type:date"`
	// 同一重复序列的所有订单共享首单ID，便于批量操作
	RecurrenceParentID *string    `json:"recurrence_parent_id" gorm:"type:uuid;index"`
	Notes              string     `json:"notes" gorm:"type:text"`
	CreatedBy          string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at" gorm:"index"`

	Customer *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "farm_orders"
}

// IsTerminal 是否终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// OrderItem 订单明细
type OrderItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	OrderID   string    `json:"order_id" gorm:"type:uuid;not null;index"`
	TenantID  string    `json:"tenant_id" gorm:"size:64;not null;index"`
	CropID    string    `json:"crop_id" gorm:"type:uuid;not null;index"`
	ProductID string    `json:"product_id" gorm:"type:uuid"`
	Quantity  float64   `json:"quantity" gorm:"type:decimal(12,4);not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(12,4);not null;default:0"`
	Amount    float64   `json:"amount" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "farm_order_items"
}

// FrequencyStepDays 重复频率对应的天数步长
func FrequencyStepDays(frequency string) int {
	switch frequency {
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	case FrequencyMonthly:
		return 30
	default:
		return 0
	}
}

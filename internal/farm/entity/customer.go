package entity

import "time"

// CustomerType 客户类型
const (
	CustomerTypeRestaurant = "restaurant"
	CustomerTypeGrocery    = "grocery"
	CustomerTypeMarket     = "market"
	CustomerTypeRetail     = "retail"
)

// CustomerStatus 客户状态
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer 客户
type Customer struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID     string     `json:"tenant_id" gorm:"size:64;not null;index"`
	CustomerCode string     `json:"customer_code" gorm:"size:50;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	Type         string     `json:"type" gorm:"size:20;not null;default:retail"`
	ContactName  string     `json:"contact_name" gorm:"size:64"`
	Phone        string     `json:"phone" gorm:"size:32"`
	Email        string     `json:"email" gorm:"size:128"`
	Address      string     `json:"address" gorm:"size:500"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Customer) TableName() string {
	return "farm_customers"
}

package entity

import "time"

// ProductStatus 产品状态
const (
	ProductStatusActive       = "active"
	ProductStatusDiscontinued = "discontinued"
)

// Product 可售产品，关联作物并携带当前目录价。
// 定期订单生成时按当前 BasePrice 取价（价格不在模板创建时冻结）。
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID    string     `json:"tenant_id" gorm:"size:64;not null;index"`
	ProductCode string     `json:"product_code" gorm:"size:50;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	CropID      string     `json:"crop_id" gorm:"type:uuid;not null;index"`
	BasePrice   float64    `json:"base_price" gorm:"type:decimal(12,2);not null;default:0"`
	Unit        string     `json:"unit" gorm:"size:16;not null;default:oz"`
	Status      string     `json:"status" gorm:"size:16;not null;default:active"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`

	Crop *Crop `json:"crop,omitempty" gorm:"foreignKey:CropID"`
}

func (Product) TableName() string {
	return "farm_products"
}

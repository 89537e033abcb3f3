package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移全部业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 档案
		&Crop{},
		&Product{},
		&Customer{},

		// 订单
		&Order{},
		&OrderItem{},
		&StandingOrder{},
		&StandingOrderItem{},

		// 生产
		&ProductionBatch{},
		&HarvestRecord{},
		&Task{},

		// 单据号
		&Sequence{},
	)
}

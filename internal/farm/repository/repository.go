package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Crop          *CropRepository
	Product       *ProductRepository
	Customer      *CustomerRepository
	Order         *OrderRepository
	StandingOrder *StandingOrderRepository
	Batch         *BatchRepository
	Task          *TaskRepository
	Sequence      *SequenceRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Crop:          NewCropRepository(db),
		Product:       NewProductRepository(db),
		Customer:      NewCustomerRepository(db),
		Order:         NewOrderRepository(db),
		StandingOrder: NewStandingOrderRepository(db),
		Batch:         NewBatchRepository(db),
		Task:          NewTaskRepository(db),
		Sequence:      NewSequenceRepository(db),
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

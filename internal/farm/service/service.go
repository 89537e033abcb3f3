package service

import (
	"github.com/redis/go-redis/v9"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Crop          *CropService
	Product       *ProductService
	Customer      *CustomerService
	Order         *OrderService
	StandingOrder *StandingOrderService
	Batch         *BatchService
	Task          *TaskService
	Sowing        *SowingService
	Dashboard     *DashboardService
	TaskPlan      *TaskPlanService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client) *Services {
	taskPlan := NewTaskPlanService()
	orderSvc := NewOrderService(repos.Order, repos.Customer, repos.Crop, repos.Task, repos.Sequence, taskPlan, db)
	batchSvc := NewBatchService(repos.Batch, repos.Crop, repos.Sequence, taskPlan, db)
	return &Services{
		Crop:          NewCropService(repos.Crop, rdb),
		Product:       NewProductService(repos.Product, repos.Crop),
		Customer:      NewCustomerService(repos.Customer),
		Order:         orderSvc,
		StandingOrder: NewStandingOrderService(repos.StandingOrder, repos.Order, repos.Product, orderSvc),
		Batch:         batchSvc,
		Task:          NewTaskService(repos.Task),
		Sowing:        NewSowingService(repos.Order, repos.Crop, repos.Batch, batchSvc),
		Dashboard:     NewDashboardService(db),
		TaskPlan:      taskPlan,
	}
}

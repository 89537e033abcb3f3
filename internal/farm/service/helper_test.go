package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/repository"
	"github.com/xtiwix/farmflow/internal/farm/testutil"
	"gorm.io/gorm"
)

const (
	testTenant = testutil.TestTenantID
	testUser   = testutil.TestUserID
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos, db, nil), db
}

func seedCrop(t *testing.T, db *gorm.DB, crop entity.Crop) *entity.Crop {
	t.Helper()
	if crop.ID == "" {
		crop.ID = uuid.New().String()
	}
	if crop.TenantID == "" {
		crop.TenantID = testTenant
	}
	if crop.Category == "" {
		crop.Category = entity.CategoryMicrogreens
	}
	if crop.Status == "" {
		crop.Status = entity.CropStatusActive
	}
	if crop.Unit == "" {
		crop.Unit = "oz"
	}
	if crop.FlushCount == 0 {
		crop.FlushCount = 1
	}
	if err := db.Create(&crop).Error; err != nil {
		t.Fatalf("seed crop: %v", err)
	}
	return &crop
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) *entity.Customer {
	t.Helper()
	customer := entity.Customer{
		ID:           uuid.New().String(),
		TenantID:     testTenant,
		CustomerCode: "C-" + uuid.New().String()[:8],
		Name:         name,
		Type:         entity.CustomerTypeRestaurant,
		Address:      "12 Market St",
		Status:       entity.CustomerStatusActive,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return &customer
}

func seedProduct(t *testing.T, db *gorm.DB, cropID string, price float64) *entity.Product {
	t.Helper()
	product := entity.Product{
		ID:          uuid.New().String(),
		TenantID:    testTenant,
		ProductCode: "P-" + uuid.New().String()[:8],
		Name:        "Test Product",
		CropID:      cropID,
		BasePrice:   price,
		Unit:        "oz",
		Status:      entity.ProductStatusActive,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func countTasks(t *testing.T, db *gorm.DB, orderID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&entity.Task{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	return n
}

func countBatches(t *testing.T, db *gorm.DB, orderID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&entity.ProductionBatch{}).Where("order_id = ?", orderID).Count(&n).Error; err != nil {
		t.Fatalf("count batches: %v", err)
	}
	return n
}

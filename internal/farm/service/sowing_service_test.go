package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

func seedBatch(t *testing.T, db *gorm.DB, cropID string, sowDate time.Time, quantity int, status string) *entity.ProductionBatch {
	t.Helper()
	batch := entity.ProductionBatch{
		ID:                 uuid.New().String(),
		TenantID:           testTenant,
		BatchCode:          "BAT-MG-" + uuid.New().String()[:8],
		CropID:             cropID,
		ProductionType:     entity.ProductionTypeMicrogreensTray,
		PlannedSowDate:     sowDate,
		PlannedHarvestDate: calendar.AddDays(sowDate, 10),
		Quantity:           quantity,
		MaxFlushes:         1,
		Status:             status,
	}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return &batch
}

func createSowingOrder(t *testing.T, svc *Services, customerID, cropID, productID string, quantity float64, delivery string) *entity.Order {
	t.Helper()
	order, err := svc.Order.Create(context.Background(), testTenant, testUser, CreateOrderRequest{
		CustomerID: customerID,
		DateType:   entity.DateTypeHarvest,
		TargetDate: delivery,
		Items: []CreateOrderItem{
			{CropID: cropID, ProductID: productID, Quantity: quantity, UnitPrice: 2},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestSowingPlanDemandAndBuffer(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	// 生长 10 + 遮光 4 = 播种提前 14 天
	crop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	customer := seedCustomer(t, db, "Plan Cafe")
	product := seedProduct(t, db, crop.ID, 2)

	createSowingOrder(t, svc, customer.ID, crop.ID, product.ID, 30, "2024-06-20")
	createSowingOrder(t, svc, customer.ID, crop.ID, product.ID, 20, "2024-06-20")

	items, err := svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 15), calendar.Date(2024, time.June, 25), DefaultWasteBuffer, true)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("same crop and delivery date should aggregate into one line, got %d", len(items))
	}

	item := items[0]
	if item.DemandQuantity != 50 {
		t.Fatalf("expected aggregated demand 50, got %v", item.DemandQuantity)
	}
	// 50 × 1.1 = 55
	if item.RequiredQuantity != 55 {
		t.Fatalf("expected required 55 with 10%% buffer, got %v", item.RequiredQuantity)
	}
	// ceil(55 / 8) = 7
	if item.UnitsNeeded != 7 {
		t.Fatalf("expected 7 units, got %d", item.UnitsNeeded)
	}
	if !item.SowDate.Equal(calendar.Date(2024, time.June, 6)) {
		t.Fatalf("expected sow date 2024-06-06 (delivery - 14), got %v", item.SowDate)
	}
	if len(item.OrderNumbers) != 2 {
		t.Fatalf("expected both order numbers for traceability, got %v", item.OrderNumbers)
	}

	// 关闭缓冲后按原始需求折算
	items, err = svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 15), calendar.Date(2024, time.June, 25), DefaultWasteBuffer, false)
	if err != nil {
		t.Fatalf("plan without buffer: %v", err)
	}
	if items[0].RequiredQuantity != 50 {
		t.Fatalf("expected raw demand 50 without buffer, got %v", items[0].RequiredQuantity)
	}
}

func TestSowingPlanNetsScheduledUnits(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedCrop(t, db, entity.Crop{Name: "Pea Shoots", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	customer := seedCustomer(t, db, "Netting Cafe")
	product := seedProduct(t, db, crop.ID, 2)

	createSowingOrder(t, svc, customer.ID, crop.ID, product.ID, 50, "2024-06-20")

	sowDate := calendar.Date(2024, time.June, 6)
	seedBatch(t, db, crop.ID, sowDate, 4, entity.BatchStatusPlanned)
	seedBatch(t, db, crop.ID, sowDate, 4, entity.BatchStatusGrowing)
	// 终态批次不算在排产能
	seedBatch(t, db, crop.ID, sowDate, 4, entity.BatchStatusCancelled)

	items, err := svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 15), calendar.Date(2024, time.June, 25), DefaultWasteBuffer, true)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 plan line, got %d", len(items))
	}
	if items[0].ExistingBatches != 2 {
		t.Fatalf("expected 2 existing batches (cancelled excluded), got %d", items[0].ExistingBatches)
	}
	// 7 需求 − 2 在排 = 5
	if items[0].AdditionalUnitsNeeded != 5 {
		t.Fatalf("expected 5 additional units, got %d", items[0].AdditionalUnitsNeeded)
	}
}

func TestSowingPlanOversupplyClampsToZero(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedCrop(t, db, entity.Crop{Name: "Radish", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	customer := seedCustomer(t, db, "Oversupply Cafe")
	product := seedProduct(t, db, crop.ID, 2)

	// ceil(8 × 1.1 / 8) = 2 需求，3 个在排批次
	createSowingOrder(t, svc, customer.ID, crop.ID, product.ID, 8, "2024-06-20")
	for i := 0; i < 3; i++ {
		seedBatch(t, db, crop.ID, calendar.Date(2024, time.June, 6), 1, entity.BatchStatusGrowing)
	}

	items, err := svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 15), calendar.Date(2024, time.June, 25), DefaultWasteBuffer, true)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if items[0].AdditionalUnitsNeeded != 0 {
		t.Fatalf("oversupply must clamp to zero, got %d", items[0].AdditionalUnitsNeeded)
	}
}

func TestSowingPlanOrdering(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	// 同一配送日、同一生长周期，播种日相同，按作物名排序
	basil := seedCrop(t, db, entity.Crop{Name: "Basil", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	arugula := seedCrop(t, db, entity.Crop{Name: "Arugula", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	customer := seedCustomer(t, db, "Order Cafe")
	basilProduct := seedProduct(t, db, basil.ID, 2)
	arugulaProduct := seedProduct(t, db, arugula.ID, 2)

	createSowingOrder(t, svc, customer.ID, basil.ID, basilProduct.ID, 10, "2024-06-22")
	createSowingOrder(t, svc, customer.ID, arugula.ID, arugulaProduct.ID, 10, "2024-06-22")
	// 更早的配送日排在最前
	createSowingOrder(t, svc, customer.ID, basil.ID, basilProduct.ID, 10, "2024-06-20")

	items, err := svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 15), calendar.Date(2024, time.June, 25), DefaultWasteBuffer, true)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 plan lines, got %d", len(items))
	}
	if !items[0].SowDate.Equal(calendar.Date(2024, time.June, 6)) {
		t.Fatalf("earliest sow date should come first, got %v", items[0].SowDate)
	}
	if items[1].CropName != "Arugula" || items[2].CropName != "Basil" {
		t.Fatalf("same sow date should sort by crop name, got %s then %s", items[1].CropName, items[2].CropName)
	}
}

func TestSowingPlanValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 25), calendar.Date(2024, time.June, 15), DefaultWasteBuffer, true)
	if err == nil {
		t.Fatal("end before start should be rejected")
	}
	_, err = svc.Sowing.Plan(ctx, testTenant, calendar.Date(2024, time.June, 15), calendar.Date(2024, time.June, 25), -0.1, true)
	if err == nil {
		t.Fatal("negative waste buffer should be rejected")
	}
}

func TestSowingMaterialize(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8, SeedRate: 125})

	batches, err := svc.Sowing.Materialize(ctx, testTenant, testUser, []MaterializePlanItem{
		{CropID: crop.ID, SowDate: "2024-06-06", Units: 4},
		{CropID: crop.ID, SowDate: "2024-06-07", Units: 0}, // 无缺口的行跳过
	}, "greenhouse-1")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch (zero-unit line skipped), got %d", len(batches))
	}

	batch := batches[0]
	if batch.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", batch.Quantity)
	}
	if !batch.PlannedSowDate.Equal(calendar.Date(2024, time.June, 6)) {
		t.Fatalf("expected sow date 2024-06-06, got %v", batch.PlannedSowDate)
	}
	if batch.ProductionType != entity.ProductionTypeMicrogreensTray {
		t.Fatalf("expected microgreens tray production, got %s", batch.ProductionType)
	}
	if batch.LocationID != "greenhouse-1" {
		t.Fatalf("expected location carried through, got %s", batch.LocationID)
	}

	// 物化出的批次连带生成栽培任务
	var taskCount int64
	if err := db.Model(&entity.Task{}).Where("batch_id = ?", batch.ID).Count(&taskCount).Error; err != nil {
		t.Fatalf("count batch tasks: %v", err)
	}
	if taskCount == 0 {
		t.Fatal("materialized batch should carry generated tasks")
	}
}

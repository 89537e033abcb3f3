package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

func seedMushroomCrop(t *testing.T, db *gorm.DB) *entity.Crop {
	t.Helper()
	return seedCrop(t, db, entity.Crop{
		Name:         "Blue Oyster",
		Category:     entity.CategoryMushrooms,
		GrowthDays:   14,
		YieldPerUnit: 2.5,
		FlushCount:   3,
		Unit:         "lb",
	})
}

func TestBatchCreateMicrogreens(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, SoakHours: 8, YieldPerUnit: 8, SeedRate: 125})

	batch, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{
		CropID:   crop.ID,
		SowDate:  "2024-06-10",
		Quantity: 7,
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	if !strings.HasPrefix(batch.BatchCode, "BAT-MG-20240610-") {
		t.Fatalf("unexpected batch code %s", batch.BatchCode)
	}
	if batch.ProductionType != entity.ProductionTypeMicrogreensTray {
		t.Fatalf("expected microgreens tray derived from category, got %s", batch.ProductionType)
	}
	if !batch.PlannedHarvestDate.Equal(calendar.Date(2024, time.June, 20)) {
		t.Fatalf("expected planned harvest sow+10 = 2024-06-20, got %v", batch.PlannedHarvestDate)
	}
	if batch.ExpectedYield != 56 {
		t.Fatalf("expected yield 7x8 = 56, got %v", batch.ExpectedYield)
	}
	if batch.MaxFlushes != 1 {
		t.Fatalf("microgreens should have a single flush, got %d", batch.MaxFlushes)
	}

	// 浸种 + 播种 + 见光 + 采收
	var taskCount int64
	if err := db.Model(&entity.Task{}).Where("batch_id = ?", batch.ID).Count(&taskCount).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if taskCount != 4 {
		t.Fatalf("expected 4 template tasks, got %d", taskCount)
	}
}

func TestBatchCreateMushroom(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedMushroomCrop(t, db)

	batch, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{
		CropID:   crop.ID,
		SowDate:  "2024-06-01",
		Quantity: 4,
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	if !strings.HasPrefix(batch.BatchCode, "BAT-MU-20240601-") {
		t.Fatalf("unexpected batch code %s", batch.BatchCode)
	}
	if batch.ProductionType != entity.ProductionTypeMushroomInHouse {
		t.Fatalf("expected in-house mushroom production, got %s", batch.ProductionType)
	}
	if batch.MaxFlushes != 3 {
		t.Fatalf("expected max flushes from crop flush count, got %d", batch.MaxFlushes)
	}
}

func TestBatchCreateValidation(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedCrop(t, db, entity.Crop{Name: "Radish", GrowthDays: 7, YieldPerUnit: 8})

	if _, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: crop.ID, SowDate: "06/10/2024", Quantity: 1}); err == nil {
		t.Fatal("non-ISO sow date should be rejected")
	}
	if _, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: crop.ID, SowDate: "2024-06-10", Quantity: 0}); err == nil {
		t.Fatal("zero quantity should be rejected")
	}
	if _, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: crop.ID, SowDate: "2024-06-10", Quantity: 1, ProductionType: "hydroponic"}); err == nil {
		t.Fatal("unknown production type should be rejected")
	}
	if _, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: "missing", SowDate: "2024-06-10", Quantity: 1}); err == nil {
		t.Fatal("unknown crop should be rejected")
	}
}

func TestBatchStatusTransitions(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	crop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	batch, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: crop.ID, SowDate: "2024-06-10", Quantity: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 不能跳过中间状态
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, batch.ID, entity.BatchStatusHarvested); err == nil {
		t.Fatal("planned cannot jump to harvested")
	}

	for _, status := range []string{
		entity.BatchStatusSoaking,
		entity.BatchStatusPlanted,
		entity.BatchStatusBlackout,
		entity.BatchStatusGrowing,
		entity.BatchStatusReadyToHarvest,
	} {
		if _, err := svc.Batch.UpdateStatus(ctx, testTenant, batch.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	// 任意非终态可废弃
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, batch.ID, entity.BatchStatusDisposed); err != nil {
		t.Fatalf("dispose from ready_to_harvest: %v", err)
	}
	// 终态不可再流转
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, batch.ID, entity.BatchStatusCancelled); err == nil {
		t.Fatal("disposed is terminal and must reject further transitions")
	}
}

func TestBatchTransitionsFollowProductionType(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	greensCrop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	greens, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: greensCrop.ID, SowDate: "2024-06-10", Quantity: 2})
	if err != nil {
		t.Fatalf("create microgreens batch: %v", err)
	}
	mushroom, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: seedMushroomCrop(t, db).ID, SowDate: "2024-06-01", Quantity: 4})
	if err != nil {
		t.Fatalf("create mushroom batch: %v", err)
	}

	// 微绿批次不能走菌菇路径，反之亦然
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, greens.ID, entity.BatchStatusInoculated); err == nil {
		t.Fatal("microgreens batch must not enter the mushroom path")
	}
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, mushroom.ID, entity.BatchStatusSoaking); err == nil {
		t.Fatal("mushroom batch must not enter the microgreens path")
	}

	// 各自的首步照常放行
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, greens.ID, entity.BatchStatusSoaking); err != nil {
		t.Fatalf("microgreens planned to soaking: %v", err)
	}
	if _, err := svc.Batch.UpdateStatus(ctx, testTenant, mushroom.ID, entity.BatchStatusInoculated); err != nil {
		t.Fatalf("mushroom planned to inoculated: %v", err)
	}
}

func TestBatchRecordHarvestMicrogreens(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)

	crop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	batch, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: crop.ID, SowDate: "2024-06-10", Quantity: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 未到可采收状态时拒绝
	if _, err := svc.Batch.RecordHarvest(ctx, testTenant, testUser, batch.ID, RecordHarvestRequest{Quantity: 10}, now); err == nil {
		t.Fatal("harvest from planned should be rejected")
	}

	for _, status := range []string{
		entity.BatchStatusSoaking, entity.BatchStatusPlanted, entity.BatchStatusBlackout,
		entity.BatchStatusGrowing, entity.BatchStatusReadyToHarvest,
	} {
		if _, err := svc.Batch.UpdateStatus(ctx, testTenant, batch.ID, status); err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
	}

	got, err := svc.Batch.RecordHarvest(ctx, testTenant, testUser, batch.ID, RecordHarvestRequest{Quantity: 14.5}, now)
	if err != nil {
		t.Fatalf("record harvest: %v", err)
	}
	if got.Status != entity.BatchStatusHarvested {
		t.Fatalf("microgreens harvest should finish the batch, got %s", got.Status)
	}
	if got.ActualYield != 14.5 {
		t.Fatalf("expected actual yield 14.5, got %v", got.ActualYield)
	}

	var record entity.HarvestRecord
	if err := db.Where("batch_id = ?", batch.ID).First(&record).Error; err != nil {
		t.Fatalf("load harvest record: %v", err)
	}
	if record.Flush != 1 || record.Quantity != 14.5 || record.HarvestedBy != testUser {
		t.Fatalf("unexpected harvest record: %+v", record)
	}
}

func TestBatchRecordHarvestMushroomFlushes(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	crop := seedMushroomCrop(t, db)
	batch, err := svc.Batch.Create(ctx, testTenant, testUser, CreateBatchRequest{CropID: crop.ID, SowDate: "2024-06-01", Quantity: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []string{
		entity.BatchStatusInoculated, entity.BatchStatusIncubating, entity.BatchStatusFruiting,
	} {
		if _, err := svc.Batch.UpdateStatus(ctx, testTenant, batch.ID, status); err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
	}

	// 前两潮采收后回到 fruiting 等下一潮
	for flush := 1; flush <= 2; flush++ {
		got, err := svc.Batch.RecordHarvest(ctx, testTenant, testUser, batch.ID, RecordHarvestRequest{Quantity: 3}, now)
		if err != nil {
			t.Fatalf("flush %d: %v", flush, err)
		}
		if got.Status != entity.BatchStatusFruiting {
			t.Fatalf("flush %d should return to fruiting, got %s", flush, got.Status)
		}
		if got.CurrentFlush != flush {
			t.Fatalf("expected current flush %d, got %d", flush, got.CurrentFlush)
		}
	}

	// 末潮收尾
	got, err := svc.Batch.RecordHarvest(ctx, testTenant, testUser, batch.ID, RecordHarvestRequest{Quantity: 2}, now)
	if err != nil {
		t.Fatalf("final flush: %v", err)
	}
	if got.Status != entity.BatchStatusHarvested {
		t.Fatalf("final flush should finish the batch, got %s", got.Status)
	}
	if got.ActualYield != 8 {
		t.Fatalf("expected accumulated yield 3+3+2 = 8, got %v", got.ActualYield)
	}

	var records []entity.HarvestRecord
	if err := db.Where("batch_id = ?", batch.ID).Order("flush ASC").Find(&records).Error; err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 harvest records, got %d", len(records))
	}
	for i, r := range records {
		if r.Flush != i+1 {
			t.Fatalf("expected flush %d, got %d", i+1, r.Flush)
		}
		if r.Unit != "lb" {
			t.Fatalf("harvest unit should follow the crop, got %s", r.Unit)
		}
	}

	// 收完所有潮次后不可再采收
	if _, err := svc.Batch.RecordHarvest(ctx, testTenant, testUser, batch.ID, RecordHarvestRequest{Quantity: 1}, now); err == nil {
		t.Fatal("harvested batch must reject further harvests")
	}
}

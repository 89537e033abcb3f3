package service

import (
	"context"
	"testing"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
)

func TestDashboardTaskSummary(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	today := calendar.Date(2024, time.June, 20)
	now := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)

	mk := func(title, due string) *entity.Task {
		task, err := svc.Task.Create(ctx, testTenant, testUser, CreateTaskRequest{
			Type: entity.TaskTypeCustom, Title: title, DueDate: due,
		})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		return task
	}

	done := mk("done today", "2024-06-20")
	mk("pending today", "2024-06-20")
	mk("overdue yesterday", "2024-06-19")
	mk("upcoming", "2024-06-24")
	mk("too far out", "2024-06-28")

	if _, err := svc.Task.Complete(ctx, testTenant, testUser, done.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	summary, err := svc.Dashboard.GetTaskSummary(ctx, testTenant, today)
	if err != nil {
		t.Fatalf("task summary: %v", err)
	}
	if summary.TotalDue != 2 || summary.Completed != 1 || summary.Pending != 1 {
		t.Fatalf("unexpected day counts: %+v", summary)
	}
	if summary.Overdue != 1 {
		t.Fatalf("expected 1 overdue, got %d", summary.Overdue)
	}
	// 未来 7 天含 06-24 与 06-28 均为 06-20 之后 7 天内
	if summary.UpcomingWeek != 2 {
		t.Fatalf("expected 2 upcoming tasks, got %d", summary.UpcomingWeek)
	}
	if summary.ByType[entity.TaskTypeCustom] != 2 {
		t.Fatalf("expected 2 custom tasks today, got %d", summary.ByType[entity.TaskTypeCustom])
	}
}

func TestDashboardProductionSummary(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	// 2024-06-20 所在周：06-17 至 06-23
	today := calendar.Date(2024, time.June, 20)

	crop := seedCrop(t, db, entity.Crop{Name: "Sunflower", GrowthDays: 10, BlackoutDays: 4, YieldPerUnit: 8})
	customer := seedCustomer(t, db, "Dash Cafe")
	product := seedProduct(t, db, crop.ID, 2)

	// 本周采收的在产批次 + 一个已取消批次
	seedBatch(t, db, crop.ID, calendar.Date(2024, time.June, 11), 3, entity.BatchStatusGrowing)
	seedBatch(t, db, crop.ID, calendar.Date(2024, time.June, 11), 2, entity.BatchStatusCancelled)

	// 本周配送订单（目标采收 06-21，提前 0 天）
	order := createSowingOrder(t, svc, customer.ID, crop.ID, product.ID, 50, "2024-06-21")

	summary, err := svc.Dashboard.GetProductionSummary(ctx, testTenant, today)
	if err != nil {
		t.Fatalf("production summary: %v", err)
	}
	// 订单自身也生成一个批次
	if summary.ActiveBatches != 2 {
		t.Fatalf("expected 2 active batches (cancelled excluded), got %d", summary.ActiveBatches)
	}
	if summary.BatchesByStatus[entity.BatchStatusCancelled] != 1 {
		t.Fatalf("expected cancelled batch in breakdown, got %+v", summary.BatchesByStatus)
	}
	if summary.HarvestsThisWeek != 2 {
		t.Fatalf("expected 2 planned harvests this week, got %d", summary.HarvestsThisWeek)
	}
	if summary.OpenOrders != 1 || summary.OrdersThisWeek != 1 {
		t.Fatalf("unexpected order counts: %+v", summary)
	}
	if summary.WeekRevenue != order.TotalAmount {
		t.Fatalf("expected week revenue %v, got %v", order.TotalAmount, summary.WeekRevenue)
	}
	// 订单批次 7 托 × 8 oz；手工种下的批次未填预计产量，取消批次不计
	if summary.WeekExpectedYield != 56 {
		t.Fatalf("expected week expected yield 56, got %v", summary.WeekExpectedYield)
	}
	if summary.WeekActualYield != 0 {
		t.Fatalf("nothing harvested yet, got actual yield %v", summary.WeekActualYield)
	}
}

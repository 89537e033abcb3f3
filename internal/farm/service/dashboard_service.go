package service

import (
	"context"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/calendar"
	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// DashboardService 看板服务
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService 创建看板服务
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// TaskSummary 任务看板（指定日期）
type TaskSummary struct {
	Date         string         `json:"date"`
	TotalDue     int            `json:"total_due"`
	Completed    int            `json:"completed"`
	Pending      int            `json:"pending"`
	Overdue      int            `json:"overdue"`
	ByType       map[string]int `json:"by_type"`
	UpcomingWeek int            `json:"upcoming_week"`
}

// GetTaskSummary 统计指定日期的任务情况：当日到期、完成、逾期未完成与一周内待办
func (s *DashboardService) GetTaskSummary(ctx context.Context, tenantID string, forDate time.Time) (*TaskSummary, error) {
	day := calendar.DateOnly(forDate)
	summary := &TaskSummary{
		Date:   calendar.FormatISO(day),
		ByType: make(map[string]int),
	}

	type typeCount struct {
		Type   string
		Status string
		Count  int
	}
	var rows []typeCount
	err := s.db.WithContext(ctx).Model(&entity.Task{}).
		Select("type, status, COUNT(*) as count").
		Where("tenant_id = ? AND deleted_at IS NULL AND due_date = ?", tenantID, day).
		Group("type, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary.TotalDue += row.Count
		summary.ByType[row.Type] += row.Count
		switch row.Status {
		case entity.TaskStatusCompleted:
			summary.Completed += row.Count
		case entity.TaskStatusPending, entity.TaskStatusInProgress:
			summary.Pending += row.Count
		}
	}

	var overdue int64
	err = s.db.WithContext(ctx).Model(&entity.Task{}).
		Where("tenant_id = ? AND deleted_at IS NULL AND due_date < ?", tenantID, day).
		Where("status IN ?", []string{entity.TaskStatusPending, entity.TaskStatusInProgress}).
		Count(&overdue).Error
	if err != nil {
		return nil, err
	}
	summary.Overdue = int(overdue)

	var upcoming int64
	err = s.db.WithContext(ctx).Model(&entity.Task{}).
		Where("tenant_id = ? AND deleted_at IS NULL AND due_date > ? AND due_date <= ?",
			tenantID, day, calendar.AddDays(day, 7)).
		Where("status IN ?", []string{entity.TaskStatusPending, entity.TaskStatusInProgress}).
		Count(&upcoming).Error
	if err != nil {
		return nil, err
	}
	summary.UpcomingWeek = int(upcoming)

	return summary, nil
}

// ProductionSummary 生产看板
type ProductionSummary struct {
	ActiveBatches     int            `json:"active_batches"`
	BatchesByStatus   map[string]int `json:"batches_by_status"`
	HarvestsThisWeek  int            `json:"harvests_this_week"`
	WeekExpectedYield float64        `json:"week_expected_yield"`
	WeekActualYield   float64        `json:"week_actual_yield"`
	OpenOrders        int            `json:"open_orders"`
	OrdersThisWeek    int            `json:"orders_this_week"`
	WeekRevenue       float64        `json:"week_revenue"`
}

// GetProductionSummary 统计在产批次、本周采收与本周订单
func (s *DashboardService) GetProductionSummary(ctx context.Context, tenantID string, forDate time.Time) (*ProductionSummary, error) {
	weekStart, weekEnd := calendar.WeekBounds(forDate)
	summary := &ProductionSummary{
		BatchesByStatus: make(map[string]int),
	}

	type statusCount struct {
		Status string
		Count  int
	}
	var rows []statusCount
	err := s.db.WithContext(ctx).Model(&entity.ProductionBatch{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	terminal := make(map[string]bool, len(entity.BatchTerminalStatuses))
	for _, st := range entity.BatchTerminalStatuses {
		terminal[st] = true
	}
	for _, row := range rows {
		summary.BatchesByStatus[row.Status] = row.Count
		if !terminal[row.Status] {
			summary.ActiveBatches += row.Count
		}
	}

	var harvests int64
	err = s.db.WithContext(ctx).Model(&entity.ProductionBatch{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("planned_harvest_date >= ? AND planned_harvest_date <= ?", weekStart, weekEnd).
		Where("status NOT IN ?", entity.BatchTerminalStatuses).
		Count(&harvests).Error
	if err != nil {
		return nil, err
	}
	summary.HarvestsThisWeek = int(harvests)

	// 本周计划产量与实收对照。harvested 保留在内，废弃/取消不计。
	type yieldAgg struct {
		Expected float64
		Actual   float64
	}
	var yields yieldAgg
	err = s.db.WithContext(ctx).Model(&entity.ProductionBatch{}).
		Select("COALESCE(SUM(expected_yield), 0) as expected, COALESCE(SUM(actual_yield), 0) as actual").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("planned_harvest_date >= ? AND planned_harvest_date <= ?", weekStart, weekEnd).
		Where("status NOT IN ?", []string{entity.BatchStatusDisposed, entity.BatchStatusCancelled}).
		Scan(&yields).Error
	if err != nil {
		return nil, err
	}
	summary.WeekExpectedYield = yields.Expected
	summary.WeekActualYield = yields.Actual

	var openOrders int64
	err = s.db.WithContext(ctx).Model(&entity.Order{}).
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("status IN ?", []string{entity.OrderStatusPending, entity.OrderStatusConfirmed}).
		Count(&openOrders).Error
	if err != nil {
		return nil, err
	}
	summary.OpenOrders = int(openOrders)

	type weekAgg struct {
		Count   int
		Revenue float64
	}
	var agg weekAgg
	err = s.db.WithContext(ctx).Model(&entity.Order{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as revenue").
		Where("tenant_id = ? AND deleted_at IS NULL", tenantID).
		Where("delivery_date >= ? AND delivery_date <= ?", weekStart, weekEnd).
		Where("status <> ?", entity.OrderStatusCancelled).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	summary.OrdersThisWeek = agg.Count
	summary.WeekRevenue = agg.Revenue

	return summary, nil
}

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"github.com/xtiwix/farmflow/internal/farm/testutil"
	"gorm.io/gorm"
)

func TestSequenceNumbersIncrementPerScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)
	date := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	err := db.Transaction(func(tx *gorm.DB) error {
		first, err := repo.NextOrderNumber(tx, testutil.TestTenantID, date)
		if err != nil {
			return err
		}
		if first != "ORD-20240620-0001" {
			t.Fatalf("expected first order number 0001, got %s", first)
		}
		second, err := repo.NextOrderNumber(tx, testutil.TestTenantID, date)
		if err != nil {
			return err
		}
		if second != "ORD-20240620-0002" {
			t.Fatalf("expected second order number 0002, got %s", second)
		}

		// 批次号走独立计数器，不与订单号串号
		batch, err := repo.NextBatchCode(tx, testutil.TestTenantID, entity.ProductionTypeMicrogreensTray, date)
		if err != nil {
			return err
		}
		if batch != "BAT-MG-20240620-0001" {
			t.Fatalf("expected batch counter to start at 0001, got %s", batch)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("first transaction: %v", err)
	}

	// 跨事务继续递增
	err = db.Transaction(func(tx *gorm.DB) error {
		third, err := repo.NextOrderNumber(tx, testutil.TestTenantID, date)
		if err != nil {
			return err
		}
		if third != "ORD-20240620-0003" {
			t.Fatalf("expected counter to survive commit, got %s", third)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("second transaction: %v", err)
	}
}

func TestSequenceConflictAfterBoundedRetries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)

	// 已有计数器行，但用触发器吞掉 UPDATE：自增永远报 0 行，
	// 首插永远撞唯一索引，模拟持续竞争直至重试耗尽。
	seed := entity.Sequence{TenantID: testutil.TestTenantID, Scope: SeqScopeOrder, Day: "20240620", Value: 7}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed counter row: %v", err)
	}
	if err := db.Exec(`CREATE TRIGGER seq_update_skip BEFORE UPDATE ON farm_sequences
BEGIN SELECT RAISE(IGNORE); END`).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.NextOrderNumber(tx, testutil.TestTenantID, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
		return err
	})
	if !errors.Is(err, ErrSequenceConflict) {
		t.Fatalf("expected ErrSequenceConflict after retries exhausted, got %v", err)
	}
}

func TestSequenceInsertErrorNotMaskedAsConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)

	// 非唯一索引类的插入错误必须原样上抛，不得伪装成序号冲突
	if err := db.Exec(`CREATE TRIGGER seq_insert_guard BEFORE INSERT ON farm_sequences
BEGIN SELECT RAISE(ABORT, 'insert blocked'); END`).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.NextOrderNumber(tx, testutil.TestTenantID, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
		return err
	})
	if err == nil {
		t.Fatal("blocked insert should surface an error")
	}
	if errors.Is(err, ErrSequenceConflict) {
		t.Fatalf("real database error must not be reported as a sequence conflict: %v", err)
	}
}

package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/xtiwix/farmflow/internal/farm/entity"
	"gorm.io/gorm"
)

// 编号作用域
const (
	SeqScopeOrder = "order"
	SeqScopeBatch = "batch"
)

// ErrSequenceConflict 计数器竞争在有限重试内未解决
var ErrSequenceConflict = errors.New("sequence conflict")

const seqMaxRetries = 3

// SequenceRepository 单据号生成器。计数器行按 (租户, 作用域, 日期) 唯一，
// 事务内 UPDATE 自增对行加锁，首次插入撞唯一索引时做有限重试。
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository 创建单据号生成器
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// next 在调用方事务内取下一个序号。
// 首插撞唯一索引会让 Postgres 把整个外层事务置为 aborted，后续语句全部报错，
// 所以插入前先设保存点，撞索引时回滚到保存点再重试自增。
func (r *SequenceRepository) next(tx *gorm.DB, tenantID, scope, day string) (int64, error) {
	for attempt := 0; attempt < seqMaxRetries; attempt++ {
		res := tx.Model(&entity.Sequence{}).
			Where("tenant_id = ? AND scope = ? AND day = ?", tenantID, scope, day).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected > 0 {
			var seq entity.Sequence
			if err := tx.Where("tenant_id = ? AND scope = ? AND day = ?", tenantID, scope, day).
				First(&seq).Error; err != nil {
				return 0, err
			}
			return seq.Value, nil
		}

		// 行不存在：插入初始值
		sp := fmt.Sprintf("seq_next_%d", attempt)
		if err := tx.SavePoint(sp).Error; err != nil {
			return 0, err
		}
		seq := entity.Sequence{TenantID: tenantID, Scope: scope, Day: day, Value: 1}
		err := tx.Create(&seq).Error
		if err == nil {
			return 1, nil
		}
		// 只有并发首插的唯一索引冲突才重试，其余数据库错误原样上抛
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, err
		}
		if err := tx.RollbackTo(sp).Error; err != nil {
			return 0, err
		}
	}
	return 0, ErrSequenceConflict
}

// NextOrderNumber 生成订单号 ORD-yyyyMMdd-0001
func (r *SequenceRepository) NextOrderNumber(tx *gorm.DB, tenantID string, date time.Time) (string, error) {
	day := date.Format("20060102")
	n, err := r.next(tx, tenantID, SeqScopeOrder, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", day, n), nil
}

// NextBatchCode 生成批次号 BAT-MG-yyyyMMdd-0001 / BAT-MU-yyyyMMdd-0001
func (r *SequenceRepository) NextBatchCode(tx *gorm.DB, tenantID, productionType string, date time.Time) (string, error) {
	day := date.Format("20060102")
	prefix := "MG"
	if productionType == entity.ProductionTypeMushroomInHouse || productionType == entity.ProductionTypeMushroomReadyFruit {
		prefix = "MU"
	}
	n, err := r.next(tx, tenantID, SeqScopeBatch+":"+prefix, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BAT-%s-%s-%04d", prefix, day, n), nil
}

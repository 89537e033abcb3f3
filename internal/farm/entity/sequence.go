package entity

// Sequence 单据号计数器，按 (租户, 作用域, 日期) 一行。
// 编号生成在事务内对该行做原子自增，配合唯一索引保证并发下不重号。
type Sequence struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID string `json:"tenant_id" gorm:"size:64;not null;uniqueIndex:uidx_seq_scope"`
	Scope    string `json:"scope" gorm:"size:32;not null;uniqueIndex:uidx_seq_scope"`
	Day      string `json:"day" gorm:"size:10;not null;uniqueIndex:uidx_seq_scope"`
	Value    int64  `json:"value" gorm:"not null;default:0"`
}

func (Sequence) TableName() string {
	return "farm_sequences"
}

package service

import (
	"errors"
	"fmt"
)

// 业务错误分类：校验错误在任何写入前拒绝；冲突错误为重号/重复生成等
// 定性冲突；展开错误使整个订单创建回滚，不留半套任务。
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// ExpansionError 订单项任务展开失败（作物引用无法解析等），
// 指明出错的明细项，整个创建事务回滚。
type ExpansionError struct {
	CropID string
	ItemID string
	Reason error
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("task expansion failed for item %s (crop %s): %v", e.ItemID, e.CropID, e.Reason)
}

func (e *ExpansionError) Unwrap() error {
	return e.Reason
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

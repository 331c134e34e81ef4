package schematic

import "errors"

// 字段类型与取值相关错误
var (
	ErrUnknownFieldType  = errors.New("未知的字段类型")
	ErrTypeMismatch      = errors.New("字段值类型不匹配")
	ErrValueTooLarge     = errors.New("字段值超过长度上限")
	ErrInvalidFilter     = errors.New("无效的过滤条件")
	ErrInvalidSortOrder  = errors.New("无效的排序方向")
	ErrInvalidPermission = errors.New("无效的权限取值")
)

// 字段生命周期错误
var (
	ErrColumnIDInvalid           = errors.New("字段ID不合法")
	ErrColumnIDReused            = errors.New("字段ID曾被使用")
	ErrColumnIDExists            = errors.New("字段ID已存在")
	ErrTooManyColumns            = errors.New("有效字段数量已达上限")
	ErrTooManyColumnsEverCreated = errors.New("累计创建字段数量已达上限")
	ErrMissingReferencedSchema   = errors.New("引用的表不存在")
	ErrColumnNotFound            = errors.New("字段不存在")
	ErrSystemFieldImmutable      = errors.New("系统字段不可修改")
	ErrInvalidIdentifier         = errors.New("名称不合法")
)

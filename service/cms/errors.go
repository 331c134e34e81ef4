package cms

import "errors"

// 动态表服务错误
var (
	ErrSchemaNotFound         = errors.New("表不存在")
	ErrSchemaExists           = errors.New("表名已存在")
	ErrInvalidStore           = errors.New("不支持的存储方式")
	ErrRowNotFound            = errors.New("数据行不存在")
	ErrTagNotFound            = errors.New("标签不存在")
	ErrConcurrentModification = errors.New("表定义已被其他请求修改，请重试")
	ErrImportLengthMismatch   = errors.New("导入的各列长度不一致")
	ErrAddonStoreReadOnly     = errors.New("插件存储的表不支持该操作")
	ErrAddonUnavailable       = errors.New("插件数据服务不可用")
)

/*
 * @module service/schematic/field_type
 * @description 字段类型注册表，定义CMS动态表支持的全部字段类型及其存储分区、长度上限、显示名称
 * @architecture 领域模型层 - 类型系统
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 字段类型 -> 分区列名 -> 值解析/序列化
 * @rules 类型集合封闭，每种类型唯一对应一个分区列；JSON以类型名编码，数据库以序号编码
 * @dependencies encoding/json
 * @refs service/schematic/value.go, service/models/schema_data.go
 */

package schematic

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// FieldType 字段类型
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldURL
	FieldEmail
	FieldAddress
	FieldPhone
	FieldBoolean
	FieldDateTime
	FieldDate
	FieldTime
	FieldRichContent
	FieldRichText
	FieldReference
	FieldMultiReference
	FieldMediaGallery
	FieldDocument
	FieldMultiDocument
	FieldImage
	FieldVideo
	FieldAudio
	FieldTags
	FieldArray
	FieldObject
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

type fieldTypeInfo struct {
	name        string
	displayName string
	partition   string
	maxBytes    int // 0 表示不限制
	upload      bool
}

var fieldTypeTable = [...]fieldTypeInfo{
	FieldText:           {"Text", "Text", "field_text", gib, false},
	FieldNumber:         {"Number", "Number", "field_number", 10, false},
	FieldURL:            {"URL", "URL", "field_url", kib, false},
	FieldEmail:          {"Email", "Email", "field_email", 100, false},
	FieldAddress:        {"Address", "Address", "field_address", kib, false},
	FieldPhone:          {"Phone", "Phone", "field_phone", 50, false},
	FieldBoolean:        {"Boolean", "True/False", "field_bool", 1, false},
	FieldDateTime:       {"DateTime", "Date & Time", "field_datetime", 50, false},
	FieldDate:           {"Date", "Date", "field_date", 50, false},
	FieldTime:           {"Time", "Time", "field_time", 50, false},
	FieldRichContent:    {"RichContent", "Rich Content", "field_rich_content", 10 * mib, false},
	FieldRichText:       {"RichText", "Rich Text", "field_rich_text", 10 * mib, false},
	FieldReference:      {"Reference", "Reference", "field_reference", 0, false},
	FieldMultiReference: {"MultiReference", "Multi Reference", "field_multi_reference", 0, false},
	FieldMediaGallery:   {"MediaGallery", "Media Gallery", "field_gallery", 100 * mib, false},
	FieldDocument:       {"Document", "Document", "field_document", 100 * mib, true},
	FieldMultiDocument:  {"MultiDocument", "Multi Document", "field_multi_document", 100 * mib, true},
	FieldImage:          {"Image", "Image", "field_image", 100 * mib, true},
	FieldVideo:          {"Video", "Video", "field_video", 100 * mib, true},
	FieldAudio:          {"Audio", "Audio", "field_audio", 100 * mib, true},
	FieldTags:           {"Tags", "Tags", "field_tags", 0, false},
	FieldArray:          {"Array", "Array", "field_array", 0, false},
	FieldObject:         {"Object", "Object", "field_object", 0, false},
}

// AllFieldTypes 返回全部字段类型，按序号排列
func AllFieldTypes() []FieldType {
	types := make([]FieldType, len(fieldTypeTable))
	for i := range fieldTypeTable {
		types[i] = FieldType(i)
	}
	return types
}

// IsValid 判断字段类型是否在注册表中
func (t FieldType) IsValid() bool {
	return t >= 0 && int(t) < len(fieldTypeTable)
}

func (t FieldType) info() fieldTypeInfo {
	if !t.IsValid() {
		return fieldTypeInfo{name: fmt.Sprintf("FieldType(%d)", int(t))}
	}
	return fieldTypeTable[t]
}

// String 返回类型名
func (t FieldType) String() string {
	return t.info().name
}

// DisplayName 返回面向用户的显示名称
func (t FieldType) DisplayName() string {
	return t.info().displayName
}

// PartitionName 返回该类型对应的分区列名
func (t FieldType) PartitionName() string {
	return t.info().partition
}

// MaxBytesLength 返回原始导入值的字节上限，第二个返回值为 false 表示不限制
func (t FieldType) MaxBytesLength() (int, bool) {
	limit := t.info().maxBytes
	return limit, limit > 0
}

// IsUploadFileType 是否为上传文件类字段
func (t FieldType) IsUploadFileType() bool {
	return t.info().upload
}

// ParseFieldType 按类型名解析字段类型，大小写不敏感
func ParseFieldType(name string) (FieldType, error) {
	for i, info := range fieldTypeTable {
		if strings.EqualFold(info.name, name) {
			return FieldType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFieldType, name)
}

// MarshalJSON 以类型名编码
func (t FieldType) MarshalJSON() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFieldType, int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON 接受类型名，也兼容数字序号
func (t *FieldType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseFieldType(name)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownFieldType, string(data))
	}
	if !FieldType(ordinal).IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownFieldType, ordinal)
	}
	*t = FieldType(ordinal)
	return nil
}

// Value 数据库中以整数序号存储
func (t FieldType) Value() (driver.Value, error) {
	return int64(t), nil
}

// Scan 从整数序号读取
func (t *FieldType) Scan(value interface{}) error {
	ordinal, err := cast.ToIntE(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownFieldType, value)
	}
	if !FieldType(ordinal).IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownFieldType, ordinal)
	}
	*t = FieldType(ordinal)
	return nil
}

/*
 * @module service/models/schema_data
 * @description 动态表数据行模型，每种字段类型对应一个 JSONB 分区列，按字段键存值
 * @architecture 数据模型层 - ORM实体
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 新建空行 -> 写入字段 -> 读取为外部值映射 -> 复制/更新单字段 -> 软删除
 * @rules 系统字段不进入分区；数组上下文的值统一写入 field_array；已删除字段不再读出
 * @dependencies gorm.io/gorm, github.com/google/uuid, addonhub-service/service/schematic
 * @refs service/cms/data_service.go, service/cms/query_builder.go
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"addonhub-service/service/schematic"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrFieldValueMissing 更新字段时原值与新值均不存在
var ErrFieldValueMissing = errors.New("字段原值与新值均不存在")

// OwnerPlaceholder 行所有者占位，当前未关联用户体系
var OwnerPlaceholder = uuid.Nil

// SchemaDataModel 动态表数据行
type SchemaDataModel struct {
	ID                  int64                          `json:"id" gorm:"primaryKey;autoIncrement"`
	AddonID             int64                          `json:"addon_id" gorm:"not null;index"`
	SchemaID            int64                          `json:"schema_id" gorm:"not null;index"`
	PublicID            uuid.UUID                      `json:"public_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	FieldText           Partition[string]              `json:"field_text" gorm:"type:jsonb"`
	FieldNumber         Partition[schematic.Number]    `json:"field_number" gorm:"type:jsonb"`
	FieldURL            Partition[string]              `json:"field_url" gorm:"column:field_url;type:jsonb"`
	FieldEmail          Partition[string]              `json:"field_email" gorm:"type:jsonb"`
	FieldAddress        Partition[string]              `json:"field_address" gorm:"type:jsonb"`
	FieldPhone          Partition[string]              `json:"field_phone" gorm:"type:jsonb"`
	FieldBool           Partition[bool]                `json:"field_bool" gorm:"type:jsonb"`
	FieldDatetime       Partition[time.Time]           `json:"field_datetime" gorm:"type:jsonb"`
	FieldDate           Partition[schematic.Date]      `json:"field_date" gorm:"type:jsonb"`
	FieldTime           Partition[schematic.TimeOfDay] `json:"field_time" gorm:"type:jsonb"`
	FieldRichContent    Partition[string]              `json:"field_rich_content" gorm:"type:jsonb"`
	FieldRichText       Partition[string]              `json:"field_rich_text" gorm:"type:jsonb"`
	FieldReference      Partition[uuid.UUID]           `json:"field_reference" gorm:"type:jsonb"`
	FieldMultiReference Partition[[]uuid.UUID]         `json:"field_multi_reference" gorm:"type:jsonb"`
	FieldGallery        Partition[[]uuid.UUID]         `json:"field_gallery" gorm:"type:jsonb"`
	FieldDocument       Partition[uuid.UUID]           `json:"field_document" gorm:"type:jsonb"`
	FieldMultiDocument  Partition[[]uuid.UUID]         `json:"field_multi_document" gorm:"type:jsonb"`
	FieldImage          Partition[uuid.UUID]           `json:"field_image" gorm:"type:jsonb"`
	FieldVideo          Partition[uuid.UUID]           `json:"field_video" gorm:"type:jsonb"`
	FieldAudio          Partition[uuid.UUID]           `json:"field_audio" gorm:"type:jsonb"`
	FieldTags           Partition[[]int64]             `json:"field_tags" gorm:"type:jsonb"`
	FieldArray          Partition[[]interface{}]       `json:"field_array" gorm:"type:jsonb"`
	FieldObject         Partition[interface{}]         `json:"field_object" gorm:"type:jsonb"`
	CreatedAt           time.Time                      `json:"created_at"`
	UpdatedAt           time.Time                      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt                 `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName 指定表名
func (SchemaDataModel) TableName() string {
	return "schema_data"
}

// NewSchemaData 构造空数据行，公开ID使用时间有序的 UUIDv7
func NewSchemaData(addonID, schemaID int64) (*SchemaDataModel, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成行ID失败: %w", err)
	}
	return &SchemaDataModel{AddonID: addonID, SchemaID: schemaID, PublicID: id}, nil
}

// partitionSlot 单个分区的类型化读写入口
type partitionSlot interface {
	column() string
	get(key string) (schematic.FieldValue, bool)
	put(key string, v schematic.FieldValue) error
	remove(key string)
	value() (driver.Value, error)
	scan(raw interface{}) error
}

type slot[V any] struct {
	fieldType schematic.FieldType
	p         *Partition[V]
	encode    func(schematic.FieldValue) (V, bool)
	decode    func(V) schematic.FieldValue
}

func (s *slot[V]) column() string {
	return s.fieldType.PartitionName()
}

func (s *slot[V]) get(key string) (schematic.FieldValue, bool) {
	v, ok := (*s.p)[key]
	if !ok {
		return nil, false
	}
	return s.decode(v), true
}

func (s *slot[V]) put(key string, fv schematic.FieldValue) error {
	v, ok := s.encode(fv)
	if !ok {
		return fmt.Errorf("%w: %s 分区不能存放 %T", schematic.ErrTypeMismatch, s.column(), fv)
	}
	if *s.p == nil {
		*s.p = Partition[V]{}
	}
	(*s.p)[key] = v
	return nil
}

func (s *slot[V]) remove(key string) {
	delete(*s.p, key)
}

func (s *slot[V]) value() (driver.Value, error) {
	return s.p.Value()
}

func (s *slot[V]) scan(raw interface{}) error {
	return s.p.Scan(raw)
}

func encodeString(fv schematic.FieldValue) (string, bool) {
	switch v := fv.(type) {
	case schematic.TextField:
		return string(v), true
	case schematic.URLField:
		return string(v), true
	case schematic.EmailField:
		return string(v), true
	case schematic.PhoneField:
		return string(v), true
	case schematic.AddressField:
		return string(v), true
	}
	return "", false
}

func stringSlot(ft schematic.FieldType, p *Partition[string], wrap func(string) schematic.FieldValue) partitionSlot {
	return &slot[string]{fieldType: ft, p: p, encode: encodeString, decode: wrap}
}

func referenceSlot(ft schematic.FieldType, p *Partition[uuid.UUID]) partitionSlot {
	return &slot[uuid.UUID]{
		fieldType: ft,
		p:         p,
		encode: func(fv schematic.FieldValue) (uuid.UUID, bool) {
			v, ok := fv.(schematic.ReferenceField)
			return uuid.UUID(v), ok
		},
		decode: func(v uuid.UUID) schematic.FieldValue { return schematic.ReferenceField(v) },
	}
}

func multiReferenceSlot(ft schematic.FieldType, p *Partition[[]uuid.UUID]) partitionSlot {
	return &slot[[]uuid.UUID]{
		fieldType: ft,
		p:         p,
		encode: func(fv schematic.FieldValue) ([]uuid.UUID, bool) {
			v, ok := fv.(schematic.MultiReferenceField)
			return []uuid.UUID(v), ok
		},
		decode: func(v []uuid.UUID) schematic.FieldValue { return schematic.MultiReferenceField(v) },
	}
}

// slotFor 返回字段类型对应的分区
func (m *SchemaDataModel) slotFor(ft schematic.FieldType) (partitionSlot, error) {
	switch ft {
	case schematic.FieldText:
		return stringSlot(ft, &m.FieldText, func(s string) schematic.FieldValue { return schematic.TextField(s) }), nil
	case schematic.FieldRichContent:
		return stringSlot(ft, &m.FieldRichContent, func(s string) schematic.FieldValue { return schematic.TextField(s) }), nil
	case schematic.FieldRichText:
		return stringSlot(ft, &m.FieldRichText, func(s string) schematic.FieldValue { return schematic.TextField(s) }), nil
	case schematic.FieldURL:
		return stringSlot(ft, &m.FieldURL, func(s string) schematic.FieldValue { return schematic.URLField(s) }), nil
	case schematic.FieldEmail:
		return stringSlot(ft, &m.FieldEmail, func(s string) schematic.FieldValue { return schematic.EmailField(s) }), nil
	case schematic.FieldPhone:
		return stringSlot(ft, &m.FieldPhone, func(s string) schematic.FieldValue { return schematic.PhoneField(s) }), nil
	case schematic.FieldAddress:
		return stringSlot(ft, &m.FieldAddress, func(s string) schematic.FieldValue { return schematic.AddressField(s) }), nil
	case schematic.FieldNumber:
		return &slot[schematic.Number]{
			fieldType: ft,
			p:         &m.FieldNumber,
			encode: func(fv schematic.FieldValue) (schematic.Number, bool) {
				v, ok := fv.(schematic.NumberField)
				return schematic.Number(v), ok
			},
			decode: func(v schematic.Number) schematic.FieldValue { return schematic.NumberField(v) },
		}, nil
	case schematic.FieldBoolean:
		return &slot[bool]{
			fieldType: ft,
			p:         &m.FieldBool,
			encode: func(fv schematic.FieldValue) (bool, bool) {
				v, ok := fv.(schematic.BooleanField)
				return bool(v), ok
			},
			decode: func(v bool) schematic.FieldValue { return schematic.BooleanField(v) },
		}, nil
	case schematic.FieldDateTime:
		return &slot[time.Time]{
			fieldType: ft,
			p:         &m.FieldDatetime,
			encode: func(fv schematic.FieldValue) (time.Time, bool) {
				v, ok := fv.(schematic.DateTimeField)
				return schematic.NormalizeDateTime(time.Time(v)), ok
			},
			decode: func(v time.Time) schematic.FieldValue { return schematic.DateTimeField(v) },
		}, nil
	case schematic.FieldDate:
		return &slot[schematic.Date]{
			fieldType: ft,
			p:         &m.FieldDate,
			encode: func(fv schematic.FieldValue) (schematic.Date, bool) {
				v, ok := fv.(schematic.DateField)
				return schematic.Date(v), ok
			},
			decode: func(v schematic.Date) schematic.FieldValue { return schematic.DateField(v) },
		}, nil
	case schematic.FieldTime:
		return &slot[schematic.TimeOfDay]{
			fieldType: ft,
			p:         &m.FieldTime,
			encode: func(fv schematic.FieldValue) (schematic.TimeOfDay, bool) {
				v, ok := fv.(schematic.TimeField)
				return schematic.TimeOfDay(v), ok
			},
			decode: func(v schematic.TimeOfDay) schematic.FieldValue { return schematic.TimeField(v) },
		}, nil
	case schematic.FieldReference:
		return referenceSlot(ft, &m.FieldReference), nil
	case schematic.FieldDocument:
		return referenceSlot(ft, &m.FieldDocument), nil
	case schematic.FieldImage:
		return referenceSlot(ft, &m.FieldImage), nil
	case schematic.FieldVideo:
		return referenceSlot(ft, &m.FieldVideo), nil
	case schematic.FieldAudio:
		return referenceSlot(ft, &m.FieldAudio), nil
	case schematic.FieldMultiReference:
		return multiReferenceSlot(ft, &m.FieldMultiReference), nil
	case schematic.FieldMediaGallery:
		return multiReferenceSlot(ft, &m.FieldGallery), nil
	case schematic.FieldMultiDocument:
		return multiReferenceSlot(ft, &m.FieldMultiDocument), nil
	case schematic.FieldTags:
		return &slot[[]int64]{
			fieldType: ft,
			p:         &m.FieldTags,
			encode: func(fv schematic.FieldValue) ([]int64, bool) {
				v, ok := fv.(schematic.ListNumberField)
				return []int64(v), ok
			},
			decode: func(v []int64) schematic.FieldValue { return schematic.ListNumberField(v) },
		}, nil
	case schematic.FieldArray:
		return &slot[[]interface{}]{
			fieldType: ft,
			p:         &m.FieldArray,
			encode: func(fv schematic.FieldValue) ([]interface{}, bool) {
				v, ok := fv.(schematic.ArrayField)
				return []interface{}(v), ok
			},
			decode: func(v []interface{}) schematic.FieldValue { return schematic.ArrayField(v) },
		}, nil
	case schematic.FieldObject:
		return &slot[interface{}]{
			fieldType: ft,
			p:         &m.FieldObject,
			encode: func(fv schematic.FieldValue) (interface{}, bool) {
				v, ok := fv.(schematic.ObjectField)
				return v.Value, ok
			},
			decode: func(v interface{}) schematic.FieldValue { return schematic.ObjectField{Value: v} },
		}, nil
	}
	return nil, fmt.Errorf("%w: %d", schematic.ErrUnknownFieldType, int(ft))
}

// PartitionValue 返回某个分区的数据库写入值，用于单列更新
func (m *SchemaDataModel) PartitionValue(ft schematic.FieldType) (driver.Value, error) {
	s, err := m.slotFor(ft)
	if err != nil {
		return nil, err
	}
	return s.value()
}

// InsertField 写入字段值；数组上下文中的值无论声明类型都写入 field_array
func (m *SchemaDataModel) InsertField(key schematic.FieldKey, isArrayContext bool, ft schematic.FieldType, value schematic.FieldValue) error {
	if key.IsSystem() {
		return fmt.Errorf("%w: %s", schematic.ErrSystemFieldImmutable, key)
	}
	if isArrayContext {
		items, err := arrayItems(value)
		if err != nil {
			return err
		}
		ft, value = schematic.FieldArray, schematic.ArrayField(items)
	}
	s, err := m.slotFor(ft)
	if err != nil {
		return err
	}
	return s.put(string(key), value)
}

// arrayItems 把任意字段值展开为通用列表元素
func arrayItems(value schematic.FieldValue) ([]interface{}, error) {
	if items, ok := value.(schematic.ArrayField); ok {
		return items, nil
	}
	sv := schematic.ToSimpleValue(value)
	if items, ok := sv.Items(); ok {
		return items, nil
	}
	data, err := json.Marshal(sv)
	if err != nil {
		return nil, err
	}
	var item interface{}
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return []interface{}{item}, nil
}

// Field 读取字段值
func (m *SchemaDataModel) Field(key schematic.FieldKey, ft schematic.FieldType) (schematic.FieldValue, bool) {
	s, err := m.slotFor(ft)
	if err != nil {
		return nil, false
	}
	return s.get(string(key))
}

// SetField 更新单个字段，value 为 nil 表示清除
func (m *SchemaDataModel) SetField(key schematic.FieldKey, ft schematic.FieldType, value schematic.FieldValue) error {
	if key.IsSystem() {
		return fmt.Errorf("%w: %s", schematic.ErrSystemFieldImmutable, key)
	}
	s, err := m.slotFor(ft)
	if err != nil {
		return err
	}
	if value == nil {
		if _, ok := s.get(string(key)); !ok {
			return fmt.Errorf("%w: %s", ErrFieldValueMissing, key)
		}
		s.remove(string(key))
		return nil
	}
	return s.put(string(key), value)
}

// ToExternalMap 按表定义把数据行转换为外部值映射
// columns 为空表示返回全部字段；field_array 中不在字段表内的键以 key[] 形式输出，
// 已删除字段仍在字段表内，其数组上下文值同样不输出
func (m *SchemaDataModel) ToExternalMap(fields schematic.FieldMap, columns []string) map[string]schematic.SimpleValue {
	var allowed map[string]bool
	if len(columns) > 0 {
		allowed = make(map[string]bool, len(columns))
		for _, c := range columns {
			allowed[c] = true
		}
	}
	include := func(key string) bool {
		return allowed == nil || allowed[key]
	}

	out := make(map[string]schematic.SimpleValue, len(fields))
	for _, key := range fields.OrderedKeys() {
		field := fields[key]
		if field.IsDeleted || !include(string(key)) {
			continue
		}
		switch key {
		case schematic.KeyID:
			out[string(key)] = schematic.TextValue(m.PublicID.String())
			continue
		case schematic.KeyOwner:
			out[string(key)] = schematic.TextValue(OwnerPlaceholder.String())
			continue
		case schematic.KeyCreatedAt:
			out[string(key)] = schematic.DateTimeValue(m.CreatedAt)
			continue
		case schematic.KeyUpdatedAt:
			out[string(key)] = schematic.DateTimeValue(m.UpdatedAt)
			continue
		}
		if fv, ok := m.Field(key, field.FieldType); ok {
			out[string(key)] = schematic.ToSimpleValue(fv)
		}
	}

	for key, items := range m.FieldArray {
		if _, known := fields[schematic.FieldKey(key)]; known {
			continue
		}
		name := key + schematic.ArrayContextSuffix
		if include(key) || include(name) {
			out[name] = schematic.ToSimpleValue(schematic.ArrayField(items))
		}
	}
	return out
}

// Duplicate 复制数据行，生成新的公开ID，不复制主键与时间戳
func (m *SchemaDataModel) Duplicate() (*SchemaDataModel, error) {
	dup, err := NewSchemaData(m.AddonID, m.SchemaID)
	if err != nil {
		return nil, err
	}
	for _, ft := range schematic.AllFieldTypes() {
		src, err := m.slotFor(ft)
		if err != nil {
			return nil, err
		}
		raw, err := src.value()
		if err != nil {
			return nil, err
		}
		dst, err := dup.slotFor(ft)
		if err != nil {
			return nil, err
		}
		if err := dst.scan(raw); err != nil {
			return nil, fmt.Errorf("复制分区 %s 失败: %w", ft.PartitionName(), err)
		}
	}
	return dup, nil
}

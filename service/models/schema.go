/*
 * @module service/models/schema
 * @description 动态表定义模型，包含字段表、权限、视图、默认排序及乐观并发版本号
 * @architecture 数据模型层 - ORM实体
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 创建(系统字段) -> 新增字段 -> 删除字段(仅标记) -> 软删除
 * @rules 字段只追加不移除；有效字段不超过20个，累计不超过100个；系统字段不计入上限
 * @dependencies gorm.io/gorm, addonhub-service/service/schematic
 * @refs service/cms/schema_service.go
 */

package models

import (
	"fmt"
	"time"

	"addonhub-service/service/schematic"

	"gorm.io/gorm"
)

// 表存储方式
const (
	StoreCMS   = "cms"
	StoreAddon = "addon"
)

// 字段数量上限
const (
	MaxActiveColumns = 20
	MaxTotalColumns  = 100
)

// SchemaModel 动态表定义
type SchemaModel struct {
	ID                int64                          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string                         `json:"name" gorm:"size:255;not null;uniqueIndex:idx_schema_addon_name"`
	AddonID           int64                          `json:"addon_id" gorm:"not null;uniqueIndex:idx_schema_addon_name"`
	PrimaryField      schematic.FieldKey             `json:"primary_field" gorm:"size:255;not null"`
	DisplayName       string                         `json:"display_name" gorm:"size:255;not null"`
	Permissions       schematic.SchematicPermissions `json:"permissions" gorm:"type:jsonb;serializer:json"`
	Version           float64                        `json:"version" gorm:"default:1"`
	AllowedOperations []schematic.Operation          `json:"allowed_operations" gorm:"type:jsonb;serializer:json"`
	TTL               *int64                         `json:"ttl,omitempty"`
	DefaultSort       *schematic.DefaultSort         `json:"default_sort,omitempty" gorm:"type:jsonb;serializer:json"`
	Views             []schematic.SchemaView         `json:"views" gorm:"type:jsonb;serializer:json"`
	Store             string                         `json:"store" gorm:"size:20;not null;default:cms"`
	Fields            schematic.FieldMap             `json:"fields" gorm:"type:jsonb;serializer:json"`
	Revision          int64                          `json:"revision" gorm:"not null;default:0"`
	CreatedAt         time.Time                      `json:"created_at"`
	UpdatedAt         time.Time                      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt                 `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName 指定表名
func (SchemaModel) TableName() string {
	return "schema"
}

// NewSchema 构造新表定义，填充系统字段与默认配置
func NewSchema(addonID int64, name, displayName string, primaryField *schematic.FieldKey) *SchemaModel {
	fields := schematic.FieldMap{
		schematic.KeyID:        {DisplayName: "ID", Sortable: true, SystemField: true, FieldType: schematic.FieldText, Index: 0},
		schematic.KeyOwner:     {DisplayName: "Owner", Sortable: true, SystemField: true, FieldType: schematic.FieldText, Index: 1},
		schematic.KeyCreatedAt: {DisplayName: "Created Date", Sortable: true, SystemField: true, FieldType: schematic.FieldDateTime, Index: 2},
		schematic.KeyUpdatedAt: {DisplayName: "Updated Date", Sortable: true, SystemField: true, FieldType: schematic.FieldDateTime, Index: 3},
	}
	primary := schematic.KeyID
	if primaryField != nil && *primaryField != "" {
		primary = *primaryField
	}
	return &SchemaModel{
		Name:              name,
		AddonID:           addonID,
		PrimaryField:      primary,
		DisplayName:       displayName,
		Permissions:       schematic.DefaultPermissions(),
		Version:           1,
		AllowedOperations: schematic.AllOperations(),
		Views:             []schematic.SchemaView{schematic.DefaultView()},
		Store:             StoreCMS,
		Fields:            fields,
	}
}

// IsAddonStore 数据是否由插件自行存储
func (s *SchemaModel) IsAddonStore() bool {
	return s.Store == StoreAddon
}

// Field 查找未删除的字段
func (s *SchemaModel) Field(key schematic.FieldKey) (schematic.SchematicField, error) {
	field, ok := s.Fields[key]
	if !ok || field.IsDeleted {
		return schematic.SchematicField{}, fmt.Errorf("%w: %s", schematic.ErrColumnNotFound, key)
	}
	return field, nil
}

// AddColumn 新增字段，仅修改内存中的定义，需由调用方持久化
// schemaExists 用于校验引用字段指向的表
func (s *SchemaModel) AddColumn(key schematic.FieldKey, displayName string, fieldType schematic.FieldType, referencedSchema *string, schemaExists func(name string) bool) error {
	if err := schematic.ValidateColumnID(string(key)); err != nil {
		return err
	}
	if !fieldType.IsValid() {
		return fmt.Errorf("%w: %d", schematic.ErrUnknownFieldType, int(fieldType))
	}
	if existing, ok := s.Fields[key]; ok {
		if existing.IsDeleted {
			return fmt.Errorf("%w: %s", schematic.ErrColumnIDReused, key)
		}
		return fmt.Errorf("%w: %s", schematic.ErrColumnIDExists, key)
	}
	if s.Fields.ActiveCount() >= MaxActiveColumns {
		return schematic.ErrTooManyColumns
	}
	if s.Fields.UserCount() >= MaxTotalColumns {
		return schematic.ErrTooManyColumnsEverCreated
	}
	if fieldType == schematic.FieldReference || fieldType == schematic.FieldMultiReference {
		if referencedSchema == nil || *referencedSchema == "" {
			return fmt.Errorf("%w: %s", schematic.ErrMissingReferencedSchema, key)
		}
	}
	if referencedSchema != nil {
		if schemaExists == nil || !schemaExists(*referencedSchema) {
			return fmt.Errorf("%w: %s", schematic.ErrMissingReferencedSchema, *referencedSchema)
		}
	}

	if s.Fields == nil {
		s.Fields = schematic.FieldMap{}
	}
	s.Fields[key] = schematic.SchematicField{
		DisplayName:      displayName,
		Sortable:         true,
		FieldType:        fieldType,
		Index:            len(s.Fields),
		ReferencedSchema: referencedSchema,
	}
	return nil
}

// DeleteColumn 标记字段为已删除，字段ID不可再被使用
func (s *SchemaModel) DeleteColumn(key schematic.FieldKey) error {
	field, ok := s.Fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", schematic.ErrColumnNotFound, key)
	}
	if field.SystemField {
		return fmt.Errorf("%w: %s", schematic.ErrSystemFieldImmutable, key)
	}
	field.IsDeleted = true
	s.Fields[key] = field
	s.dropFieldReferences(key)
	return nil
}

// dropFieldReferences 移除默认排序与视图中指向该字段的排序和过滤条件
func (s *SchemaModel) dropFieldReferences(key schematic.FieldKey) {
	if s.DefaultSort != nil && s.DefaultSort.Field == key {
		s.DefaultSort = nil
	}
	for i := range s.Views {
		query := &s.Views[i].Query
		sorts := query.Sort[:0]
		for _, sort := range query.Sort {
			if sort.Field != key {
				sorts = append(sorts, sort)
			}
		}
		query.Sort = sorts
		filters := query.Filter[:0]
		for _, filter := range query.Filter {
			if filter.Field != key {
				filters = append(filters, filter)
			}
		}
		query.Filter = filters
	}
}

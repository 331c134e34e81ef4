/*
 * @module service/schematic/schema_types
 * @description 动态表定义的组成类型：字段定义、权限、视图、默认排序、过滤条件与允许的操作
 * @architecture 领域模型层 - 值对象
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 创建表 -> 默认权限/默认视图 -> 视图与排序按整体替换
 * @rules JSON 字段名使用 camelCase；过滤条件同时接受短名与长名
 * @dependencies encoding/json
 * @refs service/models/schema.go, service/cms/query_builder.go
 */

package schematic

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// SchematicField 字段定义
type SchematicField struct {
	DisplayName      string    `json:"displayName"`
	Sortable         bool      `json:"sortable"`
	IsDeleted        bool      `json:"isDeleted"`
	SystemField      bool      `json:"systemField"`
	FieldType        FieldType `json:"fieldType"`
	Index            int       `json:"index"`
	ReferencedSchema *string   `json:"referencedSchema,omitempty"`
}

// FieldMap 字段键到字段定义
type FieldMap map[FieldKey]SchematicField

// PermissionsUser 权限主体
type PermissionsUser string

const (
	PermissionAnyone PermissionsUser = "Anyone"
	PermissionAdmin  PermissionsUser = "Admin"
	PermissionOwner  PermissionsUser = "Owner"
)

func (p *PermissionsUser) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPermission, string(data))
	}
	switch PermissionsUser(s) {
	case PermissionAnyone, PermissionAdmin, PermissionOwner:
		*p = PermissionsUser(s)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPermission, s)
}

// SchematicPermissions 表级读写权限
type SchematicPermissions struct {
	Insert PermissionsUser `json:"insert"`
	Update PermissionsUser `json:"update"`
	Remove PermissionsUser `json:"remove"`
	Read   PermissionsUser `json:"read"`
}

// DefaultPermissions 默认全部仅管理员可操作
func DefaultPermissions() SchematicPermissions {
	return SchematicPermissions{
		Insert: PermissionAdmin,
		Update: PermissionAdmin,
		Remove: PermissionAdmin,
		Read:   PermissionAdmin,
	}
}

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o *SortOrder) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSortOrder, string(data))
	}
	switch strings.ToLower(s) {
	case "asc", "ascending":
		*o = SortAsc
	case "desc", "descending":
		*o = SortDesc
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
	}
	return nil
}

// DefaultSort 单字段排序
type DefaultSort struct {
	Field FieldKey  `json:"field"`
	Order SortOrder `json:"order"`
}

// FilterCondition 过滤条件
type FilterCondition string

const (
	ConditionContains       FilterCondition = "contains"
	ConditionDoesNotContain FilterCondition = "doesNotContain"
	ConditionEqual          FilterCondition = "eq"
	ConditionNotEqual       FilterCondition = "ne"
	ConditionGreaterOrEqual FilterCondition = "ge"
	ConditionGreater        FilterCondition = "gt"
	ConditionLessOrEqual    FilterCondition = "le"
	ConditionLess           FilterCondition = "lt"
	ConditionBetween        FilterCondition = "between"
)

var conditionAliases = map[string]FilterCondition{
	"contains":       ConditionContains,
	"doesnotcontain": ConditionDoesNotContain,
	"eq":             ConditionEqual,
	"equal":          ConditionEqual,
	"ne":             ConditionNotEqual,
	"notequal":       ConditionNotEqual,
	"ge":             ConditionGreaterOrEqual,
	"greaterorequal": ConditionGreaterOrEqual,
	"gt":             ConditionGreater,
	"greater":        ConditionGreater,
	"le":             ConditionLessOrEqual,
	"lessorequal":    ConditionLessOrEqual,
	"lt":             ConditionLess,
	"less":           ConditionLess,
	"between":        ConditionBetween,
}

// ParseFilterCondition 解析条件名，大小写不敏感
func ParseFilterCondition(s string) (FilterCondition, error) {
	if c, ok := conditionAliases[strings.ToLower(s)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: 未知条件 %q", ErrInvalidFilter, s)
}

func (c *FilterCondition) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: 条件必须为字符串", ErrInvalidFilter)
	}
	parsed, err := ParseFilterCondition(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SchemaFilter 单个过滤条件
type SchemaFilter struct {
	Field     FieldKey        `json:"field"`
	Condition FilterCondition `json:"condition"`
	Value     SimpleValue     `json:"value"`
}

// ViewQuery 视图的保存查询
type ViewQuery struct {
	Sort   []DefaultSort  `json:"sort"`
	Filter []SchemaFilter `json:"filter"`
}

// TableView 表格视图配置
type TableView struct {
	HiddenFields []FieldKey `json:"hiddenFields"`
}

// ViewType 视图展示方式
type ViewType struct {
	Form    *json.RawMessage `json:"form,omitempty"`
	Gallery *json.RawMessage `json:"gallery,omitempty"`
	List    *json.RawMessage `json:"list,omitempty"`
	Table   TableView        `json:"table"`
}

// SchemaView 保存的视图
type SchemaView struct {
	Name     string    `json:"name"`
	Query    ViewQuery `json:"query"`
	ViewType ViewType  `json:"viewType"`
}

// DefaultView 新建表时的默认视图
func DefaultView() SchemaView {
	return SchemaView{
		Name:     "Default View",
		Query:    ViewQuery{Sort: []DefaultSort{}, Filter: []SchemaFilter{}},
		ViewType: ViewType{Table: TableView{HiddenFields: []FieldKey{}}},
	}
}

// Operation 数据操作
type Operation string

const (
	OpInsert            Operation = "Insert"
	OpBulkInsert        Operation = "BulkInsert"
	OpSave              Operation = "Save"
	OpBulkSave          Operation = "BulkSave"
	OpUpdate            Operation = "Update"
	OpBulkUpdate        Operation = "BulkUpdate"
	OpRemove            Operation = "Remove"
	OpBulkRemove        Operation = "BulkRemove"
	OpGet               Operation = "Get"
	OpFind              Operation = "Find"
	OpCount             Operation = "Count"
	OpDistinct          Operation = "Distinct"
	OpAggregate         Operation = "Aggregate"
	OpTruncate          Operation = "Truncate"
	OpQueryReferenced   Operation = "QueryReferenced"
	OpIsReferenced      Operation = "IsReferenced"
	OpInsertReference   Operation = "InsertReference"
	OpRemoveReference   Operation = "RemoveReference"
	OpReplaceReferences Operation = "ReplaceReferences"
)

// AllOperations 新建表默认允许全部操作
func AllOperations() []Operation {
	return []Operation{
		OpBulkInsert, OpBulkSave, OpQueryReferenced, OpTruncate, OpReplaceReferences,
		OpCount, OpGet, OpFind, OpRemoveReference, OpIsReferenced, OpDistinct, OpRemove,
		OpBulkUpdate, OpInsert, OpSave, OpUpdate, OpBulkRemove, OpAggregate, OpInsertReference,
	}
}

// OrderedKeys 按字段索引排序的键
func (m FieldMap) OrderedKeys() []FieldKey {
	keys := make([]FieldKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m[keys[i]].Index < m[keys[j]].Index
	})
	return keys
}

// ActiveCount 未删除的非系统字段数量
func (m FieldMap) ActiveCount() int {
	n := 0
	for _, f := range m {
		if !f.SystemField && !f.IsDeleted {
			n++
		}
	}
	return n
}

// UserCount 累计创建的非系统字段数量，包含已删除字段
func (m FieldMap) UserCount() int {
	n := 0
	for _, f := range m {
		if !f.SystemField {
			n++
		}
	}
	return n
}

// ValidateIdentifier 表名与显示名：至少2个字符，不含 - 与 /
func ValidateIdentifier(s string) error {
	if utf8.RuneCountInString(s) < 2 || strings.ContainsAny(s, "-/") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return nil
}

// ValidateColumnID 字段ID：至少2个字符，不含 - / 与双引号，不以 [] 结尾（数组上下文后缀）
func ValidateColumnID(id string) error {
	if utf8.RuneCountInString(id) < 2 || strings.ContainsAny(id, "-/\"") || strings.HasSuffix(id, ArrayContextSuffix) {
		return fmt.Errorf("%w: %q", ErrColumnIDInvalid, id)
	}
	return nil
}

/*
 * @module service/cms/query_builder
 * @description 动态查询构造：根据表定义把过滤、排序、分页、关键字搜索翻译为带绑定参数的SQL条件
 * @architecture 数据访问层 - 查询构造
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow QueryOptions -> 字段校验 -> 每个字段一次投影 -> 条件AND组合 -> 排序(NULLS LAST, id) -> 分页
 * @rules 仅允许表定义中未删除的字段；不等于/不包含条件包含空值；软删除行始终排除
 * @dependencies gorm.io/gorm, gorm.io/gorm/clause
 * @refs service/cms/sql_fragment.go, service/cms/data_service.go
 */

package cms

import (
	"fmt"
	"strings"
	"time"

	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOptions 数据查询参数
type QueryOptions struct {
	Filters []schematic.SchemaFilter `json:"filters,omitempty"`
	Sort    *schematic.DefaultSort   `json:"sort,omitempty"`
	Search  string                   `json:"search,omitempty"`
	Columns []string                 `json:"columns,omitempty"`
	Offset  int                      `json:"offset"`
	Limit   int                      `json:"limit"` // 0 表示不限制
}

// builtQuery 构造完成的查询条件
type builtQuery struct {
	where  []sqlFragment
	order  []sqlFragment
	offset int
	limit  int
}

// queryBuilder 针对单张表构造查询
type queryBuilder struct {
	dialect     dialect
	schema      *models.SchemaModel
	projections map[schematic.FieldKey]projection
}

// projection 某个字段在SQL中的取值表达式
type projection struct {
	text  sqlFragment
	typed sqlFragment
	field schematic.SchematicField
}

func newQueryBuilder(d dialect, schema *models.SchemaModel) *queryBuilder {
	return &queryBuilder{dialect: d, schema: schema, projections: make(map[schematic.FieldKey]projection)}
}

// project 返回字段投影，同一字段只计算一次
func (b *queryBuilder) project(key schematic.FieldKey) (projection, error) {
	if p, ok := b.projections[key]; ok {
		return p, nil
	}
	field, err := b.schema.Field(key)
	if err != nil {
		return projection{}, err
	}

	var p projection
	switch key {
	case schematic.KeyID:
		p = projection{text: b.dialect.columnText(publicIDColumn), typed: fragment(publicIDColumn.sql())}
	case schematic.KeyOwner:
		owner := fragment("CAST(? AS TEXT)", models.OwnerPlaceholder.String())
		p = projection{text: owner, typed: owner}
	case schematic.KeyCreatedAt:
		p = projection{text: b.dialect.columnText(createdAtColumn), typed: fragment(createdAtColumn.sql())}
	case schematic.KeyUpdatedAt:
		p = projection{text: b.dialect.columnText(updatedAtColumn), typed: fragment(updatedAtColumn.sql())}
	default:
		col := partitionColumn(field.FieldType)
		p = projection{
			text:  b.dialect.jsonText(col, string(key)),
			typed: b.dialect.jsonTyped(col, string(key), field.FieldType),
		}
	}
	p.field = field
	b.projections[key] = p
	return p, nil
}

// build 构造查询；withPaging 为 false 时不生成排序与分页，用于计数
func (b *queryBuilder) build(opts QueryOptions, withPaging bool) (*builtQuery, error) {
	q := &builtQuery{}

	for _, filter := range opts.Filters {
		cond, err := b.condition(filter)
		if err != nil {
			return nil, err
		}
		q.where = append(q.where, cond)
	}

	if search := strings.TrimSpace(opts.Search); search != "" {
		cond, err := b.search(search)
		if err != nil {
			return nil, err
		}
		q.where = append(q.where, cond)
	}

	if !withPaging {
		return q, nil
	}

	sort := opts.Sort
	if sort == nil {
		sort = b.schema.DefaultSort
		// 历史数据中默认排序可能指向已删除字段
		if sort != nil {
			if _, err := b.schema.Field(sort.Field); err != nil {
				sort = nil
			}
		}
	}
	if sort != nil {
		p, err := b.project(sort.Field)
		if err != nil {
			return nil, fmt.Errorf("排序字段无效: %w", err)
		}
		direction := "ASC"
		if sort.Order == schematic.SortDesc {
			direction = "DESC"
		}
		q.order = append(q.order, p.typed.wrap("%s "+direction+" NULLS LAST"))
	}
	q.order = append(q.order, fragment(rowIDColumn.sql()+" ASC"))

	if opts.Offset > 0 {
		q.offset = opts.Offset
	}
	if opts.Limit > 0 {
		q.limit = opts.Limit
	}
	return q, nil
}

// condition 翻译单个过滤条件
func (b *queryBuilder) condition(filter schematic.SchemaFilter) (sqlFragment, error) {
	p, err := b.project(filter.Field)
	if err != nil {
		return sqlFragment{}, fmt.Errorf("%w: %v", schematic.ErrInvalidFilter, err)
	}
	like := b.dialect.likeOperator()

	switch filter.Condition {
	case schematic.ConditionContains:
		pattern := "%" + escapeLike(filter.Value.AsText()) + "%"
		return p.text.wrap("%s "+like+` ? ESCAPE '\'`, pattern), nil
	case schematic.ConditionDoesNotContain:
		pattern := "%" + escapeLike(filter.Value.AsText()) + "%"
		return p.text.wrap("(%s IS NULL OR %s NOT "+like+` ? ESCAPE '\')`, pattern), nil
	case schematic.ConditionBetween:
		items, ok := filter.Value.Items()
		if !ok || len(items) != 2 {
			return sqlFragment{}, fmt.Errorf("%w: between 需要两个元素的列表", schematic.ErrInvalidFilter)
		}
		bounds := make([]interface{}, 2)
		for i, item := range items {
			sv, err := schematic.FromInterface(item)
			if err != nil {
				return sqlFragment{}, fmt.Errorf("%w: %v", schematic.ErrInvalidFilter, err)
			}
			if bounds[i], err = b.bindValue(filter.Field, p.field, sv); err != nil {
				return sqlFragment{}, err
			}
		}
		return p.typed.wrap("%s BETWEEN ? AND ?", bounds...), nil
	}

	value, err := b.bindValue(filter.Field, p.field, filter.Value)
	if err != nil {
		return sqlFragment{}, err
	}
	switch filter.Condition {
	case schematic.ConditionEqual:
		return p.typed.wrap("%s = ?", value), nil
	case schematic.ConditionNotEqual:
		return p.typed.wrap("(%s IS NULL OR %s <> ?)", value), nil
	case schematic.ConditionGreaterOrEqual:
		return p.typed.wrap("%s >= ?", value), nil
	case schematic.ConditionGreater:
		return p.typed.wrap("%s > ?", value), nil
	case schematic.ConditionLessOrEqual:
		return p.typed.wrap("%s <= ?", value), nil
	case schematic.ConditionLess:
		return p.typed.wrap("%s < ?", value), nil
	}
	return sqlFragment{}, fmt.Errorf("%w: 未知条件 %q", schematic.ErrInvalidFilter, filter.Condition)
}

// bindValue 把过滤值转换为与字段存储形式可比较的绑定参数
func (b *queryBuilder) bindValue(key schematic.FieldKey, field schematic.SchematicField, v schematic.SimpleValue) (interface{}, error) {
	invalid := func(err error) error {
		return fmt.Errorf("%w: 字段 %s: %v", schematic.ErrInvalidFilter, key, err)
	}

	switch key {
	case schematic.KeyID, schematic.KeyOwner:
		return v.AsText(), nil
	case schematic.KeyCreatedAt, schematic.KeyUpdatedAt:
		if t, ok := v.DateTime(); ok {
			return t, nil
		}
		t, err := schematic.ParseDateTime(v.AsText())
		if err != nil {
			return nil, invalid(err)
		}
		return t, nil
	}

	switch field.FieldType {
	case schematic.FieldNumber:
		if n, ok := v.Number(); ok {
			return n.Interface(), nil
		}
		n, err := schematic.ParseNumber(v.AsText())
		if err != nil {
			return nil, invalid(err)
		}
		return n.Interface(), nil
	case schematic.FieldBoolean:
		if flag, ok := v.Bool(); ok {
			return flag, nil
		}
		flag, err := schematic.ParseBool(v.AsText())
		if err != nil {
			return nil, invalid(err)
		}
		return flag, nil
	case schematic.FieldDateTime, schematic.FieldDate, schematic.FieldTime:
		fv, err := field.FieldType.ParseValue(v)
		if err != nil {
			return nil, invalid(err)
		}
		switch typed := fv.(type) {
		case schematic.DateTimeField:
			return schematic.FormatDateTime(time.Time(typed)), nil
		case schematic.DateField:
			return schematic.Date(typed).String(), nil
		case schematic.TimeField:
			return schematic.TimeOfDay(typed).String(), nil
		}
	}
	return v.AsText(), nil
}

// search 关键字匹配主字段或行ID
func (b *queryBuilder) search(term string) (sqlFragment, error) {
	pattern := "%" + escapeLike(term) + "%"
	like := b.dialect.likeOperator()
	idMatch := b.dialect.columnText(publicIDColumn).wrap("%s "+like+` ? ESCAPE '\'`, pattern)

	primary := b.schema.PrimaryField
	if primary == "" || primary.IsSystem() {
		return idMatch, nil
	}
	p, err := b.project(primary)
	if err != nil {
		return idMatch, nil
	}
	primaryMatch := p.text.wrap("%s "+like+` ? ESCAPE '\'`, pattern)
	return sqlFragment{
		SQL:  "(" + primaryMatch.SQL + " OR " + idMatch.SQL + ")",
		Vars: append(append([]interface{}{}, primaryMatch.Vars...), idMatch.Vars...),
	}, nil
}

// apply 把条件应用到 gorm 查询上
func (q *builtQuery) apply(db *gorm.DB) *gorm.DB {
	for _, cond := range q.where {
		db = db.Where(cond.expr())
	}
	// 多个 OrderBy 表达式会相互覆盖，合并为一个
	if len(q.order) > 0 {
		combined := sqlFragment{}
		parts := make([]string, 0, len(q.order))
		for _, order := range q.order {
			parts = append(parts, order.SQL)
			combined.Vars = append(combined.Vars, order.Vars...)
		}
		combined.SQL = strings.Join(parts, ", ")
		db = db.Order(clause.OrderBy{Expression: combined.expr()})
	}
	if q.offset > 0 {
		db = db.Offset(q.offset)
	}
	if q.limit > 0 {
		db = db.Limit(q.limit)
	}
	return db
}

package cms

import (
	"strings"
	"testing"

	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builderSchema(t *testing.T) *models.SchemaModel {
	t.Helper()
	title := schematic.FieldKey("title")
	schema := models.NewSchema(1, "products", "Products", &title)
	exists := func(string) bool { return true }
	require.NoError(t, schema.AddColumn("title", "Title", schematic.FieldText, nil, exists))
	require.NoError(t, schema.AddColumn("price", "Price", schematic.FieldNumber, nil, exists))
	require.NoError(t, schema.AddColumn("active", "Active", schematic.FieldBoolean, nil, exists))
	require.NoError(t, schema.AddColumn("it's", "Quoted", schematic.FieldText, nil, exists))
	require.NoError(t, schema.AddColumn("legacy", "Legacy", schematic.FieldText, nil, exists))
	require.NoError(t, schema.DeleteColumn("legacy"))
	return schema
}

func allSQL(q *builtQuery) string {
	parts := make([]string, 0, len(q.where)+len(q.order))
	for _, f := range q.where {
		parts = append(parts, f.SQL)
	}
	for _, f := range q.order {
		parts = append(parts, f.SQL)
	}
	return strings.Join(parts, " ")
}

func allVars(q *builtQuery) []interface{} {
	var vars []interface{}
	for _, f := range q.where {
		vars = append(vars, f.Vars...)
	}
	for _, f := range q.order {
		vars = append(vars, f.Vars...)
	}
	return vars
}

func TestQueryBuilder_值与字段键只作为绑定参数(t *testing.T) {
	schema := builderSchema(t)
	injection := `'; DROP TABLE schema_data; --`

	for _, d := range []dialect{sqliteDialect{}, postgresDialect{}} {
		b := newQueryBuilder(d, schema)
		q, err := b.build(QueryOptions{
			Filters: []schematic.SchemaFilter{
				{Field: "title", Condition: schematic.ConditionEqual, Value: schematic.TextValue(injection)},
				{Field: "it's", Condition: schematic.ConditionContains, Value: schematic.TextValue(injection)},
			},
			Search: injection,
		}, true)
		require.NoError(t, err)

		sql := allSQL(q)
		assert.NotContains(t, sql, "DROP TABLE")
		assert.NotContains(t, sql, "it's")
		assert.NotContains(t, sql, "title")
		assert.Contains(t, allVars(q), injection)
	}
}

func TestQueryBuilder_同一字段只投影一次(t *testing.T) {
	schema := builderSchema(t)
	b := newQueryBuilder(sqliteDialect{}, schema)

	_, err := b.build(QueryOptions{
		Filters: []schematic.SchemaFilter{
			{Field: "price", Condition: schematic.ConditionGreater, Value: schematic.IntValue(1)},
			{Field: "price", Condition: schematic.ConditionLess, Value: schematic.IntValue(100)},
		},
		Sort: &schematic.DefaultSort{Field: "price", Order: schematic.SortDesc},
	}, true)
	require.NoError(t, err)
	assert.Len(t, b.projections, 1)
}

func TestQueryBuilder_排序空值在后并按行ID兜底(t *testing.T) {
	schema := builderSchema(t)
	b := newQueryBuilder(sqliteDialect{}, schema)

	q, err := b.build(QueryOptions{Sort: &schematic.DefaultSort{Field: "price", Order: schematic.SortDesc}, Offset: 5, Limit: 10}, true)
	require.NoError(t, err)
	require.Len(t, q.order, 2)
	assert.True(t, strings.HasSuffix(q.order[0].SQL, "DESC NULLS LAST"))
	assert.Equal(t, `"schema_data"."id" ASC`, q.order[1].SQL)
	assert.Equal(t, 5, q.offset)
	assert.Equal(t, 10, q.limit)
}

func TestQueryBuilder_计数不带排序与分页(t *testing.T) {
	schema := builderSchema(t)
	b := newQueryBuilder(sqliteDialect{}, schema)

	q, err := b.build(QueryOptions{
		Filters: []schematic.SchemaFilter{{Field: "active", Condition: schematic.ConditionEqual, Value: schematic.BoolValue(true)}},
		Sort:    &schematic.DefaultSort{Field: "price"},
		Limit:   20,
	}, false)
	require.NoError(t, err)
	assert.Len(t, q.where, 1)
	assert.Empty(t, q.order)
	assert.Zero(t, q.limit)
}

func TestQueryBuilder_PostgreSQL类型转换(t *testing.T) {
	schema := builderSchema(t)
	b := newQueryBuilder(postgresDialect{}, schema)

	q, err := b.build(QueryOptions{
		Filters: []schematic.SchemaFilter{
			{Field: "price", Condition: schematic.ConditionGreaterOrEqual, Value: schematic.TextValue("7")},
			{Field: "active", Condition: schematic.ConditionEqual, Value: schematic.TextValue("on")},
			{Field: "title", Condition: schematic.ConditionContains, Value: schematic.TextValue("50%_off")},
		},
	}, false)
	require.NoError(t, err)
	require.Len(t, q.where, 3)

	assert.Equal(t, `(("schema_data"."field_number" ->> CAST(? AS TEXT)))::numeric >= ?`, q.where[0].SQL)
	assert.Equal(t, []interface{}{"price", int64(7)}, q.where[0].Vars)
	assert.Equal(t, []interface{}{"active", true}, q.where[1].Vars)
	assert.Contains(t, q.where[2].SQL, "ILIKE")
	assert.Equal(t, `%50\%\_off%`, q.where[2].Vars[1])
}

func TestQueryBuilder_非法过滤(t *testing.T) {
	schema := builderSchema(t)

	cases := []schematic.SchemaFilter{
		{Field: "missing", Condition: schematic.ConditionEqual, Value: schematic.TextValue("x")},
		{Field: "legacy", Condition: schematic.ConditionEqual, Value: schematic.TextValue("x")},
		{Field: "price", Condition: schematic.ConditionEqual, Value: schematic.TextValue("abc")},
		{Field: "price", Condition: schematic.ConditionBetween, Value: schematic.ListNumberValue(schematic.IntNumber(1))},
		{Field: "price", Condition: schematic.ConditionBetween, Value: schematic.IntValue(1)},
		{Field: "active", Condition: schematic.ConditionEqual, Value: schematic.TextValue("maybe")},
	}
	for _, filter := range cases {
		b := newQueryBuilder(sqliteDialect{}, schema)
		_, err := b.build(QueryOptions{Filters: []schematic.SchemaFilter{filter}}, true)
		assert.ErrorIs(t, err, schematic.ErrInvalidFilter, "filter %+v", filter)
	}

	b := newQueryBuilder(sqliteDialect{}, schema)
	_, err := b.build(QueryOptions{Sort: &schematic.DefaultSort{Field: "legacy"}}, true)
	assert.ErrorIs(t, err, schematic.ErrColumnNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}

func TestSQLFragment_Wrap(t *testing.T) {
	f := fragment("col(?)", "k")
	wrapped := f.wrap("(%s IS NULL OR %s <> ?)", 3)
	assert.Equal(t, "(col(?) IS NULL OR col(?) <> ?)", wrapped.SQL)
	assert.Equal(t, []interface{}{"k", "k", 3}, wrapped.Vars)
}

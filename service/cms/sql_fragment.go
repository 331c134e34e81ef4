/*
 * @module service/cms/sql_fragment
 * @description SQL 片段与可信标识符。结构部分只能由注册表中的分区列名与固定元数据列构造，取值一律绑定参数
 * @architecture 数据访问层 - 查询构造
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 字段类型/系统字段 -> trustedIdent -> 方言投影 -> sqlFragment{SQL, Vars}
 * @rules 用户输入（包括JSON路径中的字段键）永远不拼接进SQL文本
 * @dependencies github.com/lib/pq, gorm.io/gorm/clause
 * @refs service/cms/query_builder.go
 */

package cms

import (
	"strings"

	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/lib/pq"
	"gorm.io/gorm/clause"
)

// trustedIdent 可信的列标识符，只能在本包内由固定名称构造
type trustedIdent struct {
	table  string
	column string
}

func (i trustedIdent) sql() string {
	return pq.QuoteIdentifier(i.table) + "." + pq.QuoteIdentifier(i.column)
}

var dataTable = models.SchemaDataModel{}.TableName()

var (
	rowIDColumn     = trustedIdent{dataTable, "id"}
	publicIDColumn  = trustedIdent{dataTable, "public_id"}
	createdAtColumn = trustedIdent{dataTable, "created_at"}
	updatedAtColumn = trustedIdent{dataTable, "updated_at"}
)

// partitionColumn 字段类型对应的分区列
func partitionColumn(ft schematic.FieldType) trustedIdent {
	return trustedIdent{dataTable, ft.PartitionName()}
}

// sqlFragment 一段带绑定参数的SQL
type sqlFragment struct {
	SQL  string
	Vars []interface{}
}

func fragment(sql string, vars ...interface{}) sqlFragment {
	return sqlFragment{SQL: sql, Vars: vars}
}

// wrap 以模板包裹片段，模板中的 %s 替换为片段SQL，附加参数追加在片段参数之后
func (f sqlFragment) wrap(template string, vars ...interface{}) sqlFragment {
	out := sqlFragment{
		SQL:  strings.ReplaceAll(template, "%s", f.SQL),
		Vars: make([]interface{}, 0, len(f.Vars)*strings.Count(template, "%s")+len(vars)),
	}
	for i := 0; i < strings.Count(template, "%s"); i++ {
		out.Vars = append(out.Vars, f.Vars...)
	}
	out.Vars = append(out.Vars, vars...)
	return out
}

func (f sqlFragment) expr() clause.Expr {
	return clause.Expr{SQL: f.SQL, Vars: f.Vars, WithoutParentheses: true}
}

// dialect 不同数据库的JSON取值方式
type dialect interface {
	// jsonText 取分区中某个键的文本值
	jsonText(col trustedIdent, key string) sqlFragment
	// jsonTyped 取分区中某个键的可比较值
	jsonTyped(col trustedIdent, key string, ft schematic.FieldType) sqlFragment
	// columnText 把普通列转为文本
	columnText(col trustedIdent) sqlFragment
	// likeOperator 大小写不敏感的模式匹配运算符
	likeOperator() string
}

type sqliteDialect struct{}

// jsonPath 把字段键作为绑定参数使用的JSON路径
func jsonPath(key string) string {
	return `$."` + key + `"`
}

func (sqliteDialect) jsonText(col trustedIdent, key string) sqlFragment {
	return fragment("json_extract("+col.sql()+", ?)", jsonPath(key))
}

func (d sqliteDialect) jsonTyped(col trustedIdent, key string, _ schematic.FieldType) sqlFragment {
	return d.jsonText(col, key)
}

func (sqliteDialect) columnText(col trustedIdent) sqlFragment {
	return fragment("CAST(" + col.sql() + " AS TEXT)")
}

func (sqliteDialect) likeOperator() string {
	return "LIKE"
}

type postgresDialect struct{}

func (postgresDialect) jsonText(col trustedIdent, key string) sqlFragment {
	return fragment("("+col.sql()+" ->> CAST(? AS TEXT))", key)
}

func (d postgresDialect) jsonTyped(col trustedIdent, key string, ft schematic.FieldType) sqlFragment {
	switch ft {
	case schematic.FieldNumber:
		return d.jsonText(col, key).wrap("(%s)::numeric")
	case schematic.FieldBoolean:
		return d.jsonText(col, key).wrap("(%s)::boolean")
	}
	return d.jsonText(col, key)
}

func (postgresDialect) columnText(col trustedIdent) sqlFragment {
	return fragment("CAST(" + col.sql() + " AS TEXT)")
}

func (postgresDialect) likeOperator() string {
	return "ILIKE"
}

// dialectFor 按 gorm 方言名选择
func dialectFor(name string) dialect {
	if name == "postgres" {
		return postgresDialect{}
	}
	return sqliteDialect{}
}

// escapeLike 转义 LIKE 模式中的通配符，配合 ESCAPE '\' 使用
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

/*
 * @module service/models/schema_data_test
 * @description 数据行模型测试：分区写入、外部值映射、复制与单字段更新，以及经 SQLite 持久化后的往返
 * @architecture 测试层 - 数据模型验证
 * @stateFlow 建表定义 -> 写入字段 -> 持久化 -> 读取 -> 断言
 * @rules 每种字段类型写入后按原样读出；已删除字段不再读出
 * @dependencies testing, testify, gorm, sqlite
 */

package models

import (
	"testing"
	"time"

	"addonhub-service/service/schematic"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// SchemaDataModelTestSuite 数据行模型测试套件
type SchemaDataModelTestSuite struct {
	suite.Suite
	testDB *ModelTestDB
	schema *SchemaModel
	values map[schematic.FieldKey]schematic.SimpleValue
}

func (suite *SchemaDataModelTestSuite) SetupSuite() {
	suite.testDB = NewModelTestDB()
}

func (suite *SchemaDataModelTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

func (suite *SchemaDataModelTestSuite) SetupTest() {
	suite.testDB.CleanDB()

	ref := uuid.MustParse("0190b1a2-7c3e-7d4f-8a1b-2c3d4e5f6071")
	suite.values = map[schematic.FieldKey]schematic.SimpleValue{
		"f_text":     schematic.TextValue("你好"),
		"f_number":   schematic.FloatValue(19.5),
		"f_url":      schematic.TextValue("https://example.com"),
		"f_email":    schematic.TextValue("a@example.com"),
		"f_address":  schematic.TextValue("上海"),
		"f_phone":    schematic.TextValue("123"),
		"f_bool":     schematic.BoolValue(true),
		"f_datetime": schematic.DateTimeValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
		"f_date":     schematic.DateValue(schematic.Date{Year: 2024, Month: time.January, Day: 2}),
		"f_time":     schematic.TimeValue(schematic.TimeOfDay{Hour: 3, Minute: 4, Second: 5}),
		"f_rich":     schematic.TextValue("<p>x</p>"),
		"f_richtext": schematic.TextValue("<i>y</i>"),
		"f_ref":      schematic.TextValue(ref.String()),
		"f_multiref": schematic.ListStringValue(ref.String()),
		"f_gallery":  schematic.ListStringValue(ref.String()),
		"f_doc":      schematic.TextValue(ref.String()),
		"f_multidoc": schematic.ListStringValue(ref.String()),
		"f_image":    schematic.TextValue(ref.String()),
		"f_video":    schematic.TextValue(ref.String()),
		"f_audio":    schematic.TextValue(ref.String()),
		"f_tags":     schematic.ListNumberValue(schematic.IntNumber(7)),
		"f_array":    schematic.ArrayValue([]interface{}{"a", 2.5}),
		"f_object":   schematic.ObjectValue(map[string]interface{}{"k": true}),
	}
	types := map[schematic.FieldKey]schematic.FieldType{
		"f_text": schematic.FieldText, "f_number": schematic.FieldNumber, "f_url": schematic.FieldURL,
		"f_email": schematic.FieldEmail, "f_address": schematic.FieldAddress, "f_phone": schematic.FieldPhone,
		"f_bool": schematic.FieldBoolean, "f_datetime": schematic.FieldDateTime, "f_date": schematic.FieldDate,
		"f_time": schematic.FieldTime, "f_rich": schematic.FieldRichContent, "f_richtext": schematic.FieldRichText,
		"f_ref": schematic.FieldReference, "f_multiref": schematic.FieldMultiReference,
		"f_gallery": schematic.FieldMediaGallery, "f_doc": schematic.FieldDocument,
		"f_multidoc": schematic.FieldMultiDocument, "f_image": schematic.FieldImage,
		"f_video": schematic.FieldVideo, "f_audio": schematic.FieldAudio, "f_tags": schematic.FieldTags,
		"f_array": schematic.FieldArray, "f_object": schematic.FieldObject,
	}
	suite.Require().Len(types, len(schematic.AllFieldTypes()))

	// 绕过字段数量上限，直接构造字段表
	suite.schema = NewSchema(1, "all_types", "All Types", nil)
	index := len(suite.schema.Fields)
	for _, key := range []schematic.FieldKey{"f_text", "f_number", "f_url", "f_email", "f_address", "f_phone",
		"f_bool", "f_datetime", "f_date", "f_time", "f_rich", "f_richtext", "f_ref", "f_multiref", "f_gallery",
		"f_doc", "f_multidoc", "f_image", "f_video", "f_audio", "f_tags", "f_array", "f_object"} {
		suite.schema.Fields[key] = schematic.SchematicField{DisplayName: string(key), FieldType: types[key], Index: index}
		index++
	}
	suite.Require().NoError(suite.testDB.DB.Create(suite.schema).Error)
}

func (suite *SchemaDataModelTestSuite) newRow() *SchemaDataModel {
	row, err := NewSchemaData(suite.schema.AddonID, suite.schema.ID)
	suite.Require().NoError(err)
	return row
}

func (suite *SchemaDataModelTestSuite) TestAllTypesPersistRoundTrip() {
	row := suite.newRow()
	for key, in := range suite.values {
		field := suite.schema.Fields[key]
		fv, err := field.FieldType.ParseValue(in)
		suite.Require().NoError(err, "解析 %s 失败", key)
		suite.Require().NoError(row.InsertField(key, false, field.FieldType, fv))
	}
	suite.Require().NoError(suite.testDB.DB.Create(row).Error)

	var loaded SchemaDataModel
	suite.Require().NoError(suite.testDB.DB.First(&loaded, "public_id = ?", row.PublicID).Error)

	out := loaded.ToExternalMap(suite.schema.Fields, nil)
	for key, in := range suite.values {
		suite.Equal(in, out[string(key)], "字段 %s 往返不一致", key)
	}
	suite.Equal(schematic.TextValue(row.PublicID.String()), out["_id"])
	suite.Equal(schematic.TextValue(uuid.Nil.String()), out["_owner"])
	_, ok := out["_createdAt"].DateTime()
	suite.True(ok)
}

func (suite *SchemaDataModelTestSuite) TestDeletedColumnHidden() {
	row := suite.newRow()
	suite.Require().NoError(row.InsertField("f_text", false, schematic.FieldText, schematic.TextField("Widget")))

	out := row.ToExternalMap(suite.schema.Fields, nil)
	suite.Equal(schematic.TextValue("Widget"), out["f_text"])

	suite.Require().NoError(suite.schema.DeleteColumn("f_text"))
	out = row.ToExternalMap(suite.schema.Fields, nil)
	_, present := out["f_text"]
	suite.False(present, "已删除字段不应读出")
}

func (suite *SchemaDataModelTestSuite) TestRequestedColumnsAndOrphanArrayKeys() {
	row := suite.newRow()
	suite.Require().NoError(row.InsertField("f_text", false, schematic.FieldText, schematic.TextField("a")))
	suite.Require().NoError(row.InsertField("f_number", false, schematic.FieldNumber, schematic.NumberField(schematic.IntNumber(3))))
	suite.Require().NoError(row.InsertField("loose", true, schematic.FieldText, schematic.TextField("x")))

	out := row.ToExternalMap(suite.schema.Fields, []string{"f_text"})
	suite.Len(out, 1)
	suite.Equal(schematic.TextValue("a"), out["f_text"])

	out = row.ToExternalMap(suite.schema.Fields, nil)
	suite.Equal(schematic.ListStringValue("x"), out["loose[]"])
}

func (suite *SchemaDataModelTestSuite) TestDeletedColumnArrayContextHidden() {
	fields := schematic.FieldMap{}
	for key, field := range suite.schema.Fields {
		fields[key] = field
	}
	fields["gone"] = schematic.SchematicField{DisplayName: "gone", FieldType: schematic.FieldText, Index: len(fields), IsDeleted: true}

	row := suite.newRow()
	suite.Require().NoError(row.InsertField("gone", true, schematic.FieldText, schematic.TextField("old")))
	suite.Require().NoError(row.InsertField("loose", true, schematic.FieldText, schematic.TextField("x")))

	out := row.ToExternalMap(fields, nil)
	suite.NotContains(out, "gone")
	suite.NotContains(out, "gone[]")
	suite.Equal(schematic.ListStringValue("x"), out["loose[]"])
}

func (suite *SchemaDataModelTestSuite) TestSystemFieldsNotWritable() {
	row := suite.newRow()
	err := row.InsertField(schematic.KeyID, false, schematic.FieldText, schematic.TextField("x"))
	suite.ErrorIs(err, schematic.ErrSystemFieldImmutable)
	err = row.SetField(schematic.KeyUpdatedAt, schematic.FieldDateTime, nil)
	suite.ErrorIs(err, schematic.ErrSystemFieldImmutable)
}

func (suite *SchemaDataModelTestSuite) TestSetField() {
	row := suite.newRow()

	err := row.SetField("f_text", schematic.FieldText, nil)
	suite.ErrorIs(err, ErrFieldValueMissing)

	suite.Require().NoError(row.SetField("f_text", schematic.FieldText, schematic.TextField("v1")))
	fv, ok := row.Field("f_text", schematic.FieldText)
	suite.True(ok)
	suite.Equal(schematic.TextField("v1"), fv)

	suite.Require().NoError(row.SetField("f_text", schematic.FieldText, nil))
	_, ok = row.Field("f_text", schematic.FieldText)
	suite.False(ok)

	err = row.SetField("f_number", schematic.FieldNumber, schematic.TextField("x"))
	suite.ErrorIs(err, schematic.ErrTypeMismatch)
}

func (suite *SchemaDataModelTestSuite) TestDuplicate() {
	row := suite.newRow()
	suite.Require().NoError(row.InsertField("f_tags", false, schematic.FieldTags, schematic.ListNumberField{1, 2}))
	suite.Require().NoError(suite.testDB.DB.Create(row).Error)

	dup, err := row.Duplicate()
	suite.Require().NoError(err)
	suite.NotEqual(row.PublicID, dup.PublicID)
	suite.Zero(dup.ID)

	// 修改副本不影响原行
	dup.FieldTags["f_tags"][0] = 99
	suite.Equal(int64(1), row.FieldTags["f_tags"][0])

	suite.Require().NoError(suite.testDB.DB.Create(dup).Error)
	var count int64
	suite.testDB.DB.Model(&SchemaDataModel{}).Where("schema_id = ?", suite.schema.ID).Count(&count)
	suite.Equal(int64(2), count)
}

func TestSchemaDataModelTestSuite(t *testing.T) {
	suite.Run(t, new(SchemaDataModelTestSuite))
}

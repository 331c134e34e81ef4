/*
 * @module service/schematic/field_type_test
 * @description 字段类型注册表单元测试
 * @architecture 测试层 - 单元测试
 */

package schematic

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldType_分区列名唯一(t *testing.T) {
	seen := map[string]FieldType{}
	for _, ft := range AllFieldTypes() {
		name := ft.PartitionName()
		require.True(t, strings.HasPrefix(name, "field_"), "分区列名应以 field_ 开头: %s", name)
		prev, dup := seen[name]
		assert.False(t, dup, "%s 与 %s 使用了同一分区", ft, prev)
		seen[name] = ft
	}
	assert.Len(t, seen, 23)
}

func TestFieldType_显示名称与上限(t *testing.T) {
	assert.Equal(t, "True/False", FieldBoolean.DisplayName())
	assert.Equal(t, "Date & Time", FieldDateTime.DisplayName())
	assert.Equal(t, "Multi Reference", FieldMultiReference.DisplayName())
	assert.Equal(t, "field_bool", FieldBoolean.PartitionName())
	assert.Equal(t, "field_gallery", FieldMediaGallery.PartitionName())

	limit, ok := FieldNumber.MaxBytesLength()
	assert.True(t, ok)
	assert.Equal(t, 10, limit)

	_, ok = FieldReference.MaxBytesLength()
	assert.False(t, ok, "引用类型不限制长度")

	assert.True(t, FieldImage.IsUploadFileType())
	assert.True(t, FieldMultiDocument.IsUploadFileType())
	assert.False(t, FieldMediaGallery.IsUploadFileType())
	assert.False(t, FieldText.IsUploadFileType())
}

func TestFieldType_JSON编码为类型名(t *testing.T) {
	data, err := json.Marshal(FieldDateTime)
	require.NoError(t, err)
	assert.Equal(t, `"DateTime"`, string(data))

	var ft FieldType
	require.NoError(t, json.Unmarshal([]byte(`"multiReference"`), &ft))
	assert.Equal(t, FieldMultiReference, ft)

	require.NoError(t, json.Unmarshal([]byte(`6`), &ft))
	assert.Equal(t, FieldBoolean, ft)

	err = json.Unmarshal([]byte(`"Blob"`), &ft)
	assert.ErrorIs(t, err, ErrUnknownFieldType)
}

func TestFieldType_数据库序号往返(t *testing.T) {
	for _, ft := range AllFieldTypes() {
		v, err := ft.Value()
		require.NoError(t, err)
		var back FieldType
		require.NoError(t, back.Scan(v))
		assert.Equal(t, ft, back)
	}
	var bad FieldType
	assert.Error(t, bad.Scan(int64(99)))
}

// sampleValues 每种字段类型的一个合法外部值
func sampleValues() map[FieldType]SimpleValue {
	ref := uuid.MustParse("0190b1a2-7c3e-7d4f-8a1b-2c3d4e5f6071")
	ref2 := uuid.MustParse("0190b1a2-7c3e-7d4f-8a1b-2c3d4e5f6072")
	return map[FieldType]SimpleValue{
		FieldText:           TextValue("你好"),
		FieldNumber:         IntValue(42),
		FieldURL:            TextValue("https://example.com/a?b=c"),
		FieldEmail:          TextValue("a@example.com"),
		FieldAddress:        TextValue("北京市海淀区"),
		FieldPhone:          TextValue("+86 138 0013 8000"),
		FieldBoolean:        BoolValue(true),
		FieldDateTime:       DateTimeValue(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)),
		FieldDate:           DateValue(Date{Year: 2024, Month: time.May, Day: 6}),
		FieldTime:           TimeValue(TimeOfDay{Hour: 7, Minute: 8, Second: 9}),
		FieldRichContent:    TextValue("<p>rich</p>"),
		FieldRichText:       TextValue("<b>bold</b>"),
		FieldReference:      TextValue(ref.String()),
		FieldMultiReference: ListStringValue(ref.String(), ref2.String()),
		FieldMediaGallery:   ListStringValue(ref.String()),
		FieldDocument:       TextValue(ref.String()),
		FieldMultiDocument:  ListStringValue(ref2.String()),
		FieldImage:          TextValue(ref.String()),
		FieldVideo:          TextValue(ref2.String()),
		FieldAudio:          TextValue(ref.String()),
		FieldTags:           ListNumberValue(IntNumber(1), IntNumber(3)),
		FieldArray:          ArrayValue([]interface{}{"a", 1.5, true}),
		FieldObject:         ObjectValue(map[string]interface{}{"k": "v", "n": 2.0}),
	}
}

func TestParseValue_每种类型往返一致(t *testing.T) {
	samples := sampleValues()
	require.Len(t, samples, len(AllFieldTypes()))

	for ft, in := range samples {
		fv, err := ft.ParseValue(in)
		require.NoError(t, err, "类型 %s 解析失败", ft)
		assert.Equal(t, in, ToSimpleValue(fv), "类型 %s 往返不一致", ft)
	}
}

func TestParseValue_形状不符(t *testing.T) {
	_, err := FieldNumber.ParseValue(BoolValue(true))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = FieldReference.ParseValue(TextValue("not-a-uuid"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = FieldURL.ParseValue(TextValue("example.com"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = FieldTags.ParseValue(ListStringValue("red"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestParseValue_文本自动转换(t *testing.T) {
	fv, err := FieldNumber.ParseValue(TextValue(" 12 "))
	require.NoError(t, err)
	assert.Equal(t, IntValue(12), ToSimpleValue(fv))

	fv, err = FieldNumber.ParseValue(TextValue("2.5"))
	require.NoError(t, err)
	assert.Equal(t, FloatValue(2.5), ToSimpleValue(fv))

	for _, s := range []string{"on", "TRUE", "1", "t"} {
		fv, err = FieldBoolean.ParseValue(TextValue(s))
		require.NoError(t, err, s)
		assert.Equal(t, BooleanField(true), fv, s)
	}
	for _, s := range []string{"off", "False", "0"} {
		fv, err = FieldBoolean.ParseValue(TextValue(s))
		require.NoError(t, err, s)
		assert.Equal(t, BooleanField(false), fv, s)
	}
	_, err = FieldBoolean.ParseValue(TextValue("maybe"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	fv, err = FieldDateTime.ParseValue(TextValue("2024-01-02T03:04:05"))
	require.NoError(t, err)
	assert.Equal(t, DateTimeValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), ToSimpleValue(fv))

	fv, err = FieldDateTime.ParseValue(TextValue("2024-01-02T11:04:05+08:00"))
	require.NoError(t, err)
	assert.Equal(t, DateTimeValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), ToSimpleValue(fv))

	fv, err = FieldDate.ParseValue(TextValue("2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, DateField(Date{Year: 2024, Month: time.February, Day: 29}), fv)

	fv, err = FieldArray.ParseValue(ListStringValue("x", "y"))
	require.NoError(t, err)
	assert.Equal(t, ListStringValue("x", "y"), ToSimpleValue(fv))
}

func TestParseValueBytes(t *testing.T) {
	_, err := FieldNumber.ParseValueBytes([]byte("12345678901"))
	assert.ErrorIs(t, err, ErrValueTooLarge)

	v, err := FieldNumber.ParseValueBytes([]byte("15"))
	require.NoError(t, err)
	assert.Equal(t, IntValue(15), v)

	_, err = FieldNumber.ParseValueBytes([]byte("1.2.3"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	v, err = FieldMultiReference.ParseValueBytes([]byte("a, b,,c"))
	require.NoError(t, err)
	assert.Equal(t, ListStringValue("a", "b", "c"), v)

	v, err = FieldTags.ParseValueBytes([]byte("red, blue"))
	require.NoError(t, err)
	assert.Equal(t, TextValue("red, blue"), v)

	_, err = FieldBoolean.ParseValueBytes([]byte("true"))
	assert.ErrorIs(t, err, ErrValueTooLarge, "布尔导入值最多1字节")

	v, err = FieldBoolean.ParseValueBytes([]byte("1"))
	require.NoError(t, err)
	assert.Equal(t, TextValue("1"), v)

	v, err = FieldObject.ParseValueBytes([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, ObjectValue(map[string]interface{}{"a": 1.0}), v)
}

/*
 * @module service/schematic/value
 * @description 外部通用值 SimpleValue，按JSON形状区分文本、数字、布尔、日期时间、列表与对象
 * @architecture 领域模型层 - 值对象
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow JSON -> SimpleValue -> FieldValue -> 分区存储 -> SimpleValue -> JSON
 * @rules JSON编码不带类型标签，解码时按形状推断；日期时间以固定格式字符串输出
 * @dependencies encoding/json, github.com/spf13/cast
 * @refs service/schematic/field_value.go
 */

package schematic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ValueKind SimpleValue 的形状
type ValueKind int

const (
	KindText ValueKind = iota
	KindNumber
	KindBoolean
	KindDateTime
	KindDate
	KindTime
	KindListString
	KindListNumber
	KindArray
	KindObject
)

var valueKindNames = [...]string{
	KindText:       "Text",
	KindNumber:     "Number",
	KindBoolean:    "Boolean",
	KindDateTime:   "DateTime",
	KindDate:       "Date",
	KindTime:       "Time",
	KindListString: "ListString",
	KindListNumber: "ListNumber",
	KindArray:      "Array",
	KindObject:     "Object",
}

func (k ValueKind) String() string {
	if k < 0 || int(k) >= len(valueKindNames) {
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
	return valueKindNames[k]
}

// SimpleValue 外部通用值
type SimpleValue struct {
	kind       ValueKind
	text       string
	number     Number
	boolean    bool
	dateTime   time.Time
	date       Date
	timeOfDay  TimeOfDay
	listString []string
	listNumber []Number
	array      []interface{}
	object     interface{}
}

// TextValue 文本
func TextValue(s string) SimpleValue {
	return SimpleValue{kind: KindText, text: s}
}

// NumberValue 数字
func NumberValue(n Number) SimpleValue {
	return SimpleValue{kind: KindNumber, number: n}
}

// IntValue 整数
func IntValue(i int64) SimpleValue {
	return NumberValue(IntNumber(i))
}

// FloatValue 浮点数
func FloatValue(f float64) SimpleValue {
	return NumberValue(FloatNumber(f))
}

// BoolValue 布尔
func BoolValue(b bool) SimpleValue {
	return SimpleValue{kind: KindBoolean, boolean: b}
}

// DateTimeValue 日期时间，统一为UTC秒精度
func DateTimeValue(t time.Time) SimpleValue {
	return SimpleValue{kind: KindDateTime, dateTime: NormalizeDateTime(t)}
}

// DateValue 日期
func DateValue(d Date) SimpleValue {
	return SimpleValue{kind: KindDate, date: d}
}

// TimeValue 时刻
func TimeValue(t TimeOfDay) SimpleValue {
	return SimpleValue{kind: KindTime, timeOfDay: t}
}

// ListStringValue 字符串列表
func ListStringValue(items ...string) SimpleValue {
	if items == nil {
		items = []string{}
	}
	return SimpleValue{kind: KindListString, listString: items}
}

// ListNumberValue 数字列表
func ListNumberValue(items ...Number) SimpleValue {
	if items == nil {
		items = []Number{}
	}
	return SimpleValue{kind: KindListNumber, listNumber: items}
}

// ArrayValue 任意元素列表，数字统一为 float64
func ArrayValue(items []interface{}) SimpleValue {
	normalized := make([]interface{}, len(items))
	for i, item := range items {
		normalized[i] = normalizeJSON(item)
	}
	return SimpleValue{kind: KindArray, array: normalized}
}

// ObjectValue 任意JSON值，通常为对象
func ObjectValue(v interface{}) SimpleValue {
	return SimpleValue{kind: KindObject, object: normalizeJSON(v)}
}

// Kind 返回值形状
func (v SimpleValue) Kind() ValueKind {
	return v.kind
}

// Text 取文本
func (v SimpleValue) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// Number 取数字
func (v SimpleValue) Number() (Number, bool) {
	return v.number, v.kind == KindNumber
}

// Bool 取布尔
func (v SimpleValue) Bool() (bool, bool) {
	return v.boolean, v.kind == KindBoolean
}

// DateTime 取日期时间
func (v SimpleValue) DateTime() (time.Time, bool) {
	return v.dateTime, v.kind == KindDateTime
}

// Date 取日期
func (v SimpleValue) Date() (Date, bool) {
	return v.date, v.kind == KindDate
}

// Time 取时刻
func (v SimpleValue) Time() (TimeOfDay, bool) {
	return v.timeOfDay, v.kind == KindTime
}

// ListString 取字符串列表
func (v SimpleValue) ListString() ([]string, bool) {
	return v.listString, v.kind == KindListString
}

// ListNumber 取数字列表
func (v SimpleValue) ListNumber() ([]Number, bool) {
	return v.listNumber, v.kind == KindListNumber
}

// Array 取通用列表
func (v SimpleValue) Array() ([]interface{}, bool) {
	return v.array, v.kind == KindArray
}

// Object 取对象
func (v SimpleValue) Object() (interface{}, bool) {
	return v.object, v.kind == KindObject
}

// Items 将任意列表形状展开为通用元素列表，非列表返回 false
func (v SimpleValue) Items() ([]interface{}, bool) {
	switch v.kind {
	case KindListString:
		items := make([]interface{}, len(v.listString))
		for i, s := range v.listString {
			items[i] = s
		}
		return items, true
	case KindListNumber:
		items := make([]interface{}, len(v.listNumber))
		for i, n := range v.listNumber {
			items[i] = n.Float64()
		}
		return items, true
	case KindArray:
		return v.array, true
	}
	return nil, false
}

// AsText 将标量形状转为文本，用于过滤与导入
func (v SimpleValue) AsText() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.number.String()
	case KindBoolean:
		return cast.ToString(v.boolean)
	case KindDateTime:
		return FormatDateTime(v.dateTime)
	case KindDate:
		return v.date.String()
	case KindTime:
		return v.timeOfDay.String()
	case KindListString:
		return strings.Join(v.listString, ",")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// MarshalJSON 按形状输出，不带类型标签
func (v SimpleValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return v.number.MarshalJSON()
	case KindBoolean:
		return json.Marshal(v.boolean)
	case KindDateTime:
		return json.Marshal(FormatDateTime(v.dateTime))
	case KindDate:
		return v.date.MarshalJSON()
	case KindTime:
		return v.timeOfDay.MarshalJSON()
	case KindListString:
		return json.Marshal(v.listString)
	case KindListNumber:
		return json.Marshal(v.listNumber)
	case KindArray:
		return json.Marshal(v.array)
	case KindObject:
		return json.Marshal(v.object)
	}
	return nil, fmt.Errorf("%w: 未知的值形状 %d", ErrTypeMismatch, int(v.kind))
}

// UnmarshalJSON 按JSON形状推断
func (v *SimpleValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromInterface 将解码后的任意JSON值转换为 SimpleValue
func FromInterface(raw interface{}) (SimpleValue, error) {
	switch val := raw.(type) {
	case SimpleValue:
		return val, nil
	case string:
		return TextValue(val), nil
	case bool:
		return BoolValue(val), nil
	case json.Number:
		n, err := numberFromJSON(val)
		if err != nil {
			return SimpleValue{}, err
		}
		return NumberValue(n), nil
	case float32, float64:
		return FloatValue(cast.ToFloat64(val)), nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return IntValue(cast.ToInt64(val)), nil
	case time.Time:
		return DateTimeValue(val), nil
	case []string:
		return ListStringValue(val...), nil
	case []interface{}:
		return listFromInterfaces(val), nil
	case map[string]interface{}:
		return ObjectValue(val), nil
	case nil:
		return ObjectValue(nil), nil
	}
	return SimpleValue{}, fmt.Errorf("%w: 不支持的值类型 %T", ErrTypeMismatch, raw)
}

func listFromInterfaces(items []interface{}) SimpleValue {
	if len(items) == 0 {
		return ListStringValue()
	}
	allStrings, allNumbers := true, true
	for _, item := range items {
		switch item.(type) {
		case string:
			allNumbers = false
		case json.Number, float64, float32, int, int64, int32:
			allStrings = false
		default:
			allStrings, allNumbers = false, false
		}
	}
	switch {
	case allStrings:
		list := make([]string, len(items))
		for i, item := range items {
			list[i] = item.(string)
		}
		return ListStringValue(list...)
	case allNumbers:
		list := make([]Number, len(items))
		for i, item := range items {
			list[i] = numberFromInterface(item)
		}
		return ListNumberValue(list...)
	}
	return ArrayValue(items)
}

func numberFromInterface(item interface{}) Number {
	switch val := item.(type) {
	case json.Number:
		if n, err := numberFromJSON(val); err == nil {
			return n
		}
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return IntNumber(int64(val))
		}
		return FloatNumber(val)
	case float32:
		return FloatNumber(float64(val))
	}
	return IntNumber(cast.ToInt64(item))
}

// normalizeJSON 递归地把数字统一为 float64，使其与从存储解码的结果一致
func normalizeJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		f, _ := val.Float64()
		return f
	case int, int8, int16, int32, int64, uint8, uint16, uint32, uint64, float32:
		return cast.ToFloat64(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeJSON(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeJSON(item)
		}
		return out
	}
	return v
}

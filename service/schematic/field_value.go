/*
 * @module service/schematic/field_value
 * @description 字段类型化取值：按字段类型把 SimpleValue 解析为内部值，并在读取时还原为 SimpleValue
 * @architecture 领域模型层 - 值转换
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow SimpleValue -> ParseValue -> FieldValue -> 分区 -> ToSimpleValue
 * @rules 形状不符返回 ErrTypeMismatch；文本可按类型自动转换；导入原始字节受 MaxBytesLength 限制
 * @dependencies github.com/google/uuid
 * @refs service/models/schema_data.go
 */

package schematic

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldValue 某一字段类型的内部取值
type FieldValue interface {
	isFieldValue()
}

type (
	TextField           string
	URLField            string
	EmailField          string
	PhoneField          string
	AddressField        string
	NumberField         Number
	BooleanField        bool
	DateTimeField       time.Time
	DateField           Date
	TimeField           TimeOfDay
	ReferenceField      uuid.UUID
	MultiReferenceField []uuid.UUID
	ListNumberField     []int64
	ArrayField          []interface{}
	ObjectField         struct{ Value interface{} }
)

func (TextField) isFieldValue()           {}
func (URLField) isFieldValue()            {}
func (EmailField) isFieldValue()          {}
func (PhoneField) isFieldValue()          {}
func (AddressField) isFieldValue()        {}
func (NumberField) isFieldValue()         {}
func (BooleanField) isFieldValue()        {}
func (DateTimeField) isFieldValue()       {}
func (DateField) isFieldValue()           {}
func (TimeField) isFieldValue()           {}
func (ReferenceField) isFieldValue()      {}
func (MultiReferenceField) isFieldValue() {}
func (ListNumberField) isFieldValue()     {}
func (ArrayField) isFieldValue()          {}
func (ObjectField) isFieldValue()         {}

func mismatch(t FieldType, v SimpleValue) error {
	return fmt.Errorf("%w: %s 字段不接受 %s", ErrTypeMismatch, t, v.Kind())
}

// ParseValue 将外部值解析为该字段类型的内部值
func (t FieldType) ParseValue(v SimpleValue) (FieldValue, error) {
	switch t {
	case FieldText, FieldRichText, FieldRichContent:
		if s, ok := v.Text(); ok {
			return TextField(s), nil
		}
	case FieldEmail:
		if s, ok := v.Text(); ok {
			return EmailField(s), nil
		}
	case FieldPhone:
		if s, ok := v.Text(); ok {
			return PhoneField(s), nil
		}
	case FieldAddress:
		if s, ok := v.Text(); ok {
			return AddressField(s), nil
		}
	case FieldURL:
		if s, ok := v.Text(); ok {
			u, err := url.Parse(strings.TrimSpace(s))
			if err != nil || u.Scheme == "" || u.Host == "" {
				return nil, fmt.Errorf("%w: %q 不是有效的URL", ErrTypeMismatch, s)
			}
			return URLField(u.String()), nil
		}
	case FieldNumber:
		if n, ok := v.Number(); ok {
			return NumberField(n), nil
		}
		if s, ok := v.Text(); ok {
			n, err := ParseNumber(s)
			if err != nil {
				return nil, err
			}
			return NumberField(n), nil
		}
	case FieldBoolean:
		if b, ok := v.Bool(); ok {
			return BooleanField(b), nil
		}
		if s, ok := v.Text(); ok {
			b, err := ParseBool(s)
			if err != nil {
				return nil, err
			}
			return BooleanField(b), nil
		}
	case FieldDateTime:
		if dt, ok := v.DateTime(); ok {
			return DateTimeField(dt), nil
		}
		if s, ok := v.Text(); ok {
			dt, err := ParseDateTime(s)
			if err != nil {
				return nil, err
			}
			return DateTimeField(dt), nil
		}
	case FieldDate:
		if d, ok := v.Date(); ok {
			return DateField(d), nil
		}
		if s, ok := v.Text(); ok {
			d, err := ParseDate(s)
			if err != nil {
				return nil, err
			}
			return DateField(d), nil
		}
	case FieldTime:
		if tod, ok := v.Time(); ok {
			return TimeField(tod), nil
		}
		if s, ok := v.Text(); ok {
			tod, err := ParseTimeOfDay(s)
			if err != nil {
				return nil, err
			}
			return TimeField(tod), nil
		}
	case FieldReference, FieldDocument, FieldImage, FieldVideo, FieldAudio:
		if s, ok := v.Text(); ok {
			id, err := uuid.Parse(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("%w: %q 不是有效的ID", ErrTypeMismatch, s)
			}
			return ReferenceField(id), nil
		}
	case FieldMultiReference, FieldMediaGallery, FieldMultiDocument:
		if list, ok := v.ListString(); ok {
			ids := make(MultiReferenceField, 0, len(list))
			for _, s := range list {
				id, err := uuid.Parse(strings.TrimSpace(s))
				if err != nil {
					return nil, fmt.Errorf("%w: %q 不是有效的ID", ErrTypeMismatch, s)
				}
				ids = append(ids, id)
			}
			return ids, nil
		}
	case FieldTags:
		if list, ok := v.ListNumber(); ok {
			ids := make(ListNumberField, len(list))
			for i, n := range list {
				ids[i] = n.Int64()
			}
			return ids, nil
		}
	case FieldArray:
		if items, ok := v.Items(); ok {
			return ArrayField(items), nil
		}
	case FieldObject:
		if obj, ok := v.Object(); ok {
			return ObjectField{Value: obj}, nil
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFieldType, int(t))
	}
	return nil, mismatch(t, v)
}

// ToSimpleValue 将内部值还原为外部值
func ToSimpleValue(v FieldValue) SimpleValue {
	switch val := v.(type) {
	case TextField:
		return TextValue(string(val))
	case URLField:
		return TextValue(string(val))
	case EmailField:
		return TextValue(string(val))
	case PhoneField:
		return TextValue(string(val))
	case AddressField:
		return TextValue(string(val))
	case NumberField:
		return NumberValue(Number(val))
	case BooleanField:
		return BoolValue(bool(val))
	case DateTimeField:
		return DateTimeValue(time.Time(val))
	case DateField:
		return DateValue(Date(val))
	case TimeField:
		return TimeValue(TimeOfDay(val))
	case ReferenceField:
		return TextValue(uuid.UUID(val).String())
	case MultiReferenceField:
		list := make([]string, len(val))
		for i, id := range val {
			list[i] = id.String()
		}
		return ListStringValue(list...)
	case ListNumberField:
		list := make([]Number, len(val))
		for i, id := range val {
			list[i] = IntNumber(id)
		}
		return ListNumberValue(list...)
	case ArrayField:
		return listFromInterfaces(val)
	case ObjectField:
		return ObjectValue(val.Value)
	}
	return ObjectValue(nil)
}

// ParseBool 文本布尔：1/on/true 与 0/off/false 大小写不敏感，其余交给 strconv
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true":
		return true, nil
	case "0", "off", "false":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("%w: %q 不是布尔值", ErrTypeMismatch, s)
	}
	return b, nil
}

// ParseValueBytes 把导入的原始字节转换为外部值，超过长度上限返回 ErrValueTooLarge
func (t FieldType) ParseValueBytes(raw []byte) (SimpleValue, error) {
	if limit, ok := t.MaxBytesLength(); ok && len(raw) > limit {
		return SimpleValue{}, fmt.Errorf("%w: %s 字段最多 %d 字节，实际 %d", ErrValueTooLarge, t, limit, len(raw))
	}
	s := string(raw)
	switch t {
	case FieldNumber:
		var n Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return SimpleValue{}, fmt.Errorf("%w: 数字字段格式错误: %v", ErrTypeMismatch, err)
		}
		return NumberValue(n), nil
	case FieldMultiReference, FieldMediaGallery, FieldMultiDocument:
		return ListStringValue(splitList(s)...), nil
	case FieldArray:
		var items []interface{}
		if err := json.Unmarshal(raw, &items); err == nil {
			return listFromInterfaces(items), nil
		}
		return ListStringValue(splitList(s)...), nil
	case FieldObject:
		var sv SimpleValue
		if err := json.Unmarshal(raw, &sv); err != nil {
			return SimpleValue{}, fmt.Errorf("%w: 对象字段需要JSON", ErrTypeMismatch)
		}
		return sv, nil
	}
	// 上传类字段只携带文件ID；标签保留原文，由导入流程按名称解析
	return TextValue(s), nil
}

func splitList(s string) []string {
	items := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

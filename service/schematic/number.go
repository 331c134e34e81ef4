package schematic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Number 整数或浮点数，整数经过JSON往返后仍保持整数
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// IntNumber 构造整数
func IntNumber(v int64) Number {
	return Number{i: v}
}

// FloatNumber 构造浮点数
func FloatNumber(v float64) Number {
	return Number{f: v, isFloat: true}
}

// IsFloat 是否为浮点数
func (n Number) IsFloat() bool {
	return n.isFloat
}

// Int64 返回整数值，浮点数截断
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 返回浮点值
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// Interface 返回适合作为SQL绑定参数的值
func (n Number) Interface() interface{} {
	if n.isFloat {
		return n.f
	}
	return n.i
}

func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// ParseNumber 文本先按整数解析，失败再按浮点数解析
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntNumber(i), nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || s == "" {
		return Number{}, fmt.Errorf("%w: %q 不是数字", ErrTypeMismatch, s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, fmt.Errorf("%w: %q 不是有限数字", ErrTypeMismatch, s)
	}
	return FloatNumber(f), nil
}

// MarshalJSON 整数输出为整数字面量
func (n Number) MarshalJSON() ([]byte, error) {
	if n.isFloat {
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return nil, fmt.Errorf("%w: 非有限浮点数", ErrTypeMismatch)
		}
		return json.Marshal(n.f)
	}
	return []byte(strconv.FormatInt(n.i, 10)), nil
}

// UnmarshalJSON 保留整数/浮点的区分
func (n *Number) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("%w: %s 不是数字", ErrTypeMismatch, string(data))
	}
	parsed, err := numberFromJSON(num)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func numberFromJSON(num json.Number) (Number, error) {
	if i, err := num.Int64(); err == nil {
		return IntNumber(i), nil
	}
	f, err := num.Float64()
	if err != nil {
		return Number{}, fmt.Errorf("%w: %s 不是数字", ErrTypeMismatch, num.String())
	}
	return FloatNumber(f), nil
}

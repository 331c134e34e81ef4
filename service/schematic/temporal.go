package schematic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// 固定的日期时间文本格式
const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
)

// Date 不带时区的日期
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate 从时间取日期部分
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q 不是日期", ErrTypeMismatch, s)
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: 日期必须为字符串", ErrTypeMismatch)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay 一天中的时刻，精确到秒
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// NewTimeOfDay 从时间取时刻部分
func NewTimeOfDay(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// ParseTimeOfDay 解析 HH:MM:SS
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q 不是时间", ErrTypeMismatch, s)
	}
	return NewTimeOfDay(t), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: 时间必须为字符串", ErrTypeMismatch)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// NormalizeDateTime 统一为UTC并截断到秒
func NormalizeDateTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ParseDateTime 接受 YYYY-MM-DDTHH:MM:SS（视为UTC）或 RFC3339
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return NormalizeDateTime(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NormalizeDateTime(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q 不是日期时间", ErrTypeMismatch, s)
}

// FormatDateTime 输出 RFC3339 UTC 文本
func FormatDateTime(t time.Time) string {
	return NormalizeDateTime(t).Format(time.RFC3339)
}

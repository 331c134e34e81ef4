package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Partition 按字段键存储同一类型取值的 JSONB 列
type Partition[V any] map[string]V

// Scan 实现 Scanner 接口
func (p *Partition[V]) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("类型断言失败: 不是 []byte 或 string")
	}
	if len(bytes) == 0 {
		*p = nil
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Value 实现 Valuer 接口，以文本写入以便 SQLite 的 JSON 函数可以直接读取
func (p Partition[V]) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

package models

import "time"

// DefaultTagColor 未指定颜色时的标签颜色
const DefaultTagColor = "#cccccc"

// SchemaDataTagModel 标签字段的可选值，按 (表, 字段, 小写名称) 唯一
type SchemaDataTagModel struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SchemaID  int64     `json:"schema_id" gorm:"not null;uniqueIndex:idx_tag_schema_row_name"`
	RowID     string    `json:"row_id" gorm:"size:255;not null;uniqueIndex:idx_tag_schema_row_name"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	NameLower string    `json:"-" gorm:"size:255;not null;uniqueIndex:idx_tag_schema_row_name"`
	Color     string    `json:"color" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SchemaDataTagModel) TableName() string {
	return "schema_data_tag"
}

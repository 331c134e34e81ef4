/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新动态表相关的表结构与索引
 * @architecture 数据访问层 - 迁移管理
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致；索引创建可重复执行
 * @dependencies addonhub-service/service/models, gorm.io/gorm
 * @refs service/models/schema.go, service/models/schema_data.go
 */

package database

import (
	"fmt"
	"log"

	"addonhub-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	err := db.AutoMigrate(
		&models.SchemaModel{},
		&models.SchemaDataModel{},
		&models.SchemaDataTagModel{},
	)
	if err != nil {
		return err
	}

	if err := CreateIndexes(db); err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// 通用索引，TTL 清理与按表查询使用
var commonIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_schema_data_schema_created ON schema_data(schema_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_schema_ttl ON "schema"(store, ttl)`,
}

// postgres 下 jsonb 分区列的 GIN 索引
var postgresIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_schema_data_text_gin ON schema_data USING GIN (field_text)`,
	`CREATE INDEX IF NOT EXISTS idx_schema_data_number_gin ON schema_data USING GIN (field_number)`,
	`CREATE INDEX IF NOT EXISTS idx_schema_data_bool_gin ON schema_data USING GIN (field_bool)`,
	`CREATE INDEX IF NOT EXISTS idx_schema_data_tags_gin ON schema_data USING GIN (field_tags)`,
	`CREATE INDEX IF NOT EXISTS idx_schema_data_reference_gin ON schema_data USING GIN (field_reference)`,
}

// CreateIndexes 创建索引
func CreateIndexes(db *gorm.DB) error {
	queries := commonIndexes
	if db.Dialector.Name() == "postgres" {
		queries = append(append([]string{}, commonIndexes...), postgresIndexes...)
	}

	for _, query := range queries {
		if err := db.Exec(query).Error; err != nil {
			return fmt.Errorf("创建索引失败: %w", err)
		}
	}
	return nil
}

/*
 * @module service/models/test_utils_test
 * @description 模型测试辅助工具
 * @architecture 测试基础设施 - 专门为模型测试提供工具
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 避免循环导入，专门为模型层测试提供工具
 * @dependencies gorm, sqlite
 */

package models

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ModelTestDB 模型测试数据库配置
type ModelTestDB struct {
	DB *gorm.DB
}

// NewModelTestDB 创建模型测试数据库
func NewModelTestDB() *ModelTestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 内存库每个连接相互独立，限制为单连接
	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get underlying DB: %v", err))
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&SchemaModel{}, &SchemaDataModel{}, &SchemaDataTagModel{})
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &ModelTestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *ModelTestDB) CleanDB() {
	for _, table := range []string{"schema", "schema_data", "schema_data_tag"} {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %q", table))
	}
}

// Close 关闭数据库连接
func (tdb *ModelTestDB) Close() {
	sqlDB, err := tdb.DB.DB()
	if err != nil {
		fmt.Printf("Error getting underlying DB: %v\n", err)
		return
	}
	sqlDB.Close()
}

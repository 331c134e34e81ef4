/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify
 * @refs service/models, service/cms
 */

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 内存库每个连接是独立的数据库，固定为单连接
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&models.SchemaModel{},
		&models.SchemaDataModel{},
		&models.SchemaDataTagModel{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tables := []string{
		models.SchemaDataTagModel{}.TableName(),
		models.SchemaDataModel{}.TableName(),
		models.SchemaModel{}.TableName(),
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf(`DELETE FROM "%s"`, table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// SchemaOption 表定义选项函数类型
type SchemaOption func(*models.SchemaModel)

// WithColumn 追加一个字段
func WithColumn(key string, ft schematic.FieldType) SchemaOption {
	return func(s *models.SchemaModel) {
		if err := s.AddColumn(schematic.FieldKey(key), key, ft, nil, func(string) bool { return true }); err != nil {
			panic(fmt.Sprintf("failed to add test column %s: %v", key, err))
		}
	}
}

// WithPrimaryField 指定主字段
func WithPrimaryField(key string) SchemaOption {
	return func(s *models.SchemaModel) {
		s.PrimaryField = schematic.FieldKey(key)
	}
}

// WithStore 指定存储方式
func WithStore(store string) SchemaOption {
	return func(s *models.SchemaModel) {
		s.Store = store
	}
}

// CreateSchema 创建测试表定义
func (f *TestDataFactory) CreateSchema(addonID int64, opts ...SchemaOption) *models.SchemaModel {
	name := "schema_" + generateSuffix()
	schema := models.NewSchema(addonID, name, "Test "+name, nil)

	for _, opt := range opts {
		opt(schema)
	}

	if err := f.DB.Create(schema).Error; err != nil {
		panic(fmt.Sprintf("failed to create test schema: %v", err))
	}
	return schema
}

// CreateRow 创建测试数据行，values 按字段键给出内部值
func (f *TestDataFactory) CreateRow(schema *models.SchemaModel, values map[string]schematic.FieldValue) *models.SchemaDataModel {
	row, err := models.NewSchemaData(schema.AddonID, schema.ID)
	if err != nil {
		panic(err)
	}
	for key, value := range values {
		field, err := schema.Field(schematic.FieldKey(key))
		if err != nil {
			panic(fmt.Sprintf("unknown test column %s: %v", key, err))
		}
		if err := row.InsertField(schematic.FieldKey(key), false, field.FieldType, value); err != nil {
			panic(fmt.Sprintf("failed to set test column %s: %v", key, err))
		}
	}
	if err := f.DB.Create(row).Error; err != nil {
		panic(fmt.Sprintf("failed to create test row: %v", err))
	}
	return row
}

var suffixSeq atomic.Int64

func generateSuffix() string {
	return fmt.Sprintf("%d_%d", time.Now().UnixNano()%100000, suffixSeq.Add(1))
}

// MockAddonQuerier Mock插件数据服务
type MockAddonQuerier struct {
	mock.Mock
}

func (m *MockAddonQuerier) QueryRows(ctx context.Context, addonID int64, schema string, filters []schematic.SchemaFilter, sort *schematic.DefaultSort, offset, limit int) ([]map[string]schematic.SimpleValue, error) {
	args := m.Called(ctx, addonID, schema, filters, sort, offset, limit)
	rows, _ := args.Get(0).([]map[string]schematic.SimpleValue)
	return rows, args.Error(1)
}

func (m *MockAddonQuerier) CountRows(ctx context.Context, addonID int64, schema string, filters []schematic.SchemaFilter) (int64, error) {
	args := m.Called(ctx, addonID, schema, filters)
	return args.Get(0).(int64), args.Error(1)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// DecodeResponse 解析响应体
func (h *HTTPTestHelper) DecodeResponse(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	decoder := json.NewDecoder(w.Body)
	decoder.UseNumber()
	assert.NoError(t, decoder.Decode(out))
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}

/*
 * @module service/cms/schema_service
 * @description 动态表定义服务：创建表、查询表、字段增删、视图与默认排序更新、软删除
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 获取表锁 -> 读取定义 -> 内存修改 -> 按 revision 条件写回 -> 释放锁
 * @rules 同一插件下表名唯一；写回时 revision 不匹配返回 ErrConcurrentModification；字段只追加
 * @dependencies gorm.io/gorm, addonhub-service/service/distributed_lock
 * @refs service/models/schema.go, api/controllers/schema_controller.go
 */

package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"addonhub-service/service/distributed_lock"
	"addonhub-service/service/metrics"
	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"gorm.io/gorm"
)

const schemaLockTTL = 10 * time.Second

// SchemaService 动态表定义服务
type SchemaService struct {
	db    *gorm.DB
	locks *distributed_lock.LockExecutor
}

// NewSchemaService 创建动态表定义服务，lock 为空时使用进程内锁
func NewSchemaService(db *gorm.DB, lock distributed_lock.DistributedLock) *SchemaService {
	if lock == nil {
		lock = distributed_lock.NewLocalLock()
	}
	return &SchemaService{db: db, locks: distributed_lock.NewLockExecutor(lock)}
}

// CreateSchemaRequest 创建表请求
type CreateSchemaRequest struct {
	AddonID      int64               `json:"-"`
	Name         string              `json:"name" example:"products"`
	DisplayName  string              `json:"display_name" example:"Products"`
	PrimaryField *schematic.FieldKey `json:"primary_field,omitempty"`
	Store        string              `json:"store,omitempty" example:"cms"`
	TTL          *int64              `json:"ttl,omitempty"`
}

// ColumnSpec 新增字段请求
type ColumnSpec struct {
	ID               schematic.FieldKey  `json:"id" example:"price"`
	DisplayName      string              `json:"display_name" example:"Price"`
	FieldType        schematic.FieldType `json:"field_type" swaggertype:"string" example:"Number"`
	ReferencedSchema *string             `json:"referenced_schema,omitempty"`
}

// CreateSchema 创建动态表
func (s *SchemaService) CreateSchema(ctx context.Context, req CreateSchemaRequest) (*models.SchemaModel, error) {
	if err := schematic.ValidateIdentifier(req.Name); err != nil {
		return nil, err
	}
	if err := schematic.ValidateIdentifier(req.DisplayName); err != nil {
		return nil, err
	}
	store := req.Store
	if store == "" {
		store = models.StoreCMS
	}
	if store != models.StoreCMS && store != models.StoreAddon {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStore, store)
	}

	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&models.SchemaModel{}).
		Where("addon_id = ? AND name = ?", req.AddonID, req.Name).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("检查表名失败: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSchemaExists, req.Name)
	}

	schema := models.NewSchema(req.AddonID, req.Name, req.DisplayName, req.PrimaryField)
	schema.Store = store
	schema.TTL = req.TTL

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(schema).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: %s", ErrSchemaExists, req.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("创建表失败: %w", err)
	}

	slog.Info("创建动态表", "addon_id", req.AddonID, "schema", req.Name, "store", store)
	return schema, nil
}

// ListSchemas 列出插件的全部表
func (s *SchemaService) ListSchemas(ctx context.Context, addonID int64) ([]models.SchemaModel, error) {
	var schemas []models.SchemaModel
	if err := s.db.WithContext(ctx).Where("addon_id = ?", addonID).Order("id ASC").Find(&schemas).Error; err != nil {
		return nil, fmt.Errorf("查询表列表失败: %w", err)
	}
	return schemas, nil
}

// GetSchema 按插件与表名获取
func (s *SchemaService) GetSchema(ctx context.Context, addonID int64, name string) (*models.SchemaModel, error) {
	var schema models.SchemaModel
	err := s.db.WithContext(ctx).Where("addon_id = ? AND name = ?", addonID, name).First(&schema).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("查询表失败: %w", err)
	}
	return &schema, nil
}

// GetSchemaByID 按ID获取
func (s *SchemaService) GetSchemaByID(ctx context.Context, id int64) (*models.SchemaModel, error) {
	var schema models.SchemaModel
	err := s.db.WithContext(ctx).First(&schema, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrSchemaNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("查询表失败: %w", err)
	}
	return &schema, nil
}

// schemaExists 判断插件内是否存在某张表
func (s *SchemaService) schemaExists(ctx context.Context, addonID int64) func(string) bool {
	return func(name string) bool {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.SchemaModel{}).
			Where("addon_id = ? AND name = ?", addonID, name).Count(&count).Error
		return err == nil && count > 0
	}
}

// Save 按 revision 条件写回表定义
func (s *SchemaService) Save(ctx context.Context, schema *models.SchemaModel) error {
	expected := schema.Revision
	schema.Revision = expected + 1

	result := s.db.WithContext(ctx).Model(schema).
		Select("display_name", "primary_field", "permissions", "allowed_operations", "ttl",
			"default_sort", "views", "fields", "revision", "updated_at").
		Where("revision = ?", expected).
		Updates(schema)
	if result.Error != nil {
		schema.Revision = expected
		return fmt.Errorf("保存表定义失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		schema.Revision = expected
		metrics.SchemaConflicts.Inc()
		return fmt.Errorf("%w: %s", ErrConcurrentModification, schema.Name)
	}
	return nil
}

// mutate 在表锁内读取、修改并写回表定义
func (s *SchemaService) mutate(ctx context.Context, addonID int64, name string, fn func(*models.SchemaModel) error) (*models.SchemaModel, error) {
	var updated *models.SchemaModel
	lockKey := fmt.Sprintf("%d:%s", addonID, name)
	err := s.locks.ExecuteWithLock(ctx, lockKey, schemaLockTTL, func() error {
		schema, err := s.GetSchema(ctx, addonID, name)
		if err != nil {
			return err
		}
		if err := fn(schema); err != nil {
			return err
		}
		if err := s.Save(ctx, schema); err != nil {
			return err
		}
		updated = schema
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddColumns 依次新增字段，任一失败则整体不生效
func (s *SchemaService) AddColumns(ctx context.Context, addonID int64, name string, columns []ColumnSpec) (*models.SchemaModel, error) {
	exists := s.schemaExists(ctx, addonID)
	schema, err := s.mutate(ctx, addonID, name, func(schema *models.SchemaModel) error {
		for _, col := range columns {
			if err := schema.AddColumn(col.ID, col.DisplayName, col.FieldType, col.ReferencedSchema, exists); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("新增字段", "addon_id", addonID, "schema", name, "count", len(columns))
	return schema, nil
}

// DeleteColumn 删除字段（仅标记）
func (s *SchemaService) DeleteColumn(ctx context.Context, addonID int64, name string, key schematic.FieldKey) (*models.SchemaModel, error) {
	schema, err := s.mutate(ctx, addonID, name, func(schema *models.SchemaModel) error {
		return schema.DeleteColumn(key)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("删除字段", "addon_id", addonID, "schema", name, "column", key)
	return schema, nil
}

// UpdateViews 整体替换视图
func (s *SchemaService) UpdateViews(ctx context.Context, addonID int64, name string, views []schematic.SchemaView) (*models.SchemaModel, error) {
	if views == nil {
		views = []schematic.SchemaView{}
	}
	return s.mutate(ctx, addonID, name, func(schema *models.SchemaModel) error {
		schema.Views = views
		return nil
	})
}

// UpdateDefaultSort 替换默认排序，nil 表示清除
func (s *SchemaService) UpdateDefaultSort(ctx context.Context, addonID int64, name string, sort *schematic.DefaultSort) (*models.SchemaModel, error) {
	return s.mutate(ctx, addonID, name, func(schema *models.SchemaModel) error {
		if sort != nil {
			if _, err := schema.Field(sort.Field); err != nil {
				return err
			}
		}
		schema.DefaultSort = sort
		return nil
	})
}

// UpdateDisplay 更新显示名与主字段
func (s *SchemaService) UpdateDisplay(ctx context.Context, addonID int64, name string, displayName string, primaryField *schematic.FieldKey) (*models.SchemaModel, error) {
	if displayName != "" {
		if err := schematic.ValidateIdentifier(displayName); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, addonID, name, func(schema *models.SchemaModel) error {
		if displayName != "" {
			schema.DisplayName = displayName
		}
		if primaryField != nil {
			if _, err := schema.Field(*primaryField); err != nil {
				return err
			}
			schema.PrimaryField = *primaryField
		}
		return nil
	})
}

// DeleteSchema 软删除表及其数据行
func (s *SchemaService) DeleteSchema(ctx context.Context, addonID int64, name string) error {
	schema, err := s.GetSchema(ctx, addonID, name)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schema_id = ?", schema.ID).Delete(&models.SchemaDataModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(schema).Error
	})
	if err != nil {
		return fmt.Errorf("删除表失败: %w", err)
	}
	slog.Info("删除动态表", "addon_id", addonID, "schema", name)
	return nil
}

// ListTTLSchemas 列出配置了TTL的CMS存储表
func (s *SchemaService) ListTTLSchemas(ctx context.Context) ([]models.SchemaModel, error) {
	var schemas []models.SchemaModel
	err := s.db.WithContext(ctx).
		Where("store = ? AND ttl IS NOT NULL AND ttl > 0", models.StoreCMS).
		Find(&schemas).Error
	if err != nil {
		return nil, fmt.Errorf("查询TTL表失败: %w", err)
	}
	return schemas, nil
}

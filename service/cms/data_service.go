/*
 * @module service/cms/data_service
 * @description 动态表数据行服务：建行、读取、查询计数、单字段更新、复制、软删除
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 表定义 -> 字段类型查找 -> 值转换 -> 分区读写；addon 存储的表转发给插件数据服务
 * @rules 只接受表定义中未删除的字段；系统字段只读；单字段更新只读写对应分区列
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/cms/query_builder.go, service/models/schema_data.go, client/addon_client.go
 */

package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"addonhub-service/service/metrics"
	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddonQuerier 插件自有存储的数据查询接口
type AddonQuerier interface {
	QueryRows(ctx context.Context, addonID int64, schema string, filters []schematic.SchemaFilter, sort *schematic.DefaultSort, offset, limit int) ([]map[string]schematic.SimpleValue, error)
	CountRows(ctx context.Context, addonID int64, schema string, filters []schematic.SchemaFilter) (int64, error)
}

// Row 外部可见的数据行
type Row map[string]schematic.SimpleValue

// DataService 数据行服务
type DataService struct {
	db    *gorm.DB
	addon AddonQuerier
}

// NewDataService 创建数据行服务，addon 为空时 addon 存储的表不可查询
func NewDataService(db *gorm.DB, addon AddonQuerier) *DataService {
	return &DataService{db: db, addon: addon}
}

// writableField 查找可写字段
func writableField(schema *models.SchemaModel, key schematic.FieldKey) (schematic.SchematicField, error) {
	if key.IsSystem() {
		return schematic.SchematicField{}, fmt.Errorf("%w: %s", schematic.ErrSystemFieldImmutable, key)
	}
	return schema.Field(key)
}

// assignValue 把一个外部值写入数据行；key[] 形式的键写入数组上下文
func assignValue(row *models.SchemaDataModel, schema *models.SchemaModel, name string, value schematic.SimpleValue) error {
	key := schematic.FieldKey(name)
	isArray := false
	if strings.HasSuffix(name, schematic.ArrayContextSuffix) {
		key = schematic.FieldKey(strings.TrimSuffix(name, schematic.ArrayContextSuffix))
		isArray = true
	}

	ft := schematic.FieldArray
	if field, ok := schema.Fields[key]; ok || !isArray {
		if _, err := writableField(schema, key); err != nil {
			return err
		}
		ft = field.FieldType
	}
	fv, err := ft.ParseValue(value)
	if err != nil {
		return fmt.Errorf("字段 %s: %w", key, err)
	}
	return row.InsertField(key, isArray, ft, fv)
}

// CreateRow 新建数据行，可带初始字段值
func (s *DataService) CreateRow(ctx context.Context, schema *models.SchemaModel, values map[string]schematic.SimpleValue) (Row, error) {
	if schema.IsAddonStore() {
		return nil, ErrAddonStoreReadOnly
	}
	row, err := models.NewSchemaData(schema.AddonID, schema.ID)
	if err != nil {
		return nil, err
	}
	for name, value := range values {
		if err := assignValue(row, schema, name, value); err != nil {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("创建数据行失败: %w", err)
	}
	return row.ToExternalMap(schema.Fields, nil), nil
}

// loadRow 按公开ID读取数据行，可只加载部分列
func (s *DataService) loadRow(ctx context.Context, schema *models.SchemaModel, publicID uuid.UUID, columns ...string) (*models.SchemaDataModel, error) {
	var row models.SchemaDataModel
	query := s.db.WithContext(ctx).Where("schema_id = ? AND public_id = ?", schema.ID, publicID.String())
	if len(columns) > 0 {
		query = query.Select(columns)
	}
	err := query.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRowNotFound, publicID)
	}
	if err != nil {
		return nil, fmt.Errorf("查询数据行失败: %w", err)
	}
	return &row, nil
}

// GetRow 按公开ID读取数据行
func (s *DataService) GetRow(ctx context.Context, schema *models.SchemaModel, publicID uuid.UUID, columns []string) (Row, error) {
	if schema.IsAddonStore() {
		rows, err := s.Find(ctx, schema, QueryOptions{
			Filters: []schematic.SchemaFilter{{
				Field:     schematic.KeyID,
				Condition: schematic.ConditionEqual,
				Value:     schematic.TextValue(publicID.String()),
			}},
			Columns: columns,
			Limit:   1,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrRowNotFound, publicID)
		}
		return rows[0], nil
	}

	row, err := s.loadRow(ctx, schema, publicID)
	if err != nil {
		return nil, err
	}
	return row.ToExternalMap(schema.Fields, columns), nil
}

// Find 按过滤、排序与分页查询数据行
func (s *DataService) Find(ctx context.Context, schema *models.SchemaModel, opts QueryOptions) (rows []Row, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(schema.Store, start, err) }()

	if schema.IsAddonStore() {
		return s.findAddon(ctx, schema, opts)
	}

	builder := newQueryBuilder(dialectFor(s.db.Dialector.Name()), schema)
	built, err := builder.build(opts, true)
	if err != nil {
		return nil, err
	}

	var records []models.SchemaDataModel
	query := s.db.WithContext(ctx).Model(&models.SchemaDataModel{}).Where("schema_data.schema_id = ?", schema.ID)
	if err := built.apply(query).Find(&records).Error; err != nil {
		slog.Error("查询数据行失败", "schema_id", schema.ID, "error", err)
		return nil, fmt.Errorf("查询数据行失败: %w", err)
	}

	rows = make([]Row, 0, len(records))
	for i := range records {
		rows = append(rows, records[i].ToExternalMap(schema.Fields, opts.Columns))
	}
	return rows, nil
}

// Count 统计满足过滤条件的行数
func (s *DataService) Count(ctx context.Context, schema *models.SchemaModel, opts QueryOptions) (int64, error) {
	if schema.IsAddonStore() {
		if s.addon == nil {
			return 0, ErrAddonUnavailable
		}
		return s.addon.CountRows(ctx, schema.AddonID, schema.Name, opts.Filters)
	}

	builder := newQueryBuilder(dialectFor(s.db.Dialector.Name()), schema)
	built, err := builder.build(opts, false)
	if err != nil {
		return 0, err
	}

	var count int64
	query := s.db.WithContext(ctx).Model(&models.SchemaDataModel{}).Where("schema_data.schema_id = ?", schema.ID)
	if err := built.apply(query).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计数据行失败: %w", err)
	}
	return count, nil
}

// Query 查询一页数据并返回总数
func (s *DataService) Query(ctx context.Context, schema *models.SchemaModel, opts QueryOptions) ([]Row, int64, error) {
	rows, err := s.Find(ctx, schema, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Count(ctx, schema, opts)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *DataService) findAddon(ctx context.Context, schema *models.SchemaModel, opts QueryOptions) ([]Row, error) {
	if s.addon == nil {
		return nil, ErrAddonUnavailable
	}
	sort := opts.Sort
	if sort == nil {
		sort = schema.DefaultSort
	}
	records, err := s.addon.QueryRows(ctx, schema.AddonID, schema.Name, opts.Filters, sort, opts.Offset, opts.Limit)
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if len(opts.Columns) > 0 {
		allowed = make(map[string]bool, len(opts.Columns))
		for _, c := range opts.Columns {
			allowed[c] = true
		}
	}
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(record))
		for key, value := range record {
			if allowed == nil || allowed[key] {
				row[key] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpdateField 更新单个字段，value 为 nil 表示清除；只读写该字段类型对应的分区列
func (s *DataService) UpdateField(ctx context.Context, schema *models.SchemaModel, publicID uuid.UUID, key schematic.FieldKey, value *schematic.SimpleValue) error {
	if schema.IsAddonStore() {
		return ErrAddonStoreReadOnly
	}
	field, err := writableField(schema, key)
	if err != nil {
		return err
	}

	var fv schematic.FieldValue
	if value != nil {
		if fv, err = field.FieldType.ParseValue(*value); err != nil {
			return fmt.Errorf("字段 %s: %w", key, err)
		}
	}

	column := field.FieldType.PartitionName()
	row, err := s.loadRow(ctx, schema, publicID, "id", column)
	if err != nil {
		return err
	}
	if err := row.SetField(key, field.FieldType, fv); err != nil {
		return err
	}
	raw, err := row.PartitionValue(field.FieldType)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Model(&models.SchemaDataModel{}).
		Where("id = ?", row.ID).
		UpdateColumns(map[string]interface{}{column: raw, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("更新字段失败: %w", err)
	}
	return nil
}

// DuplicateRow 复制数据行
func (s *DataService) DuplicateRow(ctx context.Context, schema *models.SchemaModel, publicID uuid.UUID) (Row, error) {
	if schema.IsAddonStore() {
		return nil, ErrAddonStoreReadOnly
	}
	row, err := s.loadRow(ctx, schema, publicID)
	if err != nil {
		return nil, err
	}
	dup, err := row.Duplicate()
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(dup).Error; err != nil {
		return nil, fmt.Errorf("复制数据行失败: %w", err)
	}
	return dup.ToExternalMap(schema.Fields, nil), nil
}

// DeleteRow 软删除数据行
func (s *DataService) DeleteRow(ctx context.Context, schema *models.SchemaModel, publicID uuid.UUID) error {
	if schema.IsAddonStore() {
		return ErrAddonStoreReadOnly
	}
	result := s.db.WithContext(ctx).
		Where("schema_id = ? AND public_id = ?", schema.ID, publicID.String()).
		Delete(&models.SchemaDataModel{})
	if result.Error != nil {
		return fmt.Errorf("删除数据行失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, publicID)
	}
	return nil
}

// IDsFromPublicIDs 把公开ID映射为内部ID，不存在的ID不出现在结果中
func (s *DataService) IDsFromPublicIDs(ctx context.Context, schemaID int64, publicIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(publicIDs))
	if len(publicIDs) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(publicIDs))
	for _, id := range publicIDs {
		ids = append(ids, id.String())
	}
	var records []models.SchemaDataModel
	err := s.db.WithContext(ctx).Select("id", "public_id").
		Where("schema_id = ? AND public_id IN ?", schemaID, ids).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询行ID失败: %w", err)
	}
	for _, r := range records {
		out[r.PublicID] = r.ID
	}
	return out, nil
}

// CountByAddon 统计插件下全部表的数据行数
func (s *DataService) CountByAddon(ctx context.Context, addonID int64) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SchemaDataModel{}).
		Where("addon_id = ?", addonID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计插件数据行失败: %w", err)
	}
	return count, nil
}

// PurgeExpired 软删除创建时间早于 before 的行
func (s *DataService) PurgeExpired(ctx context.Context, schema *models.SchemaModel, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("schema_id = ? AND created_at < ?", schema.ID, before).
		Delete(&models.SchemaDataModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理过期数据失败: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.PurgedRows.Add(float64(result.RowsAffected))
		slog.Info("清理过期数据", "schema_id", schema.ID, "rows", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

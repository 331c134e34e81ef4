/*
 * @module service/cms/import_service
 * @description 批量导入：按列给出的值整体转换为数据行，标签列按名称解析为标签ID
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 列长度校验 -> 建空行 -> 逐列转换 -> 标签按批次缓存解析 -> 同一事务批量插入
 * @rules 任意一个值转换失败整批回滚；空单元格不写入；未知或已删除的列直接拒绝
 * @dependencies gorm.io/gorm
 * @refs service/cms/tag_service.go, service/models/schema_data.go
 */

package cms

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"addonhub-service/service/metrics"
	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const importBatchSize = 100

// ImportService 批量导入服务
type ImportService struct {
	db   *gorm.DB
	tags *TagService
}

// NewImportService 创建批量导入服务
func NewImportService(db *gorm.DB, tags *TagService) *ImportService {
	return &ImportService{db: db, tags: tags}
}

// ImportRequest 按列组织的导入数据
type ImportRequest struct {
	Columns map[string][]schematic.SimpleValue `json:"columns"`
}

// tagResolver 单个导入批次内的标签名到ID缓存
type tagResolver struct {
	tags     *TagService
	schemaID int64
	cache    map[string]int64
}

func (r *tagResolver) resolve(ctx context.Context, field schematic.FieldKey, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cacheKey := string(field) + "\x00" + normalizeTagName(name)
		if id, ok := r.cache[cacheKey]; ok {
			ids = append(ids, id)
			continue
		}
		tag, err := r.tags.GetOrCreate(ctx, r.schemaID, field, name, "")
		if err != nil {
			return nil, err
		}
		r.cache[cacheKey] = tag.ID
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// isEmptyCell 空单元格不写入
func isEmptyCell(v schematic.SimpleValue) bool {
	if s, ok := v.Text(); ok {
		return strings.TrimSpace(s) == ""
	}
	if obj, ok := v.Object(); ok {
		return obj == nil
	}
	return false
}

// tagValue 把标签单元格解析为标签ID列表
func (r *tagResolver) tagValue(ctx context.Context, field schematic.FieldKey, cell schematic.SimpleValue) (schematic.FieldValue, error) {
	if list, ok := cell.ListNumber(); ok {
		ids := make(schematic.ListNumberField, len(list))
		for i, n := range list {
			ids[i] = n.Int64()
		}
		return ids, nil
	}
	var names []string
	if list, ok := cell.ListString(); ok {
		names = list
	} else if s, ok := cell.Text(); ok {
		names = strings.Split(s, ",")
	} else {
		return nil, fmt.Errorf("%w: 标签字段 %s 需要逗号分隔的名称", schematic.ErrTypeMismatch, field)
	}
	ids, err := r.resolve(ctx, field, names)
	if err != nil {
		return nil, err
	}
	return schematic.ListNumberField(ids), nil
}

// ImportRows 导入数据，返回新行的公开ID，顺序与输入位置一致
func (s *ImportService) ImportRows(ctx context.Context, schema *models.SchemaModel, columns map[string][]schematic.SimpleValue) ([]uuid.UUID, error) {
	if schema.IsAddonStore() {
		return nil, ErrAddonStoreReadOnly
	}

	names := make([]string, 0, len(columns))
	rowCount := -1
	for name, values := range columns {
		if rowCount >= 0 && len(values) != rowCount {
			return nil, fmt.Errorf("%w: 列 %s 有 %d 个值，期望 %d", ErrImportLengthMismatch, name, len(values), rowCount)
		}
		rowCount = len(values)
		names = append(names, name)
	}
	if rowCount <= 0 {
		return []uuid.UUID{}, nil
	}
	sort.Strings(names)

	fields := make(map[string]schematic.SchematicField, len(names))
	for _, name := range names {
		field, err := writableField(schema, schematic.FieldKey(name))
		if err != nil {
			return nil, err
		}
		fields[name] = field
	}

	rows := make([]*models.SchemaDataModel, rowCount)
	for i := range rows {
		row, err := models.NewSchemaData(schema.AddonID, schema.ID)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolver := &tagResolver{tags: s.tags.withDB(tx), schemaID: schema.ID, cache: make(map[string]int64)}

		for _, name := range names {
			key := schematic.FieldKey(name)
			field := fields[name]
			for i, cell := range columns[name] {
				if isEmptyCell(cell) {
					continue
				}
				var fv schematic.FieldValue
				var err error
				if field.FieldType == schematic.FieldTags {
					fv, err = resolver.tagValue(ctx, key, cell)
				} else {
					fv, err = field.FieldType.ParseValue(cell)
				}
				if err != nil {
					return fmt.Errorf("第 %d 行字段 %s: %w", i+1, name, err)
				}
				if err := rows[i].InsertField(key, false, field.FieldType, fv); err != nil {
					return err
				}
			}
		}

		return tx.CreateInBatches(rows, importBatchSize).Error
	})
	if err != nil {
		slog.Warn("批量导入失败", "schema_id", schema.ID, "rows", rowCount, "error", err)
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.PublicID
	}
	metrics.ImportedRows.Add(float64(len(rows)))
	slog.Info("批量导入完成", "schema_id", schema.ID, "rows", len(rows))
	return ids, nil
}

// ImportRawRows 导入原始字节值，按列类型先转换为外部值再导入
func (s *ImportService) ImportRawRows(ctx context.Context, schema *models.SchemaModel, columns map[string][][]byte) ([]uuid.UUID, error) {
	converted := make(map[string][]schematic.SimpleValue, len(columns))
	for name, raws := range columns {
		field, err := writableField(schema, schematic.FieldKey(name))
		if err != nil {
			return nil, err
		}
		values := make([]schematic.SimpleValue, len(raws))
		for i, raw := range raws {
			if len(raw) == 0 {
				values[i] = schematic.TextValue("")
				continue
			}
			if values[i], err = field.FieldType.ParseValueBytes(raw); err != nil {
				return nil, fmt.Errorf("第 %d 行字段 %s: %w", i+1, name, err)
			}
		}
		converted[name] = values
	}
	return s.ImportRows(ctx, schema, converted)
}

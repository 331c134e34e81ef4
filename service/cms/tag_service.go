/*
 * @module service/cms/tag_service
 * @description 标签字段的可选值注册表，按 (表, 字段, 小写名称) 幂等创建
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 按小写名称查找 -> 未找到则插入 -> 唯一约束冲突则回读已存在的行
 * @rules 并发创建同名标签时调用方始终拿到同一个有效ID，不向外抛出冲突错误
 * @dependencies gorm.io/gorm, golang.org/x/text/cases
 * @refs service/models/schema_data_tag.go, service/cms/import_service.go
 */

package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"addonhub-service/service/metrics"
	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var tagFolder = cases.Lower(language.Und)

// normalizeTagName 标签名的比较形式
func normalizeTagName(name string) string {
	return tagFolder.String(strings.TrimSpace(name))
}

// insertOrGet 先查找，未找到则插入；插入遇到唯一约束冲突时重新查找并返回已存在的值
func insertOrGet[T any](find func() (T, bool, error), insert func() (T, error)) (T, error) {
	var zero T
	if found, ok, err := find(); err != nil {
		return zero, err
	} else if ok {
		return found, nil
	}

	created, err := insert()
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return zero, err
	}

	metrics.TagInsertRaces.Inc()
	found, ok, ferr := find()
	if ferr != nil {
		return zero, ferr
	}
	if !ok {
		return zero, fmt.Errorf("唯一约束冲突后未找到已存在的记录: %w", err)
	}
	return found, nil
}

// TagService 标签服务
type TagService struct {
	db *gorm.DB
}

// NewTagService 创建标签服务
func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// withDB 返回绑定到指定连接（通常是事务）的副本
func (s *TagService) withDB(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Field schematic.FieldKey `json:"field" example:"category"`
	Name  string             `json:"name" example:"Summer"`
	Color string             `json:"color,omitempty" example:"#ff8800"`
}

// GetOrCreate 获取或创建标签
func (s *TagService) GetOrCreate(ctx context.Context, schemaID int64, field schematic.FieldKey, name, color string) (*models.SchemaDataTagModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: 标签名不能为空", schematic.ErrTypeMismatch)
	}
	if color == "" {
		color = models.DefaultTagColor
	}
	lower := normalizeTagName(name)
	db := s.db.WithContext(ctx)

	find := func() (*models.SchemaDataTagModel, bool, error) {
		var tag models.SchemaDataTagModel
		err := db.Where("schema_id = ? AND row_id = ? AND name_lower = ?", schemaID, string(field), lower).
			Take(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("查询标签失败: %w", err)
		}
		return &tag, true, nil
	}
	insert := func() (*models.SchemaDataTagModel, error) {
		tag := &models.SchemaDataTagModel{
			SchemaID:  schemaID,
			RowID:     string(field),
			Name:      name,
			NameLower: lower,
			Color:     color,
		}
		// 嵌套事务在外层事务中使用保存点，冲突后外层事务仍可继续
		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(tag).Error
		})
		if err != nil {
			return nil, err
		}
		return tag, nil
	}

	tag, err := insertOrGet(find, insert)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// List 列出表的全部标签，可按字段过滤
func (s *TagService) List(ctx context.Context, schemaID int64, field schematic.FieldKey) ([]models.SchemaDataTagModel, error) {
	var tags []models.SchemaDataTagModel
	query := s.db.WithContext(ctx).Where("schema_id = ?", schemaID)
	if field != "" {
		query = query.Where("row_id = ?", string(field))
	}
	if err := query.Order("id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("查询标签列表失败: %w", err)
	}
	return tags, nil
}

// Count 统计表的标签数量
func (s *TagService) Count(ctx context.Context, schemaID int64) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SchemaDataTagModel{}).
		Where("schema_id = ?", schemaID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计标签失败: %w", err)
	}
	return count, nil
}

// Delete 删除标签
func (s *TagService) Delete(ctx context.Context, schemaID, id int64) error {
	result := s.db.WithContext(ctx).Where("schema_id = ? AND id = ?", schemaID, id).Delete(&models.SchemaDataTagModel{})
	if result.Error != nil {
		return fmt.Errorf("删除标签失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrTagNotFound, id)
	}
	slog.Info("删除标签", "schema_id", schemaID, "tag_id", id)
	return nil
}

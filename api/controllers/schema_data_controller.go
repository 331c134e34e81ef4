/*
 * @module api/controllers/schema_data_controller
 * @description 动态表数据API控制器，处理数据行的增删改查与批量导入
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 解析插件与表 -> 参数校验 -> 调用数据服务 -> 统一响应
 * @rules 分页大小限制在配置范围内；行ID使用公开UUID；插件存储的表只读
 * @dependencies addonhub-service/service/cms, github.com/go-chi/render, github.com/google/uuid
 * @refs api/routes.go
 */

package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"addonhub-service/service/cms"
	"addonhub-service/service/config"
	"addonhub-service/service/schematic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// SchemaDataController 动态表数据控制器
type SchemaDataController struct {
	schemas *cms.SchemaService
	data    *cms.DataService
	imports *cms.ImportService
	paging  config.QueryConfig
}

// NewSchemaDataController 创建动态表数据控制器实例
func NewSchemaDataController(schemas *cms.SchemaService, data *cms.DataService, imports *cms.ImportService, paging config.QueryConfig) *SchemaDataController {
	return &SchemaDataController{schemas: schemas, data: data, imports: imports, paging: paging}
}

// CreateRowRequest 创建数据行请求
type CreateRowRequest struct {
	Values map[string]schematic.SimpleValue `json:"values" swaggertype:"object"`
}

// QueryRowsRequest 查询数据行请求
type QueryRowsRequest struct {
	Filters []schematic.SchemaFilter `json:"filters,omitempty"`
	Sort    *schematic.DefaultSort   `json:"sort,omitempty"`
	Search  string                   `json:"search,omitempty"`
	Columns []string                 `json:"columns,omitempty"`
	Page    int                      `json:"page" example:"1"`
	Size    int                      `json:"size" example:"50"`
}

// UpdateFieldRequest 更新字段请求，value 为 null 时清除字段
type UpdateFieldRequest struct {
	Value *schematic.SimpleValue `json:"value" swaggertype:"object"`
}

// ImportResult 导入结果
type ImportResult struct {
	Count int         `json:"count" example:"2"`
	IDs   []uuid.UUID `json:"ids"`
}

func parseRowID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "row"))
	if err != nil {
		render.Render(w, r, BadRequestResponse("无效的数据行ID", nil))
		return uuid.Nil, false
	}
	return id, true
}

// CreateRow 创建数据行
// @Summary 创建数据行
// @Description 创建数据行，可携带初始字段值；以 [] 结尾的键按数组上下文写入
// @Tags 动态表数据
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body CreateRowRequest false "初始字段值"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/rows [post]
func (c *SchemaDataController) CreateRow(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	var req CreateRowRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
			return
		}
	}

	row, err := c.data.CreateRow(r.Context(), schema, req.Values)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, CreatedResponse("创建成功", row))
}

// QueryRows 查询数据行
// @Summary 查询数据行
// @Description 按过滤条件、排序与搜索词分页查询，同时返回总数
// @Tags 动态表数据
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body QueryRowsRequest true "查询条件"
// @Success 200 {object} PaginatedResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/rows/query [post]
func (c *SchemaDataController) QueryRows(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	var req QueryRowsRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
			return
		}
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := c.paging.ClampLimit(req.Size)

	rows, total, err := c.data.Query(r.Context(), schema, cms.QueryOptions{
		Filters: req.Filters,
		Sort:    req.Sort,
		Search:  req.Search,
		Columns: req.Columns,
		Offset:  (page - 1) * size,
		Limit:   size,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   rows,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetRow 获取数据行
// @Summary 获取数据行
// @Tags 动态表数据
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param row path string true "数据行ID"
// @Param columns query string false "返回的字段，逗号分隔"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/rows/{row} [get]
func (c *SchemaDataController) GetRow(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}
	rowID, ok := parseRowID(w, r)
	if !ok {
		return
	}

	var columns []string
	if raw := r.URL.Query().Get("columns"); raw != "" {
		for _, col := range strings.Split(raw, ",") {
			if col = strings.TrimSpace(col); col != "" {
				columns = append(columns, col)
			}
		}
	}

	row, err := c.data.GetRow(r.Context(), schema, rowID, columns)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("查询成功", row))
}

// UpdateField 更新单个字段
// @Summary 更新字段值
// @Description value 为 null 时清除该字段
// @Tags 动态表数据
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param row path string true "数据行ID"
// @Param column path string true "字段ID"
// @Param body body UpdateFieldRequest true "字段值"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/rows/{row}/fields/{column} [put]
func (c *SchemaDataController) UpdateField(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}
	rowID, ok := parseRowID(w, r)
	if !ok {
		return
	}

	var req UpdateFieldRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	column := schematic.FieldKey(chi.URLParam(r, "column"))
	if err := c.data.UpdateField(r.Context(), schema, rowID, column, req.Value); err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("更新成功", nil))
}

// DuplicateRow 复制数据行
// @Summary 复制数据行
// @Tags 动态表数据
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param row path string true "数据行ID"
// @Success 201 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/rows/{row}/duplicate [post]
func (c *SchemaDataController) DuplicateRow(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}
	rowID, ok := parseRowID(w, r)
	if !ok {
		return
	}

	row, err := c.data.DuplicateRow(r.Context(), schema, rowID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, CreatedResponse("复制成功", row))
}

// DeleteRow 删除数据行
// @Summary 删除数据行
// @Tags 动态表数据
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param row path string true "数据行ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/rows/{row} [delete]
func (c *SchemaDataController) DeleteRow(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}
	rowID, ok := parseRowID(w, r)
	if !ok {
		return
	}

	if err := c.data.DeleteRow(r.Context(), schema, rowID); err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("删除成功", nil))
}

// ImportRows 批量导入
// @Summary 批量导入数据行
// @Description 按列提交数据，各列长度必须一致；任一值转换失败时整批回滚
// @Tags 动态表数据
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body cms.ImportRequest true "按列组织的数据"
// @Success 201 {object} APIResponse{data=ImportResult}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/import [post]
func (c *SchemaDataController) ImportRows(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	var req cms.ImportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	ids, err := c.imports.ImportRows(r.Context(), schema, req.Columns)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, CreatedResponse("导入成功", ImportResult{Count: len(ids), IDs: ids}))
}

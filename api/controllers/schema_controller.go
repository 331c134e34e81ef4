/*
 * @module api/controllers/schema_controller
 * @description 动态表定义API控制器，处理表与字段的增删改查
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；表定义的修改在服务层加锁并做版本校验
 * @dependencies addonhub-service/service/cms, github.com/go-chi/render
 * @refs api/routes.go
 */

package controllers

import (
	"fmt"
	"net/http"

	"addonhub-service/api/middleware"
	"addonhub-service/service/cms"
	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// SchemaController 动态表定义控制器
type SchemaController struct {
	schemas *cms.SchemaService
}

// NewSchemaController 创建动态表定义控制器实例
func NewSchemaController(schemas *cms.SchemaService) *SchemaController {
	return &SchemaController{schemas: schemas}
}

// AddColumnsRequest 新增字段请求
type AddColumnsRequest struct {
	Columns []cms.ColumnSpec `json:"columns"`
}

// UpdateViewsRequest 更新视图请求
type UpdateViewsRequest struct {
	Views []schematic.SchemaView `json:"views"`
}

// UpdateSortRequest 更新默认排序请求，sort 为 null 时清除
type UpdateSortRequest struct {
	Sort *schematic.DefaultSort `json:"sort"`
}

// UpdateDisplayRequest 更新显示名与主字段请求
type UpdateDisplayRequest struct {
	DisplayName  string              `json:"display_name" example:"Products"`
	PrimaryField *schematic.FieldKey `json:"primary_field,omitempty" swaggertype:"string"`
}

// addonID 从上下文取插件ID
func addonID(r *http.Request) int64 {
	id, _ := middleware.AddonIDFromContext(r.Context())
	return id
}

// loadSchema 按路径中的 {schema} 加载表定义，失败时已写出响应
func loadSchema(w http.ResponseWriter, r *http.Request, schemas *cms.SchemaService) (*models.SchemaModel, bool) {
	schema, err := schemas.GetSchema(r.Context(), addonID(r), chi.URLParam(r, "schema"))
	if err != nil {
		renderError(w, r, err)
		return nil, false
	}
	return schema, true
}

// CreateSchema 创建动态表
// @Summary 创建动态表
// @Description 为插件创建新的动态表，自动生成系统字段
// @Tags 动态表
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema body cms.CreateSchemaRequest true "表信息"
// @Success 201 {object} APIResponse{data=models.SchemaModel}
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /addons/{addon_id}/schemas [post]
func (c *SchemaController) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var req cms.CreateSchemaRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}
	req.AddonID = addonID(r)

	schema, err := c.schemas.CreateSchema(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, CreatedResponse("创建成功", schema))
}

// ListSchemas 获取插件的表列表
// @Summary 获取表列表
// @Tags 动态表
// @Produce json
// @Param addon_id path int true "插件ID"
// @Success 200 {object} APIResponse{data=[]models.SchemaModel}
// @Failure 500 {object} APIResponse
// @Router /addons/{addon_id}/schemas [get]
func (c *SchemaController) ListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := c.schemas.ListSchemas(r.Context(), addonID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("查询成功", schemas))
}

// GetSchema 获取表定义
// @Summary 获取表定义
// @Tags 动态表
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Success 200 {object} APIResponse{data=models.SchemaModel}
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema} [get]
func (c *SchemaController) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	render.Render(w, r, SuccessResponse("查询成功", schema))
}

// UpdateDisplay 更新显示名与主字段
// @Summary 更新表显示信息
// @Tags 动态表
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body UpdateDisplayRequest true "显示信息"
// @Success 200 {object} APIResponse{data=models.SchemaModel}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema} [put]
func (c *SchemaController) UpdateDisplay(w http.ResponseWriter, r *http.Request) {
	var req UpdateDisplayRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数格式错误", nil))
		return
	}

	schema, err := c.schemas.UpdateDisplay(r.Context(), addonID(r), chi.URLParam(r, "schema"), req.DisplayName, req.PrimaryField)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("更新成功", schema))
}

// DeleteSchema 删除动态表
// @Summary 删除动态表
// @Description 软删除表定义及其全部数据行
// @Tags 动态表
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema} [delete]
func (c *SchemaController) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := c.schemas.DeleteSchema(r.Context(), addonID(r), chi.URLParam(r, "schema")); err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("删除成功", nil))
}

// AddColumns 新增字段
// @Summary 新增字段
// @Description 一次新增一个或多个字段，任一字段不合法时全部不生效
// @Tags 动态表
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body AddColumnsRequest true "字段列表"
// @Success 200 {object} APIResponse{data=models.SchemaModel}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/columns [post]
func (c *SchemaController) AddColumns(w http.ResponseWriter, r *http.Request) {
	var req AddColumnsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}
	if len(req.Columns) == 0 {
		render.Render(w, r, BadRequestResponse("字段列表不能为空", nil))
		return
	}

	schema, err := c.schemas.AddColumns(r.Context(), addonID(r), chi.URLParam(r, "schema"), req.Columns)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("字段添加成功", schema))
}

// DeleteColumn 删除字段
// @Summary 删除字段
// @Description 字段仅标记删除，ID 不可复用
// @Tags 动态表
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param column path string true "字段ID"
// @Success 200 {object} APIResponse{data=models.SchemaModel}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/columns/{column} [delete]
func (c *SchemaController) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	column := schematic.FieldKey(chi.URLParam(r, "column"))
	schema, err := c.schemas.DeleteColumn(r.Context(), addonID(r), chi.URLParam(r, "schema"), column)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("字段删除成功", schema))
}

// UpdateViews 更新保存的视图
// @Summary 更新视图
// @Tags 动态表
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body UpdateViewsRequest true "视图列表"
// @Success 200 {object} APIResponse{data=models.SchemaModel}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/views [put]
func (c *SchemaController) UpdateViews(w http.ResponseWriter, r *http.Request) {
	var req UpdateViewsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	schema, err := c.schemas.UpdateViews(r.Context(), addonID(r), chi.URLParam(r, "schema"), req.Views)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("视图更新成功", schema))
}

// UpdateSort 更新默认排序
// @Summary 更新默认排序
// @Tags 动态表
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body UpdateSortRequest true "默认排序"
// @Success 200 {object} APIResponse{data=models.SchemaModel}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/sort [put]
func (c *SchemaController) UpdateSort(w http.ResponseWriter, r *http.Request) {
	var req UpdateSortRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	schema, err := c.schemas.UpdateDefaultSort(r.Context(), addonID(r), chi.URLParam(r, "schema"), req.Sort)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("排序更新成功", schema))
}

package controllers

import (
	"fmt"
	"net/http"

	"addonhub-service/service/cms"
	"addonhub-service/service/schematic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// TagController 标签控制器
type TagController struct {
	schemas *cms.SchemaService
	tags    *cms.TagService
}

// NewTagController 创建标签控制器实例
func NewTagController(schemas *cms.SchemaService, tags *cms.TagService) *TagController {
	return &TagController{schemas: schemas, tags: tags}
}

// ListTags 获取标签列表
// @Summary 获取标签列表
// @Tags 标签
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param field query string false "标签字段ID"
// @Success 200 {object} APIResponse{data=[]models.SchemaDataTagModel}
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/tags [get]
func (c *TagController) ListTags(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	tags, err := c.tags.List(r.Context(), schema.ID, schematic.FieldKey(r.URL.Query().Get("field")))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("查询成功", tags))
}

// CreateTag 创建标签，同名（不区分大小写）标签已存在时返回已有标签
// @Summary 创建标签
// @Tags 标签
// @Accept json
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param body body cms.CreateTagRequest true "标签信息"
// @Success 200 {object} APIResponse{data=models.SchemaDataTagModel}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/tags [post]
func (c *TagController) CreateTag(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	var req cms.CreateTagRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("请求参数格式错误:%s", err.Error()), nil))
		return
	}

	field, err := schema.Field(req.Field)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if field.FieldType != schematic.FieldTags {
		render.Render(w, r, BadRequestResponse(fmt.Sprintf("字段 %s 不是标签类型", req.Field), nil))
		return
	}

	tag, err := c.tags.GetOrCreate(r.Context(), schema.ID, req.Field, req.Name, req.Color)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("创建成功", tag))
}

// DeleteTag 删除标签
// @Summary 删除标签
// @Tags 标签
// @Produce json
// @Param addon_id path int true "插件ID"
// @Param schema path string true "表名"
// @Param tag_id path int true "标签ID"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /addons/{addon_id}/schemas/{schema}/tags/{tag_id} [delete]
func (c *TagController) DeleteTag(w http.ResponseWriter, r *http.Request) {
	schema, ok := loadSchema(w, r, c.schemas)
	if !ok {
		return
	}

	tagID, err := cast.ToInt64E(chi.URLParam(r, "tag_id"))
	if err != nil {
		render.Render(w, r, BadRequestResponse("无效的标签ID", nil))
		return
	}

	if err := c.tags.Delete(r.Context(), schema.ID, tagID); err != nil {
		renderError(w, r, err)
		return
	}

	render.Render(w, r, SuccessResponse("删除成功", nil))
}

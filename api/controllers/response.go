package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"addonhub-service/service/cms"
	"addonhub-service/service/distributed_lock"
	"addonhub-service/service/models"
	"addonhub-service/service/schematic"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`

	httpStatus int
}

// Render 设置HTTP状态码
func (a *APIResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, a.httpStatus)
	return nil
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// Render 分页响应固定返回 200
func (p *PaginatedResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, http.StatusOK)
	return nil
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data, httpStatus: http.StatusOK}
}

// CreatedResponse 创建成功响应
func CreatedResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data, httpStatus: http.StatusCreated}
}

// BadRequestResponse 参数错误响应
func BadRequestResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: http.StatusBadRequest, Msg: msg, Data: data, httpStatus: http.StatusBadRequest}
}

// NotFoundResponse 资源不存在响应
func NotFoundResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: http.StatusNotFound, Msg: msg, Data: data, httpStatus: http.StatusNotFound}
}

// ConflictResponse 冲突响应
func ConflictResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: http.StatusConflict, Msg: msg, Data: data, httpStatus: http.StatusConflict}
}

// InternalErrorResponse 服务器内部错误响应
func InternalErrorResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: http.StatusInternalServerError, Msg: msg, Data: data, httpStatus: http.StatusInternalServerError}
}

var notFoundErrors = []error{
	cms.ErrSchemaNotFound,
	cms.ErrRowNotFound,
	cms.ErrTagNotFound,
	schematic.ErrColumnNotFound,
}

var conflictErrors = []error{
	cms.ErrConcurrentModification,
	cms.ErrSchemaExists,
	distributed_lock.ErrLockBusy,
}

var badRequestErrors = []error{
	schematic.ErrUnknownFieldType,
	schematic.ErrTypeMismatch,
	schematic.ErrValueTooLarge,
	schematic.ErrInvalidFilter,
	schematic.ErrInvalidSortOrder,
	schematic.ErrInvalidPermission,
	schematic.ErrColumnIDInvalid,
	schematic.ErrColumnIDReused,
	schematic.ErrColumnIDExists,
	schematic.ErrTooManyColumns,
	schematic.ErrTooManyColumnsEverCreated,
	schematic.ErrMissingReferencedSchema,
	schematic.ErrSystemFieldImmutable,
	schematic.ErrInvalidIdentifier,
	models.ErrFieldValueMissing,
	cms.ErrInvalidStore,
	cms.ErrImportLengthMismatch,
	cms.ErrAddonStoreReadOnly,
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorResponse 按错误类型映射响应，未识别的错误只返回通用信息
func ErrorResponse(err error) *APIResponse {
	switch {
	case matchesAny(err, notFoundErrors):
		return NotFoundResponse(err.Error(), nil)
	case matchesAny(err, conflictErrors):
		return ConflictResponse(err.Error(), nil)
	case matchesAny(err, badRequestErrors):
		return BadRequestResponse(err.Error(), nil)
	}
	return InternalErrorResponse("服务器内部错误", nil)
}

// renderError 记录并输出错误响应
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse(err)
	if resp.httpStatus >= http.StatusInternalServerError {
		slog.Error("请求处理失败", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		slog.Debug("请求被拒绝", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	render.Render(w, r, resp)
}

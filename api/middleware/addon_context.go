/*
 * @module api/middleware/addon_context
 * @description 插件上下文中间件，从路径解析 addon_id 并注入请求上下文
 * @architecture 中间件模式 - HTTP请求拦截和验证
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 路径参数提取 -> 校验 -> 上下文注入 -> 下一个处理器
 * @rules addon_id 必须为正整数，否则直接返回 400
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render, github.com/spf13/cast
 * @refs api/routes.go
 */

package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// ContextKey 上下文键类型
type ContextKey string

// AddonIDKey 插件ID在上下文中的键
const AddonIDKey ContextKey = "addon_id"

// AddonContext 解析路径中的 {addon_id}
func AddonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "addon_id")
		addonID, err := cast.ToInt64E(raw)
		if err != nil || addonID <= 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]interface{}{
				"status": http.StatusBadRequest,
				"msg":    "无效的插件ID: " + raw,
			})
			return
		}

		ctx := context.WithValue(r.Context(), AddonIDKey, addonID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AddonIDFromContext 从上下文获取插件ID
func AddonIDFromContext(ctx context.Context) (int64, bool) {
	addonID, ok := ctx.Value(AddonIDKey).(int64)
	return addonID, ok
}

/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"addonhub-service/api/controllers"
	addonmw "addonhub-service/api/middleware"
	"addonhub-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// Handlers 路由使用的控制器集合
type Handlers struct {
	Health *controllers.HealthController
	Schema *controllers.SchemaController
	Data   *controllers.SchemaDataController
	Tag    *controllers.TagController
}

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 使用全局服务初始化控制器
	MountRoutes(r, Handlers{
		Health: controllers.NewHealthController(service.DB),
		Schema: controllers.NewSchemaController(service.GlobalSchemaService),
		Data: controllers.NewSchemaDataController(
			service.GlobalSchemaService,
			service.GlobalDataService,
			service.GlobalImportService,
			service.Config.Query,
		),
		Tag: controllers.NewTagController(service.GlobalSchemaService, service.GlobalTagService),
	})
}

// MountRoutes 挂载业务路由
func MountRoutes(r chi.Router, h Handlers) {
	// 健康检查
	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)

	r.Route("/addons/{addon_id}/schemas", func(r chi.Router) {
		r.Use(addonmw.AddonContext)

		// 表定义
		r.Post("/", h.Schema.CreateSchema)
		r.Get("/", h.Schema.ListSchemas)

		r.Route("/{schema}", func(r chi.Router) {
			r.Get("/", h.Schema.GetSchema)
			r.Put("/", h.Schema.UpdateDisplay)
			r.Delete("/", h.Schema.DeleteSchema)

			// 字段
			r.Post("/columns", h.Schema.AddColumns)
			r.Delete("/columns/{column}", h.Schema.DeleteColumn)

			// 视图与默认排序
			r.Put("/views", h.Schema.UpdateViews)
			r.Put("/sort", h.Schema.UpdateSort)

			// 数据行
			r.Route("/rows", func(r chi.Router) {
				r.Post("/", h.Data.CreateRow)
				r.Post("/query", h.Data.QueryRows)
				r.Get("/{row}", h.Data.GetRow)
				r.Delete("/{row}", h.Data.DeleteRow)
				r.Put("/{row}/fields/{column}", h.Data.UpdateField)
				r.Post("/{row}/duplicate", h.Data.DuplicateRow)
			})

			// 批量导入
			r.Post("/import", h.Data.ImportRows)

			// 标签
			r.Get("/tags", h.Tag.ListTags)
			r.Post("/tags", h.Tag.CreateTag)
			r.Delete("/tags/{tag_id}", h.Tag.DeleteTag)
		})
	})
}

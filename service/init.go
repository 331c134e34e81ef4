/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、分布式锁、业务服务与调度器的初始化
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 加载配置 -> 连接数据库 -> 迁移 -> 初始化锁 -> 初始化服务 -> 启动调度器
 * @rules 确保所有依赖服务正常启动后才提供API服务；Redis 不可用时退化为进程内锁
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite
 * @refs service/config/config_manager.go
 */

package service

import (
	"log"

	"addonhub-service/client"
	"addonhub-service/service/cms"
	"addonhub-service/service/config"
	"addonhub-service/service/database"
	"addonhub-service/service/distributed_lock"
	"addonhub-service/service/scheduler"

	"github.com/spf13/cast"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB                     *gorm.DB
	Config                 *config.AppConfig
	GlobalLock             distributed_lock.DistributedLock
	GlobalAddonClient      *client.AddonClient
	GlobalSchemaService    *cms.SchemaService
	GlobalDataService      *cms.DataService
	GlobalTagService       *cms.TagService
	GlobalImportService    *cms.ImportService
	GlobalSchedulerService *scheduler.SchedulerService
)

// Init 按配置初始化全部服务，失败直接退出
func Init(cfg *config.AppConfig) {
	Config = cfg
	initDatabase(cfg)
	runMigrations()
	initLock(cfg)
	initServices(cfg)
}

// initDatabase 初始化数据库连接
func initDatabase(cfg *config.AppConfig) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	default:
		dialector = postgres.Open(cfg.Database.PostgresDSN())
	}

	gormConfig := &gorm.Config{TranslateError: true}
	if cfg.Logging.Level != "debug" {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}

	var err error
	DB, err = gorm.Open(dialector, gormConfig)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	if cfg.Database.Driver == "sqlite" {
		// SQLite 单写者
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	log.Printf("数据库连接成功 [%s]", cfg.Database.Driver)
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("所有数据库迁移任务完成")
}

// initLock 初始化表结构修改锁
func initLock(cfg *config.AppConfig) {
	if !cfg.Redis.RedisEnabled() {
		GlobalLock = distributed_lock.NewLocalLock()
		log.Println("未配置Redis，使用进程内锁")
		return
	}

	redisLock, err := distributed_lock.NewRedisLock(distributed_lock.RedisOptions{
		Host:     cfg.Redis.Host,
		Port:     cast.ToString(cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("Redis分布式锁初始化失败，使用进程内锁: %v", err)
		GlobalLock = distributed_lock.NewLocalLock()
		return
	}
	GlobalLock = redisLock
}

// initServices 初始化服务
func initServices(cfg *config.AppConfig) {
	GlobalAddonClient = client.NewAddonClient(client.AddonClientConfig{
		BaseURL:      cfg.Addon.BaseURL,
		DaprHTTPPort: cfg.Addon.DaprHTTPPort,
		AppIDFormat:  cfg.Addon.AppIDFormat,
		MaxRetries:   2,
	})

	GlobalSchemaService = cms.NewSchemaService(DB, GlobalLock)
	GlobalDataService = cms.NewDataService(DB, GlobalAddonClient)
	GlobalTagService = cms.NewTagService(DB)
	GlobalImportService = cms.NewImportService(DB, GlobalTagService)

	// 初始化调度器服务
	GlobalSchedulerService = scheduler.NewSchedulerService(GlobalSchemaService, GlobalDataService, cfg.Scheduler.TTLCron)
	if err := GlobalSchedulerService.Start(); err != nil {
		log.Printf("启动调度器服务失败: %v", err)
	}
	log.Println("服务初始化完成")
}

// Shutdown 停止调度器并释放连接
func Shutdown() {
	if GlobalSchedulerService != nil {
		GlobalSchedulerService.Stop()
	}
	if closer, ok := GlobalLock.(*distributed_lock.RedisLock); ok {
		if err := closer.Close(); err != nil {
			log.Printf("关闭Redis连接失败: %v", err)
		}
	}
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

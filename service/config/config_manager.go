/*
 * @module service/config/config_manager
 * @description 应用配置加载，YAML 配置文件打底，环境变量覆盖
 * @architecture 分层架构 - 基础设施层
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 默认值 -> CONFIG_FILE(yaml) -> 环境变量 -> 校验
 * @rules 环境变量优先级最高；数字类型的环境变量解析失败时报错而不是静默忽略
 * @dependencies gopkg.in/yaml.v3, github.com/spf13/cast
 * @refs service/init.go
 */

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Addon     AddonConfig     `yaml:"addon"`
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Query     QueryConfig     `yaml:"query"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port        int    `yaml:"port"`
	BaseContext string `yaml:"base_context"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // postgres | sqlite
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"ssl_mode"`
	Schema     string `yaml:"schema"`
	SQLitePath string `yaml:"sqlite_path"`
}

// RedisConfig Redis配置，Host 为空时使用进程内锁
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AddonConfig 插件数据服务配置
type AddonConfig struct {
	BaseURL      string `yaml:"base_url"`
	DaprHTTPPort string `yaml:"dapr_http_port"`
	AppIDFormat  string `yaml:"app_id_format"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig TTL清理调度配置
type SchedulerConfig struct {
	TTLCron string `yaml:"ttl_cron"`
}

// QueryConfig 查询分页配置
type QueryConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MinLimit     int `yaml:"min_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Port: 80},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       5432,
			User:       "postgres",
			Name:       "postgres",
			SSLMode:    "disable",
			Schema:     "public",
			SQLitePath: "addonhub.db",
		},
		Redis:     RedisConfig{Port: 6379},
		Addon:     AddonConfig{AppIDFormat: "addon-%d"},
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{TTLCron: "0 */10 * * * *"},
		Query:     QueryConfig{DefaultLimit: 50, MinLimit: 20, MaxLimit: 500},
	}
}

// Load 加载配置：默认值，CONFIG_FILE 指定的 yaml 文件，再由环境变量覆盖
func Load() (*AppConfig, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := cast.ToIntE(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("环境变量 %s 不是有效数字: %q", key, value)
	}
	return n, nil
}

// applyEnvironmentOverrides 应用环境变量覆盖
func applyEnvironmentOverrides(cfg *AppConfig) error {
	var err error

	if cfg.Server.Port, err = getEnvInt("LISTEN_PORT", cfg.Server.Port); err != nil {
		return err
	}
	cfg.Server.BaseContext = getEnvWithDefault("BASE_CONTEXT", cfg.Server.BaseContext)

	db := &cfg.Database
	db.Driver = strings.ToLower(getEnvWithDefault("DB_DRIVER", db.Driver))
	db.URL = getEnvWithDefault("DATABASE_URL", db.URL)
	db.Host = getEnvWithDefault("DB_HOST", db.Host)
	if db.Port, err = getEnvInt("DB_PORT", db.Port); err != nil {
		return err
	}
	db.User = getEnvWithDefault("DB_USER", db.User)
	db.Password = getEnvWithDefault("DB_PASSWORD", db.Password)
	db.Name = getEnvWithDefault("DB_NAME", db.Name)
	db.SSLMode = getEnvWithDefault("DB_SSLMODE", db.SSLMode)
	db.Schema = getEnvWithDefault("DB_SCHEMA", db.Schema)
	db.SQLitePath = getEnvWithDefault("SQLITE_PATH", db.SQLitePath)

	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", cfg.Redis.Host)
	if cfg.Redis.Port, err = getEnvInt("REDIS_PORT", cfg.Redis.Port); err != nil {
		return err
	}
	cfg.Redis.Password = getEnvWithDefault("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}

	cfg.Addon.BaseURL = getEnvWithDefault("ADDON_BASE_URL", cfg.Addon.BaseURL)
	cfg.Addon.DaprHTTPPort = getEnvWithDefault("DAPR_HTTP_PORT", cfg.Addon.DaprHTTPPort)
	cfg.Addon.AppIDFormat = getEnvWithDefault("ADDON_APP_ID_FORMAT", cfg.Addon.AppIDFormat)

	cfg.Logging.Level = strings.ToLower(getEnvWithDefault("LOG_LEVEL", cfg.Logging.Level))
	cfg.Scheduler.TTLCron = getEnvWithDefault("TTL_CRON", cfg.Scheduler.TTLCron)
	if cfg.Query.DefaultLimit, err = getEnvInt("QUERY_DEFAULT_LIMIT", cfg.Query.DefaultLimit); err != nil {
		return err
	}
	return nil
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("服务器端口无效: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("数据库主机不能为空")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLite 文件路径不能为空")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.Query.MinLimit <= 0 || c.Query.MaxLimit < c.Query.MinLimit {
		return fmt.Errorf("分页范围无效: [%d, %d]", c.Query.MinLimit, c.Query.MaxLimit)
	}
	if c.Query.DefaultLimit < c.Query.MinLimit || c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("默认分页大小 %d 不在 [%d, %d] 范围内", c.Query.DefaultLimit, c.Query.MinLimit, c.Query.MaxLimit)
	}
	return nil
}

// PostgresDSN 构造 postgres 连接串，DATABASE_URL 优先
func (c *DatabaseConfig) PostgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Schema)
}

// RedisEnabled 是否配置了 Redis
func (c *RedisConfig) RedisEnabled() bool {
	return c.Host != ""
}

// Addr Redis 地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClampLimit 将分页大小限制在配置范围内，非正数使用默认值
func (q QueryConfig) ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return q.DefaultLimit
	case limit < q.MinLimit:
		return q.MinLimit
	case limit > q.MaxLimit:
		return q.MaxLimit
	}
	return limit
}

/**
 * @module SchedulerService
 * @description TTL 清理调度器，定时软删除超过表 TTL 的数据行
 * @architecture 基于 robfig/cron 的定时调度
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow cron 触发 -> 列出配置 TTL 的表 -> 逐表软删除 created_at 早于 now-ttl 的行
 * @rules 同一时刻只运行一轮清理；单张表失败不影响其他表；TTL 单位为秒
 * @dependencies gorm, cron库
 * @refs ../cms/schema_service.go, ../cms/data_service.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"addonhub-service/service/models"
)

// DefaultTTLCron 默认每10分钟执行一次（带秒字段）
const DefaultTTLCron = "0 */10 * * * *"

// TTLSource 列出配置了TTL的表
type TTLSource interface {
	ListTTLSchemas(ctx context.Context) ([]models.SchemaModel, error)
}

// Purger 清理某张表中早于指定时间的行
type Purger interface {
	PurgeExpired(ctx context.Context, schema *models.SchemaModel, before time.Time) (int64, error)
}

// SchedulerService 调度器服务
type SchedulerService struct {
	source  TTLSource
	purger  Purger
	spec    string
	cron    *cron.Cron
	running sync.Mutex
	now     func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewSchedulerService 创建调度器服务，spec 为空时使用默认周期
func NewSchedulerService(source TTLSource, purger Purger, spec string) *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())
	if spec == "" {
		spec = DefaultTTLCron
	}

	return &SchedulerService{
		source: source,
		purger: purger,
		spec:   spec,
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 启动调度器
func (s *SchedulerService) Start() error {
	log.Println("启动TTL清理调度器")

	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.PurgeExpired(s.ctx); err != nil {
			log.Printf("TTL清理失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}

	s.cron.Start()
	log.Printf("TTL清理调度器启动完成 [%s]", s.spec)
	return nil
}

// Stop 停止调度器
func (s *SchedulerService) Stop() {
	log.Println("停止TTL清理调度器")
	s.cancel()
	<-s.cron.Stop().Done()
}

// PurgeExpired 执行一轮清理，返回软删除的总行数；上一轮未结束时直接跳过
func (s *SchedulerService) PurgeExpired(ctx context.Context) (int64, error) {
	if !s.running.TryLock() {
		log.Println("上一轮TTL清理尚未结束，跳过")
		return 0, nil
	}
	defer s.running.Unlock()

	schemas, err := s.source.ListTTLSchemas(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	now := s.now()
	for i := range schemas {
		schema := &schemas[i]
		if schema.TTL == nil || *schema.TTL <= 0 {
			continue
		}
		before := now.Add(-time.Duration(*schema.TTL) * time.Second)
		purged, err := s.purger.PurgeExpired(ctx, schema, before)
		if err != nil {
			log.Printf("清理表数据失败 [%d %s]: %v", schema.ID, schema.Name, err)
			continue
		}
		total += purged
	}
	return total, nil
}

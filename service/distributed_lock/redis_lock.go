/*
 * @module service/distributed_lock/redis_lock
 * @description 分布式锁实现，多实例部署时串行化同一张动态表定义的修改
 * @architecture 工具层 - 提供分布式锁能力
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 获取锁 -> 读取表定义 -> 修改并按版本号写回 -> 释放锁/自动过期
 * @rules 使用Redis SET NX实现，只有持有者可以释放；未配置Redis时退化为进程内锁
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/cms/schema_service.go, service/init.go
 */

package distributed_lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrLockBusy 锁被其他请求或实例持有
var ErrLockBusy = errors.New("资源正在被修改，请稍后重试")

const lockKeyPrefix = "addonhub:schema:lock:"

// DistributedLock 分布式锁接口
type DistributedLock interface {
	// TryLock 尝试获取锁
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Unlock 释放锁
	Unlock(ctx context.Context, key string) error
}

// RedisOptions Redis连接参数
type RedisOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisLock Redis分布式锁实现
type RedisLock struct {
	client     *redis.Client
	instanceID string // 实例ID，用于标识锁的持有者
}

// NewRedisLock 创建Redis分布式锁
func NewRedisLock(opts RedisOptions) (*RedisLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	// 生成实例ID（使用主机名+进程ID）
	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s:%d", hostname, os.Getpid())

	slog.Info("Redis分布式锁初始化成功",
		"instance_id", instanceID,
		"redis_host", opts.Host,
		"redis_port", opts.Port)

	return &RedisLock{
		client:     client,
		instanceID: instanceID,
	}, nil
}

// TryLock 尝试获取锁
// 使用SET NX命令，只有当key不存在时才会设置成功
func (r *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := r.client.SetNX(ctx, lockKeyPrefix+key, r.instanceID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("获取锁失败: %w", err)
	}

	if result {
		slog.Debug("分布式锁: 成功获取锁",
			"key", key,
			"ttl", ttl,
			"instance", r.instanceID)
	}

	return result, nil
}

// unlockScript 检查锁的持有者是否是当前实例，是则删除
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Unlock 释放锁
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	result, err := unlockScript.Run(ctx, r.client, []string{lockKeyPrefix + key}, r.instanceID).Int64()
	if err != nil {
		return fmt.Errorf("释放锁失败: %w", err)
	}

	if result == 1 {
		slog.Debug("分布式锁: 成功释放锁",
			"key", key,
			"instance", r.instanceID)
	} else {
		slog.Warn("分布式锁: 锁不存在或已被其他实例持有",
			"key", key,
			"instance", r.instanceID)
	}

	return nil
}

// Close 关闭Redis客户端
func (r *RedisLock) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// LocalLock 进程内锁，单实例部署或未配置Redis时使用
type LocalLock struct {
	mu     sync.Mutex
	expiry map[string]time.Time
}

// NewLocalLock 创建进程内锁
func NewLocalLock() *LocalLock {
	return &LocalLock{expiry: make(map[string]time.Time)}
}

// TryLock 尝试获取锁，过期的锁视为已释放
func (l *LocalLock) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, held := l.expiry[key]; held && now.Before(until) {
		return false, nil
	}
	l.expiry[key] = now.Add(ttl)
	return true, nil
}

// Unlock 释放锁
func (l *LocalLock) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expiry, key)
	return nil
}

// LockExecutor 带锁执行器，用于简化锁的使用
type LockExecutor struct {
	lock    DistributedLock
	retries int
	backoff time.Duration
}

// NewLockExecutor 创建带锁执行器，获取失败时按固定间隔重试
func NewLockExecutor(lock DistributedLock) *LockExecutor {
	return &LockExecutor{lock: lock, retries: 5, backoff: 50 * time.Millisecond}
}

// ExecuteWithLock 在锁保护下执行函数，重试后仍未获取到锁返回 ErrLockBusy
func (e *LockExecutor) ExecuteWithLock(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	locked := false
	for attempt := 0; attempt <= e.retries; attempt++ {
		var err error
		locked, err = e.lock.TryLock(ctx, key, ttl)
		if err != nil {
			return fmt.Errorf("获取锁失败: %w", err)
		}
		if locked {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.backoff):
		}
	}

	if !locked {
		slog.Debug("分布式锁: 锁已被持有", "key", key)
		return fmt.Errorf("%w: %s", ErrLockBusy, key)
	}

	// 确保函数执行完毕后释放锁
	defer func() {
		if unlockErr := e.lock.Unlock(context.WithoutCancel(ctx), key); unlockErr != nil {
			slog.Error("分布式锁: 释放锁失败", "key", key, "error", unlockErr)
		}
	}()

	return fn()
}

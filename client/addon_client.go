/*
 * @module client/addon_client
 * @description 插件数据服务HTTP客户端，addon 存储的表的查询与计数转发到插件自身
 * @architecture 适配器模式 - 封装插件数据接口的HTTP调用
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 构造请求 -> 解析插件地址(Dapr服务调用或直连) -> 发送 -> 失败重试 -> 解析并规整为 SimpleValue
 * @rules 响应中的数字保持整数/浮点区分；5xx 与网络错误按次数重试，4xx 不重试
 * @dependencies net/http, encoding/json, github.com/spf13/cast
 * @refs service/cms/data_service.go
 */

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"addonhub-service/service/schematic"

	"github.com/spf13/cast"
)

// ErrAddonRequest 插件数据服务返回错误
var ErrAddonRequest = errors.New("插件数据服务请求失败")

// AddonClientConfig 插件客户端配置
type AddonClientConfig struct {
	BaseURL      string        `json:"base_url"`       // 直连地址，未启用Dapr时使用
	DaprHTTPPort string        `json:"dapr_http_port"` // Dapr sidecar 端口，设置后通过服务调用访问
	AppIDFormat  string        `json:"app_id_format"`  // 插件的 Dapr 应用ID格式，如 addon-%d
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
}

// AddonClient 插件数据服务客户端
type AddonClient struct {
	config     AddonClientConfig
	httpClient *http.Client
	stats      *ClientStats
}

// ClientStats 客户端统计信息
type ClientStats struct {
	RequestCount    int64     `json:"request_count"`
	SuccessCount    int64     `json:"success_count"`
	ErrorCount      int64     `json:"error_count"`
	LastRequestTime time.Time `json:"last_request_time"`
	mutex           sync.RWMutex
}

// addonQueryRequest 查询请求体
type addonQueryRequest struct {
	Schema  string                   `json:"schema"`
	Filters []schematic.SchemaFilter `json:"filters"`
	Sort    *schematic.DefaultSort   `json:"sort,omitempty"`
	Offset  int                      `json:"offset"`
	Limit   int                      `json:"limit"`
}

// NewAddonClient 创建插件客户端
func NewAddonClient(config AddonClientConfig) *AddonClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.AppIDFormat == "" {
		config.AppIDFormat = "addon-%d"
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &AddonClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		stats:      &ClientStats{},
	}
}

// endpoint 插件某个方法的完整地址
func (c *AddonClient) endpoint(addonID int64, method string) string {
	if c.config.DaprHTTPPort != "" {
		appID := fmt.Sprintf(c.config.AppIDFormat, addonID)
		return fmt.Sprintf("http://localhost:%s/v1.0/invoke/%s/method/%s", c.config.DaprHTTPPort, appID, method)
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + method
}

// QueryRows 查询插件存储的数据行
func (c *AddonClient) QueryRows(ctx context.Context, addonID int64, schema string, filters []schematic.SchemaFilter, sort *schematic.DefaultSort, offset, limit int) ([]map[string]schematic.SimpleValue, error) {
	var resp struct {
		Rows []map[string]interface{} `json:"rows"`
	}
	req := addonQueryRequest{Schema: schema, Filters: filters, Sort: sort, Offset: offset, Limit: limit}
	if err := c.post(ctx, addonID, "schema/query", req, &resp); err != nil {
		return nil, err
	}

	rows := make([]map[string]schematic.SimpleValue, 0, len(resp.Rows))
	for i, raw := range resp.Rows {
		row := make(map[string]schematic.SimpleValue, len(raw))
		for key, value := range raw {
			sv, err := schematic.FromInterface(value)
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行字段 %s: %v", ErrAddonRequest, i+1, key, err)
			}
			row[key] = sv
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CountRows 统计插件存储的数据行
func (c *AddonClient) CountRows(ctx context.Context, addonID int64, schema string, filters []schematic.SchemaFilter) (int64, error) {
	var resp struct {
		Count interface{} `json:"count"`
	}
	req := addonQueryRequest{Schema: schema, Filters: filters}
	if err := c.post(ctx, addonID, "schema/count", req, &resp); err != nil {
		return 0, err
	}
	count, err := cast.ToInt64E(resp.Count)
	if err != nil {
		return 0, fmt.Errorf("%w: 计数格式错误: %v", ErrAddonRequest, err)
	}
	return count, nil
}

// post 发送请求，5xx 与网络错误按配置重试
func (c *AddonClient) post(ctx context.Context, addonID int64, method string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}
	url := c.endpoint(addonID, method)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}

		retry, err := c.do(ctx, addonID, url, payload, out)
		c.record(err)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
		slog.Warn("插件数据服务请求失败，准备重试", "addon_id", addonID, "method", method, "attempt", attempt+1, "error", err)
	}
	return lastErr
}

func (c *AddonClient) do(ctx context.Context, addonID int64, url string, payload []byte, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Addon-Id", cast.ToString(addonID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("%w: %v", ErrAddonRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp.StatusCode >= 500, fmt.Errorf("%w: HTTP %d: %s", ErrAddonRequest, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return false, fmt.Errorf("%w: 解析响应失败: %v", ErrAddonRequest, err)
	}
	return false, nil
}

func (c *AddonClient) record(err error) {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.RequestCount++
	c.stats.LastRequestTime = time.Now()
	if err != nil {
		c.stats.ErrorCount++
	} else {
		c.stats.SuccessCount++
	}
}

// GetStatistics 获取统计信息
func (c *AddonClient) GetStatistics() map[string]interface{} {
	c.stats.mutex.RLock()
	defer c.stats.mutex.RUnlock()
	return map[string]interface{}{
		"request_count":     c.stats.RequestCount,
		"success_count":     c.stats.SuccessCount,
		"error_count":       c.stats.ErrorCount,
		"last_request_time": c.stats.LastRequestTime,
	}
}

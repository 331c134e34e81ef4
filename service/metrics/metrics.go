/*
 * @module service/metrics/metrics
 * @description 动态表引擎的 Prometheus 指标
 * @architecture 工具层 - 可观测性
 * @documentReference dev_docs/cms_schema.md
 * @stateFlow 业务服务记录 -> 默认注册表 -> /metrics 暴露
 * @rules 标签取值有限，不使用表名或行ID作为标签
 * @dependencies github.com/prometheus/client_golang
 * @refs main.go, service/cms
 */

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryTotal 数据查询次数，按存储方式与结果区分
	QueryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "addonhub",
		Subsystem: "cms",
		Name:      "queries_total",
		Help:      "Number of schema data queries.",
	}, []string{"store", "result"})

	// QueryDuration 数据查询耗时
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "addonhub",
		Subsystem: "cms",
		Name:      "query_duration_seconds",
		Help:      "Duration of schema data queries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"store"})

	// ImportedRows 批量导入成功的行数
	ImportedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "addonhub",
		Subsystem: "cms",
		Name:      "imported_rows_total",
		Help:      "Number of rows created by bulk import.",
	})

	// TagInsertRaces 标签并发插入冲突后回读的次数
	TagInsertRaces = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "addonhub",
		Subsystem: "cms",
		Name:      "tag_insert_races_total",
		Help:      "Number of tag inserts that lost a race and re-fetched the winner.",
	})

	// SchemaConflicts 表定义乐观并发写入冲突次数
	SchemaConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "addonhub",
		Subsystem: "cms",
		Name:      "schema_conflicts_total",
		Help:      "Number of schema writes rejected by the revision check.",
	})

	// PurgedRows TTL 清理软删除的行数
	PurgedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "addonhub",
		Subsystem: "cms",
		Name:      "ttl_purged_rows_total",
		Help:      "Number of rows soft-deleted by the TTL purge.",
	})
)

// ObserveQuery 记录一次查询
func ObserveQuery(store string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	QueryTotal.WithLabelValues(store, result).Inc()
	QueryDuration.WithLabelValues(store).Observe(time.Since(start).Seconds())
}

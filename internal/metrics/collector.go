// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// 节点指标
	nodeExecutionsTotal   *prometheus.CounterVec
	nodeExecutionDuration *prometheus.HistogramVec

	// 媒体缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// 上传指标
	uploadsTotal    prometheus.Counter
	uploadSizeBytes prometheus.Histogram
	inlineFallbacks *prometheus.CounterVec

	// 凭证解析指标
	credentialResolutions *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 节点指标
	c.nodeExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_executions_total",
			Help:      "Total number of node executions",
		},
		[]string{"node_type", "status"},
	)

	c.nodeExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_execution_duration_seconds",
			Help:      "Node execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"node_type"},
	)

	// 媒体缓存指标
	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// 上传指标
	c.uploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_uploads_total",
			Help:      "Total number of successful media uploads",
		},
	)

	c.uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "media_upload_size_bytes",
			Help:      "Uploaded media payload size in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	c.inlineFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_inline_fallbacks_total",
			Help:      "Total number of resolutions degraded to inline transmission",
		},
		[]string{"reason"},
	)

	// 凭证解析指标
	c.credentialResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_resolutions_total",
			Help:      "Total number of credential resolution attempts",
		},
		[]string{"source", "status"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 节点指标记录
// =============================================================================

// RecordNodeExecution 记录节点执行
func (c *Collector) RecordNodeExecution(nodeType, status string, duration time.Duration) {
	c.nodeExecutionsTotal.WithLabelValues(nodeType, status).Inc()
	c.nodeExecutionDuration.WithLabelValues(nodeType).Observe(duration.Seconds())
}

// =============================================================================
// 💾 媒体缓存指标记录
// =============================================================================

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordUpload 记录一次成功上传
func (c *Collector) RecordUpload(sizeBytes int) {
	c.uploadsTotal.Inc()
	c.uploadSizeBytes.Observe(float64(sizeBytes))
}

// RecordInlineFallback 记录一次内联降级
func (c *Collector) RecordInlineFallback(reason string) {
	c.inlineFallbacks.WithLabelValues(reason).Inc()
}

// =============================================================================
// 🔐 凭证指标记录
// =============================================================================

// RecordCredentialResolution 记录凭证解析结果
func (c *Collector) RecordCredentialResolution(source, status string) {
	c.credentialResolutions.WithLabelValues(source, status).Inc()
}

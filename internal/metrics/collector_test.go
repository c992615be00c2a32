package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.nodeExecutionsTotal)
	assert.NotNil(t, collector.nodeExecutionDuration)
	assert.NotNil(t, collector.cacheHits)
	assert.NotNil(t, collector.cacheMisses)
	assert.NotNil(t, collector.uploadsTotal)
	assert.NotNil(t, collector.inlineFallbacks)
}

func TestCollector_RecordNodeExecution(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录执行
	collector.RecordNodeExecution("veo_video", "success", 8*time.Second)

	// 验证指标
	count := testutil.CollectAndCount(collector.nodeExecutionsTotal)
	assert.Greater(t, count, 0)

	// 再记录一次失败
	collector.RecordNodeExecution("veo_video", "error", 2*time.Second)

	newCount := testutil.CollectAndCount(collector.nodeExecutionsTotal)
	assert.GreaterOrEqual(t, newCount, count)
}

func TestCollector_RecordCacheOperation(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 记录缓存命中
	collector.RecordCacheHit("media")

	// 记录缓存未命中
	collector.RecordCacheMiss("media")

	// 验证指标
	hitCount := testutil.CollectAndCount(collector.cacheHits)
	assert.Greater(t, hitCount, 0)

	missCount := testutil.CollectAndCount(collector.cacheMisses)
	assert.Greater(t, missCount, 0)
}

func TestCollector_RecordUpload(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordUpload(4 * 1024 * 1024)

	assert.InDelta(t, 1, testutil.ToFloat64(collector.uploadsTotal), 0.01)
}

func TestCollector_RecordInlineFallback(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordInlineFallback("upload_failed")
	collector.RecordInlineFallback("store_not_configured")

	count := testutil.CollectAndCount(collector.inlineFallbacks)
	assert.Equal(t, 2, count)
}

func TestCollector_RecordCredentialResolution(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	collector.RecordCredentialResolution("service_account_file", "success")

	count := testutil.CollectAndCount(collector.credentialResolutions)
	assert.Greater(t, count, 0)
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	logger := zap.NewNop()
	collector := NewCollector(nextTestNamespace(), logger)

	// 并发记录多个指标
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			collector.RecordNodeExecution("imagen_image", "success", 3*time.Second)
			collector.RecordCacheHit("media")
			collector.RecordUpload(1024)
			done <- true
		}(i)
	}

	// 等待所有 goroutine 完成
	for i := 0; i < 10; i++ {
		<-done
	}

	// 验证指标被正确记录
	nodeCount := testutil.CollectAndCount(collector.nodeExecutionsTotal)
	assert.Greater(t, nodeCount, 0)

	cacheCount := testutil.CollectAndCount(collector.cacheHits)
	assert.Greater(t, cacheCount, 0)

	assert.InDelta(t, 10, testutil.ToFloat64(collector.uploadsTotal), 0.01)
}

func TestCollector_MetricsRegistration(t *testing.T) {
	logger := zap.NewNop()

	// 创建自定义 registry
	registry := prometheus.NewRegistry()

	// 创建 collector（会自动注册到默认 registry）
	collector := NewCollector(nextTestNamespace(), logger)

	// 手动注册到自定义 registry
	registry.MustRegister(collector.nodeExecutionsTotal)
	registry.MustRegister(collector.nodeExecutionDuration)

	// 记录一些数据
	collector.RecordNodeExecution("lyria_audio", "success", time.Second)

	// 验证可以从自定义 registry 收集指标
	count := testutil.CollectAndCount(collector.nodeExecutionsTotal)
	assert.Greater(t, count, 0)
}

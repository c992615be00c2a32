// 配置文件监听器测试。
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeTestConfig 写入一份最小的 MediaFlow 配置
func writeTestConfig(t *testing.T, path, level string, columns int) {
	t.Helper()
	content := fmt.Sprintf("log:\n  level: %s\ngrid:\n  columns: %d\ncache:\n  backend: memory\n", level, columns)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewConfigWatcher_Defaults(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f)
	require.NoError(t, err)
	assert.Equal(t, f, w.Path())
	assert.Equal(t, 1*time.Second, w.pollInterval)
	assert.Equal(t, 100*time.Millisecond, w.debounce)
	assert.False(t, w.Running())
}

func TestNewConfigWatcher_WithOptions(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f,
		WithPollInterval(20*time.Millisecond),
		WithDebounce(10*time.Millisecond),
		WithWatchLogger(zap.NewNop()),
	)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, w.pollInterval)
	assert.Equal(t, 10*time.Millisecond, w.debounce)
}

func TestNewConfigWatcher_EmptyPath(t *testing.T) {
	_, err := NewConfigWatcher("")
	assert.Error(t, err)
}

func TestNewConfigWatcher_MissingFileWatchesForCreation(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")

	// 文件尚不存在也应成功创建监听器
	w, err := NewConfigWatcher(f)
	require.NoError(t, err)
	assert.False(t, w.exists)
}

func TestConfigWatcher_Lifecycle(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	assert.True(t, w.Running())

	// 重复启动应报错
	assert.Error(t, w.Start(ctx))

	require.NoError(t, w.Stop())
	assert.False(t, w.Running())

	// 重复停止应幂等
	require.NoError(t, w.Stop())
}

func TestConfigWatcher_DetectsModification(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f,
		WithPollInterval(20*time.Millisecond),
		WithDebounce(10*time.Millisecond),
	)
	require.NoError(t, err)

	var mu sync.Mutex
	var events []WatchEvent
	w.OnEvent(func(evt WatchEvent) {
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// 轮询用修改时间判定变化，确保时间戳前移
	future := time.Now().Add(2 * time.Second)
	writeTestConfig(t, f, "debug", 3)
	require.NoError(t, os.Chtimes(f, future, future))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 1
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, f, events[0].Path)
	assert.Equal(t, EventModified, events[0].Kind)
}

func TestConfigWatcher_DetectsRemovalAndCreation(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f,
		WithPollInterval(20*time.Millisecond),
		WithDebounce(10*time.Millisecond),
	)
	require.NoError(t, err)

	var mu sync.Mutex
	var kinds []EventKind
	w.OnEvent(func(evt WatchEvent) {
		mu.Lock()
		kinds = append(kinds, evt.Kind)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.Remove(f))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(kinds) >= 1 && kinds[0] == EventRemoved
	}, 3*time.Second, 20*time.Millisecond)

	writeTestConfig(t, f, "info", 2)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(kinds) >= 2 && kinds[1] == EventCreated
	}, 3*time.Second, 20*time.Millisecond)
}

// 去抖窗口内的连续写入应合并为一次回调。
func TestConfigWatcher_DebounceCoalesces(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0
	w.OnEvent(func(evt WatchEvent) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	// 直接注入事件，绕过轮询时序
	w.mu.Lock()
	for i := 0; i < 5; i++ {
		w.enqueue(WatchEvent{Path: f, Kind: EventModified, At: time.Now()})
	}
	w.mu.Unlock()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestConfigWatcher_ContextCancelStopsPolling(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mediaflow.yaml")
	writeTestConfig(t, f, "info", 2)

	w, err := NewConfigWatcher(f, WithPollInterval(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	cancel()
	time.Sleep(100 * time.Millisecond)

	// 取消上下文后 Stop 仍应正常返回
	require.NoError(t, w.Stop())
}

func TestEventKind_String(t *testing.T) {
	tests := []struct {
		kind     EventKind
		expected string
	}{
		{EventCreated, "created"},
		{EventModified, "modified"},
		{EventRemoved, "removed"},
		{EventKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

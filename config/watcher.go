// 配置文件变更监听。
//
// 轮询单个 MediaFlow 配置文件的修改时间，带去抖地触发重载回调。
// 不依赖 fsnotify，跨平台行为一致。
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// --- 事件类型 ---

// EventKind 表示配置文件发生的变化类型。
type EventKind int

const (
	// EventCreated 表示配置文件刚出现
	EventCreated EventKind = iota
	// EventModified 表示配置文件内容被修改
	EventModified
	// EventRemoved 表示配置文件被删除
	EventRemoved
)

// String returns the string representation of EventKind
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// WatchEvent 携带一次配置文件变更的信息。
type WatchEvent struct {
	// Path 是被监听的配置文件绝对路径
	Path string `json:"path"`

	// Kind 是变化类型
	Kind EventKind `json:"kind"`

	// At 是检测到变化的时间
	At time.Time `json:"at"`
}

// --- 监听器选项 ---

// WatchOption configures the ConfigWatcher
type WatchOption func(*ConfigWatcher)

// WithPollInterval 设置轮询间隔（默认 1s）
func WithPollInterval(d time.Duration) WatchOption {
	return func(w *ConfigWatcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithDebounce 设置去抖窗口，编辑器连续写入只触发一次回调（默认 100ms）
func WithDebounce(d time.Duration) WatchOption {
	return func(w *ConfigWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher
func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(w *ConfigWatcher) {
		w.logger = logger
	}
}

// --- 监听器实现 ---

// ConfigWatcher 监听单个 MediaFlow 配置文件。
//
// 文件不存在时继续监听，等待其被创建后触发 EventCreated。
type ConfigWatcher struct {
	mu sync.Mutex

	path         string
	pollInterval time.Duration
	debounce     time.Duration
	logger       *zap.Logger

	callbacks []func(WatchEvent)

	// 轮询状态：上次可见的修改时间与存在性
	lastMod time.Time
	exists  bool

	running  bool
	stopChan chan struct{}

	// 去抖状态
	pending      *WatchEvent
	pendingTimer *time.Timer
}

// NewConfigWatcher creates a watcher for the given config file path
func NewConfigWatcher(path string, opts ...WatchOption) (*ConfigWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}

	w := &ConfigWatcher{
		path:         absPath,
		pollInterval: 1 * time.Second,
		debounce:     100 * time.Millisecond,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	if info, err := os.Stat(absPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config path %s: %w", absPath, err)
		}
		w.logger.Warn("Config file does not exist yet, watching for creation",
			zap.String("path", absPath))
	} else {
		w.lastMod = info.ModTime()
		w.exists = true
	}

	return w, nil
}

// Path returns the watched config file path
func (w *ConfigWatcher) Path() string {
	return w.path
}

// OnEvent registers a callback for config file changes
func (w *ConfigWatcher) OnEvent(callback func(WatchEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins polling the config file
func (w *ConfigWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("config watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})

	go w.pollLoop(ctx)

	w.logger.Info("Config watcher started",
		zap.String("path", w.path),
		zap.Duration("poll_interval", w.pollInterval),
		zap.Duration("debounce", w.debounce))

	return nil
}

// Stop stops the watcher
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	w.running = false

	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
		w.pendingTimer = nil
		w.pending = nil
	}

	w.logger.Info("Config watcher stopped")
	return nil
}

// Running returns whether the watcher is polling
func (w *ConfigWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ConfigWatcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check 比对文件当前状态与上次轮询的状态
func (w *ConfigWatcher) check() {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) && w.exists {
			w.exists = false
			w.lastMod = time.Time{}
			w.enqueue(WatchEvent{Path: w.path, Kind: EventRemoved, At: time.Now()})
		}
		return
	}

	switch {
	case !w.exists:
		w.exists = true
		w.lastMod = info.ModTime()
		w.enqueue(WatchEvent{Path: w.path, Kind: EventCreated, At: time.Now()})
	case info.ModTime().After(w.lastMod):
		w.lastMod = info.ModTime()
		w.enqueue(WatchEvent{Path: w.path, Kind: EventModified, At: time.Now()})
	}
}

// enqueue 记录待分发事件并重置去抖定时器。调用方须持锁。
//
// 去抖窗口内的后一个事件覆盖前一个：保存文件的「truncate + write」
// 只会作为单次 modified 送达。
func (w *ConfigWatcher) enqueue(event WatchEvent) {
	w.pending = &event

	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}
	w.pendingTimer = time.AfterFunc(w.debounce, w.flush)
}

// flush 把去抖后的事件分发给全部回调
func (w *ConfigWatcher) flush() {
	w.mu.Lock()
	event := w.pending
	w.pending = nil
	callbacks := make([]func(WatchEvent), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	if event == nil {
		return
	}

	w.logger.Debug("Dispatching config event",
		zap.String("path", event.Path),
		zap.String("kind", event.Kind.String()))

	for _, cb := range callbacks {
		cb(*event)
	}
}

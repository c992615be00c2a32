// Package mediaflow provides a top-level convenience entry point for running
// generative media workflow nodes with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/mediaflow"
//
//	cfg := config.MustLoad("config.yaml")
//	engine, err := mediaflow.New(ctx, cfg, mediaflow.Backends{
//	    Generator: vertexGenerator,
//	    Analyzer:  geminiAnalyzer,
//	})
//	defer engine.Close(ctx)
//
//	run := engine.NewRun()
//	defer run.Close(ctx)
//
//	out, err := run.Execute(ctx, node.TypeVeoVideo, node.Inputs{
//	    "prompt": "a red kite over the sea",
//	    "count":  2,
//	})
//
// The engine wires configuration, logging, telemetry, metrics, credential
// resolution, and the media reference cache together; each Run scopes one
// workflow execution with its own media session.
package mediaflow

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/internal/metrics"
	"github.com/BaSui01/mediaflow/internal/redisconn"
	"github.com/BaSui01/mediaflow/internal/telemetry"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/node"
)

// Backends supplies the cloud backends the built-in nodes delegate to.
// A nil Analyzer leaves the analysis node unregistered; a nil Generator
// leaves the generation nodes unregistered. Display nodes need neither.
type Backends struct {
	Generator node.Generator
	Analyzer  node.Analyzer
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger replaces the logger built from config.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
			e.ownLogger = false
		}
	}
}

// WithObjectStore replaces the GCS object store built from config.
func WithObjectStore(store media.ObjectStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithEntryStore replaces the entry store built from config.
func WithEntryStore(entries media.EntryStore) Option {
	return func(e *Engine) { e.entries = entries }
}

// WithConfigPath enables hot reload: the engine watches the given config
// file and applies the reloadable fields (log level, upload rate limit,
// grid columns) to running collaborators without a restart.
func WithConfigPath(path string) Option {
	return func(e *Engine) { e.configPath = path }
}

// Engine holds the long-lived collaborators shared by every workflow
// run: resolver, media cache, node registry, and observability.
type Engine struct {
	cfg       *config.Config
	logger    *zap.Logger
	ownLogger bool
	logLevel  *zap.AtomicLevel
	collector *metrics.Collector
	providers *telemetry.Providers
	resolver  *auth.Resolver
	entries   media.EntryStore
	store     media.ObjectStore
	cache     *media.ReferenceCache
	registry  *node.Registry
	rdb       *redisconn.Manager
	gcs       *media.GCSStore

	// 热重载
	configPath  string
	hotReload   *config.HotReloadManager
	gridColumns atomic.Int32
}

// New assembles an engine from configuration. Storage and Redis are
// optional: without a bucket the cache degrades to inline transfer,
// without Redis entries live in process memory.
func New(ctx context.Context, cfg *config.Config, backends Backends, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &Engine{cfg: cfg, registry: node.NewRegistry()}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		logger, level := newLeveledLogger(cfg.Log)
		e.logger = logger
		e.logLevel = &level
		e.ownLogger = true
	}
	e.gridColumns.Store(int32(cfg.Grid.Columns))

	providers, err := telemetry.Init(cfg.Telemetry, e.logger)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	e.providers = providers

	if cfg.Metrics.Enabled {
		e.collector = metrics.NewCollector(cfg.Metrics.Namespace, e.logger)
	}

	e.resolver = auth.NewResolver(e.logger)

	if e.entries == nil {
		e.entries, err = e.buildEntryStore()
		if err != nil {
			return nil, err
		}
	}
	if e.store == nil {
		e.store = e.buildObjectStore(ctx)
	}

	cacheOpts := []media.CacheOption{media.WithLogger(e.logger)}
	if cfg.Cache.UploadRateLimit > 0 {
		cacheOpts = append(cacheOpts, media.WithUploadLimit(cfg.Cache.UploadRateLimit, cfg.Cache.UploadRateBurst))
	}
	if e.collector != nil {
		cacheOpts = append(cacheOpts, media.WithMetrics(e.collector))
	}
	e.cache = media.NewReferenceCache(e.entries, e.store, cacheOpts...)

	if err := e.registerBuiltins(backends); err != nil {
		return nil, err
	}

	if e.configPath != "" {
		manager := config.NewHotReloadManager(cfg,
			config.WithConfigPath(e.configPath),
			config.WithHotReloadLogger(e.logger),
		)
		manager.OnReload(e.applyReload)
		if err := manager.Start(ctx); err != nil {
			return nil, fmt.Errorf("start hot reload: %w", err)
		}
		e.hotReload = manager
	}

	e.logger.Info("engine assembled",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("storage_configured", e.store != nil),
		zap.Strings("node_types", e.registry.Types()),
	)
	return e, nil
}

// buildEntryStore picks the entry store backend from config.
func (e *Engine) buildEntryStore() (media.EntryStore, error) {
	if e.cfg.Cache.Backend != "redis" {
		return media.NewMemoryEntryStore(), nil
	}

	connCfg := redisconn.DefaultConfig()
	connCfg.Addr = e.cfg.Redis.Addr
	connCfg.Password = e.cfg.Redis.Password
	connCfg.DB = e.cfg.Redis.DB
	connCfg.PoolSize = e.cfg.Redis.PoolSize
	connCfg.MinIdleConns = e.cfg.Redis.MinIdleConns
	connCfg.TLS = e.cfg.Redis.TLS

	conn, err := redisconn.NewManager(connCfg, e.logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", e.cfg.Redis.Addr, err)
	}
	e.rdb = conn
	return media.NewRedisEntryStore(conn.Client(), e.cfg.Cache.TTL), nil
}

// buildObjectStore connects GCS when a bucket is configured. Failures
// degrade to inline transfer instead of blocking engine startup.
func (e *Engine) buildObjectStore(ctx context.Context) media.ObjectStore {
	if e.cfg.Storage.Bucket == "" {
		return nil
	}

	identity, err := e.resolver.Resolve(ctx, e.cfg.Auth)
	if err != nil {
		e.logger.Warn("credential resolution failed, media will be transferred inline", zap.Error(err))
		return nil
	}

	gcs, err := media.NewGCSStore(ctx, e.cfg.Storage.Bucket, identity.TokenSource(),
		media.WithGCSLogger(e.logger),
		media.WithObjectPrefix(e.cfg.Storage.ObjectPrefix),
	)
	if err != nil {
		e.logger.Warn("storage unavailable, media will be transferred inline", zap.Error(err))
		return nil
	}
	e.gcs = gcs
	return gcs
}

func (e *Engine) registerBuiltins(backends Backends) error {
	if backends.Generator != nil && backends.Analyzer != nil {
		return node.RegisterBuiltins(e.registry, backends.Generator, backends.Analyzer)
	}

	// 部分后端缺失时只注册能工作的类型
	if backends.Generator != nil {
		generators := map[string]func(*node.Runtime, node.Generator) (node.Node, error){
			node.TypeVeoVideo:    node.NewVeoVideoNode,
			node.TypeImagenImage: node.NewImagenImageNode,
			node.TypeLyriaAudio:  node.NewLyriaAudioNode,
		}
		for nodeType, ctor := range generators {
			if err := e.registry.Register(nodeType, func(rt *node.Runtime) (node.Node, error) {
				return ctor(rt, backends.Generator)
			}); err != nil {
				return err
			}
		}
	}
	if backends.Analyzer != nil {
		if err := e.registry.Register(node.TypeMediaAnalysis, func(rt *node.Runtime) (node.Node, error) {
			return node.NewMediaAnalysisNode(rt, backends.Analyzer)
		}); err != nil {
			return err
		}
	}

	displays := map[string]node.Factory{
		node.TypeVideoDisplay: node.NewVideoDisplayNode,
		node.TypeAudioDisplay: node.NewAudioDisplayNode,
		node.TypeImageDisplay: node.NewImageDisplayNode,
	}
	for nodeType, factory := range displays {
		if err := e.registry.Register(nodeType, factory); err != nil {
			return err
		}
	}
	return nil
}

// applyReload pushes reloadable config fields into running collaborators.
// Fields registered as restart-level are logged and applied on next start.
func (e *Engine) applyReload(oldCfg, newCfg *config.Config) {
	if oldCfg.Log.Level != newCfg.Log.Level && e.logLevel != nil {
		e.logLevel.SetLevel(parseLogLevel(newCfg.Log.Level))
		e.logger.Info("log level reloaded",
			zap.String("old", oldCfg.Log.Level),
			zap.String("new", newCfg.Log.Level))
	}

	if oldCfg.Cache.UploadRateLimit != newCfg.Cache.UploadRateLimit ||
		oldCfg.Cache.UploadRateBurst != newCfg.Cache.UploadRateBurst {
		e.cache.SetUploadLimit(newCfg.Cache.UploadRateLimit, newCfg.Cache.UploadRateBurst)
		e.logger.Info("upload rate limit reloaded",
			zap.Float64("per_second", newCfg.Cache.UploadRateLimit),
			zap.Int("burst", newCfg.Cache.UploadRateBurst))
	}

	if oldCfg.Grid.Columns != newCfg.Grid.Columns && newCfg.Grid.Columns > 0 {
		e.gridColumns.Store(int32(newCfg.Grid.Columns))
		e.logger.Info("grid columns reloaded",
			zap.Int("old", oldCfg.Grid.Columns),
			zap.Int("new", newCfg.Grid.Columns))
	}
}

// HotReload returns the hot reload manager, or nil when the engine was
// built without [WithConfigPath].
func (e *Engine) HotReload() *config.HotReloadManager { return e.hotReload }

// Registry exposes the node registry for custom node types.
func (e *Engine) Registry() *node.Registry { return e.registry }

// Cache exposes the media reference cache.
func (e *Engine) Cache() *media.ReferenceCache { return e.cache }

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger { return e.logger }

// Close releases long-lived resources: storage client, Redis, and the
// telemetry providers.
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if e.hotReload != nil {
		if err := e.hotReload.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop hot reload: %w", err))
		}
	}
	if e.gcs != nil {
		if err := e.gcs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if e.rdb != nil {
		if err := e.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if e.providers != nil {
		if err := e.providers.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	if e.ownLogger {
		_ = e.logger.Sync()
	}
	return errors.Join(errs...)
}

// Run scopes one workflow execution: its media session and its runtime.
type Run struct {
	engine  *Engine
	runtime *node.Runtime
	session *media.Session
}

// NewRun opens a workflow run with a fresh media session. Nodes created
// within the run share one resolved identity and one dedup scope.
func (e *Engine) NewRun(opts ...node.RuntimeOption) *Run {
	session := e.cache.Session("")

	rtOpts := []node.RuntimeOption{
		node.WithRuntimeLogger(e.logger),
		node.WithGridColumns(int(e.gridColumns.Load())),
	}
	if e.collector != nil {
		rtOpts = append(rtOpts, node.WithRuntimeMetrics(e.collector))
	}
	rtOpts = append(rtOpts, opts...)

	return &Run{
		engine:  e,
		runtime: node.NewRuntime(e.resolver, e.cfg.Auth, session, rtOpts...),
		session: session,
	}
}

// Runtime returns the run's shared node runtime.
func (r *Run) Runtime() *node.Runtime { return r.runtime }

// Execute creates a node of the given type and runs it against in.
func (r *Run) Execute(ctx context.Context, nodeType string, in node.Inputs) (node.Outputs, error) {
	n, err := r.engine.registry.Create(nodeType, r.runtime)
	if err != nil {
		return nil, err
	}
	return n.Execute(ctx, in)
}

// Close releases the run's media session and its dedup entries.
func (r *Run) Close(ctx context.Context) error {
	return r.session.Close(ctx)
}

// NewLogger builds a zap logger from log configuration.
func NewLogger(cfg config.LogConfig) *zap.Logger {
	logger, _ := newLeveledLogger(cfg)
	return logger
}

// parseLogLevel maps a config level string to a zap level, defaulting to info.
func parseLogLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// newLeveledLogger 构建日志器并返回其动态级别，热重载用它在线调级。
func newLeveledLogger(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel) {
	level := zap.NewAtomicLevelAt(parseLogLevel(cfg.Level))

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            level,
		Development:      cfg.Format == "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	var zapOpts []zap.Option
	if cfg.EnableCaller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(zapOpts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger, level
}

package media

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/BaSui01/mediaflow/internal/metrics"
	"github.com/BaSui01/mediaflow/types"
)

const instrumentationName = "github.com/BaSui01/mediaflow/media"

// ReferenceCache 把媒体负载物化为可复用的引用：优先返回远端 URI，
// 存储不可用时降级为内联数据。存储是复用优化，不是正确性依赖——
// 上传失败一律被吸收为 Inline 回退，绝不作为错误上浮。
//
// 条目按会话范围分区；同一范围内相同指纹的并发解析通过 singleflight
// 合并为一次上传（允许但不要求至多一次；重复远端对象可以接受）。
type ReferenceCache struct {
	entries EntryStore
	store   ObjectStore // 可为 nil：未配置存储时一律内联
	limiter *rate.Limiter
	sf      singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// CacheOption 配置 ReferenceCache.
type CacheOption func(*ReferenceCache)

// WithLogger 设置日志器.
func WithLogger(logger *zap.Logger) CacheOption {
	return func(c *ReferenceCache) {
		if logger != nil {
			c.logger = logger.With(zap.String("component", "media_cache"))
		}
	}
}

// WithUploadLimit 设置上传限速（每秒次数与突发量），保护存储配额。
// 限速器等待失败与上传失败同样降级为内联。
func WithUploadLimit(perSecond float64, burst int) CacheOption {
	return func(c *ReferenceCache) {
		c.SetUploadLimit(perSecond, burst)
	}
}

// WithMetrics 设置指标收集器.
func WithMetrics(m *metrics.Collector) CacheOption {
	return func(c *ReferenceCache) { c.metrics = m }
}

// SetUploadLimit 在运行期调整上传限速，供配置热重载使用。
// perSecond <= 0 解除限速。对进行中的 Wait 生效由 rate.Limiter 保证。
func (c *ReferenceCache) SetUploadLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		c.limiter.SetLimit(rate.Inf)
		c.limiter.SetBurst(0)
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter.SetLimit(rate.Limit(perSecond))
	c.limiter.SetBurst(burst)
}

// NewReferenceCache 创建引用缓存。entries 为 nil 时使用进程内存储；
// store 为 nil 表示未配置远端存储，所有未命中的负载都走内联。
func NewReferenceCache(entries EntryStore, store ObjectStore, opts ...CacheOption) *ReferenceCache {
	c := &ReferenceCache{
		entries: entries,
		store:   store,
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(instrumentationName),
	}
	if c.entries == nil {
		c.entries = NewMemoryEntryStore()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve 按以下顺序物化一条媒体：已有公网来源 → 会话内缓存命中 →
// 上传并记录 → 内联降级。只有负载非法（空字节或 MIME 无法识别）时
// 返回错误，且这发生在任何网络交互之前；存储层失败永不上浮。
func (c *ReferenceCache) Resolve(ctx context.Context, item Item, scope string) (Reference, error) {
	ctx, span := c.tracer.Start(ctx, "media.resolve",
		trace.WithAttributes(
			attribute.String("media.scope", scope),
			attribute.Int("media.size_bytes", len(item.Payload)),
		))
	defer span.End()

	// 1. 已可公网寻址的内容绝不重复上传
	if item.SourceURL != "" {
		span.SetAttributes(attribute.String("media.outcome", "source_url"))
		return Remote(item.SourceURL), nil
	}

	// 2. 网络交互前的本地校验
	mimeType, fingerprint, err := c.validate(item)
	if err != nil {
		span.SetAttributes(attribute.String("media.outcome", "invalid"))
		return Reference{}, err
	}

	// 3. 会话内查重
	if uri, ok, err := c.entries.Get(ctx, scope, fingerprint); err != nil {
		// 条目存储故障视同未命中，继续走上传路径
		c.logger.Warn("entry store lookup failed", zap.String("scope", scope), zap.Error(err))
	} else if ok {
		c.recordHit()
		span.SetAttributes(attribute.String("media.outcome", "hit"))
		return Remote(uri), nil
	}
	c.recordMiss()

	// 4. 未配置存储：直接内联
	if c.store == nil {
		c.recordFallback("store_not_configured")
		span.SetAttributes(attribute.String("media.outcome", "inline"))
		return Inline(item.Payload, mimeType), nil
	}

	// 5. 上传（同一 scope+指纹的并发解析合并为一次尝试；单次失败
	//    立即降级，不重试）
	uri, err := c.upload(ctx, item, scope, fingerprint, mimeType)
	if err != nil {
		c.logger.Warn("upload failed, falling back to inline transmission",
			zap.String("scope", scope),
			zap.String("name", item.Name),
			zap.String("mime_type", mimeType),
			zap.Error(err),
		)
		c.recordFallback("upload_failed")
		span.SetAttributes(attribute.String("media.outcome", "inline"))
		return Inline(item.Payload, mimeType), nil
	}

	span.SetAttributes(attribute.String("media.outcome", "uploaded"))
	return Remote(uri), nil
}

// validate 负载校验：空字节或 MIME 无法识别都是 INVALID_MEDIA.
func (c *ReferenceCache) validate(item Item) (mimeType, fingerprint string, err error) {
	if len(item.Payload) == 0 {
		return "", "", types.NewError(types.ErrInvalidMedia, "media payload is empty")
	}

	mimeType = item.MIMEType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = DetectMIME(item.Payload)
	}
	if mimeType == "" {
		return "", "", types.Errorf(types.ErrInvalidMedia,
			"unrecognized media type for %q: no declared MIME type and magic bytes unknown", item.Name)
	}

	fingerprint = item.Fingerprint
	if fingerprint == "" {
		fingerprint = FingerprintOf(item.Payload)
	}
	return mimeType, fingerprint, nil
}

func (c *ReferenceCache) upload(ctx context.Context, item Item, scope, fingerprint, mimeType string) (string, error) {
	key := scope + "\x00" + fingerprint
	uri, err, _ := c.sf.Do(key, func() (any, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, types.NewError(types.ErrUploadFailed, "upload rate limit wait aborted").WithCause(err)
			}
		}

		remoteURI, err := c.store.PutObject(ctx, item.Payload, mimeType)
		if err != nil {
			return nil, types.NewError(types.ErrUploadFailed, "object store rejected upload").WithCause(err)
		}
		c.recordUpload(len(item.Payload))

		// 写一次：并发写者中先到者胜出，后写是幂等空操作
		winner, err := c.entries.PutIfAbsent(ctx, scope, fingerprint, remoteURI)
		if err != nil {
			// 条目记录失败不影响本次解析，下次解析会重新上传
			c.logger.Warn("entry store write failed", zap.String("scope", scope), zap.Error(err))
			return remoteURI, nil
		}
		return winner, nil
	})
	if err != nil {
		return "", err
	}
	return uri.(string), nil
}

func (c *ReferenceCache) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordCacheHit("media")
	}
}

func (c *ReferenceCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss("media")
	}
}

func (c *ReferenceCache) recordUpload(sizeBytes int) {
	if c.metrics != nil {
		c.metrics.RecordUpload(sizeBytes)
	}
}

func (c *ReferenceCache) recordFallback(reason string) {
	if c.metrics != nil {
		c.metrics.RecordInlineFallback(reason)
	}
}

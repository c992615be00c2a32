package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/BaSui01/mediaflow/types"
)

// GCSStore 基于 Google Cloud Storage 的对象存储实现。
// 对象按内容指纹命名，相同内容的重复 Put 复用既有对象而不重新写入。
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// GCSOption 配置 GCSStore.
type GCSOption func(*GCSStore)

// WithGCSLogger 设置日志器.
func WithGCSLogger(logger *zap.Logger) GCSOption {
	return func(s *GCSStore) {
		if logger != nil {
			s.logger = logger.With(zap.String("component", "gcs_store"))
		}
	}
}

// WithObjectPrefix 设置对象键前缀，默认 "media".
func WithObjectPrefix(prefix string) GCSOption {
	return func(s *GCSStore) {
		if prefix != "" {
			s.prefix = strings.Trim(prefix, "/")
		}
	}
}

// NewGCSStore 创建 GCS 对象存储。ts 为 nil 时走应用默认凭证链。
func NewGCSStore(ctx context.Context, bucket string, ts oauth2.TokenSource, opts ...GCSOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, types.NewError(types.ErrInvalidConfiguration, "storage bucket name is required")
	}

	var clientOpts []option.ClientOption
	if ts != nil {
		clientOpts = append(clientOpts, option.WithTokenSource(ts))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, types.NewError(types.ErrConfiguration, "create storage client").WithCause(err)
	}

	s := &GCSStore{
		client: client,
		bucket: bucket,
		prefix: "media",
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PutObject 按内容指纹写入对象并返回 gs:// URI。
// 同名对象已存在时直接复用，不重复传输字节。
func (s *GCSStore) PutObject(ctx context.Context, data []byte, mimeType string) (string, error) {
	name := s.objectName(data, mimeType)
	obj := s.client.Bucket(s.bucket).Object(name)

	if _, err := obj.Attrs(ctx); err == nil {
		s.logger.Debug("object already present, reusing",
			zap.String("bucket", s.bucket),
			zap.String("object", name),
		)
		return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return "", fmt.Errorf("stat object %s: %w", name, err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = mimeType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", name, err)
	}

	s.logger.Debug("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.Int("size_bytes", len(data)),
	)
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

// ObjectExists 检查 gs:// URI 指向的对象是否存在.
func (s *GCSStore) ObjectExists(ctx context.Context, uri string) (bool, error) {
	bucket, object, err := parseGCSURI(uri)
	if err != nil {
		return false, err
	}
	_, err = s.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close 释放底层客户端连接.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectName(data []byte, mimeType string) string {
	fp := FingerprintOf(data)
	return fmt.Sprintf("%s/%s.%s", s.prefix, fp, extensionForMIME(mimeType))
}

func parseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed gs:// URI: %q", uri)
	}
	return bucket, object, nil
}

// =============================================================================
// 📦 MediaFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/grid"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Auth:      DefaultAuthConfig(),
		Storage:   DefaultStorageConfig(),
		Cache:     DefaultCacheConfig(),
		Redis:     DefaultRedisConfig(),
		Grid:      DefaultGridConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultAuthConfig 返回默认凭证配置
func DefaultAuthConfig() auth.Config {
	return auth.Config{
		Location: auth.DefaultLocation,
	}
}

// DefaultStorageConfig 返回默认对象存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Bucket:       "",
		ObjectPrefix: "media",
	}
}

// DefaultCacheConfig 返回默认缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Backend:         "memory",
		TTL:             0,
		UploadRateLimit: 0,
		UploadRateBurst: 1,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultGridConfig 返回默认网格配置
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Columns: grid.DefaultColumns,
		Prefix:  grid.DefaultPrefix,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "mediaflow",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "mediaflow",
	}
}

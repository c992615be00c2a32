package redisconn

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Manager 测试
// =============================================================================

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Manager) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	config := DefaultConfig()
	config.Addr = mr.Addr()
	config.HealthCheckInterval = 0

	manager, err := NewManager(config, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return mr, manager
}

func TestNewManager(t *testing.T) {
	_, manager := setupTestRedis(t)

	assert.NotNil(t, manager)
	assert.NotNil(t, manager.Client())
}

func TestNewManager_Unreachable(t *testing.T) {
	config := DefaultConfig()
	config.Addr = "127.0.0.1:1"

	_, err := NewManager(config, zap.NewNop())
	assert.Error(t, err)
}

func TestManager_Ping(t *testing.T) {
	mr, manager := setupTestRedis(t)

	require.NoError(t, manager.Ping(context.Background()))

	// 服务端下线后 Ping 失败
	mr.Close()
	assert.Error(t, manager.Ping(context.Background()))
}

func TestManager_ClientServesEntryKeys(t *testing.T) {
	mr, manager := setupTestRedis(t)

	ctx := context.Background()
	ok, err := manager.Client().SetNX(ctx, "mediaflow:media:scope:fp", "gs://bucket/obj", 0).Result()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("mediaflow:media:scope:fp"))
}

func TestManager_Close(t *testing.T) {
	_, manager := setupTestRedis(t)

	require.NoError(t, manager.Close())
	// 重复关闭是幂等的
	require.NoError(t, manager.Close())

	assert.Error(t, manager.Ping(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "localhost:6379", config.Addr)
	assert.Equal(t, 10, config.PoolSize)
	assert.False(t, config.TLS)
}

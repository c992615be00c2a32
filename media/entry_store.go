package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// 💾 内存条目存储（默认实现）
// =============================================================================

// MemoryEntryStore 进程内的会话级条目存储。生命周期与持有它的会话
// 一致：只增不减，仅靠 Forget 释放。这是默认实现，跨进程持久化
// 不是缓存的需求。
type MemoryEntryStore struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

// NewMemoryEntryStore 创建内存条目存储.
func NewMemoryEntryStore() *MemoryEntryStore {
	return &MemoryEntryStore{scopes: make(map[string]map[string]string)}
}

// Get 查询映射.
func (s *MemoryEntryStore) Get(_ context.Context, scope, fingerprint string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.scopes[scope]
	if !ok {
		return "", false, nil
	}
	uri, ok := entries[fingerprint]
	return uri, ok, nil
}

// PutIfAbsent 写一次语义：已有值时返回既有 URI，新写入无效.
func (s *MemoryEntryStore) PutIfAbsent(_ context.Context, scope, fingerprint, uri string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.scopes[scope]
	if !ok {
		entries = make(map[string]string)
		s.scopes[scope] = entries
	}
	if existing, ok := entries[fingerprint]; ok {
		return existing, nil
	}
	entries[fingerprint] = uri
	return uri, nil
}

// Forget 释放整个会话范围.
func (s *MemoryEntryStore) Forget(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.scopes, scope)
	return nil
}

// Len 返回某个会话范围内的条目数（测试与指标用）.
func (s *MemoryEntryStore) Len(scope string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes[scope])
}

// =============================================================================
// 💾 Redis 条目存储（多进程共享会话时可选）
// =============================================================================

// RedisEntryStore 基于 Redis SETNX 的条目存储：SETNX 天然给出
// "第一个成功写入者胜出"语义。供宿主引擎在多个进程间共享同一会话
// 时使用。
type RedisEntryStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisEntryStore 创建 Redis 条目存储。ttl 为 0 时条目不过期，
// 由宿主通过 Forget 管理生命周期。
func NewRedisEntryStore(rdb *redis.Client, ttl time.Duration) *RedisEntryStore {
	return &RedisEntryStore{rdb: rdb, ttl: ttl}
}

func (s *RedisEntryStore) key(scope, fingerprint string) string {
	return fmt.Sprintf("mediaflow:media:%s:%s", scope, fingerprint)
}

// Get 查询映射.
func (s *RedisEntryStore) Get(ctx context.Context, scope, fingerprint string) (string, bool, error) {
	uri, err := s.rdb.Get(ctx, s.key(scope, fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("entry store get failed: %w", err)
	}
	return uri, true, nil
}

// PutIfAbsent SETNX 写入；落败时读回先到写者的值.
func (s *RedisEntryStore) PutIfAbsent(ctx context.Context, scope, fingerprint, uri string) (string, error) {
	key := s.key(scope, fingerprint)

	set, err := s.rdb.SetNX(ctx, key, uri, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("entry store put failed: %w", err)
	}
	if set {
		return uri, nil
	}

	existing, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		// 竞争写者的条目恰好过期；调用方仍可使用自己的 URI
		return uri, nil
	}
	return existing, nil
}

// Forget 删除整个会话范围的键.
func (s *RedisEntryStore) Forget(ctx context.Context, scope string) error {
	pattern := fmt.Sprintf("mediaflow:media:%s:*", scope)

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("entry store scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("entry store delete failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

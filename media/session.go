package media

import (
	"context"

	"github.com/google/uuid"
)

// Session 是一次工作流运行内的媒体解析句柄：持有范围标识，
// 并在运行结束时清理该范围内的缓存条目。
type Session struct {
	cache *ReferenceCache
	scope string
}

// NewSessionScope 生成一个新的会话范围标识.
func NewSessionScope() string {
	return uuid.NewString()
}

// Session 以给定范围打开会话。scope 为空时自动生成。
func (c *ReferenceCache) Session(scope string) *Session {
	if scope == "" {
		scope = NewSessionScope()
	}
	return &Session{cache: c, scope: scope}
}

// Scope 返回会话的范围标识.
func (s *Session) Scope() string {
	return s.scope
}

// Resolve 在当前会话范围内解析媒体引用.
func (s *Session) Resolve(ctx context.Context, item Item) (Reference, error) {
	return s.cache.Resolve(ctx, item, s.scope)
}

// Close 丢弃会话范围内的全部缓存条目。已上传的远端对象不回收。
func (s *Session) Close(ctx context.Context) error {
	return s.cache.entries.Forget(ctx, s.scope)
}

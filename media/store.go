package media

import "context"

// ObjectStore 远端对象存储协作者的最小能力集。任何满足这两个方法的
// 实现都可以接入缓存；超时策略由实现方负责，缓存把超时与其他上传
// 失败同等对待（降级为内联）。
type ObjectStore interface {
	// PutObject 上传一份数据并返回其稳定 URI
	PutObject(ctx context.Context, data []byte, mimeType string) (string, error)
	// ObjectExists 检查 URI 指向的对象是否存在
	ObjectExists(ctx context.Context, uri string) (bool, error)
}

// EntryStore 按会话范围存放"内容指纹 → 远端 URI"的写一次映射。
// 同一 scope 内一个指纹一旦有值就不再被覆盖：并发写者中第一个成功
// 写入者胜出，后续相同指纹的写入是幂等的空操作。
type EntryStore interface {
	// Get 查询映射，第二个返回值报告是否命中
	Get(ctx context.Context, scope, fingerprint string) (string, bool, error)
	// PutIfAbsent 写入映射并返回胜出的 URI（可能是先到写者的值）
	PutIfAbsent(ctx context.Context, scope, fingerprint, uri string) (string, error)
	// Forget 释放整个会话范围的条目（会话销毁时调用）
	Forget(ctx context.Context, scope string) error
}

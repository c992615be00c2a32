// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

// Package media 提供会话级的媒体引用缓存与对象存储接入。
//
// 核心抽象：
//   - Item:           待解析的媒体负载（字节、MIME、可选公网来源）
//   - Reference:      解析结果，远端 URI 或内联数据二选一
//   - ReferenceCache: 按内容指纹去重的解析器，存储失败时内联降级
//   - ObjectStore:    远端对象存储（gcs.go 提供 GCS 实现）
//   - EntryStore:     指纹到 URI 的写一次映射（内存 / Redis 实现）
//
// 设计约束：
//   - 同一会话范围内相同指纹至多触发一次成功上传，后续解析复用 URI
//   - 存储层任何故障（上传、查重、限速等待）都降级为内联，不上浮错误
//   - 已带公网来源的媒体直接透传，绝不重复上传
//   - 缓存条目一经写入不可变更，并发写者先到者胜出
//
// 使用示例：
//
//	cache := media.NewReferenceCache(nil, store, media.WithLogger(logger))
//	session := cache.Session("")
//	defer session.Close(ctx)
//
//	ref, err := session.Resolve(ctx, media.Item{Payload: data, Name: "frame.png"})
//	if ref.IsRemote() {
//	    useURI(ref.URI())
//	} else {
//	    useBytes(ref.Payload(), ref.MIMEType())
//	}
package media

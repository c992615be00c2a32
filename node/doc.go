// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

// Package node 定义生成式媒体工作流的节点模型与内置节点。
//
// 节点模型：
//   - Spec:     节点类型声明（参数名、模式、默认值、候选值）
//   - Node:     Spec() + Execute(ctx, Inputs) 的执行单元
//   - Registry: 节点类型到工厂的注册表，RegisterBuiltins 注入全部内置类型
//   - Runtime:  单次工作流运行的共享依赖（凭证、媒体会话、网格列数、观测）
//
// 内置节点：
//   - veo_video / imagen_image / lyria_audio: 生成节点，输出按网格槽位展开
//   - media_analysis: 多媒体理解节点，并发解析输入媒体后提问
//   - video_display / audio_display / image_display: 展示节点，纯槽位扇出
//
// 生成与展示节点的输出槽位由 grid 包分配，槽位名随条目数增长保持稳定，
// 下游连线不会因为 count 调大而断开。
package node

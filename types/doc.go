// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 MediaFlow 节点库的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 auth、media、grid、node
等上层模块提供统一的错误契约。跨包共享的错误码与结构化错误均定义于此，
以避免循环依赖。

# 错误体系

  - ErrorCode — 统一错误码（CONFIGURATION、INVALID_MEDIA、INVALID_COUNT 等）
  - Error     — 结构化错误，携带 code、message、retryable 与底层 cause

配置与校验类错误（凭证解析失败、媒体负载非法、网格参数越界）是本地、
确定性的失败：不重试，直接上浮给调用方修正输入。存储层失败不属于这一
体系——media 包会将其吸收为 Inline 回退，永不作为执行错误上报。
*/
package types

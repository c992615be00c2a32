// 版权所有 2024 MediaFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的全链路指标采集能力，覆盖
节点执行、媒体缓存、媒体上传与凭证解析四大维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离，
支持多维度 label 分组，便于 Grafana 等工具进行可视化与告警。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram 等 Prometheus
    指标，按业务域分组管理。

# 主要能力

  - 节点指标：执行总数与执行耗时，按 node_type/status 分组。
  - 媒体缓存指标：命中与未命中计数，按 cache_type 分组。
  - 上传指标：成功上传计数、负载大小分布，以及按 reason 分组的
    内联降级计数。
  - 凭证指标：解析尝试计数，按 source/status 分组。

label 不携带会话标识，会话为一次性随机 ID，作为 label 会导致
基数爆炸。
*/
package metrics

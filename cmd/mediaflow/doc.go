// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

// mediaflow 是配置与凭证的命令行诊断工具。
//
// 子命令：
//   - validate: 加载配置（文件 + 环境变量）并校验
//   - auth:     按优先级解析凭证来源并打印结果（不输出凭证材料）
//   - nodes:    列出内置节点类型
//   - version:  显示构建信息
package main

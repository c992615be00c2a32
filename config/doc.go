// Package config 提供 MediaFlow 的配置管理功能。
//
// 包含配置加载、热重载和变更历史管理。
// 支持从文件和环境变量加载配置（含 Google Cloud 生态的
// 标准环境变量名），并提供运行时热重载能力。
package config

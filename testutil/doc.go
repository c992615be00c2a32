// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

// Package testutil 提供跨包共享的测试辅助：带超时的测试上下文、
// 最终一致断言，以及媒体负载与凭证 JSON 的样例构造器。
//
// 本包只应被 _test.go 文件引用。
package testutil

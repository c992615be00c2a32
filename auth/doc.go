// Copyright (c) MediaFlow Authors.
// Licensed under the MIT License.

/*
Package auth 将一组互斥、全部可选的 Google Cloud 凭证描述符解析为
恰好一个可用的"活动身份"。

# 解析优先级

固定顺序，首个语法可用者胜出，绝不合并：

 1. workload identity federation 配置文件（external_account JSON）
 2. service account 密钥文件
 3. 内联 service account JSON
 4. 仅凭 project id 的 Application Default Credentials

"可用"只意味着通过语法校验（文件存在、JSON 合法、必备字段齐全）；
凭证是否真正被授权不在此处检查，由下游调用失败时暴露。

# 行为约束

  - 纯本地决策：除读取描述符指向的文件外无任何副作用，不发网络请求，
    不重试，可被任意并发调用。
  - 密钥内容永不落日志；Identity 的 String/JSON 输出只含来源标签、
    project id 与区域。
  - 所有描述符都不可用时返回 CONFIGURATION 错误，逐一列出每个来源
    的失败原因，供用户修正配置。
*/
package auth

// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

/*
Package types 提供 AgentMesh 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 registry、connector、router、
orchestrator 与 api 等上层模块提供统一的类型契约。所有跨包共享的接口、
结构体、枚举和错误码均定义于此，以避免循环依赖。

# 核心接口与类型

  - ConnectionKind    — Agent 后端连接类型枚举（http_api、go_module 等）
  - AgentConfig       — Agent 配置记录（连接元数据、关键词、能力声明）
  - Invoker           — 统一调用接口，按连接类型在注册时绑定
  - Result            — 统一调用结果（status/result/message）
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码与 Retryable 标记
*/
package types

// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

/*
Package main 提供 AgentMesh 服务端程序入口。

# 概述

cmd/agentmesh 是 AgentMesh 的可执行入口，提供 HTTP API 服务、
健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、
结构化日志（zap）、Prometheus 指标采集以及 OpenTelemetry 追踪。

# 核心类型

  - Server     — 主服务器，管理 HTTP、Metrics 双端口及优雅关闭
  - Middleware — HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 子命令：serve（启动服务）、version、health
  - 组件装配：数据库 → 注册表 → 路由器 → 连接器 → 编排器 → 缓存
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    MetricsMiddleware、OTelTracing、RateLimiter（基于 IP）、
    APIKeyAuth（X-API-Key）或 JWTAuth（HS256 Bearer）
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 优雅关闭：信号监听 → 关闭 HTTP → 关闭 Metrics → 断开智能体 →
    关闭缓存与数据库 → 关闭遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main

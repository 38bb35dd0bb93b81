// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

// Package handlers 提供 AgentMesh 的 HTTP API 处理器。
//
// 端点分为四组：
//   - /api/agents      智能体注册与连接管理
//   - /api/command     单智能体路由执行
//   - /api/collaborate 多智能体协作工作流
//   - /health          健康检查
//
// 所有响应使用统一的 Response 信封，错误通过 types.ErrorCode 映射到
// HTTP 状态码。
package handlers

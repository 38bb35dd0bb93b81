// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

// Package connector 实现通用代理连接层（Universal Connector）。
//
// 它像 USB 接口一样把六种后端接入方式统一成一个调用契约：
// HTTP API、Go 模块工厂、命名函数、已构造实例、WebSocket 与 gRPC。
// 注册时完成一次性的方法绑定与健康检查，之后所有调用都走同一个
// Invoker 接口，失败永远以结构化 Result 返回而不是 panic。
package connector

// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

// Package orchestrator 实现多代理协作编排。
//
// 它分析请求是否需要多个代理协作（七类指示词 + 高信号短语），选取协作
// 代理并匹配预置工作流模板，然后按声明顺序执行依赖门控的步骤：依赖等待
// 基于 per-task 完成通道唤醒，带 30 秒上限，超时后以部分结果继续。最后
// 把所有成功步骤合成为一个综合回答。
package orchestrator

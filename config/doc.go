// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

// Package config 提供 AgentMesh 的统一配置加载。
// 配置优先级: 默认值 → YAML 文件 → 环境变量（AGENTMESH_ 前缀）。
package config

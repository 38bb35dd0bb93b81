// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖
HTTP、路由决策、代理调用、工作流与缓存五大维度。
*/
package metrics

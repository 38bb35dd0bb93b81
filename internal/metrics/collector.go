// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 路由指标
	routingDecisionsTotal *prometheus.CounterVec
	routingConfidence     *prometheus.HistogramVec

	// 代理调用指标
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	connectedAgents    *prometheus.GaugeVec

	// 工作流指标
	workflowsTotal     *prometheus.CounterVec
	workflowStepsTotal *prometheus.CounterVec
	workflowDuration   *prometheus.HistogramVec
	dependencyTimeouts prometheus.Counter

	// 缓存指标
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 路由指标
	c.routingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_decisions_total",
			Help:      "Total number of routing decisions",
		},
		[]string{"agent_id", "intent"},
	)

	c.routingConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_confidence",
			Help:      "Confidence score of routing decisions",
			Buckets:   []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1},
		},
		[]string{"agent_id"},
	)

	// 代理调用指标
	c.invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_invocations_total",
			Help:      "Total number of agent invocations",
		},
		[]string{"agent_id", "connection_type", "status"},
	)

	c.invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_invocation_duration_seconds",
			Help:      "Agent invocation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"agent_id", "connection_type"},
	)

	c.connectedAgents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_agents",
			Help:      "Number of connected agents by connection type",
		},
		[]string{"connection_type"},
	)

	// 工作流指标
	c.workflowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflows_total",
			Help:      "Total number of orchestrated workflows",
		},
		[]string{"pattern", "approach"},
	)

	c.workflowStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_steps_total",
			Help:      "Total number of executed workflow steps",
		},
		[]string{"agent_id", "status"},
	)

	c.workflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "End-to-end workflow duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"pattern"},
	)

	c.dependencyTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_dependency_timeouts_total",
			Help:      "Total number of dependency waits that hit the ceiling",
		},
	)

	// 缓存指标
	c.cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	c.cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🧭 路由指标记录
// =============================================================================

// RecordRoutingDecision 记录一次路由决策
func (c *Collector) RecordRoutingDecision(agentID, intent string, confidence float64) {
	c.routingDecisionsTotal.WithLabelValues(agentID, intent).Inc()
	c.routingConfidence.WithLabelValues(agentID).Observe(confidence)
}

// =============================================================================
// 🔌 代理调用指标记录
// =============================================================================

// RecordInvocation 记录一次代理调用
func (c *Collector) RecordInvocation(agentID, connectionType, status string, duration time.Duration) {
	c.invocationsTotal.WithLabelValues(agentID, connectionType, status).Inc()
	c.invocationDuration.WithLabelValues(agentID, connectionType).Observe(duration.Seconds())
}

// SetConnectedAgents 记录各连接类型的在线代理数
func (c *Collector) SetConnectedAgents(connectionType string, count int) {
	c.connectedAgents.WithLabelValues(connectionType).Set(float64(count))
}

// =============================================================================
// 🔀 工作流指标记录
// =============================================================================

// RecordWorkflow 记录一次编排请求
func (c *Collector) RecordWorkflow(pattern, approach string, duration time.Duration) {
	c.workflowsTotal.WithLabelValues(pattern, approach).Inc()
	c.workflowDuration.WithLabelValues(pattern).Observe(duration.Seconds())
}

// RecordWorkflowStep 记录一个工作流步骤
func (c *Collector) RecordWorkflowStep(agentID, status string) {
	c.workflowStepsTotal.WithLabelValues(agentID, status).Inc()
}

// RecordDependencyTimeout 记录一次依赖等待超时
func (c *Collector) RecordDependencyTimeout() {
	c.dependencyTimeouts.Inc()
}

// =============================================================================
// 💾 缓存指标记录
// =============================================================================

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(cacheType string) {
	c.cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(cacheType string) {
	c.cacheMisses.WithLabelValues(cacheType).Inc()
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

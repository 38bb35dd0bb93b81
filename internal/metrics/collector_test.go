package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.routingDecisionsTotal)
	assert.NotNil(t, collector.invocationsTotal)
	assert.NotNil(t, collector.workflowsTotal)
	assert.NotNil(t, collector.dependencyTimeouts)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("POST", "/api/command", 200, 100*time.Millisecond)

	count := testutil.CollectAndCount(collector.httpRequestsTotal)
	assert.Greater(t, count, 0)
}

func TestCollector_RecordRoutingDecision(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordRoutingDecision("archive_search", "search", 0.75)
	collector.RecordRoutingDecision("live_data", "weather", 1.0)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.routingDecisionsTotal.WithLabelValues("archive_search", "search")))
}

func TestCollector_RecordInvocation(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordInvocation("weather", "http_api", "success", 250*time.Millisecond)
	collector.RecordInvocation("weather", "http_api", "error", time.Second)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.invocationsTotal.WithLabelValues("weather", "http_api", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.invocationsTotal.WithLabelValues("weather", "http_api", "error")))
}

func TestCollector_RecordWorkflow(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordWorkflow("document_analysis", "collaborative", 2*time.Second)
	collector.RecordWorkflowStep("document_processor", "completed")
	collector.RecordWorkflowStep("nlp_agent", "failed")
	collector.RecordDependencyTimeout()

	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.workflowsTotal.WithLabelValues("document_analysis", "collaborative")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.workflowStepsTotal.WithLabelValues("nlp_agent", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.dependencyTimeouts))
}

func TestCollector_RecordCache(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordCacheHit("workflow")
	collector.RecordCacheHit("workflow")
	collector.RecordCacheMiss("workflow")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(collector.cacheHits.WithLabelValues("workflow")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.cacheMisses.WithLabelValues("workflow")))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "2xx", statusCode(204))
	assert.Equal(t, "3xx", statusCode(302))
	assert.Equal(t, "4xx", statusCode(404))
	assert.Equal(t, "5xx", statusCode(500))
	assert.Equal(t, "unknown", statusCode(99))
}

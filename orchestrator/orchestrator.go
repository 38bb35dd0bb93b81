package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/router"
	"github.com/blackhole-core/agentmesh/types"
)

// AgentPool is the slice of the adapter layer the orchestrator needs: who is
// connected, what they claim to handle, and the uniform invoke call.
type AgentPool interface {
	IsConnected(id string) bool
	AgentIDs() []string
	Keywords(id string) []string
	Invoke(ctx context.Context, id, input string, callCtx map[string]any) types.Result
}

// Metrics is the slice of the metrics collector workflow execution reports
// into. A nil Metrics disables reporting.
type Metrics interface {
	RecordWorkflowStep(agentID, status string)
	RecordDependencyTimeout()
}

// Config tunes orchestration behavior.
type Config struct {
	// DependencyTimeout is the ceiling on waiting for a step's dependencies.
	// When it lapses the step runs with whatever results exist.
	DependencyTimeout time.Duration `yaml:"dependency_timeout" json:"dependency_timeout"`
	// HistoryLimit bounds the in-memory request history.
	HistoryLimit int `yaml:"history_limit" json:"history_limit"`
}

// DefaultConfig returns the default orchestration configuration.
func DefaultConfig() Config {
	return Config{
		DependencyTimeout: 30 * time.Second,
		HistoryLimit:      100,
	}
}

// Response is the public outcome of one orchestrated request.
type Response struct {
	Status            types.ResultStatus `json:"status"`
	WorkflowID        string             `json:"workflow_id"`
	CollaborationUsed bool               `json:"collaboration_used"`
	AgentsInvolved    []string           `json:"agents_involved"`
	Result            any                `json:"result,omitempty"`
	Approach          string             `json:"processing_approach"`
	Error             string             `json:"error,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
}

// HistoryEntry pairs the raw input with its response for the request log.
type HistoryEntry struct {
	Input     string    `json:"input"`
	Response  Response  `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Orchestrator decides whether a request needs one agent or several, runs
// the chosen path, and keeps a bounded history of what it did.
type Orchestrator struct {
	agents  AgentPool
	router  *router.Router
	parser  *router.CommandParser
	config  Config
	logger  *zap.Logger
	metrics Metrics

	historyMu sync.Mutex
	history   []HistoryEntry
}

// New creates an orchestrator over the given agent pool and routing layer.
func New(agents AgentPool, rt *router.Router, parser *router.CommandParser, config Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DependencyTimeout <= 0 {
		config.DependencyTimeout = DefaultConfig().DependencyTimeout
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &Orchestrator{
		agents: agents,
		router: rt,
		parser: parser,
		config: config,
		logger: logger.With(zap.String("component", "orchestrator")),
	}
}

// SetMetrics attaches a metrics sink for workflow step reporting.
func (o *Orchestrator) SetMetrics(m Metrics) {
	o.metrics = m
}

// ProcessRequest analyzes the request, runs either the single-agent fast
// path or a collaborative workflow, and records the outcome.
func (o *Orchestrator) ProcessRequest(ctx context.Context, input string, callCtx map[string]any) Response {
	workflowID := uuid.NewString()

	plan := o.Analyze(input)

	var resp Response
	if plan.RequiresCollaboration {
		result := o.executeWorkflow(ctx, workflowID, input, plan, callCtx)
		resp = Response{
			Status:            types.StatusSuccess,
			WorkflowID:        workflowID,
			CollaborationUsed: true,
			AgentsInvolved:    plan.AgentsInvolved,
			Result:            result,
			Approach:          "collaborative",
			Timestamp:         time.Now(),
		}
	} else {
		resp = o.singleAgent(ctx, workflowID, input, plan.PrimaryAgent, callCtx)
	}

	o.record(input, resp)
	return resp
}

// singleAgent runs the fast path through the routing layer.
func (o *Orchestrator) singleAgent(ctx context.Context, workflowID, input, agentID string, callCtx map[string]any) Response {
	if o.parser != nil {
		routedAgent, intent, params := o.parser.Classify(input)
		if routedAgent != "" {
			agentID = routedAgent
		}
		input = params.Query
		if callCtx == nil {
			callCtx = map[string]any{}
		}
		callCtx["command_type"] = intent
	}

	o.logger.Info("single agent request",
		zap.String("workflow_id", workflowID),
		zap.String("agent_id", agentID),
	)

	var result types.Result
	if o.agents != nil && o.agents.IsConnected(agentID) {
		result = o.agents.Invoke(ctx, agentID, input, callCtx)
	} else {
		result = types.Result{
			Status:  types.StatusSuccess,
			Result:  fmt.Sprintf("Processed by %s: %s", agentID, input),
			AgentID: agentID,
		}
	}

	resp := Response{
		Status:            result.Status,
		WorkflowID:        workflowID,
		CollaborationUsed: false,
		AgentsInvolved:    []string{agentID},
		Result:            result.Result,
		Approach:          "single_agent",
		Timestamp:         time.Now(),
	}
	if !result.OK() {
		resp.Error = result.Message
	}
	return resp
}

// record appends to the bounded history, evicting the oldest entries.
func (o *Orchestrator) record(input string, resp Response) {
	o.historyMu.Lock()
	defer o.historyMu.Unlock()
	o.history = append(o.history, HistoryEntry{
		Input:     input,
		Response:  resp,
		Timestamp: time.Now(),
	})
	if over := len(o.history) - o.config.HistoryLimit; over > 0 {
		o.history = append([]HistoryEntry(nil), o.history[over:]...)
	}
}

// History returns a copy of the recorded requests, oldest first.
func (o *Orchestrator) History() []HistoryEntry {
	o.historyMu.Lock()
	defer o.historyMu.Unlock()
	return append([]HistoryEntry(nil), o.history...)
}

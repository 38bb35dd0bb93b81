package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/types"
)

// StepRecord is the full per-step account kept in the workflow result,
// including failures. The unwrapped value additionally lands on the result
// board under the step's task name, where dependents read it.
type StepRecord struct {
	StepID    string    `json:"step_id"`
	Agent     string    `json:"agent"`
	Task      string    `json:"task"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowResult is the collaborative execution outcome before it is wrapped
// into the public response.
type WorkflowResult struct {
	Pattern              PatternKind  `json:"workflow_pattern"`
	StepsExecuted        int          `json:"steps_executed"`
	AgentsUsed           []string     `json:"agents_used"`
	StepRecords          []StepRecord `json:"step_results"`
	FinalResult          Synthesis    `json:"final_result"`
	CollaborationSummary string       `json:"collaboration_summary"`
}

// resultBoard is the shared step-results map of one workflow run. Every task
// name gets a done channel up front; publishing a value closes the channel,
// so dependents wake on completion instead of polling.
//
// A failed step never publishes. Its dependents therefore wait out the full
// ceiling and then run with partial inputs, which is the documented policy.
type resultBoard struct {
	mu     sync.Mutex
	done   map[string]chan struct{}
	values map[string]any
	order  []string
}

func newResultBoard(steps []WorkflowStep) *resultBoard {
	board := &resultBoard{
		done:   make(map[string]chan struct{}, len(steps)),
		values: make(map[string]any, len(steps)),
	}
	for _, step := range steps {
		board.done[step.Task] = make(chan struct{})
	}
	return board
}

func (b *resultBoard) publish(task string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.values[task]; exists {
		return
	}
	b.values[task] = value
	b.order = append(b.order, task)
	if ch, ok := b.done[task]; ok {
		close(ch)
	}
}

func (b *resultBoard) has(task string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.values[task]
	return ok
}

// await blocks until every dependency has published, the ceiling lapses, or
// the context is cancelled. Timeout is not an error for the caller's control
// flow; the step proceeds with whatever is on the board.
func (b *resultBoard) await(ctx context.Context, deps []string, ceiling time.Duration) error {
	deadline := time.NewTimer(ceiling)
	defer deadline.Stop()

	for _, dep := range deps {
		if b.has(dep) {
			continue
		}
		ch, ok := b.channel(dep)
		if !ok {
			// Dependency names a task outside this workflow; it can never
			// complete, so only the ceiling bounds the wait.
			ch = nil
		}
		select {
		case <-ch:
		case <-deadline.C:
			return fmt.Errorf("timeout waiting for dependencies %v", deps)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *resultBoard) channel(task string) (chan struct{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.done[task]
	return ch, ok
}

// digest renders the published results, in publish order, as the textual
// context block appended to later step inputs.
func (b *resultBoard) digest() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.order) == 0 {
		return ""
	}
	lines := make([]string, 0, len(b.order))
	for _, task := range b.order {
		lines = append(lines, fmt.Sprintf("%s: %v", task, b.values[task]))
	}
	return "\n\nContext from previous steps:\n" + strings.Join(lines, "\n")
}

// executeWorkflow runs the plan's steps in declaration order. Steps whose
// agent was not selected are skipped; a failing step is recorded and the
// remaining steps continue.
func (o *Orchestrator) executeWorkflow(ctx context.Context, workflowID, input string, plan CollaborationPlan, callCtx map[string]any) WorkflowResult {
	steps := plan.Pattern.Steps
	selected := make(map[string]bool, len(plan.AgentsInvolved))
	for _, id := range plan.AgentsInvolved {
		selected[id] = true
	}

	o.logger.Info("starting collaborative workflow",
		zap.String("workflow_id", workflowID),
		zap.String("pattern", string(plan.Pattern.Kind)),
		zap.Strings("agents", plan.AgentsInvolved),
	)

	board := newResultBoard(steps)
	records := make([]StepRecord, 0, len(steps))

	for i, step := range steps {
		if !selected[step.Agent] {
			continue
		}
		stepID := fmt.Sprintf("step_%d", i+1)

		if len(step.DependsOn) > 0 {
			if err := board.await(ctx, step.DependsOn, o.config.DependencyTimeout); err != nil {
				if o.metrics != nil && ctx.Err() == nil {
					o.metrics.RecordDependencyTimeout()
				}
				o.logger.Warn("proceeding with incomplete dependencies",
					zap.String("workflow_id", workflowID),
					zap.String("step_id", stepID),
					zap.Strings("depends_on", step.DependsOn),
					zap.Error(err),
				)
			}
		}

		task := newTask(step.Agent, input+board.digest(), callCtx, step.DependsOn)
		task.start()
		o.logger.Info("executing workflow step",
			zap.String("workflow_id", workflowID),
			zap.String("step_id", stepID),
			zap.String("agent_id", step.Agent),
		)

		record := StepRecord{
			StepID:    stepID,
			Agent:     step.Agent,
			Task:      step.Task,
			Timestamp: time.Now(),
		}

		result := o.invokeStep(ctx, task)
		if result.OK() {
			task.complete(result.Result)
			record.Result = result.Result
			board.publish(step.Task, result.Result)
			if o.metrics != nil {
				o.metrics.RecordWorkflowStep(step.Agent, "success")
			}
		} else {
			task.fail(result.Message)
			record.Error = result.Message
			if o.metrics != nil {
				o.metrics.RecordWorkflowStep(step.Agent, "failed")
			}
			o.logger.Error("workflow step failed",
				zap.String("workflow_id", workflowID),
				zap.String("step_id", stepID),
				zap.String("agent_id", step.Agent),
				zap.String("error", result.Message),
			)
		}
		records = append(records, record)
	}

	return WorkflowResult{
		Pattern:              plan.Pattern.Kind,
		StepsExecuted:        len(records),
		AgentsUsed:           plan.AgentsInvolved,
		StepRecords:          records,
		FinalResult:          synthesize(records, input),
		CollaborationSummary: collaborationSummary(records),
	}
}

// invokeStep calls a connected agent through the adapter layer; agents that
// are selectable but not connected get the built-in placeholder response.
func (o *Orchestrator) invokeStep(ctx context.Context, task *AgentTask) types.Result {
	if o.agents != nil && o.agents.IsConnected(task.AgentID) {
		return o.agents.Invoke(ctx, task.AgentID, task.Input, task.Context)
	}

	preview := task.Input
	if len(preview) > 100 {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		cut := 100
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut] + "..."
	}
	return types.Result{
		Status:  types.StatusSuccess,
		Result:  fmt.Sprintf("Processed by %s: %s", task.AgentID, preview),
		AgentID: task.AgentID,
	}
}

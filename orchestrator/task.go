package orchestrator

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle of one workflow step's task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// AgentTask is the unit of work handed to one agent inside a workflow run.
// Tasks are owned by a single run and discarded after synthesis.
type AgentTask struct {
	TaskID       string         `json:"task_id"`
	AgentID      string         `json:"agent_id"`
	Input        string         `json:"input"`
	Context      map[string]any `json:"context,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Status       TaskStatus     `json:"status"`
	Result       any            `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  time.Time      `json:"completed_at,omitzero"`
}

func newTask(agentID, input string, callCtx map[string]any, deps []string) *AgentTask {
	return &AgentTask{
		TaskID:       uuid.NewString(),
		AgentID:      agentID,
		Input:        input,
		Context:      callCtx,
		Dependencies: deps,
		Status:       TaskPending,
		CreatedAt:    time.Now(),
	}
}

func (t *AgentTask) start() {
	t.Status = TaskRunning
}

func (t *AgentTask) complete(result any) {
	t.Status = TaskCompleted
	t.Result = result
	t.CompletedAt = time.Now()
}

func (t *AgentTask) fail(msg string) {
	t.Status = TaskFailed
	t.Error = msg
	t.CompletedAt = time.Now()
}

package orchestrator

import (
	"fmt"
	"strings"
)

// Synthesis is the combined answer distilled from a workflow's step records.
type Synthesis struct {
	Status             string   `json:"status"`
	Message            string   `json:"message,omitempty"`
	OriginalInput      string   `json:"original_input"`
	AgentsCollaborated []string `json:"agents_collaborated,omitempty"`
	StepsCompleted     int      `json:"steps_completed,omitempty"`
	CombinedOutput     string   `json:"combined_output,omitempty"`
	Summary            string   `json:"synthesis,omitempty"`
}

// synthesize combines every successful step into one answer. Zero successes
// yield a structured failure that still names the original input.
func synthesize(records []StepRecord, originalInput string) Synthesis {
	var (
		agents []string
		parts  []string
	)
	for _, record := range records {
		if record.Error != "" {
			continue
		}
		agents = append(agents, record.Agent)
		parts = append(parts, fmt.Sprintf("Agent %s: %v", record.Agent, record.Result))
	}

	if len(parts) == 0 {
		return Synthesis{
			Status:        "error",
			Message:       "No steps completed successfully",
			OriginalInput: originalInput,
		}
	}

	return Synthesis{
		Status:             "success",
		OriginalInput:      originalInput,
		AgentsCollaborated: agents,
		StepsCompleted:     len(parts),
		CombinedOutput:     strings.Join(parts, "\n\n"),
		Summary:            fmt.Sprintf("Collaborative result from %d agents working together", len(agents)),
	}
}

// collaborationSummary gives the one-line human account of a run.
func collaborationSummary(records []StepRecord) string {
	var (
		successful int
		agents     []string
		seen       = make(map[string]bool)
	)
	for _, record := range records {
		if record.Error == "" {
			successful++
		}
		if !seen[record.Agent] {
			seen[record.Agent] = true
			agents = append(agents, record.Agent)
		}
	}
	return fmt.Sprintf("Collaboration completed: %d/%d steps successful, %d agents participated: %s",
		successful, len(records), len(agents), strings.Join(agents, ", "))
}

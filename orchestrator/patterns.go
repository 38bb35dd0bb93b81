package orchestrator

import "fmt"

// PatternKind tags the canned workflow templates plus the synthesized chain.
type PatternKind string

const (
	PatternDocumentAnalysis PatternKind = "document_analysis"
	PatternDataPipeline     PatternKind = "data_pipeline"
	PatternResearchTask     PatternKind = "research_task"
	PatternContentCreation  PatternKind = "content_creation"
	PatternCustom           PatternKind = "custom"
)

// WorkflowStep binds one agent to a named task inside a pattern. DependsOn
// names tasks, not agents. Parallel is carried through from the template
// data but the executor runs steps in declaration order regardless.
type WorkflowStep struct {
	Agent     string   `json:"agent"`
	Task      string   `json:"task"`
	DependsOn []string `json:"depends_on,omitempty"`
	Parallel  bool     `json:"parallel,omitempty"`
}

// WorkflowPattern is a tagged workflow template: one of the four canned
// graphs, or a Custom chain generated from the selected agents.
type WorkflowPattern struct {
	Kind        PatternKind    `json:"kind"`
	Description string         `json:"description"`
	Steps       []WorkflowStep `json:"steps"`
}

// patternTable holds the canned collaboration graphs.
var patternTable = map[PatternKind]WorkflowPattern{
	PatternDocumentAnalysis: {
		Kind:        PatternDocumentAnalysis,
		Description: "Complete document analysis with multiple agents",
		Steps: []WorkflowStep{
			{Agent: "document_processor", Task: "extract_text"},
			{Agent: "nlp_agent", Task: "analyze_content", DependsOn: []string{"extract_text"}},
			{Agent: "summary_agent", Task: "create_summary", DependsOn: []string{"analyze_content"}},
			{Agent: "insight_agent", Task: "generate_insights", DependsOn: []string{"analyze_content", "create_summary"}},
		},
	},
	PatternDataPipeline: {
		Kind:        PatternDataPipeline,
		Description: "Multi-stage data processing",
		Steps: []WorkflowStep{
			{Agent: "data_extractor", Task: "extract_data"},
			{Agent: "data_cleaner", Task: "clean_data", DependsOn: []string{"extract_data"}},
			{Agent: "data_analyzer", Task: "analyze_data", DependsOn: []string{"clean_data"}},
			{Agent: "report_generator", Task: "generate_report", DependsOn: []string{"analyze_data"}},
		},
	},
	PatternResearchTask: {
		Kind:        PatternResearchTask,
		Description: "Comprehensive research with multiple sources",
		Steps: []WorkflowStep{
			{Agent: "search_agent", Task: "search_documents"},
			{Agent: "web_agent", Task: "search_web", Parallel: true},
			{Agent: "data_agent", Task: "search_databases", Parallel: true},
			{Agent: "synthesis_agent", Task: "synthesize_results", DependsOn: []string{"search_documents", "search_web", "search_databases"}},
			{Agent: "report_agent", Task: "create_report", DependsOn: []string{"synthesize_results"}},
		},
	},
	PatternContentCreation: {
		Kind:        PatternContentCreation,
		Description: "Collaborative content creation",
		Steps: []WorkflowStep{
			{Agent: "research_agent", Task: "gather_information"},
			{Agent: "outline_agent", Task: "create_outline", DependsOn: []string{"gather_information"}},
			{Agent: "writer_agent", Task: "write_content", DependsOn: []string{"create_outline"}},
			{Agent: "editor_agent", Task: "edit_content", DependsOn: []string{"write_content"}},
			{Agent: "reviewer_agent", Task: "review_content", DependsOn: []string{"edit_content"}},
		},
	},
}

// selectPattern maps the detected category set to a canned template.
// The checks are ordered: analysis (when the document processor was
// selected), then research, create, process. Anything else falls through to
// a custom linear chain over the selected agents.
func selectPattern(categories, agents []string) WorkflowPattern {
	has := func(list []string, want string) bool {
		for _, v := range list {
			if v == want {
				return true
			}
		}
		return false
	}

	switch {
	case has(categories, "analysis") && has(agents, "document_processor"):
		return patternTable[PatternDocumentAnalysis]
	case has(categories, "research"):
		return patternTable[PatternResearchTask]
	case has(categories, "create"):
		return patternTable[PatternContentCreation]
	case has(categories, "process"):
		return patternTable[PatternDataPipeline]
	default:
		return linearChain(agents)
	}
}

// linearChain builds a Custom pattern where step i depends only on step i-1.
func linearChain(agents []string) WorkflowPattern {
	steps := make([]WorkflowStep, 0, len(agents))
	for i, agent := range agents {
		step := WorkflowStep{
			Agent: agent,
			Task:  fmt.Sprintf("process_step_%d", i+1),
		}
		if i > 0 {
			step.DependsOn = []string{fmt.Sprintf("process_step_%d", i)}
		}
		steps = append(steps, step)
	}
	return WorkflowPattern{
		Kind:        PatternCustom,
		Description: "Sequential chain over the selected agents",
		Steps:       steps,
	}
}

package orchestrator

import (
	"fmt"
	"strings"
)

// collaborationKeywords groups the indicator words that suggest a request
// is too broad for a single agent. Each category counts once no matter how
// many of its words appear.
var collaborationKeywords = []struct {
	category string
	words    []string
}{
	{"comprehensive", []string{"comprehensive", "complete", "thorough", "detailed", "full"}},
	{"analysis", []string{"analyze", "analysis", "examine", "study", "investigate"}},
	{"research", []string{"research", "find", "gather", "collect", "investigate"}},
	{"compare", []string{"compare", "contrast", "versus", "vs", "difference"}},
	{"create", []string{"create", "generate", "build", "make", "produce"}},
	{"process", []string{"process", "transform", "convert", "handle"}},
	{"multiple", []string{"multiple", "several", "various", "different", "many"}},
}

// collaborationPhrases are high-signal literals that force collaboration on
// their own, regardless of category count.
var collaborationPhrases = []string{
	"step by step",
	"comprehensive analysis",
	"detailed report",
	"research and analyze",
	"process and summarize",
	"extract and analyze",
}

// CollaborationPlan is the outcome of analyzing one request.
type CollaborationPlan struct {
	RequiresCollaboration bool            `json:"requires_collaboration"`
	CollaborationScore    int             `json:"collaboration_score,omitempty"`
	DetectedCategories    []string        `json:"detected_categories,omitempty"`
	AgentsInvolved        []string        `json:"agents_involved,omitempty"`
	Pattern               WorkflowPattern `json:"workflow_pattern,omitzero"`
	PrimaryAgent          string          `json:"primary_agent,omitempty"`
	Reasoning             string          `json:"reasoning"`
}

// Analyze decides whether a request needs multiple agents. Collaboration is
// required when at least two keyword categories fire, or any high-signal
// phrase appears verbatim.
func (o *Orchestrator) Analyze(text string) CollaborationPlan {
	lower := strings.ToLower(text)

	var categories []string
	for _, group := range collaborationKeywords {
		for _, word := range group.words {
			if strings.Contains(lower, word) {
				categories = append(categories, group.category)
				break
			}
		}
	}
	score := len(categories)

	requires := score >= 2
	if !requires {
		for _, phrase := range collaborationPhrases {
			if strings.Contains(lower, phrase) {
				requires = true
				break
			}
		}
	}

	if !requires {
		return CollaborationPlan{
			RequiresCollaboration: false,
			PrimaryAgent:          o.primaryAgent(lower),
			Reasoning:             "Single agent sufficient for this request",
		}
	}

	agents := o.selectCollaborators(lower, categories)
	return CollaborationPlan{
		RequiresCollaboration: true,
		CollaborationScore:    score,
		DetectedCategories:    categories,
		AgentsInvolved:        agents,
		Pattern:               selectPattern(categories, agents),
		Reasoning:             fmt.Sprintf("Detected %d collaboration indicators: %v", score, categories),
	}
}

// maxCollaborators caps agent selection to keep workflows manageable.
const maxCollaborators = 5

// selectCollaborators picks built-in agents implied by domain keywords plus
// any connected agent whose declared keywords intersect the text.
func (o *Orchestrator) selectCollaborators(lower string, categories []string) []string {
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	hasCategory := func(wanted ...string) bool {
		for _, c := range categories {
			for _, w := range wanted {
				if c == w {
					return true
				}
			}
		}
		return false
	}

	var selected []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			selected = append(selected, id)
		}
	}

	if hasCategory("analysis", "process") || containsAny("document", "text", "file", "pdf") {
		add("document_processor")
	}
	if hasCategory("research", "comprehensive") || containsAny("search", "find", "research", "information") {
		add("archive_search")
	}
	if containsAny("weather", "current", "live", "real-time") {
		add("live_data")
	}

	if o.agents != nil {
		for _, id := range o.agents.AgentIDs() {
			for _, kw := range o.agents.Keywords(id) {
				if strings.Contains(lower, strings.ToLower(kw)) {
					add(id)
					break
				}
			}
		}
	}

	if len(selected) > maxCollaborators {
		selected = selected[:maxCollaborators]
	}
	return selected
}

// primaryAgent resolves the single agent for a non-collaborative request:
// keyword routing first, then a domain-word fallback.
func (o *Orchestrator) primaryAgent(lower string) string {
	if o.router != nil {
		if id, ok := o.router.SelectAgent(lower, nil); ok {
			return id
		}
	}

	switch {
	case strings.Contains(lower, "weather") || strings.Contains(lower, "temperature") || strings.Contains(lower, "climate"):
		return "live_data"
	case strings.Contains(lower, "search") || strings.Contains(lower, "find") || strings.Contains(lower, "documents"):
		return "archive_search"
	default:
		return "document_processor"
	}
}

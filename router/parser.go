package router

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Rule binds one regex to a target agent and intent. Rules are evaluated in
// table order and the first match wins; there is no best-match search, so
// rule order is part of the routing contract.
type Rule struct {
	Pattern *regexp.Regexp
	Intent  string
	AgentID string
}

// Params carries what Classify extracted from the request text.
type Params struct {
	// Query is capture group 1 of the matched rule, or the whole (lowercased)
	// input when the rule has no groups or nothing matched.
	Query         string `json:"query"`
	OriginalInput string `json:"original_input"`
	Intent        string `json:"command_type"`
}

// CommandParser classifies request text against an ordered rule table.
type CommandParser struct {
	rules         []Rule
	defaultAgent  string
	defaultIntent string
	logger        *zap.Logger
}

// NewCommandParser creates a parser over the given rules. Requests matching
// no rule fall back to defaultAgent/defaultIntent with the raw text as query.
func NewCommandParser(rules []Rule, defaultAgent, defaultIntent string, logger *zap.Logger) *CommandParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandParser{
		rules:         rules,
		defaultAgent:  defaultAgent,
		defaultIntent: defaultIntent,
		logger:        logger.With(zap.String("component", "command_parser")),
	}
}

// Classify returns the agent and intent bound to the first rule whose regex
// matches the trimmed, lowercased text.
func (p *CommandParser) Classify(text string) (agentID, intent string, params Params) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, rule := range p.rules {
		match := rule.Pattern.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}

		query := normalized
		if len(match) > 1 && match[1] != "" {
			query = match[1]
		}

		p.logger.Debug("command classified",
			zap.String("agent_id", rule.AgentID),
			zap.String("intent", rule.Intent),
		)
		return rule.AgentID, rule.Intent, Params{
			Query:         query,
			OriginalInput: normalized,
			Intent:        rule.Intent,
		}
	}

	return p.defaultAgent, p.defaultIntent, Params{
		Query:         normalized,
		OriginalInput: normalized,
		Intent:        "general",
	}
}

// Rules returns the rule table in evaluation order.
func (p *CommandParser) Rules() []Rule {
	return p.rules
}

package router

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParser() *CommandParser {
	return NewDefaultParser(nil)
}

func TestClassify_ArchiveSearch(t *testing.T) {
	agentID, intent, params := defaultParser().Classify("search for documents about AI")

	assert.Equal(t, AgentArchiveSearch, agentID)
	assert.Equal(t, IntentArchiveSearch, intent)
	assert.Equal(t, "documents about ai", params.Query)
	assert.Equal(t, "search for documents about ai", params.OriginalInput)
}

func TestClassify_TableOrder(t *testing.T) {
	tests := []struct {
		input  string
		agent  string
		intent string
		query  string
	}{
		{"analyze this quarterly report", AgentDocumentProcessor, IntentDocumentProcessing, "this quarterly report"},
		{"summarize the meeting notes", AgentDocumentProcessor, IntentDocumentProcessing, "the meeting notes"},
		{"find files containing machine learning", AgentArchiveSearch, IntentArchiveSearch, "files containing machine learning"},
		{"weather in Mumbai", AgentLiveData, IntentLiveData, "in mumbai"},
		{"what is the temperature in Oslo", AgentLiveData, IntentLiveData, "in oslo"},
		{"get live stock prices", AgentLiveData, IntentLiveData, "stock prices"},
		{"what can you do", AgentHelpSystem, IntentHelp, "what can you do"},
	}

	p := defaultParser()
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			agentID, intent, params := p.Classify(tt.input)
			assert.Equal(t, tt.agent, agentID)
			assert.Equal(t, tt.intent, intent)
			assert.Equal(t, tt.query, params.Query)
		})
	}
}

func TestClassify_FallbackToDefault(t *testing.T) {
	agentID, intent, params := defaultParser().Classify("hello there")

	assert.Equal(t, AgentArchiveSearch, agentID)
	assert.Equal(t, IntentSearch, intent)
	assert.Equal(t, "hello there", params.Query)
	assert.Equal(t, "general", params.Intent)
}

func TestClassify_FirstMatchWins_OrderSensitive(t *testing.T) {
	ruleA := Rule{Pattern: regexp.MustCompile(`data\s+(.+)`), Intent: "a", AgentID: "agent_a"}
	ruleB := Rule{Pattern: regexp.MustCompile(`(.+)\s+report`), Intent: "b", AgentID: "agent_b"}
	input := "data quality report"

	forward := NewCommandParser([]Rule{ruleA, ruleB}, "fallback", "general", nil)
	agentID, _, _ := forward.Classify(input)
	require.Equal(t, "agent_a", agentID)

	reversed := NewCommandParser([]Rule{ruleB, ruleA}, "fallback", "general", nil)
	agentID, _, _ = reversed.Classify(input)
	require.Equal(t, "agent_b", agentID, "classification is order dependent")
}

func TestClassify_NoCaptureGroupPassesRawText(t *testing.T) {
	rules := []Rule{{Pattern: regexp.MustCompile(`help`), Intent: IntentHelp, AgentID: AgentHelpSystem}}
	p := NewCommandParser(rules, "fallback", "general", nil)

	_, _, params := p.Classify("HELP me please")
	assert.Equal(t, "help me please", params.Query)
}

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackhole-core/agentmesh/types"
)

func TestSelectAgent_ScoresKeywordsAndDescription(t *testing.T) {
	r := New(nil, nil)
	r.IndexAgent("weather", types.CapabilitySet{
		Keywords:    []string{"weather", "temperature"},
		Description: "Fetch real-time external data",
	})
	r.IndexAgent("documents", types.CapabilitySet{
		Keywords:    []string{"document", "pdf"},
		Description: "Process and analyze documents",
	})

	id, ok := r.SelectAgent("what is the weather in mumbai", nil)
	require.True(t, ok)
	assert.Equal(t, "weather", id)

	id, ok = r.SelectAgent("summarize this document for me", nil)
	require.True(t, ok)
	assert.Equal(t, "documents", id)
}

func TestSelectAgent_NeverReturnsZeroScore(t *testing.T) {
	r := New(nil, nil)
	r.IndexAgent("weather", types.CapabilitySet{Keywords: []string{"weather"}})

	_, ok := r.SelectAgent("completely unrelated request", nil)
	assert.False(t, ok)
}

func TestSelectAgent_TieBreaksByRegistrationOrder(t *testing.T) {
	r := New(nil, nil)
	r.IndexAgent("second-registered-later", types.CapabilitySet{Keywords: []string{"report"}})
	r.RemoveAgent("second-registered-later")

	r.IndexAgent("first", types.CapabilitySet{Keywords: []string{"report"}})
	r.IndexAgent("second", types.CapabilitySet{Keywords: []string{"report"}})

	id, ok := r.SelectAgent("generate the report", nil)
	require.True(t, ok)
	assert.Equal(t, "first", id)
}

func TestRemoveAgent_ScrubsKeywordIndex(t *testing.T) {
	r := New(nil, nil)
	r.IndexAgent("weather", types.CapabilitySet{Keywords: []string{"weather", "forecast"}})

	require.Equal(t, []string{"weather"}, r.KeywordAgents("weather"))

	r.RemoveAgent("weather")
	assert.Empty(t, r.KeywordAgents("weather"))
	assert.Empty(t, r.KeywordAgents("forecast"))

	_, ok := r.SelectAgent("weather in london", nil)
	assert.False(t, ok, "removed agents must not be selectable")
}

func TestIndexAgent_ReplaceKeepsPosition(t *testing.T) {
	r := New(nil, nil)
	r.IndexAgent("a", types.CapabilitySet{Keywords: []string{"alpha"}})
	r.IndexAgent("b", types.CapabilitySet{Keywords: []string{"alpha"}})

	// Re-indexing "a" with new keywords must not move it behind "b".
	r.IndexAgent("a", types.CapabilitySet{Keywords: []string{"alpha", "beta"}})

	id, ok := r.SelectAgent("alpha", nil)
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, []string{"a", "b"}, r.AgentIDs())
}

func TestConfidence(t *testing.T) {
	r := New(nil, nil)
	r.IndexAgent("weather", types.CapabilitySet{Keywords: []string{"weather", "temperature", "climate", "forecast"}})
	r.IndexAgent("empty", types.CapabilitySet{})

	assert.InDelta(t, 0.25, r.Confidence("weather in london", "weather"), 1e-9)
	assert.InDelta(t, 0.5, r.Confidence("weather and temperature", "weather"), 1e-9)
	assert.Zero(t, r.Confidence("weather", "empty"), "no keywords must not divide by zero")
	assert.Zero(t, r.Confidence("weather", "missing"))
}

func TestKeywordScorer(t *testing.T) {
	s := KeywordScorer{}

	score := s.Score("analyze this document", Capability{
		Keywords:    []string{"document", "pdf"},
		Description: "Process and analyze documents with AI",
	})
	// "document" keyword (+1) plus description overlap (+0.5), once.
	assert.InDelta(t, 1.5, score, 1e-9)

	assert.Zero(t, s.Score("nothing relevant here", Capability{Keywords: []string{"weather"}}))
}

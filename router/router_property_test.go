package router

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/blackhole-core/agentmesh/types"
)

// Property: an agent is only selectable when at least one of its keywords
// appears in the text, and the winner always carries a positive score.
func TestSelectAgent_OnlyMatchingAgentsWin(t *testing.T) {
	keywordGen := rapid.StringMatching(`[a-z]{3,8}`)

	rapid.Check(t, func(t *rapid.T) {
		r := New(nil, nil)

		agentCount := rapid.IntRange(1, 6).Draw(t, "agent_count")
		keywords := make(map[string][]string, agentCount)
		ids := make([]string, 0, agentCount)
		for i := 0; i < agentCount; i++ {
			id := rapid.StringMatching(`agent_[a-z0-9]{4}`).Draw(t, "id")
			if _, dup := keywords[id]; dup {
				continue
			}
			kws := rapid.SliceOfN(keywordGen, 1, 4).Draw(t, "keywords")
			keywords[id] = kws
			ids = append(ids, id)
			r.IndexAgent(id, types.CapabilitySet{Keywords: kws})
		}

		text := strings.Join(rapid.SliceOfN(keywordGen, 1, 8).Draw(t, "text_words"), " ")

		selected, ok := r.SelectAgent(text, nil)
		if !ok {
			// No winner means no agent keyword occurs in the text.
			for id, kws := range keywords {
				for _, kw := range kws {
					if strings.Contains(text, kw) {
						t.Fatalf("agent %s keyword %q occurs in %q but nothing was selected", id, kw, text)
					}
				}
			}
			return
		}

		matched := false
		for _, kw := range keywords[selected] {
			if strings.Contains(text, kw) {
				matched = true
				break
			}
		}
		if !matched {
			t.Fatalf("selected agent %s has no keyword inside %q", selected, text)
		}
	})
}

// Property: removing an agent always removes it from the selectable set.
func TestRemoveAgent_NeverSelectableAfterRemoval(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New(nil, nil)
		keyword := rapid.StringMatching(`[a-z]{4,8}`).Draw(t, "keyword")

		r.IndexAgent("keep", types.CapabilitySet{Keywords: []string{keyword}})
		r.IndexAgent("drop", types.CapabilitySet{Keywords: []string{keyword}})
		r.RemoveAgent("drop")

		selected, ok := r.SelectAgent("please handle "+keyword+" now", nil)
		if !ok || selected != "keep" {
			t.Fatalf("expected keep to win after removal, got %q (ok=%v)", selected, ok)
		}
	})
}

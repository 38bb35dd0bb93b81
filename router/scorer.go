package router

import "strings"

// Scorer rates how well an agent's capabilities match a request. It is a
// separate interface so the heuristic can be swapped or tested in isolation.
type Scorer interface {
	Score(text string, cap Capability) float64
}

// Capability is the slice of a capability set the scorer looks at.
type Capability struct {
	Keywords    []string
	Description string
}

// KeywordScorer is the default heuristic: one point per keyword literally
// contained in the lowercased text, plus half a point when any individual
// word of the text appears inside the agent's description.
type KeywordScorer struct{}

// Score implements Scorer.
func (KeywordScorer) Score(text string, cap Capability) float64 {
	lower := strings.ToLower(text)

	var score float64
	for _, keyword := range cap.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			score++
		}
	}

	if desc := strings.ToLower(cap.Description); desc != "" {
		for _, word := range strings.Fields(lower) {
			if strings.Contains(desc, word) {
				score += 0.5
				break
			}
		}
	}

	return score
}

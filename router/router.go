package router

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/types"
)

// Router owns the keyword/pattern lookup tables and scores registered agents
// against incoming request text. All index state lives behind one lock;
// registration and disconnection mutate the tables concurrently with request
// scoring.
type Router struct {
	mu sync.RWMutex

	// entries preserves registration order; ties in scoring resolve to the
	// agent registered first, and that only works with a stable iteration
	// order.
	entries []indexEntry
	byID    map[string]*indexEntry

	// keywordIndex maps a lowercased keyword or pattern literal to the agent
	// ids that declared it.
	keywordIndex map[string][]string

	scorer Scorer
	logger *zap.Logger
}

type indexEntry struct {
	id  string
	cap types.CapabilitySet
}

// New creates a router with the given scoring strategy. A nil scorer falls
// back to the keyword heuristic.
func New(scorer Scorer, logger *zap.Logger) *Router {
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		byID:         make(map[string]*indexEntry),
		keywordIndex: make(map[string][]string),
		scorer:       scorer,
		logger:       logger.With(zap.String("component", "router")),
	}
}

// IndexAgent adds an agent's capability set to the routing tables.
// Registering the same id again replaces the previous entry in place,
// keeping its original position in the scoring order.
func (r *Router) IndexAgent(id string, cap types.CapabilitySet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[id]; ok {
		r.scrubIndexLocked(id)
		existing.cap = cap
	} else {
		r.entries = append(r.entries, indexEntry{id: id, cap: cap})
		r.byID[id] = &r.entries[len(r.entries)-1]
		r.rebindLocked()
	}

	for _, keyword := range cap.Keywords {
		key := strings.ToLower(keyword)
		r.keywordIndex[key] = append(r.keywordIndex[key], id)
	}
	for _, pattern := range cap.Patterns {
		key := strings.ToLower(pattern)
		r.keywordIndex[key] = append(r.keywordIndex[key], id)
	}

	r.logger.Debug("agent indexed",
		zap.String("agent_id", id),
		zap.Int("keywords", len(cap.Keywords)),
	)
}

// RemoveAgent drops an agent from every routing table. Subsequent
// SelectAgent calls can no longer pick it.
func (r *Router) RemoveAgent(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	r.scrubIndexLocked(id)
	delete(r.byID, id)
	for i := range r.entries {
		if r.entries[i].id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.rebindLocked()

	r.logger.Debug("agent removed from index", zap.String("agent_id", id))
}

// scrubIndexLocked removes id from every keyword index entry.
func (r *Router) scrubIndexLocked(id string) {
	for key, ids := range r.keywordIndex {
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		if len(kept) == 0 {
			delete(r.keywordIndex, key)
		} else {
			r.keywordIndex[key] = kept
		}
	}
}

// rebindLocked refreshes byID pointers after entries slice mutation.
func (r *Router) rebindLocked() {
	for i := range r.entries {
		r.byID[r.entries[i].id] = &r.entries[i]
	}
}

// SelectAgent scores every indexed agent against the text and returns the
// best match. Agents scoring zero are never selected; when every score is
// zero the second return is false. Ties resolve to the earliest-registered
// agent, which is a kept-as-is quirk of the original heuristic rather than a
// designed rule.
func (r *Router) SelectAgent(text string, _ map[string]any) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		bestID    string
		bestScore float64
	)
	for _, entry := range r.entries {
		score := r.scorer.Score(text, Capability{
			Keywords:    entry.cap.Keywords,
			Description: entry.cap.Description,
		})
		if score > bestScore {
			bestScore = score
			bestID = entry.id
		}
	}

	if bestScore <= 0 {
		return "", false
	}
	return bestID, true
}

// Confidence reports matched-keyword count over total keyword count for one
// agent, clamped to [0,1]. Agents with no keywords score zero.
func (r *Router) Confidence(text, agentID string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byID[agentID]
	if !ok || len(entry.cap.Keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	matches := 0
	for _, keyword := range entry.cap.Keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matches++
		}
	}

	confidence := float64(matches) / float64(len(entry.cap.Keywords))
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// AgentIDs returns the indexed agent ids in registration order.
func (r *Router) AgentIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.id)
	}
	return out
}

// Capabilities returns the capability set indexed for one agent.
func (r *Router) Capabilities(agentID string) (types.CapabilitySet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byID[agentID]
	if !ok {
		return types.CapabilitySet{}, false
	}
	return entry.cap, true
}

// KeywordAgents returns the agent ids indexed under a keyword.
func (r *Router) KeywordAgents(keyword string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.keywordIndex[strings.ToLower(keyword)]...)
}

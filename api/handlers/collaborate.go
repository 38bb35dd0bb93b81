package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/internal/metrics"
	"github.com/blackhole-core/agentmesh/orchestrator"
	"github.com/blackhole-core/agentmesh/types"
)

// =============================================================================
// Collaboration Handler - multi-agent workflow execution
// =============================================================================

// WorkflowCache memoizes full orchestrator responses keyed by request text.
// Satisfied by internal/cache.ResponseCache; nil disables caching.
type WorkflowCache interface {
	GetResponse(ctx context.Context, input string) (orchestrator.Response, error)
	PutResponse(ctx context.Context, input string, resp orchestrator.Response) error
}

// CollaborateHandler runs natural-language requests through the orchestrator.
type CollaborateHandler struct {
	orchestrator *orchestrator.Orchestrator
	cache        WorkflowCache
	metrics      *metrics.Collector
	logger       *zap.Logger
}

// CollaborateRequest is the body for POST /api/collaborate.
type CollaborateRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context,omitempty"`
	NoCache bool           `json:"no_cache,omitempty"`
}

// NewCollaborateHandler creates the workflow handler. cache and collector
// may be nil.
func NewCollaborateHandler(orch *orchestrator.Orchestrator, cache WorkflowCache, collector *metrics.Collector, logger *zap.Logger) *CollaborateHandler {
	return &CollaborateHandler{
		orchestrator: orch,
		cache:        cache,
		metrics:      collector,
		logger:       logger.With(zap.String("component", "collaborate_handler")),
	}
}

// RegisterRoutes mounts the collaboration endpoints on the mux.
func (h *CollaborateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/collaborate", h.HandleCollaborate)
	mux.HandleFunc("GET /api/history", h.HandleHistory)
	mux.HandleFunc("POST /api/analyze", h.HandleAnalyze)
}

// HandleCollaborate analyzes the request and executes whichever path the
// orchestrator picks. Cacheable: identical texts within the cache TTL reuse
// the stored response, with the cached flag set.
// @Summary Process collaborative request
// @Tags collaborate
// @Accept json
// @Produce json
// @Success 200 {object} Response
// @Failure 400 {object} Response "Empty text"
// @Router /api/collaborate [post]
func (h *CollaborateHandler) HandleCollaborate(w http.ResponseWriter, r *http.Request) {
	var req CollaborateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "text is required", h.logger)
		return
	}

	// Only context-free requests are safe to memoize.
	cacheable := h.cache != nil && !req.NoCache && len(req.Context) == 0
	if cacheable {
		if cached, err := h.cache.GetResponse(r.Context(), req.Text); err == nil {
			if h.metrics != nil {
				h.metrics.RecordCacheHit("workflow")
			}
			h.logger.Debug("workflow cache hit", zap.String("workflow_id", cached.WorkflowID))
			WriteSuccess(w, cached)
			return
		}
		if h.metrics != nil {
			h.metrics.RecordCacheMiss("workflow")
		}
	}

	start := time.Now()
	resp := h.orchestrator.ProcessRequest(r.Context(), req.Text, req.Context)
	duration := time.Since(start)

	if h.metrics != nil {
		pattern := "single"
		if result, ok := resp.Result.(orchestrator.WorkflowResult); ok {
			pattern = string(result.Pattern)
		}
		h.metrics.RecordWorkflow(pattern, resp.Approach, duration)
	}

	h.logger.Info("request processed",
		zap.String("workflow_id", resp.WorkflowID),
		zap.Bool("collaboration", resp.CollaborationUsed),
		zap.Strings("agents", resp.AgentsInvolved),
		zap.Duration("duration", duration),
	)

	if cacheable && resp.Status == types.StatusSuccess {
		if err := h.cache.PutResponse(r.Context(), req.Text, resp); err != nil {
			h.logger.Warn("failed to cache workflow response", zap.Error(err))
		}
	}

	WriteSuccess(w, resp)
}

// HandleAnalyze returns the collaboration plan without executing it.
// @Summary Analyze request
// @Tags collaborate
// @Accept json
// @Produce json
// @Success 200 {object} Response
// @Router /api/analyze [post]
func (h *CollaborateHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req CollaborateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "text is required", h.logger)
		return
	}

	WriteSuccess(w, h.orchestrator.Analyze(req.Text))
}

// HandleHistory returns the bounded request log, newest last.
// @Summary Request history
// @Tags collaborate
// @Produce json
// @Success 200 {object} Response
// @Router /api/history [get]
func (h *CollaborateHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.orchestrator.History())
}

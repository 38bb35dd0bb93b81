package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/connector"
	"github.com/blackhole-core/agentmesh/internal/metrics"
	"github.com/blackhole-core/agentmesh/registry"
	"github.com/blackhole-core/agentmesh/types"
)

// =============================================================================
// Agent Management Handler
// =============================================================================

// AgentHandler manages agent configurations and live connections.
type AgentHandler struct {
	registry  *registry.CapabilityRegistry
	connector *connector.UniversalConnector
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// RegisterAgentResponse is returned after a registration attempt.
type RegisterAgentResponse struct {
	ID        string   `json:"id"`
	Connected bool     `json:"connected"`
	Problems  []string `json:"problems,omitempty"`
}

// NewAgentHandler creates an agent management handler. A nil collector
// disables the connected-agent gauges.
func NewAgentHandler(reg *registry.CapabilityRegistry, conn *connector.UniversalConnector, collector *metrics.Collector, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		registry:  reg,
		connector: conn,
		metrics:   collector,
		logger:    logger.With(zap.String("component", "agent_handler")),
	}
}

// SyncConnectedAgents refreshes the per-connection-kind connected-agent gauges
// from the connector's live view. Kinds with no connected agents are reset so
// stale values do not linger after a disconnect.
func SyncConnectedAgents(collector *metrics.Collector, conn *connector.UniversalConnector) {
	if collector == nil {
		return
	}
	counts := make(map[types.ConnectionKind]int)
	for _, status := range conn.ConnectedAgents() {
		counts[status.ConnectionType]++
	}
	for _, kind := range []types.ConnectionKind{
		types.KindHTTPAPI, types.KindModule, types.KindFunction,
		types.KindInstance, types.KindWebSocket, types.KindGRPC,
	} {
		collector.SetConnectedAgents(string(kind), counts[kind])
	}
}

// RegisterRoutes mounts the agent endpoints on the mux.
func (h *AgentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/agents", h.HandleListAgents)
	mux.HandleFunc("POST /api/agents", h.HandleRegisterAgent)
	mux.HandleFunc("GET /api/agents/{id}", h.HandleGetAgent)
	mux.HandleFunc("DELETE /api/agents/{id}", h.HandleDisconnectAgent)
}

// HandleListAgents lists stored configs with their live connection status.
// @Summary List agents
// @Tags agent
// @Produce json
// @Success 200 {object} Response "Agent list"
// @Router /api/agents [get]
func (h *AgentHandler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	connected := make(map[string]connector.AgentStatus)
	for _, status := range h.connector.ConnectedAgents() {
		connected[status.ID] = status
	}

	type agentView struct {
		Config    types.AgentConfig `json:"config"`
		Connected bool              `json:"connected"`
		Status    string            `json:"status"`
	}

	configs := h.registry.List()
	views := make([]agentView, 0, len(configs))
	for _, cfg := range configs {
		view := agentView{Config: cfg, Status: string(connector.StatusDisconnected)}
		if status, ok := connected[cfg.ID]; ok {
			view.Connected = true
			view.Status = string(status.Status)
		}
		views = append(views, view)
	}

	WriteSuccess(w, views)
}

// HandleRegisterAgent stores a config and establishes the connection.
// Validation problems come back as a 422 with the full problem list.
// @Summary Register agent
// @Tags agent
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=RegisterAgentResponse}
// @Failure 400 {object} Response "Invalid body"
// @Failure 422 {object} Response "Validation problems"
// @Router /api/agents [post]
func (h *AgentHandler) HandleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var cfg types.AgentConfig
	if err := DecodeJSONBody(w, r, &cfg, h.logger); err != nil {
		return
	}

	problems, err := h.registry.Add(r.Context(), cfg)
	if len(problems) > 0 {
		WriteJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    RegisterAgentResponse{ID: cfg.ID, Problems: problems},
			Error: &ErrorInfo{
				Code:    string(types.ErrInvalidConfig),
				Message: "agent config validation failed: " + strings.Join(problems, "; "),
			},
			Timestamp: time.Now(),
		})
		return
	}
	if err != nil {
		WriteError(w, types.NewError(types.ErrRegistrationFailed, "failed to store agent config").WithCause(err), h.logger)
		return
	}

	connected := false
	if cfg.Enabled {
		connected = h.connector.Register(r.Context(), cfg)
		if !connected {
			// Connection failed; keep the stored config but report the state.
			h.logger.Warn("agent stored but connection failed", zap.String("agent_id", cfg.ID))
		}
	}
	SyncConnectedAgents(h.metrics, h.connector)

	WriteSuccess(w, RegisterAgentResponse{ID: cfg.ID, Connected: connected})
}

// HandleGetAgent returns one stored config.
// @Summary Get agent
// @Tags agent
// @Produce json
// @Success 200 {object} Response
// @Failure 404 {object} Response "Unknown agent"
// @Router /api/agents/{id} [get]
func (h *AgentHandler) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cfg, ok := h.registry.Get(id)
	if !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrAgentNotFound, "agent "+id+" not found", h.logger)
		return
	}
	WriteSuccess(w, cfg)
}

// HandleDisconnectAgent drops the live connection and removes the config.
// @Summary Disconnect agent
// @Tags agent
// @Produce json
// @Success 200 {object} Response
// @Failure 404 {object} Response "Unknown agent"
// @Router /api/agents/{id} [delete]
func (h *AgentHandler) HandleDisconnectAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.registry.Get(id); !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrAgentNotFound, "agent "+id+" not found", h.logger)
		return
	}

	h.connector.Disconnect(id)
	SyncConnectedAgents(h.metrics, h.connector)
	if err := h.registry.Remove(r.Context(), id); err != nil {
		WriteError(w, types.NewError(types.ErrInternalError, "failed to remove agent config").WithCause(err), h.logger)
		return
	}

	WriteSuccess(w, map[string]string{"id": id, "status": "removed"})
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/connector"
	"github.com/blackhole-core/agentmesh/internal/metrics"
	"github.com/blackhole-core/agentmesh/router"
	"github.com/blackhole-core/agentmesh/types"
)

// =============================================================================
// Command Handler - single-agent routed execution
// =============================================================================

// CommandHandler routes one request to one agent: classify, score, invoke.
type CommandHandler struct {
	parser    *router.CommandParser
	router    *router.Router
	connector *connector.UniversalConnector
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// CommandRequest is the body for POST /api/command.
type CommandRequest struct {
	Text    string         `json:"text"`
	Context map[string]any `json:"context,omitempty"`
}

// RoutingInfo explains where the request went and why.
type RoutingInfo struct {
	AgentID    string  `json:"agent_id"`
	Intent     string  `json:"intent"`
	Query      string  `json:"query"`
	Confidence float64 `json:"confidence"`
	Connected  bool    `json:"connected"`
}

// CommandResponse pairs the invocation result with its routing decision.
type CommandResponse struct {
	Routing RoutingInfo  `json:"routing"`
	Result  types.Result `json:"result"`
}

// NewCommandHandler creates the single-agent command handler. A nil collector
// disables metrics reporting.
func NewCommandHandler(parser *router.CommandParser, rt *router.Router, conn *connector.UniversalConnector, collector *metrics.Collector, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		parser:    parser,
		router:    rt,
		connector: conn,
		metrics:   collector,
		logger:    logger.With(zap.String("component", "command_handler")),
	}
}

// RegisterRoutes mounts the command endpoint on the mux.
func (h *CommandHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/command", h.HandleCommand)
}

// HandleCommand classifies the text, picks an agent, and invokes it.
// Requests naming an intent but no connected agent get a placeholder result
// so the routing decision is still observable.
// @Summary Execute routed command
// @Tags command
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=CommandResponse}
// @Failure 400 {object} Response "Empty text"
// @Router /api/command [post]
func (h *CommandHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest, "text is required", h.logger)
		return
	}

	agentID, intent, params := h.parser.Classify(req.Text)

	// The capability index can override the rule table when a connected
	// agent matches the text better.
	if selected, ok := h.router.SelectAgent(req.Text, req.Context); ok {
		agentID = selected
	}

	routing := RoutingInfo{
		AgentID:    agentID,
		Intent:     intent,
		Query:      params.Query,
		Confidence: h.router.Confidence(req.Text, agentID),
		Connected:  h.connector.IsConnected(agentID),
	}

	callCtx := map[string]any{"command_type": intent}
	for k, v := range req.Context {
		callCtx[k] = v
	}

	var result types.Result
	start := time.Now()
	switch {
	case routing.Connected:
		result = h.connector.Invoke(r.Context(), agentID, params.Query, callCtx)
	case intent == router.IntentHelp:
		result = types.Result{
			Status:  types.StatusSuccess,
			Result:  h.capabilityListing(),
			AgentID: agentID,
		}
	default:
		result = types.Result{
			Status:  types.StatusSuccess,
			Result:  fmt.Sprintf("Processed by %s: %s", agentID, params.Query),
			AgentID: agentID,
		}
	}

	if h.metrics != nil {
		h.metrics.RecordRoutingDecision(agentID, intent, routing.Confidence)
		if routing.Connected {
			h.metrics.RecordInvocation(agentID, string(result.AgentKind), string(result.Status), time.Since(start))
		}
	}

	h.logger.Info("command executed",
		zap.String("agent_id", agentID),
		zap.String("intent", intent),
		zap.Bool("connected", routing.Connected),
		zap.Duration("duration", time.Since(start)),
	)

	WriteSuccess(w, CommandResponse{Routing: routing, Result: result})
}

// HelpListing describes what the system can currently do.
type HelpListing struct {
	Commands        []string          `json:"commands"`
	ConnectedAgents []AgentCapability `json:"connected_agents"`
}

// AgentCapability is one agent's entry in the help listing.
type AgentCapability struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// capabilityListing builds the help response from the live routing state.
func (h *CommandHandler) capabilityListing() HelpListing {
	listing := HelpListing{
		Commands: []string{
			"analyze <document>",
			"search for <query>",
			"get live <topic> / weather in <place>",
			"help / what can you do",
		},
		ConnectedAgents: []AgentCapability{},
	}
	for _, status := range h.connector.ConnectedAgents() {
		listing.ConnectedAgents = append(listing.ConnectedAgents, AgentCapability{
			ID:          status.ID,
			Description: status.Capabilities.Description,
			Keywords:    status.Capabilities.Keywords,
		})
	}
	return listing
}

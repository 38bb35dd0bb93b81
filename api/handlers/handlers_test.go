package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/connector"
	"github.com/blackhole-core/agentmesh/internal/cache"
	"github.com/blackhole-core/agentmesh/orchestrator"
	"github.com/blackhole-core/agentmesh/registry"
	"github.com/blackhole-core/agentmesh/router"
	"github.com/blackhole-core/agentmesh/types"
)

type testEnv struct {
	registry  *registry.CapabilityRegistry
	connector *connector.UniversalConnector
	mux       *http.ServeMux
}

func newTestEnv(t *testing.T, workflowCache WorkflowCache) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	refs := connector.NewRefTable()
	refs.RegisterFunction("agents/translate", "Translate", func(input string) string {
		return "translated: " + input
	})

	rt := router.New(nil, logger)
	reg := registry.New(nil, logger)
	conn := connector.New(rt, refs, connector.Config{}, logger)
	parser := router.NewDefaultParser(logger)
	orch := orchestrator.New(conn, rt, parser, orchestrator.Config{
		DependencyTimeout: 50 * time.Millisecond,
		HistoryLimit:      10,
	}, logger)

	mux := http.NewServeMux()
	NewAgentHandler(reg, conn, nil, logger).RegisterRoutes(mux)
	NewCommandHandler(parser, rt, conn, nil, logger).RegisterRoutes(mux)
	NewCollaborateHandler(orch, workflowCache, nil, logger).RegisterRoutes(mux)
	NewHealthHandler(conn, nil, nil, logger).RegisterRoutes(mux)

	return &testEnv{registry: reg, connector: conn, mux: mux}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)

	var resp Response
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func translatorConfig() types.AgentConfig {
	return types.AgentConfig{
		ID:             "translator",
		Name:           "Translator",
		ConnectionType: types.KindFunction,
		ModulePath:     "agents/translate",
		FunctionName:   "Translate",
		Keywords:       []string{"translate"},
		Enabled:        true,
	}
}

func TestRegisterAndListAgents(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/agents", translatorConfig())
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "translator", data["id"])
	assert.Equal(t, true, data["connected"])
	assert.True(t, env.connector.IsConnected("translator"))

	rec, resp = env.do(t, http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	views := resp.Data.([]any)
	require.Len(t, views, 1)
	view := views[0].(map[string]any)
	assert.Equal(t, true, view["connected"])
	assert.Equal(t, "connected", view["status"])
}

func TestRegisterAgentValidationProblems(t *testing.T) {
	env := newTestEnv(t, nil)

	cfg := translatorConfig()
	cfg.FunctionName = ""

	rec, resp := env.do(t, http.MethodPost, "/api/agents", cfg)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrInvalidConfig), resp.Error.Code)

	data := resp.Data.(map[string]any)
	problems := data["problems"].([]any)
	assert.Contains(t, problems, "function_call agents require function_name")

	assert.Empty(t, env.registry.List())
}

func TestRegisterAgentStoredButNotConnected(t *testing.T) {
	env := newTestEnv(t, nil)

	cfg := translatorConfig()
	cfg.ID = "ghost-fn"
	cfg.ModulePath = "agents/missing"

	rec, resp := env.do(t, http.MethodPost, "/api/agents", cfg)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["connected"])
	assert.False(t, env.connector.IsConnected("ghost-fn"))

	// The config is kept so the connection can be retried later.
	_, ok := env.registry.Get("ghost-fn")
	assert.True(t, ok)
}

func TestGetAgent(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/agents", translatorConfig())

	rec, resp := env.do(t, http.MethodGet, "/api/agents/translator", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Translator", data["name"])

	rec, resp = env.do(t, http.MethodGet, "/api/agents/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrAgentNotFound), resp.Error.Code)
}

func TestDisconnectAgent(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/agents", translatorConfig())
	require.True(t, env.connector.IsConnected("translator"))

	rec, _ := env.do(t, http.MethodDelete, "/api/agents/translator", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.connector.IsConnected("translator"))
	assert.Empty(t, env.registry.List())

	rec, _ = env.do(t, http.MethodDelete, "/api/agents/translator", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommandRequiresText(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/command", CommandRequest{Text: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(types.ErrInvalidRequest), resp.Error.Code)
}

func TestCommandPlaceholderWhenUnconnected(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/command", CommandRequest{Text: "search for documents about AI"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	routing := data["routing"].(map[string]any)
	assert.Equal(t, router.AgentArchiveSearch, routing["agent_id"])
	assert.Equal(t, false, routing["connected"])
	assert.Equal(t, "documents about ai", routing["query"])

	result := data["result"].(map[string]any)
	assert.Equal(t, string(types.StatusSuccess), result["status"])
	assert.Equal(t, "Processed by archive_search: documents about ai", result["result"])
}

func TestCommandInvokesConnectedAgent(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/agents", translatorConfig())

	rec, resp := env.do(t, http.MethodPost, "/api/command", CommandRequest{Text: "translate hello world"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	routing := data["routing"].(map[string]any)
	assert.Equal(t, "translator", routing["agent_id"])
	assert.Equal(t, true, routing["connected"])
	assert.Equal(t, 1.0, routing["confidence"])

	result := data["result"].(map[string]any)
	assert.Equal(t, "translated: translate hello world", result["result"])
}

func TestCommandHelpListsCapabilities(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/agents", translatorConfig())

	rec, resp := env.do(t, http.MethodPost, "/api/command", CommandRequest{Text: "what can you do"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	routing := data["routing"].(map[string]any)
	assert.Equal(t, router.AgentHelpSystem, routing["agent_id"])
	assert.Equal(t, router.IntentHelp, routing["intent"])

	result := data["result"].(map[string]any)
	listing := result["result"].(map[string]any)
	assert.NotEmpty(t, listing["commands"])
	agents := listing["connected_agents"].([]any)
	require.Len(t, agents, 1)
	assert.Equal(t, "translator", agents[0].(map[string]any)["id"])
}

func TestCollaborateSingleAgentPath(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{Text: "what is the weather in tokyo"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["collaboration_used"])
	assert.Equal(t, "single_agent", data["processing_approach"])
	assert.NotEmpty(t, data["workflow_id"])
}

func TestCollaborateWorkflowPath(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{
		Text: "compare and contrast several different vendors",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["collaboration_used"])
	assert.Equal(t, "collaborative", data["processing_approach"])

	result := data["result"].(map[string]any)
	assert.NotEmpty(t, result["workflow_pattern"])
	assert.NotEmpty(t, result["collaboration_summary"])
}

func TestCollaborateCacheReusesResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	responseCache, err := cache.New(cache.Config{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = responseCache.Close() })

	env := newTestEnv(t, responseCache)

	_, first := env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{Text: "what is the weather in tokyo"})
	_, second := env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{Text: "what is the weather in tokyo"})

	firstID := first.Data.(map[string]any)["workflow_id"]
	secondID := second.Data.(map[string]any)["workflow_id"]
	assert.Equal(t, firstID, secondID)
}

func TestCollaborateNoCacheBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	responseCache, err := cache.New(cache.Config{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = responseCache.Close() })

	env := newTestEnv(t, responseCache)

	_, first := env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{Text: "what is the weather in tokyo"})
	_, second := env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{
		Text:    "what is the weather in tokyo",
		NoCache: true,
	})

	firstID := first.Data.(map[string]any)["workflow_id"]
	secondID := second.Data.(map[string]any)["workflow_id"]
	assert.NotEqual(t, firstID, secondID)
}

func TestAnalyzeReturnsPlanWithoutExecuting(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/analyze", CollaborateRequest{
		Text: "comprehensive analysis of this quarterly report",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["requires_collaboration"])

	// Analysis alone never records history.
	_, historyResp := env.do(t, http.MethodGet, "/api/history", nil)
	assert.Empty(t, historyResp.Data)
}

func TestHistoryRecordsProcessedRequests(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{Text: "what is the weather in tokyo"})
	env.do(t, http.MethodPost, "/api/collaborate", CollaborateRequest{Text: "search for documents about AI"})

	rec, resp := env.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := resp.Data.([]any)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, "what is the weather in tokyo", first["input"])
}

func TestPing(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHealthHealthy(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, resp := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "healthy", data["status"])
}

type failingPinger struct{ err error }

func (p failingPinger) Ping(context.Context) error { return p.err }

func TestHealthDegradedDependency(t *testing.T) {
	logger := zap.NewNop()
	rt := router.New(nil, logger)
	conn := connector.New(rt, connector.NewRefTable(), connector.Config{}, logger)

	mux := http.NewServeMux()
	NewHealthHandler(conn, failingPinger{err: errors.New("connection refused")}, nil, logger).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	deps := data["dependencies"].(map[string]any)
	assert.Contains(t, deps["database"], "connection refused")
}

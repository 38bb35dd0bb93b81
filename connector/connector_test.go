package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/router"
	"github.com/blackhole-core/agentmesh/types"
)

func newTestConnector(t *testing.T) (*UniversalConnector, *router.Router) {
	t.Helper()
	rt := router.New(nil, zap.NewNop())
	return New(rt, NewRefTable(), DefaultConfig(), zap.NewNop()), rt
}

type echoAgent struct {
	prefix string
}

func (e *echoAgent) Process(input string) (string, error) {
	return e.prefix + input, nil
}

func TestRegisterModuleAgent(t *testing.T) {
	c, rt := newTestConnector(t)
	c.refs.RegisterModule("agents.echo", "EchoAgent", func(params map[string]any) (any, error) {
		prefix, _ := params["prefix"].(string)
		return &echoAgent{prefix: prefix}, nil
	})

	ok := c.Register(context.Background(), types.AgentConfig{
		ID:             "echo",
		Name:           "Echo Agent",
		ConnectionType: types.KindModule,
		ModulePath:     "agents.echo",
		ClassName:      "EchoAgent",
		InitParams:     map[string]any{"prefix": "got: "},
		Keywords:       []string{"echo", "repeat"},
	})
	require.True(t, ok)
	assert.True(t, c.IsConnected("echo"))

	result := c.Invoke(context.Background(), "echo", "hello", nil)
	require.True(t, result.OK())
	assert.Equal(t, "got: hello", result.Result)
	assert.Equal(t, "Process", result.MethodUsed)
	assert.Equal(t, types.KindModule, result.AgentKind)

	// Registration must also land in the routing index.
	id, found := rt.SelectAgent("please echo this", nil)
	require.True(t, found)
	assert.Equal(t, "echo", id)
}

func TestRegisterRejectsInvalidConfigUnchanged(t *testing.T) {
	c, rt := newTestConnector(t)

	ok := c.Register(context.Background(), types.AgentConfig{
		ID:             "broken",
		Name:           "Broken",
		ConnectionType: types.KindModule,
		// module_path missing
		ClassName: "Thing",
		Keywords:  []string{"broken"},
	})
	assert.False(t, ok)
	assert.False(t, c.IsConnected("broken"))
	assert.Empty(t, c.ConnectedAgents())
	_, found := rt.SelectAgent("broken stuff", nil)
	assert.False(t, found)
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	c, _ := newTestConnector(t)
	c.refs.RegisterFunction("agents.fn", "handle", func(input string) (string, error) {
		return input, nil
	})

	cfg := types.AgentConfig{
		ID:             "fn",
		Name:           "Fn",
		ConnectionType: types.KindFunction,
		ModulePath:     "agents.fn",
		FunctionName:   "handle",
	}
	require.True(t, c.Register(context.Background(), cfg))
	assert.False(t, c.Register(context.Background(), cfg))
}

func TestRegisterHTTPAgentHealthCheck(t *testing.T) {
	var sawAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			sawAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusOK)
		case "/process":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"answer": 42}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c, _ := newTestConnector(t)
	ok := c.Register(context.Background(), types.AgentConfig{
		ID:             "remote",
		Name:           "Remote",
		ConnectionType: types.KindHTTPAPI,
		Endpoint:       srv.URL,
		Headers:        map[string]string{"Authorization": "Bearer token"},
	})
	require.True(t, ok)
	assert.Equal(t, "Bearer token", sawAuth)

	result := c.Invoke(context.Background(), "remote", "question", map[string]any{"user": "u1"})
	require.True(t, result.OK())
	assert.Equal(t, map[string]any{"answer": float64(42)}, result.Result)
}

func TestRegisterHTTPAgentFailedHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newTestConnector(t)
	ok := c.Register(context.Background(), types.AgentConfig{
		ID:             "down",
		Name:           "Down",
		ConnectionType: types.KindHTTPAPI,
		Endpoint:       srv.URL,
	})
	assert.False(t, ok)
	assert.False(t, c.IsConnected("down"))
}

func TestInvokeUpstreamErrorBecomesErrorResult(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" && healthy {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestConnector(t)
	require.True(t, c.Register(context.Background(), types.AgentConfig{
		ID:             "flaky",
		Name:           "Flaky",
		ConnectionType: types.KindHTTPAPI,
		Endpoint:       srv.URL,
	}))

	result := c.Invoke(context.Background(), "flaky", "anything", nil)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Contains(t, result.Message, "HTTP 500")
	assert.Equal(t, "flaky", result.AgentID)
	assert.Equal(t, types.KindHTTPAPI, result.AgentKind)
}

func TestInvokeUnknownAgent(t *testing.T) {
	c, _ := newTestConnector(t)
	result := c.Invoke(context.Background(), "ghost", "hello", nil)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Contains(t, result.Message, "not connected")
}

type panicAgent struct{}

func (panicAgent) Process(input string) (string, error) { panic("agent blew up") }

func TestInvokePanicIsContained(t *testing.T) {
	c, _ := newTestConnector(t)
	require.True(t, c.Register(context.Background(), types.AgentConfig{
		ID:             "bomb",
		Name:           "Bomb",
		ConnectionType: types.KindInstance,
		Instance:       panicAgent{},
	}))

	result := c.Invoke(context.Background(), "bomb", "tick", nil)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Contains(t, result.Message, "agent blew up")
}

func TestDisconnectScrubsRouter(t *testing.T) {
	c, rt := newTestConnector(t)
	require.True(t, c.Register(context.Background(), types.AgentConfig{
		ID:             "weather",
		Name:           "Weather",
		ConnectionType: types.KindInstance,
		Instance:       &echoAgent{},
		Keywords:       []string{"weather"},
	}))

	_, found := rt.SelectAgent("weather in pune", nil)
	require.True(t, found)

	assert.True(t, c.Disconnect("weather"))
	assert.False(t, c.IsConnected("weather"))
	_, found = rt.SelectAgent("weather in pune", nil)
	assert.False(t, found)

	assert.False(t, c.Disconnect("weather"), "second disconnect is a no-op")
}

func TestConnectedAgentsSnapshotOrder(t *testing.T) {
	c, _ := newTestConnector(t)
	for _, id := range []string{"a", "b", "c"} {
		require.True(t, c.Register(context.Background(), types.AgentConfig{
			ID:             id,
			Name:           id,
			ConnectionType: types.KindInstance,
			Instance:       &echoAgent{},
		}))
	}
	require.True(t, c.Disconnect("b"))

	statuses := c.ConnectedAgents()
	require.Len(t, statuses, 2)
	assert.Equal(t, "a", statuses[0].ID)
	assert.Equal(t, "c", statuses[1].ID)
	assert.Equal(t, StatusConnected, statuses[0].Status)
}

func TestWebSocketAgentNotExecutable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Plain HTTP endpoint: the websocket handshake fails here, which is
		// what this test wants to observe.
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := newTestConnector(t)
	ok := c.Register(context.Background(), types.AgentConfig{
		ID:             "ws",
		Name:           "WS",
		ConnectionType: types.KindWebSocket,
		WebSocketURL:   "ws" + srv.URL[len("http"):],
	})
	assert.False(t, ok, "handshake against a non-websocket server must fail")
}

func TestGRPCAgentStubbedInvocation(t *testing.T) {
	c, _ := newTestConnector(t)
	require.True(t, c.Register(context.Background(), types.AgentConfig{
		ID:             "grpc-agent",
		Name:           "GRPC",
		ConnectionType: types.KindGRPC,
		GRPCEndpoint:   "localhost:50051",
		Service:        "AgentService",
	}))

	result := c.Invoke(context.Background(), "grpc-agent", "hello", nil)
	assert.Equal(t, types.StatusError, result.Status)
	assert.Contains(t, result.Message, "not implemented")

	require.True(t, c.Disconnect("grpc-agent"), "closer must release the client connection")
}

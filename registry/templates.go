package registry

import "github.com/blackhole-core/agentmesh/types"

// DefaultTemplates returns example configs for every connection kind.
// They ship disabled; a fresh FileStore seeds its document with them so
// operators have a working shape to copy from.
func DefaultTemplates() []types.AgentConfig {
	return []types.AgentConfig{
		{
			ID:             "example_http_agent",
			Name:           "Example HTTP API Agent",
			Description:    "Example agent accessible via HTTP API",
			ConnectionType: types.KindHTTPAPI,
			Endpoint:       "http://localhost:8001",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			HealthCheck: "http://localhost:8001/health",
			Endpoints: map[string]string{
				"process": "/process",
				"status":  "/status",
			},
			Keywords:    []string{"example", "demo", "test"},
			Patterns:    []string{`example\s+(.+)`, `demo\s+(.+)`},
			InputTypes:  []string{"text", "json"},
			OutputTypes: []string{"json"},
			Enabled:     false,
		},
		{
			ID:             "module_agent",
			Name:           "In-Process Module Agent",
			Description:    "Agent constructed from a registered module factory",
			ConnectionType: types.KindModule,
			ModulePath:     "agents/example",
			ClassName:      "ExampleAgent",
			InitParams:     map[string]any{"config_param": "value"},
			Keywords:       []string{"module", "local"},
			Patterns:       []string{`local\s+(.+)`},
			InputTypes:     []string{"text"},
			OutputTypes:    []string{"json"},
			Enabled:        false,
		},
		{
			ID:             "function_agent",
			Name:           "Function-based Agent",
			Description:    "Agent implemented as a registered function",
			ConnectionType: types.KindFunction,
			ModulePath:     "agents/functions",
			FunctionName:   "ProcessRequest",
			Keywords:       []string{"function", "simple", "quick"},
			Patterns:       []string{`quick\s+(.+)`},
			InputTypes:     []string{"text"},
			OutputTypes:    []string{"text", "json"},
			Enabled:        false,
		},
		{
			ID:             "websocket_agent",
			Name:           "WebSocket Agent",
			Description:    "Real-time agent via WebSocket",
			ConnectionType: types.KindWebSocket,
			WebSocketURL:   "ws://localhost:8002/ws",
			Protocols:      []string{"agent-protocol"},
			Keywords:       []string{"realtime", "websocket", "live"},
			Patterns:       []string{`realtime\s+(.+)`},
			InputTypes:     []string{"text", "json"},
			OutputTypes:    []string{"json", "stream"},
			Enabled:        false,
		},
		{
			ID:             "grpc_agent",
			Name:           "gRPC Agent",
			Description:    "High-performance agent via gRPC",
			ConnectionType: types.KindGRPC,
			GRPCEndpoint:   "localhost:50051",
			Service:        "AgentService",
			Methods:        []string{"Process"},
			Keywords:       []string{"grpc", "fast"},
			InputTypes:     []string{"text"},
			OutputTypes:    []string{"json"},
			Enabled:        false,
		},
	}
}

package connector

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blackhole-core/agentmesh/types"
)

// binding is the outcome of a connect strategy: an invoker normalized to the
// uniform call contract, the method name the binding resolved to (when
// meaningful), the live handle capability discovery should inspect, and an
// optional closer for transports that hold a connection.
type binding struct {
	invoker    types.Invoker
	methodUsed string
	handle     any
	closer     func() error
}

// bindHTTP health-checks the remote agent before accepting it. The check URL
// is the configured health_check or endpoint+"/health"; anything but 200
// rejects the registration.
func (c *UniversalConnector) bindHTTP(ctx context.Context, cfg types.AgentConfig) (*binding, error) {
	healthURL := cfg.HealthCheck
	if healthURL == "" {
		healthURL = cfg.Endpoint + "/health"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return nil, types.NewError(types.ErrHealthCheckFailed, "invalid health check URL").WithCause(err)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrHealthCheckFailed, "health check unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrHealthCheckFailed,
			fmt.Sprintf("health check returned HTTP %d", resp.StatusCode)).WithHTTPStatus(resp.StatusCode)
	}

	return &binding{invoker: newHTTPInvoker(c.httpClient, cfg)}, nil
}

// bindModule resolves the config's module factory, constructs the handle
// with the configured init params, and probes it for a callable method.
func (c *UniversalConnector) bindModule(cfg types.AgentConfig) (*binding, error) {
	factory, err := c.refs.Module(cfg.ModulePath, cfg.ClassName)
	if err != nil {
		return nil, types.NewError(types.ErrRegistrationFailed, "module not resolvable").WithCause(err)
	}

	handle, err := factory(cfg.InitParams)
	if err != nil {
		return nil, types.NewError(types.ErrRegistrationFailed, "module factory failed").WithCause(err)
	}

	invoker, method, err := bindHandle(handle)
	if err != nil {
		return nil, err
	}
	return &binding{invoker: invoker, methodUsed: method, handle: handle}, nil
}

// bindFunction resolves a registered function and binds it by declared
// parameter shape.
func (c *UniversalConnector) bindFunction(cfg types.AgentConfig) (*binding, error) {
	fn, err := c.refs.Function(cfg.ModulePath, cfg.FunctionName)
	if err != nil {
		return nil, types.NewError(types.ErrRegistrationFailed, "function not resolvable").WithCause(err)
	}

	invoker, err := bindFunctionValue(fn)
	if err != nil {
		return nil, err
	}
	return &binding{invoker: invoker, methodUsed: cfg.FunctionName}, nil
}

// bindInstance probes an already-constructed handle supplied in the config.
func (c *UniversalConnector) bindInstance(cfg types.AgentConfig) (*binding, error) {
	invoker, method, err := bindHandle(cfg.Instance)
	if err != nil {
		return nil, err
	}
	return &binding{invoker: invoker, methodUsed: method, handle: cfg.Instance}, nil
}

// bindWebSocket dials the configured URL and keeps the connection, but
// invocation stays a contract point for a future transport implementation.
func (c *UniversalConnector) bindWebSocket(ctx context.Context, cfg types.AgentConfig) (*binding, error) {
	header := http.Header{}
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}

	conn, _, err := websocket.Dial(ctx, cfg.WebSocketURL, &websocket.DialOptions{
		Subprotocols: cfg.Protocols,
		HTTPHeader:   header,
	})
	if err != nil {
		return nil, types.NewError(types.ErrRegistrationFailed, "websocket dial failed").WithCause(err)
	}

	c.logger.Info("websocket agent connected, invocation not yet executable",
		zap.String("agent_id", cfg.ID),
		zap.String("url", cfg.WebSocketURL),
	)

	return &binding{
		invoker: notExecutableInvoker(types.KindWebSocket),
		closer: func() error {
			return conn.Close(websocket.StatusNormalClosure, "agent disconnected")
		},
	}, nil
}

// bindGRPC establishes the client connection; invocation stays a contract
// point until a typed service binding exists.
func (c *UniversalConnector) bindGRPC(cfg types.AgentConfig) (*binding, error) {
	conn, err := grpc.NewClient(cfg.GRPCEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, types.NewError(types.ErrRegistrationFailed, "grpc client setup failed").WithCause(err)
	}

	c.logger.Info("grpc agent connected, invocation not yet executable",
		zap.String("agent_id", cfg.ID),
		zap.String("endpoint", cfg.GRPCEndpoint),
		zap.String("service", cfg.Service),
	)

	return &binding{
		invoker: notExecutableInvoker(types.KindGRPC),
		closer:  conn.Close,
	}, nil
}

// notExecutableInvoker marks stubbed transports. The connection descriptor is
// established and stored, but calls report NOT_EXECUTABLE until the transport
// is implemented.
func notExecutableInvoker(kind types.ConnectionKind) types.Invoker {
	return types.InvokerFunc(func(context.Context, string, map[string]any) (any, error) {
		return nil, types.NewError(types.ErrNotExecutable,
			fmt.Sprintf("%s invocation is not implemented in this build", kind))
	})
}

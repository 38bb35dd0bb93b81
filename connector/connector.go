package connector

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blackhole-core/agentmesh/registry"
	"github.com/blackhole-core/agentmesh/router"
	"github.com/blackhole-core/agentmesh/types"
)

// ConnectionStatus tracks whether a registered agent is live.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// ConnectedAgent is the runtime record for one live agent. It is owned
// exclusively by the connector: created on successful Register, destroyed on
// Disconnect.
type ConnectedAgent struct {
	Config       types.AgentConfig
	Kind         types.ConnectionKind
	Status       ConnectionStatus
	Capabilities types.CapabilitySet
	LastSeen     time.Time

	invoker    types.Invoker
	methodUsed string
	closer     func() error
}

// AgentStatus is the externally visible snapshot of a connected agent.
type AgentStatus struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	ConnectionType types.ConnectionKind `json:"connection_type"`
	Status         ConnectionStatus     `json:"status"`
	Capabilities   types.CapabilitySet  `json:"capabilities"`
	LastSeen       time.Time            `json:"last_seen"`
}

// Config tunes connector behavior.
type Config struct {
	// HealthCheckTimeout bounds the registration health check.
	HealthCheckTimeout time.Duration `yaml:"health_check_timeout" json:"health_check_timeout"`
	// InvokeTimeout bounds a single HTTP invocation.
	InvokeTimeout time.Duration `yaml:"invoke_timeout" json:"invoke_timeout"`
}

// DefaultConfig returns the default connector configuration.
func DefaultConfig() Config {
	return Config{
		HealthCheckTimeout: 10 * time.Second,
		InvokeTimeout:      30 * time.Second,
	}
}

// UniversalConnector establishes connections to heterogeneous agent backends
// and exposes one uniform invocation contract over all of them. Think of it
// as the USB layer: plug in any supported backend kind without changing the
// caller.
type UniversalConnector struct {
	mu     sync.RWMutex
	agents map[string]*ConnectedAgent
	order  []string

	router     *router.Router
	refs       *RefTable
	httpClient *http.Client
	config     Config
	logger     *zap.Logger
}

// New creates a connector that indexes capabilities into the given router.
// A nil refs table falls back to the process-wide DefaultRefTable.
func New(rt *router.Router, refs *RefTable, config Config, logger *zap.Logger) *UniversalConnector {
	if refs == nil {
		refs = DefaultRefTable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.HealthCheckTimeout <= 0 {
		config.HealthCheckTimeout = DefaultConfig().HealthCheckTimeout
	}
	if config.InvokeTimeout <= 0 {
		config.InvokeTimeout = DefaultConfig().InvokeTimeout
	}
	return &UniversalConnector{
		agents:     make(map[string]*ConnectedAgent),
		router:     rt,
		refs:       refs,
		httpClient: &http.Client{Timeout: config.InvokeTimeout},
		config:     config,
		logger:     logger.With(zap.String("component", "universal_connector")),
	}
}

// Register connects one agent. It dispatches to the connect strategy for the
// config's connection kind, and on success stores the ConnectedAgent,
// computes its capability set, and indexes its keywords and patterns into
// the router. Any failure returns false and leaves all state unchanged.
func (c *UniversalConnector) Register(ctx context.Context, cfg types.AgentConfig) bool {
	if problems := registry.Validate(cfg); len(problems) > 0 {
		c.logger.Error("agent config rejected",
			zap.String("agent_id", cfg.ID),
			zap.Strings("problems", problems),
		)
		return false
	}

	c.mu.RLock()
	_, exists := c.agents[cfg.ID]
	c.mu.RUnlock()
	if exists {
		c.logger.Error("agent already connected", zap.String("agent_id", cfg.ID))
		return false
	}

	healthCtx, cancel := context.WithTimeout(ctx, c.config.HealthCheckTimeout)
	defer cancel()

	var (
		b   *binding
		err error
	)
	switch cfg.ConnectionType {
	case types.KindHTTPAPI:
		b, err = c.bindHTTP(healthCtx, cfg)
	case types.KindModule:
		b, err = c.bindModule(cfg)
	case types.KindFunction:
		b, err = c.bindFunction(cfg)
	case types.KindInstance:
		b, err = c.bindInstance(cfg)
	case types.KindWebSocket:
		b, err = c.bindWebSocket(healthCtx, cfg)
	case types.KindGRPC:
		b, err = c.bindGRPC(cfg)
	default:
		err = types.NewError(types.ErrUnsupportedKind, fmt.Sprintf("unsupported connection type %q", cfg.ConnectionType))
	}
	if err != nil {
		c.logger.Error("failed to register agent",
			zap.String("agent_id", cfg.ID),
			zap.String("connection_type", string(cfg.ConnectionType)),
			zap.Error(err),
		)
		return false
	}

	caps := buildCapabilitySet(cfg, b.handle)
	agent := &ConnectedAgent{
		Config:       cfg.Clone(),
		Kind:         cfg.ConnectionType,
		Status:       StatusConnected,
		Capabilities: caps,
		LastSeen:     time.Now(),
		invoker:      b.invoker,
		methodUsed:   b.methodUsed,
		closer:       b.closer,
	}

	c.mu.Lock()
	c.agents[cfg.ID] = agent
	c.order = append(c.order, cfg.ID)
	c.mu.Unlock()

	if c.router != nil {
		c.router.IndexAgent(cfg.ID, caps)
	}

	c.logger.Info("agent registered",
		zap.String("agent_id", cfg.ID),
		zap.String("connection_type", string(cfg.ConnectionType)),
		zap.Int("keywords", len(caps.Keywords)),
	)
	return true
}

// Disconnect removes a connected agent, closes any held transport, and
// scrubs the agent from every router index entry.
func (c *UniversalConnector) Disconnect(id string) bool {
	c.mu.Lock()
	agent, exists := c.agents[id]
	if !exists {
		c.mu.Unlock()
		return false
	}
	delete(c.agents, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if c.router != nil {
		c.router.RemoveAgent(id)
	}
	if agent.closer != nil {
		if err := agent.closer(); err != nil {
			c.logger.Warn("error closing agent transport",
				zap.String("agent_id", id),
				zap.Error(err),
			)
		}
	}

	c.logger.Info("agent disconnected", zap.String("agent_id", id))
	return true
}

// Invoke calls one connected agent. Every failure path is converted into a
// structured error Result; Invoke never returns a Go error and never lets a
// panic escape its boundary.
func (c *UniversalConnector) Invoke(ctx context.Context, id, input string, callCtx map[string]any) (result types.Result) {
	c.mu.RLock()
	agent, exists := c.agents[id]
	c.mu.RUnlock()

	if !exists {
		return types.Result{
			Status:  types.StatusError,
			Message: fmt.Sprintf("agent %s not connected", id),
			AgentID: id,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("agent invocation panicked",
				zap.String("agent_id", id),
				zap.Any("panic", r),
			)
			result = types.ErrorResult(agent.Kind, fmt.Sprintf("invocation panic: %v", r))
			result.AgentID = id
		}
	}()

	value, err := agent.invoker.Invoke(ctx, input, callCtx)
	if err != nil {
		c.logger.Warn("agent invocation failed",
			zap.String("agent_id", id),
			zap.Error(err),
		)
		failure := types.ErrorResult(agent.Kind, err.Error())
		failure.AgentID = id
		return failure
	}

	c.mu.Lock()
	agent.LastSeen = time.Now()
	c.mu.Unlock()

	success := types.SuccessResult(agent.Kind, value)
	success.AgentID = id
	success.MethodUsed = agent.methodUsed
	return success
}

// IsConnected reports whether an agent id has a live connection.
func (c *UniversalConnector) IsConnected(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.agents[id]
	return ok
}

// ConnectedAgents returns status snapshots in registration order.
func (c *UniversalConnector) ConnectedAgents() []AgentStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]AgentStatus, 0, len(c.order))
	for _, id := range c.order {
		agent := c.agents[id]
		out = append(out, AgentStatus{
			ID:             id,
			Name:           agent.Config.Name,
			ConnectionType: agent.Kind,
			Status:         agent.Status,
			Capabilities:   agent.Capabilities,
			LastSeen:       agent.LastSeen,
		})
	}
	return out
}

// AgentIDs returns the connected ids in registration order.
func (c *UniversalConnector) AgentIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Keywords returns the keyword list a connected agent declared.
func (c *UniversalConnector) Keywords(id string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	agent, ok := c.agents[id]
	if !ok {
		return nil
	}
	return append([]string(nil), agent.Capabilities.Keywords...)
}

// HealthCheckAll re-runs the health check of every connected http_api agent
// concurrently and returns the ids that failed. Non-HTTP kinds are skipped;
// they have no standard liveness probe.
func (c *UniversalConnector) HealthCheckAll(ctx context.Context) []string {
	c.mu.RLock()
	httpAgents := make([]types.AgentConfig, 0, len(c.order))
	for _, id := range c.order {
		if agent := c.agents[id]; agent.Kind == types.KindHTTPAPI {
			httpAgents = append(httpAgents, agent.Config)
		}
	}
	c.mu.RUnlock()

	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, cfg := range httpAgents {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(gctx, c.config.HealthCheckTimeout)
			defer cancel()
			if _, err := c.bindHTTP(checkCtx, cfg); err != nil {
				mu.Lock()
				failed = append(failed, cfg.ID)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors

	if len(failed) > 0 {
		c.logger.Warn("health check failures", zap.Strings("agent_ids", failed))
	}
	return failed
}

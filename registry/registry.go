package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/blackhole-core/agentmesh/types"
)

// CapabilityRegistry stores agent configuration records. It is the system of
// record for which agents exist; the connector decides which of them are live.
//
// All access goes through the registry's lock. Configs handed out are copies,
// so an update can never mutate a config already held by an execution.
type CapabilityRegistry struct {
	mu      sync.RWMutex
	configs map[string]types.AgentConfig
	order   []string
	store   Store
	logger  *zap.Logger
}

// New creates a registry backed by the given store. A nil store keeps the
// registry purely in-memory.
func New(store Store, logger *zap.Logger) *CapabilityRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapabilityRegistry{
		configs: make(map[string]types.AgentConfig),
		store:   store,
		logger:  logger.With(zap.String("component", "capability_registry")),
	}
}

// LoadFromStore replaces in-memory state with the store's contents.
func (r *CapabilityRegistry) LoadFromStore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	configs, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load agent configs: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = make(map[string]types.AgentConfig, len(configs))
	r.order = r.order[:0]
	for _, cfg := range configs {
		r.configs[cfg.ID] = cfg
		r.order = append(r.order, cfg.ID)
	}
	r.logger.Info("agent configs loaded", zap.Int("count", len(configs)))
	return nil
}

// Add validates and stores a new config. It returns the full list of
// validation problems instead of stopping at the first one; a non-empty
// slice means nothing was stored.
func (r *CapabilityRegistry) Add(ctx context.Context, cfg types.AgentConfig) ([]string, error) {
	if problems := Validate(cfg); len(problems) > 0 {
		return problems, types.NewError(types.ErrInvalidConfig, "agent config rejected").WithAgentID(cfg.ID)
	}

	r.mu.Lock()
	if _, exists := r.configs[cfg.ID]; exists {
		r.mu.Unlock()
		return nil, types.NewError(types.ErrInvalidConfig, fmt.Sprintf("agent %q already registered", cfg.ID)).WithAgentID(cfg.ID)
	}
	r.configs[cfg.ID] = cfg.Clone()
	r.order = append(r.order, cfg.ID)
	r.mu.Unlock()

	if err := r.persist(ctx, cfg); err != nil {
		return nil, err
	}

	r.logger.Info("agent config added",
		zap.String("agent_id", cfg.ID),
		zap.String("connection_type", string(cfg.ConnectionType)),
	)
	return nil, nil
}

// Update applies a mutation to an existing config. The mutated config is
// re-validated before it replaces the stored one; invalid mutations leave the
// registry unchanged and return all problems found.
func (r *CapabilityRegistry) Update(ctx context.Context, id string, mutate func(*types.AgentConfig)) ([]string, error) {
	r.mu.Lock()
	current, exists := r.configs[id]
	if !exists {
		r.mu.Unlock()
		return nil, types.NewError(types.ErrAgentNotFound, fmt.Sprintf("agent %q not registered", id)).WithAgentID(id)
	}

	updated := current.Clone()
	mutate(&updated)
	updated.ID = id // id is immutable

	if problems := Validate(updated); len(problems) > 0 {
		r.mu.Unlock()
		return problems, types.NewError(types.ErrInvalidConfig, "agent config update rejected").WithAgentID(id)
	}
	r.configs[id] = updated
	r.mu.Unlock()

	if err := r.persist(ctx, updated); err != nil {
		return nil, err
	}

	r.logger.Info("agent config updated", zap.String("agent_id", id))
	return nil, nil
}

// Remove deletes a config from the registry and the backing store.
func (r *CapabilityRegistry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, exists := r.configs[id]; !exists {
		r.mu.Unlock()
		return types.NewError(types.ErrAgentNotFound, fmt.Sprintf("agent %q not registered", id)).WithAgentID(id)
	}
	delete(r.configs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete agent config %q: %w", id, err)
		}
	}

	r.logger.Info("agent config removed", zap.String("agent_id", id))
	return nil
}

// Get returns a copy of one config.
func (r *CapabilityRegistry) Get(id string) (types.AgentConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	if !ok {
		return types.AgentConfig{}, false
	}
	return cfg.Clone(), true
}

// List returns copies of all configs in insertion order.
func (r *CapabilityRegistry) List() []types.AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.AgentConfig, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.configs[id].Clone())
	}
	return out
}

// ListEnabled returns copies of all enabled configs in insertion order.
func (r *CapabilityRegistry) ListEnabled() []types.AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.AgentConfig, 0, len(r.order))
	for _, id := range r.order {
		if cfg := r.configs[id]; cfg.Enabled {
			out = append(out, cfg.Clone())
		}
	}
	return out
}

func (r *CapabilityRegistry) persist(ctx context.Context, cfg types.AgentConfig) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(ctx, cfg); err != nil {
		return fmt.Errorf("persist agent config %q: %w", cfg.ID, err)
	}
	return nil
}

// Validate collects every problem with a config so callers can report them
// all at once. An empty slice means the config is acceptable.
func Validate(cfg types.AgentConfig) []string {
	var problems []string

	if strings.TrimSpace(cfg.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		problems = append(problems, "name is required")
	}
	if cfg.ConnectionType == "" {
		problems = append(problems, "connection_type is required")
		return problems
	}
	if !cfg.ConnectionType.Valid() {
		problems = append(problems, fmt.Sprintf("unsupported connection_type %q", cfg.ConnectionType))
		return problems
	}

	switch cfg.ConnectionType {
	case types.KindHTTPAPI:
		if cfg.Endpoint == "" {
			problems = append(problems, "http_api agents require endpoint")
		}
	case types.KindModule:
		if cfg.ModulePath == "" {
			problems = append(problems, "go_module agents require module_path")
		}
	case types.KindFunction:
		if cfg.ModulePath == "" {
			problems = append(problems, "function_call agents require module_path")
		}
		if cfg.FunctionName == "" {
			problems = append(problems, "function_call agents require function_name")
		}
	case types.KindInstance:
		if cfg.Instance == nil {
			problems = append(problems, "class_instance agents require a live instance")
		}
	case types.KindWebSocket:
		if cfg.WebSocketURL == "" {
			problems = append(problems, "websocket agents require websocket_url")
		}
	case types.KindGRPC:
		if cfg.GRPCEndpoint == "" {
			problems = append(problems, "grpc agents require grpc_endpoint")
		}
	}

	return problems
}

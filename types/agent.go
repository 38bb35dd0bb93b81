package types

import "context"

// =============================================================================
// Minimal Agent Invocation Interfaces
// =============================================================================
// Every backend adapter (HTTP, module, function, instance, websocket, gRPC)
// normalizes to Invoker at registration time. Method-shape probing for
// in-process handles happens once, when the binding is created, instead of
// on every call.
//
// The types package is the lowest-level package with no internal
// dependencies, so placing these interfaces here avoids circular imports.
// =============================================================================

// Invoker is the uniform call contract bound to each connected agent.
type Invoker interface {
	// Invoke runs the agent with the given input text and call context.
	// It returns the raw agent value; the connector wraps it into a Result.
	Invoke(ctx context.Context, input string, callCtx map[string]any) (any, error)
}

// InvokerFunc adapts a plain function to the Invoker interface.
type InvokerFunc func(ctx context.Context, input string, callCtx map[string]any) (any, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, input string, callCtx map[string]any) (any, error) {
	return f(ctx, input, callCtx)
}

// Named is an optional interface for handles that expose a display name.
type Named interface {
	// Name returns the agent's human-readable display name.
	Name() string
}

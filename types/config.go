package types

import "time"

// ConnectionKind identifies how an agent backend is reached.
type ConnectionKind string

const (
	// KindHTTPAPI is a remote agent exposed over HTTP (health check + process endpoint).
	KindHTTPAPI ConnectionKind = "http_api"
	// KindModule is an in-process agent constructed from a registered module factory.
	KindModule ConnectionKind = "go_module"
	// KindFunction is an in-process agent backed by a registered function.
	KindFunction ConnectionKind = "function_call"
	// KindInstance is an already-constructed in-process agent handle.
	KindInstance ConnectionKind = "class_instance"
	// KindWebSocket is a remote agent reached over a WebSocket connection.
	KindWebSocket ConnectionKind = "websocket"
	// KindGRPC is a remote agent reached over gRPC.
	KindGRPC ConnectionKind = "grpc"
)

// Valid reports whether the connection kind is one of the supported values.
func (k ConnectionKind) Valid() bool {
	switch k {
	case KindHTTPAPI, KindModule, KindFunction, KindInstance, KindWebSocket, KindGRPC:
		return true
	}
	return false
}

// AgentConfig is the wire/storage record describing one pluggable agent.
// Kind-specific fields are optional; Validate in the registry package checks
// that the fields required by ConnectionType are present.
type AgentConfig struct {
	ID          string `json:"id" yaml:"id" gorm:"primaryKey"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	ConnectionType ConnectionKind `json:"connection_type" yaml:"connection_type"`

	// http_api
	Endpoint    string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" gorm:"serializer:json"`
	HealthCheck string            `json:"health_check,omitempty" yaml:"health_check,omitempty"`
	Endpoints   map[string]string `json:"endpoints,omitempty" yaml:"endpoints,omitempty" gorm:"serializer:json"`

	// go_module / function_call
	ModulePath   string         `json:"module_path,omitempty" yaml:"module_path,omitempty"`
	ClassName    string         `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	FunctionName string         `json:"function_name,omitempty" yaml:"function_name,omitempty"`
	InitParams   map[string]any `json:"init_params,omitempty" yaml:"init_params,omitempty" gorm:"serializer:json"`

	// class_instance; carries the live handle, never serialized
	Instance any `json:"-" yaml:"-" gorm:"-"`

	// websocket
	WebSocketURL string   `json:"websocket_url,omitempty" yaml:"websocket_url,omitempty"`
	Protocols    []string `json:"protocols,omitempty" yaml:"protocols,omitempty" gorm:"serializer:json"`

	// grpc
	GRPCEndpoint string   `json:"grpc_endpoint,omitempty" yaml:"grpc_endpoint,omitempty"`
	Service      string   `json:"service,omitempty" yaml:"service,omitempty"`
	Methods      []string `json:"methods,omitempty" yaml:"methods,omitempty" gorm:"serializer:json"`

	// routing metadata
	Keywords    []string `json:"keywords" yaml:"keywords" gorm:"serializer:json"`
	Patterns    []string `json:"patterns" yaml:"patterns" gorm:"serializer:json"`
	InputTypes  []string `json:"input_types,omitempty" yaml:"input_types,omitempty" gorm:"serializer:json"`
	OutputTypes []string `json:"output_types,omitempty" yaml:"output_types,omitempty" gorm:"serializer:json"`

	Enabled bool `json:"enabled" yaml:"enabled"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// Clone returns a deep-enough copy of the config. Executions hold copies so
// that registry updates never mutate a config already in flight.
func (c AgentConfig) Clone() AgentConfig {
	out := c
	out.Headers = cloneStringMap(c.Headers)
	out.Endpoints = cloneStringMap(c.Endpoints)
	out.InitParams = cloneAnyMap(c.InitParams)
	out.Keywords = append([]string(nil), c.Keywords...)
	out.Patterns = append([]string(nil), c.Patterns...)
	out.InputTypes = append([]string(nil), c.InputTypes...)
	out.OutputTypes = append([]string(nil), c.OutputTypes...)
	out.Protocols = append([]string(nil), c.Protocols...)
	out.Methods = append([]string(nil), c.Methods...)
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CapabilitySet is the derived, read-only routing view of a connected agent.
// It is recomputed at registration time and feeds the router's lookup tables.
type CapabilitySet struct {
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
	InputTypes  []string `json:"input_types"`
	OutputTypes []string `json:"output_types"`
	// Methods lists the callable entry points discovered on the live handle
	// (module/instance kinds only).
	Methods  []string `json:"methods"`
	Patterns []string `json:"patterns"`
}

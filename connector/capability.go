package connector

import (
	"reflect"

	"github.com/blackhole-core/agentmesh/types"
)

// buildCapabilitySet derives the routing view for a freshly bound agent.
// Declared metadata comes from the config; callable method names are
// discovered on the live handle when one exists.
func buildCapabilitySet(cfg types.AgentConfig, handle any) types.CapabilitySet {
	caps := types.CapabilitySet{
		Keywords:    append([]string(nil), cfg.Keywords...),
		Description: cfg.Description,
		InputTypes:  append([]string(nil), cfg.InputTypes...),
		OutputTypes: append([]string(nil), cfg.OutputTypes...),
		Patterns:    append([]string(nil), cfg.Patterns...),
	}
	if len(caps.InputTypes) == 0 {
		caps.InputTypes = []string{"text"}
	}
	if len(caps.OutputTypes) == 0 {
		caps.OutputTypes = []string{"json"}
	}
	if handle != nil {
		caps.Methods = discoverMethods(handle)
	}
	return caps
}

// discoverMethods lists the exported method names on a handle.
func discoverMethods(handle any) []string {
	t := reflect.TypeOf(handle)
	if t == nil {
		return nil
	}
	methods := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		methods = append(methods, t.Method(i).Name)
	}
	return methods
}

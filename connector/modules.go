package connector

import (
	"fmt"
	"sync"
)

// ModuleFactory constructs an in-process agent handle from init params.
// It is the Go analogue of importing a module and instantiating a class:
// configs reference factories by module path and class name, and the factory
// must have been registered before the config can connect.
type ModuleFactory func(initParams map[string]any) (any, error)

// RefTable resolves module and function references from agent configs to
// registered Go values.
type RefTable struct {
	mu        sync.RWMutex
	modules   map[string]ModuleFactory
	functions map[string]any
}

// NewRefTable creates an empty reference table.
func NewRefTable() *RefTable {
	return &RefTable{
		modules:   make(map[string]ModuleFactory),
		functions: make(map[string]any),
	}
}

func moduleKey(modulePath, className string) string {
	if className == "" {
		return modulePath
	}
	return modulePath + "." + className
}

// RegisterModule binds a factory to a module path + class name pair.
func (t *RefTable) RegisterModule(modulePath, className string, factory ModuleFactory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modules[moduleKey(modulePath, className)] = factory
}

// RegisterFunction binds a callable to a module path + function name pair.
// The callable's shape is probed when an agent config references it.
func (t *RefTable) RegisterFunction(modulePath, functionName string, fn any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.functions[moduleKey(modulePath, functionName)] = fn
}

// Module resolves a module factory.
func (t *RefTable) Module(modulePath, className string) (ModuleFactory, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	factory, ok := t.modules[moduleKey(modulePath, className)]
	if !ok {
		return nil, fmt.Errorf("module %q not registered", moduleKey(modulePath, className))
	}
	return factory, nil
}

// Function resolves a registered function.
func (t *RefTable) Function(modulePath, functionName string) (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.functions[moduleKey(modulePath, functionName)]
	if !ok {
		return nil, fmt.Errorf("function %q not registered", moduleKey(modulePath, functionName))
	}
	return fn, nil
}

// DefaultRefTable is the process-wide reference table. Agents that ship in
// the same binary register themselves here, typically from init or main.
var DefaultRefTable = NewRefTable()

// RegisterModule registers a module factory in the default table.
func RegisterModule(modulePath, className string, factory ModuleFactory) {
	DefaultRefTable.RegisterModule(modulePath, className, factory)
}

// RegisterFunction registers a function in the default table.
func RegisterFunction(modulePath, functionName string, fn any) {
	DefaultRefTable.RegisterFunction(modulePath, functionName, fn)
}

package connector

import (
	"context"
	"fmt"
	"reflect"

	"github.com/blackhole-core/agentmesh/types"
)

// conventionalMethods are probed, in order, on module and instance handles.
// The first name that exists with a callable shape wins; probing happens once
// at registration, never per call.
var conventionalMethods = []string{"Process", "Execute", "Run", "Handle", "Plan"}

var (
	ctxType    = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType    = reflect.TypeOf((*error)(nil)).Elem()
	stringType = reflect.TypeOf("")
	mapType    = reflect.TypeOf(map[string]any{})
)

// callShape describes how a bound method or function wants its arguments.
type callShape int

const (
	// shapeInput passes the input text alone.
	shapeInput callShape = iota
	// shapeInputContext passes input text and the call context map.
	shapeInputContext
	// shapeMap passes a single map carrying both input and context.
	shapeMap
)

// boundCall is an Invoker built around one reflected callable.
type boundCall struct {
	fn       reflect.Value
	shape    callShape
	wantsCtx bool
	method   string
}

// MethodUsed reports which conventional method the binding resolved to
// (empty for plain functions).
func (b *boundCall) MethodUsed() string { return b.method }

// Invoke implements types.Invoker.
func (b *boundCall) Invoke(ctx context.Context, input string, callCtx map[string]any) (any, error) {
	args := make([]reflect.Value, 0, 3)
	if b.wantsCtx {
		args = append(args, reflect.ValueOf(ctx))
	}
	switch b.shape {
	case shapeInput:
		args = append(args, reflect.ValueOf(input))
	case shapeInputContext:
		if callCtx == nil {
			callCtx = map[string]any{}
		}
		args = append(args, reflect.ValueOf(input), reflect.ValueOf(callCtx))
	case shapeMap:
		payload := map[string]any{"input": input, "context": callCtx}
		args = append(args, reflect.ValueOf(payload))
	}

	out := b.fn.Call(args)
	return splitReturn(out)
}

// splitReturn normalizes (value), (error), and (value, error) return shapes.
func splitReturn(out []reflect.Value) (any, error) {
	switch len(out) {
	case 1:
		if out[0].Type().Implements(errType) {
			if err, _ := out[0].Interface().(error); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	case 2:
		var err error
		if !out[1].IsNil() {
			err = out[1].Interface().(error)
		}
		return out[0].Interface(), err
	default:
		return nil, fmt.Errorf("unsupported return arity %d", len(out))
	}
}

// bindHandle turns an in-process handle into an Invoker. Handles that already
// implement types.Invoker are used directly; otherwise the conventional
// method names are probed with decreasing argument specificity.
func bindHandle(handle any) (types.Invoker, string, error) {
	if handle == nil {
		return nil, "", types.NewError(types.ErrNoSuitableMethod, "nil agent handle")
	}
	if inv, ok := handle.(types.Invoker); ok {
		return inv, "Invoke", nil
	}

	v := reflect.ValueOf(handle)
	for _, name := range conventionalMethods {
		method := v.MethodByName(name)
		if !method.IsValid() {
			continue
		}
		bound, err := bindCallable(method, name)
		if err != nil {
			// The name exists but its shape is not callable with any of the
			// supported argument lists; keep probing the remaining names.
			continue
		}
		return bound, name, nil
	}

	return nil, "", types.NewError(types.ErrNoSuitableMethod,
		fmt.Sprintf("no suitable method found on %T (tried %v)", handle, conventionalMethods))
}

// bindFunctionValue binds a registered plain function by its declared
// parameter count, mirroring bindHandle's shape rules.
func bindFunctionValue(fn any) (types.Invoker, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, types.NewError(types.ErrNoSuitableMethod, fmt.Sprintf("%T is not a function", fn))
	}
	bound, err := bindCallable(v, "")
	if err != nil {
		return nil, err
	}
	return bound, nil
}

// bindCallable matches a callable's signature against the supported shapes:
// (input), (input, context), (map), each optionally taking a leading
// context.Context, returning a value, an error, or both.
func bindCallable(fn reflect.Value, methodName string) (*boundCall, error) {
	t := fn.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic signatures are not supported")
	}
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return nil, fmt.Errorf("callable must return a value, an error, or both")
	}
	if t.NumOut() == 2 && t.Out(1) != errType {
		return nil, fmt.Errorf("second return value must be error")
	}

	in := make([]reflect.Type, t.NumIn())
	for i := range in {
		in[i] = t.In(i)
	}

	wantsCtx := len(in) > 0 && in[0] == ctxType
	if wantsCtx {
		in = in[1:]
	}

	var shape callShape
	switch {
	case len(in) == 1 && acceptsString(in[0]):
		shape = shapeInput
	case len(in) == 2 && acceptsString(in[0]) && acceptsMap(in[1]):
		shape = shapeInputContext
	case len(in) == 1 && acceptsMap(in[0]):
		shape = shapeMap
	default:
		return nil, fmt.Errorf("unsupported parameter list")
	}

	return &boundCall{fn: fn, shape: shape, wantsCtx: wantsCtx, method: methodName}, nil
}

func acceptsString(t reflect.Type) bool {
	return t == stringType || t.Kind() == reflect.Interface && t.NumMethod() == 0
}

func acceptsMap(t reflect.Type) bool {
	return t == mapType || t.Kind() == reflect.Interface && t.NumMethod() == 0
}

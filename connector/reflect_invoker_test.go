package connector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackhole-core/agentmesh/types"
)

type processAgent struct{}

func (processAgent) Process(input string) string { return "processed " + input }

type executeAgent struct{}

func (executeAgent) Execute(input string, callCtx map[string]any) (string, error) {
	who, _ := callCtx["who"].(string)
	return "executed " + input + " for " + who, nil
}

type runAgent struct{}

func (runAgent) Run(payload map[string]any) (map[string]any, error) {
	return map[string]any{"echo": payload["input"]}, nil
}

type ctxAgent struct{}

func (ctxAgent) Handle(ctx context.Context, input string) (string, error) {
	if ctx == nil {
		return "", errors.New("nil context")
	}
	return "handled " + input, nil
}

type multiAgent struct{}

// Process comes before Execute in the probing order, so it must win.
func (multiAgent) Process(input string) string { return "via process" }
func (multiAgent) Execute(input string) string { return "via execute" }

type noMethodAgent struct{}

func (noMethodAgent) Unrelated() {}

type selfInvoker struct{}

func (selfInvoker) Invoke(ctx context.Context, input string, callCtx map[string]any) (any, error) {
	return "direct " + input, nil
}

func TestBindHandleShapes(t *testing.T) {
	ctx := context.Background()
	callCtx := map[string]any{"who": "alice"}

	tests := []struct {
		name       string
		handle     any
		wantMethod string
		wantResult any
	}{
		{"input only", processAgent{}, "Process", "processed ping"},
		{"input and context map", executeAgent{}, "Execute", "executed ping for alice"},
		{"single map payload", runAgent{}, "Run", map[string]any{"echo": "ping"}},
		{"leading context", ctxAgent{}, "Handle", "handled ping"},
		{"probe order prefers Process", multiAgent{}, "Process", "via process"},
		{"native invoker used directly", selfInvoker{}, "Invoke", "direct ping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker, method, err := bindHandle(tt.handle)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, method)

			got, err := invoker.Invoke(ctx, "ping", callCtx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, got)
		})
	}
}

func TestBindHandleNoSuitableMethod(t *testing.T) {
	_, _, err := bindHandle(noMethodAgent{})
	require.Error(t, err)
	assert.Equal(t, types.ErrNoSuitableMethod, types.CodeOf(err))

	_, _, err = bindHandle(nil)
	require.Error(t, err)
}

func TestBindFunctionValueShapes(t *testing.T) {
	ctx := context.Background()

	t.Run("string to string", func(t *testing.T) {
		inv, err := bindFunctionValue(func(input string) string { return "fn " + input })
		require.NoError(t, err)
		got, err := inv.Invoke(ctx, "x", nil)
		require.NoError(t, err)
		assert.Equal(t, "fn x", got)
	})

	t.Run("error only return", func(t *testing.T) {
		inv, err := bindFunctionValue(func(input string) error {
			if input == "bad" {
				return errors.New("rejected")
			}
			return nil
		})
		require.NoError(t, err)

		_, err = inv.Invoke(ctx, "ok", nil)
		require.NoError(t, err)
		_, err = inv.Invoke(ctx, "bad", nil)
		assert.EqualError(t, err, "rejected")
	})

	t.Run("context and both params", func(t *testing.T) {
		inv, err := bindFunctionValue(func(ctx context.Context, input string, callCtx map[string]any) (any, error) {
			return len(input), nil
		})
		require.NoError(t, err)
		got, err := inv.Invoke(ctx, "abcd", map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, 4, got)
	})

	t.Run("rejects unsupported signatures", func(t *testing.T) {
		_, err := bindFunctionValue(func(a, b, c string) string { return "" })
		assert.Error(t, err)

		_, err = bindFunctionValue(func(input string) {})
		assert.Error(t, err, "no return values")

		_, err = bindFunctionValue(func(parts ...string) string { return "" })
		assert.Error(t, err, "variadic")

		_, err = bindFunctionValue(func(input string) (string, string) { return "", "" })
		assert.Error(t, err, "second return must be error")

		_, err = bindFunctionValue("not a function")
		assert.Error(t, err)
	})
}

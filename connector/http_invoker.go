package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blackhole-core/agentmesh/types"
)

// httpInvoker posts {input, context} to a remote agent's process endpoint.
type httpInvoker struct {
	client   *http.Client
	baseURL  string
	endpoint string
	headers  map[string]string
}

func newHTTPInvoker(client *http.Client, cfg types.AgentConfig) *httpInvoker {
	endpoint := "/process"
	if configured, ok := cfg.Endpoints["process"]; ok && configured != "" {
		endpoint = configured
	}
	return &httpInvoker{
		client:   client,
		baseURL:  strings.TrimRight(cfg.Endpoint, "/"),
		endpoint: endpoint,
		headers:  cfg.Headers,
	}
}

// Invoke implements types.Invoker. Non-200 responses become errors carrying
// the status and response body.
func (h *httpInvoker) Invoke(ctx context.Context, input string, callCtx map[string]any) (any, error) {
	if callCtx == nil {
		callCtx = map[string]any{}
	}
	payload, err := json.Marshal(map[string]any{
		"input":   input,
		"context": callCtx,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "http request failed").WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode >= 500)
	}

	var result any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			// Agents are allowed to answer with plain text.
			result = string(body)
		}
	}
	return result, nil
}

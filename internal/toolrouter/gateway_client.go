package toolrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GatewayClient forwards tool calls to a remote tool gateway over HTTP.
// The gateway wraps results in an envelope {tool, result, latency_ms};
// the client unwraps and returns just the inner result.
type GatewayClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GatewayClient) Call(ctx context.Context, tool string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/tools/%s", g.BaseURL, tool), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading gateway response: %v", ErrBackendUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrefix, tool)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ExecutionError{Tool: tool, Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, truncate(string(data), 200))}
	}

	var envelope struct {
		Tool    string         `json:"tool"`
		Result  map[string]any `json:"result"`
		Latency float64        `json:"latency_ms"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ExecutionError{Tool: tool, Err: fmt.Errorf("invalid gateway envelope: %v", err)}
	}
	if envelope.Result != nil {
		return envelope.Result, nil
	}

	// Fall back to the raw body when the gateway did not wrap the result.
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ExecutionError{Tool: tool, Err: fmt.Errorf("invalid gateway response: %v", err)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

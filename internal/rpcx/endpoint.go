// Package rpcx provides the Solana-facing network edge: JSON-RPC submission
// endpoints for the broadcast race and the WebSocket launch-event feed.
package rpcx

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"solana-sniper/internal/broadcast"
	"solana-sniper/internal/domain"
)

// DefaultSubmitTimeout bounds one HTTP submission when the http.Client has
// no tighter timeout. The broadcast executor applies its own per-endpoint
// deadline on top.
const DefaultSubmitTimeout = 10 * time.Second

// HTTPEndpoint submits signed transactions to one Solana JSON-RPC node.
// It implements broadcast.Endpoint. Submission is one-shot: the broadcast
// race provides redundancy, so there is no retry loop here.
type HTTPEndpoint struct {
	name      string
	url       string
	client    *http.Client
	skipPre   bool // skipPreflight on sendTransaction
	requestID atomic.Uint64
}

// EndpointOption configures HTTPEndpoint.
type EndpointOption func(*HTTPEndpoint)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) EndpointOption {
	return func(e *HTTPEndpoint) {
		e.client = client
	}
}

// WithPreflight enables the node-side preflight simulation. Off by default:
// preflight costs a slot of latency the race exists to avoid.
func WithPreflight() EndpointOption {
	return func(e *HTTPEndpoint) {
		e.skipPre = false
	}
}

// NewHTTPEndpoint creates a submission endpoint for one RPC node.
func NewHTTPEndpoint(name, url string, opts ...EndpointOption) *HTTPEndpoint {
	e := &HTTPEndpoint{
		name:    name,
		url:     url,
		client:  &http.Client{Timeout: DefaultSubmitTimeout},
		skipPre: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name identifies the endpoint in attempt logs and metrics.
func (e *HTTPEndpoint) Name() string {
	return e.name
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Submit sends the transaction via sendTransaction and returns the signature
// the node reports. Node-level refusal maps to broadcast.RejectionError so
// the executor can distinguish it from transport faults.
func (e *HTTPEndpoint) Submit(ctx context.Context, tx *domain.SignedTransaction) (string, error) {
	params := []interface{}{
		base64.StdEncoding.EncodeToString(tx.Blob()),
		map[string]interface{}{
			"encoding":      "base64",
			"skipPreflight": e.skipPre,
			"maxRetries":    0,
		},
	}

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      e.requestID.Add(1),
		Method:  "sendTransaction",
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		// Surface the context error so the executor classifies timeouts
		// and race cancellation correctly.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return "", &broadcast.RejectionError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	var signature string
	if err := json.Unmarshal(rpcResp.Result, &signature); err != nil {
		return "", fmt.Errorf("unmarshal result: %w", err)
	}
	return signature, nil
}

// Verify interface compliance at compile time.
var _ broadcast.Endpoint = (*HTTPEndpoint)(nil)

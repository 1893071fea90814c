package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// RPCClient is a JSON-RPC 1.0 client for bitcoind-compatible nodes.
// Provider methods are built on top of Call.
type RPCClient struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
	log    *log.Entry
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCOption customizes an RPCClient.
type RPCOption func(*RPCClient)

// WithHTTPClient replaces the default pooled HTTP client.
func WithHTTPClient(hc *http.Client) RPCOption {
	return func(c *RPCClient) { c.client = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) RPCOption {
	return func(c *RPCClient) { c.log = l.WithField("component", "rpc") }
}

// NewRPCClient creates a JSON-RPC client. Basic auth is sent when User is
// non-empty.
func NewRPCClient(cfg RPCConfig, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log: log.StandardLogger().WithField("component", "rpc"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes a JSON-RPC method and decodes the result into result.
//
// A nil params sends an empty array; a nil result discards the response.
// Transport failures wrap ErrConnectionFailed, HTTP 401/403 wrap
// ErrAuthFailed and undecodable bodies wrap ErrInvalidResponse. Node-level
// errors are returned with the node's code and message.
func (c *RPCClient) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("network: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("network: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	c.log.WithFields(log.Fields{"method": method, "id": reqBody.ID}).Debug("rpc request")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}

	// bitcoind answers RPC errors with HTTP 500 and a JSON body.
	if rpcResp.Error != nil {
		c.log.WithFields(log.Fields{
			"method": method,
			"code":   rpcResp.Error.Code,
		}).Debug("rpc error")
		return fmt.Errorf("network: rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, string(respBody))
	}

	if rpcResp.ID != reqBody.ID {
		return fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("%w: unmarshal result: %w", ErrInvalidResponse, err)
		}
	}
	return nil
}

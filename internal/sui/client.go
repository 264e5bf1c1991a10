// Package sui is a minimal Sui fullnode JSON-RPC client.
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

var (
	ErrTxTimeout = errors.New("transaction was not confirmed in time")
	ErrTxFailed  = errors.New("transaction failed")
)

// RPCError is a JSON-RPC error object returned by the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("sui rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Client talks JSON-RPC 2.0 to a single fullnode URL.
type Client struct {
	url    string
	http   *http.Client
	nextID atomic.Uint64
}

// NewClient returns a client for rpcURL. A nil httpClient uses http.DefaultClient.
func NewClient(rpcURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: rpcURL, http: httpClient}
}

// Call invokes method with params and decodes the result into out (if non-nil).
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var rr rpcResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rr.Error != nil {
		return rr.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// GetObject fetches an object with its type and Move content.
func (c *Client) GetObject(ctx context.Context, objectID string) (*ObjectResponse, error) {
	var out ObjectResponse
	opts := map[string]bool{"showContent": true, "showType": true, "showOwner": true}
	if err := c.Call(ctx, "sui_getObject", []any{objectID, opts}, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("object %s: %s", objectID, out.Error.Code)
	}
	return &out, nil
}

// GetOwnedObjects pages objects of structType owned by owner.
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string, cursor *string, limit int) (*ObjectPage, error) {
	query := map[string]any{
		"filter":  map[string]string{"StructType": structType},
		"options": map[string]bool{"showContent": true, "showType": true},
	}
	var out ObjectPage
	if err := c.Call(ctx, "suix_getOwnedObjects", []any{owner, query, cursor, limit}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryEvents pages events of a Move event type.
func (c *Client) QueryEvents(ctx context.Context, moveEventType string, cursor *EventID, limit int, descending bool) (*EventPage, error) {
	filter := map[string]string{"MoveEventType": moveEventType}
	var out EventPage
	if err := c.Call(ctx, "suix_queryEvents", []any{filter, cursor, limit, descending}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveCall asks the fullnode to build an unsigned transaction for a single Move call.
func (c *Client) MoveCall(ctx context.Context, req MoveCallRequest) (*TransactionBytes, error) {
	typeArgs := req.TypeArgs
	if typeArgs == nil {
		typeArgs = []string{}
	}
	args := req.Args
	if args == nil {
		args = []any{}
	}
	params := []any{
		req.Signer,
		req.PackageID,
		req.Module,
		req.Function,
		typeArgs,
		args,
		req.Gas,
		fmt.Sprintf("%d", req.GasBudget),
	}
	var out TransactionBytes
	if err := c.Call(ctx, "unsafe_moveCall", params, &out); err != nil {
		return nil, err
	}
	if out.TxBytes == "" {
		return nil, fmt.Errorf("unsafe_moveCall %s::%s: empty txBytes", req.Module, req.Function)
	}
	return &out, nil
}

// ExecuteTransactionBlock submits signed transaction bytes.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string, opts *ResponseOptions) (*TransactionBlockResponse, error) {
	if opts == nil {
		opts = DefaultResponseOptions()
	}
	var out TransactionBlockResponse
	params := []any{txBytes, signatures, opts, "WaitForLocalExecution"}
	if err := c.Call(ctx, "sui_executeTransactionBlock", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransactionBlock fetches a transaction by digest.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string, opts *ResponseOptions) (*TransactionBlockResponse, error) {
	if opts == nil {
		opts = DefaultResponseOptions()
	}
	var out TransactionBlockResponse
	if err := c.Call(ctx, "sui_getTransactionBlock", []any{digest, opts}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

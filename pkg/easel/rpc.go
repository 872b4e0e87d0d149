// ABOUTME: Typed JSON-RPC surface over POST /rpc on the studio backend
// ABOUTME: Envelope {method,params,id}; errors surface as *RPCError with code and message

package easel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/easelhq/easel/pkg/easel/internal/httputil"
)

const rpcPath = "/rpc"

// JSON-RPC error codes the backend emits.
const (
	RPCParseError     = -32700
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
	RPCServerError    = -32000
)

// RPCError is a backend-reported JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// rpcRequest is the JSON-RPC request envelope.
type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
	ID     string `json:"id"`
}

// rpcResponse is the JSON-RPC response envelope.
type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
	ID     any             `json:"id"`
}

// Call invokes a backend method with raw params and returns the raw result.
// Used directly for opaque pass-through methods (auth.login, auth.apikey);
// the typed helpers below cover everything else.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		Method: method,
		Params: params,
		ID:     uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", method, err)
	}

	resp, err := c.http.Do(ctx, http.MethodPost, rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httputil.ErrorFromResponse(resp)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	return envelope.Result, nil
}

// call invokes a method and decodes the result into out (out may be nil).
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	result, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// ListSessions returns all backend sessions.
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	var out []SessionInfo
	err := c.call(ctx, "sessions.list", nil, &out)
	return out, err
}

// GetSession returns one session by id.
func (c *Client) GetSession(ctx context.Context, id string) (SessionInfo, error) {
	var out SessionInfo
	err := c.call(ctx, "sessions.get", map[string]string{"id": id}, &out)
	return out, err
}

// CurrentSession returns the backend's currently selected session.
func (c *Client) CurrentSession(ctx context.Context) (SessionInfo, error) {
	var out SessionInfo
	err := c.call(ctx, "sessions.current", nil, &out)
	return out, err
}

// SelectSession makes id the backend's current session.
func (c *Client) SelectSession(ctx context.Context, id string) error {
	return c.call(ctx, "sessions.select", map[string]string{"id": id}, nil)
}

// CreateSession creates a session with the given title.
func (c *Client) CreateSession(ctx context.Context, title string) (SessionInfo, error) {
	var out SessionInfo
	err := c.call(ctx, "sessions.create", map[string]string{"title": title}, &out)
	return out, err
}

// ForkSession forks sessionID into a new session titled title.
func (c *Client) ForkSession(ctx context.Context, sessionID, title string) (SessionInfo, error) {
	var out SessionInfo
	err := c.call(ctx, "sessions.fork", map[string]string{"sessionId": sessionID, "title": title}, &out)
	return out, err
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.call(ctx, "sessions.delete", map[string]string{"id": id}, nil)
}

// History returns up to limit past user messages of the current session,
// newest first, starting at offset.
func (c *Client) History(ctx context.Context, limit, offset int) ([]HistoryMessage, error) {
	var out []HistoryMessage
	err := c.call(ctx, "messages.history", map[string]int{"limit": limit, "offset": offset}, &out)
	return out, err
}

// ListCommands returns the backend's command palette entries.
func (c *Client) ListCommands(ctx context.Context) ([]CommandInfo, error) {
	var out []CommandInfo
	err := c.call(ctx, "commands.list", nil, &out)
	return out, err
}

// cancelAgent issues agent.cancel for sessionID.
func (c *Client) cancelAgent(ctx context.Context, sessionID string) error {
	var out CancelResult
	return c.call(ctx, "agent.cancel", map[string]string{"sessionId": sessionID}, &out)
}

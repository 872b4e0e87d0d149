// ABOUTME: Session stream client for the studio backend: one live push-stream per session
// ABOUTME: Open rebinds the stream, Send/Cancel are side-channel calls, Subscribe fans out events

package easel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/easelhq/easel/pkg/easel/internal/httputil"
)

// Sentinel errors for client call contracts.
var (
	// ErrNotConnected: Send requires a bound session whose stream has seen
	// the connected marker.
	ErrNotConnected = errors.New("easel: not connected")
	// ErrNoSession: Cancel requires a bound session.
	ErrNoSession = errors.New("easel: no session bound")
)

// Client talks to one studio backend. It maintains at most one live
// push-stream connection, bound to a session id; Open replaces the
// connection, never mutates it. Side-channel calls (Send, Cancel, the RPC
// surface) are independent of the stream.
type Client struct {
	http         *httputil.Client
	extraHeaders map[string]string
	logf         func(format string, args ...any)

	mu       sync.Mutex
	conn     *conn
	handlers []handlerEntry
	nextID   int
}

type handlerEntry struct {
	id int
	fn func(Event)
}

// Option configures a Client.
type Option func(*Client)

// WithLogf routes the client's diagnostics (dropped events, reconnects)
// to logf. The default discards them.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(c *Client) { c.logf = logf }
}

// WithHeaders adds headers to every request, typically auth headers from
// a profile. Content-Type cannot be overridden.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.extraHeaders[k] = v
		}
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		extraHeaders: map[string]string{},
		logf:         func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	headers := map[string]string{}
	for k, v := range c.extraHeaders {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"
	c.http = httputil.NewClient(httputil.NormalizeBaseURL(baseURL), headers)
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// Subscribe registers fn for session events and returns an unsubscribe
// function. Events are delivered synchronously from the stream reader
// goroutine, in subscription order.
func (c *Client) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers = append(c.handlers, handlerEntry{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		for i, h := range c.handlers {
			if h.id == id {
				c.handlers = append(c.handlers[:i:i], c.handlers[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
	}
}

// emit delivers ev to subscribers on behalf of cn. A connection that is no
// longer the bound one delivers nothing: Open detaches the old connection
// before closing it, so a late event from a dead stream cannot land on the
// new session's state.
func (c *Client) emit(cn *conn, ev Event) {
	c.mu.Lock()
	if c.conn != cn {
		c.mu.Unlock()
		return
	}
	snapshot := make([]handlerEntry, len(c.handlers))
	copy(snapshot, c.handlers)
	c.mu.Unlock()

	for _, h := range snapshot {
		h.fn(ev)
	}
}

// Open binds the push-stream to sessionID. Binding the already-bound session
// is a no-op. Otherwise any existing connection is detached first, then
// closed (waiting for its reader to exit), and a new one is established.
// The stream lives until Open rebinds, Close is called, or ctx is cancelled.
func (c *Client) Open(ctx context.Context, sessionID string) {
	c.mu.Lock()
	if c.conn != nil && c.conn.sessionID == sessionID {
		c.mu.Unlock()
		return
	}
	old := c.conn
	c.conn = nil // detach: late events from old now land nowhere
	c.mu.Unlock()

	if old != nil {
		old.cancel()
		<-old.done
	}

	streamCtx, cancel := context.WithCancel(ctx)
	cn := &conn{
		sessionID: sessionID,
		ctx:       streamCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	c.mu.Lock()
	c.conn = cn
	c.mu.Unlock()

	go c.runStream(cn)
}

// Close tears down the bound connection, if any, and waits for its reader
// to exit.
func (c *Client) Close() {
	c.mu.Lock()
	old := c.conn
	c.conn = nil
	c.mu.Unlock()

	if old != nil {
		old.cancel()
		<-old.done
	}
}

// SessionID returns the bound session id, or "" when unbound.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ""
	}
	return c.conn.sessionID
}

// Connected reports whether the bound stream has seen the connected marker.
func (c *Client) Connected() bool {
	c.mu.Lock()
	cn := c.conn
	c.mu.Unlock()
	return cn != nil && cn.connected.Load()
}

// Send enqueues a user message for the bound session over the side channel.
// It requires a connected stream; the turn's outcome arrives later as push
// events. A non-2xx response surfaces as *httputil.HTTPError with the
// status code and body text.
func (c *Client) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	cn := c.conn
	c.mu.Unlock()
	if cn == nil || !cn.connected.Load() {
		return ErrNotConnected
	}

	body, err := json.Marshal(sendBody{Content: content})
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	path := "/stream/" + url.PathEscape(cn.sessionID) + "/message"
	resp, err := c.http.Do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("enqueueing message: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httputil.ErrorFromResponse(resp)
	}
	// Success payload carries nothing the client needs.
	resp.Body.Close()
	return nil
}

// Cancel asks the backend to cancel the bound session's in-flight turn.
func (c *Client) Cancel(ctx context.Context) error {
	c.mu.Lock()
	cn := c.conn
	c.mu.Unlock()
	if cn == nil {
		return ErrNoSession
	}
	return c.cancelAgent(ctx, cn.sessionID)
}

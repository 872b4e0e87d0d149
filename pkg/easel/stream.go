// ABOUTME: Push-stream reader loop: SSE subscribe, event decode, reconnect with backoff
// ABOUTME: Malformed payloads are logged and dropped; transport loss never escalates past reconnect

package easel

import (
	"context"
	"encoding/json"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/easelhq/easel/pkg/easel/internal/httputil"
	"github.com/easelhq/easel/pkg/easel/internal/sse"
)

// conn is one push-stream binding. Replaced wholesale on session switch.
type conn struct {
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}

	// connected flips on the backend's connected marker and off when the
	// transport drops. Send gates on it.
	connected atomic.Bool

	lastEventID string
}

// runStream owns cn for its whole lifetime: subscribe, read until the
// transport drops, back off, repeat. There is no attempt cap; backoff is
// exponential (500ms doubling to 10s) and resets after each stream that
// reached the connected marker.
func (c *Client) runStream(cn *conn) {
	defer close(cn.done)

	attempt := 0
	for {
		c.emit(cn, ConnectingEvent{})

		reader, resp, err := c.http.StreamSSE(cn.ctx, streamPath(cn.sessionID), cn.lastEventID)
		if err != nil {
			// Mid-handshake failure: still connecting, not disconnected.
			if cn.ctx.Err() != nil {
				return
			}
			c.logf("stream subscribe %s: %v", cn.sessionID, err)
			if httputil.SleepWithContext(cn.ctx, httputil.Backoff(attempt)) != nil {
				return
			}
			attempt++
			continue
		}

		sawConnected, retryAdvice := c.readEvents(cn, reader)
		resp.Body.Close()
		cn.connected.Store(false)

		// The reader tracked event IDs across the stream; resume from the
		// last one on reconnect.
		if id := reader.LastID(); id != "" {
			cn.lastEventID = id
		}

		if cn.ctx.Err() != nil {
			return
		}
		c.emit(cn, DisconnectedEvent{})

		if sawConnected {
			attempt = 0
		}
		delay := httputil.Backoff(attempt)
		if retryAdvice > delay {
			// Server retry advice acts as a floor, never shortening backoff.
			delay = retryAdvice
		}
		if httputil.SleepWithContext(cn.ctx, delay) != nil {
			return
		}
		attempt++
	}
}

func streamPath(sessionID string) string {
	return "/stream?session=" + url.QueryEscape(sessionID)
}

// readEvents decodes events until the stream ends. Reports whether the
// connected marker arrived, so the reconnect loop can reset its backoff,
// and the server's most recent retry advice.
func (c *Client) readEvents(cn *conn, reader *sse.Reader) (sawConnected bool, retryAdvice time.Duration) {
	for {
		ev, err := reader.Next()
		if err != nil {
			// io.EOF and read errors alike: the transport is gone.
			return sawConnected, retryAdvice
		}
		if ev.Retry > 0 {
			retryAdvice = time.Duration(ev.Retry) * time.Millisecond
		}

		switch ev.Type {
		case eventConnected:
			sawConnected = true
			cn.connected.Store(true)
			c.emit(cn, ConnectedEvent{})

		case eventHeartbeat:
			// Liveness only.

		case eventTool:
			var p toolPayload
			if err := json.Unmarshal([]byte(ev.Data), &p); err != nil || p.ID == "" {
				c.logf("dropping malformed tool event: %v (%.80s)", err, ev.Data)
				continue
			}
			c.emit(cn, ToolCallEvent{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Status:      p.Status,
				Params:      c.parseToolInput(p.ID, p.Input),
				Result:      p.Result,
				Err:         p.Error,
			})

		case eventComplete:
			var p completePayload
			if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
				c.logf("dropping malformed complete event: %v (%.80s)", err, ev.Data)
				continue
			}
			c.emit(cn, CompleteEvent{
				Content:           p.Content,
				Reasoning:         p.Reasoning,
				ReasoningDuration: p.ReasoningDuration,
			})

		case eventError:
			var p errorPayload
			msg := ev.Data
			if err := json.Unmarshal([]byte(ev.Data), &p); err == nil && p.Error != "" {
				msg = p.Error
			}
			c.emit(cn, ErrorEvent{Message: msg})

		default:
			// Unknown event types are forward compatibility, not errors.
		}
	}
}

// parseToolInput decodes the tool event's JSON-string input payload.
// A broken input drops only the params, never the event.
func (c *Client) parseToolInput(id, input string) map[string]any {
	if input == "" {
		return nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		c.logf("tool %s: unparseable input payload: %v", id, err)
		return nil
	}
	return params
}

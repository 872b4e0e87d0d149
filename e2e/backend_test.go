// ABOUTME: In-process fake studio backend for e2e runs: SSE stream plus JSON-RPC
// ABOUTME: Echoes sent messages back as a tool call and a complete event

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type sseEvent struct {
	id   string
	name string
	data string
}

// fakeStudio serves the backend surface the binary talks to. Sending a
// message to a session pushes a tool event and a completion echoing the
// content back on that session's stream.
type fakeStudio struct {
	server *httptest.Server

	mu       sync.Mutex
	streams  map[string][]chan sseEvent
	sent     []string
	cancels  int
	nextID   int
	sessions []map[string]any
}

func newFakeStudio(t *testing.T) *fakeStudio {
	t.Helper()
	f := &fakeStudio{
		streams: map[string][]chan sseEvent{},
		sessions: []map[string]any{
			{"id": "e2e-session", "title": "e2e", "messageCount": 0, "createdAt": "2026-08-25T10:00:00Z"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream", f.handleStream)
	mux.HandleFunc("POST /stream/{session}/message", f.handleMessage)
	mux.HandleFunc("POST /rpc", f.handleRPC)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeStudio) handleStream(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "no flusher", http.StatusInternalServerError)
		return
	}

	events := make(chan sseEvent, 64)
	f.mu.Lock()
	f.streams[session] = append(f.streams[session], events)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		chans := f.streams[session]
		for i, c := range chans {
			if c == events {
				f.streams[session] = append(chans[:i:i], chans[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	writeSSE(w, sseEvent{name: "connected", data: "{}"})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev sseEvent) {
	if ev.id != "" {
		fmt.Fprintf(w, "id: %s\n", ev.id)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
}

func (f *fakeStudio) handleMessage(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.sent = append(f.sent, body.Content)
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	w.WriteHeader(http.StatusOK)

	toolID := fmt.Sprintf("tool-%d", id)
	f.push(session, sseEvent{name: "tool", data: fmt.Sprintf(
		`{"id":%q,"name":"echo","status":"running"}`, toolID)})
	f.push(session, sseEvent{name: "tool", data: fmt.Sprintf(
		`{"id":%q,"name":"echo","status":"completed","result":"done"}`, toolID)})

	complete, _ := json.Marshal(map[string]any{"content": "echo: " + body.Content})
	f.push(session, sseEvent{id: fmt.Sprint(id), name: "complete", data: string(complete)})
}

func (f *fakeStudio) push(session string, ev sseEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, events := range f.streams[session] {
		select {
		case events <- ev:
		default:
		}
	}
}

func (f *fakeStudio) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		ID     string          `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result any
	switch req.Method {
	case "sessions.current", "sessions.create":
		f.mu.Lock()
		result = f.sessions[0]
		f.mu.Unlock()
	case "sessions.list":
		f.mu.Lock()
		result = f.sessions
		f.mu.Unlock()
	case "sessions.select":
		result = map[string]any{"status": "ok"}
	case "messages.history":
		result = []any{}
	case "commands.list":
		result = []map[string]string{
			{"name": "export", "description": "Export the session", "type": "builtin"},
		}
	case "agent.cancel":
		f.mu.Lock()
		f.cancels++
		f.mu.Unlock()
		result = map[string]any{"status": "cancelled"}
	default:
		writeRPC(w, req.ID, nil, map[string]any{"code": -32601, "message": "method not found: " + req.Method})
		return
	}
	writeRPC(w, req.ID, result, nil)
}

func writeRPC(w http.ResponseWriter, id string, result, rpcErr any) {
	resp := map[string]any{"id": id}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeStudio) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// sentContains reports whether any sent message contains substr.
func (f *fakeStudio) sentContains(substr string) bool {
	for _, s := range f.sentMessages() {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

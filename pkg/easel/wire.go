// ABOUTME: Named wire types for the studio backend: SSE payloads and RPC data
// ABOUTME: Hot-path SSE payloads have hand-tuned easyjson decoders in wire_decode.go

package easel

// Push-stream event types delivered on GET /stream?session=<id>.
const (
	eventConnected = "connected"
	eventHeartbeat = "heartbeat"
	eventTool      = "tool"
	eventComplete  = "complete"
	eventError     = "error"
)

// toolPayload is the SSE payload for "tool" events. Input arrives as a
// JSON-string payload; parseToolInput decodes it separately so a broken
// input never discards the rest of the event.
type toolPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Input       string `json:"input"`
	Result      string `json:"result"`
	Error       string `json:"error"`
}

// completePayload is the SSE payload for "complete" events.
type completePayload struct {
	Content           string  `json:"content"`
	Reasoning         string  `json:"reasoning"`
	ReasoningDuration float64 `json:"reasoningDuration"`
}

// errorPayload is the SSE payload for "error" events.
type errorPayload struct {
	Error string `json:"error"`
}

// sendBody is the message-enqueue request body for POST /stream/<id>/message.
type sendBody struct {
	Content string `json:"content"`
}

// SessionInfo describes one backend session, as returned by sessions.* RPCs.
type SessionInfo struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	MessageCount     int64   `json:"messageCount"`
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	Cost             float64 `json:"cost"`
	CreatedAt        string  `json:"createdAt"`
	WorkingDirectory string  `json:"workingDirectory,omitempty"`
	FirstUserMessage string  `json:"firstUserMessage,omitempty"`
}

// HistoryToolCall is one tool call attached to a history message.
type HistoryToolCall struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Input    string `json:"input"`
	Type     string `json:"type"`
	Finished bool   `json:"finished"`
}

// HistoryMessage is one row of messages.history, newest first. MediaFiles
// and AppNames carry the attachment state the message was sent with, so a
// client can reconstruct its @name references.
type HistoryMessage struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"sessionId"`
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []HistoryToolCall `json:"toolCalls,omitempty"`
	MediaFiles []string          `json:"mediaFiles,omitempty"`
	AppNames   []string          `json:"appNames,omitempty"`
}

// CommandInfo describes one backend command for the palette.
type CommandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"` // "builtin" or "file"
}

// CancelResult is the agent.cancel response payload.
type CancelResult struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
}

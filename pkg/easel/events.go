// ABOUTME: Decoded session events delivered to Client subscribers
// ABOUTME: Closed set covering connection phases and push-stream turn outcomes

package easel

// Event is a decoded session event. Subscribers receive exactly one of the
// concrete types below, in the order the connection produced them.
type Event interface {
	isStreamEvent()
}

// ConnectingEvent: a connection attempt (initial or reconnect) is underway.
type ConnectingEvent struct{}

// ConnectedEvent: the backend acknowledged the stream with its connected
// marker.
type ConnectedEvent struct{}

// DisconnectedEvent: the transport fully closed; a reconnect follows unless
// the session was unbound.
type DisconnectedEvent struct{}

// ToolCallEvent: the backend reported progress on one tool execution.
// Fields for the same ID arrive incrementally across events.
type ToolCallEvent struct {
	ID          string
	Name        string
	Description string
	Status      string
	Params      map[string]any
	Result      string
	Err         string
}

// CompleteEvent: the in-flight turn finished with a final answer.
type CompleteEvent struct {
	Content           string
	Reasoning         string
	ReasoningDuration float64
}

// ErrorEvent: the backend reported a turn error on the stream.
type ErrorEvent struct {
	Message string
}

func (ConnectingEvent) isStreamEvent()   {}
func (ConnectedEvent) isStreamEvent()    {}
func (DisconnectedEvent) isStreamEvent() {}
func (ToolCallEvent) isStreamEvent()     {}
func (CompleteEvent) isStreamEvent()     {}
func (ErrorEvent) isStreamEvent()        {}

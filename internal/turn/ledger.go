// ABOUTME: Bounded insertion-ordered registry of tool calls for one agent turn
// ABOUTME: Upsert merges by id; overflow evicts the oldest-inserted record first

package turn

// DefaultLedgerCapacity bounds how many tool call records one turn retains.
const DefaultLedgerCapacity = 1000

// ToolStatus is the lifecycle status of a single tool call.
type ToolStatus string

const (
	ToolPending   ToolStatus = "pending"
	ToolRunning   ToolStatus = "running"
	ToolCompleted ToolStatus = "completed"
	ToolError     ToolStatus = "error"
)

// Terminal reports whether the status is a final one.
func (s ToolStatus) Terminal() bool {
	return s == ToolCompleted || s == ToolError
}

// ToolCall is one tool execution reported on the push stream.
// Fields arrive incrementally across events sharing the same ID.
type ToolCall struct {
	ID          string
	Name        string
	Description string
	Status      ToolStatus
	Params      map[string]any
	Result      string
	Err         string
}

// Ledger is an insertion-ordered, capacity-bounded id→ToolCall registry.
// Order is held in an explicit ids slice; the map never determines it.
// Not goroutine-safe: the owning tracker serializes all access.
type Ledger struct {
	ids      []string
	byID     map[string]*ToolCall
	capacity int
}

// NewLedger creates a ledger with DefaultLedgerCapacity.
func NewLedger() *Ledger {
	return NewLedgerWithCapacity(DefaultLedgerCapacity)
}

// NewLedgerWithCapacity creates a ledger bounded to n records (n >= 1).
func NewLedgerWithCapacity(n int) *Ledger {
	if n < 1 {
		n = 1
	}
	return &Ledger{
		byID:     make(map[string]*ToolCall, min(n, 64)),
		capacity: n,
	}
}

// Upsert inserts call or merges it into the existing record with the same ID.
// Merging keeps fields the incoming call leaves unspecified (zero-valued).
// Inserting past capacity evicts the oldest-inserted record first.
func (l *Ledger) Upsert(call ToolCall) {
	if call.ID == "" {
		return
	}

	if existing, ok := l.byID[call.ID]; ok {
		mergeCall(existing, call)
		return
	}

	if len(l.ids) >= l.capacity {
		oldest := l.ids[0]
		l.ids = l.ids[1:]
		delete(l.byID, oldest)
	}

	stored := call
	if stored.Params != nil {
		stored.Params = copyParams(stored.Params)
	}
	l.ids = append(l.ids, stored.ID)
	l.byID[stored.ID] = &stored
}

// mergeCall applies the specified fields of in onto dst.
func mergeCall(dst *ToolCall, in ToolCall) {
	if in.Name != "" {
		dst.Name = in.Name
	}
	if in.Description != "" {
		dst.Description = in.Description
	}
	if in.Status != "" {
		dst.Status = in.Status
	}
	if in.Result != "" {
		dst.Result = in.Result
	}
	if in.Err != "" {
		dst.Err = in.Err
	}
	if len(in.Params) > 0 {
		if dst.Params == nil {
			dst.Params = make(map[string]any, len(in.Params))
		}
		for k, v := range in.Params {
			dst.Params[k] = v
		}
	}
}

// Get returns a copy of the record for id.
func (l *Ledger) Get(id string) (ToolCall, bool) {
	rec, ok := l.byID[id]
	if !ok {
		return ToolCall{}, false
	}
	out := *rec
	out.Params = copyParams(rec.Params)
	return out, true
}

// Snapshot returns copies of all records in insertion order.
func (l *Ledger) Snapshot() []ToolCall {
	out := make([]ToolCall, 0, len(l.ids))
	for _, id := range l.ids {
		rec := *l.byID[id]
		rec.Params = copyParams(rec.Params)
		out = append(out, rec)
	}
	return out
}

// Active reports whether any record is in a non-terminal status.
func (l *Ledger) Active() bool {
	for _, id := range l.ids {
		if !l.byID[id].Status.Terminal() {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// Clear empties the ledger. Called at the start of each turn and on
// session switch.
func (l *Ledger) Clear() {
	l.ids = l.ids[:0]
	clear(l.byID)
}

func copyParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

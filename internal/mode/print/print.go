// ABOUTME: Headless print mode with text, JSON, and stream-JSON formatters
// ABOUTME: Sends one prompt, follows the turn to its terminal state, exits

package print

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/easelhq/easel/internal/turn"
)

// Config configures a headless run.
type Config struct {
	OutputFormat string        // "text" (default), "json", "stream-json"
	SessionID    string        // session to open
	Timeout      time.Duration // 0 = no deadline
}

// Deps provides dependencies for print mode.
type Deps struct {
	Engine *turn.Engine
}

// ErrTurnFailed is returned when the turn ends in an error state; the
// caller maps it to a nonzero exit.
var ErrTurnFailed = errors.New("print: turn failed")

// Run opens the session, sends prompt, and streams the turn's progress to
// stdout/stderr until it completes, errors, or ctx ends. An empty prompt
// reads stdin.
func Run(ctx context.Context, cfg Config, deps Deps, prompt string, stdout, stderr io.Writer) error {
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return errors.New("print: empty prompt")
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	f := newFormatter(cfg.OutputFormat, stdout, stderr)

	// Buffered so the synchronous tracker publish never blocks on us.
	snaps := make(chan turn.Snapshot, 256)
	unsub := deps.Engine.Tracker().Subscribe(func(snap turn.Snapshot) {
		select {
		case snaps <- snap:
		default:
		}
	})
	defer unsub()

	deps.Engine.Open(ctx, cfg.SessionID)

	f.start()
	defer f.end()

	sent := false
	toolSeen := make(map[string]turn.ToolStatus)

	for {
		select {
		case <-ctx.Done():
			f.err(ctx.Err())
			return ctx.Err()

		case snap := <-snaps:
			if !sent && snap.State.Connected {
				if err := deps.Engine.Send(ctx, prompt); err != nil {
					f.err(err)
					return err
				}
				sent = true
				continue
			}

			emitToolChanges(f, snap.Tools, toolSeen)

			if !sent {
				continue
			}
			switch {
			case snap.State.Completed:
				f.text(snap.State.FinalText)
				return nil
			case snap.State.Err != "":
				f.err(errors.New(snap.State.Err))
				return fmt.Errorf("%w: %s", ErrTurnFailed, snap.State.Err)
			}
		}
	}
}

// emitToolChanges reports new tool calls and terminal transitions exactly
// once each, in ledger order.
func emitToolChanges(f formatter, tools []turn.ToolCall, seen map[string]turn.ToolStatus) {
	for _, call := range tools {
		prev, known := seen[call.ID]
		if !known {
			f.toolStart(call)
		}
		if call.Status.Terminal() && (!known || !prev.Terminal()) {
			f.toolEnd(call)
		}
		seen[call.ID] = call.Status
	}
}

// formatter abstracts output formatting.
type formatter interface {
	start()
	text(s string)
	toolStart(call turn.ToolCall)
	toolEnd(call turn.ToolCall)
	err(e error)
	end()
}

func newFormatter(format string, stdout, stderr io.Writer) formatter {
	switch format {
	case "json":
		return &jsonFormatter{out: stdout}
	case "stream-json":
		return &streamJSONFormatter{out: stdout}
	default:
		return &textFormatter{out: stdout, errOut: stderr}
	}
}

// textFormatter writes the final answer to stdout and progress to stderr.
type textFormatter struct {
	out    io.Writer
	errOut io.Writer
}

func (f *textFormatter) start()        {}
func (f *textFormatter) text(s string) { fmt.Fprintln(f.out, s) }
func (f *textFormatter) toolStart(call turn.ToolCall) {
	fmt.Fprintf(f.errOut, "[tool: %s]\n", call.Name)
}
func (f *textFormatter) toolEnd(turn.ToolCall) {}
func (f *textFormatter) err(e error)           { fmt.Fprintf(f.errOut, "error: %v\n", e) }
func (f *textFormatter) end()                  {}

// jsonFormatter collects everything and writes a single object at the end.
type jsonFormatter struct {
	out       io.Writer
	textBuf   strings.Builder
	toolCalls []jsonToolCall
	errors    []string
}

type jsonToolCall struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type jsonOutput struct {
	Text      string         `json:"text"`
	ToolCalls []jsonToolCall `json:"toolCalls,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}

func (f *jsonFormatter) start()        {}
func (f *jsonFormatter) text(s string) { f.textBuf.WriteString(s) }
func (f *jsonFormatter) toolStart(call turn.ToolCall) {
	f.toolCalls = append(f.toolCalls, jsonToolCall{ID: call.ID, Name: call.Name})
}
func (f *jsonFormatter) toolEnd(call turn.ToolCall) {
	for i := range f.toolCalls {
		if f.toolCalls[i].ID == call.ID {
			f.toolCalls[i].Result = call.Result
			f.toolCalls[i].Error = call.Err
			return
		}
	}
}
func (f *jsonFormatter) err(e error) { f.errors = append(f.errors, e.Error()) }
func (f *jsonFormatter) end() {
	out := jsonOutput{
		Text:      f.textBuf.String(),
		ToolCalls: f.toolCalls,
		Errors:    f.errors,
	}
	data, _ := json.Marshal(out)
	fmt.Fprintln(f.out, string(data))
}

// streamJSONFormatter writes one JSON line per event.
type streamJSONFormatter struct {
	out io.Writer
}

type streamEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Tool  string `json:"tool,omitempty"`
	Error string `json:"error,omitempty"`
}

func (f *streamJSONFormatter) start() {
	f.write(streamEvent{Type: "start"})
}

func (f *streamJSONFormatter) text(s string) {
	f.write(streamEvent{Type: "text", Text: s})
}

func (f *streamJSONFormatter) toolStart(call turn.ToolCall) {
	f.write(streamEvent{Type: "tool_start", Tool: call.Name})
}

func (f *streamJSONFormatter) toolEnd(call turn.ToolCall) {
	evt := streamEvent{Type: "tool_end", Tool: call.Name, Text: call.Result}
	if call.Err != "" {
		evt.Error = call.Err
		evt.Text = ""
	}
	f.write(evt)
}

func (f *streamJSONFormatter) err(e error) {
	f.write(streamEvent{Type: "error", Error: e.Error()})
}

func (f *streamJSONFormatter) end() {
	f.write(streamEvent{Type: "end"})
}

func (f *streamJSONFormatter) write(evt streamEvent) {
	data, _ := json.Marshal(evt)
	fmt.Fprintln(f.out, string(data))
}

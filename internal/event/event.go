// Package event implements the Event Reader (C1): parsing one host event
// from standard input within a hard deadline.
//
// Grounded on hooks/tool/cmd-pre-use.go's argument-then-exit shape (parse,
// fail fast, never hang) and the teacher's graceful-degradation error
// style (wrapped errors naming what failed, never a bare panic).
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// Kind is the closed set of lifecycle moments the host may invoke the
// orchestrator for.
type Kind string

const (
	PreToolUse       Kind = "PreToolUse"
	PostToolUse      Kind = "PostToolUse"
	Stop             Kind = "Stop"
	UserPromptSubmit Kind = "UserPromptSubmit"
	Notification     Kind = "Notification"
	SubagentStop     Kind = "SubagentStop"
	PreCompact       Kind = "PreCompact"
	SessionStart     Kind = "SessionStart"
)

var validKinds = map[Kind]bool{
	PreToolUse: true, PostToolUse: true, Stop: true, UserPromptSubmit: true,
	Notification: true, SubagentStop: true, PreCompact: true, SessionStart: true,
}

// ErrInput is returned (wrapped) for any failure to produce a valid Event:
// read timeout, malformed JSON, or a missing/unknown event_kind.
var ErrInput = errors.New("input-error")

// Event is the tagged record described in spec.md §3. Event-conditional
// fields are left as zero values when the event kind does not carry them;
// Hook Selector is responsible for validating presence where it matters.
type Event struct {
	EventKind      Kind   `json:"hook_event_name"`
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`

	ToolName       string `json:"tool_name,omitempty"`
	Trigger        string `json:"trigger,omitempty"`
	Source         string `json:"source,omitempty"`
	StopHookActive bool   `json:"stop_hook_active,omitempty"`

	Message             string          `json:"message,omitempty"`
	Prompt              string          `json:"prompt,omitempty"`
	ToolInput           json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse        json.RawMessage `json:"tool_response,omitempty"`
	CustomInstructions  string          `json:"custom_instructions,omitempty"`
}

// MatchValue returns the single event-kind-specific value Hook Selector
// matches hooks against, per the table in spec.md §6. The second return is
// false for event kinds that carry no match field at all.
func (e Event) MatchValue() (string, bool) {
	switch e.EventKind {
	case PreToolUse, PostToolUse:
		return e.ToolName, true
	case PreCompact:
		return e.Trigger, true
	case SessionStart:
		return e.Source, true
	default:
		return "", false
	}
}

const DefaultDeadline = 5 * time.Second

// Read parses one JSON event object from r, failing with ErrInput if the
// read does not complete within deadline, the bytes are not valid JSON, or
// event_kind is missing/not in the closed enumeration.
func Read(r io.Reader, deadline time.Duration) (Event, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- result{data, err}
	}()

	select {
	case <-time.After(deadline):
		return Event{}, fmt.Errorf("%w: timed out after %s reading stdin", ErrInput, deadline)
	case res := <-done:
		if res.err != nil {
			return Event{}, fmt.Errorf("%w: reading stdin: %v", ErrInput, res.err)
		}
		return parse(res.data)
	}
}

func parse(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: malformed event JSON: %v", ErrInput, err)
	}
	if ev.EventKind == "" {
		return Event{}, fmt.Errorf("%w: missing hook_event_name", ErrInput)
	}
	if !validKinds[ev.EventKind] {
		return Event{}, fmt.Errorf("%w: unknown hook_event_name %q", ErrInput, ev.EventKind)
	}
	if ev.SessionID == "" {
		return Event{}, fmt.Errorf("%w: missing or empty session_id", ErrInput)
	}
	return ev, nil
}

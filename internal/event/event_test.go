package event_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cchooks/internal/event"
)

func TestReadValidPreToolUse(t *testing.T) {
	body := `{"hook_event_name":"PreToolUse","session_id":"abc","cwd":"/tmp","tool_name":"Bash","tool_input":{"command":"ls"}}`
	ev, err := event.Read(strings.NewReader(body), event.DefaultDeadline)
	require.NoError(t, err)
	assert.Equal(t, event.PreToolUse, ev.EventKind)
	assert.Equal(t, "abc", ev.SessionID)

	value, ok := ev.MatchValue()
	assert.True(t, ok)
	assert.Equal(t, "Bash", value)
}

func TestReadMissingEventKind(t *testing.T) {
	_, err := event.Read(strings.NewReader(`{"session_id":"abc"}`), event.DefaultDeadline)
	require.Error(t, err)
	assert.ErrorIs(t, err, event.ErrInput)
}

func TestReadUnknownEventKind(t *testing.T) {
	_, err := event.Read(strings.NewReader(`{"hook_event_name":"Nonsense","session_id":"abc"}`), event.DefaultDeadline)
	require.Error(t, err)
	assert.ErrorIs(t, err, event.ErrInput)
}

func TestReadMissingSessionID(t *testing.T) {
	_, err := event.Read(strings.NewReader(`{"hook_event_name":"Notification"}`), event.DefaultDeadline)
	require.Error(t, err)
}

func TestReadMalformedJSON(t *testing.T) {
	_, err := event.Read(strings.NewReader(`{not json`), event.DefaultDeadline)
	require.Error(t, err)
	assert.ErrorIs(t, err, event.ErrInput)
}

func TestReadTimesOutOnSlowStdin(t *testing.T) {
	r, w := newSlowPipe(t)
	defer w.Close()

	_, err := event.Read(r, 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, event.ErrInput)
}

func TestMatchValueByKind(t *testing.T) {
	cases := []struct {
		kind      event.Kind
		wantOK    bool
	}{
		{event.PreToolUse, true},
		{event.PostToolUse, true},
		{event.PreCompact, true},
		{event.SessionStart, true},
		{event.UserPromptSubmit, false},
		{event.Notification, false},
		{event.Stop, false},
		{event.SubagentStop, false},
	}
	for _, tc := range cases {
		ev := event.Event{EventKind: tc.kind}
		_, ok := ev.MatchValue()
		assert.Equal(t, tc.wantOK, ok, "kind=%s", tc.kind)
	}
}

package aggregate_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cchooks/internal/aggregate"
	"cchooks/internal/config"
	"cchooks/internal/event"
	"cchooks/internal/mapper"
	"cchooks/internal/verdict"
)

func result(name string, priority int, v verdict.Verdict, msg string) mapper.Result {
	return mapper.Result{Hook: &config.HookDefinition{Name: name, ResolvedPriority: priority}, Verdict: v, Message: msg}
}

func TestPickWorstSeverityWins(t *testing.T) {
	results := []mapper.Result{
		result("a", 100, verdict.Success, ""),
		result("b", 50, verdict.BlockingError, "blocked"),
		result("c", 10, verdict.NonBlockingError, "warn"),
	}
	win := aggregate.Pick(results)
	assert.Equal(t, "b", win.Hook.Name)
}

func TestPickTiesBrokenByAscendingPriority(t *testing.T) {
	results := []mapper.Result{
		result("low-priority-number", 5, verdict.BlockingError, "first"),
		result("high-priority-number", 50, verdict.BlockingError, "second"),
	}
	win := aggregate.Pick(results)
	assert.Equal(t, "low-priority-number", win.Hook.Name)
}

func TestEmitBlockingError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	res := mapper.Result{
		Hook: &config.HookDefinition{Name: "h"}, Verdict: verdict.BlockingError,
		Message: "bad thing", FixInstructions: "run fix",
	}
	code := aggregate.Emit(&stdout, &stderr, res, event.Event{})
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "bad thing")
	assert.Contains(t, stderr.String(), "run fix")
	assert.Empty(t, stdout.String())
}

func TestEmitNonBlockingError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	res := mapper.Result{Hook: &config.HookDefinition{Name: "h"}, Verdict: verdict.NonBlockingError, Message: "heads up"}
	code := aggregate.Emit(&stdout, &stderr, res, event.Event{})
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr.String(), "heads up")
}

func TestEmitSuccessRawStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	res := mapper.Result{Hook: &config.HookDefinition{Name: "h"}, Verdict: verdict.Success, RawStdout: []byte("plain output")}
	code := aggregate.Emit(&stdout, &stderr, res, event.Event{EventKind: event.Notification})
	assert.Equal(t, 0, code)
	assert.Equal(t, "plain output", stdout.String())
}

func TestEmitSuccessWrapsPreToolUsePermissionDecision(t *testing.T) {
	var stdout, stderr bytes.Buffer
	res := mapper.Result{
		Hook: &config.HookDefinition{Name: "h"}, Verdict: verdict.Success,
		Parsed: map[string]any{"permissionDecision": "allow", "permissionDecisionReason": "looks fine"},
	}
	code := aggregate.Emit(&stdout, &stderr, res, event.Event{EventKind: event.PreToolUse})
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "hookSpecificOutput")
	assert.Contains(t, stdout.String(), "PreToolUse")
	assert.Contains(t, stdout.String(), "allow")
}

func TestEmitSuccessWrapsUserPromptSubmitAdditionalContext(t *testing.T) {
	var stdout, stderr bytes.Buffer
	res := mapper.Result{
		Hook: &config.HookDefinition{Name: "h"}, Verdict: verdict.Success,
		Parsed: map[string]any{"additionalContext": "extra info"},
	}
	code := aggregate.Emit(&stdout, &stderr, res, event.Event{EventKind: event.UserPromptSubmit})
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "additionalContext")
	assert.Contains(t, stdout.String(), "extra info")
}

func TestEmitSuccessParsedWithoutWrapperFieldsFallsBackToRaw(t *testing.T) {
	var stdout, stderr bytes.Buffer
	res := mapper.Result{
		Hook: &config.HookDefinition{Name: "h"}, Verdict: verdict.Success,
		Parsed: map[string]any{"something": "else"}, RawStdout: []byte(`{"something":"else"}`),
	}
	code := aggregate.Emit(&stdout, &stderr, res, event.Event{EventKind: event.Notification})
	assert.Equal(t, 0, code)
	assert.Equal(t, `{"something":"else"}`, stdout.String())
}

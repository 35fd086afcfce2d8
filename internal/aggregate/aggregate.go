// Package aggregate implements the Aggregator & Emitter (C8): picking the
// winning MappedResult across all hooks and writing the host-facing
// response (stdout, stderr, exit code).
package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"cchooks/internal/event"
	"cchooks/internal/mapper"
	"cchooks/internal/verdict"
)

// Pick selects the winning result by verdict severity, then ascending hook
// priority, then insertion order (spec.md §4.8/§5). results must be
// non-empty; callers short-circuit the empty case themselves (C10).
func Pick(results []mapper.Result) mapper.Result {
	sorted := make([]mapper.Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := verdict.Severity(sorted[i].Verdict), verdict.Severity(sorted[j].Verdict)
		if si != sj {
			return si < sj
		}
		return sorted[i].Hook.ResolvedPriority < sorted[j].Hook.ResolvedPriority
	})

	return sorted[0]
}

// Emit writes the winning result's host-facing response to stdout/stderr
// and returns the process exit code, per the emission contract in spec.md
// §4.8. ev carries the event kind needed to apply the §6 wrapping rules.
func Emit(stdout, stderr io.Writer, win mapper.Result, ev event.Event) int {
	switch win.Verdict {
	case verdict.BlockingError:
		fmt.Fprint(stderr, win.Message)
		if win.FixInstructions != "" {
			fmt.Fprintf(stderr, "\n%s", win.FixInstructions)
		}
		return 2

	case verdict.NonBlockingError:
		fmt.Fprint(stderr, win.Message)
		return 0

	default: // verdict.Success
		emitSuccess(stdout, win, ev)
		return 0
	}
}

// emitSuccess implements spec.md §4.8's success path, including the §6
// structured-output wrapping for PreToolUse/UserPromptSubmit/SessionStart.
func emitSuccess(stdout io.Writer, win mapper.Result, ev event.Event) {
	if win.Parsed == nil {
		if len(win.RawStdout) > 0 {
			stdout.Write(win.RawStdout)
		}
		return
	}

	wrapped, ok := wrap(win.Parsed, ev.EventKind)
	if !ok {
		stdout.Write(win.RawStdout)
		return
	}

	out, err := json.Marshal(wrapped)
	if err != nil {
		stdout.Write(win.RawStdout)
		return
	}
	stdout.Write(out)
}

// wrap applies the event-specific wrapper field rules from spec.md §6. It
// reports false when parsed carries none of the wrapper-triggering fields,
// in which case the caller falls back to emitting raw bytes verbatim.
func wrap(parsed map[string]any, kind event.Kind) (map[string]any, bool) {
	out := make(map[string]any, len(parsed))
	for k, v := range parsed {
		switch k {
		case "permissionDecision", "permissionDecisionReason", "additionalContext", "decision", "reason":
			continue // consumed below, or deprecated and dropped
		default:
			out[k] = v
		}
	}

	switch kind {
	case event.PreToolUse:
		if pd, ok := parsed["permissionDecision"]; ok {
			hso := map[string]any{"hookEventName": string(event.PreToolUse), "permissionDecision": pd}
			if reason, ok := parsed["permissionDecisionReason"]; ok {
				hso["permissionDecisionReason"] = reason
			}
			out["hookSpecificOutput"] = hso
			return out, true
		}

	case event.UserPromptSubmit, event.SessionStart:
		if ac, ok := parsed["additionalContext"]; ok {
			hso := map[string]any{"hookEventName": string(kind), "additionalContext": ac}
			out["hookSpecificOutput"] = hso
			return out, true
		}
	}

	return nil, false
}

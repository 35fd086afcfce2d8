package config

import (
	"encoding/json"
	"fmt"

	"cchooks/internal/event"
)

// validate enforces every load-time invariant in spec.md §3 for a single
// file's hooks, naming the offending file and JSON field path on failure.
// Rejection is all-or-nothing: no hook from a malformed file may run.
func validate(path string, hooks []*HookDefinition) error {
	seen := make(map[string]bool, len(hooks))

	for i, h := range hooks {
		field := func(suffix string) string { return fmt.Sprintf("hooks[%d]%s", i, suffix) }

		if h == nil {
			return fmt.Errorf("%s: %s: must be an object, not null", path, field(""))
		}
		if h.Name == "" {
			return fmt.Errorf("%s: %s: name must not be empty", path, field(""))
		}
		if seen[h.Name] {
			return fmt.Errorf("%s: %s: duplicate hook name %q", path, field(".name"), h.Name)
		}
		seen[h.Name] = true

		if len(h.Command) == 0 {
			return fmt.Errorf("%s: %s: command must be a non-empty array", path, field(".command"))
		}

		if len(h.Events) == 0 {
			return fmt.Errorf("%s: %s: events must be a non-empty array", path, field(".events"))
		}
		for j, k := range h.Events {
			if !validKind(k) {
				return fmt.Errorf("%s: %s: unknown event kind %q", path, field(fmt.Sprintf(".events[%d]", j)), k)
			}
		}

		if h.Priority != nil && *h.Priority < 0 {
			return fmt.Errorf("%s: %s: priority must be non-negative", path, field(".priority"))
		}
		if h.TimeoutSeconds != nil && *h.TimeoutSeconds <= 0 {
			return fmt.Errorf("%s: %s: timeout_seconds must be positive", path, field(".timeout_seconds"))
		}

		switch h.OutputFormat {
		case FormatText:
			for code, v := range h.ExitCodeMap {
				if !validExitVerdict(v) {
					return fmt.Errorf("%s: %s: unknown verdict %q", path, field(fmt.Sprintf(".exit_code_map[%q]", code)), v)
				}
			}
		case FormatStructured:
			// No extra fields to validate.
		case "":
			return fmt.Errorf("%s: %s: output_format must be %q or %q", path, field(".output_format"), FormatText, FormatStructured)
		default:
			return fmt.Errorf("%s: %s: unknown output_format %q", path, field(".output_format"), h.OutputFormat)
		}

		applyDefaults(h)
	}

	return nil
}

// applyDefaults fills in priority/timeout defaults and pre-computes the
// event-kind membership set, per spec.md §4.2's "default if absent" rule.
func applyDefaults(h *HookDefinition) {
	h.ResolvedPriority = DefaultPriority
	if h.Priority != nil {
		h.ResolvedPriority = *h.Priority
	}

	timeoutSeconds := DefaultTimeoutSeconds
	if h.TimeoutSeconds != nil {
		timeoutSeconds = *h.TimeoutSeconds
	}
	h.TimeoutMS = timeoutSeconds * 1000

	h.eventSet = make(map[event.Kind]bool, len(h.Events))
	for _, k := range h.Events {
		h.eventSet[k] = true
	}
}

func validKind(k event.Kind) bool {
	switch k {
	case event.PreToolUse, event.PostToolUse, event.Stop, event.UserPromptSubmit,
		event.Notification, event.SubagentStop, event.PreCompact, event.SessionStart:
		return true
	default:
		return false
	}
}

func validExitVerdict(v ExitVerdict) bool {
	switch v {
	case VerdictSuccess, VerdictNonBlockingError, VerdictBlockingError:
		return true
	default:
		return false
	}
}

// validateLimits rejects a negative max_output_bytes, if present. Zero/absent
// means "use the Hook Runner's built-in default".
func validateLimits(path string, raw json.RawMessage) (Limits, error) {
	if len(raw) == 0 {
		return Limits{}, nil
	}
	var l Limits
	if err := json.Unmarshal(raw, &l); err != nil {
		return Limits{}, fmt.Errorf("%s: limits: %w", path, err)
	}
	if l.MaxOutputBytes < 0 {
		return Limits{}, fmt.Errorf("%s: limits.max_output_bytes: must be non-negative", path)
	}
	return l, nil
}

// validateLogging rejects an unknown logging.level, if present.
func validateLogging(path string, raw json.RawMessage) (Logging, error) {
	if len(raw) == 0 {
		return Logging{}, nil
	}
	var l Logging
	if err := json.Unmarshal(raw, &l); err != nil {
		return Logging{}, fmt.Errorf("%s: logging: %w", path, err)
	}
	switch l.Level {
	case "", LoggingOff, LoggingErrors, LoggingVerbose:
		return l, nil
	default:
		return Logging{}, fmt.Errorf("%s: logging.level: unknown level %q", path, l.Level)
	}
}

// Package selector implements the Hook Selector (C3): filtering hooks by
// event kind and per-event match value, ordered by priority.
package selector

import (
	"regexp"
	"sort"
	"strings"

	"cchooks/internal/config"
	"cchooks/internal/event"
)

// Select returns the hooks eligible for ev, ordered ascending by priority
// with ties broken by stable (insertion) order, per spec.md §4.3.
func Select(cfg config.Config, ev event.Event) []*config.HookDefinition {
	matchValue, hasMatch := ev.MatchValue()

	eligible := make([]*config.HookDefinition, 0, len(cfg.Hooks))
	for _, h := range cfg.Hooks {
		if !h.HasEvent(ev.EventKind) {
			continue
		}
		if matches(h.Matcher, matchValue, hasMatch, ev.EventKind) {
			eligible = append(eligible, h)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].ResolvedPriority < eligible[j].ResolvedPriority
	})
	return eligible
}

// matches implements the matcher semantics of spec.md §4.3.
func matches(matcher, value string, hasMatch bool, kind event.Kind) bool {
	if matcher == "" || matcher == "*" {
		return true
	}
	if !hasMatch {
		// Event kinds with no match field: only the universal matchers above apply.
		return false
	}

	switch kind {
	case event.PreToolUse, event.PostToolUse:
		return matchesRegex(matcher, value)
	default: // PreCompact (trigger), SessionStart (source): literal equality only
		return matcher == value
	}
}

// matchesRegex interprets matcher as a regular expression, anchoring it to
// an exact match when it contains neither ^ nor $. If compilation fails it
// falls back to literal string equality — the matcher-safety invariant in
// spec.md §8 ("invalid regex patterns never throw").
func matchesRegex(matcher, toolName string) bool {
	pattern := matcher
	if !strings.ContainsAny(matcher, "^$") {
		pattern = "^(?:" + matcher + ")$"
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return matcher == toolName
	}
	return re.MatchString(toolName)
}

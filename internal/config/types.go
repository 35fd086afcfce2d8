// Package config implements the Config Resolver (C2): locating, loading,
// validating, and merging up to three layered configuration files.
//
// Grounded on the teacher's layered-config libraries (system/runtime/lib/config
// loads user/instance/project layers with last-writer-wins merge) and on
// hooks/lib's HookDefinition-shaped JSON used throughout hooks/*.
package config

import (
	"encoding/json"

	"cchooks/internal/event"
)

// OutputFormat discriminates the two hook output contracts (spec.md §3).
type OutputFormat string

const (
	FormatText       OutputFormat = "text"
	FormatStructured OutputFormat = "structured"
)

// ExitVerdict is the verdict string as written in a text hook's
// exit_code_map. It reuses the same three values as verdict.Verdict but is
// kept as a distinct string type at the config boundary so load-time
// validation can reject unknown strings with a precise field path.
type ExitVerdict string

const (
	VerdictSuccess          ExitVerdict = "success"
	VerdictNonBlockingError ExitVerdict = "non-blocking-error"
	VerdictBlockingError    ExitVerdict = "blocking-error"
)

// HookDefinition is one user-declared hook (spec.md §3).
//
// Priority and TimeoutSeconds are pointers at the JSON boundary so an
// explicit 0 (highest priority) is distinguishable from "absent" (apply the
// default) — a plain int would conflate the two after unmarshal.
type HookDefinition struct {
	Name            string       `json:"name"`
	Command         []string     `json:"command"`
	Events          []event.Kind `json:"events"`
	Matcher         string       `json:"matcher,omitempty"`
	Priority        *int         `json:"priority,omitempty"`
	TimeoutSeconds  *int         `json:"timeout_seconds,omitempty"`
	Description     string       `json:"description,omitempty"`
	OutputFormat    OutputFormat `json:"output_format"`

	// Text-format-only fields.
	ExitCodeMap     map[string]ExitVerdict `json:"exit_code_map,omitempty"`
	Message         string                 `json:"message,omitempty"`
	FixInstructions string                 `json:"fix_instructions,omitempty"`

	// Resolved values, computed once by applyDefaults at load time so Hook
	// Selector, Hook Runner, and the Aggregator never re-derive them.
	ResolvedPriority int                 `json:"-"`
	TimeoutMS        int                 `json:"-"`
	eventSet         map[event.Kind]bool `json:"-"`
}

// DefaultPriority is applied when a hook declares no priority.
const DefaultPriority = 100

// DefaultTimeoutSeconds is applied when a hook declares no timeout.
const DefaultTimeoutSeconds = 60

// HasEvent reports whether this hook declares interest in kind.
func (h *HookDefinition) HasEvent(kind event.Kind) bool {
	return h.eventSet[kind]
}

// LoggingLevel is the on-disk logging.level enumeration.
type LoggingLevel string

const (
	LoggingOff     LoggingLevel = "off"
	LoggingErrors  LoggingLevel = "errors"
	LoggingVerbose LoggingLevel = "verbose"
)

// Logging is the top-level logging settings block.
type Logging struct {
	Level LoggingLevel `json:"level,omitempty"`
	Path  string        `json:"path,omitempty"`
}

// Limits is the top-level resource-limit settings block (spec.md §4.6):
// `{ "limits": { "max_output_bytes": N } }`.
type Limits struct {
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`
}

// Config is the merged, validated configuration for one invocation.
type Config struct {
	Logging Logging
	Limits  Limits
	Hooks   []*HookDefinition
}

// fileConfig is the raw on-disk shape of a single configuration file
// (spec.md §6): { "logging": {...}, "limits": {...}, "hooks": [...] }.
type fileConfig struct {
	Logging json.RawMessage   `json:"logging"`
	Limits  json.RawMessage   `json:"limits"`
	Hooks   []*HookDefinition `json:"hooks"`
}

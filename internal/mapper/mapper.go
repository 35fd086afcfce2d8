// Package mapper implements the Result Mapper (C7): turning one hook's raw
// HookRunOutcome into a flow-control Verdict, under one of two contracts.
package mapper

import (
	"encoding/json"
	"fmt"

	"cchooks/internal/config"
	"cchooks/internal/runner"
	"cchooks/internal/verdict"
)

// Result is MappedResult from spec.md §3.
type Result struct {
	Hook        *config.HookDefinition
	Verdict     verdict.Verdict
	Message     string
	FixInstructions string
	RawStdout   []byte
	Parsed      map[string]any // structured hooks only, nil if stdout didn't parse as a JSON object
	Diagnostics *DiagnosticReport
}

// DiagnosticReport is the optional structured payload shape described in
// spec.md §4.7.
type DiagnosticReport struct {
	Success     bool `json:"success"`
	Findings    []Finding `json:"findings"`
	ControlFlow *ControlFlow `json:"controlFlow,omitempty"`
}

type Finding struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type ControlFlow struct {
	Continue *bool  `json:"continue,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Decision string `json:"decision,omitempty"`
}

// Map dispatches to the text or structured contract based on h.OutputFormat.
func Map(h *config.HookDefinition, o runner.Outcome) Result {
	if h.OutputFormat == config.FormatStructured {
		return mapStructured(h, o)
	}
	return mapText(h, o)
}

// mapText implements spec.md §4.7's text contract.
func mapText(h *config.HookDefinition, o runner.Outcome) Result {
	res := Result{Hook: h, RawStdout: o.Stdout}

	key := "default"
	if o.ExitCode != nil {
		key = fmt.Sprintf("%d", *o.ExitCode)
	}

	v, ok := h.ExitCodeMap[key]
	if !ok {
		v, ok = h.ExitCodeMap["default"]
	}
	if ok {
		res.Verdict = toVerdict(v)
	} else {
		res.Verdict = conventionalVerdict(o.ExitCode)
	}

	res.Message = h.Message
	res.Message = appendQualifiers(res.Message, o)
	res.FixInstructions = h.FixInstructions
	return res
}

// mapStructured implements spec.md §4.7's structured contract.
func mapStructured(h *config.HookDefinition, o runner.Outcome) Result {
	res := Result{Hook: h, RawStdout: o.Stdout, Verdict: conventionalVerdict(o.ExitCode)}

	if len(o.Stdout) == 0 {
		res.Message = appendQualifiers("", o)
		return res
	}

	var parsed map[string]any
	if err := json.Unmarshal(o.Stdout, &parsed); err != nil {
		// Parse failure is not itself an error: verdict stays exit-code-derived.
		res.Message = appendQualifiers("", o)
		return res
	}
	res.Parsed = parsed

	if decision, ok := parsed["decision"].(string); ok {
		switch decision {
		case "block":
			res.Verdict = verdict.BlockingError
			res.Message = firstNonEmptyString(parsed["reason"], parsed["message"])
		case "non-blocking-error":
			res.Verdict = verdict.NonBlockingError
		}
	}

	if cont, ok := parsed["continue"].(bool); ok && !cont {
		res.Verdict = verdict.BlockingError
		if reason, ok := parsed["stopReason"].(string); ok {
			res.Message = reason
		}
	}

	if diag, ok := asDiagnosticReport(parsed); ok {
		res.Diagnostics = diag
		// Strengthen-only: this rule may only push the verdict further toward
		// blocking-error, never relax one an earlier rule already set.
		if diag.ControlFlow != nil && diag.ControlFlow.Decision == "block" {
			res.Verdict = verdict.BlockingError
		} else if !diag.Success && res.Verdict == verdict.Success {
			res.Verdict = verdict.NonBlockingError
		}
	}

	res.Message = appendQualifiers(res.Message, o)
	return res
}

// asDiagnosticReport reports whether parsed structurally matches a
// DiagnosticReport (spec.md §4.7): a "success" boolean and a "findings"
// array of {file, line, message, severity}.
func asDiagnosticReport(parsed map[string]any) (*DiagnosticReport, bool) {
	successRaw, hasSuccess := parsed["success"]
	findingsRaw, hasFindings := parsed["findings"]
	if !hasSuccess || !hasFindings {
		return nil, false
	}
	success, ok := successRaw.(bool)
	if !ok {
		return nil, false
	}
	findingsList, ok := findingsRaw.([]any)
	if !ok {
		return nil, false
	}

	report := &DiagnosticReport{Success: success}
	for _, raw := range findingsList {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		file, _ := m["file"].(string)
		msg, _ := m["message"].(string)
		severity, _ := m["severity"].(string)
		if severity != "error" && severity != "warning" {
			return nil, false
		}
		line := 0
		if f, ok := m["line"].(float64); ok {
			line = int(f)
		}
		report.Findings = append(report.Findings, Finding{File: file, Line: line, Message: msg, Severity: severity})
	}

	if cfRaw, ok := parsed["controlFlow"].(map[string]any); ok {
		cf := &ControlFlow{}
		if c, ok := cfRaw["continue"].(bool); ok {
			cf.Continue = &c
		}
		cf.Reason, _ = cfRaw["reason"].(string)
		cf.Decision, _ = cfRaw["decision"].(string)
		report.ControlFlow = cf
	}

	return report, true
}

// conventionalVerdict applies the exit-code convention shared by both
// contracts: 0 -> success, 2 -> blocking-error, anything else -> non-blocking-error.
func conventionalVerdict(exitCode *int) verdict.Verdict {
	switch {
	case exitCode == nil:
		return verdict.NonBlockingError
	case *exitCode == 0:
		return verdict.Success
	case *exitCode == 2:
		return verdict.BlockingError
	default:
		return verdict.NonBlockingError
	}
}

func toVerdict(v config.ExitVerdict) verdict.Verdict {
	switch v {
	case config.VerdictSuccess:
		return verdict.Success
	case config.VerdictBlockingError:
		return verdict.BlockingError
	default:
		return verdict.NonBlockingError
	}
}

// appendQualifiers appends timeout/truncation notes to a message, per
// spec.md §4.7 ("appended qualifiers on timeout/truncation").
func appendQualifiers(msg string, o runner.Outcome) string {
	if o.TimedOut {
		msg = joinNote(msg, "hook timed out")
	}
	if o.Truncated {
		msg = joinNote(msg, "output truncated")
	}
	return msg
}

func joinNote(msg, note string) string {
	if msg == "" {
		return "(" + note + ")"
	}
	return msg + " (" + note + ")"
}

func firstNonEmptyString(vals ...any) string {
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

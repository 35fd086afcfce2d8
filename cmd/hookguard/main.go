// Command hookguard is a structured PreToolUse fixture hook adapted from
// the teacher's interactive dangerous-bash confirmation (detection.go's
// fallback pattern table), repurposed into a non-interactive structured
// verdict: this engine's hooks cannot prompt a TTY, so detection here
// blocks outright rather than asking for confirmation.
package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"cchooks/internal/event"
)

// dangerousPatterns is the five highest-signal entries from the teacher's
// fallbackDangerousPatterns (hooks/lib/safety/detection.go).
var dangerousPatterns = []string{
	"git push --force",
	"git reset --hard",
	"rm -rf",
	"sudo",
	"DROP DATABASE",
}

func main() {
	data, _ := io.ReadAll(os.Stdin)
	var ev event.Event
	_ = json.Unmarshal(data, &ev)

	command := extractBashCommand(ev.ToolInput)

	var out map[string]any
	if command != "" && matchesAny(command, dangerousPatterns) {
		out = map[string]any{
			"decision": "block",
			"reason":   "hookguard: command matches a dangerous pattern: " + command,
			"success":  false,
			"findings": []map[string]any{
				{"file": "-", "line": 0, "message": "dangerous command pattern detected", "severity": "error"},
			},
		}
	} else {
		out = map[string]any{"success": true, "findings": []map[string]any{}}
	}

	json.NewEncoder(os.Stdout).Encode(out)
}

// extractBashCommand pulls tool_input.command out of a PreToolUse event's
// raw JSON, tolerating tool inputs that don't carry one.
func extractBashCommand(toolInput json.RawMessage) string {
	if len(toolInput) == 0 {
		return ""
	}
	var fields struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(toolInput, &fields); err != nil {
		return ""
	}
	return fields.Command
}

func matchesAny(cmd string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(cmd, p) {
			return true
		}
	}
	return false
}

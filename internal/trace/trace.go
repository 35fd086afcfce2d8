// Package trace is the --debug side-channel logger: a non-blocking stderr
// writer for orchestrator-internal diagnostics, separate from the
// host-facing stdout/stderr contract in spec.md §4.8.
//
// Grounded on system/runtime/lib/logging's graceful-degradation posture
// (every write failure warns and continues, never panics) and on
// system/runtime/lib/privacy's argument redaction, adapted here to keep
// hook command lines and file paths out of debug output by default.
package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Logger writes timestamped debug lines to an io.Writer when enabled, and
// is a silent no-op otherwise. The zero value is a disabled Logger.
type Logger struct {
	enabled bool
	out     io.Writer
}

// New returns a Logger that writes to stderr when enabled is true.
func New(enabled bool) *Logger {
	return &Logger{enabled: enabled, out: os.Stderr}
}

// Printf writes one debug line if enabled, prefixed with a wall-clock
// timestamp. Disabled Loggers do no formatting work at all.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || !l.enabled {
		return
	}
	fmt.Fprintf(l.out, "[%s] "+format+"\n", append([]any{time.Now().Format(time.RFC3339Nano)}, args...)...)
}

// Enabled reports whether debug output is active.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// RedactArgv renders a hook's command line for debug output, keeping only
// argv[0]'s base form and a count of the remaining arguments — the command
// a hook ran is useful for diagnosis, its arguments may carry secrets.
func RedactArgv(argv []string) string {
	if len(argv) == 0 {
		return "(empty)"
	}
	name := argv[0]
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if len(argv) == 1 {
		return name
	}
	return fmt.Sprintf("%s (+%d arg%s)", name, len(argv)-1, plural(len(argv)-1))
}

// RedactPath renders an absolute path for debug output as ".../" followed by
// its base name, matching privacy.SanitizePath's "reveal shape, not identity"
// rule. A path with no "/" is returned unchanged.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return ".../" + path[i+1:]
	}
	return path
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Package sessionlog implements the Session Logger & Retention (C9):
// appending one JSONL record per hook run and opportunistically trimming
// old session files.
//
// Grounded on the teacher's writeEntry (system/runtime/lib/logging/writing.go):
// non-blocking writes, every failure warns to stderr and the run continues.
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cchooks/internal/event"
	"cchooks/internal/mapper"
	"cchooks/internal/runner"
)

const (
	lockStaleAfter  = 60 * time.Minute
	retentionMaxAge = 7 * 24 * time.Hour
	retentionMaxBytes int64 = 500 * 1024 * 1024
)

// Entry is one JSONL record for a single hook's run within a session.
type Entry struct {
	Timestamp  time.Time     `json:"timestamp"`
	SessionID  string        `json:"session_id"`
	EventKind  event.Kind    `json:"event_kind"`
	HookName   string        `json:"hook_name"`
	FlowControl string       `json:"flow_control"`
	ExitCode   *int          `json:"exit_code,omitempty"`
	Signal     string        `json:"signal,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	TimedOut   bool          `json:"timed_out"`
	Truncated  bool          `json:"truncated"`
}

// Dir returns the session log directory under home.
func Dir(home string) string {
	return filepath.Join(home, ".claude", "logs", "cc-hooks", "sessions")
}

// Logger appends run records for one invocation's session.
type Logger struct {
	dir string
}

// New returns a Logger rooted at home (typically os.UserHomeDir()), using
// the default session directory.
func New(home string) *Logger {
	return &Logger{dir: Dir(home)}
}

// NewAt returns a Logger that writes directly to dir, overriding the
// default home-rooted location — spec.md §6's configurable `logging.path`.
func NewAt(dir string) *Logger {
	return &Logger{dir: dir}
}

// Append writes one JSONL record for a hook's outcome+mapping. Never fails
// the caller's run: any error is a stderr warning, not a returned error.
func (l *Logger) Append(sessionID string, kind event.Kind, res mapper.Result, o runner.Outcome) {
	dir := l.dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "sessionlog: creating %s: %v\n", dir, err)
		return
	}

	entry := Entry{
		Timestamp:   now(),
		SessionID:   sessionID,
		EventKind:   kind,
		HookName:    res.Hook.Name,
		FlowControl: string(res.Verdict),
		ExitCode:    o.ExitCode,
		Signal:      o.Signal,
		DurationMS:  o.DurationMS,
		TimedOut:    o.TimedOut,
		Truncated:   o.Truncated,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sessionlog: marshalling entry: %v\n", err)
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("session-%s.jsonl", sessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sessionlog: opening %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "sessionlog: writing %s: %v\n", path, err)
	}
}

// now is a seam so callers needing determinism can happen through a fixed
// clock in a higher-level test; Logger itself always uses wall time.
var now = time.Now

// Retain attempts opportunistic retention per spec.md §4.9: acquire the
// cleanup lock (exclusive create), skip silently on any race or staleness
// ambiguity, and on success delete session files older than 7 days, then
// oldest-first until the remaining total is under 500 MB. All errors are
// swallowed; this must never affect the run's outcome.
func (l *Logger) Retain() {
	dir := l.dir
	lockPath := filepath.Join(dir, ".cleanup.lock")

	if !acquireLock(lockPath) {
		return
	}
	defer os.Remove(lockPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type file struct {
		path  string
		size  int64
		mtime time.Time
	}
	var files []file
	var total int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(dir, e.Name()), info.Size(), info.ModTime()})
		total += info.Size()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })

	cutoff := now().Add(-retentionMaxAge)
	kept := files[:0]
	for _, f := range files {
		if f.mtime.Before(cutoff) {
			os.Remove(f.path)
			total -= f.size
			continue
		}
		kept = append(kept, f)
	}

	for _, f := range kept {
		if total <= retentionMaxBytes {
			break
		}
		os.Remove(f.path)
		total -= f.size
	}
}

// acquireLock creates lockPath exclusively. If it already exists and is
// older than lockStaleAfter, it is removed and acquisition retried once;
// losing that race is treated as "skip cleanup", not an error.
func acquireLock(lockPath string) bool {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		f.Close()
		return true
	}
	if !os.IsExist(err) {
		return false
	}

	info, statErr := os.Stat(lockPath)
	if statErr != nil || now().Sub(info.ModTime()) < lockStaleAfter {
		return false
	}
	if err := os.Remove(lockPath); err != nil {
		return false
	}

	f, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

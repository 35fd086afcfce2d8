// Package orchestrator wires the full pipeline for one invocation: Event
// Reader -> Loop Guard -> Config Resolver -> Hook Selector -> (parallel)
// Hook Runner -> Result Mapper -> Aggregator & Emitter, with the Session
// Logger consuming each Hook Runner output and the Shutdown Coordinator
// enlisted around the whole run.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"

	"cchooks/internal/aggregate"
	"cchooks/internal/config"
	"cchooks/internal/event"
	"cchooks/internal/mapper"
	"cchooks/internal/runner"
	"cchooks/internal/selector"
	"cchooks/internal/sessionlog"
	"cchooks/internal/supervisor"
	"cchooks/internal/trace"
	"cchooks/internal/verdict"
)

// Exit codes per spec.md §7's error taxonomy.
const (
	ExitSuccessOrNonBlocking = 0
	ExitBlocking             = 2
	ExitInternal             = 1
)

// Options configures one invocation of Run.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ConfigPath string // --config, replaces the default search entirely
	Debug      bool

	// MockEvent bypasses stdin entirely (test-only --event/--mock-data path).
	MockEvent *event.Event
}

// Run executes one full invocation and returns the process exit code.
// Callers are expected to call os.Exit(code) themselves after Run returns,
// so deferred cleanup inside Run has a chance to complete first.
func Run(ctx context.Context, opts Options) int {
	tr := trace.New(opts.Debug)

	ev, err := readEvent(opts)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "input error: %v\n", err)
		return ExitInternal
	}
	tr.Printf("event: kind=%s session=%s cwd=%s", ev.EventKind, ev.SessionID, trace.RedactPath(ev.CWD))

	if loopGuardTrips(ev) {
		tr.Printf("loop guard: stop_hook_active, short-circuiting")
		return ExitSuccessOrNonBlocking
	}

	home, _ := os.UserHomeDir()
	logger := sessionlog.New(home)

	cfg, found, err := config.Resolve(ev.CWD, opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "config error: %v\n", err)
		return ExitInternal
	}
	if !found || cfg.Empty() {
		tr.Printf("no configuration or zero hooks defined, short-circuiting")
		return ExitSuccessOrNonBlocking
	}

	defs := selector.Select(cfg, ev)
	if len(defs) == 0 {
		tr.Printf("selector: zero eligible hooks for this event, short-circuiting")
		return ExitSuccessOrNonBlocking
	}
	tr.Printf("selector: %d eligible hook(s)", len(defs))

	if cfg.Logging.Path != "" {
		logger = sessionlog.NewAt(cfg.Logging.Path)
	}
	logger.Retain()

	sup := supervisor.New()
	defer sup.Cleanup()
	go func() {
		<-ctx.Done()
		sup.Cleanup()
	}()

	var maxOutputBytes int64 = runner.DefaultMaxOutputBytes
	if cfg.Limits.MaxOutputBytes > 0 {
		maxOutputBytes = cfg.Limits.MaxOutputBytes
	}
	projectDir := runner.ResolveProjectDir(os.Getenv("CLAUDE_PROJECT_DIR"), ev.CWD)
	runOpts := runner.Options{MaxOutputBytes: maxOutputBytes, ProjectDir: projectDir}

	results := make([]mapper.Result, 0, len(defs))
	outcomes := runner.RunAll(ctx, sup, defs, ev, runOpts, func(o runner.Outcome) {
		tr.Printf("hook %s (%s): exit=%v signal=%s timed_out=%v truncated=%v duration_ms=%d",
			o.Hook.Name, trace.RedactArgv(o.Hook.Command), o.ExitCode, o.Signal, o.TimedOut, o.Truncated, o.DurationMS)
	})
	for i, o := range outcomes {
		res := mapper.Map(defs[i], o)
		results = append(results, res)
		if shouldLog(cfg.Logging.Level, res) {
			logger.Append(ev.SessionID, ev.EventKind, res, o)
		}
	}

	winner := aggregate.Pick(results)
	tr.Printf("winner: hook=%s verdict=%s", winner.Hook.Name, winner.Verdict)

	return aggregate.Emit(opts.Stdout, opts.Stderr, winner, ev)
}

// readEvent sources the Event either from opts.MockEvent (the test-only
// --event/--mock-data path, spec.md §6) or by reading stdin.
func readEvent(opts Options) (event.Event, error) {
	if opts.MockEvent != nil {
		return *opts.MockEvent, nil
	}
	return event.Read(opts.Stdin, event.DefaultDeadline)
}

// loopGuardTrips implements the Loop Guard (C10): a stop-kind event with
// stop_hook_active set means a stop hook already ran and triggered this
// invocation, so hooks must not run again.
func loopGuardTrips(ev event.Event) bool {
	return (ev.EventKind == event.Stop || ev.EventKind == event.SubagentStop) && ev.StopHookActive
}

// shouldLog applies the configured logging.level (spec.md §6) to one
// mapped result: "off" suppresses the session log entirely, "errors" keeps
// only non-success outcomes, and "verbose" (or an absent level, the
// default) keeps everything.
func shouldLog(level config.LoggingLevel, res mapper.Result) bool {
	switch level {
	case config.LoggingOff:
		return false
	case config.LoggingErrors:
		return res.Verdict != verdict.Success
	default: // LoggingVerbose or unset
		return true
	}
}

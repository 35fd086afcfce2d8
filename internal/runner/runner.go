// Package runner implements the Hook Runner (C6): for a single hook, spawn
// + feed stdin + apply timeout + collect output, yielding a HookRunOutcome.
//
// Grounded on spec.md §4.6/§5 and on the teacher's conservative failure
// posture (hooks/tool/cmd-pre-use.go: never let one path's error propagate
// beyond its own decision). Parallel fan-out uses golang.org/x/sync/errgroup
// (domain stack; grounded on bassosimone/nop's golang.org/x/sync usage) so
// every eligible hook's goroutine starts immediately and a panic recovered
// inside one hook's goroutine never cancels its siblings.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cchooks/internal/config"
	"cchooks/internal/event"
	"cchooks/internal/stream"
	"cchooks/internal/supervisor"
)

// DefaultMaxOutputBytes is limits.max_output_bytes' default (spec.md §4.6).
const DefaultMaxOutputBytes = 1 << 20 // 1 MiB

// Outcome is HookRunOutcome from spec.md §3.
type Outcome struct {
	Hook      *config.HookDefinition
	ExitCode  *int
	Signal    string
	Stdout    []byte
	Stderr    []byte
	DurationMS int64
	TimedOut  bool
	Truncated bool
}

// Options configures the whole batch of runs for one invocation.
type Options struct {
	MaxOutputBytes int64
	ProjectDir     string
}

// RunAll runs every hook in defs in parallel against ev and returns one
// Outcome per hook, in the same order as defs. No hook's failure — spawn
// error, timeout, internal panic — can prevent a sibling's Outcome from
// being collected (spec.md §5: "no inter-hook cancellation").
func RunAll(ctx context.Context, sup *supervisor.Supervisor, defs []*config.HookDefinition, ev event.Event, opts Options, onOutcome func(Outcome)) []Outcome {
	outcomes := make([]Outcome, len(defs))

	var g errgroup.Group
	g.SetLimit(-1) // unbounded — spec.md §5: no pool, no admission control

	for i, h := range defs {
		i, h := i, h
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = Outcome{Hook: h, Stderr: []byte(fmt.Sprintf("hook runner panic: %v", r))}
				}
			}()
			outcomes[i] = run(sup, h, ev, opts)
			if onOutcome != nil {
				onOutcome(outcomes[i])
			}
			return nil
		})
	}
	_ = g.Wait() // errors are never returned; every goroutine recovers its own failure into an Outcome

	return outcomes
}

// run executes a single hook end-to-end per spec.md §4.6's six steps.
func run(sup *supervisor.Supervisor, h *config.HookDefinition, ev event.Event, opts Options) (outcome Outcome) {
	outcome.Hook = h
	start := time.Now()
	defer func() {
		outcome.DurationMS = time.Since(start).Milliseconds()
	}()

	payload, err := json.Marshal(ev)
	if err != nil {
		outcome.Stderr = []byte(fmt.Sprintf("marshalling event for hook %s: %v", h.Name, err))
		return outcome
	}

	child, err := sup.Spawn(h.Command, ev.CWD, childEnv(opts.ProjectDir))
	if err != nil {
		outcome.Stderr = []byte(err.Error())
		return outcome
	}

	cmd := child.Command()

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		outcome.Stderr = []byte(fmt.Sprintf("stdin pipe for hook %s: %v", h.Name, err))
		return outcome
	}

	capBytes := opts.MaxOutputBytes
	if capBytes <= 0 {
		capBytes = DefaultMaxOutputBytes
	}

	killOnOverflow := func() { _ = sup.Kill(child, syscall.SIGKILL) }
	stdoutLimiter := stream.NewLimiter(capBytes, killOnOverflow)
	stderrLimiter := stream.NewLimiter(capBytes, killOnOverflow)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		outcome.Stderr = []byte(fmt.Sprintf("stdout pipe for hook %s: %v", h.Name, err))
		return outcome
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		outcome.Stderr = []byte(fmt.Sprintf("stderr pipe for hook %s: %v", h.Name, err))
		return outcome
	}

	if err := sup.Start(child); err != nil {
		outcome.Stderr = []byte(fmt.Sprintf("spawning hook %s: %v", h.Name, err))
		return outcome
	}

	var drainWG doneGroup
	drainWG.go2(func() { _, _ = io.Copy(stdoutLimiter, stdoutPipe) })
	drainWG.go2(func() { _, _ = io.Copy(stderrLimiter, stderrPipe) })
	go writeStdin(stdinPipe, payload)

	timedOut := armTimeout(sup, child, h.TimeoutMS)

	waitErr := sup.AwaitExit(child)
	drainWG.wait()

	outcome.Stdout = stdoutLimiter.Bytes()
	outcome.Stderr = stderrLimiter.Bytes()
	outcome.Truncated = stdoutLimiter.Truncated() || stderrLimiter.Truncated()
	outcome.TimedOut = timedOut()

	if code, sig, ok := exitInfo(cmd, waitErr); ok {
		outcome.ExitCode = code
		outcome.Signal = sig
	}

	return outcome
}

// writeStdin writes payload to the child's stdin and closes it. A write
// error whose underlying cause indicates "reader went away" (EPIPE) is
// expected and ignored per spec.md §4.6 step 2; any other error is
// swallowed too (Hook Runner must never fail the run over a stdin write).
func writeStdin(w io.WriteCloser, payload []byte) {
	_, _ = w.Write(payload)
	_ = w.Close()
}

// armTimeout starts a timer for timeoutMS; if it fires before the caller
// invokes the returned function, it politely signals the child and
// schedules a forced kill GracePeriod later. The returned function reports
// whether the timeout actually fired, and must be called after the child
// has been waited on so the timer can be stopped cleanly.
func armTimeout(sup *supervisor.Supervisor, child *supervisor.Child, timeoutMS int) func() bool {
	fired := make(chan struct{})
	timer := time.AfterFunc(time.Duration(timeoutMS)*time.Millisecond, func() {
		close(fired)
		_ = sup.Kill(child, syscall.SIGTERM)
		time.AfterFunc(supervisor.GracePeriod, func() {
			if !child.Exited() {
				_ = sup.Kill(child, syscall.SIGKILL)
			}
		})
	})
	return func() bool {
		timer.Stop()
		select {
		case <-fired:
			return true
		default:
			return false
		}
	}
}

// exitInfo extracts the exit code (nil if the child was killed by signal)
// and the signal name, if any, from the completed command's process state.
func exitInfo(cmd *exec.Cmd, waitErr error) (*int, string, bool) {
	state := cmd.ProcessState
	if state == nil {
		return nil, "", false
	}

	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		code := state.ExitCode()
		return &code, "", true
	}

	if ws.Signaled() {
		sig := ws.Signal()
		return nil, sig.String(), true
	}

	code := ws.ExitStatus()
	return &code, "", true
}

func childEnv(projectDir string) []string {
	env := os.Environ()
	return append(env, "CLAUDE_PROJECT_DIR="+projectDir)
}

// doneGroup runs fire-and-collect goroutines without importing sync
// directly into the hot path twice; kept tiny and local to this file.
type doneGroup struct {
	ch []chan struct{}
}

func (d *doneGroup) go2(f func()) {
	c := make(chan struct{})
	d.ch = append(d.ch, c)
	go func() {
		defer close(c)
		f()
	}()
}

func (d *doneGroup) wait() {
	for _, c := range d.ch {
		<-c
	}
}

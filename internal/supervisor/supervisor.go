// Package supervisor implements the Process Supervisor (C5): the sole
// owner of child process handles from spawn to exit, running each child in
// its own process group so a signal to the group reaches the whole subtree.
//
// Grounded on the teacher's graceful-degradation posture (every failure
// path warns and continues rather than panicking) and on spec.md §4.5/§5's
// polite-then-forceful, group-wide shutdown model.
package supervisor

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// GracePeriod is how long cleanup waits after a polite signal before
// force-killing survivors (spec.md §4.5/§4.11).
const GracePeriod = 2 * time.Second

// Child is a supervised process, tracked from spawn to exit.
type Child struct {
	ID  string
	cmd *exec.Cmd

	mu     sync.Mutex
	exited bool
}

// Exited reports whether the child has already exited.
func (c *Child) Exited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

// Supervisor spawns and tracks child processes, and guarantees that no
// child outlives the orchestrator process (the "no orphans" invariant in
// spec.md §8).
type Supervisor struct {
	mu          sync.Mutex
	children    map[string]*Child
	shuttingDown bool
}

// New returns a ready Supervisor.
func New() *Supervisor {
	return &Supervisor{children: make(map[string]*Child)}
}

// Spawn prepares argv[0] with argv[1:] to run in its own process group,
// with the given working directory and environment. The returned Child is
// not yet running — wire stdin/stdout/stderr via Command() and then call
// Start. Spawn refuses to register a new child once Cleanup has begun
// ("no new spawns after shutdown started").
func (s *Supervisor) Spawn(argv []string, dir string, env []string) (*Child, error) {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return nil, fmt.Errorf("supervisor: shutdown in progress, refusing to spawn %v", argv)
	}
	s.mu.Unlock()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	child := &Child{ID: uuid.NewString(), cmd: cmd}

	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return nil, fmt.Errorf("supervisor: shutdown in progress, refusing to spawn %v", argv)
	}
	s.children[child.ID] = child
	s.mu.Unlock()

	return child, nil
}

// Start begins execution of a spawned-but-not-yet-started child. Split from
// Spawn so Hook Runner can wire stdin/stdout/stderr pipes before the
// process actually starts.
func (s *Supervisor) Start(c *Child) error {
	return c.cmd.Start()
}

// Command exposes the underlying *exec.Cmd for pipe wiring. Only valid
// between Spawn and Start.
func (c *Child) Command() *exec.Cmd { return c.cmd }

// AwaitExit waits for c to exit, recording its result, then removes it from
// the supervisor's live set.
func (s *Supervisor) AwaitExit(c *Child) error {
	err := c.cmd.Wait()
	c.mu.Lock()
	c.exited = true
	c.mu.Unlock()

	s.mu.Lock()
	delete(s.children, c.ID)
	s.mu.Unlock()
	return err
}

// Kill sends sig to c's entire process group. ESRCH (already dead) is not
// an error — killing a process that has already exited is a routine race,
// not a failure.
func (s *Supervisor) Kill(c *Child, sig syscall.Signal) error {
	if c.cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-c.cmd.Process.Pid, sig)
	if err != nil && err != syscall.ESRCH {
		return fmt.Errorf("supervisor: signalling group -%d: %w", c.cmd.Process.Pid, err)
	}
	return nil
}

// Cleanup sends SIGTERM to every live child's group, waits up to
// GracePeriod for every child to exit on its own, then SIGKILLs any
// survivor. It is idempotent and safe to call from a signal handler or a
// deferred call at the end of a normal run; the grace period always runs
// in full, even when the caller's own shutdown signal already fired (that
// signal is what triggered this call in the first place).
func (s *Supervisor) Cleanup() {
	s.mu.Lock()
	s.shuttingDown = true
	live := make([]*Child, 0, len(s.children))
	for _, c := range s.children {
		live = append(live, c)
	}
	s.mu.Unlock()

	if len(live) == 0 {
		return
	}

	for _, c := range live {
		_ = s.Kill(c, syscall.SIGTERM)
	}

	deadline := time.After(GracePeriod)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

waitLoop:
	for {
		allDone := true
		for _, c := range live {
			if !c.Exited() {
				allDone = false
				break
			}
		}
		if allDone {
			break waitLoop
		}
		select {
		case <-deadline:
			break waitLoop
		case <-ticker.C:
		}
	}

	for _, c := range live {
		if !c.Exited() {
			_ = s.Kill(c, syscall.SIGKILL)
		}
	}
}

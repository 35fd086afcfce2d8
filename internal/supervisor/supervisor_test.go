package supervisor_test

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cchooks/internal/supervisor"
)

func TestSpawnStartAwaitExit(t *testing.T) {
	sup := supervisor.New()
	child, err := sup.Spawn([]string{"/bin/sh", "-c", "exit 3"}, t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, sup.Start(child))
	err = sup.AwaitExit(child)
	assert.Error(t, err) // non-zero exit surfaces as an error from exec.Cmd.Wait
	assert.True(t, child.Exited())
}

func TestKillTerminatesProcessGroup(t *testing.T) {
	sup := supervisor.New()
	child, err := sup.Spawn([]string{"/bin/sh", "-c", "sleep 30"}, t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, sup.Start(child))

	require.NoError(t, sup.Kill(child, syscall.SIGKILL))
	_ = sup.AwaitExit(child)
	assert.True(t, child.Exited())
}

func TestCleanupKillsSurvivorsWithinGracePeriod(t *testing.T) {
	sup := supervisor.New()
	child, err := sup.Spawn([]string{"/bin/sh", "-c", "trap '' TERM; sleep 30"}, t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, sup.Start(child))

	// Reap the child the way Hook Runner does, so Exited() can observe the kill.
	reaped := make(chan struct{})
	go func() {
		_ = sup.AwaitExit(child)
		close(reaped)
	}()

	done := make(chan struct{})
	go func() {
		sup.Cleanup()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(supervisor.GracePeriod + 2*time.Second):
		t.Fatal("Cleanup did not return within grace period + margin")
	}

	select {
	case <-reaped:
	case <-time.After(time.Second):
		t.Fatal("child survived Cleanup")
	}

	assert.True(t, child.Exited())
}

func TestSpawnRefusesAfterShutdown(t *testing.T) {
	sup := supervisor.New()
	sup.Cleanup()

	_, err := sup.Spawn([]string{"/bin/sh", "-c", "true"}, t.TempDir(), nil)
	assert.Error(t, err)
}

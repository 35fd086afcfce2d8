package sessionlog_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cchooks/internal/config"
	"cchooks/internal/event"
	"cchooks/internal/mapper"
	"cchooks/internal/runner"
	"cchooks/internal/sessionlog"
	"cchooks/internal/verdict"
)

func TestAppendWritesOneJSONLine(t *testing.T) {
	home := t.TempDir()
	logger := sessionlog.New(home)

	res := mapper.Result{Hook: &config.HookDefinition{Name: "demo"}, Verdict: verdict.Success}
	logger.Append("sess-1", event.Notification, res, runner.Outcome{DurationMS: 12})

	path := filepath.Join(sessionlog.Dir(home), "session-sess-1.jsonl")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := countLines(t, data)
	assert.Equal(t, 1, lines)
	assert.Contains(t, string(data), `"flow_control":"success"`)
	assert.Contains(t, string(data), `"event_kind":"Notification"`)
}

func TestAppendAccumulatesAcrossCalls(t *testing.T) {
	home := t.TempDir()
	logger := sessionlog.New(home)

	res := mapper.Result{Hook: &config.HookDefinition{Name: "demo"}, Verdict: verdict.Success}
	logger.Append("sess-2", event.Notification, res, runner.Outcome{})
	logger.Append("sess-2", event.Notification, res, runner.Outcome{})

	path := filepath.Join(sessionlog.Dir(home), "session-sess-2.jsonl")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(t, data))
}

func TestRetainDeletesFilesOlderThanSevenDays(t *testing.T) {
	home := t.TempDir()
	dir := sessionlog.Dir(home)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	oldPath := filepath.Join(dir, "session-old.jsonl")
	require.NoError(t, os.WriteFile(oldPath, []byte("{}\n"), 0o644))
	old := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, old, old))

	freshPath := filepath.Join(dir, "session-fresh.jsonl")
	require.NoError(t, os.WriteFile(freshPath, []byte("{}\n"), 0o644))

	sessionlog.New(home).Retain()

	_, err := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshPath)
	assert.NoError(t, err)
}

func TestRetainSkipsWhenLockIsFreshAndHeldByAnother(t *testing.T) {
	home := t.TempDir()
	dir := sessionlog.Dir(home)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	lockPath := filepath.Join(dir, ".cleanup.lock")
	require.NoError(t, os.WriteFile(lockPath, nil, 0o644))

	oldPath := filepath.Join(dir, "session-old.jsonl")
	require.NoError(t, os.WriteFile(oldPath, []byte("{}\n"), 0o644))
	old := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, old, old))

	sessionlog.New(home).Retain()

	_, err := os.Stat(oldPath)
	assert.NoError(t, err, "a fresh lock held by another run must block cleanup")
}

func countLines(t *testing.T, data []byte) int {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	n := 0
	for scanner.Scan() {
		n++
	}
	return n
}

package selector_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cchooks/internal/config"
)

// buildConfig loads contents through the real Resolve path so hooks carry
// applyDefaults' resolved priority and event set, exactly as the
// orchestrator would hand them to Select.
func buildConfig(t *testing.T, contents string) config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hooks.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, _, err := config.Resolve(dir, path)
	require.NoError(t, err)
	return cfg
}

package runner

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ResolveProjectDir computes CLAUDE_PROJECT_DIR per spec.md §6: the
// host-provided value if present, otherwise the git top-level of cwd,
// otherwise the nearest ancestor of cwd containing a .claude directory,
// otherwise cwd itself.
func ResolveProjectDir(hostProvided, cwd string) string {
	if hostProvided != "" {
		return hostProvided
	}
	if top := gitTopLevel(cwd); top != "" {
		return top
	}
	if anc := nearestClaudeAncestor(cwd); anc != "" {
		return anc
	}
	return cwd
}

func gitTopLevel(cwd string) string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = cwd
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func nearestClaudeAncestor(cwd string) string {
	dir := cwd
	for {
		if info, err := os.Stat(filepath.Join(dir, ".claude")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

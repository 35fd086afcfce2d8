package config

import (
	"fmt"
	"os"
	"path/filepath"

	"cchooks/internal/jsonc"
)

// Layer names a configuration file's place in the precedence order.
type Layer string

const (
	LayerGlobal  Layer = "global"
	LayerProject Layer = "project"
	LayerLocal   Layer = "local"
	LayerCLI     Layer = "cli"
)

// SearchPaths returns the default three-layer search order for a given
// working directory, lowest precedence first. This is an implementation
// decision (spec.md does not name concrete paths); see DESIGN.md.
func SearchPaths(cwd string) map[Layer]string {
	home, _ := os.UserHomeDir()
	return map[Layer]string{
		LayerGlobal:  filepath.Join(home, ".claude", "hooks.json"),
		LayerProject: filepath.Join(cwd, ".claude", "hooks.json"),
		LayerLocal:   filepath.Join(cwd, ".claude", "hooks.local.json"),
	}
}

// Resolve loads and merges configuration for one invocation.
//
// If cliPath is non-empty it replaces the search entirely (spec.md §4.2: "A
// CLI-provided path, when given, replaces the search entirely"). Otherwise
// the three default layers are each loaded if present; a missing file
// contributes nothing. Missing all files yields an empty Config (the caller
// short-circuits on Config.Empty()).
func Resolve(cwd, cliPath string) (cfg Config, found bool, err error) {
	if cliPath != "" {
		cfg, err = loadSingle(cliPath)
		return cfg, true, err
	}

	order := []Layer{LayerGlobal, LayerProject, LayerLocal}
	paths := SearchPaths(cwd)

	merged := Config{}
	anyFound := false
	for _, layer := range order {
		path := paths[layer]
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		anyFound = true
		layerCfg, loadErr := loadSingle(path)
		if loadErr != nil {
			return Config{}, true, loadErr
		}
		merge(&merged, layerCfg)
	}
	return merged, anyFound, nil
}

// loadSingle loads, comment-strips, parses, and validates one file.
func loadSingle(path string) (Config, error) {
	var raw fileConfig
	if err := jsonc.Load(path, &raw); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	if err := validate(path, raw.Hooks); err != nil {
		return Config{}, err
	}

	logging, err := validateLogging(path, raw.Logging)
	if err != nil {
		return Config{}, err
	}

	limits, err := validateLimits(path, raw.Limits)
	if err != nil {
		return Config{}, err
	}

	return Config{Logging: logging, Limits: limits, Hooks: raw.Hooks}, nil
}

// merge folds layer into base using per-name last-writer-wins: a hook whose
// name already exists in base is replaced in place (order preserved);
// otherwise it is appended. Logging settings use last-defined-wins.
func merge(base *Config, layer Config) {
	index := make(map[string]int, len(base.Hooks))
	for i, h := range base.Hooks {
		index[h.Name] = i
	}
	for _, h := range layer.Hooks {
		if i, ok := index[h.Name]; ok {
			base.Hooks[i] = h
			continue
		}
		base.Hooks = append(base.Hooks, h)
		index[h.Name] = len(base.Hooks) - 1
	}

	if layer.Logging.Level != "" || layer.Logging.Path != "" {
		base.Logging = layer.Logging
	}
	if layer.Limits.MaxOutputBytes != 0 {
		base.Limits = layer.Limits
	}
}

// Empty reports whether no hooks were loaded from any layer — the
// short-circuit condition in spec.md §4.2/§4.10.
func (c Config) Empty() bool {
	return len(c.Hooks) == 0
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// rawConfig is used for initial TOML parsing before coercing hook and
// group tables, whose command field can be a string or an array.
type rawConfig struct {
	Imports []string                  `toml:"imports"`
	Hooks   map[string]map[string]any `toml:"hooks"`
	Groups  map[string]map[string]any `toml:"groups"`
}

// Parse parses hooks.toml content. path is used in error messages only.
func Parse(data []byte, path string) (*Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := &Config{
		Hooks:  make(map[string]HookDefinition, len(raw.Hooks)),
		Groups: make(map[string]HookGroup, len(raw.Groups)),
	}

	for name, table := range raw.Hooks {
		hook, err := parseHook(path, name, table)
		if err != nil {
			return nil, err
		}
		cfg.Hooks[name] = hook
	}

	for name, table := range raw.Groups {
		group, err := parseGroup(path, name, table)
		if err != nil {
			return nil, err
		}
		cfg.Groups[name] = group
	}

	return cfg, nil
}

// Load reads and parses the config at path, resolving imports.
// Imported configs merge name-by-name; the importing file wins.
func Load(path string) (*Config, error) {
	visited := make(map[string]bool)
	return loadFile(path, visited)
}

func loadFile(path string, visited map[string]bool) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	if visited[abs] {
		return nil, fmt.Errorf("import cycle detected at %s", abs)
	}
	visited[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", abs, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", abs, err)
	}

	cfg, err := Parse(data, abs)
	if err != nil {
		return nil, err
	}

	if len(raw.Imports) == 0 {
		return cfg, nil
	}

	baseDir := filepath.Dir(abs)
	bound := importBoundary(baseDir)

	merged := &Config{
		Hooks:  make(map[string]HookDefinition),
		Groups: make(map[string]HookGroup),
	}

	for _, imp := range raw.Imports {
		if filepath.IsAbs(imp) {
			return nil, fmt.Errorf("%s: absolute import path not allowed: %s", abs, imp)
		}
		impPath := filepath.Clean(filepath.Join(baseDir, imp))
		if !strings.HasPrefix(impPath+string(filepath.Separator), bound+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s: import outside repository root is not allowed: %s", abs, imp)
		}
		impCfg, err := loadFile(impPath, visited)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", abs, err)
		}
		for name, hook := range impCfg.Hooks {
			merged.Hooks[name] = hook
		}
		for name, group := range impCfg.Groups {
			merged.Groups[name] = group
		}
	}

	// The importing file overrides imported names.
	for name, hook := range cfg.Hooks {
		merged.Hooks[name] = hook
	}
	for name, group := range cfg.Groups {
		merged.Groups[name] = group
	}

	return merged, nil
}

// importBoundary returns the directory imports must stay under: the
// enclosing git repository root, or the config's own directory when not
// inside a repository.
func importBoundary(dir string) string {
	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

func parseHook(path, name string, table map[string]any) (HookDefinition, error) {
	var hook HookDefinition

	cmd, ok := table["command"]
	if !ok {
		return hook, fmt.Errorf("%s: hook %q has no command", path, name)
	}
	switch v := cmd.(type) {
	case string:
		if v == "" {
			return hook, fmt.Errorf("%s: hook %q has an empty command", path, name)
		}
		hook.Command = Command{Shell: v}
	case []any:
		args, err := toStringSlice(v)
		if err != nil {
			return hook, fmt.Errorf("%s: hook %q command: %w", path, name, err)
		}
		if len(args) == 0 {
			return hook, fmt.Errorf("%s: hook %q has an empty command list", path, name)
		}
		hook.Command = Command{Args: args}
	default:
		return hook, fmt.Errorf("%s: hook %q command must be a string or an array of strings", path, name)
	}

	if v, ok := table["workdir"]; ok {
		s, ok := v.(string)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q workdir must be a string", path, name)
		}
		hook.Workdir = s
	}
	if v, ok := table["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q description must be a string", path, name)
		}
		hook.Description = s
	}
	if v, ok := table["modifies_repository"]; ok {
		b, ok := v.(bool)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q modifies_repository must be a boolean", path, name)
		}
		hook.ModifiesRepository = b
	}
	if v, ok := table["run_always"]; ok {
		b, ok := v.(bool)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q run_always must be a boolean", path, name)
		}
		hook.RunAlways = b
	}
	if v, ok := table["files"]; ok {
		list, ok := v.([]any)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q files must be an array of strings", path, name)
		}
		patterns, err := toStringSlice(list)
		if err != nil {
			return hook, fmt.Errorf("%s: hook %q files: %w", path, name, err)
		}
		hook.Files = patterns
	}
	if v, ok := table["depends_on"]; ok {
		list, ok := v.([]any)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q depends_on must be an array of strings", path, name)
		}
		deps, err := toStringSlice(list)
		if err != nil {
			return hook, fmt.Errorf("%s: hook %q depends_on: %w", path, name, err)
		}
		hook.DependsOn = deps
	}
	if v, ok := table["env"]; ok {
		envTable, ok := v.(map[string]any)
		if !ok {
			return hook, fmt.Errorf("%s: hook %q env must be a table of strings", path, name)
		}
		env := make(map[string]string, len(envTable))
		for k, ev := range envTable {
			s, ok := ev.(string)
			if !ok {
				return hook, fmt.Errorf("%s: hook %q env.%s must be a string", path, name, k)
			}
			env[k] = s
		}
		hook.Env = env
	}

	if hook.RunAlways && hook.Files != nil {
		return hook, fmt.Errorf(
			"%s: hook %q cannot have both 'files' patterns and 'run_always = true'; use file patterns for conditional execution or run_always for unconditional execution",
			path, name)
	}

	return hook, nil
}

func parseGroup(path, name string, table map[string]any) (HookGroup, error) {
	var group HookGroup

	if v, ok := table["includes"]; ok {
		list, ok := v.([]any)
		if !ok {
			return group, fmt.Errorf("%s: group %q includes must be an array of strings", path, name)
		}
		includes, err := toStringSlice(list)
		if err != nil {
			return group, fmt.Errorf("%s: group %q includes: %w", path, name, err)
		}
		group.Includes = includes
	}
	if v, ok := table["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return group, fmt.Errorf("%s: group %q description must be a string", path, name)
		}
		group.Description = s
	}

	switch v, ok := table["execution"]; {
	case ok:
		s, isStr := v.(string)
		if !isStr {
			return group, fmt.Errorf("%s: group %q execution must be a string", path, name)
		}
		strategy, err := ParseStrategy(s)
		if err != nil {
			return group, fmt.Errorf("%s: group %q: %w", path, name, err)
		}
		group.Execution = strategy
	default:
		// Legacy boolean hint.
		if v, ok := table["parallel"]; ok {
			b, isBool := v.(bool)
			if !isBool {
				return group, fmt.Errorf("%s: group %q parallel must be a boolean", path, name)
			}
			if b {
				group.Execution = Parallel
			}
		}
	}

	return group, nil
}

func toStringSlice(list []any) ([]string, error) {
	out := make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("element %d must be a string, got %T", i, v)
		}
		out = append(out, s)
	}
	return out, nil
}

// Exists reports whether a hooks.toml exists in dir.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil && info.Mode().IsRegular()
}

// IsNotExist reports whether err stems from a missing config file.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

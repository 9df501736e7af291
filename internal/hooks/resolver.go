package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/workhelix/peter-hook/internal/config"
	"github.com/workhelix/peter-hook/internal/git"
	"github.com/workhelix/peter-hook/internal/log"
)

// ResolvedHook is a hook definition plus its resolved working directory
// and the configuration file it came from. Values are never mutated
// after resolution and are cheap to copy into worker goroutines.
type ResolvedHook struct {
	Name             string
	Definition       config.HookDefinition
	WorkingDirectory string
	SourceFile       string
}

// ResolvedHookSet is the output of resolution, consumed once by the
// executor.
type ResolvedHookSet struct {
	// ConfigPath is the configuration file the set was resolved from.
	ConfigPath string
	// Hooks maps hook name to its resolved form. Names are unique; a
	// group expansion never silently overwrites an already-resolved name.
	Hooks map[string]ResolvedHook
	// Strategy selects how the set is scheduled when no hook declares
	// dependencies.
	Strategy config.ExecutionStrategy
	// ChangedFiles is the flat changed-file list, nil when change
	// filtering is disabled.
	ChangedFiles []string
	// Worktree is the repository context the set was resolved in.
	Worktree git.WorktreeContext
}

// Names returns the hook names in sorted order.
func (s *ResolvedHookSet) Names() []string {
	return sortedKeys(s.Hooks)
}

// HasDependencies reports whether any hook in the set declares
// depends_on edges.
func (s *ResolvedHookSet) HasDependencies() bool {
	for _, hook := range s.Hooks {
		if len(hook.Definition.DependsOn) > 0 {
			return true
		}
	}
	return false
}

// Resolver finds the configuration governing a directory and resolves
// event names into hook sets. The upward search is bounded by the
// repository root, never the filesystem root.
type Resolver struct {
	startDir string
	repoRoot string
}

// NewResolver creates a resolver starting at startDir, bounded by repoRoot.
func NewResolver(startDir, repoRoot string) *Resolver {
	return &Resolver{startDir: startDir, repoRoot: repoRoot}
}

// FindConfig walks parent directories from the start directory upward,
// returning the first hooks.toml found, or ok=false if the repository
// root is passed without a match.
func (r *Resolver) FindConfig() (path string, ok bool, err error) {
	return findConfigFrom(r.startDir, r.repoRoot)
}

func findConfigFrom(dir, repoRoot string) (string, bool, error) {
	current := filepath.Clean(dir)
	root := filepath.Clean(repoRoot)

	for {
		candidate := filepath.Join(current, config.FileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, true, nil
		case err != nil && !os.IsNotExist(err):
			return "", false, fmt.Errorf("failed to check %s: %w", candidate, err)
		}

		if current == root {
			return "", false, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false, nil
		}
		current = parent
	}
}

// ResolveForEvent resolves the hooks applicable to an event from the
// nearest configuration. Returns (nil, nil) when no configuration is
// found or the event is not defined; "nothing to run" is not an error.
func (r *Resolver) ResolveForEvent(ctx context.Context, event string, wc git.WorktreeContext, changedFiles []string) (*ResolvedHookSet, error) {
	configPath, ok, err := r.FindConfig()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return resolveEventFromConfig(ctx, configPath, event, wc, changedFiles)
}

// resolveEventFromConfig loads configPath and resolves event against it.
func resolveEventFromConfig(ctx context.Context, configPath, event string, wc git.WorktreeContext, changedFiles []string) (*ResolvedHookSet, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	configDir := filepath.Dir(configPath)
	set := &ResolvedHookSet{
		ConfigPath:   configPath,
		Hooks:        make(map[string]ResolvedHook),
		Strategy:     config.Sequential,
		ChangedFiles: changedFiles,
		Worktree:     wc,
	}

	if hook, ok := cfg.Hooks[event]; ok {
		if hookIsRelevant(hook, changedFiles) {
			set.Hooks[event] = resolveHook(event, hook, configDir, configPath)
		}
	} else if group, ok := cfg.Groups[event]; ok {
		set.Strategy = group.Execution
		expandGroup(ctx, cfg, group, configDir, configPath, changedFiles, set.Hooks)
	}

	if len(set.Hooks) == 0 {
		return nil, nil
	}
	return set, nil
}

// expandGroup flattens a group's includes into out. Expansion uses an
// explicit worklist with a visited set; a name seen twice (including
// self- or mutually-referential groups) is skipped and logged.
func expandGroup(ctx context.Context, cfg *config.Config, group config.HookGroup, configDir, configPath string, changedFiles []string, out map[string]ResolvedHook) {
	l := log.FromContext(ctx)
	visited := make(map[string]bool)

	stack := make([]string, len(group.Includes))
	copy(stack, group.Includes)

	for len(stack) > 0 {
		include := stack[0]
		stack = stack[1:]

		if visited[include] {
			l.Debug("skipping repeated include", "name", include, "config", configPath)
			continue
		}
		visited[include] = true

		if hook, ok := cfg.Hooks[include]; ok {
			if hookIsRelevant(hook, changedFiles) {
				out[include] = resolveHook(include, hook, configDir, configPath)
			}
			continue
		}
		if nested, ok := cfg.Groups[include]; ok {
			// Nested includes expand before the remaining worklist to
			// preserve the declared order.
			stack = append(append([]string{}, nested.Includes...), stack...)
			continue
		}
		l.Debug("include names neither a hook nor a group", "name", include, "config", configPath)
	}
}

// resolveHook computes a hook's working directory: the workdir field if
// absolute, joined to the config directory if relative, else the config
// directory itself. A workdir carrying template variables gets its
// final resolution at execution time; this value is a plain-path
// precompute used for listings.
func resolveHook(name string, def config.HookDefinition, configDir, configPath string) ResolvedHook {
	workingDir := configDir
	if def.Workdir != "" {
		if filepath.IsAbs(def.Workdir) {
			workingDir = def.Workdir
		} else {
			workingDir = filepath.Join(configDir, def.Workdir)
		}
	}
	return ResolvedHook{
		Name:             name,
		Definition:       def,
		WorkingDirectory: workingDir,
		SourceFile:       configPath,
	}
}

// hookIsRelevant applies file filtering at resolution time. A hook with
// declared patterns is dropped when change filtering is active and no
// changed file matches. Invalid patterns fail open: the hook stays in
// and the executor surfaces the pattern error.
func hookIsRelevant(def config.HookDefinition, changedFiles []string) bool {
	if def.RunAlways {
		return true
	}
	if def.Files == nil {
		return true
	}
	if changedFiles == nil {
		return true
	}
	matcher, err := git.NewPatternMatcher(def.Files)
	if err != nil {
		return true
	}
	return matcher.MatchesAny(changedFiles)
}

func sortedKeys(m map[string]ResolvedHook) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

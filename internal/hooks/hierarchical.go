package hooks

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/workhelix/peter-hook/internal/config"
	"github.com/workhelix/peter-hook/internal/git"
)

// ConfigGroup is one nearest-config bucket from hierarchical
// resolution: the changed files governed by a configuration file plus
// the hook set resolved from it.
type ConfigGroup struct {
	ConfigPath string
	Files      []string
	Resolved   *ResolvedHookSet
}

// ResolveHierarchically resolves an event for a set of changed files,
// routing each file to the nearest configuration above it. When mode is
// nil or yields no changed files, resolution falls back to the current
// directory with file filtering disabled so run_always hooks still fire.
func ResolveHierarchically(ctx context.Context, event string, mode *git.ChangeMode, repoRoot, currentDir string, wc git.WorktreeContext) ([]ConfigGroup, error) {
	var changedFiles []string
	if mode != nil {
		files, err := git.ChangedFiles(ctx, repoRoot, *mode)
		if err != nil {
			return nil, err
		}
		changedFiles = files
	}

	if len(changedFiles) == 0 {
		set, err := NewResolver(currentDir, repoRoot).ResolveForEvent(ctx, event, wc, nil)
		if err != nil || set == nil {
			return nil, err
		}
		return []ConfigGroup{{ConfigPath: set.ConfigPath, Resolved: set}}, nil
	}

	return GroupByConfig(ctx, changedFiles, repoRoot, event, wc)
}

// GroupByConfig buckets changed files by the nearest hooks.toml above
// each one and resolves the event per bucket. Files with no governing
// configuration are dropped, as are buckets whose configuration chain
// never defines the event. Groups come back sorted by config path.
func GroupByConfig(ctx context.Context, changedFiles []string, repoRoot, event string, wc git.WorktreeContext) ([]ConfigGroup, error) {
	buckets := make(map[string][]string)

	for _, file := range changedFiles {
		abs := file
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(repoRoot, file)
		}
		configPath, ok, err := findConfigFrom(filepath.Dir(abs), repoRoot)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		buckets[configPath] = append(buckets[configPath], file)
	}

	paths := make([]string, 0, len(buckets))
	for path := range buckets {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	var groups []ConfigGroup
	for _, path := range paths {
		files := buckets[path]
		set, err := resolveEventWithFallback(ctx, path, event, repoRoot, wc, files)
		if err != nil {
			return nil, err
		}
		if set == nil {
			continue
		}
		groups = append(groups, ConfigGroup{ConfigPath: path, Files: files, Resolved: set})
	}
	return groups, nil
}

// resolveEventWithFallback resolves event from configPath; if the
// configuration does not define the event, the search restarts from the
// grandparent of the config directory so an ancestor config can take
// over, still bounded by the repository root.
func resolveEventWithFallback(ctx context.Context, configPath, event, repoRoot string, wc git.WorktreeContext, changedFiles []string) (*ResolvedHookSet, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.HasEvent(event) {
		return resolveEventFromConfig(ctx, configPath, event, wc, changedFiles)
	}

	configDir := filepath.Dir(configPath)
	if filepath.Clean(configDir) == filepath.Clean(repoRoot) {
		return nil, nil
	}
	parent := filepath.Dir(configDir)
	ancestor, ok, err := findConfigFrom(parent, repoRoot)
	if err != nil || !ok {
		return nil, err
	}
	return resolveEventWithFallback(ctx, ancestor, event, repoRoot, wc, changedFiles)
}

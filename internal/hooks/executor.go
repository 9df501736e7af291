package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/workhelix/peter-hook/internal/config"
	"github.com/workhelix/peter-hook/internal/git"
	"github.com/workhelix/peter-hook/internal/log"
	"github.com/workhelix/peter-hook/internal/template"
)

// ExecutionResult is the outcome of one hook process.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Success  bool
}

// ExecutionResults aggregates per-hook outcomes. Success is the AND of
// every individual result.
type ExecutionResults struct {
	Results map[string]ExecutionResult
	Success bool
}

// Failed returns the names of failed hooks in sorted order.
func (r *ExecutionResults) Failed() []string {
	var names []string
	for name, res := range r.Results {
		if !res.Success {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Execute runs a resolved hook set. When any hook declares
// dependencies, the set runs phase by phase from a dependency plan and
// stops after the first failing phase. Otherwise the set's strategy
// applies: Sequential runs every hook to completion in sorted order,
// Parallel runs non-mutating hooks concurrently and then mutating hooks
// one at a time, ForceParallel runs everything concurrently.
func Execute(ctx context.Context, set *ResolvedHookSet) (*ExecutionResults, error) {
	results := &ExecutionResults{
		Results: make(map[string]ExecutionResult),
		Success: true,
	}
	if set == nil || len(set.Hooks) == 0 {
		return results, nil
	}

	names := set.Names()

	if set.HasDependencies() {
		return executePlanned(ctx, set, names, results)
	}

	switch set.Strategy {
	case config.Parallel:
		return executeParallelSafe(ctx, set, names, results)
	case config.ForceParallel:
		return executeBatchInto(ctx, set, names, results)
	default:
		return executeSequential(ctx, set, names, results)
	}
}

// executePlanned builds a dependency plan and runs it phase by phase.
// A failing phase short-circuits the remaining phases.
func executePlanned(ctx context.Context, set *ResolvedHookSet, names []string, results *ExecutionResults) (*ExecutionResults, error) {
	resolver := NewDependencyResolver()
	for _, name := range names {
		resolver.AddHook(name, set.Hooks[name].Definition.DependsOn)
	}
	plan, err := resolver.Resolve(names)
	if err != nil {
		return nil, err
	}

	l := log.FromContext(ctx)
	for i, phase := range plan.Phases {
		l.Debug("running phase", "index", i, "hooks", strings.Join(phase.Hooks, ","))

		if len(phase.Hooks) == 1 {
			name := phase.Hooks[0]
			res := runHookLenient(ctx, set, name)
			record(results, name, res)
		} else {
			if _, err := executeBatchInto(ctx, set, phase.Hooks, results); err != nil {
				return results, err
			}
		}

		if !results.Success {
			l.Debug("phase failed, skipping remaining phases", "index", i)
			break
		}
	}
	return results, nil
}

// executeSequential runs hooks one at a time in sorted order. Every
// hook runs even after failures; a launch error is a hard error here
// because nothing else is in flight.
func executeSequential(ctx context.Context, set *ResolvedHookSet, names []string, results *ExecutionResults) (*ExecutionResults, error) {
	for _, name := range names {
		res, err := runHook(ctx, set, name)
		if err != nil {
			return results, fmt.Errorf("failed to launch hook %s: %w", name, err)
		}
		record(results, name, res)
	}
	return results, nil
}

// executeParallelSafe runs the Parallel strategy: hooks that do not
// modify the repository go concurrently, then modifying hooks run
// strictly one at a time.
func executeParallelSafe(ctx context.Context, set *ResolvedHookSet, names []string, results *ExecutionResults) (*ExecutionResults, error) {
	var safe, modifying []string
	for _, name := range names {
		if set.Hooks[name].Definition.ModifiesRepository {
			modifying = append(modifying, name)
		} else {
			safe = append(safe, name)
		}
	}

	if _, err := executeBatchInto(ctx, set, safe, results); err != nil {
		return results, err
	}
	for _, name := range modifying {
		record(results, name, runHookLenient(ctx, set, name))
	}
	return results, nil
}

// executeBatchInto runs the named hooks concurrently, one goroutine
// each, writing into per-slot result cells so no mutex is needed.
func executeBatchInto(ctx context.Context, set *ResolvedHookSet, names []string, results *ExecutionResults) (*ExecutionResults, error) {
	if len(names) == 0 {
		return results, nil
	}

	slots := make([]ExecutionResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			slots[i] = runHookLenient(gctx, set, name)
			return nil
		})
	}
	// Workers never return errors; Wait only joins.
	_ = g.Wait()

	for i, name := range names {
		record(results, name, slots[i])
	}
	return results, nil
}

// runHookLenient converts a launch error into a synthetic failed result
// so concurrent siblings still report.
func runHookLenient(ctx context.Context, set *ResolvedHookSet, name string) ExecutionResult {
	res, err := runHook(ctx, set, name)
	if err != nil {
		return ExecutionResult{ExitCode: -1, Stderr: err.Error()}
	}
	return res
}

// runHook prepares template variables, environment, and changed-file
// plumbing for one hook and runs its process. The returned error means
// the process could not be prepared or launched; a started process that
// exits nonzero is a failed result, not an error.
func runHook(ctx context.Context, set *ResolvedHookSet, name string) (ExecutionResult, error) {
	hook := set.Hooks[name]
	def := hook.Definition
	configDir := filepath.Dir(hook.SourceFile)

	workingDir, err := effectiveWorkdir(set, configDir, def.Workdir, hook.WorkingDirectory)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("hook %s workdir: %w", name, err)
	}

	resolver := template.New(configDir, workingDir)
	resolver.SetRepoRoot(set.Worktree.RepoRoot)
	resolver.SetWorktree(set.Worktree.CommonDir, set.Worktree.IsWorktree, set.Worktree.WorktreeName)

	relevant := set.ChangedFiles
	if len(def.Files) > 0 && set.ChangedFiles != nil {
		matcher, err := git.NewPatternMatcher(def.Files)
		if err != nil {
			return ExecutionResult{}, fmt.Errorf("hook %s: %w", name, err)
		}
		relevant = matcher.Filter(set.ChangedFiles)
	}

	changedFile := writeChangedFilesTemp(relevant)
	if changedFile != "" {
		defer os.Remove(changedFile)
	}
	resolver.SetChangedFiles(relevant, changedFile)

	cmd, err := buildCommand(ctx, def, resolver)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("hook %s: %w", name, err)
	}
	cmd.Dir = workingDir

	env := os.Environ()
	extraEnv, err := resolver.ResolveEnv(def.Env)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("hook %s: %w", name, err)
	}
	for k, v := range extraEnv {
		env = append(env, k+"="+v)
	}
	env = append(env,
		"CHANGED_FILES="+strings.Join(relevant, " "),
		"CHANGED_FILES_LIST="+strings.Join(relevant, "\n"),
		"CHANGED_FILES_FILE="+changedFile,
	)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.FromContext(ctx).Command(cmd.Path, cmd.Args[1:]...)

	runErr := cmd.Run()
	result := ExecutionResult{
		ExitCode: exitCode(runErr),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Success:  runErr == nil,
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		// Process never started: command missing, bad workdir.
		return ExecutionResult{}, runErr
	}
	return result, nil
}

// effectiveWorkdir computes the directory a hook runs in. A workdir
// override is itself a template; it resolves against the directory
// variables (WORKING_DIR still means the config directory at this
// point), then applies absolute as-is or relative to the config dir.
func effectiveWorkdir(set *ResolvedHookSet, configDir, workdir, fallback string) (string, error) {
	if workdir == "" {
		return fallback, nil
	}

	resolver := template.New(configDir, configDir)
	resolver.SetRepoRoot(set.Worktree.RepoRoot)
	resolver.SetWorktree(set.Worktree.CommonDir, set.Worktree.IsWorktree, set.Worktree.WorktreeName)

	resolved, err := resolver.Resolve(workdir)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(configDir, resolved)
	}
	return filepath.Clean(resolved), nil
}

// buildCommand resolves the hook's command templates and produces the
// process to run: shell form via `sh -c`, argv form directly.
func buildCommand(ctx context.Context, def config.HookDefinition, resolver *template.Resolver) (*exec.Cmd, error) {
	if def.Command.IsShell() {
		resolved, err := resolver.Resolve(def.Command.Shell)
		if err != nil {
			return nil, err
		}
		return exec.CommandContext(ctx, "sh", "-c", resolved), nil
	}

	args, err := resolver.ResolveArgs(def.Command.Args)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command resolved to no arguments")
	}
	return exec.CommandContext(ctx, args[0], args[1:]...), nil
}

// writeChangedFilesTemp writes one path per line to a temp file and
// returns its path. Failures degrade to an empty path rather than
// failing the hook.
func writeChangedFilesTemp(files []string) string {
	if len(files) == 0 {
		return ""
	}
	f, err := os.CreateTemp("", "peter-hook-changed-*")
	if err != nil {
		return ""
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(files, "\n") + "\n"); err != nil {
		os.Remove(f.Name())
		return ""
	}
	return f.Name()
}

func record(results *ExecutionResults, name string, res ExecutionResult) {
	results.Results[name] = res
	if !res.Success {
		results.Success = false
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

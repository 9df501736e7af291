package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/workhelix/peter-hook/internal/config"
	"github.com/workhelix/peter-hook/internal/git"
	"github.com/workhelix/peter-hook/internal/hooks"
	"github.com/workhelix/peter-hook/internal/log"
	"github.com/workhelix/peter-hook/internal/output"
	"github.com/workhelix/peter-hook/internal/ui/styles"
)

func newRunCmd() *cobra.Command {
	var (
		allFiles    bool
		staged      bool
		pushRange   string
		commitRange string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "run <event>",
		Short: "Run the hooks for a git event",
		Args:  cobra.ExactArgs(1),
		Long: `Run the hooks configured for an event (e.g. pre-commit, pre-push).

Changed files are detected from the working tree by default. Hooks with
file patterns only run when a changed file matches; each changed file is
routed to the nearest hooks.toml above it.`,
		Example: `  peter-hook run pre-commit              # changed files from the working tree
  peter-hook run pre-commit --staged     # staged files only (for the real hook)
  peter-hook run pre-push --push-range origin/main
  peter-hook run ci --commit-range HEAD~5..HEAD
  peter-hook run pre-commit --all-files  # no file filtering
  peter-hook run pre-commit --dry-run    # show what would run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			event := args[0]

			mode, err := changeMode(allFiles, staged, pushRange, commitRange)
			if err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			wc, err := git.FindWorktreeContext(ctx, cwd)
			if err != nil {
				return err
			}

			groups, err := hooks.ResolveHierarchically(ctx, event, mode, wc.RepoRoot, cwd, *wc)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				return reportNothingToRun(ctx, event, cwd, wc.RepoRoot)
			}

			if dryRun {
				printPlan(ctx, groups)
				return nil
			}

			failed := false
			for _, group := range groups {
				results, err := hooks.Execute(ctx, group.Resolved)
				if err != nil {
					return err
				}
				printResults(ctx, group, results)
				if !results.Success {
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("%s hooks failed", event)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFiles, "all-files", false, "Run without file filtering")
	cmd.Flags().BoolVar(&staged, "staged", false, "Detect changes from the index instead of the working tree")
	cmd.Flags().StringVar(&pushRange, "push-range", "", "Detect changes against a remote ref (remote/branch)")
	cmd.Flags().StringVar(&commitRange, "commit-range", "", "Detect changes in a commit range (from..to)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and print the hooks without running them")
	cmd.MarkFlagsMutuallyExclusive("all-files", "staged", "push-range", "commit-range")

	return cmd
}

// changeMode translates the run flags into a change-detection mode.
// A nil mode disables file filtering entirely.
func changeMode(allFiles, staged bool, pushRange, commitRange string) (*git.ChangeMode, error) {
	switch {
	case allFiles:
		return nil, nil
	case staged:
		m := git.StagedMode()
		return &m, nil
	case pushRange != "":
		remote, branch, ok := strings.Cut(pushRange, "/")
		if !ok {
			return nil, fmt.Errorf("--push-range must be remote/branch, got %q", pushRange)
		}
		m := git.PushMode(remote, branch)
		return &m, nil
	case commitRange != "":
		from, to, ok := strings.Cut(commitRange, "..")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("--commit-range must be from..to, got %q", commitRange)
		}
		m := git.CommitRangeMode(from, to)
		return &m, nil
	default:
		m := git.WorkingTreeMode()
		return &m, nil
	}
}

// reportNothingToRun distinguishes "no config / event undefined" from a
// typo: when a config exists, close event names are suggested.
func reportNothingToRun(ctx context.Context, event, cwd, repoRoot string) error {
	l := log.FromContext(ctx)

	configPath, ok, err := hooks.NewResolver(cwd, repoRoot).FindConfig()
	if err != nil || !ok {
		l.Printf("no hooks configured for %s\n", event)
		return nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.HasEvent(event) {
		// Defined but filtered out by the changed files.
		l.Printf("no hooks to run for %s\n", event)
		return nil
	}

	hookNames, groupNames := cfg.Names()
	candidates := append(hookNames, groupNames...)
	if matches := fuzzy.Find(event, candidates); len(matches) > 0 {
		return fmt.Errorf("no hook or group named %q in %s (did you mean %q?)", event, configPath, matches[0].Str)
	}
	l.Printf("no hooks configured for %s\n", event)
	return nil
}

// printPlan shows what a run would execute, per config group.
func printPlan(ctx context.Context, groups []hooks.ConfigGroup) {
	out := output.FromContext(ctx)
	for _, group := range groups {
		out.Printf("%s\n", group.ConfigPath)
		for _, name := range group.Resolved.Names() {
			hook := group.Resolved.Hooks[name]
			out.Printf("  %s  (workdir %s)\n", name, hook.WorkingDirectory)
		}
	}
}

// printResults writes a per-hook summary line and, for failures, the
// captured output.
func printResults(ctx context.Context, group hooks.ConfigGroup, results *hooks.ExecutionResults) {
	out := output.FromContext(ctx)
	styled := isatty.IsTerminal(os.Stdout.Fd())

	for _, name := range group.Resolved.Names() {
		res, ok := results.Results[name]
		switch {
		case !ok:
			out.Printf("%s %s (skipped)\n", symbol(styled, styles.Skip, styles.SymbolSkip), name)
		case res.Success:
			out.Printf("%s %s\n", symbol(styled, styles.Pass, styles.SymbolPass), name)
		default:
			out.Printf("%s %s (exit %d)\n", symbol(styled, styles.Fail, styles.SymbolFail), name, res.ExitCode)
			if trimmed := strings.TrimSpace(res.Stdout); trimmed != "" {
				out.Printf("%s\n", trimmed)
			}
			if trimmed := strings.TrimSpace(res.Stderr); trimmed != "" {
				out.Printf("%s\n", trimmed)
			}
		}
	}
}

func symbol(styled bool, render func() string, plain string) string {
	if styled {
		return render()
	}
	return plain
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/workhelix/peter-hook/internal/config"
	"github.com/workhelix/peter-hook/internal/git"
	"github.com/workhelix/peter-hook/internal/hooks"
	"github.com/workhelix/peter-hook/internal/output"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a hooks.toml file",
		Args:  cobra.MaximumNArgs(1),
		Long: `Validate a hooks.toml: syntax, imports, group includes, file
patterns, and the dependency graph. Without a path the nearest config
above the current directory is validated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			var configPath string
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				configPath = abs
			} else {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				wc, err := git.FindWorktreeContext(ctx, cwd)
				if err != nil {
					return err
				}
				path, ok, err := hooks.NewResolver(cwd, wc.RepoRoot).FindConfig()
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no %s found between %s and the repository root", config.FileName, cwd)
				}
				configPath = path
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var problems []string
			unknownDeps := false

			for name, hook := range cfg.Hooks {
				if len(hook.Files) > 0 {
					if _, err := git.NewPatternMatcher(hook.Files); err != nil {
						problems = append(problems, fmt.Sprintf("hook %q: %v", name, err))
					}
				}
				for _, dep := range hook.DependsOn {
					if _, ok := cfg.Hooks[dep]; !ok {
						problems = append(problems, fmt.Sprintf("hook %q depends on unknown hook %q", name, dep))
						unknownDeps = true
					}
				}
			}

			for name, group := range cfg.Groups {
				for _, include := range group.Includes {
					_, isHook := cfg.Hooks[include]
					_, isGroup := cfg.Groups[include]
					if !isHook && !isGroup {
						problems = append(problems, fmt.Sprintf("group %q includes unknown name %q", name, include))
					}
				}
			}

			// The whole graph must order cleanly, cycles included.
			// Skipped when deps already reference unknown hooks.
			if !unknownDeps {
				resolver := hooks.NewDependencyResolver()
				hookNames, _ := cfg.Names()
				for _, name := range hookNames {
					resolver.AddHook(name, cfg.Hooks[name].DependsOn)
				}
				if _, err := resolver.Resolve(hookNames); err != nil {
					problems = append(problems, err.Error())
				}
			}

			if len(problems) > 0 {
				for _, p := range problems {
					out.Printf("%s: %s\n", configPath, p)
				}
				return fmt.Errorf("%s is invalid (%d problem(s))", configPath, len(problems))
			}

			out.Printf("%s is valid (%d hooks, %d groups)\n", configPath, len(cfg.Hooks), len(cfg.Groups))
			return nil
		},
	}

	return cmd
}

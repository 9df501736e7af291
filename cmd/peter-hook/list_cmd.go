package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workhelix/peter-hook/internal/config"
	"github.com/workhelix/peter-hook/internal/git"
	"github.com/workhelix/peter-hook/internal/hooks"
	"github.com/workhelix/peter-hook/internal/output"
)

// hookDisplay holds hook info for JSON output.
type hookDisplay struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Files              []string `json:"files,omitempty"`
	DependsOn          []string `json:"depends_on,omitempty"`
	ModifiesRepository bool     `json:"modifies_repository,omitempty"`
	RunAlways          bool     `json:"run_always,omitempty"`
}

type groupDisplay struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Includes    []string `json:"includes"`
	Execution   string   `json:"execution"`
}

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List hooks and groups from the nearest hooks.toml",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			wc, err := git.FindWorktreeContext(ctx, cwd)
			if err != nil {
				return err
			}

			configPath, ok, err := hooks.NewResolver(cwd, wc.RepoRoot).FindConfig()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no %s found between %s and the repository root", config.FileName, cwd)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			hookNames, groupNames := cfg.Names()

			if jsonOutput {
				payload := struct {
					Config string         `json:"config"`
					Hooks  []hookDisplay  `json:"hooks"`
					Groups []groupDisplay `json:"groups"`
				}{Config: configPath}
				for _, name := range hookNames {
					h := cfg.Hooks[name]
					payload.Hooks = append(payload.Hooks, hookDisplay{
						Name:               name,
						Description:        h.Description,
						Files:              h.Files,
						DependsOn:          h.DependsOn,
						ModifiesRepository: h.ModifiesRepository,
						RunAlways:          h.RunAlways,
					})
				}
				for _, name := range groupNames {
					g := cfg.Groups[name]
					payload.Groups = append(payload.Groups, groupDisplay{
						Name:        name,
						Description: g.Description,
						Includes:    g.Includes,
						Execution:   g.Execution.String(),
					})
				}
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			}

			out.Printf("%s\n\n", configPath)
			if len(hookNames) > 0 {
				out.Println("Hooks:")
				for _, name := range hookNames {
					h := cfg.Hooks[name]
					line := "  " + name
					if h.Description != "" {
						line += "  " + h.Description
					}
					var attrs []string
					if len(h.Files) > 0 {
						attrs = append(attrs, "files: "+strings.Join(h.Files, ", "))
					}
					if len(h.DependsOn) > 0 {
						attrs = append(attrs, "depends on: "+strings.Join(h.DependsOn, ", "))
					}
					if h.ModifiesRepository {
						attrs = append(attrs, "modifies repository")
					}
					if h.RunAlways {
						attrs = append(attrs, "always runs")
					}
					if len(attrs) > 0 {
						line += "  (" + strings.Join(attrs, "; ") + ")"
					}
					out.Println(line)
				}
			}
			if len(groupNames) > 0 {
				out.Println("Groups:")
				for _, name := range groupNames {
					g := cfg.Groups[name]
					out.Printf("  %s  [%s]  includes: %s\n", name, g.Execution, strings.Join(g.Includes, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

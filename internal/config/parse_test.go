package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseShellHook(t *testing.T) {
	cfg, err := Parse([]byte(`
[hooks.lint]
command = "cargo clippy"
description = "Run linting"
`), "hooks.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	hook, ok := cfg.Hooks["lint"]
	if !ok {
		t.Fatal("hook lint not parsed")
	}
	if hook.Command.Shell != "cargo clippy" {
		t.Errorf("Shell = %q", hook.Command.Shell)
	}
	if hook.Command.Args != nil {
		t.Errorf("Args = %v, want nil", hook.Command.Args)
	}
	if hook.Description != "Run linting" {
		t.Errorf("Description = %q", hook.Description)
	}
	if hook.ModifiesRepository || hook.RunAlways {
		t.Error("boolean fields should default to false")
	}
	if hook.Files != nil || hook.DependsOn != nil {
		t.Error("list fields should default to nil")
	}
}

func TestParseArgvHook(t *testing.T) {
	cfg, err := Parse([]byte(`
[hooks.format]
command = ["cargo", "fmt", "--all"]
modifies_repository = true
`), "hooks.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	hook := cfg.Hooks["format"]
	want := []string{"cargo", "fmt", "--all"}
	if len(hook.Command.Args) != len(want) {
		t.Fatalf("Args = %v, want %v", hook.Command.Args, want)
	}
	for i := range want {
		if hook.Command.Args[i] != want[i] {
			t.Errorf("Args[%d] = %q, want %q", i, hook.Command.Args[i], want[i])
		}
	}
	if !hook.ModifiesRepository {
		t.Error("ModifiesRepository = false, want true")
	}
}

func TestParseHookFullMetadata(t *testing.T) {
	cfg, err := Parse([]byte(`
[hooks.test]
command = "cargo test"
workdir = "crates/core"
files = ["**/*.rs", "Cargo.toml"]
depends_on = ["lint"]

[hooks.test.env]
RUST_BACKTRACE = "1"
TARGET = "{HOOK_DIR}/target"
`), "hooks.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	hook := cfg.Hooks["test"]
	if hook.Workdir != "crates/core" {
		t.Errorf("Workdir = %q", hook.Workdir)
	}
	if len(hook.Files) != 2 || hook.Files[0] != "**/*.rs" {
		t.Errorf("Files = %v", hook.Files)
	}
	if len(hook.DependsOn) != 1 || hook.DependsOn[0] != "lint" {
		t.Errorf("DependsOn = %v", hook.DependsOn)
	}
	if hook.Env["RUST_BACKTRACE"] != "1" || hook.Env["TARGET"] != "{HOOK_DIR}/target" {
		t.Errorf("Env = %v", hook.Env)
	}
}

func TestParseGroup(t *testing.T) {
	cfg, err := Parse([]byte(`
[groups.pre-commit]
includes = ["format", "lint", "quality"]
description = "Pre-commit checks"
execution = "parallel"
`), "hooks.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	group, ok := cfg.Groups["pre-commit"]
	if !ok {
		t.Fatal("group pre-commit not parsed")
	}
	if len(group.Includes) != 3 {
		t.Errorf("Includes = %v", group.Includes)
	}
	if group.Execution != Parallel {
		t.Errorf("Execution = %v, want Parallel", group.Execution)
	}
}

func TestParseGroupLegacyParallelHint(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ExecutionStrategy
	}{
		{name: "parallel true", content: "[groups.g]\nincludes = []\nparallel = true\n", want: Parallel},
		{name: "parallel false", content: "[groups.g]\nincludes = []\nparallel = false\n", want: Sequential},
		{name: "execution wins", content: "[groups.g]\nincludes = []\nexecution = \"force-parallel\"\nparallel = false\n", want: ForceParallel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.content), "hooks.toml")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := cfg.Groups["g"].Execution; got != tt.want {
				t.Errorf("Execution = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing command",
			content: "[hooks.broken]\ndescription = \"no command\"\n",
			wantErr: "has no command",
		},
		{
			name:    "empty command list",
			content: "[hooks.broken]\ncommand = []\n",
			wantErr: "empty command list",
		},
		{
			name:    "files and run_always conflict",
			content: "[hooks.broken]\ncommand = \"x\"\nfiles = [\"*.go\"]\nrun_always = true\n",
			wantErr: "cannot have both",
		},
		{
			name:    "invalid strategy",
			content: "[groups.g]\nincludes = []\nexecution = \"turbo\"\n",
			wantErr: "invalid execution strategy",
		},
		{
			name:    "non-string depends_on",
			content: "[hooks.broken]\ncommand = \"x\"\ndepends_on = [1]\n",
			wantErr: "depends_on",
		},
		{
			name:    "malformed toml",
			content: "[hooks.broken\ncommand = \"x\"\n",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "hooks.toml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWithImports(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(root, "services")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "shared.toml"), []byte(`
[hooks.lint]
command = "shared lint"

[hooks.audit]
command = "shared audit"
`), 0o644); err != nil {
		t.Fatal(err)
	}

	path := writeConfig(t, sub, `
imports = ["../shared.toml"]

[hooks.lint]
command = "local lint"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Importing file wins on conflicts; imported-only names survive.
	if got := cfg.Hooks["lint"].Command.Shell; got != "local lint" {
		t.Errorf("lint command = %q, want local override", got)
	}
	if got := cfg.Hooks["audit"].Command.Shell; got != "shared audit" {
		t.Errorf("audit command = %q", got)
	}
}

func TestLoadImportCycle(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "a.toml"), []byte("imports = [\"b.toml\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.toml"), []byte("imports = [\"a.toml\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(filepath.Join(root, "a.toml"))
	if err == nil || !strings.Contains(err.Error(), "import cycle") {
		t.Errorf("error = %v, want import cycle", err)
	}
}

func TestLoadImportOutsideRepoRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "repo")
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "outside.toml"), []byte("[hooks.x]\ncommand = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := writeConfig(t, root, "imports = [\"../outside.toml\"]\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "outside repository root") {
		t.Errorf("error = %v, want outside-repository-root", err)
	}
}

func TestLoadAbsoluteImportRejected(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "imports = [\"/etc/hooks.toml\"]\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "absolute import") {
		t.Errorf("error = %v, want absolute-import rejection", err)
	}
}

func TestHasEvent(t *testing.T) {
	cfg := &Config{
		Hooks:  map[string]HookDefinition{"lint": {}},
		Groups: map[string]HookGroup{"pre-commit": {}},
	}

	if !cfg.HasEvent("lint") || !cfg.HasEvent("pre-commit") {
		t.Error("HasEvent should find both hooks and groups")
	}
	if cfg.HasEvent("pre-push") {
		t.Error("HasEvent found an undefined event")
	}
}

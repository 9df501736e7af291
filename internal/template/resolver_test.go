package template

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestResolveHookDir(t *testing.T) {
	r := New("/p/project", "/p/project")

	got, err := r.Resolve("{HOOK_DIR}/target")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasSuffix(got, "/project/target") {
		t.Errorf("resolved = %q, want suffix %q", got, "/project/target")
	}
}

func TestResolveMultipleVariables(t *testing.T) {
	r := New("/repo/svc", "/repo/svc/api")

	got, err := r.Resolve("cd {WORKING_DIR} && echo {PROJECT_NAME}")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "cd /repo/svc/api && echo svc"
	if got != want {
		t.Errorf("resolved = %q, want %q", got, want)
	}
}

func TestResolveUnknownVariableFails(t *testing.T) {
	// Even a real environment variable must not leak through.
	t.Setenv("DANGEROUS_VAR", "oops")
	r := New("/p", "/p")

	_, err := r.Resolve("echo {DANGEROUS_VAR}")
	if err == nil {
		t.Fatal("expected error for unknown variable")
	}

	var unknownErr *UnknownVariableError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error type = %T, want *UnknownVariableError", err)
	}
	if unknownErr.Name != "DANGEROUS_VAR" {
		t.Errorf("Name = %q, want %q", unknownErr.Name, "DANGEROUS_VAR")
	}
	if len(unknownErr.Valid) == 0 {
		t.Error("expected the valid variable names to be listed")
	}
	if !strings.Contains(err.Error(), "HOOK_DIR") {
		t.Errorf("error %q should list valid names", err)
	}
}

func TestResolveUnclosedBrace(t *testing.T) {
	r := New("/p", "/p")

	_, err := r.Resolve("echo {HOOK_DIR")
	if err == nil {
		t.Fatal("expected error for unclosed brace")
	}
	var unclosedErr *UnclosedError
	if !errors.As(err, &unclosedErr) {
		t.Fatalf("error type = %T, want *UnclosedError", err)
	}
}

func TestResolveNoPlaceholders(t *testing.T) {
	r := New("/p", "/p")
	got, err := r.Resolve("plain command")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "plain command" {
		t.Errorf("resolved = %q, want unchanged input", got)
	}
}

func TestRepoRelativeVariants(t *testing.T) {
	r := New("/repo/services/api", "/repo/services/api")
	r.SetRepoRoot("/repo")

	got, err := r.Resolve("{HOOK_DIR_REL}:{WORKING_DIR_REL}")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "services/api:services/api"
	if got != want {
		t.Errorf("resolved = %q, want %q", got, want)
	}
}

func TestWorktreeVariables(t *testing.T) {
	r := New("/wt/feature", "/wt/feature")
	r.SetWorktree("/repo/.git", true, "feature")

	got, err := r.Resolve("{IS_WORKTREE} {WORKTREE_NAME} {COMMON_DIR}")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := "true feature /repo/.git"
	if got != want {
		t.Errorf("resolved = %q, want %q", got, want)
	}
}

func TestWorktreeNameAbsentOutsideWorktree(t *testing.T) {
	r := New("/repo", "/repo")
	r.SetWorktree("/repo/.git", false, "")

	if _, err := r.Resolve("{WORKTREE_NAME}"); err == nil {
		t.Fatal("expected error: WORKTREE_NAME must not resolve outside a worktree")
	}

	got, err := r.Resolve("{IS_WORKTREE}")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "false" {
		t.Errorf("IS_WORKTREE = %q, want %q", got, "false")
	}
}

func TestChangedFilesVariables(t *testing.T) {
	r := New("/p", "/p")
	r.SetChangedFiles([]string{"src/a.rs", "src/b.rs"}, "/tmp/changed-123")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "space joined", input: "{CHANGED_FILES}", want: "src/a.rs src/b.rs"},
		{name: "newline joined", input: "{CHANGED_FILES_LIST}", want: "src/a.rs\nsrc/b.rs"},
		{name: "file path", input: "{CHANGED_FILES_FILE}", want: "/tmp/changed-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolved = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChangedFilesDefaultEmpty(t *testing.T) {
	r := New("/p", "/p")
	got, err := r.Resolve("[{CHANGED_FILES}]")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "[]" {
		t.Errorf("resolved = %q, want %q", got, "[]")
	}
}

func TestResolveArgs(t *testing.T) {
	r := New("/p/project", "/p/project")

	args, err := r.ResolveArgs([]string{"make", "-C", "{HOOK_DIR}", "build"})
	if err != nil {
		t.Fatalf("ResolveArgs: %v", err)
	}
	if args[2] != "/p/project" {
		t.Errorf("args[2] = %q, want %q", args[2], "/p/project")
	}
	if args[0] != "make" || args[3] != "build" {
		t.Errorf("literal args changed: %v", args)
	}
}

func TestResolveEnv(t *testing.T) {
	r := New("/p/project", "/p/project")

	env, err := r.ResolveEnv(map[string]string{
		"BUILD_DIR": "{HOOK_DIR}/target",
		"STATIC":    "value",
	})
	if err != nil {
		t.Fatalf("ResolveEnv: %v", err)
	}
	if env["BUILD_DIR"] != "/p/project/target" {
		t.Errorf("BUILD_DIR = %q", env["BUILD_DIR"])
	}
	if env["STATIC"] != "value" {
		t.Errorf("STATIC = %q", env["STATIC"])
	}
}

func TestHomeDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	r := New("/p", "/p")
	got, err := r.Resolve("{HOME_DIR}")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != home {
		t.Errorf("HOME_DIR = %q, want %q", got, home)
	}
}

package git

import (
	"context"
	"os/exec"

	"github.com/workhelix/peter-hook/internal/cmd"
)

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// outputGit executes a git command with context support and verbose
// logging, returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
}

// CheckGit verifies that the git binary is available on PATH.
func CheckGit() error {
	_, err := exec.LookPath("git")
	return err
}

package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// WorktreeContext describes the repository a hook run operates in.
// It is read-only input to template resolution and hierarchical grouping.
type WorktreeContext struct {
	// IsWorktree is true inside a linked worktree, false in the main
	// working tree.
	IsWorktree bool
	// WorktreeName is the linked worktree's name, empty in the main
	// working tree.
	WorktreeName string
	// RepoRoot is the top-level directory of the current working tree.
	RepoRoot string
	// CommonDir is the .git directory shared across all worktrees.
	CommonDir string
	// WorkingDir is the directory the command was invoked from.
	WorkingDir string
}

// FindWorktreeContext discovers the repository context for dir.
func FindWorktreeContext(ctx context.Context, dir string) (*WorktreeContext, error) {
	root, err := outputGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %v", err)
	}
	repoRoot := strings.TrimSpace(string(root))

	gitDirOut, err := outputGit(ctx, dir, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve git dir: %v", err)
	}
	gitDir := strings.TrimSpace(string(gitDirOut))

	commonOut, err := outputGit(ctx, dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve git common dir: %v", err)
	}
	commonDir := strings.TrimSpace(string(commonOut))
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(repoRoot, commonDir)
	}
	commonDir = filepath.Clean(commonDir)

	wc := &WorktreeContext{
		RepoRoot:   repoRoot,
		CommonDir:  commonDir,
		WorkingDir: dir,
		IsWorktree: gitDir != commonDir,
	}

	// Linked worktree git dirs live at <common>/worktrees/<name>.
	if wc.IsWorktree {
		if rel, err := filepath.Rel(filepath.Join(commonDir, "worktrees"), gitDir); err == nil && !strings.HasPrefix(rel, "..") {
			wc.WorktreeName = rel
		}
	}

	return wc, nil
}

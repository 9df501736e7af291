package git

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ChangeKind selects how changed files are detected.
type ChangeKind int

const (
	// WorkingTree detects modified and untracked files (pre-commit style).
	WorkingTree ChangeKind = iota
	// Staged detects files in the index.
	Staged
	// Push detects files changed relative to the remote branch being
	// pushed to.
	Push
	// CommitRange detects files changed in a commit range.
	CommitRange
)

// ChangeMode describes a change-detection request.
type ChangeMode struct {
	Kind         ChangeKind
	Remote       string // Push only
	RemoteBranch string // Push only
	From         string // CommitRange only
	To           string // CommitRange only
}

// WorkingTreeMode detects working-tree changes.
func WorkingTreeMode() ChangeMode { return ChangeMode{Kind: WorkingTree} }

// StagedMode detects staged changes.
func StagedMode() ChangeMode { return ChangeMode{Kind: Staged} }

// PushMode detects changes being pushed to remote/branch.
func PushMode(remote, branch string) ChangeMode {
	return ChangeMode{Kind: Push, Remote: remote, RemoteBranch: branch}
}

// CommitRangeMode detects changes between two commits.
func CommitRangeMode(from, to string) ChangeMode {
	return ChangeMode{Kind: CommitRange, From: from, To: to}
}

// ChangedFiles returns the repo-relative paths changed under the given
// mode, sorted and deduplicated.
func ChangedFiles(ctx context.Context, repoRoot string, mode ChangeMode) ([]string, error) {
	switch mode.Kind {
	case WorkingTree:
		return workingTreeChanges(ctx, repoRoot)
	case Staged:
		out, err := outputGit(ctx, repoRoot, "diff", "--cached", "--name-only")
		if err != nil {
			return nil, fmt.Errorf("failed to detect staged changes: %w", err)
		}
		return splitFiles(string(out)), nil
	case Push:
		return pushChanges(ctx, repoRoot, mode.Remote, mode.RemoteBranch)
	case CommitRange:
		out, err := outputGit(ctx, repoRoot, "diff", "--name-only", mode.From+".."+mode.To)
		if err != nil {
			return nil, fmt.Errorf("failed to detect changes in %s..%s: %w", mode.From, mode.To, err)
		}
		return splitFiles(string(out)), nil
	default:
		return nil, fmt.Errorf("unknown change detection mode %d", mode.Kind)
	}
}

// workingTreeChanges lists modified, staged, and untracked files via
// git status, which works even before the first commit.
func workingTreeChanges(ctx context.Context, repoRoot string) ([]string, error) {
	out, err := outputGit(ctx, repoRoot, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to detect working tree changes: %w", err)
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		// Renames are reported as "old -> new"; the new path is the
		// one that exists.
		if idx := strings.Index(path, " -> "); idx != -1 {
			path = path[idx+4:]
		}
		path = strings.Trim(path, `"`)
		files = append(files, path)
	}
	return dedupe(files), nil
}

// pushChanges diffs against the remote tracking ref. For a branch the
// remote has never seen, every tracked file counts as changed.
func pushChanges(ctx context.Context, repoRoot, remote, branch string) ([]string, error) {
	ref := remote + "/" + branch
	out, err := outputGit(ctx, repoRoot, "diff", "--name-only", ref+"...HEAD")
	if err == nil {
		return splitFiles(string(out)), nil
	}

	out, lsErr := outputGit(ctx, repoRoot, "ls-files")
	if lsErr != nil {
		return nil, fmt.Errorf("failed to detect push changes against %s: %w", ref, err)
	}
	return splitFiles(string(out)), nil
}

func splitFiles(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return dedupe(files)
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	var out []string
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

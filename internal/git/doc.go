// Package git supplies the repository context peter-hook runs in:
// repository and worktree discovery, changed-file detection, and glob
// matching of changed files against hook patterns.
//
// All git interaction happens through the git CLI (git -C <dir> ...);
// the hook engine itself only ever consumes the produced values.
package git

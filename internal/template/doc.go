// Package template expands a whitelisted set of {NAME} placeholders in
// hook commands, working directories, and environment values.
//
// Only variables explicitly registered on a Resolver can be referenced.
// The resolver never reads the process environment, so a hook command
// cannot smuggle in arbitrary values through {SOME_ENV_VAR}.
//
// Variables available for every hook:
//
//   - {HOOK_DIR}: directory of the hooks.toml the hook came from
//   - {WORKING_DIR}: the hook's resolved working directory
//   - {REPO_ROOT}: repository root
//   - {HOOK_DIR_REL}, {WORKING_DIR_REL}: repo-relative variants
//   - {PROJECT_NAME}: basename of the config directory
//   - {HOME_DIR}: the user's home directory
//   - {CHANGED_FILES}: space-joined changed files relevant to the hook
//   - {CHANGED_FILES_LIST}: newline-joined variant
//   - {CHANGED_FILES_FILE}: path to a temp file holding the newline list
//
// Additionally, when running inside a worktree-aware context:
//
//   - {COMMON_DIR}: the shared .git directory across worktrees
//   - {IS_WORKTREE}: "true" or "false"
//   - {WORKTREE_NAME}: worktree name, only set inside a linked worktree
package template

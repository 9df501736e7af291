package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Variable names recognized by the resolver.
const (
	VarHookDir          = "HOOK_DIR"
	VarWorkingDir       = "WORKING_DIR"
	VarRepoRoot         = "REPO_ROOT"
	VarHookDirRel       = "HOOK_DIR_REL"
	VarWorkingDirRel    = "WORKING_DIR_REL"
	VarProjectName      = "PROJECT_NAME"
	VarHomeDir          = "HOME_DIR"
	VarChangedFiles     = "CHANGED_FILES"
	VarChangedFilesList = "CHANGED_FILES_LIST"
	VarChangedFilesFile = "CHANGED_FILES_FILE"
	VarCommonDir        = "COMMON_DIR"
	VarIsWorktree       = "IS_WORKTREE"
	VarWorktreeName     = "WORKTREE_NAME"
)

// UnknownVariableError reports a reference to a variable outside the
// whitelist, listing every name that would have been valid.
type UnknownVariableError struct {
	Name  string
	Valid []string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown template variable {%s} (valid: %s)", e.Name, strings.Join(e.Valid, ", "))
}

// UnclosedError reports a '{' without a matching '}'.
type UnclosedError struct {
	Input string
}

func (e *UnclosedError) Error() string {
	return fmt.Sprintf("unclosed template variable in %q", e.Input)
}

// Resolver expands {NAME} placeholders against a fixed variable set.
// A resolver is built once per hook execution and is not safe for
// concurrent mutation, only for concurrent Resolve calls.
type Resolver struct {
	vars map[string]string
}

// New creates a resolver scoped to a hook's source configuration
// directory and its working directory.
func New(configDir, workingDir string) *Resolver {
	vars := map[string]string{
		VarHookDir:          configDir,
		VarWorkingDir:       workingDir,
		VarProjectName:      filepath.Base(configDir),
		VarChangedFiles:     "",
		VarChangedFilesList: "",
		VarChangedFilesFile: "",
	}
	if home, err := os.UserHomeDir(); err == nil {
		vars[VarHomeDir] = home
	}
	return &Resolver{vars: vars}
}

// SetRepoRoot registers REPO_ROOT and the repo-relative path variants.
func (r *Resolver) SetRepoRoot(root string) {
	r.vars[VarRepoRoot] = root
	if rel, err := filepath.Rel(root, r.vars[VarHookDir]); err == nil && !strings.HasPrefix(rel, "..") {
		r.vars[VarHookDirRel] = rel
	}
	if rel, err := filepath.Rel(root, r.vars[VarWorkingDir]); err == nil && !strings.HasPrefix(rel, "..") {
		r.vars[VarWorkingDirRel] = rel
	}
}

// SetWorktree registers the worktree-aware variables.
// WORKTREE_NAME is only registered when inside a linked worktree.
func (r *Resolver) SetWorktree(commonDir string, isWorktree bool, worktreeName string) {
	r.vars[VarCommonDir] = commonDir
	r.vars[VarIsWorktree] = fmt.Sprintf("%t", isWorktree)
	if isWorktree && worktreeName != "" {
		r.vars[VarWorktreeName] = worktreeName
	}
}

// SetChangedFiles registers the changed-file variables. list is the
// newline-joined form, file the path of the temp file carrying it
// (empty if the file could not be created).
func (r *Resolver) SetChangedFiles(files []string, file string) {
	r.vars[VarChangedFiles] = strings.Join(files, " ")
	r.vars[VarChangedFilesList] = strings.Join(files, "\n")
	r.vars[VarChangedFilesFile] = file
}

// Resolve expands all {NAME} placeholders in input.
// Any brace-delimited name not registered on the resolver is an error,
// even if an OS environment variable of that name exists.
func (r *Resolver) Resolve(input string) (string, error) {
	var b strings.Builder
	rest := input
	for {
		start := strings.IndexByte(rest, '{')
		if start == -1 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])

		end := strings.IndexByte(rest[start:], '}')
		if end == -1 {
			return "", &UnclosedError{Input: input}
		}
		name := rest[start+1 : start+end]
		value, ok := r.vars[name]
		if !ok {
			return "", &UnknownVariableError{Name: name, Valid: r.names()}
		}
		b.WriteString(value)
		rest = rest[start+end+1:]
	}
}

// ResolveArgs expands placeholders in each argv element independently.
func (r *Resolver) ResolveArgs(args []string) ([]string, error) {
	resolved := make([]string, len(args))
	for i, arg := range args {
		v, err := r.Resolve(arg)
		if err != nil {
			return nil, err
		}
		resolved[i] = v
	}
	return resolved, nil
}

// ResolveEnv expands placeholders in every key and value of the map.
func (r *Resolver) ResolveEnv(env map[string]string) (map[string]string, error) {
	resolved := make(map[string]string, len(env))
	for k, v := range env {
		rk, err := r.Resolve(k)
		if err != nil {
			return nil, err
		}
		rv, err := r.Resolve(v)
		if err != nil {
			return nil, err
		}
		resolved[rk] = rv
	}
	return resolved, nil
}

// Variables returns a copy of the registered variables, for listings.
func (r *Resolver) Variables() map[string]string {
	out := make(map[string]string, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

func (r *Resolver) names() []string {
	names := make([]string, 0, len(r.vars))
	for name := range r.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import "fmt"

// FileName is the configuration file peter-hook looks for in each directory.
const FileName = "hooks.toml"

// Command is a hook's executable: either a shell string or an argv list.
// Exactly one of the two is set.
type Command struct {
	Shell string
	Args  []string
}

// IsShell reports whether the command runs through a shell.
func (c Command) IsShell() bool {
	return c.Shell != ""
}

// HookDefinition is a single named unit of work. Immutable once parsed.
type HookDefinition struct {
	Command            Command
	Workdir            string
	Env                map[string]string
	Description        string
	ModifiesRepository bool
	Files              []string // nil means "no file filter declared"
	RunAlways          bool
	DependsOn          []string
}

// HookGroup is a named alias for an ordered list of hooks and/or groups.
type HookGroup struct {
	Includes    []string
	Description string
	Execution   ExecutionStrategy
}

// ExecutionStrategy selects how a resolved hook set is scheduled.
type ExecutionStrategy int

const (
	// Sequential runs hooks one at a time and never stops early.
	Sequential ExecutionStrategy = iota
	// Parallel runs non-mutating hooks concurrently, then mutating
	// hooks one at a time.
	Parallel
	// ForceParallel runs everything concurrently, ignoring the
	// modifies_repository safety rule.
	ForceParallel
)

// ParseStrategy parses the execution strategy names accepted in hooks.toml.
func ParseStrategy(s string) (ExecutionStrategy, error) {
	switch s {
	case "sequential":
		return Sequential, nil
	case "parallel":
		return Parallel, nil
	case "force-parallel":
		return ForceParallel, nil
	default:
		return Sequential, fmt.Errorf("invalid execution strategy %q: must be \"sequential\", \"parallel\", or \"force-parallel\"", s)
	}
}

func (s ExecutionStrategy) String() string {
	switch s {
	case Parallel:
		return "parallel"
	case ForceParallel:
		return "force-parallel"
	default:
		return "sequential"
	}
}

// Config is a parsed configuration unit: the hooks and groups of one
// hooks.toml (with any imports already merged in).
type Config struct {
	Hooks  map[string]HookDefinition
	Groups map[string]HookGroup
}

// HasEvent reports whether the config defines a hook or group with the
// given name.
func (c *Config) HasEvent(name string) bool {
	if _, ok := c.Hooks[name]; ok {
		return true
	}
	_, ok := c.Groups[name]
	return ok
}

// Names returns all hook and group names, hooks first.
func (c *Config) Names() (hooks, groups []string) {
	for name := range c.Hooks {
		hooks = append(hooks, name)
	}
	for name := range c.Groups {
		groups = append(groups, name)
	}
	return hooks, groups
}

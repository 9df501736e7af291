// Package config defines the hooks.toml configuration model and parser.
//
// A hooks.toml declares named hooks and named groups:
//
//	[hooks.lint]
//	command = "cargo clippy"
//	files = ["**/*.rs"]
//
//	[hooks.format]
//	command = ["cargo", "fmt"]
//	modifies_repository = true
//
//	[groups.pre-commit]
//	includes = ["format", "lint"]
//	execution = "parallel"
//
// A hook's command is either a single shell string (run through "sh -c")
// or an argv list (run directly), never both. Groups alias an ordered
// list of hook or group names and carry an execution strategy.
//
// Configs may import other configs with imports = ["../shared.toml"].
// Imports are relative paths only, must stay inside the repository root,
// and merge name-by-name with the importing file winning on conflict.
package config

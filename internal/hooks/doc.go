// Package hooks is the engine of peter-hook: it resolves which hooks
// apply to a git event, orders them by declared dependencies, and
// executes them with template substitution and changed-file awareness.
//
// # Resolution
//
// A Resolver walks up from a starting directory (never past the
// repository root) to the nearest hooks.toml. An event name matches
// either a hook directly or a group, whose includes expand recursively
// into a flat, name-unique hook set. Hierarchical resolution routes
// each changed file to the nearest config governing it, falling back to
// ancestor configs for events a nearer config does not define.
//
// # Dependencies
//
// Hooks may declare depends_on edges. The dependency resolver rejects
// cycles, topologically sorts the selection, and groups it into phases
// that are safe to run in parallel.
//
// # Execution
//
// Hooks run as OS processes under one of three strategies: sequential,
// parallel (non-mutating hooks concurrently, then mutating hooks one at
// a time), or force-parallel. A hook marked modifies_repository never
// runs concurrently with any other hook except under force-parallel.
package hooks

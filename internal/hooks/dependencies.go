package hooks

import (
	"fmt"
	"slices"
)

// ExecutionPlan is an ordered list of phases. Phases run strictly one
// after another; hooks within a phase may run concurrently.
type ExecutionPlan struct {
	Phases []ExecutionPhase
}

// ExecutionPhase is a batch of hooks with no ordering constraints
// between them.
type ExecutionPhase struct {
	Hooks    []string
	Parallel bool
}

// Names returns every hook in plan order.
func (p *ExecutionPlan) Names() []string {
	var names []string
	for _, phase := range p.Phases {
		names = append(names, phase.Hooks...)
	}
	return names
}

// CycleError reports a dependency cycle by one of its edges.
type CycleError struct {
	Hook      string
	DependsOn string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s depends on %s", e.Hook, e.DependsOn)
}

// DependencyResolver turns declared depends_on edges into an execution
// plan. Register every hook with AddHook, then Resolve a selection.
type DependencyResolver struct {
	deps map[string][]string
}

// NewDependencyResolver creates an empty resolver.
func NewDependencyResolver() *DependencyResolver {
	return &DependencyResolver{deps: make(map[string][]string)}
}

// AddHook registers a hook and its dependencies. Registering twice
// replaces the previous edges.
func (r *DependencyResolver) AddHook(name string, dependsOn []string) {
	r.deps[name] = dependsOn
}

// Resolve produces a phased plan for the selected hooks. Every selected
// name must be registered; a cycle is an error. A dependency naming an
// unregistered hook is ignored, the same as an edge leaving the
// selection, so hooks filtered out earlier never block the rest. Ties
// in the topological order break lexicographically so plans are
// deterministic.
func (r *DependencyResolver) Resolve(names []string) (*ExecutionPlan, error) {
	selected := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.deps[name]; !ok {
			return nil, fmt.Errorf("unknown hook in dependency graph: %s", name)
		}
		selected[name] = true
	}

	if err := r.detectCycles(names); err != nil {
		return nil, err
	}

	order, err := r.topoSort(names, selected)
	if err != nil {
		return nil, err
	}

	return buildPhases(order, r.deps), nil
}

// detectCycles runs a DFS with a recursion stack over the selection,
// following registered edges even through hooks outside it.
// Unregistered dependencies have no edges and terminate immediately.
func (r *DependencyResolver) detectCycles(names []string) error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int)

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = inStack
		for _, dep := range r.deps[name] {
			switch state[dep] {
			case inStack:
				return &CycleError{Hook: name, DependsOn: dep}
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range names {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort is Kahn's algorithm over the selected subgraph. Edges to
// hooks outside the selection do not constrain the order.
func (r *DependencyResolver) topoSort(names []string, selected map[string]bool) ([]string, error) {
	inDegree := make(map[string]int, len(names))
	dependents := make(map[string][]string)
	for _, name := range names {
		inDegree[name] = 0
	}
	for _, name := range names {
		for _, dep := range r.deps[name] {
			if selected[dep] {
				inDegree[name]++
				dependents[dep] = append(dependents[dep], name)
			}
		}
	}

	var ready []string
	for _, name := range names {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(names))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
				slices.Sort(ready)
			}
		}
	}

	if len(order) != len(names) {
		return nil, fmt.Errorf("dependency graph could not be fully ordered")
	}
	return order, nil
}

// buildPhases groups the sorted order into phases. Only hooks with no
// declared dependencies at all share a phase; a hook with any
// depends_on edge gets a phase of its own. Conservative, but safe
// without tracking cross-phase completion per edge.
func buildPhases(order []string, deps map[string][]string) *ExecutionPlan {
	plan := &ExecutionPlan{}
	var current []string

	flush := func() {
		if len(current) > 0 {
			plan.Phases = append(plan.Phases, ExecutionPhase{Hooks: current, Parallel: true})
			current = nil
		}
	}

	for _, name := range order {
		if len(deps[name]) == 0 {
			current = append(current, name)
			continue
		}
		flush()
		plan.Phases = append(plan.Phases, ExecutionPhase{Hooks: []string{name}, Parallel: true})
	}
	flush()
	return plan
}

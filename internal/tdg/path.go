// Package tdg builds, per abstract task, the AND/OR graph of its methods
// and subtasks and enumerates every acyclic decomposition path down to
// primitive actions.
package tdg

import "github.com/jvillaverde/missionforge/internal/domain"

// PathStep is one primitive action along a decomposition path, with its
// parameters and literals renamed into the root abstract task's variable
// namespace.
type PathStep struct {
	TaskName      string
	Args          []string
	Preconditions []domain.Literal
	Effects       []domain.Literal
}

// Path is the ordered list of primitive actions obtained by fully expanding
// one method at every level, starting from the root abstract task.
// Immutable after EnumeratePaths returns.
type Path struct {
	Steps []PathStep
}

func concatPaths(a, b Path) Path {
	out := Path{Steps: make([]PathStep, 0, len(a.Steps)+len(b.Steps))}
	out.Steps = append(out.Steps, a.Steps...)
	out.Steps = append(out.Steps, b.Steps...)
	return out
}

// cartesianProduct combines one path choice per subtask, in subtask order,
// into the method's contributed path set for one topological ordering:
// the Cartesian product of per-subtask path sets for that ordering.
func cartesianProduct(perSubtask [][]Path) []Path {
	if len(perSubtask) == 0 {
		return []Path{{}}
	}
	combos := []Path{{}}
	for _, choices := range perSubtask {
		var next []Path
		for _, prefix := range combos {
			for _, choice := range choices {
				next = append(next, concatPaths(prefix, choice))
			}
		}
		combos = next
	}
	return combos
}

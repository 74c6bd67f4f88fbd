package tdg

import (
	"fmt"
	"strings"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

// TDG constructs and enumerates the decomposition paths of one abstract
// task against a frozen registry.
type TDG struct {
	root     *domain.Task
	registry *domain.Registry
}

// New returns a TDG rooted at root, resolved against registry.
func New(root *domain.Task, registry *domain.Registry) *TDG {
	return &TDG{root: root, registry: registry}
}

// EnumeratePaths returns every path from the root reaching only primitive
// leaves, with variables renamed into the root's parameter namespace and
// filtered by per-leaf precondition feasibility against a path-local
// symbolic world.
func (g *TDG) EnumeratePaths() ([]Path, error) {
	identity := make(map[string]string, len(g.root.Params))
	for _, p := range g.root.Params {
		identity[p.Name] = p.Name
	}
	return g.decomposeTask(g.root.Name, identity, worldstate.New(), nil)
}

// decomposeTask expands taskName (either a primitive leaf or an abstract
// task OR-decomposed over its methods), under varMapping (this task's own
// parameter names mapped to the root namespace) and world (the live
// symbolic world at this point in the enclosing ordering).
func (g *TDG) decomposeTask(taskName string, varMapping map[string]string, world *worldstate.World, ancestors []string) ([]Path, error) {
	t, ok := g.registry.Task(taskName)
	if !ok {
		return nil, fmt.Errorf("tdg: unknown task %q referenced during decomposition of %q", taskName, g.root.Name)
	}

	if t.IsPrimitive {
		return g.decomposePrimitive(t, varMapping, world)
	}

	for _, a := range ancestors {
		if a == taskName {
			// Cycle detected by walking the ancestor chain: the revisit
			// yields no paths and that branch is not expanded further.
			return nil, nil
		}
	}
	nextAncestors := append(append([]string{}, ancestors...), taskName)

	var allPaths []Path
	for _, m := range g.registry.MethodsFor(taskName) {
		subMapping := buildMethodMapping(m, t, varMapping)
		paths, err := g.decomposeMethod(m, subMapping, world.Clone(), nextAncestors)
		if err != nil {
			return nil, err
		}
		allPaths = append(allPaths, paths...)
	}
	return allPaths, nil
}

func (g *TDG) decomposePrimitive(t *domain.Task, varMapping map[string]string, world *worldstate.World) ([]Path, error) {
	preconditions := domain.RenameAll(t.Preconditions, varMapping)
	if !world.CheckAllSymbolic(preconditions) {
		return nil, nil
	}
	effects := domain.RenameAll(t.Effects, varMapping)
	world.ApplyAll(effects)

	args := make([]string, len(t.Params))
	for i, p := range t.Params {
		if v, ok := varMapping[p.Name]; ok {
			args[i] = v
		} else {
			args[i] = p.Name
		}
	}

	step := PathStep{TaskName: t.Name, Args: args, Preconditions: preconditions, Effects: effects}
	return []Path{{Steps: []PathStep{step}}}, nil
}

// decomposeMethod enumerates every topological order of m's subtasks
// consistent with its partial order, recursing into each ordering and
// concatenating the resulting path sets.
func (g *TDG) decomposeMethod(m *domain.Method, varMapping map[string]string, world *worldstate.World, ancestors []string) ([]Path, error) {
	subtasks := m.EffectiveSubtasks()
	byID := make(map[string]domain.SubtaskRef, len(subtasks))
	ids := make([]string, len(subtasks))
	for i, st := range subtasks {
		byID[st.ID] = st
		ids[i] = st.ID
	}

	var allPaths []Path
	for _, order := range allTopoOrders(ids, m.EffectiveOrderings()) {
		paths, ok, err := g.decomposeOrdering(order, byID, varMapping, world.Clone(), ancestors)
		if err != nil {
			return nil, err
		}
		if ok {
			allPaths = append(allPaths, paths...)
		}
	}
	return allPaths, nil
}

// decomposeOrdering walks one topological order of a method's subtasks,
// recursing into each in turn and advancing the live world by only the
// first returned subpath's effects before checking the next subtask's
// preconditions: best-effort accumulation, because this is enumeration,
// not planning. The method's actual contribution is the
// Cartesian product of every subtask's full path set for this ordering.
func (g *TDG) decomposeOrdering(order []string, byID map[string]domain.SubtaskRef, varMapping map[string]string, world *worldstate.World, ancestors []string) ([]Path, bool, error) {
	perSubtask := make([][]Path, 0, len(order))
	curWorld := world
	for _, id := range order {
		st := byID[id]
		subtaskDef, ok := g.registry.Task(st.TaskName)
		if !ok {
			return nil, false, fmt.Errorf("tdg: subtask %q references unknown task %q", id, st.TaskName)
		}

		var localMapping map[string]string
		if strings.HasSuffix(st.TaskName, domain.PreconditionActionSuffix) {
			// The synthetic precondition-action subtask (domain.Method.
			// EffectiveSubtasks) carries the method's own preconditions,
			// expressed directly over the method's own variable scope, so
			// there is no positional Args/Params alignment to perform.
			localMapping = varMapping
		} else {
			localMapping = buildSubtaskMapping(st, subtaskDef, varMapping)
		}

		paths, err := g.decomposeTask(st.TaskName, localMapping, curWorld.Clone(), ancestors)
		if err != nil {
			return nil, false, err
		}
		if len(paths) == 0 {
			// No decomposition of this subtask holds under the live
			// world: the ordering is abandoned.
			return nil, false, nil
		}
		perSubtask = append(perSubtask, paths)
		applyFirstPathEffects(curWorld, paths[0])
	}
	return cartesianProduct(perSubtask), true, nil
}

// applyFirstPathEffects advances world by every step's effects in the
// chosen first subpath, in order.
func applyFirstPathEffects(world *worldstate.World, path Path) {
	for _, step := range path.Steps {
		world.ApplyAll(step.Effects)
	}
}

// buildMethodMapping aligns a method's ATArgs (its local names for the
// abstract task's formal parameters, positional) against the abstract
// task's own Params, resolving each into the root namespace via the
// enclosing varMapping, the current depth's local-var to root-var map.
func buildMethodMapping(m *domain.Method, at *domain.Task, varMapping map[string]string) map[string]string {
	out := make(map[string]string, len(m.ATArgs))
	for i, localName := range m.ATArgs {
		if i >= len(at.Params) {
			break
		}
		rootName, ok := varMapping[at.Params[i].Name]
		if !ok {
			rootName = at.Params[i].Name
		}
		out[localName] = rootName
	}
	return out
}

// buildSubtaskMapping aligns a subtask reference's method-local Args
// (positional) against the subtask task definition's own formal Params,
// resolving each into the root namespace via the enclosing (method-scope)
// varMapping. An Arg with no entry in varMapping is treated as a grounded
// constant/object name and passed through unchanged.
func buildSubtaskMapping(st domain.SubtaskRef, subtaskDef *domain.Task, varMapping map[string]string) map[string]string {
	out := make(map[string]string, len(subtaskDef.Params))
	for i, p := range subtaskDef.Params {
		if i >= len(st.Args) {
			break
		}
		localName := st.Args[i]
		if rootName, ok := varMapping[localName]; ok {
			out[p.Name] = rootName
		} else {
			out[p.Name] = localName
		}
	}
	return out
}

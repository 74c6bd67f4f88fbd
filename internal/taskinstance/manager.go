package taskinstance

import (
	"fmt"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

// Manager walks a goal model against a knowledge base and registry,
// producing abstract-task instances.
type Manager struct {
	registry *domain.Registry
	kb       *worldmodel.KnowledgeBase
	cfg      *semconfig.Config
}

// New returns a Manager resolved against registry, kb and cfg.
func New(registry *domain.Registry, kb *worldmodel.KnowledgeBase, cfg *semconfig.Config) *Manager {
	return &Manager{registry: registry, kb: kb, cfg: cfg}
}

// forAllScope is one active Achieve-with-forAll iteration scope, alive for
// exactly the duration of its goal-model subtree: per-depth forAll
// conditions are maintained and evicted when leaving their scope; here
// scope lifetime is simply the Go call stack of walk.
type forAllScope struct {
	IteratedVar  string
	IterationVar string
	Values       []string
}

// Expand walks g depth-first, resolving Query goals and Achieve-forAll
// scopes, and returns every emitted instance keyed by HDDL task name
// alongside the resolved goal-model variable bindings.
func (m *Manager) Expand(g *goalmodel.Graph) (map[string][]*Instance, map[string]ResolvedVar, error) {
	root, ok := g.Node(g.RootID)
	if !ok {
		return nil, nil, fmt.Errorf("taskinstance: graph root %q is not registered", g.RootID)
	}
	instances := map[string][]*Instance{}
	resolvedVars := map[string]ResolvedVar{}
	if err := m.walk(g, root, nil, resolvedVars, instances); err != nil {
		return nil, nil, err
	}
	return instances, resolvedVars, nil
}

func (m *Manager) walk(g *goalmodel.Graph, node *goalmodel.Node, scopes []forAllScope, resolvedVars map[string]ResolvedVar, instances map[string][]*Instance) error {
	if node.Kind == goalmodel.KindGoal {
		switch node.GoalType {
		case goalmodel.GoalQuery:
			if err := m.resolveQueryGoal(node, resolvedVars); err != nil {
				return err
			}
		case goalmodel.GoalAchieve:
			if node.AchieveCondition != nil && node.AchieveCondition.ForAll != nil {
				fa := node.AchieveCondition.ForAll
				rv, ok := resolvedVars[fa.IteratedVar]
				if !ok || !rv.Collective {
					return missionerr.New(missionerr.KindUnboundVariable, node.ID, "forAll iterates over unresolved collection variable %q", fa.IteratedVar)
				}
				scopes = append(scopes, forAllScope{IteratedVar: fa.IteratedVar, IterationVar: fa.IterationVar, Values: rv.Collection})
			}
		}
	}

	if node.Kind == goalmodel.KindTask {
		if err := m.emitInstances(node, scopes, resolvedVars, instances); err != nil {
			return err
		}
	}

	for _, e := range node.Children {
		child, ok := g.Node(e.To)
		if !ok {
			return fmt.Errorf("taskinstance: node %q has edge to unregistered node %q", node.ID, e.To)
		}
		if err := m.walk(g, child, scopes, resolvedVars, instances); err != nil {
			return err
		}
	}
	return nil
}

// resolveQueryGoal evaluates node's QueriedProperty against the knowledge
// base, binding its controlled variable.
func (m *Manager) resolveQueryGoal(node *goalmodel.Node, resolvedVars map[string]ResolvedVar) error {
	qp := node.QueriedProperty
	if qp == nil {
		return missionerr.New(missionerr.KindInvalidQuery, node.ID, "Query goal is missing its QueriedProperty")
	}

	var start *worldmodel.Node
	if qp.QueriedVar == goalmodel.SelfToken {
		start = m.kb.Root
	} else {
		rv, ok := resolvedVars[qp.QueriedVar]
		if !ok || rv.Collective {
			return missionerr.New(missionerr.KindUnboundVariable, node.ID, "Query goal references unresolved scalar variable %q", qp.QueriedVar)
		}
		n, found := findNodeByName(m.kb.Root, rv.Value)
		if !found {
			return missionerr.New(missionerr.KindInvalidQuery, node.ID, "queried variable %q resolves to unknown knowledge-base object %q", qp.QueriedVar, rv.Value)
		}
		start = n
	}

	candidates, err := m.kb.FindByAttrPath(start, qp.Path)
	if err != nil {
		return missionerr.Wrap(missionerr.KindInvalidQuery, node.ID, err, "Query goal path resolution failed")
	}

	filtered := toWorldmodelSelect(qp.Select).Eval(candidates)
	names := make([]string, len(filtered))
	for i, n := range filtered {
		names[i] = n.Name
	}

	if len(node.Controlled) == 0 {
		return missionerr.New(missionerr.KindInvalidQuery, node.ID, "Query goal declares no controlled variable")
	}
	controlledVar := node.Controlled[0]

	if qp.Collection {
		resolvedVars[controlledVar] = ResolvedVar{Collection: names, Collective: true}
		return nil
	}
	if len(names) != 1 {
		return missionerr.New(missionerr.KindInvalidQuery, node.ID, "scalar Query goal expected exactly one result, got %d", len(names))
	}
	resolvedVars[controlledVar] = ResolvedVar{Value: names[0]}
	return nil
}

// emitInstances produces one instance per active forAll iteration
// combination for a task node.
func (m *Manager) emitInstances(node *goalmodel.Node, scopes []forAllScope, resolvedVars map[string]ResolvedVar, instances map[string][]*Instance) error {
	if _, ok := m.registry.Task(node.TaskName); !ok {
		return missionerr.New(missionerr.KindBadDomain, node.ID, "task node references unknown HDDL task %q", node.TaskName)
	}

	if err := m.checkUnsolvedForAll(node, scopes, resolvedVars); err != nil {
		return err
	}

	combos := cartesianScopeCombos(scopes)
	for i, combo := range combos {
		inst, err := m.buildInstance(node, combo, resolvedVars, i, len(combos))
		if err != nil {
			return err
		}
		instances[node.TaskName] = append(instances[node.TaskName], inst)
	}
	return nil
}

func (m *Manager) buildInstance(node *goalmodel.Node, combo map[string]string, resolvedVars map[string]ResolvedVar, idx, total int) (*Instance, error) {
	id := node.ID
	if total > 1 {
		id = fmt.Sprintf("%s_%d", node.ID, idx+1)
	}

	inst := &Instance{
		ID:            id,
		TaskName:      node.TaskName,
		FixedRobotNum: node.RobotNumber.Fixed(),
		RobotNum:      node.RobotNumber,
		VarMapping:    map[string]string{},
	}

	if node.Location != "" {
		if v, ok := resolveVar(node.Location, combo, resolvedVars); ok {
			inst.Location = v
		} else if rv, ok := resolvedVars[node.Location]; ok && rv.Collective {
			inst.LocationValues = rv.Collection
		} else {
			return nil, missionerr.New(missionerr.KindUnboundVariable, node.ID, "task location variable %q has no active binding", node.Location)
		}
	}

	for _, p := range node.Params {
		if v, ok := resolveVar(p, combo, resolvedVars); ok {
			inst.Params = append(inst.Params, v)
		} else {
			inst.Params = append(inst.Params, p)
		}
	}

	for _, vm := range m.cfg.VariableMappingsForTask(node.TaskName) {
		v, ok := resolveVar(vm.GMVar, combo, resolvedVars)
		if !ok {
			return nil, missionerr.New(missionerr.KindUnboundVariable, node.ID, "variable mapping %s↔%s has no active binding for %q", vm.HDDLVar, vm.GMVar, vm.GMVar)
		}
		inst.VarMapping[vm.HDDLVar] = v
	}

	if node.CreationCond != nil && node.CreationCond.Kind == goalmodel.CreationTrigger {
		inst.TriggeringEvents = append(inst.TriggeringEvents, node.CreationCond.EventName)
	}

	return inst, nil
}

// checkUnsolvedForAll enforces the "unsolved forAll" invariant: a task
// inside a forAll scope whose iteration variable it does not itself
// consume (as its Location, a Param, or the GM side of a variable
// mapping) still replicates once per iteration, but only when the task's
// Location variable and the scope's iteration variable resolve to
// knowledge-base kinds that are both configured as location kinds. That
// shared membership is what "compatible through the configured
// high-level-location set" means here; any other combination is a type
// error, since the task would replicate for no resolvable structural reason.
func (m *Manager) checkUnsolvedForAll(node *goalmodel.Node, scopes []forAllScope, resolvedVars map[string]ResolvedVar) error {
	for _, sc := range scopes {
		if m.taskConsumesVar(node, sc.IterationVar) {
			continue
		}

		iterKind, iterOK := m.kindOfKBValue(sc.Values)
		locKind, locOK := m.taskLocationKind(node, resolvedVars)
		compatible := iterOK && locOK && m.cfg.IsLocationKind(iterKind) && m.cfg.IsLocationKind(locKind)
		if !compatible {
			return missionerr.New(missionerr.KindTypeError, node.ID,
				"task %q is inside forAll %q without consuming its iteration variable %q, and its Location type is not compatible with the iteration variable's type through the configured location kinds",
				node.TaskName, sc.IteratedVar, sc.IterationVar)
		}
	}
	return nil
}

// taskConsumesVar reports whether node references name directly, either
// as its Location, one of its Params, or the GM side of one of its
// configured variable mappings.
func (m *Manager) taskConsumesVar(node *goalmodel.Node, name string) bool {
	if node.Location == name {
		return true
	}
	for _, p := range node.Params {
		if p == name {
			return true
		}
	}
	for _, vm := range m.cfg.VariableMappingsForTask(node.TaskName) {
		if vm.GMVar == name {
			return true
		}
	}
	return false
}

// kindOfKBValue returns the knowledge-base kind of the first of values,
// used to characterize a forAll scope's iteration variable by the kind
// of the collection it ranges over.
func (m *Manager) kindOfKBValue(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	n, ok := findNodeByName(m.kb.Root, values[0])
	if !ok {
		return "", false
	}
	return n.Kind, true
}

// taskLocationKind resolves node's Location variable to a knowledge-base
// object and returns its kind, provided the variable is already bound to
// a scalar value independent of the forAll scope under test.
func (m *Manager) taskLocationKind(node *goalmodel.Node, resolvedVars map[string]ResolvedVar) (string, bool) {
	if node.Location == "" {
		return "", false
	}
	rv, ok := resolvedVars[node.Location]
	if !ok || rv.Collective {
		return "", false
	}
	n, ok := findNodeByName(m.kb.Root, rv.Value)
	if !ok {
		return "", false
	}
	return n.Kind, true
}

// cartesianScopeCombos enumerates every combination of values across the
// active forAll scopes. A scope with zero values (an empty iteration
// collection) collapses the result to zero combinations: an Achieve
// goal with an empty iteration collection emits zero task instances.
func cartesianScopeCombos(scopes []forAllScope) []map[string]string {
	combos := []map[string]string{{}}
	for _, sc := range scopes {
		var next []map[string]string
		for _, prefix := range combos {
			for _, v := range sc.Values {
				combo := make(map[string]string, len(prefix)+1)
				for k, val := range prefix {
					combo[k] = val
				}
				combo[sc.IterationVar] = v
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}

// resolveVar resolves name first against the current forAll combo, then
// against previously query-resolved scalar variables.
func resolveVar(name string, combo map[string]string, resolvedVars map[string]ResolvedVar) (string, bool) {
	if v, ok := combo[name]; ok {
		return v, true
	}
	if rv, ok := resolvedVars[name]; ok && !rv.Collective {
		return rv.Value, true
	}
	return "", false
}

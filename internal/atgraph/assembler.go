package atgraph

import (
	"fmt"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
	"github.com/jvillaverde/missionforge/internal/tdg"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

// Assembler walks a runtime-annotation operator tree and produces the
// mission-decomposition graph.
type Assembler struct {
	registry      *domain.Registry
	gmGraph       *goalmodel.Graph
	instancesByID map[string]*taskinstance.Instance
	world         *worldstate.World

	pathCache map[string][]tdg.Path
	g         *Graph
}

// New returns an Assembler. world is the statically-initialized symbolic
// world used for context-condition evaluation; it is never mutated by
// assembly.
func New(registry *domain.Registry, gmGraph *goalmodel.Graph, instances map[string][]*taskinstance.Instance, world *worldstate.World) *Assembler {
	byID := map[string]*taskinstance.Instance{}
	for _, list := range instances {
		for _, inst := range list {
			byID[inst.ID] = inst
		}
	}
	return &Assembler{registry: registry, gmGraph: gmGraph, instancesByID: byID, world: world, pathCache: map[string][]tdg.Path{}}
}

// Assemble builds, evaluates context for, and trims the mission graph
// rooted at tree.
func (a *Assembler) Assemble(tree *runtimeannot.AnnotNode) (*Graph, error) {
	a.g = &Graph{}
	idx, ok, err := a.walk(tree, true, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missionerr.New(missionerr.KindUnsatisfiedContext, "", "the entire mission root was deleted by context evaluation")
	}
	a.g.Root = idx
	if err := a.installExecutionConstraints(); err != nil {
		return nil, err
	}
	return a.trim(), nil
}

// walk assembles n under the group/divisible scope inherited from its
// parent, propagating top-down: if a parent is non-group, the child is
// forced non-group; if the parent is group-but-non-divisible, the child
// cannot override to divisible.
// Returns ok=false when a context condition was unsatisfiable and no
// earlier task could be made to satisfy it, meaning the subtree was
// deleted.
func (a *Assembler) walk(n *runtimeannot.AnnotNode, parentGroup, parentDivisible bool) (int, bool, error) {
	if n == nil {
		return 0, false, nil
	}

	group, divisible := n.Group, n.Divisible
	if !parentGroup {
		group = false
	}
	if parentGroup && !parentDivisible {
		divisible = false
	}

	goalID := n.RelatedGoal
	if n.Kind == runtimeannot.AnnotGoal {
		goalID = n.GoalRef
	}
	depFrom := -1
	if n.Kind != runtimeannot.AnnotTask && goalID != "" {
		holds, from, err := a.checkContext(goalID)
		if err != nil {
			return 0, false, err
		}
		if !holds {
			return 0, false, nil
		}
		depFrom = from
	}

	switch n.Kind {
	case runtimeannot.AnnotTask:
		idx, err := a.assembleTask(n, group, divisible)
		return idx, true, err
	case runtimeannot.AnnotGoal:
		idx := a.g.AddNode(Node{Kind: KindGoal, RelatedGoal: goalID, Group: group, Divisible: divisible})
		if depFrom >= 0 {
			a.g.AddEdge(depFrom, idx, EdgeContextDependency)
		}
		return idx, true, nil
	default: // AnnotOperator, AnnotMeansEnd
		idx := a.g.AddNode(Node{Kind: KindOp, Operator: n.Operator, RelatedGoal: goalID, Group: group, Divisible: divisible})
		if depFrom >= 0 {
			a.g.AddEdge(depFrom, idx, EdgeContextDependency)
		}
		edgeKind := normalEdgeKind(n.Operator)
		for _, c := range n.Children {
			cidx, ok, err := a.walk(c, group, divisible)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				continue
			}
			a.g.AddEdge(idx, cidx, edgeKind)
		}
		return idx, true, nil
	}
}

func (a *Assembler) assembleTask(n *runtimeannot.AnnotNode, group, divisible bool) (int, error) {
	inst, ok := a.instancesByID[n.TaskInstanceID]
	if !ok {
		return 0, fmt.Errorf("atgraph: no task instance %q for leaf %q", n.TaskInstanceID, n.RelatedGoal)
	}
	taskIdx := a.g.AddNode(Node{Kind: KindATask, TaskInstanceID: n.TaskInstanceID, TaskName: n.TaskName, RelatedGoal: n.RelatedGoal, Group: group, Divisible: divisible})

	paths, err := a.pathsFor(n.TaskName)
	if err != nil {
		return 0, err
	}
	for k, p := range paths {
		decIdx := a.g.AddNode(Node{
			Kind:            KindDecomposition,
			TaskInstanceID:  n.TaskInstanceID,
			DecompositionID: fmt.Sprintf("%s|%d", n.TaskInstanceID, k+1),
			Path:            groundPath(p, inst.VarMapping),
			Group:           true,
			Divisible:       true,
		})
		a.g.AddEdge(taskIdx, decIdx, EdgeNormalAND)
	}
	return taskIdx, nil
}

// pathsFor memoizes TDG enumeration per abstract task name: the path set
// is a property of the task definition alone, independent of any one
// instance's variable bindings.
func (a *Assembler) pathsFor(taskName string) ([]tdg.Path, error) {
	if p, ok := a.pathCache[taskName]; ok {
		return p, nil
	}
	t, ok := a.registry.Task(taskName)
	if !ok {
		return nil, missionerr.New(missionerr.KindBadDomain, taskName, "unknown task referenced by runtime annotation")
	}
	paths, err := tdg.New(t, a.registry).EnumeratePaths()
	if err != nil {
		return nil, err
	}
	a.pathCache[taskName] = paths
	return paths, nil
}

// groundPath substitutes an instance's HDDL-variable bindings into a
// generic decomposition path's steps.
func groundPath(p tdg.Path, varMapping map[string]string) tdg.Path {
	out := tdg.Path{Steps: make([]tdg.PathStep, len(p.Steps))}
	for i, s := range p.Steps {
		args := make([]string, len(s.Args))
		for j, arg := range s.Args {
			if v, ok := varMapping[arg]; ok {
				args[j] = v
			} else {
				args[j] = arg
			}
		}
		out.Steps[i] = tdg.PathStep{
			TaskName:      s.TaskName,
			Args:          args,
			Preconditions: domain.RenameAll(s.Preconditions, varMapping),
			Effects:       domain.RenameAll(s.Effects, varMapping),
		}
	}
	return out
}

// checkContext evaluates nodeID's CreationCondition (kind "condition")
// against the live symbolic world. If it fails, it searches already
// emitted ATASK nodes, nearest first, for one whose decomposition effects
// would satisfy it via a left-to-right search for some
// previously-emitted abstract task. holds is false with from==-1 when
// the subtree must be deleted.
func (a *Assembler) checkContext(nodeID string) (holds bool, from int, err error) {
	node, ok := a.gmGraph.Node(nodeID)
	if !ok || node.CreationCond == nil || node.CreationCond.Kind != goalmodel.CreationCondition {
		return true, -1, nil
	}
	cond := node.CreationCond.Condition
	if evalConditionExpr(cond, a.world) {
		return true, -1, nil
	}
	for i := len(a.g.Nodes) - 1; i >= 0; i-- {
		if a.g.Nodes[i].Kind != KindATask {
			continue
		}
		for _, cidx := range a.g.Children(i) {
			dec := a.g.Nodes[cidx]
			if dec.Kind != KindDecomposition {
				continue
			}
			w2 := a.world.Clone()
			for _, step := range dec.Path.Steps {
				w2.ApplyAll(step.Effects)
			}
			if evalConditionExpr(cond, w2) {
				return true, i, nil
			}
		}
	}
	return false, -1, nil
}

func evalConditionExpr(c goalmodel.ConditionExpr, w *worldstate.World) bool {
	switch c.Kind {
	case goalmodel.ConditionLiteral:
		return w.Holds(domain.Literal{Predicate: c.Pred, Args: c.Args, Positive: c.Positive})
	case goalmodel.ConditionAnd:
		for _, ch := range c.Children {
			if !evalConditionExpr(ch, w) {
				return false
			}
		}
		return true
	case goalmodel.ConditionOr:
		for _, ch := range c.Children {
			if evalConditionExpr(ch, w) {
				return true
			}
		}
		return false
	case goalmodel.ConditionNot:
		if len(c.Children) != 1 {
			return false
		}
		return !evalConditionExpr(c.Children[0], w)
	default:
		return true
	}
}

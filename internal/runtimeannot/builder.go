package runtimeannot

import (
	"fmt"

	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
)

// Builder lowers a goal-model tree, together with its already-resolved
// task instances and query bindings, into a runtime-annotation operator
// tree.
type Builder struct {
	graph        *goalmodel.Graph
	instances    map[string][]*taskinstance.Instance
	resolvedVars map[string]taskinstance.ResolvedVar
}

// New returns a Builder over the output of a prior taskinstance.Expand call.
func New(g *goalmodel.Graph, instances map[string][]*taskinstance.Instance, resolvedVars map[string]taskinstance.ResolvedVar) *Builder {
	return &Builder{graph: g, instances: instances, resolvedVars: resolvedVars}
}

// Build produces the full operator tree rooted at the goal model's root.
func (b *Builder) Build() (*AnnotNode, error) {
	root, ok := b.graph.Node(b.graph.RootID)
	if !ok {
		return nil, fmt.Errorf("runtimeannot: graph root %q is not registered", b.graph.RootID)
	}
	return b.build(root)
}

// instancesForTaskNode returns every expanded instance produced for node,
// in forAll iteration order (the order taskinstance.Manager assigned
// "<nodeID>_<n>" suffixes). A node outside any forAll scope has exactly
// one instance, carrying the bare node id.
func (b *Builder) instancesForTaskNode(node *goalmodel.Node) []*taskinstance.Instance {
	var out []*taskinstance.Instance
	for _, inst := range b.instances[node.TaskName] {
		if inst.ID == node.ID || (len(inst.ID) > len(node.ID) && inst.ID[:len(node.ID)+1] == node.ID+"_") {
			out = append(out, inst)
		}
	}
	return out
}

func (b *Builder) build(node *goalmodel.Node) (*AnnotNode, error) {
	if node.Kind == goalmodel.KindTask {
		return b.buildTaskLeaf(node)
	}
	return b.buildGoal(node)
}

func (b *Builder) buildTaskLeaf(node *goalmodel.Node) (*AnnotNode, error) {
	insts := b.instancesForTaskNode(node)
	if len(insts) == 0 {
		// No instances were emitted for this task, e.g. it lives only
		// under an Achieve-forAll whose iteration collection is empty
		// Represent as a no-op, empty PAR.
		return newOperatorNode(OpPar, node.ID), nil
	}
	return &AnnotNode{
		Kind:           AnnotTask,
		TaskInstanceID: insts[0].ID,
		TaskName:       node.TaskName,
		RelatedGoal:    node.ID,
		Group:          node.Group,
		Divisible:      node.Divisible,
	}, nil
}

func (b *Builder) buildGoal(node *goalmodel.Node) (*AnnotNode, error) {
	if node.GoalType == goalmodel.GoalQuery {
		// Query goals resolve as a side effect during task-instance
		// expansion; they remain in the tree only as a dependency
		// marker for whatever runs after them.
		return &AnnotNode{Kind: AnnotGoal, GoalRef: node.ID, RelatedGoal: node.ID, Group: node.Group, Divisible: node.Divisible}, nil
	}

	orDecomp := false
	for _, e := range node.Children {
		if e.Decomp == goalmodel.DecompositionOR {
			orDecomp = true
		}
	}

	parsed, err := ParseAnnotation(node.RuntimeAnnotation)
	if err != nil {
		return nil, fmt.Errorf("runtimeannot: goal %q: %w", node.ID, err)
	}
	if parsed != nil && parsed.Kind == AnnotOperator && parsed.Operator == OpSeq && orDecomp {
		return nil, missionerr.New(missionerr.KindCycleInWrapper, node.ID, "OR-decomposed goal cannot have a sequential runtime annotation")
	}

	var shape *AnnotNode
	switch {
	case len(node.Children) == 0:
		// True leaf goal: nothing further to expand.
		return &AnnotNode{Kind: AnnotGoal, GoalRef: node.ID, RelatedGoal: node.ID, Group: node.Group, Divisible: node.Divisible}, nil
	case parsed != nil:
		shape = parsed
	case orDecomp:
		shape = newOperatorNode(OpOR, node.ID)
		for _, e := range node.Children {
			shape.Children = append(shape.Children, &AnnotNode{Kind: AnnotGoal, GoalRef: e.To})
		}
	case len(node.Children) == 1:
		// A single AND child with no declared combinator is a
		// means-end decomposition.
		shape = &AnnotNode{Kind: AnnotMeansEnd, RelatedGoal: node.ID, Group: node.Group, Divisible: node.Divisible}
		shape.Children = []*AnnotNode{{Kind: AnnotGoal, GoalRef: node.Children[0].To}}
	default:
		// No self-annotation and more than one AND child defaults to
		// parallel composition.
		shape = newOperatorNode(OpPar, node.ID)
		for _, e := range node.Children {
			shape.Children = append(shape.Children, &AnnotNode{Kind: AnnotGoal, GoalRef: e.To})
		}
	}

	result, err := b.resolveRefs(shape, node)
	if err != nil {
		return nil, err
	}
	result.RelatedGoal = node.ID
	result.Group, result.Divisible = node.Group, node.Divisible

	if node.GoalType == goalmodel.GoalAchieve && node.AchieveCondition != nil && node.AchieveCondition.ForAll != nil {
		result, err = b.expandForAll(result, node)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resolveRefs replaces every bare AnnotGoal leaf in shape (a reference to
// one of owner's declared children) with that child's fully built
// subtree.
func (b *Builder) resolveRefs(shape *AnnotNode, owner *goalmodel.Node) (*AnnotNode, error) {
	if shape.Kind != AnnotOperator && shape.Kind != AnnotMeansEnd {
		return b.resolveLeafRef(shape, owner)
	}
	resolvedChildren := make([]*AnnotNode, 0, len(shape.Children))
	for _, c := range shape.Children {
		rc, err := b.resolveRefs(c, owner)
		if err != nil {
			return nil, err
		}
		resolvedChildren = append(resolvedChildren, rc)
	}
	shape.Children = resolvedChildren
	return shape, nil
}

func (b *Builder) resolveLeafRef(leaf *AnnotNode, owner *goalmodel.Node) (*AnnotNode, error) {
	if leaf.Kind != AnnotGoal || leaf.GoalRef == "" {
		return leaf, nil
	}
	declared := false
	for _, e := range owner.Children {
		if e.To == leaf.GoalRef {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fmt.Errorf("runtimeannot: goal %q's runtime annotation references undeclared child %q", owner.ID, leaf.GoalRef)
	}
	childNode, ok := b.graph.Node(leaf.GoalRef)
	if !ok {
		return nil, fmt.Errorf("runtimeannot: goal %q's child %q is not registered", owner.ID, leaf.GoalRef)
	}
	return b.build(childNode)
}

// expandForAll rewrites an Achieve-with-forAll goal's built subtree into a
// PAR node with one child per iteration, each a copy carrying that
// iteration's task-instance bindings.
func (b *Builder) expandForAll(base *AnnotNode, node *goalmodel.Node) (*AnnotNode, error) {
	fa := node.AchieveCondition.ForAll
	rv, ok := b.resolvedVars[fa.IteratedVar]
	if !ok || !rv.Collective {
		return nil, missionerr.New(missionerr.KindUnboundVariable, node.ID, "forAll iterates over unresolved collection variable %q", fa.IteratedVar)
	}
	n := len(rv.Collection)
	if n <= 1 {
		return base, nil
	}

	par := newOperatorNode(OpPar, node.ID)
	for i := 0; i < n; i++ {
		clone := base.clone()
		b.rebindIteration(clone, i)
		par.Children = append(par.Children, clone)
	}
	return par, nil
}

// rebindIteration retargets every task leaf in clone to the i'th
// (0-indexed) instance produced for its originating goal-model node. A
// leaf whose own node wasn't itself replicated (it doesn't depend on the
// iterated variable) keeps its single instance across every iteration.
func (b *Builder) rebindIteration(n *AnnotNode, i int) {
	if n == nil {
		return
	}
	if n.Kind == AnnotTask {
		gnode, ok := b.graph.Node(n.RelatedGoal)
		if !ok {
			return
		}
		insts := b.instancesForTaskNode(gnode)
		switch {
		case i < len(insts):
			n.TaskInstanceID = insts[i].ID
		case len(insts) > 0:
			n.TaskInstanceID = insts[0].ID
		}
		return
	}
	for _, c := range n.Children {
		b.rebindIteration(c, i)
	}
}

// Package atgraph assembles the mission-decomposition graph: it walks a
// runtime-annotation operator tree together with each abstract task's
// enumerated decomposition paths, evaluates context conditions against
// the live symbolic world, installs execution-constraint edges between
// co-scoped tasks, and trims degenerate operator nodes.
package atgraph

import (
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/tdg"
)

// NodeKind tags the role an atgraph node plays.
type NodeKind string

const (
	KindGoal          NodeKind = "goal"
	KindOp            NodeKind = "op"
	KindATask         NodeKind = "atask"
	KindDecomposition NodeKind = "decomposition"
)

// EdgeKind tags the relationship an atgraph edge carries.
type EdgeKind string

const (
	EdgeNormalAND          EdgeKind = "normal_and"
	EdgeNormalOR           EdgeKind = "normal_or"
	EdgeContextDependency  EdgeKind = "context_dependency"
	EdgeExecutionConstraint EdgeKind = "execution_constraint"
)

// Node is one vertex of the index-based mission-decomposition graph: a
// dense node array plus edge tuples, replacing an adjacency-list
// representation.
type Node struct {
	Kind NodeKind

	// RelatedGoal is the originating goal-model node id, set for
	// KindGoal and KindOp nodes.
	RelatedGoal string

	// Operator is the runtime-annotation combinator this OP node
	// carries (SEQ/PAR/FALLBACK/OR).
	Operator runtimeannot.OperatorKind

	// TaskInstanceID/TaskName identify the abstract-task instance a
	// KindATask (and its KindDecomposition children) belong to.
	TaskInstanceID string
	TaskName       string

	// DecompositionID is "<at-id>|<k>" for a KindDecomposition node.
	DecompositionID string
	Path            tdg.Path

	Group     bool
	Divisible bool
}

// Edge is a directed arc between two node indices. Group/Divisible are
// only meaningful on an EdgeExecutionConstraint edge: the enclosing
// scope's flags, consumed by the constraint extractor's can_unite check
type Edge struct {
	From, To  int
	Kind      EdgeKind
	Group     bool
	Divisible bool
}

// Graph is the assembled mission-decomposition graph.
type Graph struct {
	Nodes []Node
	Edges []Edge
	Root  int
}

// AddNode appends n and returns its index.
func (g *Graph) AddNode(n Node) int {
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

// AddEdge appends an edge from->to of the given kind.
func (g *Graph) AddEdge(from, to int, kind EdgeKind) {
	g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: kind})
}

// AddExecutionConstraint appends a bidirectional pair of
// EdgeExecutionConstraint edges between a and b, carrying the enclosing
// scope's group/divisible flags.
func (g *Graph) AddExecutionConstraint(a, b int, group, divisible bool) {
	g.Edges = append(g.Edges,
		Edge{From: a, To: b, Kind: EdgeExecutionConstraint, Group: group, Divisible: divisible},
		Edge{From: b, To: a, Kind: EdgeExecutionConstraint, Group: group, Divisible: divisible},
	)
}

// Children returns the indices target of every NORMAL-AND/OR edge whose
// source is id, in edge-declaration order.
func (g *Graph) Children(id int) []int {
	var out []int
	for _, e := range g.Edges {
		if e.From == id && (e.Kind == EdgeNormalAND || e.Kind == EdgeNormalOR) {
			out = append(out, e.To)
		}
	}
	return out
}

// EdgesOfKind returns every edge of the given kind.
func (g *Graph) EdgesOfKind(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// normalEdgeKind derives the NORMAL-AND/OR discipline an OP node's
// children are linked with from its own combinator: only an OR operator
// produces NORMAL-OR children, every other combinator is AND-linked.
func normalEdgeKind(op runtimeannot.OperatorKind) EdgeKind {
	if op == runtimeannot.OpOR {
		return EdgeNormalOR
	}
	return EdgeNormalAND
}

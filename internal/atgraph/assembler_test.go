package atgraph

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

func buildPrimitiveRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	r := domain.NewRegistry()
	if err := r.AddTask(&domain.Task{Name: "t1", IsPrimitive: true}); err != nil {
		t.Fatalf("AddTask t1: %v", err)
	}
	if err := r.AddTask(&domain.Task{Name: "t2", IsPrimitive: true}); err != nil {
		t.Fatalf("AddTask t2: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return r
}

func TestAssembleSimpleGraph(t *testing.T) {
	reg := buildPrimitiveRegistry(t)

	g := goalmodel.NewGraph()
	root := goalmodel.NewGoalNode("ROOT", goalmodel.GoalPerform)
	root.RuntimeAnnotation = "T1;T2"
	root.AddChild("T1", goalmodel.DecompositionAND, false)
	root.AddChild("T2", goalmodel.DecompositionAND, false)
	g.RootID = "ROOT"
	g.AddNode(root)
	g.AddNode(goalmodel.NewTaskNode("T1", "t1"))
	g.AddNode(goalmodel.NewTaskNode("T2", "t2"))
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	kb := worldmodel.New(worldmodel.NewNode("world", "root"))
	cfg := semconfig.New()
	instances, resolved, err := taskinstance.New(reg, kb, cfg).Expand(g)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	tree, err := runtimeannot.New(g, instances, resolved).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	world := worldstate.New()
	graph, err := New(reg, g, instances, world).Assemble(tree)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	rootNode := graph.Nodes[graph.Root]
	if rootNode.Kind != KindOp || rootNode.Operator != runtimeannot.OpSeq {
		t.Fatalf("expected SEQ root op, got %+v", rootNode)
	}
	children := graph.Children(graph.Root)
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	for _, idx := range children {
		nd := graph.Nodes[idx]
		if nd.Kind != KindATask {
			t.Fatalf("expected ATask child, got %+v", nd)
		}
		decs := graph.Children(idx)
		if len(decs) != 1 {
			t.Fatalf("expected 1 decomposition, got %d", len(decs))
		}
		if graph.Nodes[decs[0]].Kind != KindDecomposition {
			t.Fatalf("expected decomposition node, got %+v", graph.Nodes[decs[0]])
		}
	}
}

func TestAssembleExecutionConstraintWithinNonDivisibleScope(t *testing.T) {
	reg := buildPrimitiveRegistry(t)

	g := goalmodel.NewGraph()
	root := goalmodel.NewGoalNode("ROOT", goalmodel.GoalPerform)
	root.Divisible = false
	root.AddChild("T1", goalmodel.DecompositionAND, false)
	root.AddChild("T2", goalmodel.DecompositionAND, false)
	g.RootID = "ROOT"
	g.AddNode(root)
	g.AddNode(goalmodel.NewTaskNode("T1", "t1"))
	g.AddNode(goalmodel.NewTaskNode("T2", "t2"))

	kb := worldmodel.New(worldmodel.NewNode("world", "root"))
	cfg := semconfig.New()
	instances, resolved, err := taskinstance.New(reg, kb, cfg).Expand(g)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	tree, err := runtimeannot.New(g, instances, resolved).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	graph, err := New(reg, g, instances, worldstate.New()).Assemble(tree)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	execEdges := graph.EdgesOfKind(EdgeExecutionConstraint)
	if len(execEdges) != 2 {
		t.Fatalf("expected 2 (bidirectional) execution-constraint edges, got %d: %+v", len(execEdges), execEdges)
	}
	if execEdges[0].Divisible {
		t.Fatalf("expected non-divisible scope flag on execution-constraint edge, got %+v", execEdges[0])
	}
}

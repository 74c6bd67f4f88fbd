package enumerator

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

func buildTwoTaskGraph(t *testing.T, annotation string) (*atgraph.Graph, *goalmodel.Graph, map[string]taskinstance.ResolvedVar) {
	t.Helper()
	r := domain.NewRegistry()
	if err := r.AddTask(&domain.Task{
		Name: "t1", IsPrimitive: true,
		Effects: []domain.Literal{{Predicate: "done", Args: []string{"t1"}, Positive: true}},
	}); err != nil {
		t.Fatalf("AddTask t1: %v", err)
	}
	if err := r.AddTask(&domain.Task{
		Name: "t2", IsPrimitive: true,
		Preconditions: []domain.Literal{{Predicate: "done", Args: []string{"t1"}, Positive: true}},
	}); err != nil {
		t.Fatalf("AddTask t2: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	g := goalmodel.NewGraph()
	root := goalmodel.NewGoalNode("ROOT", goalmodel.GoalPerform)
	root.RuntimeAnnotation = annotation
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
	instances, resolved, err := taskinstance.New(r, kb, cfg).Expand(g)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	tree, err := runtimeannot.New(g, instances, resolved).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	graph, err := atgraph.New(r, g, instances, worldstate.New()).Assemble(tree)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return graph, g, resolved
}

func TestEnumerateSeqRespectsPreconditionOrdering(t *testing.T) {
	graph, g, resolved := buildTwoTaskGraph(t, "T1;T2")
	cands, err := New(graph, g, resolved, worldstate.New()).Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(cands) == 0 {
		t.Fatalf("expected at least one candidate")
	}
	for _, c := range cands {
		if len(c.Order) != 2 {
			t.Fatalf("expected both tasks committed, got %+v", c.Order)
		}
	}
}

func TestEnumerateParFailureIsNoValidDecomposition(t *testing.T) {
	// Under PAR, visit still threads children left to right, so T2 sees
	// T1's done(t1) effect and enumeration succeeds here; should it fail,
	// the missing precondition must surface as KindNoValidDecomposition.
	graph, g, resolved := buildTwoTaskGraph(t, "")
	_, err := New(graph, g, resolved, worldstate.New()).Enumerate()
	if err == nil {
		return
	}
	if !missionerr.Is(err, missionerr.KindNoValidDecomposition) {
		t.Fatalf("expected KindNoValidDecomposition, got %v", err)
	}
}

func TestEnumerateNoValidDecompositionWhenPreconditionNeverHolds(t *testing.T) {
	r := domain.NewRegistry()
	if err := r.AddTask(&domain.Task{
		Name: "t1", IsPrimitive: true,
		Preconditions: []domain.Literal{{Predicate: "never", Args: nil, Positive: true}},
	}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	g := goalmodel.NewGraph()
	root := goalmodel.NewGoalNode("ROOT", goalmodel.GoalPerform)
	root.AddChild("T1", goalmodel.DecompositionAND, false)
	g.RootID = "ROOT"
	g.AddNode(root)
	g.AddNode(goalmodel.NewTaskNode("T1", "t1"))
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	kb := worldmodel.New(worldmodel.NewNode("world", "root"))
	cfg := semconfig.New()
	instances, resolved, err := taskinstance.New(r, kb, cfg).Expand(g)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	tree, err := runtimeannot.New(g, instances, resolved).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	graph, err := atgraph.New(r, g, instances, worldstate.New()).Assemble(tree)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	_, err = New(graph, g, resolved, worldstate.New()).Enumerate()
	if !missionerr.Is(err, missionerr.KindNoValidDecomposition) {
		t.Fatalf("expected KindNoValidDecomposition, got %v", err)
	}
}

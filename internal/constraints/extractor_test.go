package constraints

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
	"github.com/jvillaverde/missionforge/internal/tdg"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

func buildExtractorRegistry(t *testing.T) *domain.Registry {
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

func assembleFromAnnotation(t *testing.T, annotation string, divisible bool) *atgraph.Graph {
	t.Helper()
	reg := buildExtractorRegistry(t)

	g := goalmodel.NewGraph()
	root := goalmodel.NewGoalNode("ROOT", goalmodel.GoalPerform)
	root.RuntimeAnnotation = annotation
	root.Divisible = divisible
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

	graph, err := atgraph.New(reg, g, instances, worldstate.New()).Assemble(tree)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return graph
}

func TestExtractSeqProducesOrderedConstraint(t *testing.T) {
	graph := assembleFromAnnotation(t, "T1;T2", true)
	cs, err := Extract(graph)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	found := false
	for _, c := range cs {
		if c.Kind == KindSEQ {
			found = true
		}
		if c.Kind == KindPAR {
			t.Fatalf("PAR constraint leaked into output: %+v", c)
		}
	}
	if !found {
		t.Fatalf("expected a SEQ constraint, got %+v", cs)
	}
}

func TestExtractExecExclusiveWithinNonDivisibleScope(t *testing.T) {
	graph := assembleFromAnnotation(t, "", false)
	cs, err := Extract(graph)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, c := range cs {
		if c.Kind == KindPAR {
			t.Fatalf("PAR constraint leaked into output: %+v", c)
		}
	}
	found := false
	for _, c := range cs {
		if c.Kind == KindExecExclusive {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an EXEC-EXCLUSIVE constraint, got %+v", cs)
	}
}

func TestCanUniteRejectsContradictingEffects(t *testing.T) {
	a := tdg.Path{Steps: []tdg.PathStep{{
		Effects: []domain.Literal{{Predicate: "clean", Args: []string{"room1"}, Positive: true}},
	}}}
	b := tdg.Path{Steps: []tdg.PathStep{{
		Preconditions: []domain.Literal{{Predicate: "clean", Args: []string{"room1"}, Positive: false}},
	}}}
	if canUnite(a, b, false) {
		t.Fatalf("expected canUnite to reject contradicting effect/precondition pair")
	}
}

func TestCanUniteRejectsSharedArgumentUnderExclusion(t *testing.T) {
	a := tdg.Path{Steps: []tdg.PathStep{{Args: []string{"robot1"}}}}
	b := tdg.Path{Steps: []tdg.PathStep{{Args: []string{"robot1"}}}}
	if canUnite(a, b, true) {
		t.Fatalf("expected canUnite to reject a shared grounded argument under exclusion")
	}
	if !canUnite(a, b, false) {
		t.Fatalf("expected canUnite to allow a shared grounded argument without exclusion")
	}
}

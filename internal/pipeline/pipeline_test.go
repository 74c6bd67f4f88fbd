package pipeline

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

func buildTwoTaskInput(t *testing.T, annotation string) Input {
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

	return Input{Registry: r, Graph: g, KB: kb, Config: cfg}
}

func TestRunProducesMissionsForOrderedAnnotation(t *testing.T) {
	in := buildTwoTaskInput(t, "T1;T2")
	res, err := Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatalf("expected a non-empty run id")
	}
	if res.Instances != 2 {
		t.Fatalf("expected 2 task instances, got %d", res.Instances)
	}
	if res.Missions == 0 || len(res.Document.Missions) != res.Missions {
		t.Fatalf("expected at least one rendered mission, got %+v", res.Document)
	}
	if len(res.Stages) == 0 {
		t.Fatalf("expected stage timings to be recorded")
	}
}

func TestRunSurfacesFatalErrorKind(t *testing.T) {
	in := buildTwoTaskInput(t, "")
	_, err := Run(in)
	if err == nil {
		return
	}
	if !missionerr.Is(err, missionerr.KindNoValidDecomposition) {
		t.Fatalf("expected KindNoValidDecomposition, got %v", err)
	}
}

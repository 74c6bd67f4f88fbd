package tdg

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/domain"
)

func buildSimpleRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	r := domain.NewRegistry()

	moveTo := &domain.Task{
		Name:        "move-to",
		Params:      []domain.Param{{Name: "?r", Sort: "robot"}, {Name: "?l", Sort: "location"}},
		IsPrimitive: true,
		Preconditions: []domain.Literal{
			{Predicate: "free", Args: []string{"?r"}, Positive: true},
		},
		Effects: []domain.Literal{
			{Predicate: "at", Args: []string{"?r", "?l"}, Positive: true},
		},
	}
	clean := &domain.Task{
		Name:        "clean-action",
		Params:      []domain.Param{{Name: "?r", Sort: "robot"}, {Name: "?l", Sort: "location"}},
		IsPrimitive: true,
		Preconditions: []domain.Literal{
			{Predicate: "at", Args: []string{"?r", "?l"}, Positive: true},
		},
		Effects: []domain.Literal{
			{Predicate: "clean", Args: []string{"?l"}, Positive: true},
		},
	}
	cleanRoom := &domain.Task{
		Name:        "clean-room",
		Params:      []domain.Param{{Name: "?room", Sort: "location"}, {Name: "?robot", Sort: "robot"}},
		IsPrimitive: false,
	}
	for _, task := range []*domain.Task{moveTo, clean, cleanRoom} {
		if err := r.AddTask(task); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}

	method := &domain.Method{
		Name:         "clean-room-method",
		AbstractTask: "clean-room",
		Params:       []domain.Param{{Name: "?room", Sort: "location"}, {Name: "?robot", Sort: "robot"}},
		ATArgs:       []string{"?room", "?robot"},
		Subtasks: []domain.SubtaskRef{
			{ID: "s1", TaskName: "move-to", Args: []string{"?robot", "?room"}},
			{ID: "s2", TaskName: "clean-action", Args: []string{"?robot", "?room"}},
		},
		Orderings: []domain.OrderPair{{"s1", "s2"}},
		Preconditions: []domain.Literal{
			{Predicate: "free", Args: []string{"?robot"}, Positive: true},
		},
	}
	if err := r.AddMethod(method); err != nil {
		t.Fatalf("AddMethod: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	return r
}

func TestEnumeratePathsSingleOrdering(t *testing.T) {
	r := buildSimpleRegistry(t)
	root, _ := r.Task("clean-room")

	g := New(root, r)
	paths, err := g.EnumeratePaths()
	if err != nil {
		t.Fatalf("EnumeratePaths: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 path, got %d", len(paths))
	}

	steps := paths[0].Steps
	// precondition-action, move-to, clean-action, in that order.
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps (precondition-action + 2 subtasks), got %d: %+v", len(steps), steps)
	}
	if steps[1].TaskName != "move-to" || steps[2].TaskName != "clean-action" {
		t.Fatalf("unexpected step order: %+v", steps)
	}
	if steps[1].Args[0] != "?robot" || steps[1].Args[1] != "?room" {
		t.Fatalf("expected move-to args renamed into root namespace, got %v", steps[1].Args)
	}
	if steps[2].Effects[0].Predicate != "clean" || steps[2].Effects[0].Args[0] != "?room" {
		t.Fatalf("expected clean-action effect renamed to ?room, got %+v", steps[2].Effects)
	}
}

func TestAbandonsOrderingOnPreconditionContradiction(t *testing.T) {
	r := domain.NewRegistry()
	a := &domain.Task{
		Name:        "a",
		IsPrimitive: true,
		Effects:     []domain.Literal{{Predicate: "p", Args: nil, Positive: true}},
	}
	b := &domain.Task{
		Name:        "b",
		IsPrimitive: true,
		Preconditions: []domain.Literal{
			{Predicate: "p", Args: nil, Positive: false},
		},
	}
	root := &domain.Task{Name: "root", IsPrimitive: false}
	for _, task := range []*domain.Task{a, b, root} {
		if err := r.AddTask(task); err != nil {
			t.Fatalf("AddTask: %v", err)
		}
	}
	m := &domain.Method{
		Name:         "m",
		AbstractTask: "root",
		Subtasks: []domain.SubtaskRef{
			{ID: "s1", TaskName: "a"},
			{ID: "s2", TaskName: "b"},
		},
		Orderings: []domain.OrderPair{{"s1", "s2"}},
	}
	if err := r.AddMethod(m); err != nil {
		t.Fatalf("AddMethod: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	g := New(root, r)
	paths, err := g.EnumeratePaths()
	if err != nil {
		t.Fatalf("EnumeratePaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected the contradictory ordering to be abandoned, got %d paths", len(paths))
	}
}

func TestCycleIsNotExpandedFurther(t *testing.T) {
	r := domain.NewRegistry()
	root := &domain.Task{Name: "root", IsPrimitive: false}
	if err := r.AddTask(root); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	m := &domain.Method{
		Name:         "self-ref",
		AbstractTask: "root",
		Subtasks: []domain.SubtaskRef{
			{ID: "s1", TaskName: "root"},
		},
	}
	if err := r.AddMethod(m); err != nil {
		t.Fatalf("AddMethod: %v", err)
	}
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	g := New(root, r)
	paths, err := g.EnumeratePaths()
	if err != nil {
		t.Fatalf("EnumeratePaths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected a self-referencing method to yield zero paths, got %d", len(paths))
	}
}

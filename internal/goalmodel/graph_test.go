package goalmodel

import "testing"

func buildLinearGraph() *Graph {
	g := NewGraph()
	root := NewGoalNode("G1", GoalAchieve)
	root.AddChild("T1", DecompositionAND, false)
	child := NewTaskNode("T1", "clean")
	g.RootID = "G1"
	g.AddNode(root)
	g.AddNode(child)
	return g
}

func TestValidateAcceptsWellFormedTree(t *testing.T) {
	g := buildLinearGraph()
	if err := g.Validate(); err != nil {
		t.Fatalf("expected valid graph, got %v", err)
	}
}

func TestValidateRejectsMultipleParents(t *testing.T) {
	g := buildLinearGraph()
	other := NewGoalNode("G2", GoalPerform)
	other.AddChild("T1", DecompositionAND, false)
	g.AddNode(other)
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for node with two parents")
	}
}

func TestValidateRejectsDanglingEdge(t *testing.T) {
	g := buildLinearGraph()
	root, _ := g.Node("G1")
	root.AddChild("missing", DecompositionAND, false)
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for edge to unregistered node")
	}
}

func TestDepthAndWalkOrder(t *testing.T) {
	g := buildLinearGraph()
	g.ResolveParents()
	if d := g.Depth("T1"); d != 1 {
		t.Fatalf("expected depth 1 for T1, got %d", d)
	}

	var visited []string
	err := g.Walk(func(n *Node, depth int) error {
		visited = append(visited, n.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(visited) != 2 || visited[0] != "G1" || visited[1] != "T1" {
		t.Fatalf("unexpected walk order: %v", visited)
	}
}

func TestIsAchieveSubtreeRoot(t *testing.T) {
	g := buildLinearGraph()
	root, _ := g.Node("G1")
	if !root.IsAchieveSubtreeRoot() {
		t.Fatal("expected G1 to be recognized as an achieve subtree root")
	}
	leaf, _ := g.Node("T1")
	if leaf.IsAchieveSubtreeRoot() {
		t.Fatal("task nodes must never report as achieve subtree roots")
	}
}

func TestRobotNumberFixed(t *testing.T) {
	if !(RobotNumber{Min: 2, Max: 2}).Fixed() {
		t.Fatal("expected equal min/max to be fixed")
	}
	if (RobotNumber{Min: 1, Max: 3}).Fixed() {
		t.Fatal("expected a range to not be fixed")
	}
}

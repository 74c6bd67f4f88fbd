package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/render"
)

func sampleDocument() render.Document {
	return render.Document{
		Missions: []render.Mission{
			{Decisions: []render.TaskDecision{{TaskInstanceID: "at1", DecompositionID: "at1|0"}}},
			{Decisions: []render.TaskDecision{{TaskInstanceID: "at1", DecompositionID: "at1|1"}}},
		},
		Constraints: []render.ConstraintEntry{
			{Kind: "execution", A: "at1|0", B: "at2|0", Group: true, Divisible: false},
		},
	}
}

func sampleGraph() *atgraph.Graph {
	g := &atgraph.Graph{}
	g.AddNode(atgraph.Node{Kind: atgraph.KindATask, TaskName: "move"})
	g.AddNode(atgraph.Node{Kind: atgraph.KindDecomposition, DecompositionID: "at1|0"})
	g.AddEdge(0, 1, atgraph.EdgeNormalAND)
	g.Root = 0
	return g
}

func TestModelTabCyclesFocus(t *testing.T) {
	m := New("run-1", sampleDocument(), sampleGraph())
	if !strings.Contains(m.View(), "mission 0") {
		t.Fatalf("expected mission panel initially, got:\n%s", m.View())
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if !strings.Contains(m.View(), "nodes") {
		t.Fatalf("expected atgraph panel after tab, got:\n%s", m.View())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if !strings.Contains(m.View(), "execution") {
		t.Fatalf("expected constraints panel after second tab, got:\n%s", m.View())
	}
}

func TestModelNavigatesMissions(t *testing.T) {
	m := New("run-1", sampleDocument(), sampleGraph())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = next.(Model)
	if m.selectedMission != 1 {
		t.Fatalf("expected selectedMission=1 after j, got %d", m.selectedMission)
	}
	if !strings.Contains(m.View(), "at1|1") {
		t.Fatalf("expected the second mission's decomposition to be visible, got:\n%s", m.View())
	}
}

func TestModelQuits(t *testing.T) {
	m := New("run-1", sampleDocument(), sampleGraph())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	if !m.quitting {
		t.Fatalf("expected quitting to be set after q")
	}
	if cmd == nil {
		t.Fatalf("expected a tea.Quit command")
	}
}

// Package tui is a read-only bubbletea explorer over one compiled pipeline
// result: the valid missions it found, the mission-decomposition graph it
// assembled, and the constraints it extracted. An Init/Update/View
// tea.Model built from bubbles components, with lipgloss-styled panels
// instead of ANSI escape codes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/render"
)

// panel is the currently focused column of the explorer.
type panel int

const (
	panelMissions panel = iota
	panelGraph
	panelConstraints
)

const (
	defaultViewportWidth  = 70
	defaultViewportHeight = 18
)

// Model is the explorer's bubbletea state. It never mutates the pipeline
// output it was built from; paging, selection, and focus are the only
// state that changes.
type Model struct {
	doc   render.Document
	graph *atgraph.Graph
	runID string

	focus           panel
	selectedMission int
	viewport        viewport.Model
	quitting        bool
}

// New builds an explorer Model over one completed run's Document and
// assembled ATGraph.
func New(runID string, doc render.Document, graph *atgraph.Graph) Model {
	vp := viewport.New(defaultViewportWidth, defaultViewportHeight)
	m := Model{doc: doc, graph: graph, runID: runID, focus: panelMissions, viewport: vp}
	m.syncViewport()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		if m.viewport.Height < 6 {
			m.viewport.Height = 6
		}
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % 3
			m.syncViewport()
			return m, nil
		case "j", "down":
			if m.focus == panelMissions && m.selectedMission < len(m.doc.Missions)-1 {
				m.selectedMission++
				m.syncViewport()
				return m, nil
			}
			m.viewport.ScrollDown(1)
			return m, nil
		case "k", "up":
			if m.focus == panelMissions && m.selectedMission > 0 {
				m.selectedMission--
				m.syncViewport()
				return m, nil
			}
			m.viewport.ScrollUp(1)
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var s strings.Builder
	s.WriteString(StyleHeader.Render(fmt.Sprintf("Mission explorer, run %s", m.runID)) + "\n")
	s.WriteString(StyleSubtle.Render(tabsLine(m.focus)) + "\n")
	s.WriteString(strings.Repeat("─", m.viewport.Width) + "\n")
	s.WriteString(m.viewport.View() + "\n")
	s.WriteString(strings.Repeat("─", m.viewport.Width) + "\n")
	s.WriteString(StyleSubtle.Render("[tab] switch panel  [j/k] navigate  [g/G] top/bottom  [q] quit"))
	return s.String()
}

func tabsLine(focus panel) string {
	titler := cases.Title(language.English)
	names := []string{"missions", "atgraph", "constraints"}
	parts := make([]string, len(names))
	for i, n := range names {
		label := titler.String(n)
		if panel(i) == focus {
			label = "[" + label + "]"
		}
		parts[i] = label
	}
	return strings.Join(parts, "   ")
}

func (m *Model) syncViewport() {
	switch m.focus {
	case panelMissions:
		m.viewport.SetContent(renderMissions(m.doc.Missions, m.selectedMission))
	case panelGraph:
		m.viewport.SetContent(renderGraph(m.graph))
	case panelConstraints:
		m.viewport.SetContent(renderConstraints(m.doc.Constraints))
	}
}

func renderMissions(missions []render.Mission, selected int) string {
	if len(missions) == 0 {
		return StyleSubtle.Render("no valid mission decompositions")
	}
	var s strings.Builder
	for i, mission := range missions {
		marker := "  "
		if i == selected {
			marker = StylePrimary.Render("> ")
		}
		s.WriteString(fmt.Sprintf("%smission %d (%d decisions)\n", marker, i, len(mission.Decisions)))
		if i == selected {
			for _, d := range mission.Decisions {
				s.WriteString(fmt.Sprintf("      %s -> %s\n", d.TaskInstanceID, d.DecompositionID))
			}
		}
	}
	return s.String()
}

func renderGraph(g *atgraph.Graph) string {
	if g == nil {
		return StyleSubtle.Render("no graph assembled")
	}
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%d nodes, %d edges, root=%d\n\n", len(g.Nodes), len(g.Edges), g.Root))
	for i, n := range g.Nodes {
		label := string(n.Kind)
		switch n.Kind {
		case atgraph.KindATask:
			label = fmt.Sprintf("atask %s", n.TaskName)
		case atgraph.KindDecomposition:
			label = fmt.Sprintf("decomposition %s", n.DecompositionID)
		case atgraph.KindOp:
			label = fmt.Sprintf("op %s", n.Operator)
		case atgraph.KindGoal:
			label = fmt.Sprintf("goal %s", n.RelatedGoal)
		}
		s.WriteString(fmt.Sprintf("  [%d] %s\n", i, label))
	}
	return s.String()
}

func renderConstraints(cs []render.ConstraintEntry) string {
	if len(cs) == 0 {
		return StyleSubtle.Render("no constraints extracted")
	}
	var s strings.Builder
	for _, c := range cs {
		s.WriteString(fmt.Sprintf("  %s: %s <-> %s (group=%v divisible=%v)\n", c.Kind, c.A, c.B, c.Group, c.Divisible))
	}
	return s.String()
}

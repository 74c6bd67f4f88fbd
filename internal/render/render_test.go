package render

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/constraints"
	"github.com/jvillaverde/missionforge/internal/enumerator"
)

func TestRenderPreservesMissionOrderAndSortsConstraints(t *testing.T) {
	cands := []enumerator.Candidate{
		{
			Order:     []string{"T2", "T1"},
			Decisions: map[string]string{"T1": "T1|1", "T2": "T2|1"},
		},
	}
	cs := []constraints.Constraint{
		{Kind: constraints.KindSEQ, A: "T2|1", B: "T1|1"},
		{Kind: constraints.KindExecExclusive, A: "T1|1", B: "T2|1"},
	}

	doc := Render(cands, cs)
	if len(doc.Missions) != 1 {
		t.Fatalf("expected 1 mission, got %d", len(doc.Missions))
	}
	decisions := doc.Missions[0].Decisions
	if len(decisions) != 2 || decisions[0].TaskInstanceID != "T2" || decisions[1].TaskInstanceID != "T1" {
		t.Fatalf("expected commitment order preserved, got %+v", decisions)
	}

	if len(doc.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(doc.Constraints))
	}
	if doc.Constraints[0].Kind != string(constraints.KindExecExclusive) {
		t.Fatalf("expected EXEC-EXCLUSIVE to sort before SEQ, got %+v", doc.Constraints)
	}
}

package worldstate

import (
	"testing"

	"github.com/jvillaverde/missionforge/internal/domain"
)

func TestCheckSymbolicAccumulatesThenAgrees(t *testing.T) {
	w := New()
	lit := domain.Literal{Predicate: "at", Args: []string{"r1", "loc1"}, Positive: true}
	if !w.CheckSymbolic(lit) {
		t.Fatal("expected first check to accumulate and succeed")
	}
	if !w.Holds(lit) {
		t.Fatal("expected accumulated literal to now hold")
	}
	if !w.CheckSymbolic(lit) {
		t.Fatal("expected repeated identical check to succeed")
	}
}

func TestCheckSymbolicRejectsContradiction(t *testing.T) {
	w := New()
	pos := domain.Literal{Predicate: "at", Args: []string{"r1", "loc1"}, Positive: true}
	neg := domain.Literal{Predicate: "at", Args: []string{"r1", "loc1"}, Positive: false}
	if !w.CheckSymbolic(pos) {
		t.Fatal("expected first assertion to succeed")
	}
	if w.CheckSymbolic(neg) {
		t.Fatal("expected contradictory check to fail")
	}
}

func TestHoldsIsReadOnlyAndClosedWorld(t *testing.T) {
	w := New()
	lit := domain.Literal{Predicate: "clean", Args: []string{"room1"}, Positive: true}
	if w.Holds(lit) {
		t.Fatal("expected absent literal to not hold under closed-world semantics")
	}
	if len(w.Facts()) != 0 {
		t.Fatal("Holds must not mutate the world")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	w := New()
	w.Apply(domain.Literal{Predicate: "p", Args: []string{"x"}, Positive: true})
	clone := w.Clone()
	clone.Apply(domain.Literal{Predicate: "p", Args: []string{"x"}, Positive: false})

	orig := w.Facts()[0]
	if !orig.Positive {
		t.Fatal("mutating the clone must not affect the original world")
	}
}

func TestConflicts(t *testing.T) {
	a := domain.Literal{Predicate: "at", Args: []string{"r1"}, Positive: true}
	b := domain.Literal{Predicate: "at", Args: []string{"r1"}, Positive: false}
	if !Conflicts(a, b) {
		t.Fatal("expected same-key opposite-sign literals to conflict")
	}
	c := domain.Literal{Predicate: "at", Args: []string{"r2"}, Positive: false}
	if Conflicts(a, c) {
		t.Fatal("different keys must never conflict")
	}
}

func TestApplyOverwritesPriorFact(t *testing.T) {
	w := New()
	w.Apply(domain.Literal{Predicate: "holding", Args: []string{"r1", "box1"}, Positive: false})
	w.Apply(domain.Literal{Predicate: "holding", Args: []string{"r1", "box1"}, Positive: true})
	if !w.Holds(domain.Literal{Predicate: "holding", Args: []string{"r1", "box1"}, Positive: true}) {
		t.Fatal("expected the later Apply to win")
	}
}

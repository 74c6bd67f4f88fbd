// Package worldstate holds ground and symbolic predicate/function-valued
// literal sets. Two distinct check semantics operate over the same
// underlying fact set: CheckSymbolic is the TDG's open-world
// "check-or-accumulate" semantics; Holds is the closed-world check-only
// semantics used by ATGraph context evaluation and the valid-mission
// enumerator.
package worldstate

import "github.com/jvillaverde/missionforge/internal/domain"

// World is a mutable set of literals keyed by domain.Literal.Key, plus the
// world's free-standing function-valued literals.
type World struct {
	facts map[string]domain.Literal
}

// New returns an empty world.
func New() *World {
	return &World{facts: map[string]domain.Literal{}}
}

// Clone returns an independent copy, so speculative decomposition choices
// never leak between candidates.
func (w *World) Clone() *World {
	out := &World{facts: make(map[string]domain.Literal, len(w.facts))}
	for k, v := range w.facts {
		out.facts[k] = v
	}
	return out
}

// Apply asserts lit unconditionally, overwriting any prior fact with the
// same key. Used to apply a primitive action's effects.
func (w *World) Apply(lit domain.Literal) {
	w.facts[lit.Key()] = lit
}

// ApplyAll applies every literal in order.
func (w *World) ApplyAll(lits []domain.Literal) {
	for _, l := range lits {
		w.Apply(l)
	}
}

// Holds reports whether lit is asserted in the world under closed-world
// semantics: a literal holds only if an identically-keyed fact is present
// and agrees in sign/comparison. Absence means false, not unknown.
func (w *World) Holds(lit domain.Literal) bool {
	existing, ok := w.facts[lit.Key()]
	if !ok {
		return false
	}
	return domain.Consistent(existing, lit)
}

// CheckSymbolic implements the TDG's open-world "check-or-accumulate"
// semantics: if no fact with lit's key exists, lit is optimistically added
// and the check succeeds; if one exists, it must agree with lit or the
// check fails (a contradiction, meaning the enumerating path must be
// discarded).
func (w *World) CheckSymbolic(lit domain.Literal) bool {
	existing, ok := w.facts[lit.Key()]
	if !ok {
		w.facts[lit.Key()] = lit
		return true
	}
	return domain.Consistent(existing, lit)
}

// CheckAllSymbolic applies CheckSymbolic to every literal in order,
// short-circuiting (without applying the remainder) on the first failure.
func (w *World) CheckAllSymbolic(lits []domain.Literal) bool {
	for _, l := range lits {
		if !w.CheckSymbolic(l) {
			return false
		}
	}
	return true
}

// HoldsAll reports whether every literal in lits currently holds
// (closed-world).
func (w *World) HoldsAll(lits []domain.Literal) bool {
	for _, l := range lits {
		if !w.Holds(l) {
			return false
		}
	}
	return true
}

// Facts returns every currently-asserted literal, in unspecified order.
func (w *World) Facts() []domain.Literal {
	out := make([]domain.Literal, 0, len(w.facts))
	for _, l := range w.facts {
		out = append(out, l)
	}
	return out
}

// Conflicts reports whether a and b are keyed identically but disagree,
// the two-task conflict test: same grounded predicate, opposite sign.
func Conflicts(a, b domain.Literal) bool {
	return a.Key() == b.Key() && !domain.Consistent(a, b)
}

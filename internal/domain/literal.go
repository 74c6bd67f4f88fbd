package domain

import "strings"

// ComparisonOp is the operator carried by a comparison literal over a
// function value: comparison literals over function values are encoded as
// a predicate-shaped literal carrying an operator in {=, >, <} and a
// constant.
type ComparisonOp int

const (
	// OpNone marks a literal as an ordinary predicate, not a comparison.
	OpNone ComparisonOp = iota
	OpEq
	OpGt
	OpLt
)

func (op ComparisonOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	default:
		return ""
	}
}

// Literal is a ground or symbolic predicate/function-comparison literal.
// Every literal in the world is either positive (holds) or negative (does
// not hold); comparison literals instead carry Op and Const.
type Literal struct {
	Predicate    string
	Args         []string
	Positive     bool
	IsComparison bool
	Op           ComparisonOp
	Const        float64
}

// Key is the canonical identity of a literal ignoring sign/comparison
// payload: two literals over the same predicate and arguments share a key,
// and at most one fact per key may be asserted in a consistent world.
func (l Literal) Key() string {
	var b strings.Builder
	b.WriteString(l.Predicate)
	b.WriteByte('(')
	for i, a := range l.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a)
	}
	b.WriteByte(')')
	return b.String()
}

// Rename returns a copy of l with every argument substituted according to
// subst (missing entries are left as-is).
func (l Literal) Rename(subst map[string]string) Literal {
	out := l
	out.Args = make([]string, len(l.Args))
	for i, a := range l.Args {
		if r, ok := subst[a]; ok {
			out.Args[i] = r
		} else {
			out.Args[i] = a
		}
	}
	return out
}

// RenameAll renames a slice of literals, returning a fresh slice.
func RenameAll(lits []Literal, subst map[string]string) []Literal {
	out := make([]Literal, len(lits))
	for i, l := range lits {
		out[i] = l.Rename(subst)
	}
	return out
}

// Consistent reports whether two literals sharing a Key agree: same sign
// for predicates, same operator and constant for comparisons.
func Consistent(a, b Literal) bool {
	if a.IsComparison != b.IsComparison {
		return false
	}
	if a.IsComparison {
		return a.Op == b.Op && a.Const == b.Const
	}
	return a.Positive == b.Positive
}

// Package constraints recurses over a trimmed mission-decomposition graph
// and extracts the minimal set of binary inter-decomposition ordering and
// exclusivity constraints consumed by the valid-mission enumerator.
package constraints

// Kind tags the relationship a Constraint asserts between two
// decompositions. PAR is an intermediate value only: it never appears
// in Extract's returned list.
type Kind string

const (
	KindSEQ           Kind = "SEQ"
	KindPAR           Kind = "PAR"
	KindFallback      Kind = "FALLBACK"
	KindExecExclusive Kind = "EXEC-EXCLUSIVE"
)

// Constraint is a binary relation between two decomposition ids.
// Group/Divisible are only meaningful on a KindExecExclusive constraint.
type Constraint struct {
	Kind      Kind
	A, B      string
	Group     bool
	Divisible bool
}

package worldmodel

import "strconv"

// SelectOp is the comparison operator of a Query goal's select expression:
// a single predicate, negated predicate, or `attr == const | attr != const`.
type SelectOp int

const (
	SelectPredicate SelectOp = iota
	SelectNegatedPredicate
	SelectEq
	SelectNeq
)

// Select is a parsed select expression filtering a node collection down to
// the subset satisfying it.
type Select struct {
	Op    SelectOp
	Attr  string // for SelectEq/SelectNeq: the attribute compared
	Const string // for SelectEq/SelectNeq: the constant compared against
	Pred  string // for SelectPredicate/SelectNegatedPredicate: a boolean-valued attribute name
}

// Eval filters candidates down to those satisfying s.
func (s Select) Eval(candidates []*Node) []*Node {
	var out []*Node
	for _, n := range candidates {
		if s.matches(n) {
			out = append(out, n)
		}
	}
	return out
}

func (s Select) matches(n *Node) bool {
	switch s.Op {
	case SelectPredicate:
		return scalarTruthy(n, s.Pred)
	case SelectNegatedPredicate:
		return !scalarTruthy(n, s.Pred)
	case SelectEq:
		return scalarString(n, s.Attr) == s.Const
	case SelectNeq:
		return scalarString(n, s.Attr) != s.Const
	default:
		return false
	}
}

func scalarTruthy(n *Node, attr string) bool {
	v, ok := n.Attr(attr)
	if !ok || v.IsCollection() {
		return false
	}
	switch s := v.Scalar.(type) {
	case bool:
		return s
	case string:
		return s == "true"
	default:
		return false
	}
}

func scalarString(n *Node, attr string) string {
	v, ok := n.Attr(attr)
	if !ok || v.IsCollection() {
		return ""
	}
	switch s := v.Scalar.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

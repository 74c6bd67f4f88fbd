package taskinstance

import (
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

// toWorldmodelSelect lowers a goal-model select expression into the
// knowledge-base query package's own Select shape.
func toWorldmodelSelect(s goalmodel.SelectExpr) worldmodel.Select {
	var op worldmodel.SelectOp
	switch s.Op {
	case goalmodel.SelectPredicate:
		op = worldmodel.SelectPredicate
	case goalmodel.SelectNegatedPredicate:
		op = worldmodel.SelectNegatedPredicate
	case goalmodel.SelectEq:
		op = worldmodel.SelectEq
	case goalmodel.SelectNeq:
		op = worldmodel.SelectNeq
	}
	return worldmodel.Select{Op: op, Attr: s.Attr, Const: s.Const, Pred: s.Pred}
}

// findNodeByName searches the knowledge-base tree rooted at root for a
// node with the given identity name, used to descend a Query goal's path
// from a previously-bound scalar variable.
func findNodeByName(root *worldmodel.Node, name string) (*worldmodel.Node, bool) {
	if root.Name == name {
		return root, true
	}
	for _, v := range root.Attributes {
		for _, c := range v.Children {
			if n, ok := findNodeByName(c, name); ok {
				return n, true
			}
		}
	}
	return nil, false
}

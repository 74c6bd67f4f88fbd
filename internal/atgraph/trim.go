package atgraph

// trim removes OP nodes with fewer than two NORMAL children, re-parenting
// their lone surviving child (or dropping the branch entirely when they
// have none), producing the trimmed graph consumed by the constraint
// extractor and valid-mission enumerator.
func (a *Assembler) trim() *Graph {
	out := &Graph{}
	oldToNew := map[int]int{}

	var rebuild func(oldIdx int) int
	rebuild = func(oldIdx int) int {
		nd := a.g.Nodes[oldIdx]

		if nd.Kind == KindOp {
			children := a.g.Children(oldIdx)
			if len(children) == 0 {
				return -1
			}
			if len(children) == 1 {
				return rebuild(children[0])
			}
		}

		newIdx := out.AddNode(nd)
		oldToNew[oldIdx] = newIdx

		switch nd.Kind {
		case KindOp:
			edgeKind := normalEdgeKind(nd.Operator)
			for _, c := range a.g.Children(oldIdx) {
				if nc := rebuild(c); nc >= 0 {
					out.AddEdge(newIdx, nc, edgeKind)
				}
			}
		case KindATask:
			for _, c := range a.g.Children(oldIdx) {
				if nc := rebuild(c); nc >= 0 {
					out.AddEdge(newIdx, nc, EdgeNormalAND)
				}
			}
		}
		return newIdx
	}

	root := rebuild(a.g.Root)
	if root < 0 {
		root = 0
	}
	out.Root = root

	for _, e := range a.g.Edges {
		if e.Kind != EdgeContextDependency && e.Kind != EdgeExecutionConstraint {
			continue
		}
		nf, fok := oldToNew[e.From]
		nt, tok := oldToNew[e.To]
		if fok && tok {
			out.Edges = append(out.Edges, Edge{From: nf, To: nt, Kind: e.Kind, Group: e.Group, Divisible: e.Divisible})
		}
	}
	return out
}

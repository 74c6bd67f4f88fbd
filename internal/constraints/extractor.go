package constraints

import (
	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/tdg"
)

// Extractor recurses over a trimmed atgraph.Graph and produces its
// constraint list.
type Extractor struct {
	g *atgraph.Graph

	constraints    []Constraint
	parConstraints []Constraint

	// ataskOf maps a decomposition id to the node index of its owning
	// ATASK, used for execution-constraint and can_unite lookups.
	ataskOf map[string]int
	// execPairs records every (ataskA,ataskB) index pair carrying an
	// EXECUTION-CONSTRAINT edge, keyed both directions, with the
	// scope's group/divisible flags.
	execPairs map[[2]int]atgraph.Edge
}

// Extract returns the minimal SEQ/FALLBACK/EXEC-EXCLUSIVE constraint set
// for g. PAR is never present in the result.
func Extract(g *atgraph.Graph) ([]Constraint, error) {
	e := &Extractor{g: g, ataskOf: map[string]int{}, execPairs: map[[2]int]atgraph.Edge{}}
	for idx, n := range g.Nodes {
		if n.Kind == atgraph.KindATask {
			for _, c := range g.Children(idx) {
				e.ataskOf[g.Nodes[c].DecompositionID] = idx
			}
		}
	}
	for _, edge := range g.EdgesOfKind(atgraph.EdgeExecutionConstraint) {
		e.execPairs[[2]int{edge.From, edge.To}] = edge
	}

	if _, err := e.extract(g.Root); err != nil {
		return nil, err
	}
	if err := e.generateExecExclusive(); err != nil {
		return nil, err
	}
	e.promoteViaContextDependency()
	return e.constraints, nil
}

// boundary is the set of decomposition ids that could be the first or
// last decomposition visited when entering/leaving a subtree.
type boundary struct {
	Firsts []string
	Lasts  []string
	All    []string
}

func (b boundary) empty() bool { return len(b.All) == 0 }

func union(bs ...boundary) boundary {
	var out boundary
	for _, b := range bs {
		out.Firsts = append(out.Firsts, b.Firsts...)
		out.Lasts = append(out.Lasts, b.Lasts...)
		out.All = append(out.All, b.All...)
	}
	return out
}

func (e *Extractor) extract(idx int) (boundary, error) {
	n := e.g.Nodes[idx]
	switch n.Kind {
	case atgraph.KindATask:
		ids := make([]string, 0, 2)
		for _, c := range e.g.Children(idx) {
			ids = append(ids, e.g.Nodes[c].DecompositionID)
		}
		return boundary{Firsts: ids, Lasts: ids, All: ids}, nil
	case atgraph.KindGoal:
		return boundary{}, nil
	default: // atgraph.KindOp
		return e.extractOp(idx, n)
	}
}

func (e *Extractor) extractOp(idx int, n atgraph.Node) (boundary, error) {
	children := e.g.Children(idx)
	childBoundaries := make([]boundary, 0, len(children))
	for _, c := range children {
		cb, err := e.extract(c)
		if err != nil {
			return boundary{}, err
		}
		if !cb.empty() {
			childBoundaries = append(childBoundaries, cb)
		}
	}

	switch n.Operator {
	case runtimeannot.OpSeq:
		return e.combineSeq(childBoundaries), nil
	case runtimeannot.OpFallback:
		return e.combineFallback(childBoundaries), nil
	case runtimeannot.OpOR:
		return union(childBoundaries...), nil
	default: // PAR, and means-end's empty operator (single child, passthrough)
		return e.combinePar(childBoundaries), nil
	}
}

func (e *Extractor) combineSeq(branches []boundary) boundary {
	branchOf := map[string]int{}
	for i, b := range branches {
		for _, id := range b.All {
			branchOf[id] = i
		}
	}
	for i := 0; i+1 < len(branches); i++ {
		for _, last := range branches[i].Lasts {
			for _, first := range branches[i+1].Firsts {
				e.constraints = append(e.constraints, Constraint{Kind: KindSEQ, A: last, B: first})
			}
		}
	}
	e.promoteCrossBranch(branchOf)

	if len(branches) == 0 {
		return boundary{}
	}
	return boundary{Firsts: branches[0].Firsts, Lasts: branches[len(branches)-1].Lasts, All: union(branches...).All}
}

// promoteCrossBranch lifts any still-intermediate PAR constraint whose
// two ends fall in different branches of the SEQ node just combined into
// a SEQ constraint ordered by branch index: for every PAR constraint
// from the combine step that crosses the SEQ boundary, lift it to SEQ.
func (e *Extractor) promoteCrossBranch(branchOf map[string]int) {
	var kept []Constraint
	for _, c := range e.parConstraints {
		bi, aok := branchOf[c.A]
		bj, bok := branchOf[c.B]
		if aok && bok && bi != bj {
			if bi < bj {
				e.constraints = append(e.constraints, Constraint{Kind: KindSEQ, A: c.A, B: c.B})
			} else {
				e.constraints = append(e.constraints, Constraint{Kind: KindSEQ, A: c.B, B: c.A})
			}
			continue
		}
		kept = append(kept, c)
	}
	e.parConstraints = kept
}

func (e *Extractor) combineFallback(branches []boundary) boundary {
	for i := 0; i+1 < len(branches); i++ {
		for _, a := range branches[i].Firsts {
			for _, b := range branches[i+1].Firsts {
				e.constraints = append(e.constraints, Constraint{Kind: KindFallback, A: a, B: b})
			}
		}
	}
	if len(branches) == 0 {
		return boundary{}
	}
	return boundary{Firsts: branches[0].Firsts, Lasts: union(branches...).Lasts, All: union(branches...).All}
}

func (e *Extractor) combinePar(branches []boundary) boundary {
	for i := 0; i+1 <= len(branches)-1; i++ {
		for j := i + 1; j < len(branches); j++ {
			for _, a := range branches[i].All {
				for _, b := range branches[j].All {
					if e.hasExecConstraint(a, b) {
						continue
					}
					e.parConstraints = append(e.parConstraints, Constraint{Kind: KindPAR, A: a, B: b})
				}
			}
		}
	}
	return union(branches...)
}

func (e *Extractor) hasExecConstraint(decA, decB string) bool {
	ai, aok := e.ataskOf[decA]
	bi, bok := e.ataskOf[decB]
	if !aok || !bok {
		return false
	}
	_, ok := e.execPairs[[2]int{ai, bi}]
	return ok
}

// generateExecExclusive emits an EXEC-EXCLUSIVE constraint between every
// consistent pair of decompositions belonging to two ATASK nodes sharing
// an EXECUTION-CONSTRAINT edge.
func (e *Extractor) generateExecExclusive() error {
	seen := map[[2]int]bool{}
	for pair, edge := range e.execPairs {
		key := pair
		if key[0] > key[1] {
			key = [2]int{key[1], key[0]}
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		decsA := e.g.Children(pair[0])
		decsB := e.g.Children(pair[1])
		for _, da := range decsA {
			for _, db := range decsB {
				dA, dB := e.g.Nodes[da], e.g.Nodes[db]
				if canUnite(dA.Path, dB.Path, !edge.Group) {
					e.constraints = append(e.constraints, Constraint{
						Kind: KindExecExclusive, A: dA.DecompositionID, B: dB.DecompositionID,
						Group: edge.Group, Divisible: edge.Divisible,
					})
				}
			}
		}
	}
	return nil
}

// canUnite reports whether two decompositions may be assigned to the
// same mission candidate.
// It fails when d1's effects contradict d2's preconditions (or vice
// versa) under their shared grounded arguments, or when exclusion is
// requested and the two decompositions share any grounded argument in
// common, an approximation of "share a robot-typed argument": grounding
// already carries the task instance's variable bindings, but the path
// representation here does not retain per-argument sorts, so any shared
// grounded value is treated as a potential shared resource.
func canUnite(a, b tdg.Path, exclusion bool) bool {
	for _, sa := range a.Steps {
		for _, eff := range sa.Effects {
			for _, sb := range b.Steps {
				for _, pre := range sb.Preconditions {
					if eff.Key() == pre.Key() && !domain.Consistent(eff, pre) {
						return false
					}
				}
			}
		}
	}
	for _, sb := range b.Steps {
		for _, eff := range sb.Effects {
			for _, sa := range a.Steps {
				for _, pre := range sa.Preconditions {
					if eff.Key() == pre.Key() && !domain.Consistent(eff, pre) {
						return false
					}
				}
			}
		}
	}
	if exclusion {
		argsA := map[string]bool{}
		for _, s := range a.Steps {
			for _, arg := range s.Args {
				argsA[arg] = true
			}
		}
		for _, s := range b.Steps {
			for _, arg := range s.Args {
				if argsA[arg] {
					return false
				}
			}
		}
	}
	return true
}

// promoteViaContextDependency promotes any PAR constraint whose two ends
// lie on either side of a CONTEXT-DEPENDENCY edge into SEQ, then drops
// every remaining PAR constraint: parallelism is the default when no
// SEQ exists.
func (e *Extractor) promoteViaContextDependency() {
	for _, edge := range e.g.EdgesOfKind(atgraph.EdgeContextDependency) {
		fromIDs := decompIDsUnder(e.g, edge.From)
		toIDs := decompIDsUnder(e.g, edge.To)
		var kept []Constraint
		for _, c := range e.parConstraints {
			if (contains(fromIDs, c.A) && contains(toIDs, c.B)) || (contains(fromIDs, c.B) && contains(toIDs, c.A)) {
				a, b := c.A, c.B
				if contains(toIDs, a) {
					a, b = b, a
				}
				e.constraints = append(e.constraints, Constraint{Kind: KindSEQ, A: a, B: b})
				continue
			}
			kept = append(kept, c)
		}
		e.parConstraints = kept
	}
	// Remaining PAR constraints are dropped: they never enter e.constraints.
}

func decompIDsUnder(g *atgraph.Graph, idx int) []string {
	n := g.Nodes[idx]
	if n.Kind == atgraph.KindATask {
		var ids []string
		for _, c := range g.Children(idx) {
			ids = append(ids, g.Nodes[c].DecompositionID)
		}
		return ids
	}
	var ids []string
	for _, c := range g.Children(idx) {
		ids = append(ids, decompIDsUnder(g, c)...)
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

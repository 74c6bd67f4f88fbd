package enumerator

import (
	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
	"github.com/jvillaverde/missionforge/internal/tdg"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

// Enumerator walks a trimmed atgraph.Graph and emits every jointly
// consistent ordered selection of decompositions.
type Enumerator struct {
	graph        *atgraph.Graph
	gmGraph      *goalmodel.Graph
	resolvedVars map[string]taskinstance.ResolvedVar
	world        *worldstate.World
}

// New returns an Enumerator. world is the statically-initialized symbolic
// world candidates evolve from; it is never mutated.
func New(graph *atgraph.Graph, gmGraph *goalmodel.Graph, resolvedVars map[string]taskinstance.ResolvedVar, world *worldstate.World) *Enumerator {
	return &Enumerator{graph: graph, gmGraph: gmGraph, resolvedVars: resolvedVars, world: world}
}

// Enumerate returns every valid mission candidate rooted at the graph's
// root node.
func (e *Enumerator) Enumerate() ([]Candidate, error) {
	return e.visit(e.graph.Root, []Candidate{newCandidate()})
}

func (e *Enumerator) visit(idx int, cands []Candidate) ([]Candidate, error) {
	n := e.graph.Nodes[idx]

	if src, ok := e.incomingContextSource(idx); ok {
		srcTask := e.graph.Nodes[src].TaskInstanceID
		cands = filterCandidates(cands, func(c Candidate) bool { return c.hasTask(srcTask) })
		if len(cands) == 0 {
			return cands, nil
		}
	}

	var (
		out []Candidate
		err error
	)
	switch n.Kind {
	case atgraph.KindATask:
		out, err = e.visitTask(idx, cands)
	case atgraph.KindGoal:
		// A Query-goal leaf binds no task and carries no effects.
		out, err = cands, nil
	default: // atgraph.KindOp
		out, err = e.visitOp(idx, n, cands)
	}
	if err != nil {
		return nil, err
	}

	if n.Kind == atgraph.KindOp && n.RelatedGoal != "" {
		if gn, ok := e.gmGraph.Node(n.RelatedGoal); ok && gn.IsAchieveSubtreeRoot() && gn.AchieveCondition != nil {
			out, err = e.closeAchieveScope(gn, out)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (e *Enumerator) visitOp(idx int, n atgraph.Node, cands []Candidate) ([]Candidate, error) {
	children := e.graph.Children(idx)

	if n.Operator == runtimeannot.OpOR {
		var result []Candidate
		for _, c := range children {
			branch, err := e.visit(c, cloneCandidates(cands))
			if err != nil {
				return nil, err
			}
			result = append(result, branch...)
		}
		return result, nil
	}

	for _, c := range children {
		var err error
		cands, err = e.visit(c, cands)
		if err != nil {
			return nil, err
		}
		if len(cands) == 0 {
			return cands, nil
		}
	}

	if n.Operator == runtimeannot.OpPar {
		scope := collectTaskIDsUnder(e.graph, idx)
		cands = resolveParallelConflicts(cands, scope)
		if len(cands) == 0 {
			return nil, missionerr.New(missionerr.KindConflictingParallelEffects, n.RelatedGoal,
				"every candidate failed conflict resolution after parallel branch %q", n.RelatedGoal)
		}
	}
	return cands, nil
}

func (e *Enumerator) visitTask(idx int, cands []Candidate) ([]Candidate, error) {
	n := e.graph.Nodes[idx]
	decs := e.graph.Children(idx)

	var result []Candidate
	for _, c := range cands {
		liveWorld := e.liveWorldFor(c)
		for _, dIdx := range decs {
			dec := e.graph.Nodes[dIdx]
			if !pathHolds(dec.Path, liveWorld) {
				continue
			}
			result = append(result, c.fork(n.TaskInstanceID, dec.DecompositionID, flattenEffects(dec.Path)))
		}
	}
	if len(result) == 0 {
		return nil, missionerr.New(missionerr.KindNoValidDecomposition, n.TaskInstanceID,
			"no valid decomposition for task %q", n.TaskInstanceID)
	}
	return result, nil
}

func (e *Enumerator) liveWorldFor(c Candidate) *worldstate.World {
	w := e.world.Clone()
	for _, taskID := range c.Order {
		w.ApplyAll(c.Effects[taskID])
	}
	return w
}

func (e *Enumerator) incomingContextSource(idx int) (int, bool) {
	for _, edge := range e.graph.Edges {
		if edge.Kind == atgraph.EdgeContextDependency && edge.To == idx {
			return edge.From, true
		}
	}
	return 0, false
}

// pathHolds walks a decomposition path's steps in order, requiring each
// step's preconditions hold against the progressively-updated world before
// applying its effects, the same "apply, then check next" discipline
// used to settle context conditions during assembly.
func pathHolds(p tdg.Path, w *worldstate.World) bool {
	w2 := w.Clone()
	for _, step := range p.Steps {
		if !w2.HoldsAll(step.Preconditions) {
			return false
		}
		w2.ApplyAll(step.Effects)
	}
	return true
}

func filterCandidates(cands []Candidate, keep func(Candidate) bool) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func collectTaskIDsUnder(g *atgraph.Graph, idx int) map[string]bool {
	out := map[string]bool{}
	var dfs func(i int)
	dfs = func(i int) {
		n := g.Nodes[i]
		if n.Kind == atgraph.KindATask {
			out[n.TaskInstanceID] = true
		}
		for _, c := range g.Children(i) {
			dfs(c)
		}
	}
	dfs(idx)
	return out
}

// resolveParallelConflicts implements conflict resolution across parallel
// branches: for every candidate, scan the effects
// committed by tasks within this PAR node's scope for any pair
// attributed to distinct tasks that share a grounded predicate with
// opposite sign, and drop the candidate if one is found. Every task in
// scope was necessarily committed during this very operator's recursion
// (the assembled tree never revisits a node), so no pre-branch snapshot
// is needed to tell "fresh" effects apart from older ones.
func resolveParallelConflicts(cands []Candidate, scope map[string]bool) []Candidate {
	var out []Candidate
	for _, c := range cands {
		type tagged struct {
			taskID string
			lit    domain.Literal
		}
		var fresh []tagged
		for _, taskID := range c.Order {
			if !scope[taskID] {
				continue
			}
			for _, lit := range c.Effects[taskID] {
				fresh = append(fresh, tagged{taskID, lit})
			}
		}

		conflict := false
		for i := 0; i < len(fresh) && !conflict; i++ {
			for j := i + 1; j < len(fresh); j++ {
				if fresh[i].taskID == fresh[j].taskID {
					continue
				}
				if fresh[i].lit.Key() == fresh[j].lit.Key() && !domain.Consistent(fresh[i].lit, fresh[j].lit) {
					conflict = true
					break
				}
			}
		}
		if !conflict {
			out = append(out, c)
		}
	}
	return out
}

// flattenEffects concatenates every step's effects along a decomposition
// path, in execution order.
func flattenEffects(p tdg.Path) []domain.Literal {
	var out []domain.Literal
	for _, step := range p.Steps {
		out = append(out, step.Effects...)
	}
	return out
}

// Package enumerator performs the final stage of the pipeline: DFS over a
// trimmed mission-decomposition graph, forking one candidate per holding
// decomposition at each abstract task, folding OR-decomposed branches into
// independent candidate lists, resolving parallel-branch effect conflicts,
// and closing achieve scopes against their quantified conditions.
package enumerator

import "github.com/jvillaverde/missionforge/internal/domain"

// Candidate is one in-progress (or completed) ordered selection of
// decompositions, one per abstract-task instance committed so far.
// Immutable in place: every mutation returns a fresh value so that
// forking a candidate never perturbs its siblings.
type Candidate struct {
	// Order is the task-instance ids committed so far, in commitment
	// order: the order effects were applied to the world.
	Order []string
	// Decisions maps a committed task-instance id to the decomposition id
	// selected for it.
	Decisions map[string]string
	// Effects holds the grounded effects of the selected decomposition,
	// keyed by task-instance id.
	Effects map[string][]domain.Literal
}

func newCandidate() Candidate {
	return Candidate{Decisions: map[string]string{}, Effects: map[string][]domain.Literal{}}
}

func (c Candidate) hasTask(taskID string) bool {
	_, ok := c.Decisions[taskID]
	return ok
}

// fork returns a copy of c with taskID committed to decompositionID and
// effects recorded.
func (c Candidate) fork(taskID, decompositionID string, effects []domain.Literal) Candidate {
	order := make([]string, len(c.Order), len(c.Order)+1)
	copy(order, c.Order)
	order = append(order, taskID)

	decisions := make(map[string]string, len(c.Decisions)+1)
	for k, v := range c.Decisions {
		decisions[k] = v
	}
	decisions[taskID] = decompositionID

	fx := make(map[string][]domain.Literal, len(c.Effects)+1)
	for k, v := range c.Effects {
		fx[k] = v
	}
	fx[taskID] = effects

	return Candidate{Order: order, Decisions: decisions, Effects: fx}
}

func cloneCandidates(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	return out
}

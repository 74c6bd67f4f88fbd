// Package render shapes the pipeline's final outputs, the valid mission
// candidates and their constraint list, into a plain in-memory tree an
// external serializer can walk. It performs no XML/JSON encoding itself;
// serialization is left to an external collaborator, but the original
// implementation's instancesoutput/outputgenerator tree shape (tasks,
// constraints, mission_decompositions) is worth preserving as a boundary
// object so a caller never has to reach back into the pipeline's internal
// graph types to produce one.
package render

import (
	"sort"

	"github.com/jvillaverde/missionforge/internal/constraints"
	"github.com/jvillaverde/missionforge/internal/enumerator"
)

// TaskDecision is one committed (task-instance id, decomposition id) pair
// within a mission, in commitment order.
type TaskDecision struct {
	TaskInstanceID  string
	DecompositionID string
}

// Mission is one valid, ordered decomposition selection.
type Mission struct {
	Decisions []TaskDecision
}

// ConstraintEntry is one extracted constraint, copied out of
// constraints.Constraint so render.Document has no dependency on the
// extractor's own types surviving past this boundary.
type ConstraintEntry struct {
	Kind      string
	A, B      string
	Group     bool
	Divisible bool
}

// Document is the full in-memory output boundary: every valid mission
// alongside the constraint list that relates their decompositions.
type Document struct {
	Missions    []Mission
	Constraints []ConstraintEntry
}

// Render builds a Document from the enumerator's candidates and the
// constraint extractor's output. Candidate order is preserved; missions
// are not re-sorted, since enumeration already fixes their order
// deterministically.
func Render(candidates []enumerator.Candidate, cs []constraints.Constraint) Document {
	doc := Document{
		Missions:    make([]Mission, len(candidates)),
		Constraints: make([]ConstraintEntry, len(cs)),
	}
	for i, cand := range candidates {
		decisions := make([]TaskDecision, len(cand.Order))
		for j, taskID := range cand.Order {
			decisions[j] = TaskDecision{TaskInstanceID: taskID, DecompositionID: cand.Decisions[taskID]}
		}
		doc.Missions[i] = Mission{Decisions: decisions}
	}
	for i, c := range cs {
		doc.Constraints[i] = ConstraintEntry{Kind: string(c.Kind), A: c.A, B: c.B, Group: c.Group, Divisible: c.Divisible}
	}
	sortConstraints(doc.Constraints)
	return doc
}

// sortConstraints orders the constraint list deterministically (by kind,
// then by the two decomposition ids) so two renders of the same pipeline
// run never differ only in map/edge iteration order.
func sortConstraints(cs []ConstraintEntry) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Kind != cs[j].Kind {
			return cs[i].Kind < cs[j].Kind
		}
		if cs[i].A != cs[j].A {
			return cs[i].A < cs[j].A
		}
		return cs[i].B < cs[j].B
	})
}

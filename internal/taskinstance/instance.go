// Package taskinstance walks a goal-model tree, resolves Query goals
// against a knowledge base, expands Achieve-with-forAll iteration scopes,
// and emits one abstract-task instance per active iteration.
package taskinstance

import "github.com/jvillaverde/missionforge/internal/goalmodel"

// Instance is one instantiated, fully-bound abstract-task record.
// Immutable once emitted.
type Instance struct {
	ID       string
	TaskName string

	FixedRobotNum bool
	RobotNum      goalmodel.RobotNumber

	// Location is the bound location value; LocationValues holds every
	// element when the goal's Location resolves to a collection (e.g. a
	// forAll-bound variable).
	Location       string
	LocationValues []string

	// VarMapping binds each HDDL variable declared for this task (per
	// semconfig.Config.VariableMappingsForTask) to its resolved value:
	// an object name, or an iteration-scope binding.
	VarMapping map[string]string

	Params           []string
	TriggeringEvents []string
}

// ResolvedVar is one goal-model variable's resolution, as bound by a Query
// goal or a forAll iteration scope: either a single value or a collection.
type ResolvedVar struct {
	Value      string
	Collection []string
	Collective bool
}

package policycheck

// defaultDomainPolicy encodes deny rules for a structurally broken domain:
// a method decomposing an unknown abstract task, or any task reference that
// resolves to nothing, makes the domain unusable by the rest of the
// pipeline and must be rejected before ingestion completes.
const defaultDomainPolicy = `package missionforge.domain

import rego.v1

task_names contains t.name if some t in input.tasks

deny contains msg if {
	some m in input.methods
	not m.abstract_task in task_names
	msg := sprintf("method %q decomposes unknown abstract task %q", [m.name, m.abstract_task])
}

deny contains msg if {
	some m in input.methods
	some st in m.subtask_names
	not st in task_names
	msg := sprintf("method %q references unknown task %q", [m.name, st])
}

warn contains msg if {
	some t in input.tasks
	not t.is_primitive
	not abstract_task_has_method(t.name)
	msg := sprintf("abstract task %q has no methods", [t.name])
}

abstract_task_has_method(name) if {
	some m in input.methods
	m.abstract_task == name
}
`

// defaultConfigPolicy encodes the deny rule for a var_mapping type error: a
// var_mapping whose HDDL sort and planner sort disagree breaks every
// downstream sort check against the planner's world.
const defaultConfigPolicy = `package missionforge.config

import rego.v1

deny contains msg if {
	some vm in input.var_mappings
	vm.hddl_sort != ""
	vm.planner_sort != ""
	vm.hddl_sort != vm.planner_sort
	msg := sprintf("var_mapping %q: hddl sort %q does not match planner sort %q", [vm.high_level_var, vm.hddl_sort, vm.planner_sort])
}

warn contains msg if {
	some vm in input.var_mappings
	vm.planner_sort == ""
	msg := sprintf("var_mapping %q has no planner sort", [vm.high_level_var])
}
`

// defaultGoalModelPolicy flags structural problems in an ingested goal
// model: an orphaned node unreachable from the root, or a Query-typed node
// missing the queried property it needs to resolve at runtime.
const defaultGoalModelPolicy = `package missionforge.goalmodel

import rego.v1

reachable contains input.root_id

reachable contains to if {
	some e in input.edges
	e.from in reachable
	to := e.to
}

deny contains msg if {
	some n in input.nodes
	not n.id in reachable
	msg := sprintf("goal node %q is orphaned (unreachable from root %q)", [n.id, input.root_id])
}

warn contains msg if {
	some n in input.nodes
	n.type == "Query"
	not n.has_query
	msg := sprintf("query node %q has no queried property", [n.id])
}
`

// DefaultPolicies returns the built-in deny/warn rule set shipped with the
// pipeline, independent of any user-authored policies loaded from disk.
func DefaultPolicies() []*PolicyFile {
	return []*PolicyFile{
		{Path: "builtin/domain.rego", Name: "domain", Content: defaultDomainPolicy},
		{Path: "builtin/config.rego", Name: "config", Content: defaultConfigPolicy},
		{Path: "builtin/goalmodel.rego", Name: "goalmodel", Content: defaultGoalModelPolicy},
	}
}

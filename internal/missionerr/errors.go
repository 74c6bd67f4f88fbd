// Package missionerr defines the fatal error taxonomy of the mission
// decomposition pipeline. Every kind here is terminal: the core never
// retries or recovers, it raises eagerly with enough structural context
// for the author of the offending artifact to locate the mistake.
package missionerr

import "fmt"

// Kind identifies one of the fatal error categories the pipeline can raise.
type Kind string

const (
	// KindUnboundVariable: a task mapping references an OCL variable with
	// no active binding.
	KindUnboundVariable Kind = "unbound_variable"
	// KindInvalidQuery: a Query goal's select expression cannot be
	// resolved against the knowledge base.
	KindInvalidQuery Kind = "invalid_query"
	// KindUnsatisfiedContext: a goal's context condition holds in no
	// reachable world and no earlier task can force it.
	KindUnsatisfiedContext Kind = "unsatisfied_context"
	// KindNoValidDecomposition: at mission-enumeration time every
	// candidate loses a task.
	KindNoValidDecomposition Kind = "no_valid_decomposition"
	// KindAchieveConditionViolation: at closure of an achieve scope every
	// candidate fails the quantified condition.
	KindAchieveConditionViolation Kind = "achieve_condition_violation"
	// KindConflictingParallelEffects: every candidate fails conflict
	// resolution after a parallel branch.
	KindConflictingParallelEffects Kind = "conflicting_parallel_effects"
	// KindSemanticMappingMissing: a precondition/effect literal cannot be
	// lowered to the world representation.
	KindSemanticMappingMissing Kind = "semantic_mapping_missing"
	// KindTypeError: a var_mapping binds variables whose HDDL sort does
	// not match the planner-sort inferred from the goal model.
	KindTypeError Kind = "type_error"
	// KindBadDomain: unknown abstract task name referenced by a task node.
	KindBadDomain Kind = "bad_domain"
	// KindCycleInWrapper: an OR-decomposed goal with a SEQ runtime
	// annotation.
	KindCycleInWrapper Kind = "cycle_in_wrapper"
)

// Error is the structured, fatal error type raised across every pipeline
// stage. OffendingID names the task/goal/decomposition id responsible.
type Error struct {
	Kind        Kind
	OffendingID string
	Message     string
	Wrapped     error
}

func (e *Error) Error() string {
	if e.OffendingID == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.OffendingID, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// New constructs an Error for the given kind and offending id.
func New(kind Kind, offendingID, format string, args ...any) *Error {
	return &Error{Kind: kind, OffendingID: offendingID, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that carries an underlying cause.
func Wrap(kind Kind, offendingID string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, OffendingID: offendingID, Message: fmt.Sprintf(format, args...), Wrapped: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if me, ok := err.(*Error); ok {
			return me.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

package domain

// Param is a named, typed formal parameter of a task or method.
type Param struct {
	Name string
	Sort string
}

// PredicateDefinition is a named predicate with an ordered list of argument
// sorts.
type PredicateDefinition struct {
	Name     string
	ArgSorts []string
}

// FunctionDefinition has the same shape as a predicate but carries an
// implicit numeric return value.
type FunctionDefinition struct {
	Name     string
	ArgSorts []string
}

// Task is either abstract (decomposed via Methods, IsPrimitive=false) or
// primitive (a leaf action with Preconditions/Effects, IsPrimitive=true).
type Task struct {
	Name          string
	Params        []Param
	IsPrimitive   bool
	Preconditions []Literal
	Effects       []Literal
}

// SubtaskRef references one subtask within a method's ordered plan-step
// list, giving the method-local actual arguments bound to the subtask's
// task-definition formal parameters, positionally.
type SubtaskRef struct {
	ID       string // unique within the method, used by Orderings
	TaskName string
	Args     []string // method-local variable names, aligned to TaskName's Params
}

// OrderPair is one partial-order constraint (Before, After) over subtask
// ids within a method's plan-step list.
type OrderPair [2]string

// PreconditionActionSuffix names the synthetic primitive task a method's own
// preconditions are lifted into, inserted at the head of its plan-step
// list as a dedicated precondition-action synthetic task.
const PreconditionActionSuffix = "__precondition"

// Method binds an abstract task to an ordered list of subtasks with
// preconditions and a partial order over subtask identifiers.
type Method struct {
	Name         string
	AbstractTask string
	Params       []Param  // superset of the abstract task's parameters
	ATArgs       []string // method-local names aligned positionally to AbstractTask's Params
	Subtasks     []SubtaskRef
	Orderings    []OrderPair
	Preconditions []Literal
}

// precondActionName is the unique primitive-task name synthesized for this
// method's lifted preconditions.
func (m *Method) precondActionName() string {
	return m.Name + PreconditionActionSuffix
}

// EffectiveSubtasks returns the method's subtasks with its precondition
// synthetic task prepended, if it declares any preconditions.
func (m *Method) EffectiveSubtasks() []SubtaskRef {
	if len(m.Preconditions) == 0 {
		return m.Subtasks
	}
	pre := SubtaskRef{ID: m.precondActionName(), TaskName: m.precondActionName()}
	out := make([]SubtaskRef, 0, len(m.Subtasks)+1)
	out = append(out, pre)
	out = append(out, m.Subtasks...)
	return out
}

// EffectiveOrderings returns the method's ordering constraints extended so
// that the synthetic precondition task precedes every declared subtask.
func (m *Method) EffectiveOrderings() []OrderPair {
	if len(m.Preconditions) == 0 {
		return m.Orderings
	}
	preID := m.precondActionName()
	out := make([]OrderPair, 0, len(m.Orderings)+len(m.Subtasks))
	for _, s := range m.Subtasks {
		out = append(out, OrderPair{preID, s.ID})
	}
	out = append(out, m.Orderings...)
	return out
}

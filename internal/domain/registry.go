package domain

import (
	"fmt"

	"github.com/jvillaverde/missionforge/internal/missionerr"
)

// Registry holds the sort hierarchy, predicate and function signatures,
// task and method definitions, and constants ingested from a domain. It is
// frozen after domain ingestion: once Freeze succeeds, no
// further mutation is permitted and all cross-references have been
// validated.
type Registry struct {
	sorts      map[string]*Sort
	predicates map[string]PredicateDefinition
	functions  map[string]FunctionDefinition
	tasks      map[string]*Task
	methods    map[string][]*Method // keyed by AbstractTask name
	frozen     bool
}

// NewRegistry returns a registry seeded with the built-in sort hierarchy.
func NewRegistry() *Registry {
	r := &Registry{
		sorts:      map[string]*Sort{},
		predicates: map[string]PredicateDefinition{},
		functions:  map[string]FunctionDefinition{},
		tasks:      map[string]*Task{},
		methods:    map[string][]*Method{},
	}
	r.sorts[UniversalSort] = newSort(UniversalSort, "")
	for _, name := range builtinSorts {
		r.sorts[name] = newSort(name, UniversalSort)
	}
	return r
}

func (r *Registry) mustNotBeFrozen(op string) error {
	if r.frozen {
		return fmt.Errorf("registry: cannot %s after Freeze", op)
	}
	return nil
}

// AddSort declares a new sort with the given parent, or re-parents an
// existing built-in sort if name already exists (used to slot the built-in
// hierarchy into a domain-specific tree).
func (r *Registry) AddSort(name, parent string) error {
	if err := r.mustNotBeFrozen("AddSort"); err != nil {
		return err
	}
	if s, ok := r.sorts[name]; ok {
		s.Parent = parent
		return nil
	}
	r.sorts[name] = newSort(name, parent)
	return nil
}

// AddObject declares an object name as a member of sortName.
func (r *Registry) AddObject(sortName, objName string) error {
	if err := r.mustNotBeFrozen("AddObject"); err != nil {
		return err
	}
	s, ok := r.sorts[sortName]
	if !ok {
		return missionerr.New(missionerr.KindBadDomain, sortName, "AddObject: unknown sort")
	}
	s.objects[objName] = true
	return nil
}

// AddPredicate declares a predicate signature.
func (r *Registry) AddPredicate(def PredicateDefinition) error {
	if err := r.mustNotBeFrozen("AddPredicate"); err != nil {
		return err
	}
	r.predicates[def.Name] = def
	return nil
}

// AddFunction declares a function signature.
func (r *Registry) AddFunction(def FunctionDefinition) error {
	if err := r.mustNotBeFrozen("AddFunction"); err != nil {
		return err
	}
	r.functions[def.Name] = def
	return nil
}

// AddTask declares a task (abstract or primitive).
func (r *Registry) AddTask(t *Task) error {
	if err := r.mustNotBeFrozen("AddTask"); err != nil {
		return err
	}
	r.tasks[t.Name] = t
	return nil
}

// AddMethod declares a method decomposing an abstract task. If the method
// carries preconditions, a synthetic primitive precondition-action task is
// registered alongside it automatically.
func (r *Registry) AddMethod(m *Method) error {
	if err := r.mustNotBeFrozen("AddMethod"); err != nil {
		return err
	}
	r.methods[m.AbstractTask] = append(r.methods[m.AbstractTask], m)
	if len(m.Preconditions) > 0 {
		r.tasks[m.precondActionName()] = &Task{
			Name:          m.precondActionName(),
			IsPrimitive:   true,
			Preconditions: m.Preconditions,
		}
	}
	return nil
}

// Freeze validates all cross-references (methods decomposing known abstract
// tasks, subtasks referencing known task names, sort parents resolving)
// and marks the registry immutable. Returns a *missionerr.Error of kind
// KindBadDomain on the first structural problem found.
func (r *Registry) Freeze() error {
	if r.frozen {
		return nil
	}
	for name, s := range r.sorts {
		if s.Parent == "" {
			continue
		}
		if _, ok := r.sorts[s.Parent]; !ok {
			return missionerr.New(missionerr.KindBadDomain, name, "sort %q declares unknown parent %q", name, s.Parent)
		}
	}
	for atName, ms := range r.methods {
		if _, ok := r.tasks[atName]; !ok {
			return missionerr.New(missionerr.KindBadDomain, atName, "method set references unknown abstract task %q", atName)
		}
		for _, m := range ms {
			for _, st := range m.Subtasks {
				if _, ok := r.tasks[st.TaskName]; !ok {
					return missionerr.New(missionerr.KindBadDomain, m.Name, "method %q subtask %q references unknown task %q", m.Name, st.ID, st.TaskName)
				}
			}
		}
	}
	r.frozen = true
	return nil
}

// Task looks up a task definition by name.
func (r *Registry) Task(name string) (*Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// MethodsFor returns the methods decomposing the named abstract task, in
// declaration order.
func (r *Registry) MethodsFor(taskName string) []*Method {
	return r.methods[taskName]
}

// Sort looks up a sort definition by name.
func (r *Registry) Sort(name string) (*Sort, bool) {
	s, ok := r.sorts[name]
	return s, ok
}

// IsSubsort reports whether child is the sort named ancestor or a
// transitive descendant of it.
func (r *Registry) IsSubsort(child, ancestor string) bool {
	cur, ok := r.sorts[child]
	if !ok {
		return false
	}
	for {
		if cur.Name == ancestor {
			return true
		}
		if cur.Parent == "" {
			return false
		}
		parent, ok := r.sorts[cur.Parent]
		if !ok {
			return false
		}
		cur = parent
	}
}

// Predicate looks up a predicate signature.
func (r *Registry) Predicate(name string) (PredicateDefinition, bool) {
	p, ok := r.predicates[name]
	return p, ok
}

// Function looks up a function signature.
func (r *Registry) Function(name string) (FunctionDefinition, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// AllSorts returns every declared sort, in no particular order.
func (r *Registry) AllSorts() []*Sort {
	out := make([]*Sort, 0, len(r.sorts))
	for _, s := range r.sorts {
		out = append(out, s)
	}
	return out
}

// AllTasks returns every declared task, in no particular order.
func (r *Registry) AllTasks() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out
}

// AllMethods returns every declared method across all abstract tasks, in no
// particular order.
func (r *Registry) AllMethods() []*Method {
	var out []*Method
	for _, ms := range r.methods {
		out = append(out, ms...)
	}
	return out
}

// AllPredicates returns the names of every declared predicate, in no
// particular order.
func (r *Registry) AllPredicates() []string {
	out := make([]string, 0, len(r.predicates))
	for name := range r.predicates {
		out = append(out, name)
	}
	return out
}

// AllFunctions returns the names of every declared function, in no
// particular order.
func (r *Registry) AllFunctions() []string {
	out := make([]string, 0, len(r.functions))
	for name := range r.functions {
		out = append(out, name)
	}
	return out
}

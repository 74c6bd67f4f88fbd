// Package semconfig resolves the configuration record: sort
// aliases (source-type → planner-sort), variable mappings (per-task
// hddl-var ↔ gm-var), semantic mappings lowering knowledge-base structure
// into predicate/function literals, and the set of knowledge-base element
// kinds considered "locations".
package semconfig

// MappingKind is the semantic-mapping rule kind.
type MappingKind string

const (
	MappingAttribute    MappingKind = "attribute"
	MappingOwnership    MappingKind = "ownership"
	MappingRelationship MappingKind = "relationship"
)

// PredicateType qualifies an attribute mapping's quantification over a
// collection-valued attribute.
type PredicateType string

const (
	PredicateUniversal   PredicateType = "universal"
	PredicateExistential PredicateType = "existential"
)

// RelationshipType distinguishes a flat attribute reference from a nested
// child-collection reference in ownership/relationship mappings.
type RelationshipType string

const (
	RelationshipAttribute RelationshipType = "attribute"
	RelationshipNested    RelationshipType = "nested"
)

// MappedType is what a semantic mapping lowers into: an ordinary predicate,
// or a numeric-valued function.
type MappedType string

const (
	MappedPredicate MappedType = "predicate"
	MappedFunction  MappedType = "function"
)

// SemanticMapping is one rule lowering knowledge-base structure into a
// predicate- or function-shaped world literal.
type SemanticMapping struct {
	Kind       MappingKind
	MappedType MappedType

	// attribute-kind fields
	RelatesTo     string // source sort
	Name          string // attribute name
	PredicateType PredicateType

	// ownership-kind fields
	Owner            string
	Owned            string
	OwnershipRelType RelationshipType
	OwnershipAttr    string

	// relationship-kind fields
	MainEntity    string
	RelatedEntity string
	RelRelType    RelationshipType
	RelAttr       string

	// PredicateName is the planner predicate or function this mapping
	// produces literals for.
	PredicateName string
}

// VariableMapping binds one task's HDDL-level variable to a goal-model
// variable.
type VariableMapping struct {
	TaskID  string
	HDDLVar string
	GMVar   string
}

// Config is the fully-resolved configuration record consumed by world-state
// initialization and the task-instance manager.
type Config struct {
	// SortAliases maps a knowledge-base element kind (source type) to the
	// planner sort it is treated as.
	SortAliases map[string]string

	// LocationKinds are the knowledge-base element kinds considered
	// "locations".
	LocationKinds map[string]bool

	VariableMappings []VariableMapping
	SemanticMappings []SemanticMapping
}

// New returns an empty Config ready for incremental population by an
// ingestion step.
func New() *Config {
	return &Config{
		SortAliases:   map[string]string{},
		LocationKinds: map[string]bool{},
	}
}

// PlannerSort resolves a knowledge-base element kind to its planner sort,
// returning the kind itself unaliased if no mapping is declared.
func (c *Config) PlannerSort(kind string) string {
	if s, ok := c.SortAliases[kind]; ok {
		return s
	}
	return kind
}

// IsLocationKind reports whether kind is configured as a location type.
func (c *Config) IsLocationKind(kind string) bool {
	return c.LocationKinds[kind]
}

// VariableMappingsForTask returns the variable mappings declared for the
// named task, in declaration order.
func (c *Config) VariableMappingsForTask(taskID string) []VariableMapping {
	var out []VariableMapping
	for _, vm := range c.VariableMappings {
		if vm.TaskID == taskID {
			out = append(out, vm)
		}
	}
	return out
}

// GMVarFor resolves a task's HDDL variable to its bound goal-model
// variable, per the task's declared variable mappings.
func (c *Config) GMVarFor(taskID, hddlVar string) (string, bool) {
	for _, vm := range c.VariableMappings {
		if vm.TaskID == taskID && vm.HDDLVar == hddlVar {
			return vm.GMVar, true
		}
	}
	return "", false
}

// Package ingest loads the domain, configuration, and knowledge-base
// artifacts a pipeline run compiles from off disk. YAML fixture files are
// checked for structural validity against a declared schema before being
// handed further into the system.
package ingest

// LiteralFixture is the YAML shape of one domain.Literal.
type LiteralFixture struct {
	Predicate    string   `yaml:"predicate" validate:"required"`
	Args         []string `yaml:"args"`
	Positive     bool     `yaml:"positive"`
	IsComparison bool     `yaml:"is_comparison"`
	Op           string   `yaml:"op" validate:"omitempty,oneof== > <"`
	Const        float64  `yaml:"const"`
}

// ParamFixture is the YAML shape of one domain.Param.
type ParamFixture struct {
	Name string `yaml:"name" validate:"required"`
	Sort string `yaml:"sort" validate:"required"`
}

// SortFixture declares one sort and its parent (empty parent means a direct
// child of the universal sort).
type SortFixture struct {
	Name   string `yaml:"name" validate:"required"`
	Parent string `yaml:"parent"`
}

// ObjectFixture declares one named object as a member of a sort.
type ObjectFixture struct {
	Sort string `yaml:"sort" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

// PredicateFixture is the YAML shape of one domain.PredicateDefinition.
type PredicateFixture struct {
	Name     string   `yaml:"name" validate:"required"`
	ArgSorts []string `yaml:"arg_sorts"`
}

// FunctionFixture is the YAML shape of one domain.FunctionDefinition.
type FunctionFixture struct {
	Name     string   `yaml:"name" validate:"required"`
	ArgSorts []string `yaml:"arg_sorts"`
}

// TaskFixture is the YAML shape of one domain.Task.
type TaskFixture struct {
	Name          string           `yaml:"name" validate:"required"`
	Params        []ParamFixture   `yaml:"params" validate:"dive"`
	IsPrimitive   bool             `yaml:"is_primitive"`
	Preconditions []LiteralFixture `yaml:"preconditions" validate:"dive"`
	Effects       []LiteralFixture `yaml:"effects" validate:"dive"`
}

// SubtaskFixture is the YAML shape of one domain.SubtaskRef.
type SubtaskFixture struct {
	ID       string   `yaml:"id" validate:"required"`
	TaskName string   `yaml:"task_name" validate:"required"`
	Args     []string `yaml:"args"`
}

// MethodFixture is the YAML shape of one domain.Method.
type MethodFixture struct {
	Name          string           `yaml:"name" validate:"required"`
	AbstractTask  string           `yaml:"abstract_task" validate:"required"`
	Params        []ParamFixture   `yaml:"params" validate:"dive"`
	ATArgs        []string         `yaml:"at_args"`
	Subtasks      []SubtaskFixture `yaml:"subtasks" validate:"required,min=1,dive"`
	Orderings     [][2]string      `yaml:"orderings"`
	Preconditions []LiteralFixture `yaml:"preconditions" validate:"dive"`
}

// DomainFixture is the top-level YAML shape of a domain artifact: the sort
// hierarchy, predicate/function signatures, and every task and method.
type DomainFixture struct {
	Sorts      []SortFixture      `yaml:"sorts" validate:"dive"`
	Objects    []ObjectFixture    `yaml:"objects" validate:"dive"`
	Predicates []PredicateFixture `yaml:"predicates" validate:"dive"`
	Functions  []FunctionFixture  `yaml:"functions" validate:"dive"`
	Tasks      []TaskFixture      `yaml:"tasks" validate:"required,min=1,dive"`
	Methods    []MethodFixture    `yaml:"methods" validate:"dive"`
}

// VariableMappingFixture is the YAML shape of one semconfig.VariableMapping.
type VariableMappingFixture struct {
	TaskID  string `yaml:"task_id" validate:"required"`
	HDDLVar string `yaml:"hddl_var" validate:"required"`
	GMVar   string `yaml:"gm_var" validate:"required"`
}

// SemanticMappingFixture is the YAML shape of one semconfig.SemanticMapping.
type SemanticMappingFixture struct {
	Kind          string `yaml:"kind" validate:"required,oneof=attribute ownership relationship"`
	MappedType    string `yaml:"mapped_type" validate:"required,oneof=predicate function"`
	PredicateName string `yaml:"predicate_name" validate:"required"`

	RelatesTo     string `yaml:"relates_to"`
	Name          string `yaml:"name"`
	PredicateType string `yaml:"predicate_type" validate:"omitempty,oneof=universal existential"`

	Owner            string `yaml:"owner"`
	Owned            string `yaml:"owned"`
	OwnershipRelType string `yaml:"ownership_rel_type" validate:"omitempty,oneof=attribute nested"`
	OwnershipAttr    string `yaml:"ownership_attr"`

	MainEntity    string `yaml:"main_entity"`
	RelatedEntity string `yaml:"related_entity"`
	RelRelType    string `yaml:"rel_rel_type" validate:"omitempty,oneof=attribute nested"`
	RelAttr       string `yaml:"rel_attr"`
}

// ConfigFixture is the top-level YAML shape of a configuration artifact.
type ConfigFixture struct {
	SortAliases      map[string]string        `yaml:"sort_aliases"`
	LocationKinds    []string                 `yaml:"location_kinds"`
	VariableMappings []VariableMappingFixture `yaml:"variable_mappings" validate:"dive"`
	SemanticMappings []SemanticMappingFixture `yaml:"semantic_mappings" validate:"dive"`
}

// KBNodeFixture is the YAML shape of one worldmodel.Node, recursively.
// Ordinary attributes are scalar-valued, and any attribute named in
// Children introduces a nested child collection under that attribute name.
type KBNodeFixture struct {
	Kind       string                   `yaml:"kind" validate:"required"`
	Name       string                   `yaml:"name" validate:"required"`
	Attributes map[string]any           `yaml:"attributes"`
	Children   map[string][]KBNodeFixture `yaml:"children"`
}

// KnowledgeBaseFixture is the top-level YAML shape of a knowledge-base
// artifact.
type KnowledgeBaseFixture struct {
	Root KBNodeFixture `yaml:"root" validate:"required"`
}

// ConditionExprFixture is the YAML shape of one goalmodel.ConditionExpr.
type ConditionExprFixture struct {
	Kind     string                 `yaml:"kind" validate:"required,oneof=literal and or not"`
	Pred     string                 `yaml:"pred"`
	Args     []string               `yaml:"args"`
	Positive bool                   `yaml:"positive"`
	Children []ConditionExprFixture `yaml:"children"`
}

// ForAllClauseFixture is the YAML shape of one goalmodel.ForAllClause.
type ForAllClauseFixture struct {
	IteratedVar  string               `yaml:"iterated_var" validate:"required"`
	IterationVar string               `yaml:"iteration_var" validate:"required"`
	Body         ConditionExprFixture `yaml:"body"`
}

// AchieveConditionFixture is the YAML shape of one goalmodel.AchieveCondition.
type AchieveConditionFixture struct {
	ForAll *ForAllClauseFixture `yaml:"for_all"`
	Body   ConditionExprFixture `yaml:"body"`
}

// QueriedPropertyFixture is the YAML shape of one goalmodel.QueriedProperty.
type QueriedPropertyFixture struct {
	QueriedVar string   `yaml:"queried_var" validate:"required"`
	Path       []string `yaml:"path"`
	Collection bool     `yaml:"collection"`
	SelectOp   string   `yaml:"select_op" validate:"omitempty,oneof=predicate negated_predicate eq neq"`
	SelectAttr string   `yaml:"select_attr"`
	SelectConst string  `yaml:"select_const"`
	SelectPred string   `yaml:"select_pred"`
}

// EdgeFixture is the YAML shape of one goalmodel.Edge, a parent→child link.
type EdgeFixture struct {
	To         string `yaml:"to" validate:"required"`
	Decomp     string `yaml:"decomp" validate:"required,oneof=AND OR"`
	IsMeansEnd bool   `yaml:"is_means_end"`
}

// GoalNodeFixture is the YAML shape of one goalmodel.Node.
type GoalNodeFixture struct {
	ID       string `yaml:"id" validate:"required"`
	Kind     string `yaml:"kind" validate:"required,oneof=goal task"`
	GoalType string `yaml:"goal_type" validate:"omitempty,oneof=Perform Achieve Query Loop Trigger"`

	QueriedProperty  *QueriedPropertyFixture  `yaml:"queried_property"`
	AchieveCondition *AchieveConditionFixture `yaml:"achieve_condition"`

	Location string   `yaml:"location"`
	Params   []string `yaml:"params"`

	RobotMin int `yaml:"robot_min"`
	RobotMax int `yaml:"robot_max"`

	// Group/Divisible are pointers so an omitted field can default true
	// (goalmodel.NewGoalNode/NewTaskNode's documented default) instead of
	// silently becoming an explicit false.
	Group     *bool `yaml:"group"`
	Divisible *bool `yaml:"divisible"`

	RuntimeAnnotation string `yaml:"runtime_annotation"`
	TaskName          string `yaml:"task_name" validate:"required_if=Kind task"`

	Children []EdgeFixture `yaml:"children" validate:"dive"`
}

// GoalModelFixture is the top-level YAML shape of a goal-model artifact.
type GoalModelFixture struct {
	RootID string            `yaml:"root_id" validate:"required"`
	Nodes  []GoalNodeFixture `yaml:"nodes" validate:"required,min=1,dive"`
}

// Package goalmodel holds the directed goal/task tree types consumed by
// the task-instance manager and the runtime-annotation builder. The tree
// itself is assembled and handed
// in fully-formed by an external ingestion step; this package only models
// its shape.
package goalmodel

// NodeKind distinguishes a goal node from a leaf task node.
type NodeKind string

const (
	KindGoal NodeKind = "goal"
	KindTask NodeKind = "task"
)

// GoalType is the goal-model custom property driving task-instance
// expansion and runtime-annotation rewriting.
type GoalType string

const (
	GoalPerform GoalType = "Perform"
	GoalAchieve GoalType = "Achieve"
	GoalQuery   GoalType = "Query"
	GoalLoop    GoalType = "Loop"
	GoalTrigger GoalType = "Trigger"
)

// DecompositionKind is the edge-level decomposition discipline declared
// between a goal and its children.
type DecompositionKind string

const (
	DecompositionAND DecompositionKind = "AND"
	DecompositionOR  DecompositionKind = "OR"
)

// CreationConditionKind distinguishes an event-trigger from an
// evaluated boolean condition.
type CreationConditionKind string

const (
	CreationTrigger   CreationConditionKind = "trigger"
	CreationCondition CreationConditionKind = "condition"
)

// RobotNumber is either a single fixed count or an inclusive range; Min==Max
// represents a fixed count.
type RobotNumber struct {
	Min int
	Max int
}

// Fixed reports whether n names an exact robot count.
func (n RobotNumber) Fixed() bool { return n.Min == n.Max }

// QueriedProperty is a Query goal's variable-binding expression: select
// from the path rooted at QueriedVar (or the knowledge-base root, when
// QueriedVar is the reserved self token) using Select.
type QueriedProperty struct {
	QueriedVar string
	Path       []string
	Select     SelectExpr
	Collection bool
}

// SelfToken is the reserved QueriedVar value meaning "descend from the
// knowledge-base root" rather than from a previously-bound variable.
const SelfToken = "self"

// SelectOp is the comparison form of a Query goal's select expression: a
// single predicate, negated predicate, or `attr == const | attr != const`.
type SelectOp string

const (
	SelectPredicate        SelectOp = "predicate"
	SelectNegatedPredicate SelectOp = "negated_predicate"
	SelectEq               SelectOp = "eq"
	SelectNeq              SelectOp = "neq"
)

// SelectExpr is a parsed select expression.
type SelectExpr struct {
	Op    SelectOp
	Attr  string
	Const string
	Pred  string
}

// ForAllClause is an Achieve goal's universal quantification over a bound
// collection variable.
type ForAllClause struct {
	IteratedVar  string
	IterationVar string
	Body         ConditionExpr
}

// AchieveCondition is the satisfaction condition checked at closure of an
// Achieve goal's subtree.
type AchieveCondition struct {
	ForAll *ForAllClause
	Body   ConditionExpr
}

// ConditionExprKind tags the shape of a ConditionExpr.
type ConditionExprKind string

const (
	ConditionLiteral ConditionExprKind = "literal"
	ConditionAnd     ConditionExprKind = "and"
	ConditionOr      ConditionExprKind = "or"
	ConditionNot     ConditionExprKind = "not"
)

// ConditionExpr is a boolean expression over OCL-style attribute/predicate
// references, lowered to planner predicates via semantic mappings at
// evaluation time.
type ConditionExpr struct {
	Kind     ConditionExprKind
	Pred     string
	Args     []string
	Positive bool
	Children []ConditionExpr
}

// CreationConditionSpec is a goal's CreationCondition property.
type CreationConditionSpec struct {
	Kind      CreationConditionKind
	Condition ConditionExpr
	EventName string
}

// Node is one goal-model tree element.
type Node struct {
	ID   string
	Kind NodeKind

	GoalType GoalType

	QueriedProperty  *QueriedProperty
	AchieveCondition *AchieveCondition
	CreationCond     *CreationConditionSpec

	Controlled []string
	Monitored  []string

	Location string
	Params   []string

	RobotNumber RobotNumber
	Group       bool
	Divisible   bool

	Periodic bool
	Period   float64
	Deadline float64

	// RuntimeAnnotation is the goal's declared operator-tree annotation
	// string, parsed by the runtime-annotation builder.
	RuntimeAnnotation string

	// TaskName is the HDDL task name this node instantiates; only set
	// when Kind == KindTask.
	TaskName string

	ParentID string
	Children []Edge
}

// Edge is a goal-model parent→child link.
type Edge struct {
	To           string
	Decomp       DecompositionKind
	IsMeansEnd   bool
}

// NewGoalNode constructs a goal node with the spec's documented defaults
// (Group and Divisible both default true).
func NewGoalNode(id string, gt GoalType) *Node {
	return &Node{ID: id, Kind: KindGoal, GoalType: gt, Group: true, Divisible: true}
}

// NewTaskNode constructs a leaf task node referencing the named HDDL task.
func NewTaskNode(id, taskName string) *Node {
	return &Node{ID: id, Kind: KindTask, TaskName: taskName, Group: true, Divisible: true}
}

// AddChild links child onto n with the given decomposition kind.
func (n *Node) AddChild(childID string, decomp DecompositionKind, meansEnd bool) {
	n.Children = append(n.Children, Edge{To: childID, Decomp: decomp, IsMeansEnd: meansEnd})
}

package ingest

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

var validate = validator.New()

func readAndValidate(fs afero.Fs, path string, out any) error {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("ingest: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("ingest: parse %q: %w", path, err)
	}
	if err := validate.Struct(out); err != nil {
		result := validationResultFromErr(err)
		return fmt.Errorf("ingest: %q failed validation: %s", path, result.ErrorSummary())
	}
	return nil
}

// LoadDomain reads a domain artifact from path and populates a frozen
// domain.Registry from it.
func LoadDomain(fs afero.Fs, path string) (*domain.Registry, error) {
	var fx DomainFixture
	if err := readAndValidate(fs, path, &fx); err != nil {
		return nil, err
	}

	r := domain.NewRegistry()
	for _, s := range fx.Sorts {
		if err := r.AddSort(s.Name, s.Parent); err != nil {
			return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
		}
	}
	for _, o := range fx.Objects {
		if err := r.AddObject(o.Sort, o.Name); err != nil {
			return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
		}
	}
	for _, p := range fx.Predicates {
		if err := r.AddPredicate(domain.PredicateDefinition{Name: p.Name, ArgSorts: p.ArgSorts}); err != nil {
			return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
		}
	}
	for _, fn := range fx.Functions {
		if err := r.AddFunction(domain.FunctionDefinition{Name: fn.Name, ArgSorts: fn.ArgSorts}); err != nil {
			return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
		}
	}
	for _, t := range fx.Tasks {
		if err := r.AddTask(convertTask(t)); err != nil {
			return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
		}
	}
	for _, m := range fx.Methods {
		if err := r.AddMethod(convertMethod(m)); err != nil {
			return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
		}
	}
	if err := r.Freeze(); err != nil {
		return nil, fmt.Errorf("ingest: domain %q: %w", path, err)
	}
	return r, nil
}

func convertTask(t TaskFixture) *domain.Task {
	return &domain.Task{
		Name:          t.Name,
		Params:        convertParams(t.Params),
		IsPrimitive:   t.IsPrimitive,
		Preconditions: convertLiterals(t.Preconditions),
		Effects:       convertLiterals(t.Effects),
	}
}

func convertMethod(m MethodFixture) *domain.Method {
	subtasks := make([]domain.SubtaskRef, len(m.Subtasks))
	for i, s := range m.Subtasks {
		subtasks[i] = domain.SubtaskRef{ID: s.ID, TaskName: s.TaskName, Args: s.Args}
	}
	orderings := make([]domain.OrderPair, len(m.Orderings))
	for i, o := range m.Orderings {
		orderings[i] = domain.OrderPair{o[0], o[1]}
	}
	return &domain.Method{
		Name:          m.Name,
		AbstractTask:  m.AbstractTask,
		Params:        convertParams(m.Params),
		ATArgs:        m.ATArgs,
		Subtasks:      subtasks,
		Orderings:     orderings,
		Preconditions: convertLiterals(m.Preconditions),
	}
}

func convertParams(ps []ParamFixture) []domain.Param {
	out := make([]domain.Param, len(ps))
	for i, p := range ps {
		out[i] = domain.Param{Name: p.Name, Sort: p.Sort}
	}
	return out
}

func convertLiterals(ls []LiteralFixture) []domain.Literal {
	out := make([]domain.Literal, len(ls))
	for i, l := range ls {
		out[i] = domain.Literal{
			Predicate:    l.Predicate,
			Args:         l.Args,
			Positive:     l.Positive,
			IsComparison: l.IsComparison,
			Op:           parseOp(l.Op),
			Const:        l.Const,
		}
	}
	return out
}

func parseOp(s string) domain.ComparisonOp {
	switch s {
	case "=":
		return domain.OpEq
	case ">":
		return domain.OpGt
	case "<":
		return domain.OpLt
	default:
		return domain.OpNone
	}
}

// LoadConfig reads a configuration artifact from path into a semconfig.Config.
func LoadConfig(fs afero.Fs, path string) (*semconfig.Config, error) {
	var fx ConfigFixture
	if err := readAndValidate(fs, path, &fx); err != nil {
		return nil, err
	}

	cfg := semconfig.New()
	for k, v := range fx.SortAliases {
		cfg.SortAliases[k] = v
	}
	for _, k := range fx.LocationKinds {
		cfg.LocationKinds[k] = true
	}
	for _, vm := range fx.VariableMappings {
		cfg.VariableMappings = append(cfg.VariableMappings, semconfig.VariableMapping{
			TaskID: vm.TaskID, HDDLVar: vm.HDDLVar, GMVar: vm.GMVar,
		})
	}
	for _, sm := range fx.SemanticMappings {
		cfg.SemanticMappings = append(cfg.SemanticMappings, convertSemanticMapping(sm))
	}
	return cfg, nil
}

func convertSemanticMapping(sm SemanticMappingFixture) semconfig.SemanticMapping {
	return semconfig.SemanticMapping{
		Kind:             semconfig.MappingKind(sm.Kind),
		MappedType:       semconfig.MappedType(sm.MappedType),
		RelatesTo:        sm.RelatesTo,
		Name:             sm.Name,
		PredicateType:    semconfig.PredicateType(sm.PredicateType),
		Owner:            sm.Owner,
		Owned:            sm.Owned,
		OwnershipRelType: semconfig.RelationshipType(sm.OwnershipRelType),
		OwnershipAttr:    sm.OwnershipAttr,
		MainEntity:       sm.MainEntity,
		RelatedEntity:    sm.RelatedEntity,
		RelRelType:       semconfig.RelationshipType(sm.RelRelType),
		RelAttr:          sm.RelAttr,
		PredicateName:    sm.PredicateName,
	}
}

// LoadKnowledgeBase reads a knowledge-base artifact from path into a
// worldmodel.KnowledgeBase.
func LoadKnowledgeBase(fs afero.Fs, path string) (*worldmodel.KnowledgeBase, error) {
	var fx KnowledgeBaseFixture
	if err := readAndValidate(fs, path, &fx); err != nil {
		return nil, err
	}
	return worldmodel.New(convertKBNode(fx.Root)), nil
}

func convertKBNode(fx KBNodeFixture) *worldmodel.Node {
	n := worldmodel.NewNode(fx.Kind, fx.Name)
	for attr, v := range fx.Attributes {
		n.SetScalar(attr, v)
	}
	for attr, children := range fx.Children {
		for _, c := range children {
			n.AddChild(attr, convertKBNode(c))
		}
	}
	return n
}

// LoadGoalModel reads a goal-model artifact from path into a validated
// goalmodel.Graph.
func LoadGoalModel(fs afero.Fs, path string) (*goalmodel.Graph, error) {
	var fx GoalModelFixture
	if err := readAndValidate(fs, path, &fx); err != nil {
		return nil, err
	}

	g := goalmodel.NewGraph()
	g.RootID = fx.RootID
	for _, n := range fx.Nodes {
		g.AddNode(convertGoalNode(n))
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("ingest: goal model %q: %w", path, err)
	}
	return g, nil
}

func convertGoalNode(fx GoalNodeFixture) *goalmodel.Node {
	n := &goalmodel.Node{
		ID:                fx.ID,
		Kind:              goalmodel.NodeKind(fx.Kind),
		GoalType:          goalmodel.GoalType(fx.GoalType),
		Location:          fx.Location,
		Params:            fx.Params,
		RobotNumber:       goalmodel.RobotNumber{Min: fx.RobotMin, Max: fx.RobotMax},
		Group:             boolOrDefault(fx.Group, true),
		Divisible:         boolOrDefault(fx.Divisible, true),
		RuntimeAnnotation: fx.RuntimeAnnotation,
		TaskName:          fx.TaskName,
	}
	if fx.QueriedProperty != nil {
		n.QueriedProperty = convertQueriedProperty(*fx.QueriedProperty)
	}
	if fx.AchieveCondition != nil {
		n.AchieveCondition = convertAchieveCondition(*fx.AchieveCondition)
	}
	for _, e := range fx.Children {
		n.Children = append(n.Children, goalmodel.Edge{
			To: e.To, Decomp: goalmodel.DecompositionKind(e.Decomp), IsMeansEnd: e.IsMeansEnd,
		})
	}
	return n
}

func convertQueriedProperty(fx QueriedPropertyFixture) *goalmodel.QueriedProperty {
	return &goalmodel.QueriedProperty{
		QueriedVar: fx.QueriedVar,
		Path:       fx.Path,
		Collection: fx.Collection,
		Select: goalmodel.SelectExpr{
			Op:    goalmodel.SelectOp(fx.SelectOp),
			Attr:  fx.SelectAttr,
			Const: fx.SelectConst,
			Pred:  fx.SelectPred,
		},
	}
}

func convertAchieveCondition(fx AchieveConditionFixture) *goalmodel.AchieveCondition {
	ac := &goalmodel.AchieveCondition{Body: convertConditionExpr(fx.Body)}
	if fx.ForAll != nil {
		ac.ForAll = &goalmodel.ForAllClause{
			IteratedVar:  fx.ForAll.IteratedVar,
			IterationVar: fx.ForAll.IterationVar,
			Body:         convertConditionExpr(fx.ForAll.Body),
		}
	}
	return ac
}

func convertConditionExpr(fx ConditionExprFixture) goalmodel.ConditionExpr {
	c := goalmodel.ConditionExpr{
		Kind:     goalmodel.ConditionExprKind(fx.Kind),
		Pred:     fx.Pred,
		Args:     fx.Args,
		Positive: fx.Positive,
	}
	for _, child := range fx.Children {
		c.Children = append(c.Children, convertConditionExpr(child))
	}
	return c
}

func boolOrDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

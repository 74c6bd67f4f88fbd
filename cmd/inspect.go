package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jvillaverde/missionforge/internal/ingest"
	"github.com/jvillaverde/missionforge/internal/pipeline"
	"github.com/jvillaverde/missionforge/internal/tui"
)

var (
	inspectDomainPath string
	inspectGoalPath   string
	inspectKBPath     string
	inspectConfigPath string
	inspectNoTUI      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Compile an artifact set and browse the resulting missions, ATGraph, and constraints",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectDomainPath, "domain", "", "Path to the domain artifact (required)")
	inspectCmd.Flags().StringVar(&inspectGoalPath, "goal-model", "", "Path to the goal-model artifact (required)")
	inspectCmd.Flags().StringVar(&inspectKBPath, "knowledge-base", "", "Path to the knowledge-base artifact (required)")
	inspectCmd.Flags().StringVar(&inspectConfigPath, "config", "", "Path to the configuration artifact (required)")
	inspectCmd.Flags().BoolVar(&inspectNoTUI, "no-tui", false, "Print a plain summary instead of launching the interactive explorer")
	_ = inspectCmd.MarkFlagRequired("domain")
	_ = inspectCmd.MarkFlagRequired("goal-model")
	_ = inspectCmd.MarkFlagRequired("knowledge-base")
	_ = inspectCmd.MarkFlagRequired("config")
}

func runInspect(cmd *cobra.Command, args []string) error {
	registryArtifact, err := ingest.LoadDomain(fs, inspectDomainPath)
	if err != nil {
		return err
	}
	graph, err := ingest.LoadGoalModel(fs, inspectGoalPath)
	if err != nil {
		return err
	}
	kb, err := ingest.LoadKnowledgeBase(fs, inspectKBPath)
	if err != nil {
		return err
	}
	config, err := ingest.LoadConfig(fs, inspectConfigPath)
	if err != nil {
		return err
	}
	if err := ingest.CheckVariableMappings(config, registryArtifact); err != nil {
		return err
	}

	res, err := pipeline.Run(pipeline.Input{Registry: registryArtifact, Graph: graph, KB: kb, Config: config})
	if err != nil {
		return err
	}

	if inspectNoTUI || !isInteractive() {
		return printInspectSummary(res)
	}

	model := tui.New(res.RunID, res.Document, res.ATGraph)
	p := tea.NewProgram(model)
	_, err = p.Run()
	return err
}

func printInspectSummary(res *pipeline.Result) error {
	fmt.Printf("run %s: %d task instances, %d valid missions\n", res.RunID, res.Instances, res.Missions)
	if res.ATGraph != nil {
		fmt.Printf("atgraph: %d nodes, %d edges\n", len(res.ATGraph.Nodes), len(res.ATGraph.Edges))
	}
	for i, m := range res.Document.Missions {
		fmt.Printf("  mission %d:\n", i)
		for _, d := range m.Decisions {
			fmt.Printf("    %s -> %s\n", d.TaskInstanceID, d.DecompositionID)
		}
	}
	fmt.Println("constraints:")
	for _, c := range res.Document.Constraints {
		fmt.Printf("  %s: %s <-> %s (group=%v divisible=%v)\n", c.Kind, c.A, c.B, c.Group, c.Divisible)
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jvillaverde/missionforge/internal/ingest"
	"github.com/jvillaverde/missionforge/internal/pipeline"
	"github.com/jvillaverde/missionforge/internal/store"
	"github.com/jvillaverde/missionforge/internal/watchload"
)

var (
	decomposeDomainPath string
	decomposeGoalPath   string
	decomposeKBPath     string
	decomposeConfigPath string
	decomposeWatch      bool
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose",
	Short: "Compile a domain/goal-model/knowledge-base/config set into valid mission decompositions",
	RunE:  runDecompose,
}

func init() {
	rootCmd.AddCommand(decomposeCmd)
	decomposeCmd.Flags().StringVar(&decomposeDomainPath, "domain", "", "Path to the domain artifact (required)")
	decomposeCmd.Flags().StringVar(&decomposeGoalPath, "goal-model", "", "Path to the goal-model artifact (required)")
	decomposeCmd.Flags().StringVar(&decomposeKBPath, "knowledge-base", "", "Path to the knowledge-base artifact (required)")
	decomposeCmd.Flags().StringVar(&decomposeConfigPath, "config", "", "Path to the configuration artifact (required)")
	decomposeCmd.Flags().BoolVar(&decomposeWatch, "watch", false, "Re-run whenever an input artifact changes")
	_ = decomposeCmd.MarkFlagRequired("domain")
	_ = decomposeCmd.MarkFlagRequired("goal-model")
	_ = decomposeCmd.MarkFlagRequired("knowledge-base")
	_ = decomposeCmd.MarkFlagRequired("config")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	hist, err := store.Open(cfg.RunHistoryDBPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	if err := decomposeOnce(cmd, hist); err != nil {
		fmt.Fprintf(os.Stderr, "missionforge decompose: %v\n", err)
		if !decomposeWatch {
			return err
		}
	}
	if !decomposeWatch {
		return nil
	}

	w, err := watchload.New(watchload.Options{
		Paths:   []string{decomposeDomainPath, decomposeGoalPath, decomposeKBPath, decomposeConfigPath},
		Verbose: verboseFlag(),
		Run: func() {
			if err := decomposeOnce(cmd, hist); err != nil {
				fmt.Fprintf(os.Stderr, "missionforge decompose: %v\n", err)
			}
		},
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, "watching for changes, press ctrl-c to stop")
	<-ctx.Done()
	return nil
}

func decomposeOnce(cmd *cobra.Command, hist *store.Store) error {
	registryArtifact, err := ingest.LoadDomain(fs, decomposeDomainPath)
	if err != nil {
		return err
	}
	graph, err := ingest.LoadGoalModel(fs, decomposeGoalPath)
	if err != nil {
		return err
	}
	kb, err := ingest.LoadKnowledgeBase(fs, decomposeKBPath)
	if err != nil {
		return err
	}
	config, err := ingest.LoadConfig(fs, decomposeConfigPath)
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

	persistRun(hist, res)
	return printDecomposeResult(cmd, res)
}

func persistRun(hist *store.Store, res *pipeline.Result) {
	rawDomain, _ := afero.ReadFile(fs, decomposeDomainPath)
	rawGoal, _ := afero.ReadFile(fs, decomposeGoalPath)
	rawKB, _ := afero.ReadFile(fs, decomposeKBPath)
	rawConfig, _ := afero.ReadFile(fs, decomposeConfigPath)

	stages := make([]store.StageTiming, len(res.Stages))
	for i, s := range res.Stages {
		stages[i] = store.StageTiming{RunID: res.RunID, Stage: s.Stage, Millis: s.Duration.Milliseconds()}
	}
	now := time.Now().UTC()
	run := store.Run{
		ID:            res.RunID,
		InputHash:     store.HashInputs(rawDomain, rawGoal, rawKB, rawConfig),
		StartedAt:     now.Add(-res.TotalTime),
		EndedAt:       now,
		InstanceCount: res.Instances,
		MissionCount:  res.Missions,
	}
	if err := hist.SaveRun(run, stages); err != nil {
		fmt.Fprintf(os.Stderr, "missionforge: could not persist run history: %v\n", err)
	}
}

func printDecomposeResult(cmd *cobra.Command, res *pipeline.Result) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	asJSON, _ := cmd.Flags().GetBool("json")

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Document)
	}
	if quiet {
		fmt.Println(res.RunID)
		return nil
	}
	fmt.Printf("run %s: %d task instances, %d valid missions (%s)\n", res.RunID, res.Instances, res.Missions, res.TotalTime)
	for i, m := range res.Document.Missions {
		fmt.Printf("  mission %d: %d decisions\n", i, len(m.Decisions))
	}
	return nil
}

func verboseFlag() bool {
	v, _ := rootCmd.PersistentFlags().GetBool("verbose")
	return v
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvillaverde/missionforge/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently compiled runs from persisted run history",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	hist, err := store.Open(cfg.RunHistoryDBPath)
	if err != nil {
		return err
	}
	defer hist.Close()

	runs, err := hist.ListRuns(historyLimit)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		status := "ok"
		if r.TerminalErrorKind != "" {
			status = r.TerminalErrorKind
		}
		fmt.Printf("%s  %s  instances=%d missions=%d  %s\n", r.ID, r.StartedAt.Format("2006-01-02T15:04:05Z"), r.InstanceCount, r.MissionCount, status)
	}
	return nil
}

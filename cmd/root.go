// Package cmd implements the missionforge command line: compiling mission
// artifacts into valid decompositions, serving them over MCP, and browsing
// a completed run. A single rootCmd carries persistent flags, a
// PersistentPreRunE that opens the telemetry client (its
// PersistentPostRunE is a no-op; Execute tracks the command and shuts the
// client down once rootCmd.Execute returns), a crash handler wired before
// Execute, and command-hint suggestions on an unknown-command error.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jvillaverde/missionforge/internal/logging"
	"github.com/jvillaverde/missionforge/internal/settings"
	"github.com/jvillaverde/missionforge/internal/telemetry"
)

var (
	// version is set via ldflags at build time:
	// -ldflags "-X github.com/jvillaverde/missionforge/cmd.version=1.0.0"
	version = "dev"

	// posthogAPIKey and posthogEndpoint are set via ldflags; empty in
	// development builds, which keeps telemetry.Init on its NoopClient.
	posthogAPIKey   = ""
	posthogEndpoint = "https://us.i.posthog.com"

	// fs is the filesystem every subcommand reads artifacts through. Tests
	// substitute afero.NewMemMapFs() by calling SetFS before Execute.
	fs afero.Fs = afero.NewOsFs()

	// cfg is the resolved runtime configuration, loaded in initConfig.
	cfg *settings.Settings

	commandStartTime time.Time
	executedCmd      *cobra.Command
	executedArgs     []string
)

var rootCmd = &cobra.Command{
	Use:   "missionforge",
	Short: "missionforge - HTN mission-decomposition compiler",
	Long: `missionforge compiles a multi-robot mission domain, goal model, knowledge
base, and configuration into the set of valid mission decompositions a
planner can execute, along with the ordering and divisibility constraints
between them.`,
	PersistentPreRunE:  initTelemetry,
	PersistentPostRunE: closeTelemetry,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// SetFS overrides the filesystem every subcommand operates on. Exported for
// in-process tests that want an afero.NewMemMapFs() instead of the real
// disk.
func SetFS(f afero.Fs) { fs = f }

// Execute adds all child commands to rootCmd and runs it. Called by
// main.main(); only needs to happen once.
func Execute() {
	defer logging.HandlePanic()

	rootCmd.SuggestionsMinimumDistance = 2
	err := rootCmd.Execute()
	trackAndCloseTelemetry(err)

	if err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			parts := strings.Split(err.Error(), "\"")
			if len(parts) >= 2 {
				if hint := getCommandHint(parts[1]); hint != "" {
					fmt.Fprintf(os.Stderr, "\n%s\n", hint)
				}
			}
		}
		os.Exit(1)
	}
}

func getCommandHint(mistyped string) string {
	hints := map[string]string{
		"run":       "Hint: To compile a mission, use: missionforge decompose",
		"compile":   "Hint: To compile a mission, use: missionforge decompose",
		"build":     "Hint: To compile a mission, use: missionforge decompose",
		"check":     "Hint: To check artifacts without compiling, use: missionforge validate",
		"lint":      "Hint: To check artifacts without compiling, use: missionforge validate",
		"show":      "Hint: To compile and browse a mission, use: missionforge inspect",
		"explore":   "Hint: To compile and browse a mission, use: missionforge inspect",
		"mcp":       "Hint: To serve tools over MCP, use: missionforge serve-mcp",
		"serve":     "Hint: To serve tools over MCP, use: missionforge serve-mcp",
		"runs":      "Hint: To list past runs, use: missionforge history",
		"log":       "Hint: To list past runs, use: missionforge history",
	}
	return hints[mistyped]
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("quiet", false, "Minimal output")
	rootCmd.PersistentFlags().Bool("no-telemetry", false, "Disable telemetry for this command")
	rootCmd.PersistentFlags().String("config", "", "Path to an explicit .missionforge.yaml config file")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("no-telemetry", rootCmd.PersistentFlags().Lookup("no-telemetry"))

	rootCmd.SetHelpTemplate(`{{if .Long}}
{{.Long}}
{{else}}
  {{.Short}}
{{end}}
  Usage: {{.UseLine}}
{{if .HasAvailableSubCommands}}
  Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}    {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}
  Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

  Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`)
}

// initConfig loads a local .env (if present) and resolves Settings via
// internal/settings.
func initConfig() {
	_ = godotenv.Load()

	explicit, _ := rootCmd.PersistentFlags().GetString("config")
	resolved, err := settings.Load(fs, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "missionforge: %v\n", err)
		os.Exit(1)
	}
	cfg = resolved
	logging.SetVersion(version)
	logging.SetBasePath(filepath.Dir(cfg.RunHistoryDBPath))
	if len(os.Args) > 1 {
		logging.SetCommand(strings.Join(os.Args[1:], " "))
	}
}

// initTelemetry wires the global telemetry client: disabled via flag or CI,
// otherwise gated by Settings.TelemetryEnabled (no interactive consent
// prompt in this CLI: the choice lives in .missionforge.yaml instead, since
// settings.Load already layers file/env/default). The persisted
// telemetry.Config supplies a stable per-install AnonymousID across runs;
// a fresh one is generated and saved on first use.
func initTelemetry(cmd *cobra.Command, args []string) error {
	executedCmd = cmd
	executedArgs = args
	commandStartTime = time.Now()

	telemetryCfg, err := telemetry.Load()
	if err != nil {
		telemetryCfg = &telemetry.Config{}
	}
	wasAsked := telemetryCfg.ConsentAsked

	enabled := cfg != nil && cfg.TelemetryEnabled && !viper.GetBool("no-telemetry") && !isCI()
	if enabled {
		telemetryCfg.Enable()
	} else {
		telemetryCfg.Disable()
	}
	if !wasAsked {
		_ = telemetryCfg.Save()
	}

	if !enabled {
		return telemetry.Init("", "", version, telemetryCfg)
	}
	return telemetry.Init(posthogAPIKey, posthogEndpoint, version, telemetryCfg)
}

func closeTelemetry(cmd *cobra.Command, args []string) error {
	return nil
}

func trackAndCloseTelemetry(cmdErr error) {
	client := telemetry.GetClient()
	if client == nil || executedCmd == nil {
		return
	}
	durationMs := time.Since(commandStartTime).Milliseconds()
	props := telemetry.Properties{
		"command":     getCommandPath(executedCmd),
		"duration_ms": durationMs,
		"success":     cmdErr == nil,
		"args_count":  len(executedArgs),
	}
	if errType := classifyError(cmdErr); errType != "" {
		props["error_type"] = errType
	}
	telemetry.Track(telemetry.EventCLICommand, props)
	_ = telemetry.Shutdown()
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "unknown command"):
		return "unknown_command"
	case strings.Contains(errStr, "unknown flag"):
		return "unknown_flag"
	case strings.Contains(errStr, "required flag"):
		return "missing_required_flag"
	case strings.Contains(errStr, "not found"):
		return "not_found"
	case strings.Contains(errStr, "permission denied"):
		return "permission_denied"
	default:
		return "other"
	}
}

func getCommandPath(cmd *cobra.Command) string {
	if cmd == nil {
		return "unknown"
	}
	var parts []string
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() != "" && c.Name() != "missionforge" {
			parts = append([]string{c.Name()}, parts...)
		}
	}
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, " ")
}

func isCI() bool {
	for _, v := range []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "BUILDKITE"} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractive reports whether stdin is an attached terminal, used to
// decide whether inspect should default to the bubbletea explorer or a
// plain summary.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// GetVersion returns the application version.
func GetVersion() string { return version }

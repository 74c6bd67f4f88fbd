// Package settings resolves missionforge's runtime configuration in
// layers: an explicit config file, a .missionforge.yaml file,
// MISSIONFORGE_* environment variables, and built-in defaults.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	configName = ".missionforge"
	envPrefix  = "MISSIONFORGE"
)

// Settings is the fully-resolved runtime configuration record.
type Settings struct {
	// RunHistoryDBPath is where internal/store keeps its sqlite run-history
	// database.
	RunHistoryDBPath string `mapstructure:"run_history_db_path" validate:"required"`

	// PolicyDir is the directory internal/policycheck loads Rego modules
	// from.
	PolicyDir string `mapstructure:"policy_dir" validate:"required"`

	// DefaultOutputFormat is the serialization format the CLI renders a
	// render.Document as when --format isn't given.
	DefaultOutputFormat string `mapstructure:"default_output_format" validate:"required,oneof=json yaml"`

	// TelemetryEnabled gates whether internal/telemetry.Init wires a real
	// PostHog client or stays on its no-op default.
	TelemetryEnabled bool `mapstructure:"telemetry_enabled"`
}

var validate = validator.New()

// Load resolves Settings from, in priority order: MISSIONFORGE_*
// environment variables, then one config file (the explicit path if
// non-empty, otherwise a ./.missionforge.yaml or $HOME/.missionforge.yaml
// found via fs), then the built-in defaults below. fs lets tests substitute
// afero.NewMemMapFs() for the real filesystem.
func Load(fs afero.Fs, explicitPath string) (*Settings, error) {
	v := viper.New()
	v.SetFs(fs)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("run_history_db_path", defaultRunHistoryDBPath())
	v.SetDefault("policy_dir", ".missionforge/policies")
	v.SetDefault("default_output_format", "json")
	v.SetDefault("telemetry_enabled", false)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("settings: read config: %w", err)
		}
		if explicitPath != "" {
			return nil, fmt.Errorf("settings: config file %q not found", explicitPath)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("settings: unmarshal: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("settings: validate: %w", err)
	}
	return &s, nil
}

func defaultRunHistoryDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".missionforge/runs.db"
	}
	return filepath.Join(home, ".missionforge", "runs.db")
}

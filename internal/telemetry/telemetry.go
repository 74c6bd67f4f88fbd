// Package telemetry manages anonymous usage telemetry for the mission
// decomposition pipeline: a disk-persisted anonymous id and enabled flag
// (Config), and a global client (PostHog-backed, or a no-op) events are
// routed through.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// defaultAPIKeyEnv names an environment variable for the PostHog project
// key. Nothing reads it: the CLI takes the key from a build-time ldflag,
// empty in development builds, which keeps the global client in its no-op
// form.
const defaultAPIKeyEnv = "MISSIONFORGE_TELEMETRY_KEY"

// ConfigFileName is the telemetry state file's name, stored alongside
// (not inside) the main `.missionforge.yaml` settings file.
const ConfigFileName = "telemetry.json"

// Config is the on-disk telemetry state: whether telemetry is enabled,
// whether the operator has already been asked, and a stable anonymous id
// used as every event's distinct_id.
type Config struct {
	Enabled      bool   `json:"enabled"`
	ConsentAsked bool   `json:"consent_asked"`
	AnonymousID  string `json:"anonymous_id"`
}

// Enable marks telemetry on and consent as resolved.
func (c *Config) Enable() { c.Enabled, c.ConsentAsked = true, true }

// Disable marks telemetry off and consent as resolved.
func (c *Config) Disable() { c.Enabled, c.ConsentAsked = false, true }

// NeedsConsent reports whether the operator hasn't been asked yet.
func (c *Config) NeedsConsent() bool { return !c.ConsentAsked }

// IsEnabled reports the current enabled state.
func (c *Config) IsEnabled() bool { return c.Enabled }

var (
	configDirOverrideMu sync.RWMutex
	configDirOverride   string // test-only override of the default ~/.missionforge dir
)

// SetConfigDir overrides the telemetry config directory; pass "" to
// restore the default ~/.missionforge.
func SetConfigDir(dir string) {
	configDirOverrideMu.Lock()
	defer configDirOverrideMu.Unlock()
	configDirOverride = dir
}

func configDir() (string, error) {
	configDirOverrideMu.RLock()
	override := configDirOverride
	configDirOverrideMu.RUnlock()
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".missionforge"), nil
}

// GetConfigPath returns the full path to the telemetry state file.
func GetConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the persisted telemetry config, generating a fresh
// AnonymousID for a first run (no file yet) or a file that predates the
// id field. It never fails on a missing file; only a malformed one.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		cfg.AnonymousID = uuid.New().String()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.AnonymousID == "" {
		cfg.AnonymousID = uuid.New().String()
	}
	return cfg, nil
}

// Save persists c to the telemetry config path, creating its parent
// directory if needed, with owner-only permissions.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

var (
	globalMu     sync.RWMutex
	globalClient Client = NewNoopClient()
)

// Init wires the global telemetry client from persisted Config and an
// optional PostHog API key/endpoint. A missing key or disabled config
// yields a NoopClient, so callers can unconditionally call Track/Shutdown.
func Init(apiKey, endpoint, version string, cfg *Config) error {
	client, err := NewPostHogClient(ClientConfig{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Version:  version,
		Config:   cfg,
	})
	if err != nil {
		return err
	}

	globalMu.Lock()
	globalClient = client
	globalMu.Unlock()
	return nil
}

// GetClient returns the active global telemetry client.
func GetClient() Client {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalClient
}

// Track records an event using the global client.
func Track(event string, properties Properties) {
	GetClient().Track(event, properties)
}

// Shutdown flushes and closes the global client.
func Shutdown() error {
	return GetClient().Close()
}

package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDir(dir)
	t.Cleanup(func() { SetConfigDir("") })
	return dir
}

func TestLoadWithNoFileReturnsDefaultsAndGeneratesID(t *testing.T) {
	withTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Enabled {
		t.Error("fresh config should have Enabled = false")
	}
	if cfg.ConsentAsked {
		t.Error("fresh config should have ConsentAsked = false")
	}
	if len(cfg.AnonymousID) != 36 {
		t.Errorf("AnonymousID should be a UUID, got %q (len %d)", cfg.AnonymousID, len(cfg.AnonymousID))
	}
}

func TestLoadReadsPersistedValues(t *testing.T) {
	dir := withTempConfigDir(t)

	existing := Config{Enabled: true, ConsentAsked: true, AnonymousID: "existing-uuid-5678"}
	data, _ := json.Marshal(existing)
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != existing {
		t.Errorf("Load() = %+v, want %+v", *cfg, existing)
	}
}

func TestLoadBackfillsMissingAnonymousID(t *testing.T) {
	dir := withTempConfigDir(t)

	existing := Config{Enabled: true, ConsentAsked: true}
	data, _ := json.Marshal(existing)
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.AnonymousID) != 36 {
		t.Errorf("Load() should backfill a UUID, got %q", cfg.AnonymousID)
	}
}

func TestSaveWritesFileWithOwnerOnlyPermissions(t *testing.T) {
	dir := withTempConfigDir(t)
	cfg := &Config{Enabled: true, ConsentAsked: true, AnonymousID: "test-uuid-1234"}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath := filepath.Join(dir, ConfigFileName)
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file permissions = %o, want 0600", info.Mode().Perm())
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if loaded != *cfg {
		t.Errorf("persisted config = %+v, want %+v", loaded, *cfg)
	}
}

func TestSaveCreatesMissingParentDirectories(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "config")
	SetConfigDir(nested)
	t.Cleanup(func() { SetConfigDir("") })

	cfg := &Config{Enabled: true, ConsentAsked: true, AnonymousID: "test-uuid"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(nested); os.IsNotExist(err) {
		t.Error("Save() should create nested directories")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	withTempConfigDir(t)

	original := &Config{Enabled: true, ConsentAsked: true, AnonymousID: "roundtrip-uuid-9999"}
	if err := original.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *original {
		t.Errorf("Load() = %+v, want %+v", *loaded, *original)
	}
}

func TestGetConfigPathJoinsOverrideDirAndFileName(t *testing.T) {
	dir := withTempConfigDir(t)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if want := filepath.Join(dir, ConfigFileName); path != want {
		t.Errorf("GetConfigPath() = %v, want %v", path, want)
	}
}

func TestConfigEnableSetsEnabledAndConsent(t *testing.T) {
	cfg := &Config{}
	cfg.Enable()
	if !cfg.Enabled || !cfg.ConsentAsked {
		t.Errorf("Enable() left cfg = %+v, want Enabled and ConsentAsked both true", *cfg)
	}
}

func TestConfigDisableClearsEnabledButRecordsConsent(t *testing.T) {
	cfg := &Config{Enabled: true}
	cfg.Disable()
	if cfg.Enabled {
		t.Error("Disable() should clear Enabled")
	}
	if !cfg.ConsentAsked {
		t.Error("Disable() should still record that consent was asked")
	}
}

func TestConfigNeedsConsent(t *testing.T) {
	cases := map[string]struct {
		consentAsked bool
		want         bool
	}{
		"not yet asked":  {consentAsked: false, want: true},
		"already asked":  {consentAsked: true, want: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{ConsentAsked: tc.consentAsked}
			if got := cfg.NeedsConsent(); got != tc.want {
				t.Errorf("NeedsConsent() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConfigIsEnabledMirrorsEnabledField(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := &Config{Enabled: enabled}
		if got := cfg.IsEnabled(); got != enabled {
			t.Errorf("IsEnabled() = %v, want %v", got, enabled)
		}
	}
}

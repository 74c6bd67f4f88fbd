package policycheck

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoaderLoadAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/policies/domain.rego", []byte("package missionforge.domain\n"), 0o644)
	_ = afero.WriteFile(fs, "/policies/nested/config.rego", []byte("package missionforge.config\n"), 0o644)
	_ = afero.WriteFile(fs, "/policies/README.md", []byte("not a policy"), 0o644)

	l := NewLoader(fs, "/policies")
	files, err := l.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 .rego files, got %d", len(files))
	}
}

func TestLoaderMissingDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := NewLoader(fs, "/nope")
	files, err := l.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on missing dir should not error: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %d", len(files))
	}
}

func TestLoaderExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/policies/domain.rego", []byte("package missionforge.domain\n"), 0o644)
	l := NewLoader(fs, "/policies")
	ok, err := l.Exists()
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("expected policies dir to exist")
	}
}

package store

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndListRuns(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	hash := HashInputs([]byte("domain"), []byte("gm"), []byte("kb"), []byte("cfg"))
	run := Run{
		ID:            "run-1",
		InputHash:     hash,
		StartedAt:     time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
		EndedAt:       time.Date(2026, 7, 1, 10, 0, 2, 0, time.UTC),
		InstanceCount: 3,
		MissionCount:  2,
	}
	stages := []StageTiming{
		{RunID: run.ID, Stage: "task-instance-expansion", Millis: 5},
		{RunID: run.ID, Stage: "runtime-annotation", Millis: 7},
	}
	if err := s.SaveRun(run, stages); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].InputHash != hash {
		t.Fatalf("expected hash %q, got %q", hash, runs[0].InputHash)
	}

	got, gotStages, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.InstanceCount != 3 || got.MissionCount != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if len(gotStages) != 2 || gotStages[0].Stage != "task-instance-expansion" {
		t.Fatalf("unexpected stage timings: %+v", gotStages)
	}
}

func TestGetRunMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, _, err := s.GetRun("nonexistent"); err == nil {
		t.Fatalf("expected error looking up a missing run")
	}
}

func TestHashInputsStableAndSensitive(t *testing.T) {
	a := HashInputs([]byte("d1"), []byte("g"), []byte("k"), []byte("c"))
	b := HashInputs([]byte("d1"), []byte("g"), []byte("k"), []byte("c"))
	if a != b {
		t.Fatalf("expected stable hash, got %q vs %q", a, b)
	}
	c := HashInputs([]byte("d2"), []byte("g"), []byte("k"), []byte("c"))
	if a == c {
		t.Fatalf("expected hash to change when an input artifact changes")
	}
}

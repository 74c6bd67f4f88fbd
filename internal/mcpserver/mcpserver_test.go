package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/jvillaverde/missionforge/internal/pipeline"
	"github.com/jvillaverde/missionforge/internal/store"
)

const domainYAML = `
sorts:
  - name: robot
  - name: room
tasks:
  - name: move
    is_primitive: true
    params:
      - name: r
        sort: robot
      - name: dest
        sort: room
    effects:
      - predicate: at
        args: [r, dest]
        positive: true
`

const configYAML = `
sort_aliases: {}
`

const kbYAML = `
root:
  kind: world
  name: root
`

const goalModelYAML = `
root_id: T1
nodes:
  - id: T1
    kind: task
    task_name: move
    runtime_annotation: "T1"
`

func writeFixtures(t *testing.T, fs afero.Fs) DecomposeParams {
	t.Helper()
	files := map[string]string{
		"/domain.yaml": domainYAML,
		"/config.yaml": configYAML,
		"/kb.yaml":     kbYAML,
		"/gm.yaml":     goalModelYAML,
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile %q: %v", path, err)
		}
	}
	return DecomposeParams{
		DomainPath:        "/domain.yaml",
		ConfigPath:        "/config.yaml",
		KnowledgeBasePath: "/kb.yaml",
		GoalModelPath:     "/gm.yaml",
	}
}

func newTestRegistry(t *testing.T, fs afero.Fs) *registry {
	t.Helper()
	hist, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { hist.Close() })
	return &registry{deps: Deps{FS: fs, History: hist}, cache: make(map[string]*pipeline.Result)}
}

func TestDecomposeMissionThenInspect(t *testing.T) {
	fs := afero.NewMemMapFs()
	args := writeFixtures(t, fs)
	reg := newTestRegistry(t, fs)

	decompose := reg.decomposeMissionHandler()
	result, err := decompose(context.Background(), nil, &mcp.CallToolParamsFor[DecomposeParams]{Arguments: args})
	if err != nil {
		t.Fatalf("decompose_mission: %v", err)
	}
	runID := result.StructuredContent.RunID
	if runID == "" {
		t.Fatalf("expected a non-empty run id")
	}
	if result.StructuredContent.InstanceCount == 0 {
		t.Fatalf("expected at least one task instance")
	}

	missions, err := reg.listValidMissionsHandler()(context.Background(), nil, &mcp.CallToolParamsFor[RunIDParams]{Arguments: RunIDParams{RunID: runID}})
	if err != nil {
		t.Fatalf("list_valid_missions: %v", err)
	}
	if len(missions.StructuredContent.Missions) == 0 {
		t.Fatalf("expected at least one valid mission")
	}

	atg, err := reg.inspectATGraphHandler()(context.Background(), nil, &mcp.CallToolParamsFor[RunIDParams]{Arguments: RunIDParams{RunID: runID}})
	if err != nil {
		t.Fatalf("inspect_atgraph: %v", err)
	}
	if atg.StructuredContent.NodeCount == 0 {
		t.Fatalf("expected a non-empty atgraph")
	}

	runs, err := reg.listRunsHandler()(context.Background(), nil, &mcp.CallToolParamsFor[ListRunsParams]{Arguments: ListRunsParams{}})
	if err != nil {
		t.Fatalf("list_runs: %v", err)
	}
	if len(runs.StructuredContent.Runs) != 1 || runs.StructuredContent.Runs[0].RunID != runID {
		t.Fatalf("expected exactly one persisted run matching %q, got %+v", runID, runs.StructuredContent.Runs)
	}
}

func TestListValidMissionsRejectsUnknownRunID(t *testing.T) {
	fs := afero.NewMemMapFs()
	reg := newTestRegistry(t, fs)

	if _, err := reg.listValidMissionsHandler()(context.Background(), nil, &mcp.CallToolParamsFor[RunIDParams]{Arguments: RunIDParams{RunID: "nonexistent"}}); err == nil {
		t.Fatalf("expected an error for an unknown run id")
	}
}

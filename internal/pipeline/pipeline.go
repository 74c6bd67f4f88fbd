// Package pipeline orchestrates the three compilation stages end to end:
// task-instance expansion, runtime-annotation and Task Decomposition Graph
// assembly, and mission-decomposition graph assembly followed by constraint
// extraction and valid-mission enumeration. Run is single-threaded and
// deterministic: each stage consumes only the immutable outputs of the
// stage before it, threading one stage's result into the next.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/constraints"
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/enumerator"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/logging"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/render"
	"github.com/jvillaverde/missionforge/internal/runtimeannot"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/taskinstance"
	"github.com/jvillaverde/missionforge/internal/telemetry"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

// Input is the full set of frozen input artifacts a run compiles from.
type Input struct {
	Registry *domain.Registry
	Graph    *goalmodel.Graph
	KB       *worldmodel.KnowledgeBase
	Config   *semconfig.Config
}

// StageDuration records how long one named stage took.
type StageDuration struct {
	Stage    string
	Duration time.Duration
}

// Result is the outcome of one end-to-end run.
type Result struct {
	RunID     string
	Document  render.Document
	ATGraph   *atgraph.Graph
	Instances int
	Missions  int
	Stages    []StageDuration
	TotalTime time.Duration
}

// Run compiles in into a rendered Document, emitting a pipeline_run
// telemetry event and crash-context stage markers along the way. Any fatal
// error aborts the run and is returned wrapped with the run id via %w, so
// callers reach its missionerr.Kind through errors.As.
func Run(in Input) (*Result, error) {
	runID := uuid.New().String()
	logging.SetLastRunID(runID)

	res := &Result{RunID: runID}
	started := time.Now()

	world, err := stage(res, "init-world", func() (*worldstate.World, error) {
		return worldstate.Initialize(in.KB, in.Config)
	})
	if err != nil {
		return fail(res, started, err)
	}

	instances, resolved, err := stageExpand(res, in, world)
	if err != nil {
		return fail(res, started, err)
	}
	res.Instances = countInstances(instances)

	tree, err := stage(res, "annotate", func() (*runtimeannot.AnnotNode, error) {
		return runtimeannot.New(in.Graph, instances, resolved).Build()
	})
	if err != nil {
		return fail(res, started, err)
	}

	graph, err := stage(res, "assemble", func() (*atgraph.Graph, error) {
		return atgraph.New(in.Registry, in.Graph, instances, world).Assemble(tree)
	})
	if err != nil {
		return fail(res, started, err)
	}
	res.ATGraph = graph

	cs, err := stage(res, "constraints", func() ([]constraints.Constraint, error) {
		return constraints.Extract(graph)
	})
	if err != nil {
		return fail(res, started, err)
	}

	cands, err := stage(res, "enumerate", func() ([]enumerator.Candidate, error) {
		return enumerator.New(graph, in.Graph, resolved, world).Enumerate()
	})
	if err != nil {
		return fail(res, started, err)
	}

	doc, err := stage(res, "render", func() (render.Document, error) {
		return render.Render(cands, cs), nil
	})
	if err != nil {
		return fail(res, started, err)
	}

	res.Document = doc
	res.Missions = len(doc.Missions)
	res.TotalTime = time.Since(started)

	telemetry.Track(telemetry.EventPipelineRun, telemetry.Properties{
		"run_id":      runID,
		"instances":   res.Instances,
		"missions":    res.Missions,
		"total_ms":    res.TotalTime.Milliseconds(),
		"stage_count": len(res.Stages),
	})
	return res, nil
}

// stage times fn, recording its name both in res.Stages and as the crash
// context's last-known stage, so a panic mid-run can be cross-referenced
// against which stage was executing.
func stage[T any](res *Result, name string, fn func() (T, error)) (T, error) {
	logging.SetLastStage(name)
	start := time.Now()
	out, err := fn()
	res.Stages = append(res.Stages, StageDuration{Stage: name, Duration: time.Since(start)})
	return out, err
}

// stageExpand is its own helper since Manager.Expand returns two values
// besides the error, which the generic stage helper cannot accommodate.
func stageExpand(res *Result, in Input, world *worldstate.World) (map[string][]*taskinstance.Instance, map[string]taskinstance.ResolvedVar, error) {
	logging.SetLastStage("expand")
	start := time.Now()
	instances, resolved, err := taskinstance.New(in.Registry, in.KB, in.Config).Expand(in.Graph)
	res.Stages = append(res.Stages, StageDuration{Stage: "expand", Duration: time.Since(start)})
	return instances, resolved, err
}

func countInstances(instances map[string][]*taskinstance.Instance) int {
	n := 0
	for _, is := range instances {
		n += len(is)
	}
	return n
}

func fail(res *Result, started time.Time, err error) (*Result, error) {
	kind := "unknown"
	if me, ok := err.(*missionerr.Error); ok {
		kind = string(me.Kind)
	}
	telemetry.Track(telemetry.EventCommandError, telemetry.Properties{
		"run_id":     res.RunID,
		"error_kind": kind,
		"total_ms":   time.Since(started).Milliseconds(),
		"last_stage": lastStage(res),
	})
	return nil, fmt.Errorf("pipeline[%s]: %w", res.RunID, err)
}

func lastStage(res *Result) string {
	if len(res.Stages) == 0 {
		return ""
	}
	return res.Stages[len(res.Stages)-1].Stage
}

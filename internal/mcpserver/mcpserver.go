// Package mcpserver exposes the mission-decomposition pipeline as an MCP
// tool server over stdio: one mcp.Implementation + mcp.NewServer, a
// register*Tools function per concern using mcp.AddTool's generic
// ToolHandlerFor[In, Out] signature, run over mcp.NewStdioTransport.
package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/jvillaverde/missionforge/internal/atgraph"
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/ingest"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/pipeline"
	"github.com/jvillaverde/missionforge/internal/render"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/store"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

// maxCachedRuns bounds the in-memory run cache backing list_valid_missions,
// get_constraints, and inspect_atgraph: those tools need the full
// in-memory Document/ATGraph a run produced, which the sqlite run-history
// table deliberately does not persist (it keeps counts, not full graphs).
const maxCachedRuns = 32

// Deps are the dependencies a missionforge MCP server is built from.
type Deps struct {
	FS      afero.Fs
	History *store.Store
}

// NewServer builds an MCP server exposing decompose_mission,
// list_valid_missions, get_constraints, inspect_atgraph, and list_runs.
func NewServer(deps Deps, version string) *mcp.Server {
	impl := &mcp.Implementation{Name: "missionforge", Version: version}
	server := mcp.NewServer(impl, &mcp.ServerOptions{})

	reg := &registry{deps: deps, cache: make(map[string]*pipeline.Result)}
	reg.register(server)
	return server
}

// registry holds the handlers' shared state: the run cache that makes
// list_valid_missions/get_constraints/inspect_atgraph meaningful after a
// decompose_mission call in the same server session.
type registry struct {
	deps Deps

	mu    sync.Mutex
	cache map[string]*pipeline.Result
	order []string // insertion order, oldest first, for eviction
}

func (r *registry) remember(res *pipeline.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[res.RunID] = res
	r.order = append(r.order, res.RunID)
	for len(r.order) > maxCachedRuns {
		delete(r.cache, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *registry) lookup(runID string) (*pipeline.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.cache[runID]
	return res, ok
}

func (r *registry) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "decompose_mission",
		Description: "Compile a domain/goal-model/knowledge-base/config artifact set into valid mission decompositions. Returns a run_id for use with list_valid_missions, get_constraints, and inspect_atgraph.",
	}, r.decomposeMissionHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_valid_missions",
		Description: "List the valid mission decompositions produced by a prior decompose_mission run_id.",
	}, r.listValidMissionsHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_constraints",
		Description: "List the execution/condition constraints extracted during a prior decompose_mission run_id.",
	}, r.getConstraintsHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect_atgraph",
		Description: "Summarize the mission-decomposition graph (node/edge counts by kind) assembled during a prior decompose_mission run_id.",
	}, r.inspectATGraphHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recent compilation runs from persisted run history, most recent first.",
	}, r.listRunsHandler())
}

// DecomposeParams names the four input artifact paths a run compiles from.
type DecomposeParams struct {
	DomainPath        string `json:"domain_path"`
	GoalModelPath     string `json:"goal_model_path"`
	KnowledgeBasePath string `json:"knowledge_base_path"`
	ConfigPath        string `json:"config_path"`
}

// DecomposeResult summarizes a completed run.
type DecomposeResult struct {
	RunID         string `json:"run_id"`
	InstanceCount int    `json:"instance_count"`
	MissionCount  int    `json:"mission_count"`
	TotalMillis   int64  `json:"total_millis"`
}

func (r *registry) decomposeMissionHandler() mcp.ToolHandlerFor[DecomposeParams, DecomposeResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[DecomposeParams]) (*mcp.CallToolResultFor[DecomposeResult], error) {
		args := params.Arguments

		registryArtifact, graph, kb, cfg, rawBytes, err := r.loadArtifacts(args)
		if err != nil {
			return nil, err
		}
		if err := ingest.CheckVariableMappings(cfg, registryArtifact); err != nil {
			return nil, err
		}

		res, err := pipeline.Run(pipeline.Input{Registry: registryArtifact, Graph: graph, KB: kb, Config: cfg})
		if err != nil {
			return nil, err
		}
		r.remember(res)

		if r.deps.History != nil {
			r.persist(res, rawBytes)
		}

		return &mcp.CallToolResultFor[DecomposeResult]{
			StructuredContent: DecomposeResult{
				RunID:         res.RunID,
				InstanceCount: res.Instances,
				MissionCount:  res.Missions,
				TotalMillis:   res.TotalTime.Milliseconds(),
			},
		}, nil
	}
}

type rawArtifactBytes struct {
	domain, goalModel, kb, config []byte
}

func (r *registry) loadArtifacts(args DecomposeParams) (*domain.Registry, *goalmodel.Graph, *worldmodel.KnowledgeBase, *semconfig.Config, rawArtifactBytes, error) {
	fs := r.deps.FS

	registryArtifact, err := ingest.LoadDomain(fs, args.DomainPath)
	if err != nil {
		return nil, nil, nil, nil, rawArtifactBytes{}, err
	}
	graph, err := ingest.LoadGoalModel(fs, args.GoalModelPath)
	if err != nil {
		return nil, nil, nil, nil, rawArtifactBytes{}, err
	}
	kb, err := ingest.LoadKnowledgeBase(fs, args.KnowledgeBasePath)
	if err != nil {
		return nil, nil, nil, nil, rawArtifactBytes{}, err
	}
	cfg, err := ingest.LoadConfig(fs, args.ConfigPath)
	if err != nil {
		return nil, nil, nil, nil, rawArtifactBytes{}, err
	}

	raw := rawArtifactBytes{}
	raw.domain, _ = afero.ReadFile(fs, args.DomainPath)
	raw.goalModel, _ = afero.ReadFile(fs, args.GoalModelPath)
	raw.kb, _ = afero.ReadFile(fs, args.KnowledgeBasePath)
	raw.config, _ = afero.ReadFile(fs, args.ConfigPath)

	return registryArtifact, graph, kb, cfg, raw, nil
}

func (r *registry) persist(res *pipeline.Result, raw rawArtifactBytes) {
	stages := make([]store.StageTiming, len(res.Stages))
	for i, s := range res.Stages {
		stages[i] = store.StageTiming{RunID: res.RunID, Stage: s.Stage, Millis: s.Duration.Milliseconds()}
	}
	now := time.Now().UTC()
	run := store.Run{
		ID:                res.RunID,
		InputHash:         store.HashInputs(raw.domain, raw.goalModel, raw.kb, raw.config),
		StartedAt:         now.Add(-res.TotalTime),
		EndedAt:           now,
		InstanceCount:     res.Instances,
		MissionCount:      res.Missions,
	}
	_ = r.deps.History.SaveRun(run, stages)
}

// RunIDParams identifies a previously-cached run.
type RunIDParams struct {
	RunID string `json:"run_id"`
}

// MissionsResult lists the ordered task/decomposition decisions of every
// valid mission found by a run.
type MissionsResult struct {
	Missions []render.Mission `json:"missions"`
}

func (r *registry) listValidMissionsHandler() mcp.ToolHandlerFor[RunIDParams, MissionsResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[RunIDParams]) (*mcp.CallToolResultFor[MissionsResult], error) {
		res, ok := r.lookup(params.Arguments.RunID)
		if !ok {
			return nil, missionerr.New(missionerr.KindUnboundVariable, params.Arguments.RunID, "no cached run with this id; call decompose_mission first")
		}
		return &mcp.CallToolResultFor[MissionsResult]{
			StructuredContent: MissionsResult{Missions: res.Document.Missions},
		}, nil
	}
}

// ConstraintsResult lists the constraints extracted by a run.
type ConstraintsResult struct {
	Constraints []render.ConstraintEntry `json:"constraints"`
}

func (r *registry) getConstraintsHandler() mcp.ToolHandlerFor[RunIDParams, ConstraintsResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[RunIDParams]) (*mcp.CallToolResultFor[ConstraintsResult], error) {
		res, ok := r.lookup(params.Arguments.RunID)
		if !ok {
			return nil, missionerr.New(missionerr.KindUnboundVariable, params.Arguments.RunID, "no cached run with this id; call decompose_mission first")
		}
		return &mcp.CallToolResultFor[ConstraintsResult]{
			StructuredContent: ConstraintsResult{Constraints: res.Document.Constraints},
		}, nil
	}
}

// ATGraphSummary is a node/edge-kind breakdown of an assembled
// mission-decomposition graph, avoiding a raw graph dump over the wire.
type ATGraphSummary struct {
	NodeCount     int            `json:"node_count"`
	EdgeCount     int            `json:"edge_count"`
	NodesByKind   map[string]int `json:"nodes_by_kind"`
	EdgesByKind   map[string]int `json:"edges_by_kind"`
	RootNodeIndex int            `json:"root_node_index"`
}

func (r *registry) inspectATGraphHandler() mcp.ToolHandlerFor[RunIDParams, ATGraphSummary] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[RunIDParams]) (*mcp.CallToolResultFor[ATGraphSummary], error) {
		res, ok := r.lookup(params.Arguments.RunID)
		if !ok || res.ATGraph == nil {
			return nil, missionerr.New(missionerr.KindUnboundVariable, params.Arguments.RunID, "no cached run with this id; call decompose_mission first")
		}
		return &mcp.CallToolResultFor[ATGraphSummary]{
			StructuredContent: summarizeATGraph(res.ATGraph),
		}, nil
	}
}

func summarizeATGraph(g *atgraph.Graph) ATGraphSummary {
	sum := ATGraphSummary{
		NodeCount:     len(g.Nodes),
		EdgeCount:     len(g.Edges),
		NodesByKind:   make(map[string]int),
		EdgesByKind:   make(map[string]int),
		RootNodeIndex: g.Root,
	}
	for _, n := range g.Nodes {
		sum.NodesByKind[string(n.Kind)]++
	}
	for _, e := range g.Edges {
		sum.EdgesByKind[string(e.Kind)]++
	}
	return sum
}

// ListRunsParams bounds how many run-history rows to return.
type ListRunsParams struct {
	Limit int `json:"limit"`
}

// RunsResult lists persisted run-history rows.
type RunsResult struct {
	Runs []RunSummary `json:"runs"`
}

// RunSummary is the MCP-facing projection of a store.Run.
type RunSummary struct {
	RunID             string `json:"run_id"`
	InputHash         string `json:"input_hash"`
	StartedAt         string `json:"started_at"`
	EndedAt           string `json:"ended_at"`
	InstanceCount     int    `json:"instance_count"`
	MissionCount      int    `json:"mission_count"`
	TerminalErrorKind string `json:"terminal_error_kind,omitempty"`
}

func (r *registry) listRunsHandler() mcp.ToolHandlerFor[ListRunsParams, RunsResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[ListRunsParams]) (*mcp.CallToolResultFor[RunsResult], error) {
		if r.deps.History == nil {
			return nil, fmt.Errorf("mcpserver: run history is not configured")
		}
		limit := params.Arguments.Limit
		if limit <= 0 {
			limit = 20
		}
		runs, err := r.deps.History.ListRuns(limit)
		if err != nil {
			return nil, err
		}
		sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })

		out := make([]RunSummary, len(runs))
		for i, run := range runs {
			out[i] = RunSummary{
				RunID:             run.ID,
				InputHash:         run.InputHash,
				StartedAt:         run.StartedAt.Format(time.RFC3339),
				EndedAt:           run.EndedAt.Format(time.RFC3339),
				InstanceCount:     run.InstanceCount,
				MissionCount:      run.MissionCount,
				TerminalErrorKind: run.TerminalErrorKind,
			}
		}
		return &mcp.CallToolResultFor[RunsResult]{StructuredContent: RunsResult{Runs: out}}, nil
	}
}

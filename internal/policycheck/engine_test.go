package policycheck

import (
	"context"
	"testing"
)

func TestEngineEvaluateDomainDeniesUnknownAbstractTask(t *testing.T) {
	eng, err := NewEngine(DefaultPolicies())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	in := DomainInput{
		Tasks: []TaskSummary{
			{Name: "patrol", IsPrimitive: false},
		},
		Methods: []MethodSummary{
			{Name: "m-patrol-1", AbstractTask: "escort", SubtaskNames: []string{"move"}},
		},
	}
	decision, err := eng.EvaluateDomain(context.Background(), in)
	if err != nil {
		t.Fatalf("EvaluateDomain: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected decision to deny unknown abstract task")
	}
	if len(decision.Denials()) == 0 {
		t.Fatal("expected at least one deny violation")
	}
}

func TestEngineEvaluateDomainAllowsWellFormed(t *testing.T) {
	eng, err := NewEngine(DefaultPolicies())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	in := DomainInput{
		Tasks: []TaskSummary{
			{Name: "patrol", IsPrimitive: false},
			{Name: "move", IsPrimitive: true},
		},
		Methods: []MethodSummary{
			{Name: "m-patrol-1", AbstractTask: "patrol", SubtaskNames: []string{"move"}},
		},
	}
	decision, err := eng.EvaluateDomain(context.Background(), in)
	if err != nil {
		t.Fatalf("EvaluateDomain: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected well-formed domain to be allowed, got violations: %+v", decision.Violations)
	}
}

func TestEngineEvaluateConfigDeniesSortMismatch(t *testing.T) {
	eng, err := NewEngine(DefaultPolicies())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	in := ConfigInput{
		VarMappings: []VarMappingSummary{
			{HighLevelVar: "?r", HDDLSort: "robot", PlannerSort: "agent"},
		},
	}
	decision, err := eng.EvaluateConfig(context.Background(), in)
	if err != nil {
		t.Fatalf("EvaluateConfig: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected sort mismatch to be denied")
	}
}

func TestEngineEvaluateGoalModelFlagsOrphan(t *testing.T) {
	eng, err := NewEngine(DefaultPolicies())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	in := GoalModelInput{
		RootID: "g0",
		Nodes: []GoalNodeSummary{
			{ID: "g0", Type: "Achieve"},
			{ID: "g1", Type: "Achieve"},
			{ID: "orphan", Type: "Achieve"},
		},
		Edges: []GoalEdgeSummary{
			{From: "g0", To: "g1", Kind: "AND"},
		},
	}
	decision, err := eng.EvaluateGoalModel(context.Background(), in)
	if err != nil {
		t.Fatalf("EvaluateGoalModel: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected orphaned node to be denied")
	}
}

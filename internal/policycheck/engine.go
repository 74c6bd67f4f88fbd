// Package policycheck evaluates Rego policies against ingested mission
// artifacts (domain, goal model, configuration) before the pipeline runs,
// rejecting structurally broken domains and var_mapping type errors as
// deny rules and flagging suspicious-but-legal input as warn rules.
package policycheck

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine evaluates a loaded set of policy modules against an input document.
type Engine struct {
	modules []*PolicyFile
}

// NewEngine compiles an Engine from the given policy files. Compilation
// errors (bad Rego syntax) are returned immediately rather than deferred to
// the first Evaluate call.
func NewEngine(modules []*PolicyFile) (*Engine, error) {
	compiler := ast.NewCompiler()
	parsed := map[string]*ast.Module{}
	for _, m := range modules {
		mod, err := ast.ParseModule(m.Path, m.Content)
		if err != nil {
			return nil, fmt.Errorf("parse policy %s: %w", m.Path, err)
		}
		parsed[m.Path] = mod
	}
	compiler.Compile(parsed)
	if compiler.Failed() {
		return nil, fmt.Errorf("compile policies: %s", compiler.Errors)
	}
	return &Engine{modules: modules}, nil
}

// evalQuery runs one query (a `data.<pkg>.<rule>` path) against input and
// decodes the result set into results.
func (e *Engine) evalQuery(ctx context.Context, query string, input any) ([]Violation, error) {
	opts := []func(*rego.Rego){
		rego.Query(query),
		rego.Input(input),
	}
	for _, m := range e.modules {
		opts = append(opts, rego.Module(m.Path, m.Content))
	}
	r := rego.New(opts...)
	rs, err := r.Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", query, err)
	}
	var out []Violation
	for _, result := range rs {
		for _, expr := range result.Expressions {
			vs, ok := expr.Value.([]any)
			if !ok {
				continue
			}
			for _, v := range vs {
				vio, err := decodeViolation(v)
				if err != nil {
					return nil, err
				}
				out = append(out, vio)
			}
		}
	}
	return out, nil
}

func decodeViolation(v any) (Violation, error) {
	switch val := v.(type) {
	case string:
		return Violation{Message: val}, nil
	case map[string]any:
		vio := Violation{}
		if m, ok := val["message"].(string); ok {
			vio.Message = m
		}
		if r, ok := val["rule"].(string); ok {
			vio.Rule = r
		}
		return vio, nil
	default:
		return Violation{}, fmt.Errorf("unrecognized violation shape: %T", v)
	}
}

// EvaluateDomain runs every loaded policy's `deny`/`warn` rules under
// data.missionforge.domain against a domain-ingestion input.
func (e *Engine) EvaluateDomain(ctx context.Context, in DomainInput) (Decision, error) {
	return e.evaluate(ctx, "domain", "data.missionforge.domain", in)
}

// EvaluateGoalModel runs deny/warn rules under data.missionforge.goalmodel.
func (e *Engine) EvaluateGoalModel(ctx context.Context, in GoalModelInput) (Decision, error) {
	return e.evaluate(ctx, "goalmodel", "data.missionforge.goalmodel", in)
}

// EvaluateConfig runs deny/warn rules under data.missionforge.config.
func (e *Engine) EvaluateConfig(ctx context.Context, in ConfigInput) (Decision, error) {
	return e.evaluate(ctx, "config", "data.missionforge.config", in)
}

func (e *Engine) evaluate(ctx context.Context, kind, pkgPath string, in any) (Decision, error) {
	decision := Decision{Input: kind, Allowed: true}

	denies, err := e.evalQuery(ctx, pkgPath+".deny", in)
	if err != nil {
		return Decision{}, err
	}
	for i := range denies {
		denies[i].Severity = SeverityDeny
	}
	decision.Violations = append(decision.Violations, denies...)
	if len(denies) > 0 {
		decision.Allowed = false
	}

	warns, err := e.evalQuery(ctx, pkgPath+".warn", in)
	if err != nil {
		return Decision{}, err
	}
	for i := range warns {
		warns[i].Severity = SeverityWarn
	}
	decision.Violations = append(decision.Violations, warns...)

	return decision, nil
}

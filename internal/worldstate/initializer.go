package worldstate

import (
	"fmt"

	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/semconfig"
	"github.com/jvillaverde/missionforge/internal/worldmodel"
)

// Initialize walks kb applying every semantic mapping in cfg and returns the
// resulting ground World: it materializes ground predicate literals and
// function-valued literals from the knowledge base by applying each
// semantic mapping in turn. Only nodes whose planner sort (via
// cfg.PlannerSort) is not "robot" are considered, mirroring the source
// system's exclusion of the acting agents themselves from the initial state.
func Initialize(kb *worldmodel.KnowledgeBase, cfg *semconfig.Config) (*World, error) {
	w := New()
	for _, sm := range cfg.SemanticMappings {
		if err := applyMapping(w, kb, cfg, sm); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func applyMapping(w *World, kb *worldmodel.KnowledgeBase, cfg *semconfig.Config, sm semconfig.SemanticMapping) error {
	switch sm.Kind {
	case semconfig.MappingAttribute:
		return applyAttributeMapping(w, kb.Root, cfg, sm)
	case semconfig.MappingOwnership:
		return applyOwnershipMapping(w, kb.Root, cfg, sm)
	case semconfig.MappingRelationship:
		return applyRelationshipMapping(w, kb.Root, cfg, sm)
	default:
		return fmt.Errorf("worldstate: unknown semantic mapping kind %q", sm.Kind)
	}
}

// applyAttributeMapping asserts one literal per node of kind sm.RelatesTo
// found anywhere under root, taking its value from the sm.Name attribute.
func applyAttributeMapping(w *World, root *worldmodel.Node, cfg *semconfig.Config, sm semconfig.SemanticMapping) error {
	if cfg.PlannerSort(sm.RelatesTo) == "robot" {
		return nil
	}
	for _, n := range findByKind(root, sm.RelatesTo) {
		v, ok := n.Attr(sm.Name)
		if !ok || v.IsCollection() {
			continue
		}
		switch sm.MappedType {
		case semconfig.MappedPredicate:
			w.Apply(domain.Literal{
				Predicate: sm.PredicateName,
				Args:      []string{n.Name},
				Positive:  scalarBool(v.Scalar),
			})
		case semconfig.MappedFunction:
			val, err := scalarNumber(v.Scalar)
			if err != nil {
				return fmt.Errorf("worldstate: attribute mapping %q on %q: %w", sm.PredicateName, sm.Name, err)
			}
			w.Apply(domain.Literal{
				Predicate:    sm.PredicateName,
				Args:         []string{n.Name},
				IsComparison: true,
				Op:           domain.OpEq,
				Const:        val,
			})
		}
	}
	return nil
}

// applyOwnershipMapping asserts one predicate literal per (owner, owned)
// pair, where owned nodes are reached from each owner node either through a
// direct attribute (RelationshipAttribute) or a nested child collection
// (RelationshipNested) named sm.OwnershipAttr.
func applyOwnershipMapping(w *World, root *worldmodel.Node, cfg *semconfig.Config, sm semconfig.SemanticMapping) error {
	if cfg.PlannerSort(sm.Owner) == "robot" || cfg.PlannerSort(sm.Owned) == "robot" {
		return nil
	}
	for _, owner := range findByKind(root, sm.Owner) {
		var ownedCandidates []*worldmodel.Node
		switch sm.OwnershipRelType {
		case semconfig.RelationshipNested:
			ownedCandidates = owner.Children(sm.OwnershipAttr)
		case semconfig.RelationshipAttribute:
			ownedCandidates = findByKind(owner, sm.Owned)
		}
		for _, owned := range ownedCandidates {
			if owned.Kind != sm.Owned {
				continue
			}
			w.Apply(domain.Literal{
				Predicate: sm.PredicateName,
				Args:      []string{owner.Name, owned.Name},
				Positive:  true,
			})
		}
	}
	return nil
}

// applyRelationshipMapping asserts one predicate literal per pair of
// sm.MainEntity/sm.RelatedEntity nodes connected through sm.RelAttr, the
// unqualified counterpart to ownership mapping: a symmetric or
// non-possessive relation between two entity sorts.
func applyRelationshipMapping(w *World, root *worldmodel.Node, cfg *semconfig.Config, sm semconfig.SemanticMapping) error {
	if cfg.PlannerSort(sm.MainEntity) == "robot" || cfg.PlannerSort(sm.RelatedEntity) == "robot" {
		return nil
	}
	for _, main := range findByKind(root, sm.MainEntity) {
		var relatedCandidates []*worldmodel.Node
		switch sm.RelRelType {
		case semconfig.RelationshipNested:
			relatedCandidates = main.Children(sm.RelAttr)
		case semconfig.RelationshipAttribute:
			relatedCandidates = findByKind(main, sm.RelatedEntity)
		}
		for _, related := range relatedCandidates {
			if related.Kind != sm.RelatedEntity {
				continue
			}
			w.Apply(domain.Literal{
				Predicate: sm.PredicateName,
				Args:      []string{main.Name, related.Name},
				Positive:  true,
			})
		}
	}
	return nil
}

// findByKind walks the tree rooted at root (depth-first, over every
// attribute's child collection) collecting every node whose Kind equals
// kind.
func findByKind(root *worldmodel.Node, kind string) []*worldmodel.Node {
	var out []*worldmodel.Node
	var walk func(n *worldmodel.Node)
	walk = func(n *worldmodel.Node) {
		if n.Kind == kind {
			out = append(out, n)
		}
		for _, v := range n.Attributes {
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

func scalarBool(v any) bool {
	switch s := v.(type) {
	case bool:
		return s
	case string:
		return s == "true"
	default:
		return false
	}
}

func scalarNumber(v any) (float64, error) {
	switch s := v.(type) {
	case float64:
		return s, nil
	case int:
		return float64(s), nil
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}

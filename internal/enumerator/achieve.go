package enumerator

import (
	"github.com/jvillaverde/missionforge/internal/domain"
	"github.com/jvillaverde/missionforge/internal/goalmodel"
	"github.com/jvillaverde/missionforge/internal/missionerr"
	"github.com/jvillaverde/missionforge/internal/worldstate"
)

// closeAchieveScope implements achieve-scope closure: it evaluates gn's
// AchieveCondition against each candidate's world, deleting any candidate
// that fails. A forAll clause is checked across every value of its
// iterated collection (vacuously true over an empty collection).
func (e *Enumerator) closeAchieveScope(gn *goalmodel.Node, cands []Candidate) ([]Candidate, error) {
	ac := gn.AchieveCondition
	var out []Candidate
	for _, c := range cands {
		w := e.liveWorldFor(c)
		if e.achieveConditionHolds(ac, w) {
			out = append(out, c)
		}
	}
	if len(out) == 0 && len(cands) > 0 {
		return nil, missionerr.New(missionerr.KindAchieveConditionViolation, gn.ID,
			"no decomposition satisfied achieve condition of goal %q", gn.ID)
	}
	return out, nil
}

func (e *Enumerator) achieveConditionHolds(ac *goalmodel.AchieveCondition, w *worldstate.World) bool {
	if ac.ForAll == nil {
		return evalCondition(ac.Body, w)
	}
	rv, ok := e.resolvedVars[ac.ForAll.IteratedVar]
	if !ok || !rv.Collective {
		return evalCondition(ac.Body, w)
	}
	for _, value := range rv.Collection {
		subst := map[string]string{ac.ForAll.IterationVar: value}
		if !evalCondition(substituteCondition(ac.ForAll.Body, subst), w) {
			return false
		}
	}
	return true
}

func substituteCondition(c goalmodel.ConditionExpr, subst map[string]string) goalmodel.ConditionExpr {
	out := c
	if len(c.Args) > 0 {
		args := make([]string, len(c.Args))
		for i, a := range c.Args {
			if r, ok := subst[a]; ok {
				args[i] = r
			} else {
				args[i] = a
			}
		}
		out.Args = args
	}
	if len(c.Children) > 0 {
		children := make([]goalmodel.ConditionExpr, len(c.Children))
		for i, ch := range c.Children {
			children[i] = substituteCondition(ch, subst)
		}
		out.Children = children
	}
	return out
}

func evalCondition(c goalmodel.ConditionExpr, w *worldstate.World) bool {
	switch c.Kind {
	case goalmodel.ConditionLiteral:
		return w.Holds(domain.Literal{Predicate: c.Pred, Args: c.Args, Positive: c.Positive})
	case goalmodel.ConditionAnd:
		for _, ch := range c.Children {
			if !evalCondition(ch, w) {
				return false
			}
		}
		return true
	case goalmodel.ConditionOr:
		for _, ch := range c.Children {
			if evalCondition(ch, w) {
				return true
			}
		}
		return false
	case goalmodel.ConditionNot:
		if len(c.Children) != 1 {
			return false
		}
		return !evalCondition(c.Children[0], w)
	default:
		return true
	}
}

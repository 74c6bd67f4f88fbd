package tdg

import "github.com/jvillaverde/missionforge/internal/domain"

// allTopoOrders enumerates every total order over ids consistent with the
// partial order declared by pairs (Before, After), trying candidates in
// ids' declared order at each step so results are deterministic across
// runs.
func allTopoOrders(ids []string, pairs []domain.OrderPair) [][]string {
	predecessors := map[string][]string{}
	for _, p := range pairs {
		predecessors[p[1]] = append(predecessors[p[1]], p[0])
	}

	placed := make(map[string]bool, len(ids))
	cur := make([]string, 0, len(ids))
	var results [][]string

	var backtrack func()
	backtrack = func() {
		if len(cur) == len(ids) {
			order := make([]string, len(cur))
			copy(order, cur)
			results = append(results, order)
			return
		}
		for _, id := range ids {
			if placed[id] {
				continue
			}
			ready := true
			for _, pre := range predecessors[id] {
				if !placed[pre] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			placed[id] = true
			cur = append(cur, id)
			backtrack()
			cur = cur[:len(cur)-1]
			placed[id] = false
		}
	}
	backtrack()
	return results
}

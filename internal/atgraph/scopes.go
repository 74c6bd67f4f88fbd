package atgraph

// installExecutionConstraints walks the assembled graph in DFS order,
// tracking the innermost non-group-or-non-divisible scope, and installs a
// bidirectional EXECUTION-CONSTRAINT edge between every pair of ATASK
// nodes sharing the same innermost such scope.
func (a *Assembler) installExecutionConstraints() error {
	scopeTasks := map[int][]int{}
	var scopeOrder []int

	var dfs func(idx, scope int)
	dfs = func(idx, scope int) {
		nd := a.g.Nodes[idx]
		curScope := scope
		if (nd.Kind == KindOp || nd.Kind == KindGoal) && (!nd.Group || !nd.Divisible) {
			if _, seen := scopeTasks[idx]; !seen {
				scopeOrder = append(scopeOrder, idx)
				scopeTasks[idx] = nil
			}
			curScope = idx
		}
		if nd.Kind == KindATask && curScope >= 0 {
			scopeTasks[curScope] = append(scopeTasks[curScope], idx)
		}
		for _, c := range a.g.Children(idx) {
			dfs(c, curScope)
		}
	}
	dfs(a.g.Root, -1)

	for _, scope := range scopeOrder {
		tasks := scopeTasks[scope]
		scopeNode := a.g.Nodes[scope]
		for i := 0; i < len(tasks); i++ {
			for j := i + 1; j < len(tasks); j++ {
				a.g.AddExecutionConstraint(tasks[i], tasks[j], scopeNode.Group, scopeNode.Divisible)
			}
		}
	}
	return nil
}

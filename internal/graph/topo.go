package graph

import "sort"

// TopologicalOrder returns a single global order across all tracks using
// Kahn's algorithm with the (ordinal hint, id) tie-break. Units left over
// by a cycle are appended in tie-break order; complete is false then.
func TopologicalOrder(g *Graph) (order []string, complete bool) {
	deg := inDegrees(g)
	ready := newReadyQueue(g)
	for _, id := range g.ids {
		if deg[id] == 0 {
			ready.push(id)
		}
	}

	placed := make(map[string]bool, len(g.ids))
	for ready.Len() > 0 {
		id := ready.pop()
		order = append(order, id)
		placed[id] = true
		for _, dep := range g.dependents[id] {
			deg[dep]--
			if deg[dep] == 0 {
				ready.push(dep)
			}
		}
	}

	if len(order) == len(g.ids) {
		return order, true
	}
	var leftover []string
	for _, id := range g.ids {
		if !placed[id] {
			leftover = append(leftover, id)
		}
	}
	sort.Slice(leftover, func(i, j int) bool { return g.less(leftover[i], leftover[j]) })
	return append(order, leftover...), false
}

// EntryPoints returns the units with no resolved dependencies, ascending.
func EntryPoints(g *Graph) []string {
	var out []string
	for _, id := range g.ids {
		if len(g.deps[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Components counts weakly connected components with an undirected
// breadth-first search.
func Components(g *Graph) int {
	seen := make(map[string]bool, len(g.ids))
	count := 0
	for _, root := range g.ids {
		if seen[root] {
			continue
		}
		count++
		seen[root] = true
		queue := []string{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.deps[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
			for _, next := range g.dependents[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return count
}

package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

type color int

const (
	white color = iota // not yet visited
	gray               // on the active recursion path
	black              // finished
)

// DetectCycles returns one finding per unit participating in a dependency
// cycle, ordered by unit id.
//
// The algorithm:
//  1. Depth-first traversal with white/gray/black coloring, roots and
//     neighbors in ascending id order. Reaching a gray node closes a cycle;
//     every unit on the active path from that node is flagged.
//  2. A gray-edge hit only sees cycles closed on the current path, so units
//     reachable around a cycle through an already finished node can be
//     missed. Flagged units are therefore widened to their whole strongly
//     connected component (Tarjan), which is exactly the set of units on
//     some cycle.
//
// Each finding's message names one shortest cycle through the unit.
func DetectCycles(g *Graph) []model.ValidationIssue {
	flagged := grayCycleMembers(g)
	if len(flagged) == 0 {
		return nil
	}

	members := make(map[string]map[string]bool)
	for _, scc := range tarjanSCC(g) {
		if len(scc) == 1 && !hasSelfLoop(g, scc[0]) {
			continue
		}
		set := make(map[string]bool, len(scc))
		for _, id := range scc {
			set[id] = true
		}
		hit := false
		for _, id := range scc {
			if flagged[id] {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, id := range scc {
			members[id] = set
		}
	}

	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	issues := make([]model.ValidationIssue, 0, len(ids))
	for _, id := range ids {
		path := shortestCycleThrough(g, id, members[id])
		issues = append(issues, model.ValidationIssue{
			Kind:     model.KindStructural,
			Severity: model.SeverityError,
			Code:     model.CodeDependencyCycle,
			UnitID:   id,
			Field:    "depends_on",
			Message:  fmt.Sprintf("unit %q is on a dependency cycle: %s", id, strings.Join(path, " → ")),
		})
	}
	return issues
}

// HasCycle reports whether any cycle exists.
func HasCycle(g *Graph) bool {
	return len(grayCycleMembers(g)) > 0
}

// grayCycleMembers runs the colored DFS and returns the units on every path
// segment closed by an edge into a gray node.
func grayCycleMembers(g *Graph) map[string]bool {
	colors := make(map[string]color, len(g.ids))
	flagged := make(map[string]bool)
	var path []string

	var visit func(id string)
	visit = func(id string) {
		colors[id] = gray
		path = append(path, id)
		for _, dep := range sortedDeps(g, id) {
			switch colors[dep] {
			case white:
				visit(dep)
			case gray:
				for i := len(path) - 1; i >= 0; i-- {
					flagged[path[i]] = true
					if path[i] == dep {
						break
					}
				}
			}
		}
		path = path[:len(path)-1]
		colors[id] = black
	}

	for _, id := range g.ids {
		if colors[id] == white {
			visit(id)
		}
	}
	return flagged
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Components are returned with their members sorted ascending.
func tarjanSCC(g *Graph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range sortedDeps(g, v) {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, id := range g.ids {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}
	return sccs
}

func hasSelfLoop(g *Graph, id string) bool {
	for _, dep := range g.deps[id] {
		if dep == id {
			return true
		}
	}
	return false
}

// shortestCycleThrough returns a shortest cycle path starting and ending at
// start, staying inside the given component. Breadth-first with ascending
// neighbor order, so the path is deterministic.
func shortestCycleThrough(g *Graph, start string, component map[string]bool) []string {
	if hasSelfLoop(g, start) {
		return []string{start, start}
	}
	parent := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range sortedDeps(g, cur) {
			if !component[next] {
				continue
			}
			if next == start {
				var rev []string
				for n := cur; n != ""; n = parent[n] {
					rev = append(rev, n)
				}
				path := make([]string, 0, len(rev)+1)
				for i := len(rev) - 1; i >= 0; i-- {
					path = append(path, rev[i])
				}
				return append(path, start)
			}
			if _, seen := parent[next]; !seen {
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return []string{start}
}

func sortedDeps(g *Graph, id string) []string {
	deps := append([]string(nil), g.deps[id]...)
	sort.Strings(deps)
	return deps
}

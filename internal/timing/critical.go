package timing

import (
	"github.com/roach88/linebuild/internal/duration"
	"github.com/roach88/linebuild/internal/graph"
)

// Edge is one hop of the critical path: To depends on From.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Path is the longest duration-weighted dependency chain of a build.
type Path struct {
	Nodes           []string `json:"nodes"`
	Edges           []Edge   `json:"edges"`
	TotalSeconds    int      `json:"total_seconds"`
	ExplicitSeconds int      `json:"explicit_seconds"`
}

// CriticalPath computes the longest chain with dynamic programming over a
// global topological order that crosses tracks. A unit without an estimate
// counts as zero seconds.
//
// For each unit, earliest finish is its duration plus the greatest earliest
// finish among its dependencies (zero if none). The best predecessor is the
// first dependency in declaration order reaching that maximum. The chain
// ends at the unit with the greatest earliest finish, the first one in
// topological order on ties.
//
// On a cyclic graph the result is best effort: only dependencies already
// finalized are considered, so backtracking always terminates.
func CriticalPath(g *graph.Graph, estimates map[string]duration.Estimate) Path {
	order, _ := graph.TopologicalOrder(g)
	if len(order) == 0 {
		return Path{Nodes: []string{}, Edges: []Edge{}}
	}

	finish := make(map[string]int, len(order))
	pred := make(map[string]string, len(order))
	done := make(map[string]bool, len(order))

	end := ""
	for _, id := range order {
		best, bestFinish := "", 0
		for _, dep := range g.DependenciesOf(id) {
			if !done[dep] {
				continue
			}
			if best == "" || finish[dep] > bestFinish {
				best, bestFinish = dep, finish[dep]
			}
		}
		finish[id] = estimates[id].Seconds + bestFinish
		if best != "" {
			pred[id] = best
		}
		done[id] = true

		if end == "" || finish[id] > finish[end] {
			end = id
		}
	}

	var nodes []string
	for cur := end; cur != ""; cur = pred[cur] {
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	p := Path{Nodes: nodes, Edges: make([]Edge, 0, len(nodes)-1), TotalSeconds: finish[end]}
	for i, id := range nodes {
		if i > 0 {
			p.Edges = append(p.Edges, Edge{From: nodes[i-1], To: id})
		}
		if est := estimates[id]; est.Source == duration.SourceExplicit {
			p.ExplicitSeconds += est.Seconds
		}
	}
	return p
}

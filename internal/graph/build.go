package graph

import (
	"fmt"
	"sort"

	"github.com/roach88/linebuild/internal/model"
)

// Graph is the resolved dependency graph of a build.
type Graph struct {
	ids        []string
	units      map[string]model.WorkUnit
	deps       map[string][]string
	dependents map[string][]string
}

// Build constructs the graph from dependency references and returns it with
// the structural findings collected along the way: duplicate unit ids and
// dangling references. Dangling references are dropped from the adjacency;
// they never abort the pass.
//
// For duplicate ids the first occurrence wins.
func Build(units []model.WorkUnit) (*Graph, []model.ValidationIssue) {
	g := &Graph{
		units:      make(map[string]model.WorkUnit, len(units)),
		deps:       make(map[string][]string, len(units)),
		dependents: make(map[string][]string, len(units)),
	}
	var issues []model.ValidationIssue

	for i, u := range units {
		if _, dup := g.units[u.ID]; dup {
			issues = append(issues, model.ValidationIssue{
				Kind:     model.KindStructural,
				Severity: model.SeverityError,
				Code:     model.CodeDuplicateUnitID,
				UnitID:   u.ID,
				Field:    fmt.Sprintf("work_units[%d].id", i),
				Message:  fmt.Sprintf("duplicate unit id %q", u.ID),
			})
			continue
		}
		g.units[u.ID] = u
		g.ids = append(g.ids, u.ID)
	}
	sort.Strings(g.ids)

	for _, id := range g.ids {
		u := g.units[id]
		seen := make(map[string]bool, len(u.DependsOn))
		resolved := []string{}
		for j, ref := range u.DependsOn {
			depID := ref.DepID()
			if _, ok := g.units[depID]; !ok {
				issues = append(issues, model.ValidationIssue{
					Kind:     model.KindStructural,
					Severity: model.SeverityError,
					Code:     model.CodeDanglingDependency,
					UnitID:   id,
					Field:    fmt.Sprintf("depends_on[%d]", j),
					Message:  fmt.Sprintf("dependency %q does not exist in this build", depID),
				})
				continue
			}
			if seen[depID] {
				continue
			}
			seen[depID] = true
			resolved = append(resolved, depID)
			g.dependents[depID] = append(g.dependents[depID], id)
		}
		g.deps[id] = resolved
	}
	for id := range g.dependents {
		sort.Strings(g.dependents[id])
	}

	model.SortIssues(issues)
	return g, issues
}

// IDs returns every unit id in ascending order.
func (g *Graph) IDs() []string {
	return g.ids
}

// Len returns the number of distinct units.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Unit returns the unit with the given id.
func (g *Graph) Unit(id string) (model.WorkUnit, bool) {
	u, ok := g.units[id]
	return u, ok
}

// DependenciesOf returns the resolved dependency ids of a unit in
// declaration order, without duplicates.
func (g *Graph) DependenciesOf(id string) []string {
	return g.deps[id]
}

// DependentsOf returns the ids of units depending on id, ascending.
func (g *Graph) DependentsOf(id string) []string {
	return g.dependents[id]
}

// EdgeCount returns the number of resolved dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, d := range g.deps {
		n += len(d)
	}
	return n
}

// less orders simultaneously ready units
// ascending by (advisory ordinal hint, id).
func (g *Graph) less(a, b string) bool {
	ha, hb := g.units[a].OrderIndex, g.units[b].OrderIndex
	if ha != hb {
		return ha < hb
	}
	return a < b
}

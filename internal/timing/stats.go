package timing

import (
	"math"

	"github.com/roach88/linebuild/internal/duration"
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/model"
)

// Stats are build-wide timing aggregates.
type Stats struct {
	Units             int     `json:"units"`
	EntryPoints       int     `json:"entry_points"`
	EntryPointPercent float64 `json:"entry_point_percent"`
	Components        int     `json:"components"`
	TotalSeconds      int     `json:"total_seconds"`
	ActiveSeconds     int     `json:"active_seconds"`
	ExplicitUnits     int     `json:"explicit_units"`
}

// Summarize computes the aggregates independently of the critical path.
func Summarize(g *graph.Graph, estimates map[string]duration.Estimate) Stats {
	s := Stats{Units: g.Len()}
	if s.Units == 0 {
		return s
	}

	s.EntryPoints = len(graph.EntryPoints(g))
	s.EntryPointPercent = round1(float64(s.EntryPoints) / float64(s.Units) * 100)
	s.Components = graph.Components(g)

	for _, id := range g.IDs() {
		est := estimates[id]
		s.TotalSeconds += est.Seconds
		if est.Source == duration.SourceExplicit {
			s.ExplicitUnits++
		}
		if u, ok := g.Unit(id); ok && isActive(u) {
			s.ActiveSeconds += est.Seconds
		}
	}
	return s
}

// isActive reports whether a unit needs hands on it. Units without timing
// metadata count as active.
func isActive(u model.WorkUnit) bool {
	return u.Time == nil || u.Time.Active
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

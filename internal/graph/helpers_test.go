package graph

import "github.com/roach88/linebuild/internal/model"

// unit builds a work unit on the default track with bare dependencies.
func unit(id string, deps ...string) model.WorkUnit {
	return trackUnit(id, "", 0, deps...)
}

// trackUnit builds a work unit with a track key and ordinal hint.
func trackUnit(id, track string, hint int, deps ...string) model.WorkUnit {
	u := model.WorkUnit{ID: id, TrackID: track, OrderIndex: hint}
	for _, d := range deps {
		u.DependsOn = append(u.DependsOn, model.BareDep(d))
	}
	return u
}

func mustBuild(units ...model.WorkUnit) *Graph {
	g, _ := Build(units)
	return g
}

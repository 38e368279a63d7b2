package graph

import (
	"sort"

	"github.com/roach88/linebuild/internal/model"
)

// Ordering is the derived per-track execution order of a build.
type Ordering struct {
	// Ordinals maps unit id to its 0-based position within its track.
	Ordinals map[string]int `json:"ordinals"`
	// Tracks maps track key to unit ids in ordinal order.
	Tracks map[string][]string `json:"tracks"`
	// Unresolved lists units that could not be placed by dependency order
	// (cycle members) and were appended by the tie-break rule instead.
	Unresolved []string `json:"unresolved,omitempty"`
}

// Order derives strictly increasing, gap-free ordinals starting at 0 within
// each track.
//
// It runs Kahn's algorithm (in-degree plus ready queue) over the full
// cross-track dependency graph once per track. Units of other tracks are
// released as soon as they become ready; among simultaneously ready units of
// the track being numbered, the smallest (ordinal hint, id) goes first. A
// track's order therefore depends only on its own units' hints and the
// dependency structure, which makes re-deriving from an already ordered
// build reproduce the same ordinals.
//
// Order assumes cycle-freedom was checked with DetectCycles. If units remain
// after the main pass they are appended in tie-break order rather than
// failing; the algorithm always terminates.
func Order(g *Graph) Ordering {
	byTrack := make(map[string][]string)
	for _, id := range g.ids {
		track := g.units[id].Track()
		byTrack[track] = append(byTrack[track], id)
	}
	tracks := make([]string, 0, len(byTrack))
	for t := range byTrack {
		tracks = append(tracks, t)
	}
	sort.Strings(tracks)

	o := Ordering{
		Ordinals: make(map[string]int, len(g.ids)),
		Tracks:   make(map[string][]string, len(tracks)),
	}
	for _, track := range tracks {
		seq, leftover := orderTrack(g, track)
		o.Tracks[track] = append(seq, leftover...)
		o.Unresolved = append(o.Unresolved, leftover...)
		for i, id := range o.Tracks[track] {
			o.Ordinals[id] = i
		}
	}
	sort.Strings(o.Unresolved)
	return o
}

// orderTrack runs one Kahn pass numbering only the units of track.
// It returns the placed sequence and the leftovers in tie-break order.
func orderTrack(g *Graph, track string) (seq, leftover []string) {
	deg := inDegrees(g)
	own := newReadyQueue(g)
	var foreign []string
	release := func(id string) {
		if g.units[id].Track() == track {
			own.push(id)
		} else {
			foreign = append(foreign, id)
		}
	}
	for _, id := range g.ids {
		if deg[id] == 0 {
			release(id)
		}
	}

	placed := make(map[string]bool)
	complete := func(id string) {
		for _, dep := range g.dependents[id] {
			deg[dep]--
			if deg[dep] == 0 {
				release(dep)
			}
		}
	}
	for {
		if len(foreign) > 0 {
			id := foreign[0]
			foreign = foreign[1:]
			complete(id)
			continue
		}
		if own.Len() == 0 {
			break
		}
		id := own.pop()
		seq = append(seq, id)
		placed[id] = true
		complete(id)
	}

	for _, id := range g.ids {
		if g.units[id].Track() == track && !placed[id] {
			leftover = append(leftover, id)
		}
	}
	sort.Slice(leftover, func(i, j int) bool { return g.less(leftover[i], leftover[j]) })
	return seq, leftover
}

// ApplyOrdinals returns a new unit list with derived ordinals written into
// OrderIndex and empty track keys set to model.DefaultTrack. The input slice
// and its units are not modified; the caller replaces the whole list.
func ApplyOrdinals(units []model.WorkUnit, o Ordering) []model.WorkUnit {
	out := make([]model.WorkUnit, len(units))
	for i, u := range units {
		if ord, ok := o.Ordinals[u.ID]; ok {
			u.OrderIndex = ord
		}
		u.TrackID = u.Track()
		out[i] = u
	}
	return out
}

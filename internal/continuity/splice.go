package continuity

import (
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/model"
)

// Splice returns a new unit list in which every derived transfer becomes a
// synthetic transfer unit placed just before its consumer. The consumer's
// dependency on the producer is rewired through the transfer unit, keeping
// any guard, and ordinals are re-derived. The input is never modified.
//
// Transfers whose producer or consumer is absent, or whose id already names
// a unit, are ignored, so splicing twice is a no-op.
func Splice(units []model.WorkUnit, transfers []model.DerivedTransfer) []model.WorkUnit {
	present := make(map[string]bool, len(units))
	for _, u := range units {
		present[u.ID] = true
	}

	byConsumer := make(map[string][]model.DerivedTransfer)
	queued := make(map[string]bool, len(transfers))
	for _, t := range transfers {
		if present[t.ID] || queued[t.ID] || !present[t.ProducerID] || !present[t.ConsumerID] {
			continue
		}
		queued[t.ID] = true
		byConsumer[t.ConsumerID] = append(byConsumer[t.ConsumerID], t)
	}

	out := make([]model.WorkUnit, 0, len(units)+len(queued))
	for _, u := range units {
		ts := byConsumer[u.ID]
		if len(ts) == 0 {
			out = append(out, u)
			continue
		}
		delete(byConsumer, u.ID)

		consumer := u
		for _, t := range ts {
			out = append(out, transferUnit(t, u))
			consumer.DependsOn = rewire(consumer.DependsOn, t.ProducerID, t.ID)
		}
		out = append(out, consumer)
	}

	g, _ := graph.Build(out)
	return graph.ApplyOrdinals(out, graph.Order(g))
}

func transferUnit(t model.DerivedTransfer, consumer model.WorkUnit) model.WorkUnit {
	from, to := t.From, t.To
	u := model.WorkUnit{
		ID:         t.ID,
		OrderIndex: consumer.OrderIndex,
		TrackID:    consumer.TrackID,
		Action:     model.Action{Family: model.FamilyTransfer},
		Target:     model.Target{Name: t.AssemblyID, AssemblyID: t.AssemblyID},
		From:       &from,
		To:         &to,
		DependsOn:  model.DepList{model.BareDep(t.ProducerID)},
		Inputs:     []model.AssemblyIO{{AssemblyID: t.AssemblyID}},
		Outputs:    []model.AssemblyIO{{AssemblyID: t.AssemblyID}},
	}
	if t.DurationSeconds > 0 {
		u.Time = &model.Timing{DurationSeconds: t.DurationSeconds, Active: true}
	}
	return u
}

// rewire returns a copy of deps with the first reference to producer
// pointed at via instead. When deps has no such reference, via is appended.
func rewire(deps model.DepList, producer, via string) model.DepList {
	out := make(model.DepList, 0, len(deps)+1)
	replaced := false
	for _, d := range deps {
		if !replaced && d.DepID() == producer {
			replaced = true
			if c, ok := d.(model.ConditionalDep); ok {
				out = append(out, model.ConditionalDep{ID: via, When: c.When})
				continue
			}
			out = append(out, model.BareDep(via))
			continue
		}
		out = append(out, d)
	}
	if !replaced {
		out = append(out, model.BareDep(via))
	}
	return out
}

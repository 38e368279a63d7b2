package migrate

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// StepMeta is what conversion knows about one step beyond the unit itself:
// the raw legacy step and the extraction confidence.
type StepMeta struct {
	UnitID string
	Raw    LegacyStep
	// Confidence is nil when the legacy step recorded none.
	Confidence *model.Tier
}

// Conversion is one legacy item converted to work units. Steps is parallel
// to Units.
type Conversion struct {
	LegacyID string
	Name     string
	Units    []model.WorkUnit
	Steps    []StepMeta
}

// Convert maps a legacy item onto work units. It never fails: values it
// cannot map are left empty and reported by the Validator, which sees the
// raw step alongside each unit.
//
// Steps without an id get "step-N" (1-based). Action text that is an alias
// rather than a family name becomes the technique id, so "sear" converts
// to family heat with technique "sear".
func Convert(item LegacyItem, a Aliases) Conversion {
	c := Conversion{
		LegacyID: item.ID,
		Name:     item.Name,
		Units:    make([]model.WorkUnit, 0, len(item.Steps)),
		Steps:    make([]StepMeta, 0, len(item.Steps)),
	}

	for i, step := range item.Steps {
		u := model.WorkUnit{
			ID:         strings.TrimSpace(step.ID),
			OrderIndex: i,
			TrackID:    strings.TrimSpace(step.Track),
			Target:     model.Target{Name: strings.TrimSpace(step.Target), AssemblyID: strings.TrimSpace(step.Assembly)},
			DependsOn:  append(model.DepList(nil), step.DependsOn...),
		}
		if u.ID == "" {
			u.ID = fmt.Sprintf("step-%d", i+1)
		}
		if step.Order != 0 {
			u.OrderIndex = step.Order
		}

		if fam, ok := a.Family(step.Action); ok {
			u.Action.Family = fam
			if raw := norm(step.Action); raw != string(fam) {
				u.Action.TechniqueID = strings.ReplaceAll(raw, " ", "_")
			}
		}
		if t := norm(step.Technique); t != "" {
			u.Action.TechniqueID = strings.ReplaceAll(t, " ", "_")
		}

		appliance := ""
		if norm(step.Equipment) != "" {
			appliance = strings.ReplaceAll(norm(step.Equipment), " ", "_")
			if canon, ok := a.Appliance(step.Equipment); ok {
				appliance = canon
			}
			u.Equipment = &model.Equipment{Appliance: appliance, PresetID: norm(step.Preset)}
		}

		if station := strings.TrimSpace(step.Station); station != "" {
			sub := model.SubLocation{Kind: model.SubWorkSurface}
			if appliance != "" {
				sub = model.SubLocation{Kind: model.SubEquipment, ID: appliance}
			}
			from := model.Location{StationID: station, Sub: sub}
			to := from
			u.From, u.To = &from, &to
		}

		if step.Time != nil {
			if perUnit, ok := a.UnitSeconds(step.Time.Unit); ok && step.Time.Value > 0 {
				typ, _ := a.TimeType(step.Time.Type)
				u.Time = &model.Timing{
					DurationSeconds: int(math.Round(step.Time.Value * perUnit)),
					Active:          typ != TimePassive,
				}
			}
		}

		if u.Target.AssemblyID != "" {
			u.Outputs = []model.AssemblyIO{{AssemblyID: u.Target.AssemblyID}}
		}

		meta := StepMeta{UnitID: u.ID, Raw: step}
		if tier, ok := model.ParseTier(step.Confidence); ok {
			meta.Confidence = &tier
		} else if strings.TrimSpace(step.Confidence) != "" {
			low := model.TierLow
			meta.Confidence = &low
		}

		c.Units = append(c.Units, u)
		c.Steps = append(c.Steps, meta)
	}
	return c
}

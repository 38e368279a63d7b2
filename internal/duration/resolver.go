package duration

import (
	"sort"
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// Source names the fallback step that produced an estimate.
type Source string

const (
	SourceExplicit        Source = "explicit"
	SourceEquipmentPreset Source = "equipment_preset"
	SourceTechnique       Source = "technique"
	SourceAssemblyType    Source = "assembly_type"
	SourceFamilyDefault   Source = "family_default"
)

// Estimate is a resolved duration.
type Estimate struct {
	Seconds    int        `json:"seconds"`
	Source     Source     `json:"source"`
	Confidence model.Tier `json:"confidence"`
}

// Context carries optional hints for resolution.
type Context struct {
	ItemType  string
	BuildID   string
	BuildName string
}

// Resolver turns work units into duration estimates.
type Resolver struct {
	tables Tables
}

// NewResolver creates a resolver over the given tables. Table keys are
// matched case-insensitively.
func NewResolver(t Tables) *Resolver {
	return &Resolver{tables: normalize(t)}
}

// Resolve returns the estimated duration of a unit. The fallback chain,
// first match wins:
//  1. explicit duration on the unit (high)
//  2. heat with an appliance: equipment preset table keyed by
//     (appliance, preset or "default") (high)
//  3. technique id: technique table (medium)
//  4. assemble: base duration for the resolved assembly type (medium)
//  5. per-family default (low); always reachable
func (r *Resolver) Resolve(u model.WorkUnit, ctx Context) Estimate {
	if u.Time != nil && u.Time.DurationSeconds > 0 {
		return Estimate{Seconds: u.Time.DurationSeconds, Source: SourceExplicit, Confidence: model.TierHigh}
	}

	if u.Action.Family == model.FamilyHeat && u.Equipment != nil && u.Equipment.Appliance != "" {
		preset := key(u.Equipment.PresetID)
		if preset == "" {
			preset = DefaultPreset
		}
		if secs, ok := r.tables.EquipmentPresets[key(u.Equipment.Appliance)][preset]; ok {
			return Estimate{Seconds: secs, Source: SourceEquipmentPreset, Confidence: model.TierHigh}
		}
	}

	if u.Action.TechniqueID != "" {
		if secs, ok := r.tables.Techniques[key(u.Action.TechniqueID)]; ok {
			return Estimate{Seconds: secs, Source: SourceTechnique, Confidence: model.TierMedium}
		}
	}

	if u.Action.Family == model.FamilyAssemble {
		if typ := r.assemblyType(ctx); typ != "" {
			if secs, ok := r.tables.AssemblyTypes[typ]; ok {
				return Estimate{Seconds: secs, Source: SourceAssemblyType, Confidence: model.TierMedium}
			}
		}
	}

	secs, ok := r.tables.FamilyDefaults[key(string(u.Action.Family))]
	if !ok {
		secs = FallbackSeconds
	}
	return Estimate{Seconds: secs, Source: SourceFamilyDefault, Confidence: model.TierLow}
}

// ResolveAll resolves every unit, keyed by unit id.
func (r *Resolver) ResolveAll(units []model.WorkUnit, ctx Context) map[string]Estimate {
	out := make(map[string]Estimate, len(units))
	for _, u := range units {
		if _, seen := out[u.ID]; seen {
			continue
		}
		out[u.ID] = r.Resolve(u, ctx)
	}
	return out
}

// assemblyType resolves the assembly-type hint: the context item type, then
// an exact build id or name match, then the first keyword (ascending) that
// appears in the build name.
func (r *Resolver) assemblyType(ctx Context) string {
	if t := key(ctx.ItemType); t != "" {
		return t
	}
	if t, ok := r.tables.AssemblyTypeHints[key(ctx.BuildID)]; ok && ctx.BuildID != "" {
		return t
	}
	name := key(ctx.BuildName)
	if name == "" {
		return ""
	}
	if t, ok := r.tables.AssemblyTypeHints[name]; ok {
		return t
	}
	keywords := make([]string, 0, len(r.tables.AssemblyTypeHints))
	for k := range r.tables.AssemblyTypeHints {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	for _, k := range keywords {
		if k != "" && strings.Contains(name, k) {
			return r.tables.AssemblyTypeHints[k]
		}
	}
	return ""
}

// normalize lower-cases every table key so lookups are case-insensitive.
func normalize(t Tables) Tables {
	out := Tables{
		EquipmentPresets:  make(map[string]map[string]int, len(t.EquipmentPresets)),
		Techniques:        lowerKeys(t.Techniques),
		AssemblyTypes:     lowerKeys(t.AssemblyTypes),
		AssemblyTypeHints: make(map[string]string, len(t.AssemblyTypeHints)),
		FamilyDefaults:    lowerKeys(t.FamilyDefaults),
	}
	for appliance, presets := range t.EquipmentPresets {
		out.EquipmentPresets[key(appliance)] = lowerKeys(presets)
	}
	for k, v := range t.AssemblyTypeHints {
		out.AssemblyTypeHints[key(k)] = key(v)
	}
	return out
}

func lowerKeys(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[key(k)] = v
	}
	return out
}

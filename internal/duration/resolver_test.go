package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/linebuild/internal/model"
)

func testTables() Tables {
	return Tables{
		EquipmentPresets: map[string]map[string]int{
			"waterbath": {DefaultPreset: 360, "Egg_63": 2700},
		},
		Techniques:        map[string]int{"dice": 90},
		AssemblyTypes:     map[string]int{"sandwich": 60, "bowl": 45},
		AssemblyTypeHints: map[string]string{"blt-01": "sandwich", "bowl": "bowl"},
		FamilyDefaults:    map[string]int{"heat": 180, "assemble": 30},
	}
}

// TestResolve_ExplicitWins tests that an explicit duration beats every table.
func TestResolve_ExplicitWins(t *testing.T) {
	r := NewResolver(testTables())
	u := model.WorkUnit{ID: "a", Time: &model.Timing{DurationSeconds: 42}}

	assert.Equal(t, Estimate{Seconds: 42, Source: SourceExplicit, Confidence: model.TierHigh}, r.Resolve(u, Context{}))

	u.Action = model.Action{Family: model.FamilyHeat, TechniqueID: "dice"}
	u.Equipment = &model.Equipment{Appliance: "waterbath"}
	assert.Equal(t, SourceExplicit, r.Resolve(u, Context{}).Source)
}

// TestResolve_EquipmentPresetDefault tests the appliance default when no preset is named.
func TestResolve_EquipmentPresetDefault(t *testing.T) {
	r := NewResolver(testTables())
	u := model.WorkUnit{
		ID:        "a",
		Action:    model.Action{Family: model.FamilyHeat},
		Equipment: &model.Equipment{Appliance: "waterbath"},
	}

	assert.Equal(t, Estimate{Seconds: 360, Source: SourceEquipmentPreset, Confidence: model.TierHigh}, r.Resolve(u, Context{}))

	u.Equipment.PresetID = "EGG_63"
	assert.Equal(t, 2700, r.Resolve(u, Context{}).Seconds, "keys match case-insensitively")
}

// TestResolve_ZeroExplicitFallsThrough tests that a non-positive explicit duration is ignored.
func TestResolve_ZeroExplicitFallsThrough(t *testing.T) {
	r := NewResolver(testTables())
	u := model.WorkUnit{
		ID:        "a",
		Action:    model.Action{Family: model.FamilyHeat},
		Equipment: &model.Equipment{Appliance: "waterbath"},
		Time:      &model.Timing{DurationSeconds: 0},
	}
	assert.Equal(t, SourceEquipmentPreset, r.Resolve(u, Context{}).Source)
}

// TestResolve_PresetOnlyAppliesToHeat tests that equipment presets are skipped for other families.
func TestResolve_PresetOnlyAppliesToHeat(t *testing.T) {
	r := NewResolver(testTables())
	u := model.WorkUnit{
		ID:        "a",
		Action:    model.Action{Family: model.FamilyPrep, TechniqueID: "dice"},
		Equipment: &model.Equipment{Appliance: "waterbath"},
	}
	assert.Equal(t, Estimate{Seconds: 90, Source: SourceTechnique, Confidence: model.TierMedium}, r.Resolve(u, Context{}))
}

// TestResolve_UnknownApplianceFallsToTechnique tests that a table miss continues down the chain.
func TestResolve_UnknownApplianceFallsToTechnique(t *testing.T) {
	r := NewResolver(testTables())
	u := model.WorkUnit{
		ID:        "a",
		Action:    model.Action{Family: model.FamilyHeat, TechniqueID: "dice"},
		Equipment: &model.Equipment{Appliance: "plancha"},
	}
	assert.Equal(t, SourceTechnique, r.Resolve(u, Context{}).Source)
}

// TestResolve_AssemblyType tests the assembly-type hint sources in priority order.
func TestResolve_AssemblyType(t *testing.T) {
	r := NewResolver(testTables())
	u := model.WorkUnit{ID: "a", Action: model.Action{Family: model.FamilyAssemble}}

	tests := []struct {
		name string
		ctx  Context
		want Estimate
	}{
		{"item type", Context{ItemType: "Bowl", BuildID: "blt-01"}, Estimate{45, SourceAssemblyType, model.TierMedium}},
		{"build id", Context{BuildID: "BLT-01"}, Estimate{60, SourceAssemblyType, model.TierMedium}},
		{"name keyword", Context{BuildName: "Harvest Bowl Large"}, Estimate{45, SourceAssemblyType, model.TierMedium}},
		{"no hint", Context{BuildName: "Soup"}, Estimate{30, SourceFamilyDefault, model.TierLow}},
		{"unknown type", Context{ItemType: "taco"}, Estimate{30, SourceFamilyDefault, model.TierLow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(u, tt.ctx))
		})
	}
}

// TestResolve_FamilyDefaultAlwaysReachable tests the safety net, including unregistered families.
func TestResolve_FamilyDefaultAlwaysReachable(t *testing.T) {
	r := NewResolver(testTables())

	got := r.Resolve(model.WorkUnit{ID: "a", Action: model.Action{Family: model.FamilyHeat}}, Context{})
	assert.Equal(t, Estimate{Seconds: 180, Source: SourceFamilyDefault, Confidence: model.TierLow}, got)

	got = r.Resolve(model.WorkUnit{ID: "b", Action: model.Action{Family: model.FamilyCheck}}, Context{})
	assert.Equal(t, Estimate{Seconds: FallbackSeconds, Source: SourceFamilyDefault, Confidence: model.TierLow}, got)
}

// TestResolveAll tests that every unit is resolved and duplicates keep the first occurrence.
func TestResolveAll(t *testing.T) {
	r := NewResolver(testTables())
	got := r.ResolveAll([]model.WorkUnit{
		{ID: "a", Time: &model.Timing{DurationSeconds: 5}},
		{ID: "a", Time: &model.Timing{DurationSeconds: 9}},
		{ID: "b", Action: model.Action{Family: model.FamilyHeat}},
	}, Context{})

	assert.Len(t, got, 2)
	assert.Equal(t, 5, got["a"].Seconds)
	assert.Equal(t, 180, got["b"].Seconds)
}

// TestDefaultTables tests that every action family has a registered default.
func TestDefaultTables(t *testing.T) {
	tables := DefaultTables()
	for _, f := range model.ActionFamilies {
		assert.Contains(t, tables.FamilyDefaults, string(f))
	}
	assert.Equal(t, 360, tables.EquipmentPresets["waterbath"][DefaultPreset])
}

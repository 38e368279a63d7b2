package duration

import (
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// DefaultPreset is the preset key used when a heat unit names an appliance
// but no preset.
const DefaultPreset = "default"

// FallbackSeconds is used for an action family with no registered default.
const FallbackSeconds = 60

// Tables holds every lookup table the resolver consults. Tables are plain
// configuration: tests and site profiles pass their own.
type Tables struct {
	// EquipmentPresets maps appliance -> preset id (or DefaultPreset) -> seconds.
	EquipmentPresets map[string]map[string]int `json:"equipment_presets" mapstructure:"equipment_presets"`
	// Techniques maps technique id -> seconds.
	Techniques map[string]int `json:"techniques" mapstructure:"techniques"`
	// AssemblyTypes maps assembly type -> base seconds for an assemble step.
	AssemblyTypes map[string]int `json:"assembly_types" mapstructure:"assembly_types"`
	// AssemblyTypeHints maps a build id, build name, or name keyword to an
	// assembly type.
	AssemblyTypeHints map[string]string `json:"assembly_type_hints" mapstructure:"assembly_type_hints"`
	// FamilyDefaults maps action family -> seconds.
	FamilyDefaults map[string]int `json:"family_defaults" mapstructure:"family_defaults"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{
		EquipmentPresets: map[string]map[string]int{
			"waterbath":  {DefaultPreset: 360, "steak_medium": 2700, "egg_63": 2700},
			"fryer":      {DefaultPreset: 180, "fries": 210, "tenders": 240},
			"combi_oven": {DefaultPreset: 600, "roast": 1200, "steam": 480},
			"flat_top":   {DefaultPreset: 240, "smash": 150},
			"salamander": {DefaultPreset: 90},
			"toaster":    {DefaultPreset: 45},
			"microwave":  {DefaultPreset: 60},
		},
		Techniques: map[string]int{
			"dice":     90,
			"julienne": 120,
			"sear":     180,
			"blanch":   120,
			"whisk":    45,
			"garnish":  15,
			"drizzle":  10,
			"rest":     300,
		},
		AssemblyTypes: map[string]int{
			"sandwich": 60,
			"bowl":     45,
			"burger":   50,
			"salad":    40,
			"wrap":     55,
			"plate":    35,
		},
		AssemblyTypeHints: map[string]string{
			"sandwich": "sandwich",
			"burger":   "burger",
			"bowl":     "bowl",
			"salad":    "salad",
			"wrap":     "wrap",
		},
		FamilyDefaults: map[string]int{
			string(model.FamilyPrep):     45,
			string(model.FamilyHeat):     180,
			string(model.FamilyTransfer): 10,
			string(model.FamilyAssemble): 30,
			string(model.FamilyPortion):  15,
			string(model.FamilyPackage):  20,
			string(model.FamilyHold):     60,
			string(model.FamilyCheck):    10,
		},
	}
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

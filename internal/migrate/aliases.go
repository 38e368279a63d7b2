package migrate

import (
	"sort"
	"strings"

	"github.com/roach88/linebuild/internal/model"
)

// Aliases maps legacy free text onto closed values. Keys are matched after
// lower-casing and trimming.
type Aliases struct {
	// Actions maps action text to an action family.
	Actions map[string]string `json:"actions" mapstructure:"actions"`
	// Phases maps phase text to a canonical phase.
	Phases map[string]string `json:"phases" mapstructure:"phases"`
	// Equipment maps appliance text to a canonical appliance id.
	Equipment map[string]string `json:"equipment" mapstructure:"equipment"`
	// TimeUnits maps unit text to seconds per unit.
	TimeUnits map[string]float64 `json:"time_units" mapstructure:"time_units"`
	// TimeTypes maps type text to "active" or "passive".
	TimeTypes map[string]string `json:"time_types" mapstructure:"time_types"`
	// DefaultTimeUnit applies when a step gives a time without a unit.
	DefaultTimeUnit string `json:"default_time_unit" mapstructure:"default_time_unit"`
}

// Time types.
const (
	TimeActive  = "active"
	TimePassive = "passive"
)

// DefaultAliases returns the built-in alias tables.
func DefaultAliases() Aliases {
	a := Aliases{
		Actions: map[string]string{
			"chop": "prep", "dice": "prep", "slice": "prep", "julienne": "prep", "mix": "prep",
			"whisk": "prep", "marinate": "prep", "season": "prep",
			"cook": "heat", "sear": "heat", "grill": "heat", "fry": "heat", "bake": "heat",
			"roast": "heat", "toast": "heat", "sous vide": "heat", "blanch": "heat", "steam": "heat",
			"move": "transfer", "pass": "transfer", "run": "transfer", "carry": "transfer",
			"build": "assemble", "stack": "assemble", "plate": "assemble", "garnish": "assemble",
			"scoop": "portion", "weigh": "portion", "divide": "portion", "ladle": "portion",
			"wrap": "package", "box": "package", "bag": "package", "lid": "package",
			"rest": "hold", "hold hot": "hold", "hold cold": "hold",
			"inspect": "check", "temp": "check", "taste": "check", "verify": "check",
		},
		Phases: map[string]string{
			"prep": "prep", "mise": "prep", "mise en place": "prep",
			"cook": "cook", "fire": "cook",
			"assemble": "assemble", "build": "assemble",
			"finish": "finish", "garnish": "finish",
			"serve": "serve", "expo": "serve", "pack": "serve",
		},
		Equipment: map[string]string{
			"waterbath": "waterbath", "water bath": "waterbath", "sous vide": "waterbath", "circulator": "waterbath",
			"fryer": "fryer", "deep fryer": "fryer",
			"combi": "combi_oven", "combi oven": "combi_oven", "oven": "combi_oven",
			"flat top": "flat_top", "flattop": "flat_top", "griddle": "flat_top", "plancha": "flat_top",
			"salamander": "salamander", "broiler": "salamander",
			"toaster": "toaster", "conveyor toaster": "toaster",
			"microwave": "microwave", "turbochef": "microwave",
		},
		TimeUnits: map[string]float64{
			"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
			"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
			"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
		},
		TimeTypes: map[string]string{
			"active": TimeActive, "hands-on": TimeActive, "hands on": TimeActive, "attended": TimeActive,
			"passive": TimePassive, "unattended": TimePassive, "hands-off": TimePassive, "idle": TimePassive,
		},
		DefaultTimeUnit: "minutes",
	}
	for _, f := range model.ActionFamilies {
		a.Actions[string(f)] = string(f)
	}
	return a
}

// Family resolves action text to a family. ok is false when the text is
// neither a family name nor a registered alias.
func (a Aliases) Family(action string) (model.ActionFamily, bool) {
	f, ok := a.Actions[norm(action)]
	if !ok {
		return "", false
	}
	fam := model.ActionFamily(f)
	return fam, fam.IsValid()
}

// Phase resolves phase text.
func (a Aliases) Phase(phase string) (string, bool) {
	p, ok := a.Phases[norm(phase)]
	return p, ok
}

// Appliance resolves appliance text to a canonical appliance id.
func (a Aliases) Appliance(text string) (string, bool) {
	e, ok := a.Equipment[norm(text)]
	return e, ok
}

// UnitSeconds resolves a time unit; an empty unit falls back to
// DefaultTimeUnit.
func (a Aliases) UnitSeconds(unit string) (float64, bool) {
	if norm(unit) == "" {
		unit = a.DefaultTimeUnit
	}
	s, ok := a.TimeUnits[norm(unit)]
	return s, ok && s > 0
}

// TimeType resolves active/passive text.
func (a Aliases) TimeType(text string) (string, bool) {
	t, ok := a.TimeTypes[norm(text)]
	return t, ok
}

// keys returns the sorted keys of an alias table, the candidate set for
// replacement suggestions.
func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func norm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

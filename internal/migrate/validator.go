package migrate

import (
	"fmt"
	"strings"

	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/guard"
	"github.com/roach88/linebuild/internal/model"
)

// escalateBelow is the extraction score under which a low-confidence
// finding is an error rather than a warning.
const escalateBelow = 70

// Requirement names the fields an action family needs beyond action and
// target.
type Requirement struct {
	Equipment bool
	Time      bool
}

// Requirements lists the families with extra required fields.
var Requirements = map[model.ActionFamily]Requirement{
	model.FamilyHeat:     {Equipment: true, Time: true},
	model.FamilyTransfer: {Time: true},
	model.FamilyPortion:  {Equipment: true},
}

// Validator checks converted legacy items.
type Validator struct {
	aliases   Aliases
	threshold model.Tier
}

// NewValidator creates a validator gating extraction confidence at the
// given tier's threshold.
func NewValidator(a Aliases, threshold model.Tier) *Validator {
	return &Validator{aliases: a, threshold: threshold}
}

// Threshold returns the confidence tier the validator gates on.
func (v *Validator) Threshold() model.Tier {
	return v.threshold
}

// Validate returns every issue found in a conversion. It does not fail
// fast: one item typically has several independent problems.
//
// Unknown actions and time units are errors because the unit cannot be
// typed or timed; unknown phases, equipment, time types and confidence
// labels are warnings carrying the closest known value.
func (v *Validator) Validate(c Conversion) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for i := range c.Units {
		issues = append(issues, v.validateStep(c.Units[i], c.Steps[i])...)
	}

	g, structural := graph.Build(c.Units)
	issues = append(issues, structural...)
	issues = append(issues, graph.DetectCycles(g)...)

	model.SortIssues(issues)
	if issues == nil {
		issues = []model.ValidationIssue{}
	}
	return issues
}

func (v *Validator) validateStep(u model.WorkUnit, meta StepMeta) []model.ValidationIssue {
	var issues []model.ValidationIssue
	add := func(iss model.ValidationIssue) {
		iss.UnitID = u.ID
		issues = append(issues, iss)
	}
	raw := meta.Raw

	switch {
	case strings.TrimSpace(raw.Action) == "":
		add(missing("action"))
	case u.Action.Family == "":
		add(invalid("action", raw.Action, suggest(raw.Action, keys(v.aliases.Actions)), model.SeverityError))
	}
	if u.Target.Name == "" {
		add(missing("target"))
	}

	req := Requirements[u.Action.Family]
	if req.Equipment && u.Equipment == nil {
		add(missing("equipment"))
	}
	if req.Time && raw.Time == nil {
		add(missing("time"))
	}

	if raw.Phase != "" {
		if _, ok := v.aliases.Phase(raw.Phase); !ok {
			add(invalid("phase", raw.Phase, suggest(raw.Phase, keys(v.aliases.Phases)), model.SeverityWarning))
		}
	}
	if raw.Equipment != "" {
		if _, ok := v.aliases.Appliance(raw.Equipment); !ok {
			add(invalid("equipment", raw.Equipment, suggest(raw.Equipment, keys(v.aliases.Equipment)), model.SeverityWarning))
		}
	}

	if t := raw.Time; t != nil {
		if _, ok := v.aliases.UnitSeconds(t.Unit); !ok {
			add(invalid("time.unit", t.Unit, suggest(t.Unit, keys(v.aliases.TimeUnits)), model.SeverityError))
		}
		if t.Type != "" {
			if _, ok := v.aliases.TimeType(t.Type); !ok {
				add(invalid("time.type", t.Type, suggest(t.Type, keys(v.aliases.TimeTypes)), model.SeverityWarning))
			}
		}
		if t.Value <= 0 {
			add(model.ValidationIssue{
				Kind:     model.KindSchema,
				Severity: model.SeverityError,
				Code:     model.CodeNonPositive,
				Field:    "time.value",
				Message:  fmt.Sprintf("duration must be positive, got %g", t.Value),
			})
		}
	}

	for j, d := range u.DependsOn {
		c, ok := d.(model.ConditionalDep)
		if !ok {
			continue
		}
		if err := guard.Check(c.When); err != nil {
			add(model.ValidationIssue{
				Kind:     model.KindSchema,
				Severity: model.SeverityWarning,
				Code:     model.CodeInvalidGuard,
				Field:    fmt.Sprintf("depends_on[%d].when", j),
				Message:  err.Error(),
			})
		}
	}

	if raw.Confidence != "" {
		if _, ok := model.ParseTier(raw.Confidence); !ok {
			add(invalid("confidence", raw.Confidence, suggest(raw.Confidence, []string{"high", "low", "medium"}), model.SeverityWarning))
		}
	}
	score, threshold := model.ExtractionScore(meta.Confidence), v.threshold.Threshold()
	if score < threshold {
		sev := model.SeverityWarning
		if score < escalateBelow {
			sev = model.SeverityError
		}
		add(model.ValidationIssue{
			Kind:     model.KindTrust,
			Severity: sev,
			Code:     model.CodeLowConfidence,
			Field:    "confidence",
			Message:  fmt.Sprintf("extraction confidence %d is below the %s threshold %d", score, v.threshold, threshold),
		})
	}
	return issues
}

// Accept reports whether a validated item may skip human review: no
// error-severity issue and no low-confidence extraction of any severity.
func Accept(issues []model.ValidationIssue) bool {
	for _, iss := range issues {
		if iss.IsError() || iss.Code == model.CodeLowConfidence {
			return false
		}
	}
	return true
}

// Route returns the routing status for a validated item.
func Route(issues []model.ValidationIssue) model.MigrationStatus {
	if Accept(issues) {
		return model.MigrationSuccess
	}
	return model.MigrationReviewNeeded
}

func missing(field string) model.ValidationIssue {
	return model.ValidationIssue{
		Kind:     model.KindSchema,
		Severity: model.SeverityError,
		Code:     model.CodeMissingField,
		Field:    field,
		Message:  field + " is required",
	}
}

func invalid(field, value, suggestion string, sev model.Severity) model.ValidationIssue {
	return model.ValidationIssue{
		Kind:      model.KindSchema,
		Severity:  sev,
		Code:      model.CodeInvalidEnum,
		Field:     field,
		Message:   fmt.Sprintf("unknown %s %q", field, value),
		Suggested: suggestion,
	}
}

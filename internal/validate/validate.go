package validate

import (
	"fmt"
	"time"

	"github.com/roach88/linebuild/internal/continuity"
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/guard"
	"github.com/roach88/linebuild/internal/metrics"
	"github.com/roach88/linebuild/internal/model"
)

// Validator checks whole builds.
type Validator struct {
	checker *continuity.Checker
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithMetrics counts every issue found.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) { v.metrics = m }
}

// WithClock sets the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New creates a validator that uses checker for continuity findings.
func New(checker *continuity.Checker, opts ...Option) *Validator {
	v := &Validator{checker: checker, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Issues returns every finding for a build, sorted. Structural findings
// come from the graph and continuity passes; the rest are per-field checks.
func (v *Validator) Issues(b model.Build) []model.ValidationIssue {
	g, issues := graph.Build(b.WorkUnits)
	issues = append(issues, graph.DetectCycles(g)...)
	issues = append(issues, v.checker.Check(b.WorkUnits, b.Assemblies).Issues...)
	issues = append(issues, checkAssemblies(b.Assemblies)...)
	issues = append(issues, checkBuild(b)...)
	for i, u := range b.WorkUnits {
		issues = append(issues, checkUnit(i, u)...)
	}

	model.SortIssues(issues)
	if issues == nil {
		issues = []model.ValidationIssue{}
	}
	return issues
}

// Validate returns the validation output document for a build. Findings
// made earlier, such as schema issues from decoding, are merged in.
func (v *Validator) Validate(b model.Build, prior ...model.ValidationIssue) model.ValidationReport {
	issues := append(append([]model.ValidationIssue{}, prior...), v.Issues(b)...)
	model.SortIssues(issues)
	v.metrics.ObserveIssues(issues)
	return model.NewValidationReport(b.ID, b.ItemID, v.now().UTC(), issues)
}

func checkBuild(b model.Build) []model.ValidationIssue {
	var issues []model.ValidationIssue
	if b.ID == "" {
		issues = append(issues, fieldIssue("", "id", model.CodeMissingField, model.SeverityError, "build id is required"))
	}
	if b.Status != "" && !b.Status.IsValid() {
		issues = append(issues, fieldIssue("", "status", model.CodeInvalidEnum, model.SeverityError,
			fmt.Sprintf("unknown build status %q", b.Status)))
	}
	return issues
}

func checkAssemblies(assemblies []model.Assembly) []model.ValidationIssue {
	var issues []model.ValidationIssue
	seen := make(map[string]bool, len(assemblies))
	for i, a := range assemblies {
		if seen[a.ID] {
			issues = append(issues, model.ValidationIssue{
				Kind:     model.KindStructural,
				Severity: model.SeverityError,
				Code:     model.CodeDuplicateAssembly,
				Field:    fmt.Sprintf("assemblies[%d].id", i),
				Message:  fmt.Sprintf("duplicate assembly id %q", a.ID),
			})
		}
		seen[a.ID] = true
	}
	for i, a := range assemblies {
		for j, sub := range a.SubAssemblies {
			if !seen[sub] {
				issues = append(issues, model.ValidationIssue{
					Kind:     model.KindStructural,
					Severity: model.SeverityError,
					Code:     model.CodeUnknownAssembly,
					Field:    fmt.Sprintf("assemblies[%d].sub_assemblies[%d]", i, j),
					Message:  fmt.Sprintf("sub-assembly %q of %q is not in the build", sub, a.ID),
				})
			}
		}
	}
	return issues
}

func checkUnit(i int, u model.WorkUnit) []model.ValidationIssue {
	var issues []model.ValidationIssue
	add := func(field, code string, sev model.Severity, msg string) {
		issues = append(issues, fieldIssue(u.ID, field, code, sev, msg))
	}

	if u.ID == "" {
		add(fmt.Sprintf("work_units[%d].id", i), model.CodeMissingField, model.SeverityError, "unit id is required")
	}
	switch {
	case u.Action.Family == "":
		add("action.family", model.CodeMissingField, model.SeverityError, "action family is required")
	case !u.Action.Family.IsValid():
		add("action.family", model.CodeInvalidEnum, model.SeverityError,
			fmt.Sprintf("unknown action family %q", u.Action.Family))
	}
	if u.Target.Name == "" && u.Target.AssemblyID == "" {
		add("target", model.CodeMissingField, model.SeverityError, "target is required")
	}
	if u.Time != nil && u.Time.DurationSeconds <= 0 {
		add("time.duration_seconds", model.CodeNonPositive, model.SeverityError,
			fmt.Sprintf("duration must be positive, got %d", u.Time.DurationSeconds))
	}
	if u.Equipment != nil && u.Equipment.Appliance == "" {
		add("equipment.appliance", model.CodeMissingField, model.SeverityError, "equipment needs an appliance")
	}

	if u.From != nil {
		issues = append(issues, checkLocation(u.ID, "from", *u.From)...)
	}
	if u.To != nil {
		issues = append(issues, checkLocation(u.ID, "to", *u.To)...)
	}
	for j, io := range u.Inputs {
		if io.From != nil {
			issues = append(issues, checkLocation(u.ID, fmt.Sprintf("inputs[%d].from", j), *io.From)...)
		}
	}
	for j, io := range u.Outputs {
		if io.To != nil {
			issues = append(issues, checkLocation(u.ID, fmt.Sprintf("outputs[%d].to", j), *io.To)...)
		}
	}

	for j, d := range u.DependsOn {
		if c, ok := d.(model.ConditionalDep); ok {
			if err := guard.Check(c.When); err != nil {
				add(fmt.Sprintf("depends_on[%d].when", j), model.CodeInvalidGuard, model.SeverityWarning, err.Error())
			}
		}
	}
	return issues
}

func checkLocation(unitID, field string, loc model.Location) []model.ValidationIssue {
	var issues []model.ValidationIssue
	if loc.StationID == "" {
		issues = append(issues, fieldIssue(unitID, field+".station_id", model.CodeMissingField, model.SeverityError, "station id is required"))
	}
	if !loc.Sub.Kind.IsValid() {
		issues = append(issues, fieldIssue(unitID, field+".sub.kind", model.CodeInvalidEnum, model.SeverityError,
			fmt.Sprintf("unknown sub-location kind %q", loc.Sub.Kind)))
	}
	return issues
}

func fieldIssue(unitID, field, code string, sev model.Severity, msg string) model.ValidationIssue {
	return model.ValidationIssue{
		Kind:     model.KindSchema,
		Severity: sev,
		Code:     code,
		UnitID:   unitID,
		Field:    field,
		Message:  msg,
	}
}

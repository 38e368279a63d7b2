package model

import (
	"fmt"
	"sort"
	"time"
)

// Rule codes. Structural E100-E119, schema E120-E139, trust E140-E149,
// environmental E190-E199.
const (
	// Structural findings
	CodeDanglingDependency = "E101" // dependency references an unknown unit id
	CodeDependencyCycle    = "E102" // unit participates in a dependency cycle
	CodeMissingProducer    = "E103" // consumed assembly has no producing unit
	CodeUnknownAssembly    = "E104" // assembly is neither in the build nor marked external
	CodeDuplicateUnitID    = "E105" // two units share an id
	CodeDuplicateAssembly  = "E106" // two assemblies share an id

	// Schema findings
	CodeMissingField   = "E120" // required field absent for the action family
	CodeInvalidEnum    = "E121" // value outside the enumerated set
	CodeNonPositive    = "E122" // numeric value must be > 0
	CodeInvalidGuard   = "E123" // conditional dependency guard does not compile
	CodeSchemaMismatch = "E124" // document does not satisfy the build schema

	// Trust findings
	CodeLowConfidence = "E140" // extraction confidence below threshold

	// Environmental failures
	CodeUnreadable = "E190" // document could not be read or parsed
)

// Severity is error or warning.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueKind is the finding taxonomy.
type IssueKind string

const (
	KindStructural    IssueKind = "structural"
	KindSchema        IssueKind = "schema"
	KindTrust         IssueKind = "trust"
	KindEnvironmental IssueKind = "environmental"
)

// ValidationIssue is one finding. Issues are produced and consumed
// immediately; they are never stored as authored state.
type ValidationIssue struct {
	Kind      IssueKind `json:"kind"`
	Severity  Severity  `json:"severity"`
	Code      string    `json:"rule_id"`
	UnitID    string    `json:"unit_id,omitempty"`
	Field     string    `json:"field,omitempty"`
	Message   string    `json:"message"`
	Suggested string    `json:"suggested,omitempty"`
}

// Error implements the error interface.
func (i ValidationIssue) Error() string {
	if i.UnitID != "" {
		return fmt.Sprintf("[%s] %s %s: %s", i.Code, i.UnitID, i.Field, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Field, i.Message)
}

// IsError reports whether the issue has error severity.
func (i ValidationIssue) IsError() bool {
	return i.Severity == SeverityError
}

// SortIssues orders issues by (unit id, code, field, message) for
// reproducible, diff-friendly output. The input slice is sorted in place.
func SortIssues(issues []ValidationIssue) {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.UnitID != y.UnitID {
			return x.UnitID < y.UnitID
		}
		if x.Code != y.Code {
			return x.Code < y.Code
		}
		if x.Field != y.Field {
			return x.Field < y.Field
		}
		return x.Message < y.Message
	})
}

// ValidationReport is the validation output document for one build.
type ValidationReport struct {
	BuildID    string            `json:"build_id"`
	ItemID     string            `json:"item_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Valid      bool              `json:"valid"`
	HardErrors []ValidationIssue `json:"hard_errors"`
	Warnings   []ValidationIssue `json:"warnings"`
}

// NewValidationReport splits issues by severity. The report is valid when it
// has no hard errors.
func NewValidationReport(buildID, itemID string, at time.Time, issues []ValidationIssue) ValidationReport {
	r := ValidationReport{
		BuildID:    buildID,
		ItemID:     itemID,
		Timestamp:  at,
		HardErrors: []ValidationIssue{},
		Warnings:   []ValidationIssue{},
	}
	for _, issue := range issues {
		if issue.IsError() {
			r.HardErrors = append(r.HardErrors, issue)
		} else {
			r.Warnings = append(r.Warnings, issue)
		}
	}
	r.Valid = len(r.HardErrors) == 0
	return r
}

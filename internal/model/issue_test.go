package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewValidationReport_SplitsBySeverity(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issues := []ValidationIssue{
		{Code: CodeDanglingDependency, Severity: SeverityError, UnitID: "a"},
		{Code: CodeMissingProducer, Severity: SeverityWarning, UnitID: "b"},
	}

	r := NewValidationReport("build-1", "item-1", at, issues)
	assert.False(t, r.Valid)
	assert.Len(t, r.HardErrors, 1)
	assert.Len(t, r.Warnings, 1)
	assert.Equal(t, at, r.Timestamp)
}

func TestNewValidationReport_EmptyIsValid(t *testing.T) {
	r := NewValidationReport("b", "i", time.Time{}, nil)
	assert.True(t, r.Valid)
	assert.NotNil(t, r.HardErrors)
	assert.NotNil(t, r.Warnings)
}

func TestValidationIssue_Error(t *testing.T) {
	issue := ValidationIssue{Code: CodeNonPositive, UnitID: "u1", Field: "time.duration_seconds", Message: "must be > 0"}
	assert.Equal(t, "[E122] u1 time.duration_seconds: must be > 0", issue.Error())
}

func TestSortIssues(t *testing.T) {
	issues := []ValidationIssue{
		{UnitID: "b", Code: CodeDependencyCycle},
		{UnitID: "a", Code: CodeDependencyCycle},
		{UnitID: "a", Code: CodeDanglingDependency},
	}
	SortIssues(issues)
	assert.Equal(t, "a", issues[0].UnitID)
	assert.Equal(t, CodeDanglingDependency, issues[0].Code)
	assert.Equal(t, "b", issues[2].UnitID)
}

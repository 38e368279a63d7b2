package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/testutil"
)

func sampleJob(id string, at time.Time) model.MigrationJob {
	return model.MigrationJob{
		ID:     id,
		Status: model.JobComplete,
		Counts: model.MigrationCounts{Legacy: 2, Converted: 1, Review: 1},
		Results: []model.MigrationResult{
			{
				LegacyID: "blt",
				Status:   model.MigrationSuccess,
				WorkUnits: []model.WorkUnit{{
					ID:        "step-1",
					Action:    model.Action{Family: model.FamilyHeat, TechniqueID: "toast"},
					Target:    model.Target{Name: "bread"},
					Equipment: &model.Equipment{Appliance: "toaster"},
					DependsOn: model.DepList{model.ConditionalDep{ID: "step-0", When: "not vegan"}},
				}},
				Issues:    []model.ValidationIssue{},
				Timestamp: at,
			},
			{
				LegacyID:  "club",
				Status:    model.MigrationReviewNeeded,
				WorkUnits: []model.WorkUnit{},
				Issues: []model.ValidationIssue{{
					Kind: model.KindTrust, Severity: model.SeverityWarning, Code: model.CodeLowConfidence,
					UnitID: "step-2", Field: "confidence", Message: "extraction confidence 50 is below 85",
				}},
				Timestamp: at.Add(time.Second),
			},
		},
	}
}

// TestSaveJob_RoundTrip tests that a saved job loads back unchanged.
func TestSaveJob_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := sampleJob("job-1", testutil.Epoch)

	require.NoError(t, s.SaveJob(ctx, job))

	got, err := s.LoadJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

// TestSaveJob_StartThenFinish tests the two-phase save a runner performs.
func TestSaveJob_StartThenFinish(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	started := model.MigrationJob{ID: "job-2", Status: model.JobInProgress, Counts: model.MigrationCounts{Legacy: 2}, Results: []model.MigrationResult{}}
	require.NoError(t, s.SaveJob(ctx, started))

	got, err := s.LoadJob(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, model.JobInProgress, got.Status)
	assert.Empty(t, got.Results)

	finished := sampleJob("job-2", testutil.Epoch)
	require.NoError(t, s.SaveJob(ctx, finished))

	got, err = s.LoadJob(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, finished, got)
}

// TestSaveJob_ResultsAreAppendOnly tests that a stored result is never overwritten.
func TestSaveJob_ResultsAreAppendOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	job := sampleJob("job-3", testutil.Epoch)
	require.NoError(t, s.SaveJob(ctx, job))

	tampered := job
	tampered.Results = []model.MigrationResult{job.Results[0], job.Results[1]}
	tampered.Results[0].Status = model.MigrationFailed
	require.NoError(t, s.SaveJob(ctx, tampered))

	got, err := s.LoadJob(ctx, "job-3")
	require.NoError(t, err)
	assert.Equal(t, model.MigrationSuccess, got.Results[0].Status)
}

// TestLoadJob_NotFound tests the missing-job sentinel.
func TestLoadJob_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadJob(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestHistory tests that re-runs of one item accumulate across jobs.
func TestHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveJob(ctx, sampleJob("job-a", testutil.Epoch)))
	require.NoError(t, s.SaveJob(ctx, sampleJob("job-b", testutil.Epoch.Add(time.Hour))))

	history, err := s.History(ctx, "blt")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, testutil.Epoch, history[0].Timestamp)
	assert.Equal(t, testutil.Epoch.Add(time.Hour), history[1].Timestamp)

	none, err := s.History(ctx, "never-migrated")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// TestReports tests that the latest report wins and older ones are kept.
func TestReports(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LatestReport(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)

	bad := model.NewValidationReport("b1", "item-1", testutil.Epoch, []model.ValidationIssue{{
		Kind: model.KindStructural, Severity: model.SeverityError, Code: model.CodeDanglingDependency,
		UnitID: "plate", Field: "depends_on[0]", Message: `dependency "grill" does not exist in this build`,
	}})
	good := model.NewValidationReport("b1", "item-1", testutil.Epoch.Add(time.Minute), nil)
	require.NoError(t, s.SaveReport(ctx, bad))
	require.NoError(t, s.SaveReport(ctx, good))

	latest, err := s.LatestReport(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, good, latest)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM validation_reports WHERE build_id = 'b1'").Scan(&count))
	assert.Equal(t, 2, count)
}

// TestScores tests the fingerprint-keyed score cache.
func TestScores(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	score := model.ComplexityScore{
		Overall:     24.1,
		Factors:     map[string]float64{"unit_count": 12.5, "track_count": 33.3},
		Rationale:   "overall 24.1: driven by track_count 33.3, unit_count 12.5",
		Fingerprint: "abc123",
	}

	_, err := s.GetScore(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutScore(ctx, score))
	require.NoError(t, s.PutScore(ctx, score))

	got, err := s.GetScore(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, score, got)

	assert.Error(t, s.PutScore(ctx, model.ComplexityScore{}))
}

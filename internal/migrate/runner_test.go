package migrate

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linebuild/internal/ctxlog"
	"github.com/roach88/linebuild/internal/metrics"
	"github.com/roach88/linebuild/internal/model"
	clock "github.com/roach88/linebuild/internal/testutil"
)

type recordingSink struct {
	mu       sync.Mutex
	statuses []model.JobStatus
	err      error
}

func (s *recordingSink) SaveJob(_ context.Context, job model.MigrationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, job.Status)
	return s.err
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	r := NewRunner(DefaultAliases(), model.TierHigh)
	r.Now = clock.NewFrozenClock(clock.Epoch).Now
	r.NewID = clock.NewFixedIDGenerator("job-1").Generate
	return r
}

func batch(t *testing.T) []Document {
	t.Helper()
	good, err := os.ReadFile(filepath.Join("testdata", "blt.yaml"))
	require.NoError(t, err)
	review := bytes.Replace(good, []byte("id: legacy-blt"), []byte("id: legacy-blt-low"), 1)
	review = bytes.Replace(review, []byte("confidence: high\n  - id: build"), []byte("confidence: low\n  - id: build"), 1)

	return []Document{
		{Name: "blt.yaml", Data: good},
		{Name: "low.yaml", Data: review},
		{Name: "broken.yaml", Data: []byte("[1, 2")},
		{Name: "missing.yaml", Err: errors.New("open missing.yaml: no such file or directory")},
	}
}

// TestRun_RoutesEachItem tests routing, counts and input-order results.
func TestRun_RoutesEachItem(t *testing.T) {
	r := newTestRunner(t)
	r.Metrics = metrics.New(prometheus.NewRegistry())

	job, err := r.Run(context.Background(), batch(t))
	require.NoError(t, err)

	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, model.JobComplete, job.Status)
	assert.Empty(t, job.Error)
	assert.Equal(t, model.MigrationCounts{Legacy: 4, Converted: 2, Review: 1, Failed: 2}, job.Counts)

	require.Len(t, job.Results, 4)
	assert.Equal(t, "legacy-blt", job.Results[0].LegacyID)
	assert.Equal(t, model.MigrationSuccess, job.Results[0].Status)
	assert.Len(t, job.Results[0].WorkUnits, 3)
	assert.Equal(t, clock.Epoch, job.Results[0].Timestamp)

	assert.Equal(t, "legacy-blt-low", job.Results[1].LegacyID)
	assert.Equal(t, model.MigrationReviewNeeded, job.Results[1].Status)

	assert.Equal(t, "broken.yaml", job.Results[2].LegacyID)
	assert.Equal(t, model.MigrationFailed, job.Results[2].Status)
	assert.NotEmpty(t, job.Results[2].Error)
	require.Len(t, job.Results[2].Issues, 1)
	assert.Equal(t, model.CodeUnreadable, job.Results[2].Issues[0].Code)
	assert.Equal(t, model.KindEnvironmental, job.Results[2].Issues[0].Kind)

	assert.Equal(t, "open missing.yaml: no such file or directory", job.Results[3].Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.MigrationItems.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Metrics.MigrationItems.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.ValidationIssues.WithLabelValues("trust", "error")))
}

// TestRun_ProgressIsMonotonic tests the progress callback under concurrency.
func TestRun_ProgressIsMonotonic(t *testing.T) {
	r := newTestRunner(t)
	r.Concurrency = 3

	docs := make([]Document, 0, 20)
	for range 5 {
		docs = append(docs, batch(t)...)
	}

	var calls []int
	r.Progress = func(current, total int) {
		assert.Equal(t, len(docs), total)
		calls = append(calls, current)
	}

	_, err := r.Run(context.Background(), docs)
	require.NoError(t, err)

	require.Len(t, calls, len(docs))
	for i, c := range calls {
		assert.Equal(t, i+1, c)
	}
}

// TestRun_Canceled tests that a cancelled context fails unstarted items without aborting the job document.
func TestRun_Canceled(t *testing.T) {
	r := newTestRunner(t)
	progressed := false
	r.Progress = func(int, int) { progressed = true }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job, err := r.Run(ctx, batch(t))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, progressed)
	assert.Equal(t, model.JobFailed, job.Status)
	assert.Equal(t, "migration canceled: context canceled", job.Error)
	assert.Equal(t, 4, job.Counts.Failed)
	for _, res := range job.Results {
		assert.Equal(t, "canceled", res.Error)
	}
}

// TestRun_MultiItemDocument tests that a list document yields one result per item
// and one progress tick.
func TestRun_MultiItemDocument(t *testing.T) {
	r := newTestRunner(t)
	var ticks [][2]int
	r.Progress = func(current, total int) { ticks = append(ticks, [2]int{current, total}) }
	doc := Document{Name: "menu.yaml", Data: []byte(`
items:
  - steps: [{id: a, action: prep, target: lettuce}]
  - id: named
    steps: [{id: a, action: prep, target: tomato}]
`)}

	job, err := r.Run(context.Background(), []Document{doc})
	require.NoError(t, err)

	require.Len(t, job.Results, 2)
	assert.Equal(t, "menu.yaml#1", job.Results[0].LegacyID)
	assert.Equal(t, "named", job.Results[1].LegacyID)
	assert.Equal(t, 2, job.Counts.Legacy)
	assert.Equal(t, 2, job.Counts.Converted)
	assert.Equal(t, [][2]int{{1, 1}}, ticks)
}

// TestRun_Sink tests that the job is saved when it starts and when it ends.
func TestRun_Sink(t *testing.T) {
	r := newTestRunner(t)
	sink := &recordingSink{}
	r.Sink = sink

	_, err := r.Run(context.Background(), batch(t)[:1])
	require.NoError(t, err)
	assert.Equal(t, []model.JobStatus{model.JobInProgress, model.JobComplete}, sink.statuses)

	sink.err = errors.New("disk full")
	job, err := r.Run(context.Background(), batch(t)[:1])
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, model.JobComplete, job.Status, "sink failures do not change the job")
}

// TestRun_LogsThroughContext tests that the context logger receives per-item records.
func TestRun_LogsThroughContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := newTestRunner(t).Run(ctx, batch(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "legacy item accepted")
	assert.Contains(t, out, "legacy item needs review")
	assert.Contains(t, out, "legacy document malformed")
	assert.Contains(t, out, "job_id=job-1")
}

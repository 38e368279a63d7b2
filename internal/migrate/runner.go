package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/linebuild/internal/ctxlog"
	"github.com/roach88/linebuild/internal/metrics"
	"github.com/roach88/linebuild/internal/model"
)

// DefaultConcurrency bounds the worker pool when Runner.Concurrency is unset.
const DefaultConcurrency = 4

// Document is one batch item: the raw bytes of a legacy document, or the
// error hit while reading it.
type Document struct {
	Name string
	Data []byte
	Err  error
}

// JobSink persists job documents as a run progresses.
type JobSink interface {
	SaveJob(ctx context.Context, job model.MigrationJob) error
}

// ProgressFunc is called after each document finishes, so a document that
// holds several legacy items ticks once for all of them. total is the
// number of documents; current increases by one on every call and reaches
// total on the last.
type ProgressFunc func(current, total int)

// Runner migrates batches of legacy documents.
type Runner struct {
	Aliases     Aliases
	Validator   *Validator
	Concurrency int
	Metrics     *metrics.Metrics
	Sink        JobSink
	Progress    ProgressFunc
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// NewRunner creates a runner with the given alias tables and confidence
// threshold.
func NewRunner(a Aliases, threshold model.Tier) *Runner {
	return &Runner{
		Aliases:     a,
		Validator:   NewValidator(a, threshold),
		Concurrency: DefaultConcurrency,
	}
}

// Run migrates every document and returns the job document. Results keep
// input order. Each document yields one result per legacy item it holds;
// an unreadable or malformed document yields a single failed result.
//
// Cancelling ctx stops scheduling: items that never started are marked
// failed with "canceled", the job status becomes failed, and ctx.Err() is
// returned alongside the job. A sink error is returned after the job is
// complete; the job itself is unaffected.
func (r *Runner) Run(ctx context.Context, docs []Document) (model.MigrationJob, error) {
	logger := ctxlog.FromContext(ctx)
	job := model.MigrationJob{
		ID:      r.newID(),
		Status:  model.JobInProgress,
		Results: []model.MigrationResult{},
	}
	job.Counts.Legacy = len(docs)
	logger = logger.With("job_id", job.ID)
	ctx = ctxlog.WithLogger(ctx, logger)

	var sinkErr error
	if r.Sink != nil {
		if err := r.Sink.SaveJob(ctx, job); err != nil {
			sinkErr = fmt.Errorf("save job %s: %w", job.ID, err)
		}
	}

	perDoc := make([][]model.MigrationResult, len(docs))
	started := make([]bool, len(docs))

	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)

	var mu sync.Mutex
	completed := 0
	for i := range docs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			perDoc[i] = r.migrateDocument(ctx, docs[i])
			started[i] = true

			mu.Lock()
			completed++
			if r.Progress != nil {
				r.Progress(completed, len(docs))
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i, doc := range docs {
		if !started[i] {
			perDoc[i] = []model.MigrationResult{r.failed(doc.Name, "canceled")}
		}
		job.Results = append(job.Results, perDoc[i]...)
	}

	job.Counts.Legacy = len(job.Results)
	for _, res := range job.Results {
		switch res.Status {
		case model.MigrationSuccess:
			job.Counts.Converted++
		case model.MigrationReviewNeeded:
			job.Counts.Converted++
			job.Counts.Review++
		case model.MigrationFailed:
			job.Counts.Failed++
		}
	}

	job.Status = model.JobComplete
	runErr := ctx.Err()
	if runErr != nil {
		job.Status = model.JobFailed
		job.Error = fmt.Sprintf("migration canceled: %v", runErr)
	}
	logger.Info("migration job finished",
		"status", job.Status,
		"legacy", job.Counts.Legacy,
		"converted", job.Counts.Converted,
		"review", job.Counts.Review,
		"failed", job.Counts.Failed,
	)

	if r.Sink != nil {
		if err := r.Sink.SaveJob(context.WithoutCancel(ctx), job); err != nil {
			sinkErr = errors.Join(sinkErr, fmt.Errorf("save job %s: %w", job.ID, err))
		}
	}
	return job, errors.Join(runErr, sinkErr)
}

// MigrateItem converts, validates and routes one legacy item.
func (r *Runner) MigrateItem(ctx context.Context, item LegacyItem) model.MigrationResult {
	conv := Convert(item, r.Aliases)
	issues := r.Validator.Validate(conv)
	res := model.MigrationResult{
		LegacyID:  item.ID,
		WorkUnits: conv.Units,
		Issues:    issues,
		Status:    Route(issues),
		Timestamp: r.now(),
	}

	r.Metrics.ObserveMigration(res.Status)
	r.Metrics.ObserveIssues(issues)

	logger := ctxlog.FromContext(ctx)
	if res.Status == model.MigrationSuccess {
		logger.Info("legacy item accepted", "legacy_id", res.LegacyID, "units", len(res.WorkUnits))
	} else {
		logger.Warn("legacy item needs review", "legacy_id", res.LegacyID, "issues", len(issues))
	}
	return res
}

func (r *Runner) migrateDocument(ctx context.Context, doc Document) []model.MigrationResult {
	logger := ctxlog.FromContext(ctx)
	if doc.Err != nil {
		logger.Error("legacy document unreadable", "legacy_id", doc.Name, "error", doc.Err)
		return []model.MigrationResult{r.failed(doc.Name, doc.Err.Error())}
	}
	items, err := ParseItems(doc.Data)
	if err != nil {
		logger.Error("legacy document malformed", "legacy_id", doc.Name, "error", err)
		return []model.MigrationResult{r.failed(doc.Name, err.Error())}
	}

	out := make([]model.MigrationResult, 0, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = doc.Name
			if len(items) > 1 {
				item.ID = fmt.Sprintf("%s#%d", doc.Name, i+1)
			}
		}
		out = append(out, r.MigrateItem(ctx, item))
	}
	return out
}

// failed builds the result for an item that could not be processed.
func (r *Runner) failed(legacyID, msg string) model.MigrationResult {
	res := model.MigrationResult{
		LegacyID:  legacyID,
		WorkUnits: []model.WorkUnit{},
		Issues: []model.ValidationIssue{{
			Kind:     model.KindEnvironmental,
			Severity: model.SeverityError,
			Code:     model.CodeUnreadable,
			Field:    "document",
			Message:  msg,
		}},
		Status:    model.MigrationFailed,
		Error:     msg,
		Timestamp: r.now(),
	}
	r.Metrics.ObserveMigration(res.Status)
	r.Metrics.ObserveIssues(res.Issues)
	return res
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

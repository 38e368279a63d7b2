package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linebuild/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SaveJob upserts the job row and appends any results not yet stored.
// Result rows are keyed by (job id, position) and never overwritten, so
// saving the same job twice is safe. It implements migrate.JobSink.
func (s *Store) SaveJob(ctx context.Context, job model.MigrationJob) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO migration_jobs
		(id, status, legacy_count, converted_count, review_count, failed_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			legacy_count = excluded.legacy_count,
			converted_count = excluded.converted_count,
			review_count = excluded.review_count,
			failed_count = excluded.failed_count,
			error = excluded.error
	`,
		job.ID,
		string(job.Status),
		job.Counts.Legacy,
		job.Counts.Converted,
		job.Counts.Review,
		job.Counts.Failed,
		job.Error,
	)
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}

	for i, r := range job.Results {
		units, err := marshalText("work units", r.WorkUnits)
		if err != nil {
			return fmt.Errorf("save job %s: %w", job.ID, err)
		}
		issues, err := marshalText("issues", r.Issues)
		if err != nil {
			return fmt.Errorf("save job %s: %w", job.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO migration_results
			(job_id, position, legacy_id, status, work_units, issues, error, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(job_id, position) DO NOTHING
		`,
			job.ID,
			i,
			r.LegacyID,
			string(r.Status),
			units,
			issues,
			r.Error,
			formatTime(r.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("save job %s result %d: %w", job.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

// LoadJob returns a job with its results in input order.
// Returns ErrNotFound if no job has the id.
func (s *Store) LoadJob(ctx context.Context, id string) (model.MigrationJob, error) {
	job := model.MigrationJob{ID: id}
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT status, legacy_count, converted_count, review_count, failed_count, error
		FROM migration_jobs
		WHERE id = ?
	`, id).Scan(&status, &job.Counts.Legacy, &job.Counts.Converted, &job.Counts.Review, &job.Counts.Failed, &job.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MigrationJob{}, fmt.Errorf("load job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.MigrationJob{}, fmt.Errorf("load job %s: %w", id, err)
	}
	job.Status = model.JobStatus(status)

	job.Results, err = s.queryResults(ctx, `
		SELECT legacy_id, status, work_units, issues, error, timestamp
		FROM migration_results
		WHERE job_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return model.MigrationJob{}, fmt.Errorf("load job %s: %w", id, err)
	}
	return job, nil
}

// History returns every stored result for one legacy item, oldest job
// first. Returns an empty slice (not nil) when the item was never migrated.
func (s *Store) History(ctx context.Context, legacyID string) ([]model.MigrationResult, error) {
	results, err := s.queryResults(ctx, `
		SELECT r.legacy_id, r.status, r.work_units, r.issues, r.error, r.timestamp
		FROM migration_results r
		WHERE r.legacy_id = ?
		ORDER BY r.timestamp ASC, r.job_id COLLATE BINARY ASC, r.position ASC
	`, legacyID)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", legacyID, err)
	}
	return results, nil
}

func (s *Store) queryResults(ctx context.Context, query string, args ...any) ([]model.MigrationResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []model.MigrationResult{}
	for rows.Next() {
		var r model.MigrationResult
		var status, units, issues, ts string
		if err := rows.Scan(&r.LegacyID, &status, &units, &issues, &r.Error, &ts); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Status = model.MigrationStatus(status)
		if err := unmarshalText("work units", units, &r.WorkUnits); err != nil {
			return nil, err
		}
		if err := unmarshalText("issues", issues, &r.Issues); err != nil {
			return nil, err
		}
		if r.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

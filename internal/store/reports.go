package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linebuild/internal/model"
)

// SaveReport appends a validation report to the build's history.
func (s *Store) SaveReport(ctx context.Context, r model.ValidationReport) error {
	doc, err := marshalText("report", r)
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.BuildID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO validation_reports (build_id, item_id, timestamp, valid, report)
		VALUES (?, ?, ?, ?, ?)
	`, r.BuildID, r.ItemID, formatTime(r.Timestamp), r.Valid, doc)
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.BuildID, err)
	}
	return nil
}

// LatestReport returns the most recently saved report for a build.
// Returns ErrNotFound if the build has none.
func (s *Store) LatestReport(ctx context.Context, buildID string) (model.ValidationReport, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT report
		FROM validation_reports
		WHERE build_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, buildID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ValidationReport{}, fmt.Errorf("latest report %s: %w", buildID, ErrNotFound)
	}
	if err != nil {
		return model.ValidationReport{}, fmt.Errorf("latest report %s: %w", buildID, err)
	}

	var r model.ValidationReport
	if err := unmarshalText("report", doc, &r); err != nil {
		return model.ValidationReport{}, fmt.Errorf("latest report %s: %w", buildID, err)
	}
	return r, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linebuild/internal/model"
)

// PutScore caches a complexity score under its fingerprint. Scores are a
// pure function of the fingerprinted content, so an existing entry is kept.
func (s *Store) PutScore(ctx context.Context, score model.ComplexityScore) error {
	if score.Fingerprint == "" {
		return errors.New("put score: fingerprint is required")
	}
	doc, err := marshalText("score", score)
	if err != nil {
		return fmt.Errorf("put score: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO complexity_scores (fingerprint, overall, score)
		VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, score.Fingerprint, score.Overall, doc)
	if err != nil {
		return fmt.Errorf("put score: %w", err)
	}
	return nil
}

// GetScore returns the cached score for a fingerprint.
// Returns ErrNotFound on a cache miss.
func (s *Store) GetScore(ctx context.Context, fingerprint string) (model.ComplexityScore, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT score FROM complexity_scores WHERE fingerprint = ?
	`, fingerprint).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ComplexityScore{}, fmt.Errorf("get score: %w", ErrNotFound)
	}
	if err != nil {
		return model.ComplexityScore{}, fmt.Errorf("get score: %w", err)
	}

	var score model.ComplexityScore
	if err := unmarshalText("score", doc, &score); err != nil {
		return model.ComplexityScore{}, fmt.Errorf("get score: %w", err)
	}
	return score, nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ScoreRepository handles database operations for quiz scores.
// It implements store.ScorePersistence.
type ScoreRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewScoreRepository creates a new repository instance
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db, now: time.Now}
}

// LoadScores returns every score, oldest first
func (r *ScoreRepository) LoadScores(ctx context.Context) ([]int, error) {
	scores := []int{}
	if err := r.db.SelectContext(ctx, &scores, "SELECT score FROM quiz_scores ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get quiz scores: %w", err)
	}
	return scores, nil
}

// AppendScore inserts a new score
func (r *ScoreRepository) AppendScore(ctx context.Context, score int) error {
	query := r.db.Rebind("INSERT INTO quiz_scores (score, taken_at) VALUES (?, ?)")
	if _, err := r.db.ExecContext(ctx, query, score, r.now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to save quiz score: %w", err)
	}
	return nil
}

// ClearScores removes all scores
func (r *ScoreRepository) ClearScores(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM quiz_scores"); err != nil {
		return fmt.Errorf("failed to clear quiz scores: %w", err)
	}
	return nil
}

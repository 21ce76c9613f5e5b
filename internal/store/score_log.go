package store

import (
	"context"
	"fmt"
	"sync"
)

// ScorePersistence is the durable backing for quiz scores
type ScorePersistence interface {
	LoadScores(ctx context.Context) ([]int, error)
	AppendScore(ctx context.Context, score int) error
	ClearScores(ctx context.Context) error
}

// ScoreLog is the append-only list of quiz percentages
type ScoreLog struct {
	mu      sync.RWMutex
	scores  []int
	persist ScorePersistence
}

// OpenScoreLog loads saved scores
func OpenScoreLog(ctx context.Context, persist ScorePersistence) (*ScoreLog, error) {
	scores, err := persist.LoadScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return &ScoreLog{scores: scores, persist: persist}, nil
}

// Append records a score, clamped to 0..100
func (l *ScoreLog) Append(ctx context.Context, score int) error {
	score = max(0, min(100, score))

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.persist.AppendScore(ctx, score); err != nil {
		return fmt.Errorf("failed to save score: %w", err)
	}
	l.scores = append(l.scores, score)
	return nil
}

// Scores returns all recorded scores, oldest first
func (l *ScoreLog) Scores() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]int(nil), l.scores...)
}

// Len returns the number of recorded quizzes
func (l *ScoreLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scores)
}

// Average returns the rounded mean score, 0 when nothing was recorded
func (l *ScoreLog) Average() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range l.scores {
		sum += s
	}
	n := len(l.scores)
	return (2*sum + n) / (2 * n)
}

// Clear removes every score
func (l *ScoreLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.persist.ClearScores(ctx); err != nil {
		return fmt.Errorf("failed to clear scores: %w", err)
	}
	l.scores = nil
	return nil
}

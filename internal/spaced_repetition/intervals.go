package spaced_repetition

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/vocablab/pkg/models"
)

// ErrUnknownRating is returned for ratings outside the closed set
var ErrUnknownRating = errors.New("unknown rating")

// DefaultIntervals are the review intervals in days, indexed by level-1
var DefaultIntervals = []int{1, 3, 7, 14, 30, 60, 120}

// Rating is the user's feedback on a flashcard
type Rating int

const (
	// RatingAgain sends the word back to level 1
	RatingAgain Rating = iota + 1
	// RatingGood moves the word up one level
	RatingGood
	// RatingEasy moves the word up two levels
	RatingEasy
)

// String returns the wire name of the rating
func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return fmt.Sprintf("rating(%d)", int(r))
	}
}

// ParseRating converts "again", "good" or "easy" into a Rating
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again":
		return RatingAgain, nil
	case "good":
		return RatingGood, nil
	case "easy":
		return RatingEasy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRating, s)
}

// Scheduler maps review outcomes to levels and due dates.
// It never reads the clock; callers pass now explicitly.
type Scheduler struct {
	// Интервалы повторения в днях по уровням
	Intervals []int
}

// NewScheduler creates a scheduler with the given interval table.
// An empty table falls back to DefaultIntervals.
func NewScheduler(intervals []int) *Scheduler {
	if len(intervals) == 0 {
		intervals = DefaultIntervals
	}
	return &Scheduler{Intervals: append([]int(nil), intervals...)}
}

// Result is the outcome of a rating
type Result struct {
	Level          int
	NextReviewDate time.Time
}

// MaxLevel is the highest reachable level
func (s *Scheduler) MaxLevel() int {
	return len(s.Intervals)
}

// Interval returns the review interval in days for a level, clamped to the table
func (s *Scheduler) Interval(level int) int {
	if level < 1 {
		level = 1
	}
	if level > len(s.Intervals) {
		level = len(s.Intervals)
	}
	return s.Intervals[level-1]
}

// NextReviewDate returns now shifted by the interval of the level
func (s *Scheduler) NextReviewDate(level int, now time.Time) time.Time {
	return now.AddDate(0, 0, s.Interval(level))
}

// IsDue reports whether the word should be reviewed at now
func (s *Scheduler) IsDue(word models.Word, now time.Time) bool {
	return !word.NextReviewDate.After(now)
}

// IsLearned reports whether the word reached the learned level
func (s *Scheduler) IsLearned(word models.Word) bool {
	return word.IsLearned()
}

// Respond computes the new level and due date for a rating.
// An unknown rating leaves both unchanged and returns ErrUnknownRating.
func (s *Scheduler) Respond(word models.Word, rating Rating, now time.Time) (Result, error) {
	level := word.Level
	if level < 1 {
		level = 1
	}

	switch rating {
	case RatingAgain:
		level = 1
	case RatingGood:
		level = min(level+1, s.MaxLevel())
	case RatingEasy:
		level = min(level+2, s.MaxLevel())
	default:
		return Result{Level: word.Level, NextReviewDate: word.NextReviewDate}, fmt.Errorf("%w: %v", ErrUnknownRating, rating)
	}

	return Result{
		Level:          level,
		NextReviewDate: s.NextReviewDate(level, now),
	}, nil
}

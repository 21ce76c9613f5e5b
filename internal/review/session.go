package review

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/pkg/models"
)

// ErrSessionComplete is returned when the session has no current card
var ErrSessionComplete = errors.New("review session is complete")

// Store is the part of the word store a session needs
type Store interface {
	FindByID(id int64) (models.Word, bool)
	SetSchedule(ctx context.Context, id int64, level int, nextReview time.Time) error
}

// Status describes where a session stands
type Status int

const (
	// StatusActive means there is a card to review
	StatusActive Status = iota
	// StatusNothingToReview means the store holds no words at all
	StatusNothingToReview
	// StatusAllReviewed means no words were due or every due word was rated
	StatusAllReviewed
)

// Session is one flashcard pass over the due words
type Session struct {
	store     Store
	scheduler *spaced_repetition.Scheduler
	words     []models.Word
	position  int
	flipped   bool
	storeSize int
}

// Build selects the words due at now and shuffles them uniformly
func Build(allWords []models.Word, now time.Time, rnd *rand.Rand, store Store, scheduler *spaced_repetition.Scheduler) *Session {
	due := make([]models.Word, 0, len(allWords))
	for _, w := range allWords {
		if scheduler.IsDue(w, now) {
			due = append(due, w.Clone())
		}
	}

	rnd.Shuffle(len(due), func(i, j int) {
		due[i], due[j] = due[j], due[i]
	})

	return &Session{
		store:     store,
		scheduler: scheduler,
		words:     due,
		storeSize: len(allWords),
	}
}

// Status reports whether the session is active or why it is not
func (s *Session) Status() Status {
	if s.position < len(s.words) {
		return StatusActive
	}
	if s.storeSize == 0 {
		return StatusNothingToReview
	}
	return StatusAllReviewed
}

// Complete reports whether every card was handled
func (s *Session) Complete() bool {
	return s.position >= len(s.words)
}

// Len returns the number of cards in the session
func (s *Session) Len() int {
	return len(s.words)
}

// Position returns the 0-based index of the current card
func (s *Session) Position() int {
	return s.position
}

// Flipped reports whether the answer side is shown
func (s *Session) Flipped() bool {
	return s.flipped
}

// Words returns the cards in session order
func (s *Session) Words() []models.Word {
	out := make([]models.Word, len(s.words))
	copy(out, s.words)
	return out
}

// Current returns the card under the cursor
func (s *Session) Current() (models.Word, error) {
	if s.Complete() {
		return models.Word{}, ErrSessionComplete
	}
	return s.words[s.position], nil
}

// Flip toggles the answer side. It does nothing on an empty or finished session.
func (s *Session) Flip() bool {
	if s.Complete() {
		return s.flipped
	}
	s.flipped = !s.flipped
	return s.flipped
}

// Outcome describes what a rating did
type Outcome struct {
	Word        models.Word // the rated word with its new schedule
	AutoFlipped bool        // the card was turned over before the rating applied
	Skipped     bool        // the word was deleted meanwhile and was passed over
	Complete    bool        // no cards remain
}

// Respond applies a rating to the current card and advances.
// A card that is still face down is flipped first.
func (s *Session) Respond(ctx context.Context, rating spaced_repetition.Rating, now time.Time) (Outcome, error) {
	var out Outcome
	if s.Complete() {
		return out, ErrSessionComplete
	}

	if !s.flipped {
		s.flipped = true
		out.AutoFlipped = true
	}

	card := s.words[s.position]
	current, ok := s.store.FindByID(card.ID)
	if !ok {
		out.Word = card
		out.Skipped = true
		s.advance()
		out.Complete = s.Complete()
		return out, nil
	}

	res, err := s.scheduler.Respond(current, rating, now)
	if err != nil {
		return out, err
	}
	if err := s.store.SetSchedule(ctx, current.ID, res.Level, res.NextReviewDate); err != nil {
		return out, fmt.Errorf("failed to save review of word %d: %w", current.ID, err)
	}

	current.Level = res.Level
	current.NextReviewDate = res.NextReviewDate
	s.words[s.position] = current
	out.Word = current

	s.advance()
	out.Complete = s.Complete()
	return out, nil
}

func (s *Session) advance() {
	s.position++
	s.flipped = false
}

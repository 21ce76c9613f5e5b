package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/pkg/models"
)

var (
	// ErrNotFound is returned when no word has the requested id
	ErrNotFound = errors.New("word not found")
	// ErrInvalidWord is returned when a word lacks a term or a meaning
	ErrInvalidWord = errors.New("invalid word")
	// ErrDuplicateID is returned when a replacement set reuses an id
	ErrDuplicateID = errors.New("duplicate word id")
)

// Persistence is the durable backing for the word collection
type Persistence interface {
	// LoadWords returns the saved collection in insertion order.
	// found is false when nothing was ever saved.
	LoadWords(ctx context.Context) (words []models.Word, found bool, err error)
	// SaveWords replaces the saved collection
	SaveWords(ctx context.Context, words []models.Word) error
}

// Option configures a WordStore
type Option func(*WordStore)

// WithClock overrides the time source used for ids and default dates
func WithClock(clock func() time.Time) Option {
	return func(s *WordStore) {
		s.clock = clock
	}
}

// WithMaxLevel sets the highest level a stored word may have, normally
// the length of the interval table
func WithMaxLevel(level int) Option {
	return func(s *WordStore) {
		s.maxLevel = level
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(s *WordStore) {
		s.log = log
	}
}

// WordStore is the in-memory ordered word collection.
// Every mutation is flushed to the persistence before it becomes visible.
type WordStore struct {
	mu      sync.RWMutex
	words   []models.Word
	persist Persistence
	clock   func() time.Time
	log     *zap.Logger
	lastID  int64

	// Уровень слова не может превышать длину таблицы интервалов
	maxLevel int
}

// Open loads the collection, seeding the sample words on first run
// and repairing legacy records.
func Open(ctx context.Context, persist Persistence, opts ...Option) (*WordStore, error) {
	s := &WordStore{
		persist:  persist,
		clock:    time.Now,
		log:      zap.NewNop(),
		maxLevel: len(spaced_repetition.DefaultIntervals),
	}
	for _, opt := range opts {
		opt(s)
	}

	words, found, err := persist.LoadWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}

	now := s.clock()
	if !found {
		s.log.Info("No saved words, seeding sample set")
		words = SampleWords(now)
		if err := persist.SaveWords(ctx, words); err != nil {
			return nil, fmt.Errorf("failed to save sample words: %w", err)
		}
	}

	repaired := 0
	for i := range words {
		if words[i].Repair(now, s.maxLevel) {
			repaired++
		}
		if words[i].ID > s.lastID {
			s.lastID = words[i].ID
		}
	}
	if repaired > 0 {
		s.log.Info("Repaired stored words", zap.Int("count", repaired))
		if err := persist.SaveWords(ctx, words); err != nil {
			return nil, fmt.Errorf("failed to save repaired words: %w", err)
		}
	}

	s.words = words
	return s, nil
}

// List returns a snapshot of all words in insertion order
func (s *WordStore) List() []models.Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.words)
}

// Len returns the number of words
func (s *WordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Recent returns all words, most recently added first
func (s *WordStore) Recent() []models.Word {
	words := s.List()
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].AddedDate.After(words[j].AddedDate)
	})
	return words
}

// FindByID returns the word with the given id
func (s *WordStore) FindByID(id int64) (models.Word, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.words[i].Clone(), true
	}
	return models.Word{}, false
}

// Search returns words whose term, meaning or one of the tags contains
// the query, ignoring case. An empty query matches everything.
func (s *WordStore) Search(query string) []models.Word {
	q := strings.ToLower(strings.TrimSpace(query))
	var found []models.Word
	for _, w := range s.Recent() {
		if q == "" || matches(w, q) {
			found = append(found, w)
		}
	}
	return found
}

func matches(w models.Word, q string) bool {
	if strings.Contains(strings.ToLower(w.Term), q) || strings.Contains(strings.ToLower(w.Meaning), q) {
		return true
	}
	for _, tag := range w.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// DueCount returns how many words are due at now
func (s *WordStore) DueCount(now time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, w := range s.words {
		if !w.NextReviewDate.After(now) {
			n++
		}
	}
	return n
}

// Add stores a new word at level 1, due now, and returns its id
func (s *WordStore) Add(ctx context.Context, word models.Word) (int64, error) {
	if err := validate(word); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	w := word.Clone()
	w.ID = s.nextID(now)
	w.Term = strings.TrimSpace(w.Term)
	w.Meaning = strings.TrimSpace(w.Meaning)
	w.Level = 1
	w.NextReviewDate = now
	w.AddedDate = now
	if w.Tags == nil {
		w.Tags = []string{}
	}

	next := append(cloneAll(s.words), w)
	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}
	s.lastID = w.ID
	s.log.Debug("Word added", zap.Int64("word_id", w.ID), zap.String("term", w.Term))
	return w.ID, nil
}

// Update edits the descriptive fields of a word. Level and review date are kept.
func (s *WordStore) Update(ctx context.Context, id int64, patch models.WordPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	next := cloneAll(s.words)
	patch.Apply(&next[i])
	next[i].Term = strings.TrimSpace(next[i].Term)
	next[i].Meaning = strings.TrimSpace(next[i].Meaning)
	if err := validate(next[i]); err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// Remove deletes a word
func (s *WordStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	next := make([]models.Word, 0, len(s.words)-1)
	next = append(next, cloneAll(s.words[:i])...)
	next = append(next, cloneAll(s.words[i+1:])...)
	return s.commit(ctx, next)
}

// SetSchedule stores a new level and review date for a word
func (s *WordStore) SetSchedule(ctx context.Context, id int64, level int, nextReview time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	next := cloneAll(s.words)
	next[i].Level = level
	next[i].NextReviewDate = nextReview
	return s.commit(ctx, next)
}

// Replace swaps the whole collection. Nothing changes if any word is
// invalid or the flush fails.
func (s *WordStore) Replace(ctx context.Context, words []models.Word) error {
	now := s.clock()
	next := cloneAll(words)
	seen := make(map[int64]bool, len(next))
	var maxID int64
	for i := range next {
		if err := validate(next[i]); err != nil {
			return fmt.Errorf("word %d: %w", i+1, err)
		}
		if seen[next[i].ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, next[i].ID)
		}
		seen[next[i].ID] = true
		next[i].Repair(now, s.maxLevel)
		if next[i].AddedDate.IsZero() {
			next[i].AddedDate = now
		}
		if next[i].ID > maxID {
			maxID = next[i].ID
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, next); err != nil {
		return err
	}
	if maxID > s.lastID {
		s.lastID = maxID
	}
	s.log.Info("Word collection replaced", zap.Int("count", len(next)))
	return nil
}

// commit flushes next and makes it current. Callers hold the write lock.
func (s *WordStore) commit(ctx context.Context, next []models.Word) error {
	if err := s.persist.SaveWords(ctx, next); err != nil {
		s.log.Error("Failed to save words", zap.Error(err))
		return fmt.Errorf("failed to save words: %w", err)
	}
	s.words = next
	return nil
}

// nextID derives an id from the clock, bumping past the last one issued
func (s *WordStore) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func (s *WordStore) indexOf(id int64) int {
	for i := range s.words {
		if s.words[i].ID == id {
			return i
		}
	}
	return -1
}

func validate(w models.Word) error {
	if strings.TrimSpace(w.Term) == "" {
		return fmt.Errorf("%w: term is required", ErrInvalidWord)
	}
	if strings.TrimSpace(w.Meaning) == "" {
		return fmt.Errorf("%w: meaning is required", ErrInvalidWord)
	}
	return nil
}

func cloneAll(words []models.Word) []models.Word {
	out := make([]models.Word, len(words))
	for i, w := range words {
		out[i] = w.Clone()
	}
	return out
}

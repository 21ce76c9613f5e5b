package store

import (
	"context"
	"sync"

	"github.com/example/vocablab/pkg/models"
)

// Memory keeps words and scores in process memory. It backs the
// "memory" database driver and tests.
type Memory struct {
	mu     sync.Mutex
	words  []models.Word
	saved  bool
	scores []int

	// FailSave makes the next SaveWords call fail with this error
	FailSave error
	// Saves counts successful SaveWords calls
	Saves int
}

// NewMemory returns an empty in-memory persistence
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns a persistence that already holds words
func NewMemoryWith(words []models.Word) *Memory {
	return &Memory{words: cloneAll(words), saved: true}
}

// LoadWords implements Persistence
func (m *Memory) LoadWords(ctx context.Context) ([]models.Word, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.words), m.saved, nil
}

// SaveWords implements Persistence
func (m *Memory) SaveWords(ctx context.Context, words []models.Word) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		err := m.FailSave
		m.FailSave = nil
		return err
	}
	m.words = cloneAll(words)
	m.saved = true
	m.Saves++
	return nil
}

// LoadScores implements ScorePersistence
func (m *Memory) LoadScores(ctx context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.scores...), nil
}

// AppendScore implements ScorePersistence
func (m *Memory) AppendScore(ctx context.Context, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, score)
	return nil
}

// ClearScores implements ScorePersistence
func (m *Memory) ClearScores(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = nil
	return nil
}

// Words returns what was last saved
func (m *Memory) Words() []models.Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.words)
}

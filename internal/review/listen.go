package review

import (
	"math/rand"

	"github.com/example/vocablab/pkg/models"
)

// ListenSession cycles through a shuffled copy of every word for
// listen-and-repeat practice. It never changes scheduling.
type ListenSession struct {
	rnd   *rand.Rand
	words []models.Word
	index int
}

// NewListenSession shuffles the words into a new listening order
func NewListenSession(words []models.Word, rnd *rand.Rand) *ListenSession {
	l := &ListenSession{rnd: rnd}
	l.reset(words)
	return l
}

func (l *ListenSession) reset(words []models.Word) {
	l.words = make([]models.Word, len(words))
	for i, w := range words {
		l.words[i] = w.Clone()
	}
	l.rnd.Shuffle(len(l.words), func(i, j int) {
		l.words[i], l.words[j] = l.words[j], l.words[i]
	})
	l.index = 0
}

// Empty reports whether there is nothing to listen to
func (l *ListenSession) Empty() bool {
	return len(l.words) == 0
}

// Len returns the number of words in the rotation
func (l *ListenSession) Len() int {
	return len(l.words)
}

// Current returns the word being practiced
func (l *ListenSession) Current() (models.Word, bool) {
	if l.Empty() {
		return models.Word{}, false
	}
	return l.words[l.index], true
}

// Next moves to the following word, wrapping around at the end
func (l *ListenSession) Next() (models.Word, bool) {
	if l.Empty() {
		return models.Word{}, false
	}
	l.index = (l.index + 1) % len(l.words)
	return l.words[l.index], true
}

// Reshuffle starts over with a fresh order of the given words
func (l *ListenSession) Reshuffle(words []models.Word) {
	l.reset(words)
}

package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocablab/internal/store"
	"github.com/example/vocablab/pkg/models"
)

func pool(n int) []models.Word {
	words := make([]models.Word, n)
	for i := range words {
		words[i] = models.Word{
			ID:           int64(i + 1),
			Term:         fmt.Sprintf("term%d", i+1),
			Meaning:      fmt.Sprintf("meaning %d", i+1),
			PartOfSpeech: "noun",
			Level:        1,
		}
	}
	return words
}

func TestGenerateRejectsSmallPool(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	_, err := g.Generate(pool(3), 10, ModeMultipleChoice)
	assert.ErrorIs(t, err, ErrNotEnoughWords)
}

func TestGenerateRejectsUnknownMode(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	_, err := g.Generate(pool(5), 10, Mode("essay"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestGenerateMultipleChoiceCappedByPool(t *testing.T) {
	words := pool(5)
	byID := map[int64]models.Word{}
	for _, w := range words {
		byID[w.ID] = w
	}

	for seed := int64(0); seed < 30; seed++ {
		g := NewGenerator(rand.New(rand.NewSource(seed)))
		questions, err := g.Generate(words, 10, ModeMultipleChoice)
		require.NoError(t, err)
		require.Len(t, questions, 5)

		seen := map[int64]bool{}
		for _, q := range questions {
			assert.False(t, seen[q.WordID], "each word is asked once")
			seen[q.WordID] = true

			assert.Equal(t, models.MultipleChoice, q.Type)
			require.Len(t, q.Options, 4)

			distinct := map[string]bool{}
			hits := 0
			for _, o := range q.Options {
				distinct[o] = true
				if o == q.CorrectAnswer {
					hits++
				}
			}
			assert.Len(t, distinct, 4)
			assert.Equal(t, 1, hits)

			w := byID[q.WordID]
			if q.Reverse {
				assert.Equal(t, w.Term, q.CorrectAnswer)
				assert.Contains(t, q.Prompt, w.Meaning)
			} else {
				assert.Equal(t, w.Meaning, q.CorrectAnswer)
				assert.Contains(t, q.Prompt, w.Term)
				assert.Equal(t, "(noun)", q.SubText)
			}
		}
	}
}

func TestGenerateUsesBothDirections(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(7)))
	questions, err := g.Generate(pool(40), 40, ModeMultipleChoice)
	require.NoError(t, err)

	reverse := 0
	for _, q := range questions {
		if q.Reverse {
			reverse++
		}
	}
	assert.Greater(t, reverse, 0)
	assert.Less(t, reverse, 40)
}

func TestGenerateFillInBlank(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(2)))
	questions, err := g.Generate(pool(6), 3, ModeFillInBlank)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	for _, q := range questions {
		assert.Equal(t, models.FillInBlank, q.Type)
		assert.False(t, q.Reverse)
		assert.Empty(t, q.Options)
	}
}

func TestGenerateMixed(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(11)))
	questions, err := g.Generate(pool(40), 40, ModeMixed)
	require.NoError(t, err)

	types := map[models.QuestionType]int{}
	for _, q := range questions {
		types[q.Type]++
		if q.Type == models.FillInBlank {
			assert.False(t, q.Reverse)
			assert.Empty(t, q.Options)
		} else {
			assert.Len(t, q.Options, 4)
		}
	}
	assert.Greater(t, types[models.MultipleChoice], 0)
	assert.Greater(t, types[models.FillInBlank], 0)
}

func TestDistractorsSkipDuplicateMeanings(t *testing.T) {
	words := pool(6)
	words[1].Meaning = words[0].Meaning
	words[2].Meaning = words[0].Meaning

	for seed := int64(0); seed < 20; seed++ {
		g := NewGenerator(rand.New(rand.NewSource(seed)))
		questions, err := g.Generate(words, 6, ModeMultipleChoice)
		require.NoError(t, err)
		for _, q := range questions {
			distinct := map[string]bool{}
			for _, o := range q.Options {
				assert.False(t, distinct[o], "duplicate option %q", o)
				distinct[o] = true
			}
		}
	}
}

func TestCheckAnswer(t *testing.T) {
	fill := models.QuizQuestion{Type: models.FillInBlank, CorrectAnswer: "the term"}
	mc := models.QuizQuestion{Type: models.MultipleChoice, CorrectAnswer: "the term", Options: []string{"the term", "x", "y", "z"}}

	tests := []struct {
		name string
		q    models.QuizQuestion
		in   string
		want bool
	}{
		{"fill exact", fill, "the term", true},
		{"fill case and spaces", fill, " The Term ", true},
		{"fill other", fill, "the terms", false},
		{"fill empty", fill, "", false},
		{"choice exact", mc, "the term", true},
		{"choice case differs", mc, "The Term", false},
		{"choice padded", mc, " the term", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckAnswer(tt.q, tt.in))
		})
	}
}

func TestScore(t *testing.T) {
	answers := func(flags ...bool) []models.QuizAnswer {
		out := make([]models.QuizAnswer, len(flags))
		for i, f := range flags {
			out[i].Correct = f
		}
		return out
	}

	assert.Equal(t, 75, Score(answers(true, true, false, true)))
	assert.Equal(t, 0, Score(nil))
	assert.Equal(t, 67, Score(answers(true, true, false)))
	assert.Equal(t, 33, Score(answers(true, false, false)))
	assert.Equal(t, 100, Score(answers(true)))
}

func TestSessionFinishRecordsOnce(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(rand.New(rand.NewSource(4)))
	questions, err := g.Generate(pool(4), 4, ModeFillInBlank)
	require.NoError(t, err)

	scores, err := store.OpenScoreLog(ctx, store.NewMemory())
	require.NoError(t, err)

	s := NewSession(questions, ModeFillInBlank)
	for i := 0; i < 4; i++ {
		q, err := s.Current()
		require.NoError(t, err)
		answer := q.CorrectAnswer
		if i == 2 {
			answer = "wrong"
		}
		_, err = s.Submit(answer)
		require.NoError(t, err)
	}
	assert.True(t, s.Done())
	_, err = s.Submit("late")
	assert.ErrorIs(t, err, ErrQuizFinished)

	res, err := s.Finish(ctx, scores)
	require.NoError(t, err)
	assert.Equal(t, 75, res.Score)
	assert.Equal(t, 3, res.Correct)
	assert.True(t, res.Recorded)

	_, err = s.Finish(ctx, scores)
	require.NoError(t, err)
	assert.Equal(t, []int{75}, scores.Scores())
}

func TestSessionFinishWithoutAnswers(t *testing.T) {
	ctx := context.Background()
	scores, err := store.OpenScoreLog(ctx, store.NewMemory())
	require.NoError(t, err)

	s := NewSession(make([]models.QuizQuestion, 3), ModeMixed)
	res, err := s.Finish(ctx, scores)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.Recorded)
	assert.Empty(t, scores.Scores())
	assert.True(t, s.Done())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("MC")
	require.NoError(t, err)
	assert.Equal(t, ModeMultipleChoice, m)

	m, err = ParseMode("fill")
	require.NoError(t, err)
	assert.Equal(t, ModeFillInBlank, m)

	_, err = ParseMode("oral")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocablab/internal/audio"
	"github.com/example/vocablab/internal/backup"
	"github.com/example/vocablab/internal/dictionary"
	"github.com/example/vocablab/internal/quiz"
	"github.com/example/vocablab/internal/review"
	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/internal/store"
	"github.com/example/vocablab/pkg/models"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeDictionary struct {
	entry dictionary.Entry
	err   error
}

func (f fakeDictionary) Lookup(context.Context, string) (dictionary.Entry, error) {
	return f.entry, f.err
}

type fakeExamples struct {
	example string
	err     error
	calls   int
}

func (f *fakeExamples) GenerateExample(context.Context, string, string) (string, error) {
	f.calls++
	return f.example, f.err
}

type fakePronouncer struct{}

func (fakePronouncer) Fetch(_ context.Context, term, _ string) (audio.Clip, error) {
	return audio.Clip{Name: term + ".mp3", Data: []byte(term)}, nil
}

func newTestService(t *testing.T, d Deps) *Service {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	words, err := store.Open(ctx, mem, store.WithClock(func() time.Time { return t0 }))
	require.NoError(t, err)
	scores, err := store.OpenScoreLog(ctx, mem)
	require.NoError(t, err)

	d.Words = words
	d.Scores = scores
	d.Rand = rand.New(rand.NewSource(1))
	d.Clock = func() time.Time { return t0 }
	return New(d)
}

func addWord(t *testing.T, s *Service, term, meaning string) models.Word {
	t.Helper()
	w, err := s.AddWord(context.Background(), models.Word{Term: term, Meaning: meaning})
	require.NoError(t, err)
	return w
}

func TestDashboard(t *testing.T) {
	s := newTestService(t, Deps{})

	assert.Equal(t, models.Statistics{TotalWords: 3, LearnedWords: 1, DueNow: 2}, s.Dashboard())

	require.NoError(t, s.scores.Append(context.Background(), 50))
	require.NoError(t, s.scores.Append(context.Background(), 100))
	stats := s.Dashboard()
	assert.Equal(t, 75, stats.AverageScore)
	assert.Equal(t, 2, stats.QuizzesTaken)
}

func TestAddEditDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Deps{})

	w := addWord(t, s, "  zeal ", "great energy")
	assert.Equal(t, "zeal", w.Term)
	assert.Equal(t, 1, w.Level)
	assert.Equal(t, t0, w.NextReviewDate)
	assert.Equal(t, "zeal", s.Words()[0].Term, "newest first")

	meaning := "great enthusiasm"
	edited, err := s.EditWord(ctx, w.ID, models.WordPatch{Meaning: &meaning, Tags: []string{"b2"}, SetTags: true})
	require.NoError(t, err)
	assert.Equal(t, "great enthusiasm", edited.Meaning)
	assert.Equal(t, []string{"b2"}, edited.Tags)
	assert.Len(t, s.Search("b2"), 1)

	assert.ErrorIs(t, s.DeleteWord(ctx, w.ID, false), ErrConfirmationRequired)
	_, err = s.Word(w.ID)
	require.NoError(t, err, "unconfirmed delete keeps the word")

	require.NoError(t, s.DeleteWord(ctx, w.ID, true))
	_, err = s.Word(w.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteWord(ctx, w.ID, true), store.ErrNotFound)
}

func TestReviewThroughService(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Deps{})

	sess := s.StartReview()
	require.Equal(t, review.StatusActive, sess.Status())
	require.Equal(t, 2, sess.Len())

	for !sess.Complete() {
		out, err := s.Rate(ctx, sess, spaced_repetition.RatingGood)
		require.NoError(t, err)
		assert.Equal(t, 2, out.Word.Level)
		assert.Equal(t, t0.AddDate(0, 0, 3), out.Word.NextReviewDate)
	}
	assert.Equal(t, review.StatusAllReviewed, sess.Status())
	assert.Equal(t, 0, s.DueCount(t0))
}

func TestQuizLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Deps{QuizQuestions: 3, QuizMode: quiz.ModeMultipleChoice})

	_, err := s.StartQuiz(0, "")
	require.ErrorIs(t, err, quiz.ErrNotEnoughWords)

	addWord(t, s, "zeal", "great energy")
	sess, err := s.StartQuiz(0, "")
	require.NoError(t, err)
	assert.Equal(t, 3, sess.Total())
	assert.Equal(t, quiz.ModeMultipleChoice, sess.Mode)

	q, err := sess.Current()
	require.NoError(t, err)
	_, err = sess.Submit(q.CorrectAnswer)
	require.NoError(t, err)

	_, err = s.FinishQuiz(ctx, sess, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	res, err := s.FinishQuiz(ctx, sess, true)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Recorded)
	assert.Equal(t, []int{100}, s.scores.Scores())
}

func TestAutofill(t *testing.T) {
	ctx := context.Background()
	draft := models.Word{Term: "curious", Meaning: "my own words", Tags: []string{"x"}}

	t.Run("merges non-empty fields", func(t *testing.T) {
		examples := &fakeExamples{example: "unused"}
		s := newTestService(t, Deps{
			Dictionary: fakeDictionary{entry: dictionary.Entry{PartOfSpeech: "adjective", Pronunciation: "/ˈkjʊə.ɹi.əs/", Example: "a curious cat"}},
			Examples:   examples,
		})
		filled, err := s.Autofill(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, "adjective", filled.PartOfSpeech)
		assert.Equal(t, "my own words", filled.Meaning)
		assert.Equal(t, "a curious cat", filled.Example)
		assert.Equal(t, []string{"x"}, filled.Tags)
		assert.Equal(t, 0, examples.calls)
	})

	t.Run("writes a missing example", func(t *testing.T) {
		examples := &fakeExamples{example: "Cats are curious."}
		s := newTestService(t, Deps{Dictionary: fakeDictionary{entry: dictionary.Entry{Meaning: "eager to know"}}, Examples: examples})
		filled, err := s.Autofill(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, "eager to know", filled.Meaning)
		assert.Equal(t, "Cats are curious.", filled.Example)
	})

	t.Run("example failure is not fatal", func(t *testing.T) {
		examples := &fakeExamples{err: errors.New("quota")}
		s := newTestService(t, Deps{Dictionary: fakeDictionary{entry: dictionary.Entry{Meaning: "eager"}}, Examples: examples})
		filled, err := s.Autofill(ctx, draft)
		require.NoError(t, err)
		assert.Empty(t, filled.Example)
	})

	t.Run("lookup failure keeps the draft", func(t *testing.T) {
		s := newTestService(t, Deps{Dictionary: fakeDictionary{err: dictionary.ErrNotFound}})
		filled, err := s.Autofill(ctx, draft)
		assert.ErrorIs(t, err, dictionary.ErrNotFound)
		assert.Equal(t, draft, filled)
	})

	t.Run("no dictionary", func(t *testing.T) {
		s := newTestService(t, Deps{})
		_, err := s.Autofill(ctx, draft)
		assert.ErrorIs(t, err, ErrLookupUnavailable)
	})
}

func TestPronounce(t *testing.T) {
	w := models.Word{Term: "abandon"}

	_, err := newTestService(t, Deps{}).Pronounce(context.Background(), w)
	assert.ErrorIs(t, err, ErrAudioUnavailable)

	clip, err := newTestService(t, Deps{Audio: fakePronouncer{}}).Pronounce(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, "abandon.mp3", clip.Name)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Deps{})
	addWord(t, s, "zeal", "great energy")

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	data := buf.Bytes()
	before := s.Words()

	other := newTestService(t, Deps{})
	n, err := other.Import(ctx, data, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, 4, n)
	assert.Len(t, other.Words(), 3, "unconfirmed import changes nothing")

	n, err = other.Import(ctx, data, true)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, before, other.Words())

	_, err = other.Import(ctx, []byte(`{"notWords": []}`), true)
	assert.ErrorIs(t, err, backup.ErrMissingWords)
	assert.Len(t, other.Words(), 4)

	assert.Equal(t, "vocablab_backup_2024-05-01.json", s.ExportFileName())
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	s := newTestService(t, Deps{})
	doc := `{"words": [{"id": 1, "word": "a", "meaning": "x"}, {"id": 1, "word": "b", "meaning": "y"}]}`

	_, err := s.Import(context.Background(), []byte(doc), true)
	assert.ErrorIs(t, err, store.ErrDuplicateID)
	assert.Len(t, s.Words(), 3)
}

func TestImportClampsLevelsToIntervalTable(t *testing.T) {
	s := newTestService(t, Deps{Scheduler: spaced_repetition.NewScheduler([]int{1, 3, 7})})
	doc := `{"words": [{"id": 1, "word": "far", "meaning": "x", "level": 42}, {"id": 2, "word": "near", "meaning": "y", "level": 2}]}`

	n, err := s.Import(context.Background(), []byte(doc), true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	far, err := s.Word(1)
	require.NoError(t, err)
	assert.Equal(t, 3, far.Level)
	near, err := s.Word(2)
	require.NoError(t, err)
	assert.Equal(t, 2, near.Level)
}

func TestImportSheetAppends(t *testing.T) {
	s := newTestService(t, Deps{})
	csv := "word,pos,meaning\nzeal,noun,great energy\nempty,noun,\n"

	res, added, err := s.ImportSheet(context.Background(), strings.NewReader(csv), "words.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, s.Words(), 4)

	var buf bytes.Buffer
	require.NoError(t, s.ExportSheet(&buf))
	assert.NotZero(t, buf.Len())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Deps{})
	addWord(t, s, "zeal", "great energy")
	require.NoError(t, s.scores.Append(ctx, 80))

	assert.ErrorIs(t, s.Reset(ctx, false), ErrConfirmationRequired)
	assert.Len(t, s.Words(), 4)

	require.NoError(t, s.Reset(ctx, true))
	assert.Len(t, s.Words(), 3)
	assert.Equal(t, 0, s.scores.Len())
}

func TestRemindersToggleWithoutSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Deps{})

	on, err := s.RemindersEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, s.SetRemindersEnabled(ctx, false))
	on, err = s.RemindersEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}

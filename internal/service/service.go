package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocablab/internal/audio"
	"github.com/example/vocablab/internal/backup"
	"github.com/example/vocablab/internal/dictionary"
	"github.com/example/vocablab/internal/excel"
	"github.com/example/vocablab/internal/quiz"
	"github.com/example/vocablab/internal/review"
	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/internal/store"
	"github.com/example/vocablab/pkg/models"
)

var (
	// ErrConfirmationRequired is returned by destructive operations called without confirmation
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrLookupUnavailable is returned when no dictionary is configured
	ErrLookupUnavailable = errors.New("dictionary lookup is not configured")
	// ErrAudioUnavailable is returned when no pronouncer is configured
	ErrAudioUnavailable = errors.New("audio is not configured")
)

// Dictionary looks up word details
type Dictionary interface {
	Lookup(ctx context.Context, term string) (dictionary.Entry, error)
}

// ExampleWriter writes an example sentence for a word
type ExampleWriter interface {
	GenerateExample(ctx context.Context, term, meaning string) (string, error)
}

// Pronouncer fetches a recording of a word
type Pronouncer interface {
	Fetch(ctx context.Context, term, audioRef string) (audio.Clip, error)
}

// Settings stores named flags
type Settings interface {
	GetBool(ctx context.Context, name string, def bool) (bool, error)
	SetBool(ctx context.Context, name string, value bool) error
}

// SettingRemindersEnabled is the settings key of the reminder switch
const SettingRemindersEnabled = "reminders_enabled"

// Deps lists what a Service is built from. Dictionary, Examples, Audio
// and Settings are optional.
type Deps struct {
	Words      *store.WordStore
	Scores     *store.ScoreLog
	Scheduler  *spaced_repetition.Scheduler
	Dictionary Dictionary
	Examples   ExampleWriter
	Audio      Pronouncer
	Settings   Settings
	Log        *zap.Logger
	Rand       *rand.Rand
	Clock      func() time.Time

	QuizQuestions int
	QuizMode      quiz.Mode
}

// Service is the application API shared by the bot and the command line
type Service struct {
	words      *store.WordStore
	scores     *store.ScoreLog
	scheduler  *spaced_repetition.Scheduler
	generator  *quiz.Generator
	rnd        *rand.Rand
	dictionary Dictionary
	examples   ExampleWriter
	audio      Pronouncer
	settings   Settings
	log        *zap.Logger
	now        func() time.Time

	quizQuestions int
	quizMode      quiz.Mode

	// reminders is used when there is no settings store
	mu        sync.Mutex
	reminders bool
}

// New creates a service
func New(d Deps) *Service {
	s := &Service{
		words:         d.Words,
		scores:        d.Scores,
		scheduler:     d.Scheduler,
		rnd:           d.Rand,
		dictionary:    d.Dictionary,
		examples:      d.Examples,
		audio:         d.Audio,
		settings:      d.Settings,
		log:           d.Log,
		now:           d.Clock,
		quizQuestions: d.QuizQuestions,
		quizMode:      d.QuizMode,
		reminders:     true,
	}
	if s.scheduler == nil {
		s.scheduler = spaced_repetition.NewScheduler(nil)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.quizQuestions <= 0 {
		s.quizQuestions = 10
	}
	if s.quizMode == "" {
		s.quizMode = quiz.ModeMixed
	}
	s.generator = quiz.NewGenerator(s.rnd)
	return s
}

// Scheduler returns the interval table in use
func (s *Service) Scheduler() *spaced_repetition.Scheduler {
	return s.scheduler
}

// AddWord stores a new word and returns it with its assigned id and schedule
func (s *Service) AddWord(ctx context.Context, w models.Word) (models.Word, error) {
	id, err := s.words.Add(ctx, w)
	if err != nil {
		return models.Word{}, err
	}
	added, _ := s.words.FindByID(id)
	return added, nil
}

// Word returns a single word
func (s *Service) Word(id int64) (models.Word, error) {
	w, ok := s.words.FindByID(id)
	if !ok {
		return models.Word{}, fmt.Errorf("%w: %d", store.ErrNotFound, id)
	}
	return w, nil
}

// EditWord changes the descriptive fields of a word
func (s *Service) EditWord(ctx context.Context, id int64, patch models.WordPatch) (models.Word, error) {
	if err := s.words.Update(ctx, id, patch); err != nil {
		return models.Word{}, err
	}
	return s.Word(id)
}

// DeleteWord removes a word
func (s *Service) DeleteWord(ctx context.Context, id int64, confirmed bool) error {
	if _, err := s.Word(id); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.words.Remove(ctx, id)
}

// Words returns every word, newest first
func (s *Service) Words() []models.Word {
	return s.words.Recent()
}

// Search finds words by term, meaning or tag
func (s *Service) Search(query string) []models.Word {
	return s.words.Search(query)
}

// Dashboard summarizes the collection and the quiz history
func (s *Service) Dashboard() models.Statistics {
	now := s.now()
	stats := models.Statistics{
		AverageScore: s.scores.Average(),
		QuizzesTaken: s.scores.Len(),
	}
	for _, w := range s.words.List() {
		stats.TotalWords++
		if s.scheduler.IsLearned(w) {
			stats.LearnedWords++
		}
		if s.scheduler.IsDue(w, now) {
			stats.DueNow++
		}
	}
	return stats
}

// DueCount returns how many words are due at now
func (s *Service) DueCount(now time.Time) int {
	return s.words.DueCount(now)
}

// StartReview builds a flashcard session over the words due now
func (s *Service) StartReview() *review.Session {
	return review.Build(s.words.List(), s.now(), s.rnd, s.words, s.scheduler)
}

// Rate applies a rating to the current card of a review session
func (s *Service) Rate(ctx context.Context, sess *review.Session, rating spaced_repetition.Rating) (review.Outcome, error) {
	out, err := sess.Respond(ctx, rating, s.now())
	if err != nil {
		return out, err
	}
	if out.Skipped {
		s.log.Info("Skipped deleted word in review", zap.Int64("word_id", out.Word.ID))
	}
	return out, nil
}

// StartListen starts a listen-and-repeat pass over all words
func (s *Service) StartListen() *review.ListenSession {
	return review.NewListenSession(s.words.List(), s.rnd)
}

// ReshuffleListen reloads the words of a listen session and reshuffles them
func (s *Service) ReshuffleListen(l *review.ListenSession) {
	l.Reshuffle(s.words.List())
}

// StartQuiz generates a quiz. Zero count and empty mode select the defaults.
func (s *Service) StartQuiz(count int, mode quiz.Mode) (*quiz.Session, error) {
	if count <= 0 {
		count = s.quizQuestions
	}
	if mode == "" {
		mode = s.quizMode
	}
	questions, err := s.generator.Generate(s.words.List(), count, mode)
	if err != nil {
		return nil, err
	}
	return quiz.NewSession(questions, mode), nil
}

// FinishQuiz ends a quiz and records its score. Ending before the last
// question needs confirmation.
func (s *Service) FinishQuiz(ctx context.Context, sess *quiz.Session, confirmed bool) (quiz.Result, error) {
	if !sess.Done() && !confirmed {
		return quiz.Result{}, ErrConfirmationRequired
	}
	res, err := sess.Finish(ctx, s.scores)
	if err != nil {
		return res, err
	}
	s.log.Info("Quiz finished",
		zap.Int("score", res.Score), zap.Int("answered", res.Answered), zap.Int("total", res.Total))
	return res, nil
}

// Autofill completes a draft from the dictionary. Non-empty dictionary
// fields replace the draft's; a missing example is written by the example
// writer when one is configured. On lookup failure the draft comes back
// unchanged together with the error.
func (s *Service) Autofill(ctx context.Context, draft models.Word) (models.Word, error) {
	if s.dictionary == nil {
		return draft, ErrLookupUnavailable
	}

	entry, err := s.dictionary.Lookup(ctx, draft.Term)
	if err != nil {
		s.log.Warn("Dictionary lookup failed", zap.String("term", draft.Term), zap.Error(err))
		return draft, err
	}

	filled := draft.Clone()
	merge(&filled.PartOfSpeech, entry.PartOfSpeech)
	merge(&filled.Meaning, entry.Meaning)
	merge(&filled.Pronunciation, entry.Pronunciation)
	merge(&filled.Example, entry.Example)
	merge(&filled.AudioRef, entry.AudioRef)

	if filled.Example == "" && s.examples != nil {
		example, err := s.examples.GenerateExample(ctx, filled.Term, filled.Meaning)
		if err != nil {
			s.log.Warn("Example generation failed", zap.String("term", draft.Term), zap.Error(err))
		} else {
			filled.Example = example
		}
	}
	return filled, nil
}

func merge(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Pronounce fetches a recording of the word
func (s *Service) Pronounce(ctx context.Context, w models.Word) (audio.Clip, error) {
	if s.audio == nil {
		return audio.Clip{}, ErrAudioUnavailable
	}
	return s.audio.Fetch(ctx, w.Term, w.AudioRef)
}

// ExportFileName is the suggested name for an export taken now
func (s *Service) ExportFileName() string {
	return backup.FileName(s.now())
}

// Export writes a JSON backup of all words and scores
func (s *Service) Export(w io.Writer) error {
	return backup.Export(w, s.words.List(), s.scores.Scores(), s.now())
}

// PreviewImport validates a backup and returns the words it would load
func (s *Service) PreviewImport(data []byte) ([]models.Word, error) {
	doc, err := backup.Decode(bytes.NewReader(data), s.now(), s.scheduler.MaxLevel())
	if err != nil {
		return nil, err
	}
	return doc.Words, nil
}

// Import replaces every word with the ones in a backup. Scores in the
// document are not restored. On any error the collection is untouched.
func (s *Service) Import(ctx context.Context, data []byte, confirmed bool) (int, error) {
	words, err := s.PreviewImport(data)
	if err != nil {
		return 0, err
	}
	if !confirmed {
		return len(words), ErrConfirmationRequired
	}
	if err := s.words.Replace(ctx, words); err != nil {
		return 0, err
	}
	return len(words), nil
}

// ImportSheet appends the words of an xlsx or csv file. Rows that cannot
// be stored are reported in the result errors.
func (s *Service) ImportSheet(ctx context.Context, r io.Reader, name string) (*excel.ImportResult, int, error) {
	res, err := excel.Import(r, name, excel.DefaultImportConfig())
	if err != nil {
		return nil, 0, err
	}

	added := 0
	for _, w := range res.Words {
		if _, err := s.words.Add(ctx, w); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", w.Term, err))
			continue
		}
		added++
	}
	s.log.Info("Sheet imported", zap.String("file", name), zap.Int("added", added), zap.Int("skipped", res.Skipped))
	return res, added, nil
}

// ExportSheet writes all words as an xlsx workbook
func (s *Service) ExportSheet(w io.Writer) error {
	return excel.Export(w, s.words.List())
}

// Reset restores the sample words and clears the quiz history
func (s *Service) Reset(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.words.Replace(ctx, store.SampleWords(s.now())); err != nil {
		return err
	}
	if err := s.scores.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("All data reset to the sample set")
	return nil
}

// RemindersEnabled reports whether due-word reminders are switched on
func (s *Service) RemindersEnabled(ctx context.Context) (bool, error) {
	if s.settings != nil {
		return s.settings.GetBool(ctx, SettingRemindersEnabled, true)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders, nil
}

// SetRemindersEnabled switches due-word reminders on or off
func (s *Service) SetRemindersEnabled(ctx context.Context, enabled bool) error {
	if s.settings != nil {
		return s.settings.SetBool(ctx, SettingRemindersEnabled, enabled)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = enabled
	return nil
}

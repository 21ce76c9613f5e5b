package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/example/vocablab/pkg/models"
)

const (
	// MinWords is the smallest pool a quiz can be built from
	MinWords = 4
	// distractorCount is the number of wrong options per multiple-choice question
	distractorCount = 3
)

// ErrNotEnoughWords is returned when the pool is smaller than MinWords
var ErrNotEnoughWords = errors.New("at least 4 words are needed for a quiz")

// ErrUnknownMode is returned for unsupported quiz modes
var ErrUnknownMode = errors.New("unknown quiz mode")

// Mode selects which question types a quiz contains
type Mode string

const (
	// ModeMultipleChoice asks only multiple-choice questions
	ModeMultipleChoice Mode = "multiple-choice"
	// ModeFillInBlank asks only typed-answer questions
	ModeFillInBlank Mode = "fill-in-blank"
	// ModeMixed picks the type per question
	ModeMixed Mode = "mixed"
)

// ParseMode converts a mode name, accepting a few short aliases
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multiple-choice", "multiple_choice", "mc", "choice":
		return ModeMultipleChoice, nil
	case "fill-in-blank", "fill_in_blank", "fill", "text":
		return ModeFillInBlank, nil
	case "mixed", "mix":
		return ModeMixed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Generator builds quizzes from a word pool
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator creates a generator drawing from rnd
func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Generate builds up to count questions. When the pool is smaller than
// count, fewer questions are produced.
func (g *Generator) Generate(words []models.Word, count int, mode Mode) ([]models.QuizQuestion, error) {
	if len(words) < MinWords {
		return nil, ErrNotEnoughWords
	}
	switch mode {
	case ModeMultipleChoice, ModeFillInBlank, ModeMixed:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	pool := make([]models.Word, len(words))
	copy(pool, words)
	g.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	n := min(count, len(pool))
	if n < 0 {
		n = 0
	}
	questions := make([]models.QuizQuestion, 0, n)
	for _, word := range pool[:n] {
		questions = append(questions, g.question(word, words, mode))
	}
	return questions, nil
}

func (g *Generator) question(word models.Word, all []models.Word, mode Mode) models.QuizQuestion {
	qtype := models.MultipleChoice
	switch mode {
	case ModeFillInBlank:
		qtype = models.FillInBlank
	case ModeMixed:
		if g.rnd.Float64() < 0.5 {
			qtype = models.FillInBlank
		}
	}

	if qtype == models.FillInBlank {
		return forward(word, models.FillInBlank)
	}

	reverse := g.rnd.Float64() < 0.5
	q := forward(word, models.MultipleChoice)
	if reverse {
		q.Reverse = true
		q.Prompt = fmt.Sprintf("Which word means %q?", word.Meaning)
		q.SubText = "Find the correct word."
		q.CorrectAnswer = word.Term
	}

	q.Options = append([]string{q.CorrectAnswer}, g.distractors(word, all, reverse)...)
	g.rnd.Shuffle(len(q.Options), func(i, j int) {
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
	})
	return q
}

func forward(word models.Word, qtype models.QuestionType) models.QuizQuestion {
	q := models.QuizQuestion{
		WordID:        word.ID,
		Type:          qtype,
		Prompt:        fmt.Sprintf("What is the meaning of %q?", word.Term),
		CorrectAnswer: word.Meaning,
	}
	if word.PartOfSpeech != "" {
		q.SubText = "(" + word.PartOfSpeech + ")"
	}
	return q
}

// distractors picks wrong options uniformly from the other words,
// skipping texts already offered so options stay distinct
func (g *Generator) distractors(word models.Word, all []models.Word, reverse bool) []string {
	answer := func(w models.Word) string {
		if reverse {
			return w.Term
		}
		return w.Meaning
	}

	candidates := make([]models.Word, 0, len(all))
	for _, w := range all {
		if w.ID != word.ID {
			candidates = append(candidates, w)
		}
	}
	g.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	used := map[string]bool{answer(word): true}
	options := make([]string, 0, distractorCount)
	for _, w := range candidates {
		if len(options) == distractorCount {
			break
		}
		text := answer(w)
		if used[text] {
			continue
		}
		used[text] = true
		options = append(options, text)
	}
	return options
}

// CheckAnswer reports whether the submitted text answers the question.
// Multiple-choice answers must match exactly; typed answers are compared
// trimmed and without regard to case.
func CheckAnswer(q models.QuizQuestion, submitted string) bool {
	if q.Type == models.FillInBlank {
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.CorrectAnswer))
	}
	return submitted == q.CorrectAnswer
}

// Score returns the rounded percentage of correct answers, 0 for none
func Score(answers []models.QuizAnswer) int {
	total := len(answers)
	if total == 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	return (200*correct + total) / (2 * total)
}

package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/vocablab/pkg/models"
)

// ErrQuizFinished is returned when answering after the last question
var ErrQuizFinished = errors.New("quiz is finished")

// ScoreRecorder stores the score of a finished quiz
type ScoreRecorder interface {
	Append(ctx context.Context, score int) error
}

// Session walks through one quiz attempt
type Session struct {
	Mode      Mode
	questions []models.QuizQuestion
	answers   []models.QuizAnswer
	index     int
	finished  bool
	result    Result
}

// Result summarizes a finished quiz
type Result struct {
	Score    int
	Correct  int
	Answered int
	Total    int
	Answers  []models.QuizAnswer
	Recorded bool // the score went to the log
}

// NewSession starts a quiz over generated questions
func NewSession(questions []models.QuizQuestion, mode Mode) *Session {
	return &Session{Mode: mode, questions: questions}
}

// Total returns the number of questions
func (s *Session) Total() int {
	return len(s.questions)
}

// Index returns the 0-based index of the current question
func (s *Session) Index() int {
	return s.index
}

// Done reports whether every question was answered or the quiz was finished
func (s *Session) Done() bool {
	return s.finished || s.index >= len(s.questions)
}

// Current returns the question waiting for an answer
func (s *Session) Current() (models.QuizQuestion, error) {
	if s.Done() {
		return models.QuizQuestion{}, ErrQuizFinished
	}
	return s.questions[s.index], nil
}

// Submit checks an answer to the current question and moves on
func (s *Session) Submit(answer string) (models.QuizAnswer, error) {
	q, err := s.Current()
	if err != nil {
		return models.QuizAnswer{}, err
	}

	a := models.QuizAnswer{
		Prompt:        q.Prompt,
		Submitted:     answer,
		CorrectAnswer: q.CorrectAnswer,
		Correct:       CheckAnswer(q, answer),
	}
	s.answers = append(s.answers, a)
	s.index++
	return a, nil
}

// Answers returns the answers given so far
func (s *Session) Answers() []models.QuizAnswer {
	return append([]models.QuizAnswer(nil), s.answers...)
}

// Finish ends the quiz and records the score when at least one question
// was answered. Calling it again returns the same result without
// recording twice.
func (s *Session) Finish(ctx context.Context, scores ScoreRecorder) (Result, error) {
	if s.finished {
		return s.result, nil
	}

	res := Result{
		Score:    Score(s.answers),
		Answered: len(s.answers),
		Total:    len(s.questions),
		Answers:  s.Answers(),
	}
	for _, a := range s.answers {
		if a.Correct {
			res.Correct++
		}
	}

	if res.Answered > 0 && scores != nil {
		if err := scores.Append(ctx, res.Score); err != nil {
			return res, fmt.Errorf("failed to record quiz score: %w", err)
		}
		res.Recorded = true
	}

	s.finished = true
	s.result = res
	return res, nil
}

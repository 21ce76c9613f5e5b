package models

// QuestionType is the kind of a quiz question
type QuestionType string

const (
	// MultipleChoice questions offer the correct answer among three distractors
	MultipleChoice QuestionType = "multiple-choice"
	// FillInBlank questions expect a typed answer
	FillInBlank QuestionType = "fill-in-blank"
)

// QuizQuestion is a single generated question. It is never persisted.
type QuizQuestion struct {
	WordID        int64        `json:"wordId"`
	Type          QuestionType `json:"type"`
	Reverse       bool         `json:"reverse"` // prompt is the meaning, answer is the term
	Prompt        string       `json:"prompt"`
	SubText       string       `json:"subText"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// QuizAnswer records what the user answered to a question
type QuizAnswer struct {
	Prompt        string `json:"prompt"`
	Submitted     string `json:"submitted"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
}

package models

// Statistics is the dashboard summary
type Statistics struct {
	TotalWords   int `json:"total_words"`
	LearnedWords int `json:"learned_words"`
	DueNow       int `json:"due_now"`
	AverageScore int `json:"average_score"` // percent
	QuizzesTaken int `json:"quizzes_taken"`
}

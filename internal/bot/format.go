package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/vocablab/internal/backup"
	"github.com/example/vocablab/internal/dictionary"
	"github.com/example/vocablab/internal/quiz"
	"github.com/example/vocablab/internal/service"
	"github.com/example/vocablab/internal/store"
	"github.com/example/vocablab/pkg/models"
)

// pluralize returns "1 word" or "3 words"
func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func formatWordLine(w models.Word) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s", w.ID, w.Term)
	if w.PartOfSpeech != "" {
		fmt.Fprintf(&sb, " (%s)", w.PartOfSpeech)
	}
	fmt.Fprintf(&sb, " - %s · Lv %d", w.Meaning, w.Level)
	if w.IsLearned() {
		sb.WriteString(" ✅")
	}
	return sb.String()
}

func formatWordList(title string, words []models.Word, limit int) string {
	if len(words) == 0 {
		return title + "\n\nNo words found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d)\n\n", title, len(words))
	for i, w := range words {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&sb, "\n...and %d more", len(words)-limit)
			break
		}
		sb.WriteString(formatWordLine(w))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatDue describes when a word comes up next
func formatDue(next, now time.Time) string {
	if !next.After(now) {
		return "due now"
	}
	days := int(next.Sub(now).Hours()/24 + 0.5)
	if days < 1 {
		return "due later today"
	}
	return "in " + pluralize(days, "day")
}

func formatWordCard(w models.Word, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📘 %s", w.Term)
	if w.PartOfSpeech != "" {
		fmt.Fprintf(&sb, " (%s)", w.PartOfSpeech)
	}
	if w.Pronunciation != "" {
		fmt.Fprintf(&sb, "\n🔉 %s", w.Pronunciation)
	}
	fmt.Fprintf(&sb, "\n\n%s", w.Meaning)
	if w.Example != "" {
		fmt.Fprintf(&sb, "\n💬 %s", w.Example)
	}
	if len(w.Tags) > 0 {
		fmt.Fprintf(&sb, "\n🏷 %s", strings.Join(w.Tags, ", "))
	}
	fmt.Fprintf(&sb, "\n\nLevel %d, next review %s\nID: %d", w.Level, formatDue(w.NextReviewDate, now), w.ID)
	return sb.String()
}

func formatCardFront(w models.Word, position, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🃏 Card %d/%d\n\n%s", position+1, total, w.Term)
	if w.PartOfSpeech != "" {
		fmt.Fprintf(&sb, " (%s)", w.PartOfSpeech)
	}
	if w.Pronunciation != "" {
		fmt.Fprintf(&sb, "\n%s", w.Pronunciation)
	}
	return sb.String()
}

func formatCardBack(w models.Word, position, total int) string {
	text := formatCardFront(w, position, total) + "\n\n" + w.Meaning
	if w.Example != "" {
		text += "\n💬 " + w.Example
	}
	return text
}

func formatStats(s models.Statistics) string {
	return fmt.Sprintf("📊 Your progress\n\n"+
		"Total words: %d\n"+
		"Learned: %d\n"+
		"Due now: %d\n"+
		"Average quiz score: %d%%\n"+
		"Quizzes taken: %d",
		s.TotalWords, s.LearnedWords, s.DueNow, s.AverageScore, s.QuizzesTaken)
}

func formatQuestion(q models.QuizQuestion, index, total int) string {
	text := fmt.Sprintf("❓ Question %d/%d\n\n%s", index+1, total, q.Prompt)
	if q.SubText != "" {
		text += "\n" + q.SubText
	}
	if q.Type == models.FillInBlank {
		text += "\n\n✍️ Type your answer."
	}
	return text
}

func formatAnswer(a models.QuizAnswer) string {
	if a.Correct {
		return "✅ Correct!"
	}
	return fmt.Sprintf("❌ Wrong. The answer is: %s", a.CorrectAnswer)
}

func formatQuizResult(res quiz.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 Quiz finished\n\nScore: %d%% (%d/%d correct)", res.Score, res.Correct, res.Answered)
	if res.Answered < res.Total {
		fmt.Fprintf(&sb, "\nAnswered %d of %d questions", res.Answered, res.Total)
	}
	if !res.Recorded {
		sb.WriteString("\nNo answers, score not recorded")
	}
	if len(res.Answers) > 0 {
		sb.WriteString("\n")
	}
	for i, a := range res.Answers {
		mark := "✅"
		if !a.Correct {
			mark = "❌"
		}
		fmt.Fprintf(&sb, "\n%d. %s %s\n   Your answer: %s", i+1, mark, a.Prompt, a.Submitted)
		if !a.Correct {
			fmt.Fprintf(&sb, "\n   Correct: %s", a.CorrectAnswer)
		}
	}
	return sb.String()
}

// parseWordArgs reads "term | meaning | part of speech | example | tags".
// Only the term is required; a missing meaning triggers a dictionary lookup.
func parseWordArgs(args string) (models.Word, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return models.Word{}, errors.New("usage: /add word | meaning | part of speech | example | tags")
	}

	w := models.Word{Term: parts[0], Tags: []string{}}
	field := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	w.Meaning = field(1)
	w.PartOfSpeech = field(2)
	w.Example = field(3)
	w.Tags = models.ParseTags(field(4))
	return w, nil
}

// parseEditArgs reads "<id> field=value | field=value"
func parseEditArgs(args string) (int64, models.WordPatch, error) {
	var patch models.WordPatch
	usage := errors.New("usage: /edit <id> meaning=... | pos=... | example=... | tags=a, b")

	idText, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return 0, patch, usage
	}

	set := 0
	for _, part := range strings.Split(rest, "|") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		v := value
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "word", "term":
			patch.Term = &v
		case "meaning":
			patch.Meaning = &v
		case "pos", "part_of_speech":
			patch.PartOfSpeech = &v
		case "example":
			patch.Example = &v
		case "pronunciation":
			patch.Pronunciation = &v
		case "audio":
			patch.AudioRef = &v
		case "tags":
			patch.Tags = models.ParseTags(value)
			patch.SetTags = true
		default:
			return 0, patch, fmt.Errorf("unknown field %q", strings.TrimSpace(key))
		}
		set++
	}
	if set == 0 {
		return 0, patch, usage
	}
	return id, patch, nil
}

// parseQuizArgs reads an optional question count and mode in any order
func parseQuizArgs(args string) (int, quiz.Mode, error) {
	count := 0
	var mode quiz.Mode
	for _, f := range strings.Fields(args) {
		if n, err := strconv.Atoi(f); err == nil {
			if n < 1 {
				return 0, "", errors.New("the number of questions must be positive")
			}
			count = n
			continue
		}
		m, err := quiz.ParseMode(f)
		if err != nil {
			return 0, "", err
		}
		mode = m
	}
	return count, mode, nil
}

// parseWordList reads one "word - meaning" pair per line
func parseWordList(text string) ([]models.Word, []string) {
	var words []models.Word
	var problems []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		term, meaning, ok := strings.Cut(line, " - ")
		if !ok {
			term, meaning, ok = strings.Cut(line, "-")
		}
		term, meaning = strings.TrimSpace(term), strings.TrimSpace(meaning)
		if !ok || term == "" || meaning == "" {
			problems = append(problems, fmt.Sprintf("Invalid format: %s", strings.TrimSpace(line)))
			continue
		}
		words = append(words, models.Word{Term: term, Meaning: meaning, Tags: []string{}})
	}
	return words, problems
}

// userMessage turns an error into text for the chat
func userMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "❌ Word not found."
	case errors.Is(err, store.ErrInvalidWord):
		return "❌ A word needs both a term and a meaning."
	case errors.Is(err, store.ErrDuplicateID):
		return "❌ The file contains duplicate word ids, nothing was imported."
	case errors.Is(err, quiz.ErrNotEnoughWords):
		return fmt.Sprintf("❌ You need at least %d words to take a quiz.", quiz.MinWords)
	case errors.Is(err, quiz.ErrUnknownMode):
		return "❌ Unknown quiz mode. Use mc, fill or mixed."
	case errors.Is(err, backup.ErrMissingWords):
		return "❌ Invalid file format. The file must contain a \"words\" list."
	case errors.Is(err, backup.ErrInvalidDocument):
		return "❌ This file is not a valid backup."
	case errors.Is(err, dictionary.ErrNotFound):
		return "❌ Could not find word data."
	case errors.Is(err, service.ErrLookupUnavailable):
		return "❌ Dictionary lookup is not available."
	case errors.Is(err, service.ErrAudioUnavailable):
		return "❌ Audio is not available."
	case errors.Is(err, ErrFileTooLarge):
		return "❌ The file is too large."
	}
	return "❌ Something went wrong. Please try again later."
}

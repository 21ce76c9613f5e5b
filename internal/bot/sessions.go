package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/vocablab/internal/review"
	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/pkg/models"
)

func cardButtons(flipped bool) [][]MenuButton {
	flip := "🔄 Show answer"
	if flipped {
		flip = "🔄 Show word"
	}
	return [][]MenuButton{
		{{Text: flip, CallbackData: cbFlip}},
		{
			{Text: "🔁 Again", CallbackData: cbRatePrefix + spaced_repetition.RatingAgain.String()},
			{Text: "👍 Good", CallbackData: cbRatePrefix + spaced_repetition.RatingGood.String()},
			{Text: "⚡ Easy", CallbackData: cbRatePrefix + spaced_repetition.RatingEasy.String()},
		},
	}
}

func (b *Bot) handleStartReview(chatID int64) error {
	st := b.state(chatID)
	sess := b.svc.StartReview()

	switch sess.Status() {
	case review.StatusNothingToReview:
		st.review = nil
		b.sendText(chatID, "Your word list is empty. Add words with /add.")
		return nil
	case review.StatusAllReviewed:
		st.review = nil
		_, err := b.sendWithKeyboard(chatID, "🎉 No words to review today! Good job!", b.MainMenuButtons())
		return err
	}

	st.review = sess
	return b.showCard(chatID, st)
}

func (b *Bot) showCard(chatID int64, st *chatState) error {
	w, err := st.review.Current()
	if err != nil {
		return err
	}
	m, err := b.sendWithKeyboard(chatID, formatCardFront(w, st.review.Position(), st.review.Len()), cardButtons(false))
	if err != nil {
		return err
	}
	st.reviewMessageID = m.MessageID
	return nil
}

// activeCard returns the review session when messageID shows its current card
func (b *Bot) activeCard(chatID int64, messageID int) (*review.Session, bool) {
	st := b.state(chatID)
	if st.review == nil || st.review.Complete() || st.reviewMessageID != messageID {
		b.sendText(chatID, "This card is no longer active. Send /review to continue.")
		return nil, false
	}
	return st.review, true
}

func (b *Bot) handleFlip(chatID int64, messageID int) error {
	sess, ok := b.activeCard(chatID, messageID)
	if !ok {
		return nil
	}
	w, err := sess.Current()
	if err != nil {
		return err
	}

	flipped := sess.Flip()
	text := formatCardFront(w, sess.Position(), sess.Len())
	if flipped {
		text = formatCardBack(w, sess.Position(), sess.Len())
	}
	return b.editWithKeyboard(chatID, messageID, text, cardButtons(flipped))
}

// handleRate applies a rating. A card rated face down is shown flipped
// for a moment before the rating applies.
func (b *Bot) handleRate(ctx context.Context, chatID int64, messageID int, rating spaced_repetition.Rating) error {
	sess, ok := b.activeCard(chatID, messageID)
	if !ok {
		return nil
	}
	w, err := sess.Current()
	if err != nil {
		return err
	}
	back := formatCardBack(w, sess.Position(), sess.Len())

	if !sess.Flipped() {
		sess.Flip()
		b.editWithKeyboard(chatID, messageID, back, nil)
		b.pause(ctx)
	}

	out, err := b.svc.Rate(ctx, sess, rating)
	if err != nil {
		return err
	}

	result := fmt.Sprintf("%s\n\n%s · next review %s", back, ratingLabel(rating), formatDue(out.Word.NextReviewDate, b.now()))
	if out.Skipped {
		result = back + "\n\n⏭ This word was deleted, skipping."
	}
	b.editWithKeyboard(chatID, messageID, result, nil)

	st := b.state(chatID)
	if out.Complete {
		st.review = nil
		_, err := b.sendWithKeyboard(chatID,
			fmt.Sprintf("🎉 Review complete! %s left for today.", pluralize(b.svc.DueCount(b.now()), "word")),
			b.MainMenuButtons())
		return err
	}
	return b.showCard(chatID, st)
}

func ratingLabel(r spaced_repetition.Rating) string {
	switch r {
	case spaced_repetition.RatingAgain:
		return "🔁 Again"
	case spaced_repetition.RatingEasy:
		return "⚡ Easy"
	}
	return "👍 Good"
}

func (b *Bot) handleStartListen(ctx context.Context, chatID int64) error {
	l := b.svc.StartListen()
	if l.Empty() {
		b.sendText(chatID, "Your word list is empty. Add words with /add.")
		return nil
	}
	b.state(chatID).listen = l

	w, _ := l.Current()
	return b.sendListenCard(ctx, chatID, w)
}

func (b *Bot) handleListenNext(ctx context.Context, chatID int64, reshuffle bool) error {
	l := b.state(chatID).listen
	if l == nil {
		return b.handleStartListen(ctx, chatID)
	}

	var w models.Word
	var ok bool
	if reshuffle {
		b.svc.ReshuffleListen(l)
		w, ok = l.Current()
	} else {
		w, ok = l.Next()
	}
	if !ok {
		b.sendText(chatID, "Your word list is empty. Add words with /add.")
		return nil
	}
	return b.sendListenCard(ctx, chatID, w)
}

func (b *Bot) sendListenCard(ctx context.Context, chatID int64, w models.Word) error {
	text := "🎧 Listen and repeat\n\n" + w.Term
	if w.Pronunciation != "" {
		text += "\n" + w.Pronunciation
	}
	text += "\n\n" + w.Meaning
	if w.Example != "" {
		text += "\n💬 " + w.Example
	}

	if err := b.sendPronunciation(ctx, chatID, w); err != nil {
		return err
	}
	_, err := b.sendWithKeyboard(chatID, text, [][]MenuButton{{
		{Text: "🔊 Again", CallbackData: cbSayPrefix + strconv.FormatInt(w.ID, 10)},
		{Text: "⏭ Next", CallbackData: cbListenNext},
		{Text: "🔀 Shuffle", CallbackData: cbListenShuffle},
	}})
	return err
}

// sendPronunciation sends the word's audio. Missing audio is reported
// in the chat and is not an error.
func (b *Bot) sendPronunciation(ctx context.Context, chatID int64, w models.Word) error {
	clip, err := b.svc.Pronounce(ctx, w)
	if err != nil {
		b.log.Warn("Audio failed", zap.String("word", w.Term), zap.Error(err))
		b.sendText(chatID, fmt.Sprintf("🔇 Could not play audio for %q.", w.Term))
		return nil
	}

	msg := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: clip.Name, Bytes: clip.Data})
	msg.Caption = w.Term
	_, err = b.send(msg)
	return err
}

func (b *Bot) handleStartQuiz(chatID int64, args string) error {
	count, mode, err := parseQuizArgs(args)
	if err != nil {
		b.sendText(chatID, "❌ "+err.Error())
		return nil
	}

	sess, err := b.svc.StartQuiz(count, mode)
	if err != nil {
		return err
	}
	st := b.state(chatID)
	st.quiz = sess
	return b.askQuestion(chatID, st)
}

func (b *Bot) askQuestion(chatID int64, st *chatState) error {
	q, err := st.quiz.Current()
	if err != nil {
		return err
	}

	var buttons [][]MenuButton
	if q.Type == models.MultipleChoice {
		for i, opt := range q.Options {
			buttons = append(buttons, []MenuButton{{Text: opt, CallbackData: cbAnswerPrefix + strconv.Itoa(i)}})
		}
	}
	buttons = append(buttons, []MenuButton{{Text: "🛑 End quiz", CallbackData: cbQuizEnd}})

	m, err := b.sendWithKeyboard(chatID, formatQuestion(q, st.quiz.Index(), st.quiz.Total()), buttons)
	if err != nil {
		return err
	}
	st.quizMessageID = m.MessageID
	return nil
}

// handleOptionAnswer submits a multiple-choice option. Buttons of
// questions that were already answered are ignored.
func (b *Bot) handleOptionAnswer(ctx context.Context, chatID int64, messageID int, idx int) error {
	st := b.state(chatID)
	if st.quiz == nil || st.quiz.Done() {
		b.sendText(chatID, "No quiz in progress. Send /quiz to start one.")
		return nil
	}
	if messageID != st.quizMessageID {
		b.sendText(chatID, "This question was already answered.")
		return nil
	}
	q, err := st.quiz.Current()
	if err != nil {
		return err
	}
	if q.Type != models.MultipleChoice || idx < 0 || idx >= len(q.Options) {
		b.sendText(chatID, "This answer belongs to another question.")
		return nil
	}
	return b.submitAnswer(ctx, chatID, q.Options[idx])
}

func (b *Bot) submitAnswer(ctx context.Context, chatID int64, answer string) error {
	st := b.state(chatID)
	a, err := st.quiz.Submit(answer)
	if err != nil {
		return err
	}
	b.sendText(chatID, formatAnswer(a))

	if !st.quiz.Done() {
		return b.askQuestion(chatID, st)
	}
	return b.finishQuiz(ctx, chatID, false)
}

func (b *Bot) handleEndQuiz(ctx context.Context, chatID int64, confirmed bool) error {
	st := b.state(chatID)
	if st.quiz == nil {
		b.sendText(chatID, "No quiz in progress.")
		return nil
	}
	return b.finishQuiz(ctx, chatID, confirmed)
}

func (b *Bot) finishQuiz(ctx context.Context, chatID int64, confirmed bool) error {
	st := b.state(chatID)
	res, err := b.svc.FinishQuiz(ctx, st.quiz, confirmed)
	if confirmationNeeded(err) {
		st.pending = &pendingAction{kind: actionEndQuiz}
		_, err := b.sendWithKeyboard(chatID,
			fmt.Sprintf("⚠️ End the quiz now? You answered %d of %d questions.", st.quiz.Index(), st.quiz.Total()),
			confirmButtons())
		return err
	}
	if err != nil {
		return err
	}

	st.quiz = nil
	_, err = b.sendWithKeyboard(chatID, formatQuizResult(res), b.MainMenuButtons())
	return err
}

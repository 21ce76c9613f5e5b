package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/vocablab/internal/service"
	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/internal/store"
	"github.com/example/vocablab/pkg/models"
)

// Constants for callback data
const (
	cbMainMenu      = "main_menu"
	cbHelp          = "help"
	cbStats         = "stats"
	cbList          = "list"
	cbExport        = "export"
	cbReview        = "review"
	cbFlip          = "flip"
	cbRatePrefix    = "rate:"
	cbListen        = "listen"
	cbListenNext    = "listen_next"
	cbListenShuffle = "listen_shuffle"
	cbSayPrefix     = "say:"
	cbQuiz          = "quiz"
	cbAnswerPrefix  = "answer:"
	cbQuizEnd       = "quiz_end"
	cbSaveDraft     = "save_draft"
	cbConfirm       = "confirm"
	cbCancelAction  = "cancel_action"
)

// Kinds of pending confirmations
const (
	actionDelete  = "delete"
	actionReset   = "reset"
	actionImport  = "import"
	actionEndQuiz = "end_quiz"
)

// MainMenuButtons returns the main menu layout
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "🃏 Review", CallbackData: cbReview}, {Text: "🎧 Listen", CallbackData: cbListen}},
		{{Text: "📝 Quiz", CallbackData: cbQuiz}, {Text: "📚 Words", CallbackData: cbList}},
		{{Text: "📊 Stats", CallbackData: cbStats}, {Text: "💾 Export", CallbackData: cbExport}},
		{{Text: "❓ Help", CallbackData: cbHelp}},
	}
}

func confirmButtons() [][]MenuButton {
	return [][]MenuButton{{
		{Text: "✅ Yes", CallbackData: cbConfirm},
		{Text: "✖️ Cancel", CallbackData: cbCancelAction},
	}}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start", "menu":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "add":
		return b.handleAdd(ctx, chatID, args)
	case "lookup":
		return b.handleLookup(ctx, chatID, args)
	case "bulk":
		b.state(chatID).awaitingList = true
		b.sendText(chatID, "Send the words, one per line, as: word - meaning")
		return nil
	case "list":
		b.sendText(chatID, formatWordList("📚 Your words", b.svc.Words(), b.config.ListLimit))
		return nil
	case "search":
		if args == "" {
			b.sendText(chatID, "Usage: /search text")
			return nil
		}
		b.sendText(chatID, formatWordList(fmt.Sprintf("🔍 Results for %q", args), b.svc.Search(args), b.config.ListLimit))
		return nil
	case "word":
		return b.handleShowWord(chatID, args)
	case "edit":
		return b.handleEdit(ctx, chatID, args)
	case "delete":
		return b.handleDelete(chatID, args)
	case "review":
		return b.handleStartReview(chatID)
	case "listen":
		return b.handleStartListen(ctx, chatID)
	case "quiz":
		return b.handleStartQuiz(chatID, args)
	case "endquiz":
		return b.handleEndQuiz(ctx, chatID, false)
	case "stats":
		b.sendText(chatID, formatStats(b.svc.Dashboard()))
		return nil
	case "export":
		return b.handleExport(chatID, args)
	case "import":
		b.sendText(chatID, "📥 Send a .json backup to replace all words, or an .xlsx/.csv sheet to add words.\n\n"+
			"Sheet columns: word, part of speech, meaning, example, pronunciation, audio, tags.")
		return nil
	case "reset":
		b.state(chatID).pending = &pendingAction{kind: actionReset}
		_, err := b.sendWithKeyboard(chatID, "⚠️ Delete all words and quiz scores and restore the sample words?", confirmButtons())
		return err
	case "remind":
		return b.handleRemind(ctx, chatID, args)
	default:
		_, err := b.sendWithKeyboard(chatID, "Unknown command. Use /menu to show the main menu.", b.MainMenuButtons())
		return err
	}
}

func (b *Bot) handleStart(chatID int64) error {
	text := "👋 Welcome to VocabLab!\n\n" +
		"Build your vocabulary with flashcards and spaced repetition:\n" +
		"1. Add words with /add\n" +
		"2. Review the cards that are due with /review\n" +
		"3. Test yourself with /quiz\n" +
		"4. Track your progress with /stats"
	_, err := b.sendWithKeyboard(chatID, text, b.MainMenuButtons())
	return err
}

func (b *Bot) handleHelp(chatID int64) error {
	var intervals []string
	for _, d := range b.svc.Scheduler().Intervals {
		intervals = append(intervals, strconv.Itoa(d))
	}

	text := "📖 Commands\n\n" +
		"/add word | meaning | part of speech | example | tags\n" +
		"/add word - look the word up and confirm\n" +
		"/lookup word - show dictionary data\n" +
		"/bulk - add many words as \"word - meaning\" lines\n" +
		"/list - all words, newest first\n" +
		"/search text - find by word, meaning or tag\n" +
		"/word id - show one word\n" +
		"/edit id meaning=... | pos=... | example=... | tags=a, b\n" +
		"/delete id - remove a word\n\n" +
		"/review - flashcards due today\n" +
		"/listen - listen and repeat\n" +
		"/quiz [count] [mc|fill|mixed] - take a quiz\n" +
		"/endquiz - stop the current quiz\n" +
		"/stats - your progress\n\n" +
		"/export [xlsx] - download a backup\n" +
		"/import - restore a backup or load a sheet\n" +
		"/reset - restore the sample words\n" +
		"/remind on|off - daily reminders\n\n" +
		"🔄 Review intervals (days): " + strings.Join(intervals, ", ")

	_, err := b.sendWithKeyboard(chatID, text, [][]MenuButton{{{Text: "⬅️ Back to menu", CallbackData: cbMainMenu}}})
	return err
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) error {
	w, err := parseWordArgs(args)
	if err != nil {
		b.sendText(chatID, err.Error())
		return nil
	}

	if w.Meaning == "" {
		return b.showDraft(ctx, chatID, w)
	}

	added, err := b.svc.AddWord(ctx, w)
	if err != nil {
		return err
	}
	b.sendText(chatID, "✅ Word added!\n\n"+formatWordCard(added, b.now()))
	return nil
}

func (b *Bot) handleLookup(ctx context.Context, chatID int64, args string) error {
	w, err := parseWordArgs(args)
	if err != nil {
		b.sendText(chatID, "Usage: /lookup word")
		return nil
	}
	return b.showDraft(ctx, chatID, w)
}

// showDraft completes a word from the dictionary and offers to save it
func (b *Bot) showDraft(ctx context.Context, chatID int64, w models.Word) error {
	filled, err := b.svc.Autofill(ctx, w)
	if err != nil {
		return err
	}

	st := b.state(chatID)
	st.draft = &filled

	text := "🔎 Word data populated!\n\n" + formatWordCard(filled, b.now())
	buttons := [][]MenuButton{{
		{Text: "💾 Save", CallbackData: cbSaveDraft},
		{Text: "✖️ Cancel", CallbackData: cbCancelAction},
	}}
	_, err = b.sendWithKeyboard(chatID, text, buttons)
	return err
}

func (b *Bot) handleShowWord(chatID int64, args string) error {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendText(chatID, "Usage: /word id")
		return nil
	}
	w, err := b.svc.Word(id)
	if err != nil {
		return err
	}
	_, err = b.sendWithKeyboard(chatID, formatWordCard(w, b.now()), [][]MenuButton{{
		{Text: "🔊 Listen", CallbackData: cbSayPrefix + strconv.FormatInt(id, 10)},
	}})
	return err
}

func (b *Bot) handleEdit(ctx context.Context, chatID int64, args string) error {
	id, patch, err := parseEditArgs(args)
	if err != nil {
		b.sendText(chatID, err.Error())
		return nil
	}
	w, err := b.svc.EditWord(ctx, id, patch)
	if err != nil {
		return err
	}
	b.sendText(chatID, "✏️ Word updated!\n\n"+formatWordCard(w, b.now()))
	return nil
}

func (b *Bot) handleDelete(chatID int64, args string) error {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendText(chatID, "Usage: /delete id")
		return nil
	}
	w, err := b.svc.Word(id)
	if err != nil {
		return err
	}

	b.state(chatID).pending = &pendingAction{kind: actionDelete, wordID: id}
	_, err = b.sendWithKeyboard(chatID, fmt.Sprintf("🗑 Delete %q?", w.Term), confirmButtons())
	return err
}

func (b *Bot) handleExport(chatID int64, args string) error {
	var buf bytes.Buffer
	if strings.EqualFold(args, "xlsx") {
		if err := b.svc.ExportSheet(&buf); err != nil {
			return err
		}
		name := strings.TrimSuffix(b.svc.ExportFileName(), ".json") + ".xlsx"
		return b.sendFile(chatID, name, buf.Bytes(), "📗 Your words as a spreadsheet")
	}

	if err := b.svc.Export(&buf); err != nil {
		return err
	}
	return b.sendFile(chatID, b.svc.ExportFileName(), buf.Bytes(), "💾 Backup of your words and quiz scores")
}

func (b *Bot) handleRemind(ctx context.Context, chatID int64, args string) error {
	switch strings.ToLower(args) {
	case "on":
		if err := b.svc.SetRemindersEnabled(ctx, true); err != nil {
			return err
		}
	case "off":
		if err := b.svc.SetRemindersEnabled(ctx, false); err != nil {
			return err
		}
	case "":
	default:
		b.sendText(chatID, "Usage: /remind on|off")
		return nil
	}

	enabled, err := b.svc.RemindersEnabled(ctx)
	if err != nil {
		return err
	}
	b.sendText(chatID, "⏰ Reminders are "+boolToEnabledString(enabled)+".")
	return nil
}

func boolToEnabledString(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// handleDocument imports an uploaded backup or sheet
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	doc := message.Document
	ext := strings.ToLower(filepath.Ext(doc.FileName))

	if ext != ".json" && ext != ".xlsx" && ext != ".csv" {
		b.sendText(chatID, "❌ Unsupported file. Send a .json backup or an .xlsx/.csv sheet.")
		return nil
	}

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		return err
	}

	if ext != ".json" {
		res, added, err := b.svc.ImportSheet(ctx, bytes.NewReader(data), doc.FileName)
		if err != nil {
			return err
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "✅ Words processed:\n- Added: %d\n- Skipped: %d\n", added, res.Skipped)
		if len(res.Errors) > 0 {
			fmt.Fprintf(&sb, "\n❌ Errors (%d):\n", len(res.Errors))
			for _, e := range res.Errors {
				sb.WriteString("- " + e + "\n")
			}
		}
		b.sendText(chatID, sb.String())
		return nil
	}

	words, err := b.svc.PreviewImport(data)
	if err != nil {
		return err
	}
	b.state(chatID).pending = &pendingAction{kind: actionImport, data: data}
	_, err = b.sendWithKeyboard(chatID,
		fmt.Sprintf("⚠️ Replace your %s with the %s in %s?",
			pluralize(len(b.svc.Words()), "word"), pluralize(len(words), "word"), doc.FileName),
		confirmButtons())
	return err
}

// handleText handles plain messages: quiz answers and word lists
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	st := b.state(chatID)

	if st.awaitingList {
		st.awaitingList = false
		return b.processWordList(ctx, chatID, message.Text)
	}

	if st.quiz != nil && !st.quiz.Done() {
		q, err := st.quiz.Current()
		if err == nil && q.Type == models.FillInBlank {
			return b.submitAnswer(ctx, chatID, message.Text)
		}
	}

	_, err := b.sendWithKeyboard(chatID, "I don't understand. Use /menu to show the main menu.", b.MainMenuButtons())
	return err
}

// processWordList adds "word - meaning" lines
func (b *Bot) processWordList(ctx context.Context, chatID int64, text string) error {
	words, problems := parseWordList(text)

	added := 0
	for _, w := range words {
		if _, err := b.svc.AddWord(ctx, w); err != nil {
			problems = append(problems, fmt.Sprintf("Error adding word '%s': %v", w.Term, err))
			continue
		}
		added++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Words processed:\n- Added: %d\n", added)
	if len(problems) > 0 {
		fmt.Fprintf(&sb, "\n❌ Errors (%d):\n", len(problems))
		for _, p := range problems {
			sb.WriteString("- " + p + "\n")
		}
	}
	sb.WriteString("\nSend /review to start learning!")
	b.sendText(chatID, sb.String())
	return nil
}

// handleCallback handles presses on inline buttons
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID
	data := callback.Data

	switch data {
	case cbMainMenu:
		_, err := b.sendWithKeyboard(chatID, "🤖 Main menu", b.MainMenuButtons())
		return err
	case cbHelp:
		return b.handleHelp(chatID)
	case cbStats:
		b.sendText(chatID, formatStats(b.svc.Dashboard()))
		return nil
	case cbList:
		b.sendText(chatID, formatWordList("📚 Your words", b.svc.Words(), b.config.ListLimit))
		return nil
	case cbExport:
		return b.handleExport(chatID, "")
	case cbReview:
		return b.handleStartReview(chatID)
	case cbFlip:
		return b.handleFlip(chatID, messageID)
	case cbListen:
		return b.handleStartListen(ctx, chatID)
	case cbListenNext:
		return b.handleListenNext(ctx, chatID, false)
	case cbListenShuffle:
		return b.handleListenNext(ctx, chatID, true)
	case cbQuiz:
		return b.handleStartQuiz(chatID, "")
	case cbQuizEnd:
		return b.handleEndQuiz(ctx, chatID, false)
	case cbSaveDraft:
		return b.handleSaveDraft(ctx, chatID, messageID)
	case cbConfirm:
		return b.handleConfirm(ctx, chatID, messageID)
	case cbCancelAction:
		return b.handleCancelAction(chatID, messageID)
	}

	switch {
	case strings.HasPrefix(data, cbRatePrefix):
		rating, err := spaced_repetition.ParseRating(strings.TrimPrefix(data, cbRatePrefix))
		if err != nil {
			return err
		}
		return b.handleRate(ctx, chatID, messageID, rating)
	case strings.HasPrefix(data, cbAnswerPrefix):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, cbAnswerPrefix))
		if err != nil {
			return fmt.Errorf("invalid answer in callback data: %w", err)
		}
		return b.handleOptionAnswer(ctx, chatID, messageID, idx)
	case strings.HasPrefix(data, cbSayPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, cbSayPrefix), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid word ID in callback data: %w", err)
		}
		w, err := b.svc.Word(id)
		if err != nil {
			return err
		}
		return b.sendPronunciation(ctx, chatID, w)
	}

	b.sendText(chatID, "⚠️ Unknown action")
	return nil
}

func (b *Bot) handleSaveDraft(ctx context.Context, chatID int64, messageID int) error {
	st := b.state(chatID)
	if st.draft == nil {
		b.sendText(chatID, "Nothing to save. Use /add word first.")
		return nil
	}
	draft := *st.draft

	added, err := b.svc.AddWord(ctx, draft)
	if err != nil {
		if errors.Is(err, store.ErrInvalidWord) {
			b.sendText(chatID, "❌ The dictionary had no meaning for this word. Use /add word | meaning.")
			return nil
		}
		return err
	}
	st.draft = nil
	return b.editWithKeyboard(chatID, messageID, "✅ Word added!\n\n"+formatWordCard(added, b.now()), nil)
}

// handleConfirm runs the pending destructive action
func (b *Bot) handleConfirm(ctx context.Context, chatID int64, messageID int) error {
	st := b.state(chatID)
	action := st.pending
	st.pending = nil
	if action == nil {
		b.sendText(chatID, "Nothing to confirm.")
		return nil
	}

	var text string
	switch action.kind {
	case actionDelete:
		if err := b.svc.DeleteWord(ctx, action.wordID, true); err != nil {
			return err
		}
		text = "🗑 Word deleted."
	case actionReset:
		if err := b.svc.Reset(ctx, true); err != nil {
			return err
		}
		st.review, st.listen, st.quiz = nil, nil, nil
		text = "♻️ All data was reset to the sample words."
	case actionImport:
		n, err := b.svc.Import(ctx, action.data, true)
		if err != nil {
			return err
		}
		text = fmt.Sprintf("✅ Imported %s.", pluralize(n, "word"))
	case actionEndQuiz:
		return b.handleEndQuiz(ctx, chatID, true)
	default:
		return fmt.Errorf("unknown pending action %q", action.kind)
	}

	b.log.Info("Confirmed action", zap.String("action", action.kind), zap.Int64("chat_id", chatID))
	return b.editWithKeyboard(chatID, messageID, text, nil)
}

func (b *Bot) handleCancelAction(chatID int64, messageID int) error {
	st := b.state(chatID)
	st.pending = nil
	st.draft = nil
	st.awaitingList = false
	return b.editWithKeyboard(chatID, messageID, "❌ Action cancelled", nil)
}

// confirmationNeeded reports whether err asks the user to confirm
func confirmationNeeded(err error) bool {
	return errors.Is(err, service.ErrConfirmationRequired)
}

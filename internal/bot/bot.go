package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/vocablab/internal/quiz"
	"github.com/example/vocablab/internal/review"
	"github.com/example/vocablab/internal/service"
	"github.com/example/vocablab/pkg/models"
)

// maxUploadSize caps downloaded backups and sheets
const maxUploadSize = 20 << 20

// ErrFileTooLarge is returned for uploads above BotConfig.MaxUploadSize
var ErrFileTooLarge = errors.New("file too large")

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// pendingAction is a destructive action waiting for a yes
type pendingAction struct {
	kind   string
	wordID int64
	data   []byte
}

// chatState holds the conversation state of one chat
type chatState struct {
	review          *review.Session
	reviewMessageID int
	listen          *review.ListenSession
	quiz            *quiz.Session
	quizMessageID   int
	pending         *pendingAction
	draft           *models.Word
	awaitingList    bool
}

// Bot represents the Telegram bot application
type Bot struct {
	api        telegramAPI
	svc        *service.Service
	config     *BotConfig
	log        *zap.Logger
	httpClient *http.Client
	now        func() time.Time

	allowed map[int64]bool
	chats   map[int64]*chatState

	// chats that talked to the bot; read by the reminder job
	mu    sync.Mutex
	known map[int64]bool
}

// New creates a new bot instance
func New(api telegramAPI, svc *service.Service, config *BotConfig, log *zap.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	b := &Bot{
		api:        api,
		svc:        svc,
		config:     config,
		log:        log,
		httpClient: &http.Client{Timeout: config.DownloadTimeout},
		now:        time.Now,
		allowed:    make(map[int64]bool),
		chats:      make(map[int64]*chatState),
		known:      make(map[int64]bool),
	}
	for _, id := range config.AllowedUserIDs {
		b.allowed[id] = true
	}
	return b
}

// Run handles updates one at a time until ctx is cancelled or the channel closes
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(count int) error {
	text := fmt.Sprintf("⏰ You have %s to review! Send /review to start.", pluralize(count, "word"))

	var firstErr error
	for _, chatID := range b.reminderRecipients() {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "🃏 Review now", CallbackData: cbReview}}})
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("Error sending reminder", zap.Int64("chat_id", chatID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// reminderRecipients returns the allowed users, or every chat seen so far
// when the bot is open to everyone
func (b *Bot) reminderRecipients() []int64 {
	if len(b.config.AllowedUserIDs) > 0 {
		// В Telegram user ID и chat ID совпадают для личных чатов
		return append([]int64(nil), b.config.AllowedUserIDs...)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, len(b.known))
	for id := range b.known {
		ids = append(ids, id)
	}
	return ids
}

func (b *Bot) remember(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.known[chatID] = true
}

// isAllowed checks if a user may use the bot
func (b *Bot) isAllowed(userID int64) bool {
	return len(b.allowed) == 0 || b.allowed[userID]
}

func (b *Bot) state(chatID int64) *chatState {
	st, ok := b.chats[chatID]
	if !ok {
		st = &chatState{}
		b.chats[chatID] = st
	}
	return st
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var chatID, userID int64
	var err error

	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
			return
		}
		chatID, userID = cb.Message.Chat.ID, cb.From.ID
		// Always send an answer to the callback query to remove the loading state
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn("Failed to answer callback", zap.Error(err))
		}
		if !b.isAllowed(userID) {
			return
		}
		b.remember(chatID)
		err = b.handleCallback(ctx, cb)

	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || msg.From == nil {
			return
		}
		chatID, userID = msg.Chat.ID, msg.From.ID
		if !b.isAllowed(userID) {
			b.sendText(chatID, "⛔ This bot is private.")
			return
		}
		b.remember(chatID)
		err = b.handleMessage(ctx, msg)

	default:
		return
	}

	if err != nil {
		b.log.Warn("Update failed", zap.Int64("chat_id", chatID), zap.Int64("user_id", userID), zap.Error(err))
		b.sendText(chatID, userMessage(err))
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}
	if msg.Document != nil {
		return b.handleDocument(ctx, msg)
	}
	return b.handleText(ctx, msg)
}

func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := b.api.Send(c)
	if err != nil {
		b.log.Error("Failed to send message", zap.Error(err))
	}
	return m, err
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, buttons [][]MenuButton) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.send(msg)
}

func (b *Bot) editWithKeyboard(chatID int64, messageID int, text string, buttons [][]MenuButton) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, createKeyboard(buttons))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	_, err := b.send(edit)
	return err
}

func (b *Bot) sendFile(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := b.send(doc)
	return err
}

// download fetches an uploaded file
func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	limit := b.config.MaxUploadSize
	if limit <= 0 {
		limit = maxUploadSize
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// pause waits for the flip delay unless ctx ends first
func (b *Bot) pause(ctx context.Context) {
	if b.config.FlipDelay <= 0 {
		return
	}
	t := time.NewTimer(b.config.FlipDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

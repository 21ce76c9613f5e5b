package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/vocablab/internal/ai"
	"github.com/example/vocablab/internal/audio"
	"github.com/example/vocablab/internal/bot"
	"github.com/example/vocablab/internal/config"
	"github.com/example/vocablab/internal/database"
	"github.com/example/vocablab/internal/dictionary"
	"github.com/example/vocablab/internal/scheduler"
	"github.com/example/vocablab/internal/service"
	"github.com/example/vocablab/internal/spaced_repetition"
	"github.com/example/vocablab/internal/store"
	"github.com/example/vocablab/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vocablab",
	Short: "Vocabulary flashcards with spaced repetition",
	Long: `VocabLab keeps a personal word list, schedules reviews on a fixed
interval table and quizzes you on the words. Without a subcommand it runs
the Telegram bot.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config-dir", "c", ".", "directory containing vocablab.yaml")
	rootCmd.AddCommand(botCmd, statsCmd, exportCmd, importCmd, importSheetCmd, resetCmd, remindCmd)
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func main() {
	// Создаем контекст, который отменяется по сигналу
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds everything built from the configuration
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *sqlx.DB
	svc *service.Service
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// newApp loads the configuration and wires storage and services
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}

	// Хранилище: база данных или память
	var words store.Persistence
	var scorePersist store.ScorePersistence
	var settings service.Settings
	if cfg.Database.Driver == config.DriverMemory {
		mem := store.NewMemory()
		words, scorePersist = mem, mem
		log.Info("Using in-memory storage, nothing will be saved")
	} else {
		db, err := database.Connect(database.Config{
			Driver:  cfg.Database.Driver,
			DSN:     cfg.Database.DSN,
			DataDir: cfg.Database.DataDir,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		words = database.NewWordRepository(db)
		scorePersist = database.NewScoreRepository(db)
		settings = database.NewSettingsRepository(db)
		log.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
	}

	intervals := spaced_repetition.NewScheduler(cfg.Review.Intervals)
	wordStore, err := store.Open(ctx, words, store.WithLogger(log), store.WithMaxLevel(intervals.MaxLevel()))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load words: %w", err)
	}
	scores, err := store.OpenScoreLog(ctx, scorePersist)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	deps := service.Deps{
		Words:         wordStore,
		Scores:        scores,
		Scheduler:     intervals,
		Settings:      settings,
		Log:           log,
		QuizQuestions: cfg.Quiz.Questions,
		QuizMode:      cfg.Quiz.Mode,
	}
	if cfg.Dictionary.URL != "" {
		deps.Dictionary = dictionary.NewClient(cfg.Dictionary.URL, cfg.Dictionary.HTTPTimeout)
	}
	if cfg.Dictionary.TTSURL != "" {
		deps.Audio = audio.NewPronouncer(cfg.Dictionary.TTSURL, cfg.Dictionary.HTTPTimeout, log)
	}
	if cfg.AI.APIKey != "" {
		writer, err := ai.New(cfg.AI.APIKey, cfg.AI.Model, "")
		if err != nil {
			log.Warn("Example generation disabled", zap.Error(err))
		} else {
			deps.Examples = writer
		}
	}

	a.svc = service.New(deps)
	return a, nil
}

func runBot(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	api, err := tgbotapi.NewBotAPI(a.cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}
	a.log.Info("Authorized on account", zap.String("username", api.Self.UserName))

	botCfg := bot.DefaultConfig()
	botCfg.AllowedUserIDs = a.cfg.Telegram.AllowedUserIDs
	botCfg.FlipDelay = a.cfg.Review.FlipDelay
	b := bot.New(api, a.svc, botCfg, a.log)

	// Напоминания о словах на повторение
	if a.cfg.Reminders.Enabled {
		sched := scheduler.New(a.svc, b, scheduler.Config{
			StartHour: a.cfg.Reminders.StartHour,
			EndHour:   a.cfg.Reminders.EndHour,
		}, a.log)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		a.log.Info("Stopping bot...")
		api.StopReceivingUpdates()
	}()

	a.log.Info("Bot started. Press Ctrl+C to stop.")
	b.Run(ctx, updates)
	a.log.Info("Bot stopped successfully")
	return nil
}

// withApp runs fn with a wired app and closes it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

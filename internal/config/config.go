package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/vocablab/internal/database"
	"github.com/example/vocablab/internal/quiz"
	"github.com/example/vocablab/internal/spaced_repetition"
)

// DriverMemory keeps everything in process memory; nothing survives a restart
const DriverMemory = "memory"

// Config holds the application settings
type Config struct {
	Telegram   TelegramConfig
	Database   DatabaseConfig
	Log        LogConfig
	AI         AIConfig
	Dictionary DictionaryConfig
	Review     ReviewConfig
	Quiz       QuizConfig
	Reminders  ReminderConfig
}

type TelegramConfig struct {
	Token          string
	AllowedUserIDs []int64
}

type DatabaseConfig struct {
	Driver  string
	DSN     string
	DataDir string
}

type LogConfig struct {
	Level string
	File  string
}

type AIConfig struct {
	APIKey string
	Model  string
}

type DictionaryConfig struct {
	URL         string
	TTSURL      string
	HTTPTimeout time.Duration
}

type ReviewConfig struct {
	Intervals []int
	// Pause between showing the back of an unflipped card and rating it
	FlipDelay time.Duration
}

type QuizConfig struct {
	Questions int
	Mode      quiz.Mode
}

type ReminderConfig struct {
	Enabled   bool
	StartHour int
	EndHour   int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_driver", database.DriverSQLite)
	v.SetDefault("db_dsn", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/vocablab.log")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("dictionary_url", "https://api.dictionaryapi.dev/api/v2/entries/en")
	v.SetDefault("tts_url", "https://translate.google.com/translate_tts")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("review_intervals", "1,3,7,14,30,60,120")
	v.SetDefault("flip_delay", "400ms")
	v.SetDefault("quiz_questions", 10)
	v.SetDefault("quiz_mode", string(quiz.ModeMixed))
	v.SetDefault("reminder_start_hour", 9)
	v.SetDefault("reminder_end_hour", 21)
	v.SetDefault("enable_scheduler", true)
}

// Load reads .env, the optional vocablab.yaml found in path and the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("vocablab")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: v.GetString("telegram_bot_token")},
		Database: DatabaseConfig{
			Driver:  strings.ToLower(v.GetString("db_driver")),
			DSN:     v.GetString("db_dsn"),
			DataDir: v.GetString("data_dir"),
		},
		Log:        LogConfig{Level: v.GetString("log_level"), File: v.GetString("log_file")},
		AI:         AIConfig{APIKey: v.GetString("openai_api_key"), Model: v.GetString("openai_model")},
		Dictionary: DictionaryConfig{
			URL:         strings.TrimRight(v.GetString("dictionary_url"), "/"),
			TTSURL:      v.GetString("tts_url"),
			HTTPTimeout: v.GetDuration("http_timeout"),
		},
		Review: ReviewConfig{FlipDelay: v.GetDuration("flip_delay")},
		Quiz:   QuizConfig{Questions: v.GetInt("quiz_questions")},
		Reminders: ReminderConfig{
			Enabled:   v.GetBool("enable_scheduler"),
			StartHour: v.GetInt("reminder_start_hour"),
			EndHour:   v.GetInt("reminder_end_hour"),
		},
	}

	ids, err := parseInts(v.Get("allowed_user_ids"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALLOWED_USER_IDS: %w", err)
	}
	for _, id := range ids {
		cfg.Telegram.AllowedUserIDs = append(cfg.Telegram.AllowedUserIDs, int64(id))
	}

	intervals, err := parseInts(v.Get("review_intervals"))
	if err != nil {
		return nil, fmt.Errorf("invalid REVIEW_INTERVALS: %w", err)
	}
	cfg.Review.Intervals = make([]int, len(intervals))
	for i, d := range intervals {
		cfg.Review.Intervals[i] = int(d)
	}

	mode, err := quiz.ParseMode(v.GetString("quiz_mode"))
	if err != nil {
		return nil, err
	}
	cfg.Quiz.Mode = mode

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite, DriverMemory:
	case database.DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("DB_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if len(c.Review.Intervals) == 0 {
		c.Review.Intervals = append([]int(nil), spaced_repetition.DefaultIntervals...)
	}
	for i, d := range c.Review.Intervals {
		if d <= 0 || (i > 0 && d < c.Review.Intervals[i-1]) {
			return fmt.Errorf("review intervals must be positive and ascending, got %v", c.Review.Intervals)
		}
	}

	if c.Quiz.Questions < 1 {
		return fmt.Errorf("QUIZ_QUESTIONS must be at least 1, got %d", c.Quiz.Questions)
	}
	if c.Dictionary.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Dictionary.HTTPTimeout)
	}
	if c.Review.FlipDelay < 0 {
		c.Review.FlipDelay = 0
	}
	if c.Reminders.StartHour < 0 || c.Reminders.EndHour > 23 || c.Reminders.StartHour > c.Reminders.EndHour {
		return fmt.Errorf("invalid reminder window %d-%d", c.Reminders.StartHour, c.Reminders.EndHour)
	}
	return nil
}

// parseInts accepts "1, 3, 7" from the environment or a YAML list
func parseInts(raw interface{}) ([]int64, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		var out []int64
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []interface{}:
		out := make([]int64, 0, len(val))
		for _, item := range val {
			n, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(item)), 10, 64)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case int:
		return []int64{int64(val)}, nil
	case int64:
		return []int64{val}, nil
	}
	return nil, fmt.Errorf("unexpected value %v", raw)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocablab/internal/quiz"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, []int{1, 3, 7, 14, 30, 60, 120}, cfg.Review.Intervals)
	assert.Equal(t, 400*time.Millisecond, cfg.Review.FlipDelay)
	assert.Equal(t, 10*time.Second, cfg.Dictionary.HTTPTimeout)
	assert.Equal(t, quiz.ModeMixed, cfg.Quiz.Mode)
	assert.Equal(t, 10, cfg.Quiz.Questions)
	assert.True(t, cfg.Reminders.Enabled)
	assert.Empty(t, cfg.Telegram.AllowedUserIDs)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "quiz_questions: 5\nquiz_mode: fill\nallowed_user_ids: [7, 8]\nreview_intervals: [2, 4]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocablab.yaml"), []byte(yaml), 0644))

	t.Setenv("QUIZ_QUESTIONS", "12")
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret")
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Quiz.Questions)
	assert.Equal(t, quiz.ModeFillInBlank, cfg.Quiz.Mode)
	assert.Equal(t, []int64{7, 8}, cfg.Telegram.AllowedUserIDs)
	assert.Equal(t, []int{2, 4}, cfg.Review.Intervals)
	assert.Equal(t, "secret", cfg.Telegram.Token)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestLoadParsesEnvironmentLists(t *testing.T) {
	t.Setenv("ALLOWED_USER_IDS", "100, 200")
	t.Setenv("REVIEW_INTERVALS", "1,2,5")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AllowedUserIDs)
	assert.Equal(t, []int{1, 2, 5}, cfg.Review.Intervals)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown driver", "DB_DRIVER", "oracle"},
		{"postgres without dsn", "DB_DRIVER", "postgres"},
		{"descending intervals", "REVIEW_INTERVALS", "3,1"},
		{"non numeric ids", "ALLOWED_USER_IDS", "alice"},
		{"zero questions", "QUIZ_QUESTIONS", "0"},
		{"unknown quiz mode", "QUIZ_MODE", "essay"},
		{"inverted reminder window", "REMINDER_START_HOUR", "22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

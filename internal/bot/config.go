package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Users allowed to talk to the bot; empty allows everyone
	AllowedUserIDs []int64
	// Pause between showing the back of a card and applying a rating
	FlipDelay time.Duration
	// Maximum number of words shown by /list and /search
	ListLimit int
	// Timeout for downloading uploaded files
	DownloadTimeout time.Duration
	// Largest accepted upload in bytes
	MaxUploadSize int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		FlipDelay:       400 * time.Millisecond,
		ListLimit:       50,
		DownloadTimeout: 30 * time.Second,
		MaxUploadSize:   maxUploadSize,
	}
}

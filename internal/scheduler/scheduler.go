package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Константы для настроек уведомлений по умолчанию
const (
	DefaultNotificationStartHour = 9  // Время начала уведомлений
	DefaultNotificationEndHour   = 21 // Время окончания уведомлений
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(count int) error
}

// Source tells the scheduler how many words are waiting and whether the
// owner wants to hear about it
type Source interface {
	DueCount(now time.Time) int
	RemindersEnabled(ctx context.Context) (bool, error)
}

// Config sets the hours (inclusive, local time) during which reminders go out
type Config struct {
	StartHour int
	EndHour   int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	source    Source
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(source Source, notifier Notifier, cfg Config, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		source:    source,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// Schedule hourly check for due words
	if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
		return err
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	if _, err := s.check(context.Background(), false); err != nil {
		s.log.Error("reminder check failed", zap.Error(err))
	}
}

// RunManualCheck sends a reminder right away, ignoring the hour window
// and the enabled flag. It returns the number of due words.
func (s *Scheduler) RunManualCheck(ctx context.Context) (int, error) {
	return s.check(ctx, true)
}

func (s *Scheduler) check(ctx context.Context, force bool) (int, error) {
	now := s.now()

	if !force {
		// Проверяем, находится ли текущий час в диапазоне времени для отправки уведомлений
		if hour := now.Hour(); hour < s.cfg.StartHour || hour > s.cfg.EndHour {
			s.log.Debug("outside notification hours, skipping reminders",
				zap.Int("hour", hour), zap.Int("start", s.cfg.StartHour), zap.Int("end", s.cfg.EndHour))
			return 0, nil
		}

		enabled, err := s.source.RemindersEnabled(ctx)
		if err != nil {
			return 0, err
		}
		if !enabled {
			return 0, nil
		}
	}

	count := s.source.DueCount(now)
	if count == 0 {
		return 0, nil
	}

	if err := s.notifier.SendReminders(count); err != nil {
		return count, err
	}
	s.log.Info("reminder sent", zap.Int("due", count))
	return count, nil
}

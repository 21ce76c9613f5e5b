package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	due     int
	enabled bool
	err     error
}

func (f *fakeSource) DueCount(time.Time) int { return f.due }

func (f *fakeSource) RemindersEnabled(context.Context) (bool, error) { return f.enabled, f.err }

type fakeNotifier struct {
	sent []int
	err  error
}

func (f *fakeNotifier) SendReminders(count int) error {
	f.sent = append(f.sent, count)
	return f.err
}

func newTestScheduler(src Source, n Notifier, hour int) *Scheduler {
	s := New(src, n, Config{StartHour: DefaultNotificationStartHour, EndHour: DefaultNotificationEndHour}, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 1, hour, 30, 0, 0, time.Local) }
	return s
}

func TestCheckSendsInsideWindow(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScheduler(&fakeSource{due: 4, enabled: true}, n, 10)

	count, err := s.check(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, []int{4}, n.sent)
}

func TestCheckSkips(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		hour int
	}{
		{"before window", &fakeSource{due: 4, enabled: true}, 8},
		{"after window", &fakeSource{due: 4, enabled: true}, 22},
		{"disabled", &fakeSource{due: 4, enabled: false}, 12},
		{"nothing due", &fakeSource{due: 0, enabled: true}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			_, err := newTestScheduler(tt.src, n, tt.hour).check(context.Background(), false)
			require.NoError(t, err)
			assert.Empty(t, n.sent)
		})
	}
}

func TestManualCheckIgnoresWindowAndFlag(t *testing.T) {
	n := &fakeNotifier{}
	s := newTestScheduler(&fakeSource{due: 2, enabled: false}, n, 3)

	count, err := s.RunManualCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{2}, n.sent)
}

func TestCheckReportsErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := newTestScheduler(&fakeSource{due: 1, err: boom}, &fakeNotifier{}, 12).check(context.Background(), false)
	assert.ErrorIs(t, err, boom)

	_, err = newTestScheduler(&fakeSource{due: 1, enabled: true}, &fakeNotifier{err: boom}, 12).check(context.Background(), false)
	assert.ErrorIs(t, err, boom)
}

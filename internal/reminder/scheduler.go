package reminder

import (
	"context"
	"time"

	"lembas/internal/ingredient"

	"github.com/sirupsen/logrus"
)

// FetchFunc loads the current recurring purchases.
type FetchFunc func(ctx context.Context) ([]ingredient.Scheduled, error)

// Callback delivers one reminder text.
type Callback func(ctx context.Context, text string) error

// Counter counts delivered reminders.
type Counter interface {
	IncReminders()
}

// Scheduler periodically checks recurring purchases and sends one reminder per schedule per due day.
type Scheduler struct {
	fetch    FetchFunc
	store    Store
	log      logrus.FieldLogger
	interval time.Duration
	counter  Counter
	now      func() time.Time
}

// NewScheduler creates a scheduler. A nil store falls back to an in-memory one.
func NewScheduler(fetch FetchFunc, store Store, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if store == nil {
		store = NewMemoryStore()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		fetch:    fetch,
		store:    store,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// WithCounter sets where delivered reminders are counted.
func (s *Scheduler) WithCounter(c Counter) *Scheduler {
	s.counter = c
	return s
}

// Start checks once immediately and then on every tick. It blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, callback Callback) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval).Info("Reminder scheduler started")
	s.Check(ctx, callback)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Check(ctx, callback)
		}
	}
}

// Check sends reminders for every purchase due today that has not been reminded yet.
// It returns the number of reminders sent.
func (s *Scheduler) Check(ctx context.Context, callback Callback) int {
	schedules, err := s.fetch(ctx)
	if err != nil {
		s.log.WithError(err).Error("Failed to fetch schedule")
		return 0
	}

	sent := 0
	for _, due := range Upcoming(schedules, s.now(), 0) {
		first, err := s.store.MarkNotified(ctx, due.Schedule.ID, due.ISODate())
		if err != nil {
			s.log.WithError(err).WithField("schedule_id", due.Schedule.ID).Error("Failed to record reminder")
			continue
		}
		if !first {
			continue
		}

		if err := callback(ctx, Message(due)); err != nil {
			s.log.WithError(err).WithField("schedule_id", due.Schedule.ID).Error("Failed to send reminder")
			continue
		}
		sent++
		if s.counter != nil {
			s.counter.IncReminders()
		}
	}

	if sent > 0 {
		s.log.WithField("count", sent).Info("Reminders sent")
	}
	return sent
}

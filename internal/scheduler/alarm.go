package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mprates/dailylesson/internal/logger"
)

// Alarm fires the scheduled trigger once per day at the configured hour.
// It is the in-process stand-in for a host alarm primitive: one named
// recurring registration with a 24-hour period, where re-registering
// replaces the previous registration.
type Alarm struct {
	sched *Scheduler
	log   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// overridable in tests
	now func() time.Time
}

func NewAlarm(sched *Scheduler) *Alarm {
	return &Alarm{
		sched: sched,
		log:   logger.Default().WithPrefix("alarm"),
		now:   time.Now,
	}
}

// Register starts (or restarts) the daily firing loop. A prior
// registration is stopped first.
func (a *Alarm) Register(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.wg.Wait()
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(1)
	go a.loop(ctx)
}

// Stop halts the firing loop and waits for it to exit.
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
		a.wg.Wait()
		a.cancel = nil
	}
}

func (a *Alarm) loop(ctx context.Context) {
	defer a.wg.Done()

	for {
		hour := a.generationHour(ctx)
		next := NextOccurrence(a.now(), hour)
		a.log.Info("next scheduled generation at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			a.log.Debug("alarm loop stopped")
			return
		case <-timer.C:
		}

		if err := a.sched.Run(ctx, TriggerScheduled); err != nil {
			a.log.Error("scheduled run failed: %v", err)
		}
	}
}

func (a *Alarm) generationHour(ctx context.Context) int {
	settings, err := a.sched.settings.Get(ctx)
	if err != nil {
		a.log.Warn("failed to load settings for alarm, using default hour: %v", err)
		return 8
	}
	return settings.GenerationHour
}

// NextOccurrence returns the next wall-clock time at the given hour,
// strictly after now.
func NextOccurrence(now time.Time, hour int) time.Time {
	if hour < 0 || hour > 23 {
		hour = 8
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

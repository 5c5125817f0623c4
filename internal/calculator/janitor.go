package calculator

import (
	"fmt"
	"time"

	"go-chi-calculator/internal/observability"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const DefaultSweepInterval = time.Minute

// Janitor periodically expires idle sessions from a Store.
type Janitor struct {
	scheduler gocron.Scheduler
	store     *Store
}

// NewJanitor schedules a sweep of store every interval. The scheduler does
// not run until Start is called.
func NewJanitor(store *Store, interval time.Duration) (*Janitor, error) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	j := &Janitor{scheduler: s, store: store}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.sweep),
		gocron.WithName("calculator-session-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("scheduling session sweep: %w", err)
	}

	return j, nil
}

func (j *Janitor) Start() {
	j.scheduler.Start()
}

func (j *Janitor) Shutdown() error {
	return j.scheduler.Shutdown()
}

func (j *Janitor) sweep() {
	removed := j.store.Sweep(time.Now())
	if removed == 0 {
		return
	}

	observability.Logger.Info("expired idle calculator sessions",
		zap.Int("removed", removed),
		zap.Int("remaining", j.store.Len()),
	)
}

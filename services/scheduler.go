package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Siilah/initializers"
)

// cronLogger routes cron's own logging through the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	initializers.Log.Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	initializers.Log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Scheduler runs the presence sweep and the weekly summary job.
type Scheduler struct {
	cron *cron.Cron
}

// StartScheduler registers the recurring jobs for s and starts running them.
// An empty weeklySpec disables weekly summaries.
func StartScheduler(s *Sanctuary, sweepInterval time.Duration, weeklySpec string) (*Scheduler, error) {
	if sweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", sweepInterval)
	}

	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", sweepInterval), func() {
		s.PrunePrayingNow(s.now())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule presence sweep: %w", err)
	}

	if weeklySpec != "" {
		if _, err := c.AddFunc(weeklySpec, func() {
			s.RunWeeklySummaries(s.ctx)
		}); err != nil {
			return nil, fmt.Errorf("failed to schedule weekly summaries: %w", err)
		}
	}

	c.Start()
	initializers.Log.Infow("scheduler started", "sweepInterval", sweepInterval.String(), "weeklySummaries", weeklySpec)
	return &Scheduler{cron: c}, nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (sch *Scheduler) Stop() {
	<-sch.cron.Stop().Done()
}

package generation

import (
	"context"
	"time"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepBatch = 100

// Sweeper recovers abandoned jobs and re-announces queued ones on a cron schedule.
type Sweeper struct {
	jobs        Repository
	dispatcher  Dispatcher
	staleAfter  time.Duration
	maxAttempts int
	schedule    string
	cron        *cron.Cron
	now         func() time.Time
}

func NewSweeper(jobs Repository, dispatcher Dispatcher, staleAfter time.Duration, maxAttempts int, schedule string) *Sweeper {
	return &Sweeper{
		jobs:        jobs,
		dispatcher:  dispatcher,
		staleAfter:  staleAfter,
		maxAttempts: maxAttempts,
		schedule:    schedule,
		cron:        cron.New(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Sweeper) Sweep(ctx context.Context) error {
	log := config.WithContext(ctx).WithField("component", "sweeper")

	requeued, failed, err := s.jobs.RequeueStale(ctx, s.now().Add(-s.staleAfter), s.maxAttempts)
	if err != nil {
		log.WithError(err).Error("Failed to recover stale generation jobs")
		return err
	}
	if requeued > 0 || failed > 0 {
		log.WithFields(logrus.Fields{"requeued": requeued, "failed": failed}).Warn("Recovered stale generation jobs")
	}

	queued, err := s.jobs.ListQueued(ctx, sweepBatch)
	if err != nil {
		log.WithError(err).Error("Failed to list queued generation jobs")
		return err
	}
	for _, j := range queued {
		s.dispatcher.Dispatch(ctx, j.JobID)
	}
	if len(queued) > 0 {
		log.WithField("dispatched", len(queued)).Debug("Queued generation jobs dispatched")
	}
	return nil
}

// Start sweeps once and then on the schedule until Stop.
func (s *Sweeper) Start(ctx context.Context) error {
	_ = s.Sweep(ctx)
	if _, err := s.cron.AddFunc(s.schedule, func() { _ = s.Sweep(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

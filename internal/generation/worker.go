package generation

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Worker consumes dispatch messages and runs the jobs it manages to claim.
type Worker struct {
	jobs        Repository
	runner      *Runner
	subscriber  message.Subscriber
	messages    <-chan *message.Message
	concurrency int
	maxAttempts int
	timeout     time.Duration
	now         func() time.Time
}

func NewWorker(jobs Repository, runner *Runner, subscriber message.Subscriber, concurrency, maxAttempts int, timeout time.Duration) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Worker{
		jobs:        jobs,
		runner:      runner,
		subscriber:  subscriber,
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		timeout:     timeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe attaches the worker to the dispatch topic. Dispatches published
// before the subscription exists are lost, so call it before anything that
// dispatches when startup order matters. Run subscribes on its own otherwise.
func (w *Worker) Subscribe(ctx context.Context) error {
	if w.messages != nil {
		return nil
	}
	messages, err := w.subscriber.Subscribe(ctx, TopicGenerationRequested)
	if err != nil {
		return err
	}
	w.messages = messages
	return nil
}

// Run blocks until ctx is done, then waits for jobs in progress.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Subscribe(ctx); err != nil {
		return err
	}
	messages := w.messages

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	defer func() { _ = g.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			jobID := string(msg.Payload)
			msg.Ack()
			g.Go(func() error {
				w.Process(ctx, jobID)
				return nil
			})
		}
	}
}

// Process claims and runs one job. It returns whether this call ran the job.
func (w *Worker) Process(ctx context.Context, jobID string) bool {
	log := config.WithContext(ctx).WithField("job_id", jobID)

	claimed, err := w.jobs.Claim(ctx, jobID, w.now())
	if err != nil {
		log.WithError(err).Error("Failed to claim generation job")
		return false
	}
	if !claimed {
		log.Debug("Generation job already taken")
		return false
	}

	job, err := w.jobs.Get(ctx, jobID)
	if err != nil || job == nil {
		log.WithError(err).Error("Failed to load claimed generation job")
		return false
	}
	log = log.WithFields(logrus.Fields{"course_id": job.CourseID, "attempt": job.Attempts})
	log.Info("Generation job started")

	runCtx := config.WithLogFields(ctx, logrus.Fields{"job_id": job.JobID})
	var cancel context.CancelFunc
	if w.timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, w.timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()

	start := time.Now()
	runErr := w.runner.Run(runCtx, job)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	// Record the outcome even when shutdown canceled the run.
	finishCtx := context.WithoutCancel(ctx)
	if runErr == nil {
		if err := w.jobs.Complete(finishCtx, job.JobID, w.now()); err != nil {
			log.WithError(err).Error("Failed to mark generation job completed")
		}
		metrics.GenerationJobs.WithLabelValues(string(StatusCompleted)).Inc()
		log.Info("Generation job completed")
		return true
	}

	if ctx.Err() != nil {
		if err := w.jobs.Release(finishCtx, job.JobID); err != nil {
			log.WithError(err).Error("Failed to release interrupted generation job")
		}
		metrics.GenerationJobs.WithLabelValues("released").Inc()
		log.WithError(runErr).Info("Generation job interrupted, job requeued")
		return true
	}

	retry := job.Attempts < w.maxAttempts
	reason := runErr.Error()
	if errors.Is(runErr, context.DeadlineExceeded) {
		reason = "generation timed out: " + reason
	}
	if err := w.jobs.Fail(finishCtx, job.JobID, reason, retry, w.now()); err != nil {
		log.WithError(err).Error("Failed to record generation failure")
	}
	if retry {
		metrics.GenerationJobs.WithLabelValues("retried").Inc()
		log.WithError(runErr).Warn("Generation attempt failed, job requeued")
	} else {
		metrics.GenerationJobs.WithLabelValues(string(StatusFailed)).Inc()
		log.WithError(runErr).Error("Generation job failed")
	}
	return true
}

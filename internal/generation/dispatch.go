package generation

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/grivax/grivax-api/internal/config"
	"github.com/sirupsen/logrus"
)

const TopicGenerationRequested = "course.generation.requested"

// Dispatcher announces that a job may be ready to run. Delivery is best effort:
// failures are logged and the sweeper re-announces queued jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string)
}

type pubSubDispatcher struct {
	publisher message.Publisher
}

func NewDispatcher(publisher message.Publisher) Dispatcher {
	return &pubSubDispatcher{publisher: publisher}
}

func (d *pubSubDispatcher) Dispatch(ctx context.Context, jobID string) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(jobID))
	msg.Metadata.Set("course_job", jobID)
	if err := d.publisher.Publish(TopicGenerationRequested, msg); err != nil {
		config.WithContext(ctx).WithError(err).WithField("job_id", jobID).Warn("Failed to dispatch generation job")
	}
}

// NewPubSub builds the in-process transport shared by the API and the worker.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logAdapter{entry: logrus.WithField("component", "watermill")})
}

// logAdapter routes watermill logs through logrus.
type logAdapter struct {
	entry *logrus.Entry
}

func (l logAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l logAdapter) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l logAdapter) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l logAdapter) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l logAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return logAdapter{entry: l.entry.WithFields(logrus.Fields(fields))}
}

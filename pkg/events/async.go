package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/pkg/jobs"
)

const jobTypePublish = "event.publish"

// AsyncPublisher hands events to a worker queue so callers never wait on the
// broker. Failed deliveries are retried by the queue and then dropped.
type AsyncPublisher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAsyncPublisher wraps target with a retrying queue.
func NewAsyncPublisher(target Publisher, cfg jobs.QueueConfig) *AsyncPublisher {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(Event)
		if !ok {
			return fmt.Errorf("%w: payload %T", jobs.ErrPermanent, job.Payload)
		}
		publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return target.Publish(publishCtx, event)
	}
	return &AsyncPublisher{
		queue:  jobs.NewQueue("events", handler, cfg),
		logger: cfg.Logger,
	}
}

// Start launches the queue workers.
func (p *AsyncPublisher) Start(ctx context.Context) {
	p.queue.Start(ctx)
}

// Stop drains nothing; pending events are lost on shutdown.
func (p *AsyncPublisher) Stop() {
	p.queue.Stop()
}

// Publish implements Publisher. It only fails when the queue refuses the event.
func (p *AsyncPublisher) Publish(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return p.queue.TryEnqueue(jobs.Job{ID: event.ID, Type: jobTypePublish, Payload: event})
}

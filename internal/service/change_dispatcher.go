package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/pkg/jobs"
)

type eventPublisher interface {
	Publish(ctx context.Context, evt models.ChangeEvent) error
}

type jobQueue interface {
	Handle(jobType, name string, handler jobs.Handler)
	Enqueue(job jobs.Job) error
}

const invalidationTimeout = 2 * time.Second

// ChangeDispatcher reacts to coordinator change events. Dashboard caches are
// invalidated before the write returns; publication to the broker, when one
// is configured, runs as a queued job.
type ChangeDispatcher struct {
	queue     jobQueue
	cache     *CacheService
	publisher eventPublisher
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewChangeDispatcher registers its handlers on queue. cache and publisher may
// be nil.
func NewChangeDispatcher(queue jobQueue, cache *CacheService, publisher eventPublisher, metrics *MetricsService, logger *zap.Logger) *ChangeDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &ChangeDispatcher{queue: queue, cache: cache, publisher: publisher, metrics: metrics, logger: logger}
	if publisher != nil {
		queue.Handle(jobs.Wildcard, "event-publisher", d.publish)
	}
	return d
}

// Listener returns the coordinator subscription callback.
func (d *ChangeDispatcher) Listener() ChangeListener {
	return func(evt models.ChangeEvent) {
		d.invalidate(evt)
		if d.publisher == nil {
			return
		}
		err := d.queue.Enqueue(jobs.Job{Type: string(evt.Type), Payload: evt})
		d.metrics.ObserveChangeEvent(string(evt.Type), err == nil)
		if err != nil {
			d.logger.Warn("change event not queued", zap.String("type", string(evt.Type)), zap.Error(err))
		}
	}
}

func (d *ChangeDispatcher) invalidate(evt models.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()
	if err := d.cache.InvalidateChange(ctx, evt); err != nil {
		d.logger.Warn("dashboard cache invalidation failed", zap.String("type", string(evt.Type)), zap.Error(err))
	}
}

func (d *ChangeDispatcher) publish(ctx context.Context, job jobs.Job) error {
	evt, err := changeEvent(job)
	if err != nil {
		return err
	}
	return d.publisher.Publish(ctx, evt)
}

func changeEvent(job jobs.Job) (models.ChangeEvent, error) {
	evt, ok := job.Payload.(models.ChangeEvent)
	if !ok {
		return models.ChangeEvent{}, errors.New("job payload is not a change event")
	}
	return evt, nil
}

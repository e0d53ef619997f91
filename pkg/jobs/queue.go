package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Wildcard routes every job type to a handler.
const Wildcard = "*"

var (
	// ErrQueueFull is returned when the buffer cannot take another delivery.
	ErrQueueFull = errors.New("queue full")
	// ErrNotStarted is returned when enqueueing before Start or after Stop.
	ErrNotStarted = errors.New("queue not started")
)

// Job represents a queued background task.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type route struct {
	name    string
	handler Handler
}

// delivery pairs a job with one of its routes so retries only repeat the
// handler that failed.
type delivery struct {
	job     Job
	route   route
	attempt int
}

// Queue dispatches jobs to the handlers registered for their type on a fixed
// pool of goroutines. Enqueue never blocks.
type Queue struct {
	name string

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	deliveries chan delivery

	mu      sync.RWMutex
	routes  map[string][]route
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewQueue builds a queue; register handlers with Handle before Start.
func NewQueue(name string, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue{
		name:       name,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		deliveries: make(chan delivery, cfg.BufferSize),
		routes:     make(map[string][]route),
	}
}

// Handle registers handler under name for jobs of jobType. Use Wildcard to
// receive every job.
func (q *Queue) Handle(jobType, name string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.routes[jobType] = append(q.routes[jobType], route{name: name, handler: handler})
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop cancels workers and waits for them to exit. Pending deliveries are
// discarded.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue hands job to every matching handler. It returns ErrQueueFull when
// the buffer is exhausted; deliveries accepted before that still run.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	started := q.started
	routes := append(append([]route(nil), q.routes[job.Type]...), q.routes[Wildcard]...)
	q.mu.RUnlock()

	if !started {
		return fmt.Errorf("queue %s: %w", q.name, ErrNotStarted)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	for _, r := range routes {
		if err := q.push(delivery{job: job, route: r}); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) push(d delivery) error {
	select {
	case q.deliveries <- d:
		return nil
	default:
		q.logger.Warn("queue full, dropping delivery",
			zap.String("queue", q.name),
			zap.String("job_id", d.job.ID),
			zap.String("handler", d.route.name),
		)
		return fmt.Errorf("queue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case d := <-q.deliveries:
			if err := d.route.handler(q.ctx, d.job); err != nil {
				q.handleFailure(d, err)
			}
		}
	}
}

func (q *Queue) handleFailure(d delivery, err error) {
	d.attempt++
	fields := []zap.Field{
		zap.String("queue", q.name),
		zap.String("job_id", d.job.ID),
		zap.String("type", d.job.Type),
		zap.String("handler", d.route.name),
		zap.Int("attempt", d.attempt),
		zap.Error(err),
	}
	if d.attempt > q.maxRetries {
		q.logger.Error("job exceeded retries", fields...)
		return
	}
	q.logger.Warn("job failed, retrying", fields...)

	ctx := q.ctx
	go func() {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			_ = q.push(d)
		}
	}()
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acs-institute-api/internal/models"
	"github.com/noah-isme/acs-institute-api/pkg/jobs"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestChangeDispatcherInvalidatesAndPublishes(t *testing.T) {
	queue := jobs.NewQueue("changes", jobs.QueueConfig{Workers: 1, BufferSize: 16})
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	publisher := &recordingPublisher{}
	dispatcher := NewChangeDispatcher(queue, cache, publisher, NewMetricsService(), nil)
	queue.Start(context.Background())
	defer queue.Stop()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, adminStatsCacheKey, 1, 0))

	c, _ := newMemoryCoordinator(t)
	c.Subscribe(dispatcher.Listener())
	_, err := c.AddEnrollment(ctx, samplePayload("a@x.com"))
	require.NoError(t, err)
	assert.False(t, repo.has(adminStatsCacheKey))

	assert.Eventually(t, func() bool { return publisher.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.ChangeEnrollmentAdded, publisher.events[0].Type)
}

func TestChangeDispatcherWithoutPublisher(t *testing.T) {
	queue := jobs.NewQueue("changes", jobs.QueueConfig{Workers: 1, BufferSize: 4})
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	dispatcher := NewChangeDispatcher(queue, cache, nil, nil, nil)
	queue.Start(context.Background())
	defer queue.Stop()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, studentDashboardKey("b@x.com"), 1, 0))
	dispatcher.Listener()(models.ChangeEvent{Type: models.ChangeRefreshed})

	assert.False(t, repo.has(studentDashboardKey("b@x.com")))
}

func TestChangeDispatcherRejectsForeignPayload(t *testing.T) {
	_, err := changeEvent(jobs.Job{Payload: "nope"})
	assert.Error(t, err)
}

func TestChangeDispatcherListenerSurvivesStoppedQueue(t *testing.T) {
	queue := jobs.NewQueue("changes", jobs.QueueConfig{})
	dispatcher := NewChangeDispatcher(queue, nil, &recordingPublisher{err: errors.New("down")}, nil, nil)
	assert.NotPanics(t, func() {
		dispatcher.Listener()(models.ChangeEvent{Type: models.ChangeEnrollmentUpdated})
	})
}

func TestChangeDispatcherInvalidatesWhenQueueRejects(t *testing.T) {
	queue := jobs.NewQueue("changes", jobs.QueueConfig{Workers: 1, BufferSize: 1})
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	dispatcher := NewChangeDispatcher(queue, cache, &recordingPublisher{}, nil, nil)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, adminStatsCacheKey, 1, 0))
	require.NoError(t, cache.Set(ctx, studentDashboardKey("a@x.com"), 1, 0))

	dispatcher.Listener()(models.ChangeEvent{Type: models.ChangeEnrollmentAdded, StudentEmail: "a@x.com"})

	assert.False(t, repo.has(adminStatsCacheKey))
	assert.False(t, repo.has(studentDashboardKey("a@x.com")))
}

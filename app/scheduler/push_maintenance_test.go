package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petrodesk/petrodesk/repository"
	"github.com/stretchr/testify/assert"
)

type blockingSubscriptionRepo struct {
	repository.PushSubscriptionRepository
	calls   atomic.Int32
	release chan struct{}
}

func (r *blockingSubscriptionRepo) DeleteRefreshedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.calls.Add(1)
	<-r.release
	return 0, nil
}

type countingNotificationRepo struct {
	repository.NotificationRepository
	calls atomic.Int32
}

func (r *countingNotificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.calls.Add(1)
	return 0, nil
}

type countingSessionRepo struct {
	repository.UserSessionRepository
	calls atomic.Int32
}

func (r *countingSessionRepo) CleanupExpiredSessions(ctx context.Context) error {
	r.calls.Add(1)
	return nil
}

func TestMaintenanceRunsDoNotOverlap(t *testing.T) {
	subscriptionRepo := &blockingSubscriptionRepo{release: make(chan struct{})}
	notificationRepo := &countingNotificationRepo{}
	sessionRepo := &countingSessionRepo{}

	s := NewMaintenanceScheduler(subscriptionRepo, notificationRepo, sessionRepo, nil, time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runOnce(context.Background())
	}()

	// Wait for the first pass to enter the blocking prune call
	for subscriptionRepo.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A second invocation while the first is in flight must bail out
	// before touching any repo
	s.runOnce(context.Background())
	assert.Equal(t, int32(1), subscriptionRepo.calls.Load())

	close(subscriptionRepo.release)
	wg.Wait()
	assert.Equal(t, int32(1), notificationRepo.calls.Load())
	assert.Equal(t, int32(1), sessionRepo.calls.Load())

	// The guard resets once the pass finishes
	s.runOnce(context.Background())
	assert.Equal(t, int32(2), subscriptionRepo.calls.Load())
}

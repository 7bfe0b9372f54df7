// Package scheduler
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
)

// MaintenanceScheduler periodically prunes stale push tokens, expired
// notifications and expired sessions
type MaintenanceScheduler struct {
	subscriptionRepo repository.PushSubscriptionRepository
	notificationRepo repository.NotificationRepository
	sessionRepo      repository.UserSessionRepository
	logger           *log.Logger
	interval         time.Duration

	running atomic.Bool
}

func NewMaintenanceScheduler(
	subscriptionRepo repository.PushSubscriptionRepository,
	notificationRepo repository.NotificationRepository,
	sessionRepo repository.UserSessionRepository,
	logger *log.Logger,
	interval time.Duration,
) *MaintenanceScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}

	return &MaintenanceScheduler{
		subscriptionRepo: subscriptionRepo,
		notificationRepo: notificationRepo,
		sessionRepo:      sessionRepo,
		logger:           logger,
		interval:         interval,
	}
}

// Start launches the maintenance loop and returns a stop function
func (s *MaintenanceScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

// runOnce skips when a previous pass is still in flight, so a slow pass
// never overlaps a later tick or a second Start loop
func (s *MaintenanceScheduler) runOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	defer s.running.Store(false)

	now := utils.UTCNow()

	cutoff := now.Add(-utils.PushTokenStaleTTL)
	pruned, err := s.subscriptionRepo.DeleteRefreshedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Printf("maintenance: prune stale push tokens failed: %v", err)
	} else if pruned > 0 {
		s.logger.Printf("maintenance: pruned %d stale push tokens", pruned)
	}

	expired, err := s.notificationRepo.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Printf("maintenance: delete expired notifications failed: %v", err)
	} else if expired > 0 {
		s.logger.Printf("maintenance: deleted %d expired notifications", expired)
	}

	if err := s.sessionRepo.CleanupExpiredSessions(ctx); err != nil {
		s.logger.Printf("maintenance: cleanup expired sessions failed: %v", err)
	}
}

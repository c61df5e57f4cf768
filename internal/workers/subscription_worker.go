package workers

import (
	"context"
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
)

// SubscriptionWorker expires lapsed subscriptions and cleans up stale
// refresh tokens on a fixed cadence.
type SubscriptionWorker struct {
	subRepo   repositories.SubscriptionRepository
	tokenRepo repositories.RefreshTokenRepository
}

func NewSubscriptionWorker(
	subRepo repositories.SubscriptionRepository,
	tokenRepo repositories.RefreshTokenRepository,
) *SubscriptionWorker {
	return &SubscriptionWorker{subRepo: subRepo, tokenRepo: tokenRepo}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireLoop(ctx)
	go w.tokenCleanupLoop(ctx)
}

func (w *SubscriptionWorker) expireLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			expired, err := w.subRepo.ExpireLapsed()
			if err != nil {
				logger.WorkerLog("subscription", "expire lapsed", err)
				continue
			}
			if expired > 0 {
				logger.Info("subscriptions expired", "count", expired)
			}
		}
	}
}

func (w *SubscriptionWorker) tokenCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := w.tokenRepo.DeleteExpired()
			if err != nil {
				logger.WorkerLog("subscription", "delete expired tokens", err)
				continue
			}
			if deleted > 0 {
				logger.Info("expired refresh tokens removed", "count", deleted)
			}
		}
	}
}

package workers

import (
	"context"
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
)

// LocationWorker flips providers offline once their position reports
// go quiet, so the dispatch map stops showing ghosts.
type LocationWorker struct {
	statsRepo repositories.StatsRepository
	staleAge  time.Duration
}

func NewLocationWorker(statsRepo repositories.StatsRepository, staleAge time.Duration) *LocationWorker {
	return &LocationWorker{statsRepo: statsRepo, staleAge: staleAge}
}

func (w *LocationWorker) Start(ctx context.Context) {
	go w.sweepLoop(ctx)
}

func (w *LocationWorker) sweepLoop(ctx context.Context) {
	// Sweep at half the staleness window so a provider is never shown
	// online much longer than the window itself.
	ticker := time.NewTicker(w.staleAge / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("location worker stopped")
			return
		case <-ticker.C:
			flipped, err := w.statsRepo.MarkStaleOffline(w.staleAge)
			if err != nil {
				logger.WorkerLog("location", "mark stale offline", err)
				continue
			}
			if flipped > 0 {
				logger.Info("providers marked offline", "count", flipped)
			}
		}
	}
}

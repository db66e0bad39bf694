package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"guildgate/utils"
)

// Ticker advances rollout schedules.
type Ticker interface {
	Tick(ctx context.Context) (int, error)
}

// RolloutWorker calls Tick on a fixed interval. At most one tick runs at a
// time in the process, whether triggered by the timer or by TickNow.
type RolloutWorker struct {
	engine   Ticker
	interval time.Duration
	logger   logrus.FieldLogger
	mu       sync.Mutex
}

func NewRolloutWorker(engine Ticker, interval time.Duration, logger logrus.FieldLogger) *RolloutWorker {
	return &RolloutWorker{
		engine:   engine,
		interval: interval,
		logger:   logger.WithField("component", "rollout_worker"),
	}
}

// Start blocks until ctx is cancelled. It ticks once immediately so a
// restarted process catches up without waiting a full interval.
func (w *RolloutWorker) Start(ctx context.Context) {
	w.logger.WithField("interval", w.interval.String()).Info("Rollout worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.TickNow(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Rollout worker shutting down...")
			return
		case <-ticker.C:
			w.TickNow(ctx)
		}
	}
}

// TickNow runs one tick unless another is already in flight. It reports
// whether a tick ran; failures are logged and left for the next interval.
func (w *RolloutWorker) TickNow(ctx context.Context) (bool, error) {
	if !w.mu.TryLock() {
		w.logger.Debug("Rollout tick already in flight, skipping")
		return false, nil
	}
	defer w.mu.Unlock()

	started := time.Now()
	updated, err := w.engine.Tick(ctx)
	if err != nil {
		utils.LogError(w.logger, "rollout_tick", err, map[string]interface{}{
			"updated": updated,
		})
		return true, err
	}
	w.logger.WithFields(logrus.Fields{
		"updated":  updated,
		"duration": time.Since(started).String(),
	}).Debug("Rollout tick finished")
	return true, nil
}

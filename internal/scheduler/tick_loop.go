package scheduler

import (
	"context"
	"time"

	"nurture_backend/platform/config"
	"nurture_backend/platform/logger"
)

const defaultTickInterval = time.Minute

// TickLoop enqueues a dispatch tick task on a fixed interval. It is the only
// producer of dispatch ticks; the worker consumes them, so multiple worker
// replicas never need their own timers.
type TickLoop struct {
	client   *Client
	interval time.Duration
	log      *logger.Logger
}

func NewTickLoop(cfg config.SchedulerConfig, client *Client, log *logger.Logger) *TickLoop {
	interval := cfg.GetDispatchTickInterval()
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &TickLoop{
		client:   client,
		interval: interval,
		log:      log,
	}
}

func (l *TickLoop) Run(ctx context.Context) {
	if l == nil || l.client == nil {
		return
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("dispatch tick loop started", "interval", l.interval)

	for {
		var now time.Time
		select {
		case <-ctx.Done():
			return
		case now = <-ticker.C:
		}

		if err := l.client.EnqueueTick(ctx, now); err != nil {
			l.log.Warn("dispatch tick enqueue failed", "error", err)
		}
	}
}

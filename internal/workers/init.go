package workers

import (
	"context"
	"time"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/metrics"
)

type WorkersContainer struct {
	Notifications *NotificationWorker
	Monitor       *NotificationQueueMonitor
}

// InitWorkers starts the notification consumers and the queue monitor. Both
// stop when ctx is cancelled.
func InitWorkers(
	ctx context.Context,
	cfg config.NotifyConfig,
	queue common.NotificationQueue,
	deliverer Deliverer,
	metricsReg *metrics.MetricsRegistry,
) *WorkersContainer {
	worker := NewNotificationWorker("notify", queue, deliverer, metricsReg, cfg.MaxAttempts, cfg.BlockTime)
	monitor := NewNotificationQueueMonitor(queue, worker, metricsReg, cfg.StaleAfter)

	go worker.Start(ctx, cfg.Workers)
	go monitor.Start(ctx, 30*time.Second)

	return &WorkersContainer{Notifications: worker, Monitor: monitor}
}

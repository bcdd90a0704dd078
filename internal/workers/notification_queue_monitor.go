package workers

import (
	"context"
	"time"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
)

const (
	highPendingThreshold = 1000
	highQueueThreshold   = 5000
	streamMaxLen         = 100000
)

type streamTrimmer interface {
	TrimStream(ctx context.Context, maxLen int64) error
}

// NotificationQueueMonitor publishes queue depth and re-drives messages a
// crashed consumer left pending.
type NotificationQueueMonitor struct {
	queue      common.NotificationQueue
	worker     *NotificationWorker
	metrics    *metrics.MetricsRegistry
	staleAfter time.Duration
}

func NewNotificationQueueMonitor(queue common.NotificationQueue, worker *NotificationWorker, metricsReg *metrics.MetricsRegistry, staleAfter time.Duration) *NotificationQueueMonitor {
	return &NotificationQueueMonitor{queue: queue, worker: worker, metrics: metricsReg, staleAfter: staleAfter}
}

func (m *NotificationQueueMonitor) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Starting notification queue monitor", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info("Notification queue monitor shutting down")
			return
		case <-ticker.C:
			m.Check(ctx)
			m.ReclaimStale(ctx)
		}
	}
}

// Check records queue depth and warns when it backs up
func (m *NotificationQueueMonitor) Check(ctx context.Context) common.QueueStats {
	stats, err := m.queue.Stats(ctx)
	if err != nil {
		logging.Warn("Failed to read notification queue stats", "error", err)
		return stats
	}
	m.metrics.QueueDepth(stats.Length, stats.Pending, stats.DeadLetter)

	switch {
	case stats.Pending > highPendingThreshold:
		logging.Warn("Notification queue has high pending count", "pending", stats.Pending)
	case stats.Length > highQueueThreshold:
		logging.Warn("Notification queue is backing up", "length", stats.Length)
	}

	if t, ok := m.queue.(streamTrimmer); ok && stats.Length > streamMaxLen {
		if err := t.TrimStream(ctx, streamMaxLen); err != nil {
			logging.Warn("Failed to trim notification stream", "error", err)
		}
	}
	return stats
}

// ReclaimStale processes messages idle longer than staleAfter
func (m *NotificationQueueMonitor) ReclaimStale(ctx context.Context) int {
	jobs, ids, err := m.queue.ClaimStale(ctx, "notification-reclaimer", m.staleAfter)
	if err != nil {
		logging.Warn("Failed to claim stale notifications", "error", err)
		return 0
	}
	if len(jobs) == 0 {
		return 0
	}

	logging.Info("Claimed stale notifications", "count", len(jobs))
	for i, job := range jobs {
		m.worker.ProcessOne(ctx, job)
		if err := m.queue.Ack(ctx, ids[i]); err != nil {
			logging.Warn("Failed to ack reclaimed notification", "message_id", ids[i], "error", err)
		}
	}
	return len(jobs)
}

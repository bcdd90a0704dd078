package jobs

import (
	"context"
	"time"

	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
)

// DuePublisher is implemented by services.AnnouncementService
type DuePublisher interface {
	PublishDue(ctx context.Context) (int, error)
}

// ScheduledAnnouncementJob sends announcements whose scheduled time has passed
type ScheduledAnnouncementJob struct {
	announcements DuePublisher
	metrics       *metrics.MetricsRegistry
}

func NewScheduledAnnouncementJob(announcements DuePublisher, metricsReg *metrics.MetricsRegistry) *ScheduledAnnouncementJob {
	return &ScheduledAnnouncementJob{announcements: announcements, metrics: metricsReg}
}

func (j *ScheduledAnnouncementJob) Run(ctx context.Context) error {
	start := time.Now()
	sent, err := j.announcements.PublishDue(ctx)
	j.metrics.ObserveJob("scheduled_announcements", time.Since(start).Seconds())
	if err != nil {
		return err
	}
	if sent > 0 {
		logging.Info("Published scheduled announcements", "count", sent)
	}
	return nil
}

func (j *ScheduledAnnouncementJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		logging.Error("Scheduled announcement job failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("Scheduled announcement job failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Scheduled announcement job shutting down")
			return
		}
	}
}

package jobs

import (
	"context"
	"time"

	"greek-row/chapterhouse/internal/metrics"
)

const provisioningStaleAfter = 10 * time.Minute

type JobsContainer struct {
	Announcements *ScheduledAnnouncementJob
	Provisioning  *ProvisioningReconcileJob
}

// InitializeJobs starts the background jobs; they stop with ctx
func InitializeJobs(ctx context.Context, announcements DuePublisher, invitations Reconciler, metricsReg *metrics.MetricsRegistry) *JobsContainer {
	announcementJob := NewScheduledAnnouncementJob(announcements, metricsReg)
	reconcileJob := NewProvisioningReconcileJob(invitations, metricsReg, provisioningStaleAfter)

	go announcementJob.RunScheduled(ctx, time.Minute)
	go reconcileJob.RunScheduled(ctx, 5*time.Minute)

	return &JobsContainer{Announcements: announcementJob, Provisioning: reconcileJob}
}

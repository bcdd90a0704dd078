package jobs

import (
	"context"
	"time"

	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
)

// Reconciler is implemented by services.InvitationService
type Reconciler interface {
	ReconcileProvisioning(ctx context.Context, staleAfter time.Duration) (int, error)
}

// ProvisioningReconcileJob retries failed compensations and settles
// provisioning records a crashed request left pending.
type ProvisioningReconcileJob struct {
	invitations Reconciler
	metrics     *metrics.MetricsRegistry
	staleAfter  time.Duration
}

func NewProvisioningReconcileJob(invitations Reconciler, metricsReg *metrics.MetricsRegistry, staleAfter time.Duration) *ProvisioningReconcileJob {
	return &ProvisioningReconcileJob{invitations: invitations, metrics: metricsReg, staleAfter: staleAfter}
}

func (j *ProvisioningReconcileJob) Run(ctx context.Context) error {
	start := time.Now()
	settled, err := j.invitations.ReconcileProvisioning(ctx, j.staleAfter)
	j.metrics.ObserveJob("provisioning_reconcile", time.Since(start).Seconds())
	if settled > 0 {
		logging.Info("Reconciled provisioning records", "count", settled)
	}
	return err
}

func (j *ProvisioningReconcileJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("Provisioning reconcile job failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Provisioning reconcile job shutting down")
			return
		}
	}
}

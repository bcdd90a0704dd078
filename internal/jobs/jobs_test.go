package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPublisher struct {
	calls atomic.Int32
	err   error
}

func (p *countingPublisher) PublishDue(context.Context) (int, error) {
	p.calls.Add(1)
	return 1, p.err
}

type countingReconciler struct {
	calls      atomic.Int32
	staleAfter time.Duration
}

func (r *countingReconciler) ReconcileProvisioning(_ context.Context, staleAfter time.Duration) (int, error) {
	r.calls.Add(1)
	r.staleAfter = staleAfter
	return 2, nil
}

func TestScheduledAnnouncementJob(t *testing.T) {
	pub := &countingPublisher{}
	job := NewScheduledAnnouncementJob(pub, nil)
	assert.NoError(t, job.Run(context.Background()))

	pub.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))
}

func TestScheduledAnnouncementJob_RunsImmediatelyThenOnTicks(t *testing.T) {
	pub := &countingPublisher{}
	job := NewScheduledAnnouncementJob(pub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.RunScheduled(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pub.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestProvisioningReconcileJob(t *testing.T) {
	rec := &countingReconciler{}
	job := NewProvisioningReconcileJob(rec, nil, 7*time.Minute)

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, 7*time.Minute, rec.staleAfter)
}

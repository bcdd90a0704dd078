package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/services"
)

// scriptedDeliverer returns reports from fn and records every job it sees
type scriptedDeliverer struct {
	mu   sync.Mutex
	seen []*common.NotificationJob
	fn   func(job *common.NotificationJob) services.DeliveryReport
}

func (d *scriptedDeliverer) Deliver(_ context.Context, job *common.NotificationJob) services.DeliveryReport {
	d.mu.Lock()
	d.seen = append(d.seen, job)
	d.mu.Unlock()
	return d.fn(job)
}

func (d *scriptedDeliverer) Seen() []*common.NotificationJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*common.NotificationJob(nil), d.seen...)
}

func newJob() *common.NotificationJob {
	job := common.NewNotificationJob(constants.NotifyAnnouncement, "chapter-1")
	job.SendEmail, job.SendSMS = true, true
	return job
}

func drain(t *testing.T, q *common.LocalQueue) []*common.NotificationJob {
	t.Helper()
	var out []*common.NotificationJob
	for {
		job, _, err := q.Dequeue(context.Background(), "test", 10*time.Millisecond)
		require.NoError(t, err)
		if job == nil {
			return out
		}
		out = append(out, job)
	}
}

func TestProcessOne_Success(t *testing.T) {
	q := common.NewLocalQueue(8)
	d := &scriptedDeliverer{fn: func(*common.NotificationJob) services.DeliveryReport {
		return services.DeliveryReport{Recipients: 3, EmailAttempted: 3}
	}}
	w := NewNotificationWorker("test", q, d, nil, 3, time.Millisecond)

	assert.True(t, w.ProcessOne(context.Background(), newJob()))
	assert.Empty(t, drain(t, q))
	assert.Empty(t, q.DeadLettered())
}

func TestProcessOne_SplitsRetriesPerChannel(t *testing.T) {
	q := common.NewLocalQueue(8)
	d := &scriptedDeliverer{fn: func(*common.NotificationJob) services.DeliveryReport {
		return services.DeliveryReport{
			Recipients:         3,
			FailedEmailUserIDs: []string{"u1"},
			FailedSMSUserIDs:   []string{"u2", "u3"},
			LastError:          errors.New("provider error"),
		}
	}}
	w := NewNotificationWorker("test", q, d, nil, 3, time.Millisecond)

	assert.False(t, w.ProcessOne(context.Background(), newJob()))

	requeued := drain(t, q)
	require.Len(t, requeued, 2)
	assert.Equal(t, []string{"u1"}, requeued[0].UserIDs)
	assert.True(t, requeued[0].SendEmail)
	assert.False(t, requeued[0].SendSMS)
	assert.Equal(t, []string{"u2", "u3"}, requeued[1].UserIDs)
	assert.False(t, requeued[1].SendEmail)
	for _, j := range requeued {
		assert.Equal(t, 1, j.Attempt)
		assert.Equal(t, "provider error", j.LastError)
	}
}

func TestProcessOne_DeadLettersAfterMaxAttempts(t *testing.T) {
	q := common.NewLocalQueue(8)
	d := &scriptedDeliverer{fn: func(*common.NotificationJob) services.DeliveryReport {
		return services.DeliveryReport{LastError: errors.New("database unavailable")}
	}}
	w := NewNotificationWorker("test", q, d, nil, 3, time.Millisecond)
	ctx := context.Background()

	job := newJob()
	for attempt := 1; attempt < 3; attempt++ {
		require.False(t, w.ProcessOne(ctx, job))
		requeued := drain(t, q)
		require.Len(t, requeued, 1)
		assert.Equal(t, attempt, requeued[0].Attempt)
		assert.Equal(t, job.ID, requeued[0].ID)
		job = requeued[0]
	}

	require.False(t, w.ProcessOne(ctx, job))
	assert.Empty(t, drain(t, q))
	dead := q.DeadLettered()
	require.Len(t, dead, 1)
	assert.Equal(t, 3, dead[0].Attempt)
	assert.Equal(t, "database unavailable", dead[0].LastError)
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	q := common.NewLocalQueue(8)
	d := &scriptedDeliverer{fn: func(*common.NotificationJob) services.DeliveryReport {
		return services.DeliveryReport{Recipients: 1, EmailAttempted: 1}
	}}
	w := NewNotificationWorker("test", q, d, nil, 3, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 4; i++ {
		require.NoError(t, q.Enqueue(ctx, newJob()))
	}

	done := make(chan struct{})
	go func() {
		w.Start(ctx, 2)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(d.Seen()) == 4 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestStart_FullQueueDeadLettersRetryInsteadOfBlocking(t *testing.T) {
	q := common.NewLocalQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	d := &scriptedDeliverer{}
	d.fn = func(*common.NotificationJob) services.DeliveryReport {
		failed := false
		once.Do(func() {
			// a handler publishes while the worker is busy, filling the buffer
			assert.NoError(t, q.Enqueue(ctx, newJob()))
			failed = true
		})
		if failed {
			return services.DeliveryReport{
				Recipients:         1,
				EmailAttempted:     1,
				FailedEmailUserIDs: []string{"u1"},
				LastError:          errors.New("smtp timeout"),
			}
		}
		return services.DeliveryReport{Recipients: 1, EmailAttempted: 1}
	}
	w := NewNotificationWorker("test", q, d, nil, 3, 10*time.Millisecond)
	w.requeueTimeout = 50 * time.Millisecond

	require.NoError(t, q.Enqueue(ctx, newJob()))
	go w.Start(ctx, 1)

	assert.Eventually(t, func() bool { return len(d.Seen()) >= 2 }, time.Second, 5*time.Millisecond)

	dead := q.DeadLettered()
	require.Len(t, dead, 1)
	assert.Equal(t, []string{"u1"}, dead[0].UserIDs)
	assert.Contains(t, dead[0].LastError, "requeue")

	publishCtx, publishCancel := context.WithTimeout(ctx, time.Second)
	defer publishCancel()
	require.NoError(t, q.Enqueue(publishCtx, newJob()))
	assert.Eventually(t, func() bool { return len(d.Seen()) >= 3 }, time.Second, 5*time.Millisecond)
}

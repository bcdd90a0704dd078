package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/metrics"
	"greek-row/chapterhouse/internal/services"
)

// Deliverer performs one fan-out. Implemented by services.NotificationService.
type Deliverer interface {
	Deliver(ctx context.Context, job *common.NotificationJob) services.DeliveryReport
}

// NotificationWorker consumes the notification queue
type NotificationWorker struct {
	workerID    string
	queue       common.NotificationQueue
	deliverer   Deliverer
	metrics     *metrics.MetricsRegistry
	maxAttempts int
	blockTime   time.Duration
	// requeueTimeout bounds a retry enqueue; workers feed the queue they drain
	requeueTimeout time.Duration
}

const defaultRequeueTimeout = 2 * time.Second

func NewNotificationWorker(
	workerID string,
	queue common.NotificationQueue,
	deliverer Deliverer,
	metricsReg *metrics.MetricsRegistry,
	maxAttempts int,
	blockTime time.Duration,
) *NotificationWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if blockTime <= 0 {
		blockTime = 5 * time.Second
	}
	return &NotificationWorker{
		workerID:       workerID,
		queue:          queue,
		deliverer:      deliverer,
		metrics:        metricsReg,
		maxAttempts:    maxAttempts,
		blockTime:      blockTime,
		requeueTimeout: defaultRequeueTimeout,
	}
}

// Start runs numWorkers consumers and blocks until ctx is cancelled
func (w *NotificationWorker) Start(ctx context.Context, numWorkers int) {
	logging.Info("Starting notification workers", "workers", numWorkers, "worker_id", w.workerID)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		consumer := fmt.Sprintf("%s-%d", w.workerID, i)
		go func() {
			defer wg.Done()
			w.processQueue(ctx, consumer)
		}()
	}
	wg.Wait()
	logging.Info("Notification workers stopped", "worker_id", w.workerID)
}

func (w *NotificationWorker) processQueue(ctx context.Context, consumer string) {
	processed, failed := 0, 0

	for {
		select {
		case <-ctx.Done():
			logging.Info("Notification consumer shutting down",
				"consumer", consumer, "processed", processed, "failed", failed)
			return
		default:
		}

		job, messageID, err := w.queue.Dequeue(ctx, consumer, w.blockTime)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logging.Warn("Error dequeuing notification", "consumer", consumer, "error", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if w.ProcessOne(ctx, job) {
			processed++
		} else {
			failed++
		}

		if err := w.queue.Ack(ctx, messageID); err != nil {
			logging.Warn("Error acknowledging notification", "consumer", consumer, "message_id", messageID, "error", err)
		}
	}
}

// ProcessOne delivers job and schedules follow-ups for whatever failed.
// Returns true when every channel succeeded first time.
func (w *NotificationWorker) ProcessOne(ctx context.Context, job *common.NotificationJob) bool {
	start := time.Now()
	report := w.deliverer.Deliver(ctx, job)
	w.metrics.ObserveJob("notification_delivery", time.Since(start).Seconds())

	var retries []*common.NotificationJob
	switch {
	case report.Failed():
		retries = services.RetryJobs(job, report)
	case report.LastError != nil:
		// recipients could not be resolved; retry the job as a whole
		retry := *job
		retry.Attempt = job.Attempt + 1
		retry.LastError = report.LastError.Error()
		retries = append(retries, &retry)
	default:
		w.metrics.NotificationJob("delivered")
		return true
	}

	for _, retry := range retries {
		w.requeue(ctx, retry)
	}
	return false
}

func (w *NotificationWorker) requeue(ctx context.Context, job *common.NotificationJob) {
	if job.Attempt >= w.maxAttempts {
		if err := w.queue.DeadLetter(ctx, job); err != nil {
			logging.Error("Failed to dead-letter notification", "job_id", job.ID, "error", err)
		}
		w.metrics.NotificationJob("dead_lettered")
		return
	}

	enqueueCtx, cancel := context.WithTimeout(ctx, w.requeueTimeout)
	err := w.queue.Enqueue(enqueueCtx, job)
	cancel()
	if err == nil {
		w.metrics.NotificationJob("retried")
		return
	}

	logging.Error("Failed to requeue notification, dead-lettering", "job_id", job.ID, "attempt", job.Attempt, "error", err)
	w.metrics.NotificationJob("requeue_failed")
	job.LastError = fmt.Sprintf("requeue: %v", err)
	if err := w.queue.DeadLetter(ctx, job); err != nil {
		logging.Error("Failed to dead-letter notification", "job_id", job.ID, "error", err)
	}
}

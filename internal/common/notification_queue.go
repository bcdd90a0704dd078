package common

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/logging"
)

// NotificationJob is one fan-out request. Recipients are either every active
// chapter member holding one of Roles, or exactly UserIDs when set.
type NotificationJob struct {
	ID        string                     `json:"id"`
	Kind      constants.NotificationKind `json:"kind"`
	ChapterID string                     `json:"chapter_id"`
	Roles     []constants.MemberRole     `json:"roles,omitempty"`
	UserIDs   []string                   `json:"user_ids,omitempty"`
	Subject   string                     `json:"subject"`
	Body      string                     `json:"body"`
	SMSBody   string                     `json:"sms_body,omitempty"`
	SendEmail bool                       `json:"send_email"`
	SendSMS   bool                       `json:"send_sms"`
	Attempt   int                        `json:"attempt"`
	LastError string                     `json:"last_error,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

// NewNotificationJob stamps id and creation time
func NewNotificationJob(kind constants.NotificationKind, chapterID string) *NotificationJob {
	return &NotificationJob{
		ID:        ulid.Make().String(),
		Kind:      kind,
		ChapterID: chapterID,
		CreatedAt: time.Now().UTC(),
	}
}

// QueueStats is a point-in-time view of a queue
type QueueStats struct {
	Length     int64
	Pending    int64
	DeadLetter int64
}

// NotificationQueue is the outbox between request handlers and delivery workers
type NotificationQueue interface {
	Enqueue(ctx context.Context, job *NotificationJob) error
	// Dequeue blocks up to block; a nil job with nil error means nothing arrived
	Dequeue(ctx context.Context, consumer string, block time.Duration) (*NotificationJob, string, error)
	Ack(ctx context.Context, messageID string) error
	DeadLetter(ctx context.Context, job *NotificationJob) error
	ClaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*NotificationJob, []string, error)
	Stats(ctx context.Context) (QueueStats, error)
}

// LocalQueue is an in-process NotificationQueue backed by a buffered channel.
// Jobs are lost on restart.
type LocalQueue struct {
	jobs chan *NotificationJob

	mu   sync.Mutex
	dead []*NotificationJob
}

var _ NotificationQueue = (*LocalQueue)(nil)

const localDeadLetterCap = 1000

func NewLocalQueue(buffer int) *LocalQueue {
	if buffer < 1 {
		buffer = 1
	}
	return &LocalQueue{jobs: make(chan *NotificationJob, buffer)}
}

func (q *LocalQueue) Enqueue(ctx context.Context, job *NotificationJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *LocalQueue) Dequeue(ctx context.Context, _ string, block time.Duration) (*NotificationJob, string, error) {
	timer := time.NewTimer(block)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return job, job.ID, nil
	case <-timer.C:
		return nil, "", nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (q *LocalQueue) Ack(context.Context, string) error { return nil }

func (q *LocalQueue) DeadLetter(_ context.Context, job *NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.dead) >= localDeadLetterCap {
		q.dead = q.dead[1:]
	}
	q.dead = append(q.dead, job)
	logging.Warn("Notification dead-lettered", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt, "error", job.LastError)
	return nil
}

func (q *LocalQueue) ClaimStale(context.Context, string, time.Duration) ([]*NotificationJob, []string, error) {
	return nil, nil, nil
}

func (q *LocalQueue) Stats(context.Context) (QueueStats, error) {
	q.mu.Lock()
	dead := len(q.dead)
	q.mu.Unlock()
	return QueueStats{Length: int64(len(q.jobs)), DeadLetter: int64(dead)}, nil
}

// DeadLettered returns a copy of the dead-letter list
func (q *LocalQueue) DeadLettered() []*NotificationJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*NotificationJob(nil), q.dead...)
}
